// Package extract implements the video→audio fan-out stage: it consumes
// queue messages published by the video path, pulls the source video from
// Cloud Storage, extracts a speech-ready audio track with ffmpeg, and
// uploads it to the audio bucket under the asset's identifier.
package extract

import (
	"encoding/json"
	"fmt"
)

// Message is the JSON payload published by the video path and consumed by
// the audio-extract function.
type Message struct {
	SourceBucketName string `json:"sourceBucketName"`
	SourceFilePath   string `json:"sourceFilePath"`
	AssetID          string `json:"assetId"`
}

// Validate reports whether the message carries everything extraction needs.
func (m Message) Validate() error {
	if m.SourceBucketName == "" {
		return fmt.Errorf("message missing sourceBucketName")
	}
	if m.SourceFilePath == "" {
		return fmt.Errorf("message missing sourceFilePath")
	}
	if m.AssetID == "" {
		return fmt.Errorf("message missing assetId")
	}
	return nil
}

// Encode serializes the message for publishing.
func (m Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode extract message: %w", err)
	}
	return data, nil
}

// DecodeMessage parses and validates a queue payload. A non-nil error means
// the payload can never succeed and must be acknowledged and dropped, not
// retried.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode extract message: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}
