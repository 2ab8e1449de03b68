// audio-extract-function is the Cloud Function triggered by the
// audio-extraction Pub/Sub topic. For each message it downloads the source
// video, extracts a mono 16 kHz FLAC track with ffmpeg, and uploads the
// track as {assetId}.flac to the derived-audio bucket — whose finalize
// event then feeds the track back into the analyze function.
package main

import (
	"context"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/rs/zerolog/log"

	"github.com/archivion/backend-GCP/internal/extract"
	"github.com/archivion/backend-GCP/internal/funcboot"
	"github.com/archivion/backend-GCP/internal/logging"
)

var extractor *extract.Extractor

// messagePublishedData is the Pub/Sub CloudEvent payload shape. The data
// field arrives base64-encoded and json unmarshals it straight to bytes.
type messagePublishedData struct {
	Message struct {
		Data      []byte `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
}

func init() {
	initStart := time.Now()
	logging.Init()
	ctx := context.Background()

	if err := extract.CheckFFmpegAvailable(); err != nil {
		log.Fatal().Err(err).Msg("ffmpeg not available in runtime image")
	}

	audioBucket := funcboot.RequireEnv("AUDIO_BUCKET_NAME")
	records := funcboot.InitFirestore(ctx, "METADATA_COLLECTION")
	extractor = extract.NewExtractor(funcboot.InitStorage(ctx), records, audioBucket)

	functions.CloudEvent("ExtractAudio", handleQueueMessage)

	funcboot.StartupLog("audio-extract-function", initStart).
		Bucket("audio", audioBucket).
		Collection("metadata", records.Collection()).
		Log()
}

// handleQueueMessage decodes one extraction message and runs it. Malformed
// payloads are logged and acknowledged so the subscription does not
// redeliver a message that can never succeed; extraction failures propagate
// for retry.
func handleQueueMessage(ctx context.Context, e event.Event) error {
	var data messagePublishedData
	if err := e.DataAs(&data); err != nil {
		log.Error().Err(err).Str("eventId", e.ID()).Msg("Undecodable Pub/Sub event payload, dropping")
		return nil
	}

	msg, err := extract.DecodeMessage(data.Message.Data)
	if err != nil {
		log.Error().Err(err).Str("messageId", data.Message.MessageID).
			Msg("Malformed extraction message, dropping")
		return nil
	}

	log.Info().Str("assetId", msg.AssetID).
		Str("bucket", msg.SourceBucketName).
		Str("object", msg.SourceFilePath).
		Msg("Extraction message received")
	return extractor.Run(ctx, msg)
}

func main() {
	port := logging.EnvOrDefault("PORT", "8080")
	if err := funcframework.Start(port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start functions framework")
	}
}
