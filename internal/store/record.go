package store

import "time"

// SourceInfo identifies the uploaded object a MediaRecord was created from.
// It is refreshed on every direct-upload event (last write wins) and never
// written by derived-audio events, so an extracted track keeps pointing at
// its parent video.
type SourceInfo struct {
	FileName    string    `firestore:"fileName" json:"fileName"`
	BucketName  string    `firestore:"bucketName" json:"bucketName"`
	ContentType string    `firestore:"contentType" json:"contentType"`
	UploadTime  time.Time `firestore:"uploadTime" json:"uploadTime"`
	MediaURI    string    `firestore:"mediaUri" json:"mediaUri"`
	Generation  string    `firestore:"generation" json:"generation"`
}

// ProcessingError is the last-fatal-error snapshot on a record. Kind names
// the stage or capability that produced the error.
type ProcessingError struct {
	Message string `firestore:"message" json:"message"`
	Kind    string `firestore:"kind" json:"kind"`
}

// MediaRecord is the per-asset metadata document, keyed by asset ID.
// Records are created on the first event for an asset and mutated additively
// by field-level merges afterwards; the pipeline never deletes them.
type MediaRecord struct {
	AssetID          string           `firestore:"assetId" json:"assetId"`
	SourceInfo       *SourceInfo      `firestore:"sourceInfo,omitempty" json:"sourceInfo,omitempty"`
	Tags             []string         `firestore:"tags" json:"tags"`
	ObjectTags       []string         `firestore:"objectTags" json:"objectTags"`
	Transcription    string           `firestore:"transcription" json:"transcription"`
	Topics           []string         `firestore:"topics" json:"topics"`
	VisionAPIStatus  Status           `firestore:"visionApiStatus" json:"visionApiStatus"`
	VideoAPIStatus   Status           `firestore:"videoApiStatus" json:"videoApiStatus"`
	SpeechAPIStatus  Status           `firestore:"speechApiStatus" json:"speechApiStatus"`
	TopicsAPIStatus  Status           `firestore:"topicsApiStatus" json:"topicsApiStatus"`
	ProcessingStatus OverallStatus    `firestore:"processingStatus" json:"processingStatus"`
	ProcessingError  *ProcessingError `firestore:"processingError,omitempty" json:"processingError,omitempty"`
	UpdatedAt        time.Time        `firestore:"updatedAt" json:"updatedAt"`
}

// Normalize fills the gaps in documents written by the legacy schema, which
// predates processingStatus and left capability statuses unset. Missing
// capability statuses become pending and a missing overall status becomes
// In Progress; array fields are never left nil.
func (r *MediaRecord) Normalize() {
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.ObjectTags == nil {
		r.ObjectTags = []string{}
	}
	if r.Topics == nil {
		r.Topics = []string{}
	}
	if r.VisionAPIStatus == "" {
		r.VisionAPIStatus = StatusPending
	}
	if r.VideoAPIStatus == "" {
		r.VideoAPIStatus = StatusPending
	}
	if r.SpeechAPIStatus == "" {
		r.SpeechAPIStatus = StatusPending
	}
	if r.TopicsAPIStatus == "" {
		r.TopicsAPIStatus = StatusPending
	}
	if r.ProcessingStatus == "" {
		r.ProcessingStatus = OverallInProgress
	}
}

// NewRecord returns an empty record for an asset with capability arrays
// defaulted to empty sequences and all statuses pending.
func NewRecord(assetID string) *MediaRecord {
	r := &MediaRecord{AssetID: assetID}
	r.Normalize()
	return r
}
