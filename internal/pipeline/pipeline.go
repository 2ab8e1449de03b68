// Package pipeline routes asset notifications to the image, video, and
// audio processing paths and maintains each asset's MediaRecord: capability
// results, per-stage statuses, and the overall processing status.
package pipeline

import (
	"context"

	"github.com/archivion/backend-GCP/internal/analyze"
	"github.com/archivion/backend-GCP/internal/gcsevent"
	"github.com/archivion/backend-GCP/internal/store"
)

// ImageAnnotator labels an image by its gs:// URI.
type ImageAnnotator interface {
	Annotate(ctx context.Context, gcsURI string) (*analyze.VisionResult, error)
}

// VideoAnnotator annotates a video by its gs:// URI.
type VideoAnnotator interface {
	Annotate(ctx context.Context, gcsURI string) (*analyze.VideoResult, error)
}

// Transcriber produces a joined transcript for an audio object.
type Transcriber interface {
	Transcribe(ctx context.Context, gcsURI string) (string, error)
}

// TopicGenerator summarizes a transcript into topic strings.
type TopicGenerator interface {
	Generate(ctx context.Context, transcript string) ([]string, error)
}

// RecordStore is the MediaRecord persistence surface the pipeline needs.
type RecordStore interface {
	Get(ctx context.Context, assetID string) (*store.MediaRecord, error)
	Merge(ctx context.Context, assetID string, u *store.Update) error
}

// Publisher sends the video→audio fan-out message.
type Publisher interface {
	Publish(ctx context.Context, data []byte) error
}

// Pipeline handles one asset notification per invocation. All collaborators
// are initialized once at cold start and never mutated afterwards.
type Pipeline struct {
	records     RecordStore
	vision      ImageAnnotator
	video       VideoAnnotator
	speech      Transcriber
	topics      TopicGenerator
	publisher   Publisher
	audioBucket string
}

// New assembles a Pipeline. audioBucket is the derived-audio bucket:
// events from it take the audio path under the parent video's identifier.
func New(
	records RecordStore,
	vision ImageAnnotator,
	video VideoAnnotator,
	speech Transcriber,
	topics TopicGenerator,
	publisher Publisher,
	audioBucket string,
) *Pipeline {
	return &Pipeline{
		records:     records,
		vision:      vision,
		video:       video,
		speech:      speech,
		topics:      topics,
		publisher:   publisher,
		audioBucket: audioBucket,
	}
}

// sourceInfoFrom maps an object event to the record's upload identity.
func sourceInfoFrom(obj gcsevent.Object) store.SourceInfo {
	return store.SourceInfo{
		FileName:    obj.Name,
		BucketName:  obj.Bucket,
		ContentType: obj.ContentType,
		UploadTime:  obj.TimeCreated,
		MediaURI:    obj.URI(),
		Generation:  obj.Generation,
	}
}

// beginUpdate loads the existing record and stages the start of a stage.
// When no record exists yet, the update seeds the full default shape
// (empty capability arrays, all statuses pending) so the first merge
// creates a well-formed document. The Get/Merge sequence is deliberately
// not transactional (documented last-writer-wins race).
func (p *Pipeline) beginUpdate(ctx context.Context, assetID string) (*store.Update, error) {
	rec, err := p.records.Get(ctx, assetID)
	if err != nil {
		return nil, err
	}

	u := store.NewUpdate().Overall(store.OverallInProgress)
	if rec == nil {
		u.AssetID(assetID).
			Tags(nil).
			ObjectTags(nil).
			Topics(nil).
			Transcription("").
			VisionStatus(store.StatusPending).
			VideoStatus(store.StatusPending).
			SpeechStatus(store.StatusPending).
			TopicsStatus(store.StatusPending)
	}
	return u, nil
}
