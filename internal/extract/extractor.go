package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/archivion/backend-GCP/internal/metrics"
	"github.com/archivion/backend-GCP/internal/store"
)

// BlobStore is the object-storage surface extraction needs.
type BlobStore interface {
	Download(ctx context.Context, bucket, object, localPath string) error
	Upload(ctx context.Context, localPath, bucket, object, contentType string) error
}

// FailureRecorder marks an asset's metadata record after an unrecoverable
// extraction failure. *store.MediaRecordStore satisfies it.
type FailureRecorder interface {
	Merge(ctx context.Context, assetID string, u *store.Update) error
}

// Extractor downloads a source video, extracts its audio track, and uploads
// the result to the audio bucket as {assetId}.flac. That upload re-enters
// the analyze function as a derived-audio event.
type Extractor struct {
	blobs       BlobStore
	records     FailureRecorder
	audioBucket string
	tempRoot    string
}

// NewExtractor creates an Extractor uploading into the given audio bucket.
func NewExtractor(client *storage.Client, records FailureRecorder, audioBucket string) *Extractor {
	return &Extractor{
		blobs:       gcsBlobs{client: client},
		records:     records,
		audioBucket: audioBucket,
		tempRoot:    os.TempDir(),
	}
}

// Run processes one fan-out message end to end. Temp files are removed in
// all outcomes; removal failures are only logged. Any returned error means
// the invocation failed and the trigger infrastructure should retry.
//
// A codec failure cannot be fixed by retrying, so before the error
// propagates the asset's record is marked Failed with the codec kind. The
// merge is best-effort; the original error is what returns either way.
func (e *Extractor) Run(ctx context.Context, msg Message) error {
	runStart := time.Now()

	workDir := filepath.Join(e.tempRoot, "audio-extract", uuid.NewString())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn().Err(err).Str("workDir", workDir).Msg("Failed to remove extraction work dir")
		}
	}()

	inputPath := filepath.Join(workDir, filepath.Base(msg.SourceFilePath))
	outputPath := filepath.Join(workDir, msg.AssetID+".flac")

	if err := e.blobs.Download(ctx, msg.SourceBucketName, msg.SourceFilePath, inputPath); err != nil {
		return err
	}

	if err := ExtractAudio(ctx, inputPath, outputPath); err != nil {
		if IsCodecError(err) {
			e.recordCodecFailure(ctx, msg.AssetID, err)
		}
		return err
	}

	objectName := msg.AssetID + ".flac"
	if err := e.blobs.Upload(ctx, outputPath, e.audioBucket, objectName, AudioContentType); err != nil {
		return err
	}

	runMs := time.Since(runStart).Milliseconds()
	log.Info().
		Str("assetId", msg.AssetID).
		Str("source", msg.SourceBucketName+"/"+msg.SourceFilePath).
		Str("output", e.audioBucket+"/"+objectName).
		Int64("runMs", runMs).
		Msg("Audio track extracted and uploaded")

	metrics.New("Archivion").
		Label("operation", "audioExtract").
		Metric("ExtractionRunMs", float64(runMs), metrics.UnitMilliseconds).
		Count("TracksExtracted").
		Property("assetId", msg.AssetID).
		Flush()
	return nil
}

func (e *Extractor) recordCodecFailure(ctx context.Context, assetID string, cause error) {
	u := store.NewUpdate().
		Overall(store.OverallFailed).
		Error("codec", cause.Error())
	if err := e.records.Merge(ctx, assetID, u); err != nil {
		log.Warn().Err(err).Str("assetId", assetID).Msg("Failed to record codec failure")
	}
}

// gcsBlobs is the Cloud Storage implementation of BlobStore.
type gcsBlobs struct {
	client *storage.Client
}

func (g gcsBlobs) Download(ctx context.Context, bucket, object, localPath string) error {
	rc, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("open gs://%s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, rc)
	if err != nil {
		return fmt.Errorf("download gs://%s/%s: %w", bucket, object, err)
	}
	log.Debug().Str("bucket", bucket).Str("object", object).Int64("bytes", n).Msg("Source video downloaded")
	return nil
}

func (g gcsBlobs) Upload(ctx context.Context, localPath, bucket, object, contentType string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open extracted track: %w", err)
	}
	defer f.Close()

	w := g.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("upload gs://%s/%s: %w", bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize gs://%s/%s: %w", bucket, object, err)
	}
	log.Debug().Str("bucket", bucket).Str("object", object).Msg("Extracted track uploaded")
	return nil
}
