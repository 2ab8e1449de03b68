package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/archivion/backend-GCP/internal/assetid"
	"github.com/archivion/backend-GCP/internal/gcsevent"
	"github.com/archivion/backend-GCP/internal/metrics"
	"github.com/archivion/backend-GCP/internal/store"
)

// media kinds, used for routing, metrics labels, and error snapshots.
const (
	kindImage = "image"
	kindVideo = "video"
	kindAudio = "audio"
)

// HandleObject processes one storage notification end to end.
//
// A nil return acknowledges the event. Events that can never succeed
// (deletions, unsupported content types, objects without a content hash,
// undecodable hashes) are logged and acknowledged so the platform does not
// redeliver them. A non-nil return means a fatal error: the record is
// stamped Failed best-effort first, then the error propagates so the
// platform retries the invocation.
func (p *Pipeline) HandleObject(ctx context.Context, eventType string, obj gcsevent.Object) error {
	logger := log.With().
		Str("bucket", obj.Bucket).
		Str("object", obj.Name).
		Str("contentType", obj.ContentType).
		Logger()

	if gcsevent.IsDeletion(eventType) {
		logger.Info().Str("eventType", eventType).Msg("Deletion event, nothing to process")
		return nil
	}

	kind := mediaKind(obj.ContentType)
	if kind == "" {
		logger.Info().Msg("Unsupported content type, skipping")
		return nil
	}

	// Derived tracks are identified by their filename stem; only direct
	// uploads need the content hash decoded.
	var assetID string
	if obj.Bucket == p.audioBucket {
		assetID = assetid.ForDerivedAudio(obj.Name)
	} else {
		hash, err := obj.HashBytes()
		if err != nil {
			// A malformed hash never becomes valid on redelivery.
			logger.Error().Err(err).Msg("Undecodable content hash, dropping event")
			return nil
		}
		assetID, err = assetid.ForUpload(hash)
		if err != nil {
			if errors.Is(err, assetid.ErrMissingIdentifier) {
				logger.Warn().Msg("No content hash on notification, dropping event")
				return nil
			}
			return err
		}
	}

	logger = logger.With().Str("assetId", assetID).Str("mediaKind", kind).Logger()
	logger.Info().Msg("Processing asset")

	start := time.Now()
	var err error
	switch kind {
	case kindImage:
		err = p.processImage(ctx, obj, assetID)
	case kindVideo:
		err = p.processVideo(ctx, obj, assetID)
	case kindAudio:
		err = p.processAudio(ctx, obj, assetID)
	}
	elapsed := time.Since(start)

	rec := metrics.New("MediaAnalyze").
		Label("mediaKind", kind).
		Metric("ProcessDuration", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Metric("ObjectSize", float64(obj.SizeBytes()), metrics.UnitBytes).
		Property("assetId", assetID)

	if err != nil {
		rec.Count("ProcessFailure").Flush()
		logger.Error().Err(err).Dur("duration", elapsed).Msg("Asset processing failed")
		p.recordFailure(ctx, assetID, kind, err)
		return fmt.Errorf("process %s asset %s: %w", kind, assetID, err)
	}

	rec.Count("ProcessSuccess").Flush()
	logger.Info().Dur("duration", elapsed).Msg("Asset processing complete")
	return nil
}

// mediaKind maps a MIME content type to a processing path, or "" for
// content the pipeline does not handle.
func mediaKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return kindImage
	case strings.HasPrefix(contentType, "video/"):
		return kindVideo
	case strings.HasPrefix(contentType, "audio/"):
		return kindAudio
	default:
		return ""
	}
}

// recordFailure stamps the record with the fatal error before the handler
// returns it for retry. The merge itself is best-effort: a second failure
// here is logged and swallowed so the original error is what propagates.
func (p *Pipeline) recordFailure(ctx context.Context, assetID, kind string, cause error) {
	u := store.NewUpdate().
		AssetID(assetID).
		Overall(store.OverallFailed).
		Error(kind, cause.Error())
	if err := p.records.Merge(ctx, assetID, u); err != nil {
		log.Warn().Err(err).Str("assetId", assetID).Msg("Failed to record failure state")
	}
}
