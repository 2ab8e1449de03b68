package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/archivion/backend-GCP/internal/extract"
	"github.com/archivion/backend-GCP/internal/gcsevent"
	"github.com/archivion/backend-GCP/internal/metrics"
	"github.com/archivion/backend-GCP/internal/store"
)

// processVideo annotates an uploaded video and persists the results under
// the video capability, then fans out an audio-extraction message for the
// same asset. The fan-out does not depend on the annotation outcome (a
// no_results or even a recorded annotation error still gets its audio track
// transcribed), only a fatal persistence or publish error suppresses it.
func (p *Pipeline) processVideo(ctx context.Context, obj gcsevent.Object, assetID string) error {
	begin, err := p.beginUpdate(ctx, assetID)
	if err != nil {
		return err
	}
	begin.SourceInfo(sourceInfoFrom(obj)).VideoStatus(store.StatusProcessing)
	if err := p.records.Merge(ctx, assetID, begin); err != nil {
		return err
	}

	start := time.Now()
	res, err := p.video.Annotate(ctx, obj.URI())
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Str("assetId", assetID).Msg("Video annotation failed")
		metrics.New("MediaAnalyze").Label("mediaKind", kindVideo).
			Count("VideoAnnotateFailure").
			Metric("VideoAnnotateDuration", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
			Flush()
		u := store.NewUpdate().
			VideoStatus(store.StatusError).
			Error(kindVideo, err.Error()).
			Overall(store.OverallCompleted)
		if err := p.records.Merge(ctx, assetID, u); err != nil {
			return err
		}
		return p.publishExtract(ctx, obj, assetID)
	}

	metrics.New("MediaAnalyze").Label("mediaKind", kindVideo).
		Metric("VideoAnnotateDuration", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Metric("LabelCount", float64(len(res.Labels)), metrics.UnitCount).
		Metric("ObjectCount", float64(len(res.Objects)), metrics.UnitCount).
		Flush()
	log.Info().Str("assetId", assetID).
		Int("labels", len(res.Labels)).
		Int("objects", len(res.Objects)).
		Dur("duration", elapsed).
		Msg("Video annotation complete")

	u := store.NewUpdate().
		Tags(res.Labels).
		ObjectTags(res.Objects).
		VideoStatus(store.ResultStatus(len(res.Labels) + len(res.Objects))).
		ClearError().
		Overall(store.OverallCompleted)
	if err := p.records.Merge(ctx, assetID, u); err != nil {
		return err
	}

	return p.publishExtract(ctx, obj, assetID)
}

// publishExtract sends the audio-extraction fan-out message. A publish
// failure is fatal: without it the asset never gets a transcript, and a
// retried invocation can publish again.
func (p *Pipeline) publishExtract(ctx context.Context, obj gcsevent.Object, assetID string) error {
	msg := extract.Message{
		SourceBucketName: obj.Bucket,
		SourceFilePath:   obj.Name,
		AssetID:          assetID,
	}
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	if err := p.publisher.Publish(ctx, data); err != nil {
		return err
	}
	log.Info().Str("assetId", assetID).Str("object", obj.Name).Msg("Queued audio extraction")
	return nil
}
