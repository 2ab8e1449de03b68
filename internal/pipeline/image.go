package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/archivion/backend-GCP/internal/gcsevent"
	"github.com/archivion/backend-GCP/internal/metrics"
	"github.com/archivion/backend-GCP/internal/store"
)

// processImage runs label detection and object localization on an uploaded
// image and persists the results under the vision capability.
//
// An annotation failure is recorded on the record (visionApiStatus=error plus
// an error snapshot) and swallowed: the invocation still completes so the
// event is not redelivered for an error that would likely repeat.
func (p *Pipeline) processImage(ctx context.Context, obj gcsevent.Object, assetID string) error {
	begin, err := p.beginUpdate(ctx, assetID)
	if err != nil {
		return err
	}
	begin.SourceInfo(sourceInfoFrom(obj)).VisionStatus(store.StatusProcessing)
	if err := p.records.Merge(ctx, assetID, begin); err != nil {
		return err
	}

	start := time.Now()
	res, err := p.vision.Annotate(ctx, obj.URI())
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Str("assetId", assetID).Msg("Vision annotation failed")
		metrics.New("MediaAnalyze").Label("mediaKind", kindImage).
			Count("VisionFailure").
			Metric("VisionDuration", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
			Flush()
		u := store.NewUpdate().
			VisionStatus(store.StatusError).
			Error(kindImage, err.Error()).
			Overall(store.OverallCompleted)
		return p.records.Merge(ctx, assetID, u)
	}

	metrics.New("MediaAnalyze").Label("mediaKind", kindImage).
		Metric("VisionDuration", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Metric("LabelCount", float64(len(res.Labels)), metrics.UnitCount).
		Metric("ObjectCount", float64(len(res.Objects)), metrics.UnitCount).
		Flush()
	log.Info().Str("assetId", assetID).
		Int("labels", len(res.Labels)).
		Int("objects", len(res.Objects)).
		Dur("duration", elapsed).
		Msg("Vision annotation complete")

	u := store.NewUpdate().
		Tags(res.Labels).
		ObjectTags(res.Objects).
		VisionStatus(store.ResultStatus(len(res.Labels) + len(res.Objects))).
		ClearError().
		Overall(store.OverallCompleted)
	return p.records.Merge(ctx, assetID, u)
}
