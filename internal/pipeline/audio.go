package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/archivion/backend-GCP/internal/gcsevent"
	"github.com/archivion/backend-GCP/internal/metrics"
	"github.com/archivion/backend-GCP/internal/store"
)

// processAudio transcribes an audio object and, when a transcript exists,
// generates topics from it.
//
// Audio arrives two ways: uploaded directly by a user, or extracted from a
// video into the derived-audio bucket. Derived tracks write under the parent
// video's identifier and must not refresh sourceInfo, so the record keeps
// describing the video the user uploaded.
func (p *Pipeline) processAudio(ctx context.Context, obj gcsevent.Object, assetID string) error {
	derived := obj.Bucket == p.audioBucket

	begin, err := p.beginUpdate(ctx, assetID)
	if err != nil {
		return err
	}
	if !derived {
		begin.SourceInfo(sourceInfoFrom(obj))
	}
	begin.SpeechStatus(store.StatusProcessing)
	if err := p.records.Merge(ctx, assetID, begin); err != nil {
		return err
	}

	start := time.Now()
	transcript, err := p.speech.Transcribe(ctx, obj.URI())
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Str("assetId", assetID).Msg("Transcription failed")
		metrics.New("MediaAnalyze").Label("mediaKind", kindAudio).
			Count("SpeechFailure").
			Metric("SpeechDuration", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
			Flush()
		u := store.NewUpdate().
			SpeechStatus(store.StatusError).
			Error(kindAudio, err.Error()).
			Overall(store.OverallCompleted)
		return p.records.Merge(ctx, assetID, u)
	}

	metrics.New("MediaAnalyze").Label("mediaKind", kindAudio).
		Metric("SpeechDuration", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Metric("TranscriptLength", float64(len(transcript)), metrics.UnitCount).
		Flush()

	if transcript == "" {
		// Nothing was said; topic generation has nothing to work with.
		log.Info().Str("assetId", assetID).Bool("derived", derived).Msg("No speech recognized")
		u := store.NewUpdate().
			Transcription("").
			SpeechStatus(store.StatusNoTranscription).
			Topics(nil).
			TopicsStatus(store.StatusSkippedNoTranscript).
			Overall(store.OverallCompleted)
		return p.records.Merge(ctx, assetID, u)
	}

	log.Info().Str("assetId", assetID).
		Bool("derived", derived).
		Int("transcriptLength", len(transcript)).
		Dur("duration", elapsed).
		Msg("Transcription complete")

	u := store.NewUpdate().
		Transcription(transcript).
		SpeechStatus(store.StatusSuccess).
		TopicsStatus(store.StatusProcessing)
	if err := p.records.Merge(ctx, assetID, u); err != nil {
		return err
	}

	return p.generateTopics(ctx, assetID, transcript)
}

// generateTopics runs the topic model over the transcript and persists the
// topics capability. Model failures are recorded and swallowed like the
// other per-capability errors.
func (p *Pipeline) generateTopics(ctx context.Context, assetID, transcript string) error {
	start := time.Now()
	topics, err := p.topics.Generate(ctx, transcript)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Str("assetId", assetID).Msg("Topic generation failed")
		metrics.New("MediaAnalyze").Label("mediaKind", kindAudio).
			Count("TopicsFailure").
			Metric("TopicsDuration", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
			Flush()
		u := store.NewUpdate().
			TopicsStatus(store.StatusError).
			Error("topics", err.Error()).
			Overall(store.OverallCompleted)
		return p.records.Merge(ctx, assetID, u)
	}

	metrics.New("MediaAnalyze").Label("mediaKind", kindAudio).
		Metric("TopicsDuration", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Metric("TopicCount", float64(len(topics)), metrics.UnitCount).
		Flush()
	log.Info().Str("assetId", assetID).Int("topics", len(topics)).Dur("duration", elapsed).
		Msg("Topic generation complete")

	u := store.NewUpdate().
		Topics(topics).
		TopicsStatus(store.ResultStatus(len(topics))).
		ClearError().
		Overall(store.OverallCompleted)
	return p.records.Merge(ctx, assetID, u)
}
