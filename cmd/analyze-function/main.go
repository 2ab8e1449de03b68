// analyze-function is the Cloud Function triggered by object finalization
// on the media and derived-audio buckets. It routes each object through the
// image, video, or audio analysis path and maintains the asset's metadata
// record in Firestore.
package main

import (
	"context"
	"os"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/rs/zerolog/log"

	"github.com/archivion/backend-GCP/internal/analyze"
	"github.com/archivion/backend-GCP/internal/funcboot"
	"github.com/archivion/backend-GCP/internal/gcsevent"
	"github.com/archivion/backend-GCP/internal/logging"
	"github.com/archivion/backend-GCP/internal/pipeline"
)

var pipe *pipeline.Pipeline

func init() {
	initStart := time.Now()
	logging.Init()
	ctx := context.Background()

	records := funcboot.InitFirestore(ctx, "METADATA_COLLECTION")
	audioBucket := funcboot.RequireEnv("AUDIO_BUCKET_NAME")
	topic := funcboot.InitTopic(ctx, "EXTRACT_TOPIC")
	vision := funcboot.InitVision(ctx)
	video := funcboot.InitVideo(ctx)
	speech := funcboot.InitSpeech(ctx)
	funcboot.LoadGeminiKey(ctx)
	topics := funcboot.InitTopics(ctx)

	pipe = pipeline.New(records, vision, video, speech, topics,
		pipeline.NewTopicPublisher(topic), audioBucket)

	functions.CloudEvent("AnalyzeMedia", handleStorageEvent)

	funcboot.StartupLog("analyze-function", initStart).
		Collection("metadata", os.Getenv("METADATA_COLLECTION")).
		Bucket("media", os.Getenv("MEDIA_BUCKET_NAME")).
		Bucket("audio", audioBucket).
		Topic("extract", os.Getenv("EXTRACT_TOPIC")).
		Config("topicsModel", analyze.TopicsModelName()).
		Log()
}

// handleStorageEvent unwraps the storage object from the CloudEvent and
// hands it to the pipeline. A payload that cannot be decoded is logged and
// acknowledged; redelivery cannot fix it.
func handleStorageEvent(ctx context.Context, e event.Event) error {
	var obj gcsevent.Object
	if err := e.DataAs(&obj); err != nil {
		log.Error().Err(err).Str("eventId", e.ID()).Str("eventType", e.Type()).
			Msg("Undecodable storage event payload, dropping")
		return nil
	}
	return pipe.HandleObject(ctx, e.Type(), obj)
}

func main() {
	port := logging.EnvOrDefault("PORT", "8080")
	if err := funcframework.Start(port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start functions framework")
	}
}
