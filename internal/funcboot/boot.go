// Package funcboot provides shared cold-start bootstrap logic for the
// Cloud Functions.
//
// Each function needs some subset of: Firestore, Cloud Storage, Pub/Sub,
// the analysis clients, the Gemini API key, and startup logging. This
// package extracts the common init patterns so each function's init() is a
// short composition of helpers. Helpers fatal on misconfiguration: a
// function that cannot construct its clients should fail cold start loudly
// rather than limp through invocations.
package funcboot

import (
	"context"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/archivion/backend-GCP/internal/analyze"
	"github.com/archivion/backend-GCP/internal/logging"
	"github.com/archivion/backend-GCP/internal/store"
)

// RequireEnv reads a required environment variable. Fatals if empty.
func RequireEnv(name string) string {
	v := os.Getenv(name)
	if v == "" {
		log.Fatal().Str("envVar", name).Msg("Environment variable is required")
	}
	return v
}

// InitFirestore creates the media-record store over the collection named by
// the given environment variable. The project ID is autodetected from the
// runtime credentials.
func InitFirestore(ctx context.Context, collectionEnvVar string) *store.MediaRecordStore {
	collection := RequireEnv(collectionEnvVar)
	client, err := firestore.NewClient(ctx, firestore.DetectProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Firestore client")
	}
	log.Debug().Str("collection", collection).Msg("Firestore client created")
	return store.NewMediaRecordStore(client, collection)
}

// InitStorage creates a Cloud Storage client.
func InitStorage(ctx context.Context) *storage.Client {
	client, err := storage.NewClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Storage client")
	}
	return client
}

// InitTopic creates a Pub/Sub topic handle from the topic ID in the given
// environment variable.
func InitTopic(ctx context.Context, topicEnvVar string) *pubsub.Topic {
	topicID := RequireEnv(topicEnvVar)
	client, err := pubsub.NewClient(ctx, RequireEnv("GOOGLE_CLOUD_PROJECT"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Pub/Sub client")
	}
	log.Debug().Str("topic", topicID).Msg("Pub/Sub topic handle created")
	return client.Topic(topicID)
}

// InitVision creates the image annotation runner.
func InitVision(ctx context.Context) *analyze.Vision {
	v, err := analyze.NewVision(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Vision client")
	}
	return v
}

// InitVideo creates the video annotation runner.
func InitVideo(ctx context.Context) *analyze.Video {
	v, err := analyze.NewVideo(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Video Intelligence client")
	}
	return v
}

// InitSpeech creates the transcription runner. The recognition language
// comes from SPEECH_LANGUAGE_CODE when set.
func InitSpeech(ctx context.Context) *analyze.Speech {
	s, err := analyze.NewSpeech(ctx, os.Getenv("SPEECH_LANGUAGE_CODE"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Speech client")
	}
	return s
}

// InitTopics creates the topic-generation runner. The API key must already
// be loaded (see LoadGeminiKey).
func InitTopics(ctx context.Context) *analyze.Topics {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	return analyze.NewTopics(client)
}

// LoadGeminiKey resolves the Gemini API key into GEMINI_API_KEY if it is
// not already set, reading the Secret Manager version named by
// SECRET_GEMINI_API_KEY_NAME. Fatals on error: topic generation without a
// key would only surface as per-invocation failures later.
func LoadGeminiKey(ctx context.Context) {
	if os.Getenv("GEMINI_API_KEY") != "" {
		return
	}
	secretName := RequireEnv("SECRET_GEMINI_API_KEY_NAME")

	fetchStart := time.Now()
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Secret Manager client")
	}
	defer client.Close()

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		log.Fatal().Err(err).Str("secret", secretName).Msg("Failed to read API key from Secret Manager")
	}
	os.Setenv("GEMINI_API_KEY", string(result.Payload.Data))
	log.Debug().Str("secret", secretName).Dur("elapsed", time.Since(fetchStart)).Msg("Gemini API key loaded from Secret Manager")
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
