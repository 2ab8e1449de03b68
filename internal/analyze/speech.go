package analyze

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// Speech transcribes audio objects by Cloud Storage URI using long-running
// recognition, awaited within the invocation.
type Speech struct {
	client     *speech.Client
	maxRetries int
	language   string
}

// NewSpeech creates the transcription runner. Language defaults to en-US
// and can be overridden with SPEECH_LANGUAGE_CODE.
func NewSpeech(ctx context.Context, language string, opts ...option.ClientOption) (*Speech, error) {
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	if language == "" {
		language = "en-US"
	}
	return &Speech{client: c, maxRetries: defaultMaxRetries, language: language}, nil
}

// Close releases the underlying client.
func (s *Speech) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Transcribe recognizes the audio at the given gs:// URI and returns the
// joined transcript. An empty string with a nil error means recognition
// completed but produced nothing — the caller maps that to no_transcription.
func (s *Speech) Transcribe(ctx context.Context, gcsURI string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", fmt.Errorf("gcsURI must be gs://... got %q", gcsURI)
	}

	req := &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   inferEncoding(gcsURI),
			LanguageCode:               s.language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Uri{Uri: gcsURI},
		},
	}

	start := time.Now()
	resp, err := withRetry(ctx, s.maxRetries, func() (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := s.client.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return "", fmt.Errorf("speech LongRunningRecognize: %w", err)
	}

	transcript := joinTranscripts(resp)
	log.Debug().
		Str("uri", gcsURI).
		Int("transcriptLength", len(transcript)).
		Dur("duration", time.Since(start)).
		Msg("Speech transcription complete")
	return transcript, nil
}

// joinTranscripts concatenates the top alternative of each result.
func joinTranscripts(resp *speechpb.LongRunningRecognizeResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		t := strings.TrimSpace(r.Alternatives[0].Transcript)
		if t == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(t)
	}
	return b.String()
}

// inferEncoding picks the recognition encoding from the object extension.
// Derived tracks are always FLAC; direct uploads may be anything the bucket
// accepted. Unknown extensions are left unspecified so the service sniffs
// the header.
func inferEncoding(gcsURI string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(filepath.Ext(gcsURI)) {
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case ".mp3":
		return speechpb.RecognitionConfig_MP3
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}
