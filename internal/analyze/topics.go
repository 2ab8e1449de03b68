package analyze

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/archivion/backend-GCP/internal/jsonutil"
)

// DefaultTopicsModel is the Gemini model used for topic extraction.
// Can be overridden via the GEMINI_MODEL environment variable.
const DefaultTopicsModel = "gemini-2.5-flash"

const maxTopics = 10

const topicsSystemPrompt = `You extract the main topics from a transcript.
Respond with a JSON array of short topic strings (one to four words each),
most prominent first. Respond with the JSON array only, no prose.`

// TopicsModelName resolves the Gemini model, preferring GEMINI_MODEL.
func TopicsModelName() string {
	if env := os.Getenv("GEMINI_MODEL"); env != "" {
		return env
	}
	return DefaultTopicsModel
}

// Topics derives short topic strings from a transcription via Gemini.
type Topics struct {
	client *genai.Client
	model  string
}

// NewTopics creates the topic-extraction runner around an existing Gemini
// client.
func NewTopics(client *genai.Client) *Topics {
	return &Topics{client: client, model: TopicsModelName()}
}

// Generate summarizes the transcript into a deduplicated topic list.
// Callers must not invoke this with an empty transcript; that case is
// skipped upstream (skipped_no_transcript), never sent to the model.
func (t *Topics) Generate(ctx context.Context, transcript string) ([]string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: topicsSystemPrompt}},
		},
	}

	prompt := fmt.Sprintf("Transcript:\n%s", transcript)
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}

	callStart := time.Now()
	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, config)
	duration := time.Since(callStart)
	if err != nil {
		return nil, fmt.Errorf("generate topics: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("received empty response from Gemini API")
	}

	raw := resp.Text()
	topics, err := jsonutil.Parse[[]string](raw)
	if err != nil {
		return nil, fmt.Errorf("parse topics response: %w", err)
	}

	topics = Dedupe(topics)
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}

	log.Debug().
		Str("model", t.model).
		Int("transcriptLength", len(strings.TrimSpace(transcript))).
		Int("topics", len(topics)).
		Dur("duration", duration).
		Msg("Topic generation complete")
	return topics, nil
}
