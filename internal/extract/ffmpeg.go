package extract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/archivion/backend-GCP/internal/metrics"
)

// Output contract for the speech stage: one channel, 16 kHz, lossless
// compression. Speech recognition needs nothing more and FLAC keeps the
// uploads small.
const (
	audioChannels   = "1"
	audioSampleRate = "16000"
	audioCodec      = "flac"
)

// AudioContentType is the content type of uploaded extracted tracks.
const AudioContentType = "audio/flac"

// CodecError indicates ffmpeg could not read the source's audio stream.
// Retrying the invocation cannot change the source bytes, but the error is
// still surfaced so the trigger infrastructure applies its policy.
type CodecError struct {
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("unsupported codec: %v", e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// IsCodecError reports whether err wraps a CodecError.
func IsCodecError(err error) bool {
	var ce *CodecError
	return errors.As(err, &ce)
}

// CheckFFmpegAvailable checks that ffmpeg is in the system PATH.
// Called at cold start so a misbuilt container fails fast.
func CheckFFmpegAvailable() error {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	log.Debug().Str("path", path).Msg("ffmpeg found")
	return nil
}

// buildFFmpegArgs constructs the extraction arguments: drop the video
// stream, downmix to mono, resample to 16 kHz, encode FLAC.
func buildFFmpegArgs(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-vn",
		"-ac", audioChannels,
		"-ar", audioSampleRate,
		"-c:a", audioCodec,
		"-y", outputPath,
	}
}

// codecFailureMarkers are ffmpeg output fragments that identify a source
// whose audio stream cannot be decoded, as opposed to a transient failure.
var codecFailureMarkers = []string{
	"invalid data found when processing input",
	"could not find codec",
	"decoder not found",
	"unsupported codec",
	"does not contain any stream",
}

// ExtractAudio transcodes the audio track of inputPath into outputPath.
// A non-zero exit or spawn failure is fatal for the invocation; codec
// failures are wrapped in CodecError so the caller can record the kind.
func ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	args := buildFFmpegArgs(inputPath, outputPath)
	log.Debug().Strs("args", args).Msg("Running ffmpeg audio extraction")

	ffmpegStart := time.Now()
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(ffmpegStart)

	if err != nil {
		log.Warn().
			Err(err).
			Str("inputPath", inputPath).
			Str("ffmpegOutput", truncate(string(output), 2000)).
			Dur("duration", elapsed).
			Msg("ffmpeg audio extraction failed")
		metrics.New("Archivion").
			Metric("AudioExtractionMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
			Count("AudioExtractionErrors").
			Flush()

		wrapped := fmt.Errorf("ffmpeg extraction failed: %w\nOutput: %s", err, output)
		if isCodecFailure(string(output)) {
			return &CodecError{Err: wrapped}
		}
		return wrapped
	}

	metrics.New("Archivion").
		Metric("AudioExtractionMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Count("AudioExtractions").
		Flush()

	log.Info().
		Str("inputPath", inputPath).
		Str("outputPath", outputPath).
		Dur("duration", elapsed).
		Msg("Audio extraction complete")
	return nil
}

func isCodecFailure(output string) bool {
	lower := strings.ToLower(output)
	for _, marker := range codecFailureMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
