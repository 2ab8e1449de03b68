package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/archivion/backend-GCP/internal/store"
)

// stubFFmpeg puts a fake ffmpeg script at the front of PATH so transcoding
// outcomes can be simulated without media files.
func stubFFmpeg(t *testing.T, script string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	t.Setenv("PATH", dir)
}

// Shell bodies for the three transcoder outcomes. The success stub touches
// its last argument, which is the output path in the built args.
const (
	ffmpegSucceed     = `for a in "$@"; do out=$a; done; : > "$out"; exit 0`
	ffmpegCodecFail   = `echo "Invalid data found when processing input" >&2; exit 1`
	ffmpegGenericFail = `echo "Connection reset by peer" >&2; exit 1`
)

type fakeBlobs struct {
	downloadErr error

	uploads     int
	uploadPath  string
	uploadMeta  [3]string // bucket, object, contentType
}

func (f *fakeBlobs) Download(_ context.Context, _, _, localPath string) error {
	if f.downloadErr != nil {
		return f.downloadErr
	}
	return os.WriteFile(localPath, []byte("video-bytes"), 0o644)
}

func (f *fakeBlobs) Upload(_ context.Context, localPath, bucket, object, contentType string) error {
	if _, err := os.Stat(localPath); err != nil {
		return err
	}
	f.uploads++
	f.uploadPath = localPath
	f.uploadMeta = [3]string{bucket, object, contentType}
	return nil
}

type fakeRecorder struct {
	assetIDs []string
	updates  []*store.Update
}

func (f *fakeRecorder) Merge(_ context.Context, assetID string, u *store.Update) error {
	f.assetIDs = append(f.assetIDs, assetID)
	f.updates = append(f.updates, u)
	return nil
}

func newTestExtractor(t *testing.T) (*Extractor, *fakeBlobs, *fakeRecorder) {
	t.Helper()
	blobs := &fakeBlobs{}
	records := &fakeRecorder{}
	e := &Extractor{
		blobs:       blobs,
		records:     records,
		audioBucket: "media-audio",
		tempRoot:    t.TempDir(),
	}
	return e, blobs, records
}

// assertWorkDirsRemoved checks that no extraction work dir survived Run.
func assertWorkDirsRemoved(t *testing.T, tempRoot string) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(tempRoot, "audio-extract"))
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		t.Fatalf("read work dir root: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("work dirs left behind: %d entries", len(entries))
	}
}

func TestExtractAudio_NonZeroExit(t *testing.T) {
	stubFFmpeg(t, ffmpegGenericFail)
	dir := t.TempDir()

	err := ExtractAudio(context.Background(), filepath.Join(dir, "in.mp4"), filepath.Join(dir, "out.flac"))
	if err == nil {
		t.Fatal("ExtractAudio returned nil for non-zero ffmpeg exit")
	}
	if IsCodecError(err) {
		t.Errorf("generic failure misclassified as codec error: %v", err)
	}
}

func TestExtractAudio_CodecFailureClassified(t *testing.T) {
	stubFFmpeg(t, ffmpegCodecFail)
	dir := t.TempDir()

	err := ExtractAudio(context.Background(), filepath.Join(dir, "in.mp4"), filepath.Join(dir, "out.flac"))
	if err == nil {
		t.Fatal("ExtractAudio returned nil for codec failure")
	}
	if !IsCodecError(err) {
		t.Errorf("codec failure not classified: %v", err)
	}
}

func TestRun_UploadsTrackAndCleansUp(t *testing.T) {
	stubFFmpeg(t, ffmpegSucceed)
	e, blobs, records := newTestExtractor(t)

	msg := Message{SourceBucketName: "media-uploads", SourceFilePath: "clips/clip.mp4", AssetID: "abc123"}
	if err := e.Run(context.Background(), msg); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if blobs.uploads != 1 {
		t.Fatalf("uploads = %d, want 1", blobs.uploads)
	}
	want := [3]string{"media-audio", "abc123.flac", AudioContentType}
	if blobs.uploadMeta != want {
		t.Errorf("upload = %v, want %v", blobs.uploadMeta, want)
	}
	if len(records.updates) != 0 {
		t.Errorf("record touched on success: %d merges", len(records.updates))
	}
	assertWorkDirsRemoved(t, e.tempRoot)
}

func TestRun_FFmpegExitErrorReturnedAndCleansUp(t *testing.T) {
	stubFFmpeg(t, ffmpegGenericFail)
	e, blobs, records := newTestExtractor(t)

	msg := Message{SourceBucketName: "media-uploads", SourceFilePath: "clip.mp4", AssetID: "abc123"}
	err := e.Run(context.Background(), msg)
	if err == nil {
		t.Fatal("Run returned nil for failing ffmpeg")
	}
	if blobs.uploads != 0 {
		t.Errorf("uploaded despite extraction failure")
	}
	// Transient failures are left to the platform's retry; the record is
	// only stamped for unrecoverable codec failures.
	if len(records.updates) != 0 {
		t.Errorf("record touched on transient failure: %d merges", len(records.updates))
	}
	assertWorkDirsRemoved(t, e.tempRoot)
}

func TestRun_CodecFailureMarksRecordFailed(t *testing.T) {
	stubFFmpeg(t, ffmpegCodecFail)
	e, _, records := newTestExtractor(t)

	msg := Message{SourceBucketName: "media-uploads", SourceFilePath: "clip.mp4", AssetID: "abc123"}
	err := e.Run(context.Background(), msg)
	if err == nil {
		t.Fatal("Run returned nil for codec failure")
	}
	if !IsCodecError(err) {
		t.Fatalf("expected codec classification, got %v", err)
	}

	if len(records.updates) != 1 {
		t.Fatalf("record merges = %d, want 1", len(records.updates))
	}
	if records.assetIDs[0] != "abc123" {
		t.Errorf("failure recorded under %q, want abc123", records.assetIDs[0])
	}
	u := records.updates[0]
	if got := u.Data()["processingStatus"]; got != store.OverallFailed {
		t.Errorf("processingStatus = %v, want Failed", got)
	}
	pe, ok := u.Data()["processingError"].(store.ProcessingError)
	if !ok {
		t.Fatalf("processingError = %v, want ProcessingError", u.Data()["processingError"])
	}
	if pe.Kind != "codec" {
		t.Errorf("processingError.kind = %q, want codec", pe.Kind)
	}
	assertWorkDirsRemoved(t, e.tempRoot)
}
