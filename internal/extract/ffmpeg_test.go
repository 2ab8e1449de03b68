package extract

import (
	"errors"
	"reflect"
	"testing"
)

var errSentinel = errors.New("boom")

func TestBuildFFmpegArgs(t *testing.T) {
	args := buildFFmpegArgs("/tmp/in.mp4", "/tmp/out.flac")
	want := []string{
		"-i", "/tmp/in.mp4",
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "flac",
		"-y", "/tmp/out.flac",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("buildFFmpegArgs = %v, want %v", args, want)
	}
}

func TestIsCodecFailure(t *testing.T) {
	tests := []struct {
		output string
		want   bool
	}{
		{"in.mp4: Invalid data found when processing input", true},
		{"Decoder not found for codec xyz", true},
		{"No such file or directory", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := isCodecFailure(tc.output); got != tc.want {
			t.Errorf("isCodecFailure(%q) = %v, want %v", tc.output, got, tc.want)
		}
	}
}

func TestCodecError_Unwrap(t *testing.T) {
	inner := &CodecError{Err: errSentinel}
	if !IsCodecError(inner) {
		t.Error("IsCodecError must match a CodecError")
	}
	if IsCodecError(errSentinel) {
		t.Error("IsCodecError must not match arbitrary errors")
	}
}

func TestDecodeMessage(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"sourceBucketName":"media-uploads","sourceFilePath":"clips/clip.mp4","assetId":"01ff"}`))
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if msg.SourceBucketName != "media-uploads" || msg.SourceFilePath != "clips/clip.mp4" || msg.AssetID != "01ff" {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestDecodeMessage_Malformed(t *testing.T) {
	cases := []string{
		`not json`,
		`{}`,
		`{"sourceBucketName":"b","sourceFilePath":"p"}`,
	}
	for _, raw := range cases {
		if _, err := DecodeMessage([]byte(raw)); err == nil {
			t.Errorf("DecodeMessage(%q): expected error", raw)
		}
	}
}
