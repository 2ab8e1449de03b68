package analyze

import (
	"reflect"
	"testing"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"duplicates collapse", []string{"Cat", "Cat", "Ball"}, []string{"Cat", "Ball"}},
		{"order preserved", []string{"b", "a", "b", "c", "a"}, []string{"b", "a", "c"}},
		{"blank dropped", []string{"", "  ", "Dog"}, []string{"Dog"}},
		{"whitespace trimmed", []string{" Cat ", "Cat"}, []string{"Cat"}},
		{"empty input", nil, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Dedupe(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Dedupe(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestJoinTranscripts_Empty(t *testing.T) {
	if got := joinTranscripts(nil); got != "" {
		t.Errorf("nil response must yield empty transcript, got %q", got)
	}
}

func TestInferEncoding(t *testing.T) {
	cases := map[string]string{
		"gs://audio-tracks/abc123.flac": "FLAC",
		"gs://media-uploads/note.wav":   "LINEAR16",
		"gs://media-uploads/pod.mp3":    "MP3",
		"gs://media-uploads/talk.opus":  "OGG_OPUS",
		"gs://media-uploads/raw.bin":    "ENCODING_UNSPECIFIED",
	}
	for uri, want := range cases {
		if got := inferEncoding(uri).String(); got != want {
			t.Errorf("inferEncoding(%q) = %s, want %s", uri, got, want)
		}
	}
}
