package assetid

import (
	"errors"
	"testing"
)

func TestForUpload(t *testing.T) {
	id, err := ForUpload([]byte{0xAB, 0x12, 0xCD})
	if err != nil {
		t.Fatalf("ForUpload: %v", err)
	}
	if id != "ab12cd" {
		t.Errorf("expected lowercase hex ab12cd, got %q", id)
	}
}

func TestForUpload_MissingHash(t *testing.T) {
	if _, err := ForUpload(nil); !errors.Is(err, ErrMissingIdentifier) {
		t.Errorf("expected ErrMissingIdentifier, got %v", err)
	}
	if _, err := ForUpload([]byte{}); !errors.Is(err, ErrMissingIdentifier) {
		t.Errorf("expected ErrMissingIdentifier for empty hash, got %v", err)
	}
}

func TestForDerivedAudio(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"abc123.flac", "abc123"},
		{"tracks/abc123.flac", "abc123"},
		{"abc123", "abc123"},
		{"weird.name.flac", "weird.name"},
	}
	for _, tc := range tests {
		if got := ForDerivedAudio(tc.name); got != tc.want {
			t.Errorf("ForDerivedAudio(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
