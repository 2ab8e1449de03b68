package gcsevent

import (
	"encoding/base64"
	"testing"
)

func TestObject_HashBytes(t *testing.T) {
	raw := []byte{0xde, 0xad, 0xbe, 0xef}
	o := Object{MD5Hash: base64.StdEncoding.EncodeToString(raw)}

	b, err := o.HashBytes()
	if err != nil {
		t.Fatalf("HashBytes: %v", err)
	}
	if string(b) != string(raw) {
		t.Errorf("expected %x, got %x", raw, b)
	}
}

func TestObject_HashBytes_Missing(t *testing.T) {
	b, err := Object{}.HashBytes()
	if err != nil {
		t.Fatalf("expected nil error for missing hash, got %v", err)
	}
	if b != nil {
		t.Errorf("expected nil bytes for missing hash, got %x", b)
	}
}

func TestObject_HashBytes_Invalid(t *testing.T) {
	if _, err := (Object{MD5Hash: "!!not-base64!!"}).HashBytes(); err == nil {
		t.Error("expected error for invalid base64 hash")
	}
}

func TestObject_SizeBytes(t *testing.T) {
	if got := (Object{Size: "2048"}).SizeBytes(); got != 2048 {
		t.Errorf("SizeBytes = %d, want 2048", got)
	}
	if got := (Object{Size: "not-a-number"}).SizeBytes(); got != 0 {
		t.Errorf("SizeBytes for malformed size = %d, want 0", got)
	}
	if got := (Object{}).SizeBytes(); got != 0 {
		t.Errorf("SizeBytes for missing size = %d, want 0", got)
	}
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri        string
		bucket     string
		name       string
		shouldFail bool
	}{
		{"gs://media-bucket/clips/clip.mp4", "media-bucket", "clips/clip.mp4", false},
		{"gs://media-bucket", "media-bucket", "", false},
		{"s3://media-bucket/clip.mp4", "", "", true},
		{"gs:///clip.mp4", "", "", true},
	}
	for _, tc := range tests {
		bucket, name, err := ParseURI(tc.uri)
		if tc.shouldFail {
			if err == nil {
				t.Errorf("ParseURI(%q): expected error", tc.uri)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseURI(%q): %v", tc.uri, err)
			continue
		}
		if bucket != tc.bucket || name != tc.name {
			t.Errorf("ParseURI(%q) = %q, %q; want %q, %q", tc.uri, bucket, name, tc.bucket, tc.name)
		}
	}
}

func TestIsDeletion(t *testing.T) {
	if IsDeletion(TypeFinalized) {
		t.Error("finalized must not be a deletion")
	}
	if !IsDeletion(TypeDeleted) || !IsDeletion(TypeArchived) {
		t.Error("deleted and archived must both count as deletions")
	}
}
