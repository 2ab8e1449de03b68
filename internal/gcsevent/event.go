// Package gcsevent models the Cloud Storage object payload carried by the
// CloudEvents that trigger the pipeline, plus small gs:// URI helpers.
package gcsevent

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CloudEvent types emitted by Cloud Storage. Only finalized objects are
// processed; deletions are acknowledged and dropped.
const (
	TypeFinalized = "google.cloud.storage.object.v1.finalized"
	TypeDeleted   = "google.cloud.storage.object.v1.deleted"
	TypeArchived  = "google.cloud.storage.object.v1.archived"
)

// Object is the storage object data embedded in a Cloud Storage CloudEvent.
// Field names follow the JSON payload of the storage notification.
type Object struct {
	Bucket         string    `json:"bucket"`
	Name           string    `json:"name"`
	ContentType    string    `json:"contentType"`
	MD5Hash        string    `json:"md5Hash"` // base64-encoded
	Size           string    `json:"size"`
	TimeCreated    time.Time `json:"timeCreated"`
	Generation     string    `json:"generation"`
	Metageneration string    `json:"metageneration"`
}

// HashBytes decodes the base64 md5Hash field. Returns nil, nil when the
// notification carried no hash (e.g. composite objects).
func (o Object) HashBytes() ([]byte, error) {
	if o.MD5Hash == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(o.MD5Hash)
	if err != nil {
		return nil, fmt.Errorf("decode md5Hash %q: %w", o.MD5Hash, err)
	}
	return b, nil
}

// SizeBytes parses the notification's decimal size field; 0 when absent
// or malformed.
func (o Object) SizeBytes() int64 {
	n, err := strconv.ParseInt(o.Size, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// URI returns the gs:// locator for the object.
func (o Object) URI() string {
	return URI(o.Bucket, o.Name)
}

// URI builds a gs:// locator from a bucket and object name.
func URI(bucket, name string) string {
	return "gs://" + bucket + "/" + name
}

// ParseURI splits a gs://bucket/object locator into bucket and object name.
func ParseURI(uri string) (bucket, name string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid gs uri: %q", uri)
	}
	trim := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trim, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid gs uri: %q", uri)
	}
	bucket = parts[0]
	if len(parts) == 2 {
		name = parts[1]
	}
	return bucket, name, nil
}

// IsDeletion reports whether the CloudEvent type signals object removal.
// Archive events on versioned buckets are treated the same way.
func IsDeletion(eventType string) bool {
	return eventType == TypeDeleted || eventType == TypeArchived
}
