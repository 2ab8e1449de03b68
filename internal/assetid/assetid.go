// Package assetid derives the stable per-asset identifier used as the
// MediaRecord document key.
//
// Direct uploads are keyed by the lowercase hex encoding of their content
// hash, so re-uploading the same bytes lands on the same record. Audio
// tracks extracted from a video arrive named {assetId}.flac in the audio
// bucket, so their identifier is the filename stem — by construction the
// parent video's identifier.
package assetid

import (
	"encoding/hex"
	"errors"
	"path"
	"strings"
)

// ErrMissingIdentifier indicates an upload notification carried no content
// hash. Retrying cannot produce one, so the event is dropped, not retried.
var ErrMissingIdentifier = errors.New("asset notification has no content hash")

// ForUpload returns the identifier for a directly uploaded object:
// the lowercase hex encoding of its content hash.
func ForUpload(hash []byte) (string, error) {
	if len(hash) == 0 {
		return "", ErrMissingIdentifier
	}
	return hex.EncodeToString(hash), nil
}

// ForDerivedAudio returns the identifier for an object in the derived-audio
// bucket: the filename without directories or extension. The extraction
// stage names tracks after the parent video's identifier, so this recovers it.
func ForDerivedAudio(objectName string) string {
	base := path.Base(objectName)
	return strings.TrimSuffix(base, path.Ext(base))
}
