package store

// Update is a capability-scoped partial write against a MediaRecord.
// It accumulates only the field paths the current stage is allowed to touch;
// everything else on an existing document passes through the merge unchanged.
//
// Updates are applied with a field-level upsert merge (create-if-absent),
// never a full-document replace. The read-modify-write sequence around an
// Update is deliberately not transactional: concurrent invocations for the
// same asset resolve last-writer-wins per overlapping field.
type Update struct {
	data map[string]interface{}
}

// NewUpdate creates an empty partial update.
func NewUpdate() *Update {
	return &Update{data: make(map[string]interface{})}
}

// set is the single write point so field names stay in one place.
func (u *Update) set(field string, value interface{}) *Update {
	u.data[field] = value
	return u
}

// AssetID stamps the document key field. Included on record-creating merges
// so a fresh document carries its own identifier.
func (u *Update) AssetID(id string) *Update {
	return u.set("assetId", id)
}

// SourceInfo refreshes the upload identity fields. Video and image paths set
// this on every event; the audio path sets it only for direct uploads,
// preserving the parent video's identity on derived tracks.
func (u *Update) SourceInfo(si SourceInfo) *Update {
	return u.set("sourceInfo", si)
}

// Tags overwrites the label tag list (ordered, deduplicated).
func (u *Update) Tags(tags []string) *Update {
	return u.set("tags", emptyIfNil(tags))
}

// ObjectTags overwrites the detected-object tag list (ordered, deduplicated).
func (u *Update) ObjectTags(tags []string) *Update {
	return u.set("objectTags", emptyIfNil(tags))
}

// Transcription overwrites the speech transcript.
func (u *Update) Transcription(text string) *Update {
	return u.set("transcription", text)
}

// Topics overwrites the generated topic list.
func (u *Update) Topics(topics []string) *Update {
	return u.set("topics", emptyIfNil(topics))
}

// VisionStatus sets the vision capability status.
func (u *Update) VisionStatus(s Status) *Update {
	return u.set("visionApiStatus", s)
}

// VideoStatus sets the video-annotation capability status.
func (u *Update) VideoStatus(s Status) *Update {
	return u.set("videoApiStatus", s)
}

// SpeechStatus sets the speech capability status.
func (u *Update) SpeechStatus(s Status) *Update {
	return u.set("speechApiStatus", s)
}

// TopicsStatus sets the topic-generation capability status.
func (u *Update) TopicsStatus(s Status) *Update {
	return u.set("topicsApiStatus", s)
}

// Overall sets the record-level processing status.
func (u *Update) Overall(s OverallStatus) *Update {
	return u.set("processingStatus", s)
}

// Error records the last-error snapshot.
func (u *Update) Error(kind, message string) *Update {
	return u.set("processingError", ProcessingError{Message: message, Kind: kind})
}

// ClearError removes a stale error snapshot from a record that is being
// reprocessed successfully.
func (u *Update) ClearError() *Update {
	return u.set("processingError", nil)
}

// Data exposes the accumulated field values keyed by document field name.
func (u *Update) Data() map[string]interface{} {
	return u.data
}

// Touches reports whether the update writes the given field.
func (u *Update) Touches(field string) bool {
	_, ok := u.data[field]
	return ok
}

// Empty reports whether nothing has been staged.
func (u *Update) Empty() bool {
	return len(u.data) == 0
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
