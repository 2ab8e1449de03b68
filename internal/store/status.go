package store

// Status is the per-capability processing state written to a MediaRecord.
//
// Transitions for every capability:
//
//	pending → processing            stage begins
//	processing → success            stage yielded at least one result
//	processing → no_results         stage completed with nothing to record
//	processing → error              external call failed
//
// Speech additionally goes processing → no_transcription when recognition
// completes but the joined transcript is empty, and topics goes
// pending → skipped_no_transcript directly when there is no transcript to
// summarize. Each invocation transitions independently — re-processing an
// asset already in success overwrites idempotently, by contract.
type Status string

const (
	StatusPending             Status = "pending"
	StatusProcessing          Status = "processing"
	StatusSuccess             Status = "success"
	StatusNoResults           Status = "no_results"
	StatusNoTranscription     Status = "no_transcription"
	StatusSkippedNoTranscript Status = "skipped_no_transcript"
	StatusError               Status = "error"
)

// OverallStatus is the record-level processing state. It transitions
// In Progress → Completed when the invocation finishes without an escaping
// error, and In Progress → Failed when one escapes the top-level boundary.
// Capability-level errors alone do not fail the record.
type OverallStatus string

const (
	OverallInProgress OverallStatus = "In Progress"
	OverallCompleted  OverallStatus = "Completed"
	OverallFailed     OverallStatus = "Failed"
)

// ResultStatus collapses a completed stage's outcome: success when the stage
// produced at least one non-empty result, no_results otherwise.
func ResultStatus(resultCount int) Status {
	if resultCount > 0 {
		return StatusSuccess
	}
	return StatusNoResults
}
