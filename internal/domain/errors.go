package domain

import (
	"errors"
	"fmt"
)

// ErrNoRecording marks a call without a recording. It is an expected
// no-op outcome, not a failure.
var ErrNoRecording = errors.New("call has no recording")

// ErrTranscriptionTimeout is returned when a transcription job reaches no
// terminal state within the configured deadline.
var ErrTranscriptionTimeout = errors.New("transcription did not reach a terminal state in time")

// UpstreamError reports a non-2xx response, a network failure or a
// malformed body from either vendor API.
type UpstreamError struct {
	Op         string // "list calls", "download recording", "submit job", ...
	StatusCode int    // 0 when the request never completed
	Reason     string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: upstream returned %d: %s", e.Op, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// TranscriptionError reports a transcription job the vendor marked failed.
type TranscriptionError struct {
	JobID  string
	Reason string
}

func (e *TranscriptionError) Error() string {
	if e.JobID != "" {
		return fmt.Sprintf("transcription job %s failed: %s", e.JobID, e.Reason)
	}
	return fmt.Sprintf("transcription failed: %s", e.Reason)
}

// PersistenceError reports a local write failure.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
