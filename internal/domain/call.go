package domain

import "time"

// Call statuses as reported by the telephony vendor. Only completed calls
// are eligible for processing.
const (
	StatusCompleted = "completed"
)

// Call directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Call is one telephony call record, immutable once built from the vendor
// response.
type Call struct {
	Sid          string
	From         string
	To           string
	Direction    string
	Status       string
	Duration     int // seconds
	StartedAt    time.Time
	RecordingURL string // empty means the call has no recording
}

// HasRecording reports whether the vendor exposed a recording for this call.
func (c Call) HasRecording() bool {
	return c.RecordingURL != ""
}
