package domain

import "time"

// Cycle outcomes. NoCandidate and AlreadyProcessed are successful no-op
// cycles, not errors.
type Outcome string

const (
	OutcomeProcessed        Outcome = "processed"
	OutcomeNoCandidate      Outcome = "no_candidate"
	OutcomeAlreadyProcessed Outcome = "already_processed"
)

// CycleStats describes one fetch→select→download→transcribe→persist cycle.
type CycleStats struct {
	CycleID        string
	Outcome        Outcome
	CallSid        string
	Fetched        int
	RecordingPath  string
	TranscriptPath string
	Duration       time.Duration
}

// ProcessedCall is the record of a fully processed call, as written to the
// ledger and published to downstream consumers.
type ProcessedCall struct {
	CallSid        string    `json:"call_sid" db:"call_sid"`
	From           string    `json:"from" db:"from_number"`
	To             string    `json:"to" db:"to_number"`
	Direction      string    `json:"direction" db:"direction"`
	Duration       int       `json:"duration" db:"duration"`
	StartedAt      time.Time `json:"started_at" db:"started_at"`
	RecordingPath  string    `json:"recording_path" db:"recording_path"`
	TranscriptPath string    `json:"transcript_path" db:"transcript_path"`
	Provider       string    `json:"provider" db:"provider"`
	Segments       int       `json:"segments" db:"segments"`
	ProcessedAt    time.Time `json:"processed_at" db:"processed_at"`
}
