package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"call_transcriber/internal/domain"
)

// CallSource queries the telephony vendor.
type CallSource interface {
	Name() string
	ListCalls(ctx context.Context, since time.Time) ([]domain.Call, error)
	DownloadRecording(ctx context.Context, call domain.Call) ([]byte, error)
}

// Transcriber turns audio into a transcript. Implementations may poll a
// vendor job or return the result inline; the pipeline does not care.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte) (*domain.Transcript, error)
}

// RecordingStore persists downloaded audio and the call metadata sidecar.
type RecordingStore interface {
	SaveRecording(ctx context.Context, call domain.Call, audio []byte, downloadedAt time.Time) (string, error)
	SaveMetadata(ctx context.Context, call domain.Call, downloadedAt time.Time) (string, error)
}

// TranscriptStore persists the formatted transcript text.
type TranscriptStore interface {
	SaveTranscript(ctx context.Context, call domain.Call, tr *domain.Transcript, downloadedAt, transcribedAt time.Time) (string, error)
}

// Ledger records processed calls for audit. It is never consulted during
// selection.
type Ledger interface {
	Record(ctx context.Context, rec *domain.ProcessedCall) error
}

// Publisher emits transcript-ready events for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, rec *domain.ProcessedCall) error
	Close() error
}
