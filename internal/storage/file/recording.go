// Package file persists recordings and transcripts to the local
// filesystem. Artifacts are append-only: files are written once and never
// mutated or deleted by this system.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"call_transcriber/internal/domain"
)

// Timestamp layout used in artifact filenames.
const filenameTimestamp = "20060102_150405"

// RecordingStore writes downloaded audio blobs and their metadata sidecar,
// keyed by call Sid.
type RecordingStore struct {
	dir    string
	logger *slog.Logger
}

func NewRecordingStore(dir string, logger *slog.Logger) (*RecordingStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &domain.PersistenceError{Path: dir, Err: err}
	}
	return &RecordingStore{dir: dir, logger: logger.With("store", "recordings")}, nil
}

// SaveRecording writes the audio under {dir}/{sid}_{downloadTS}.mp3 and
// returns the path.
func (s *RecordingStore) SaveRecording(_ context.Context, call domain.Call, audio []byte, downloadedAt time.Time) (string, error) {
	name := fmt.Sprintf("%s_%s.mp3", call.Sid, downloadedAt.Format(filenameTimestamp))
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", &domain.PersistenceError{Path: path, Err: err}
	}

	s.logger.Debug("saved recording", "call_sid", call.Sid, "path", path, "bytes", len(audio))
	return path, nil
}

type callMetadata struct {
	CallSid      string `json:"call_sid"`
	From         string `json:"from"`
	To           string `json:"to"`
	Direction    string `json:"direction"`
	Duration     int    `json:"duration"`
	Timestamp    string `json:"timestamp"`
	DownloadedAt string `json:"downloaded_at"`
}

// SaveMetadata writes the {sid}_metadata.json sidecar and returns the path.
func (s *RecordingStore) SaveMetadata(_ context.Context, call domain.Call, downloadedAt time.Time) (string, error) {
	path := filepath.Join(s.dir, call.Sid+"_metadata.json")

	meta := callMetadata{
		CallSid:      call.Sid,
		From:         call.From,
		To:           call.To,
		Direction:    call.Direction,
		Duration:     call.Duration,
		Timestamp:    call.StartedAt.Format(headerDateLayout),
		DownloadedAt: downloadedAt.Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", &domain.PersistenceError{Path: path, Err: err}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &domain.PersistenceError{Path: path, Err: err}
	}

	s.logger.Debug("saved metadata", "call_sid", call.Sid, "path", path)
	return path, nil
}
