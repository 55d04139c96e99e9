package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"call_transcriber/internal/domain"
)

// TranscriptStore writes formatted transcript text files, keyed by call Sid.
type TranscriptStore struct {
	dir        string
	labelStyle string
	logger     *slog.Logger
}

func NewTranscriptStore(dir, labelStyle string, logger *slog.Logger) (*TranscriptStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &domain.PersistenceError{Path: dir, Err: err}
	}
	return &TranscriptStore{
		dir:        dir,
		labelStyle: labelStyle,
		logger:     logger.With("store", "transcriptions"),
	}, nil
}

// SaveTranscript writes the transcript under
// {dir}/{sid}_{downloadTS}_{transcribeTS}.txt and returns the path.
// Speaker tokens are relabeled to the configured display style here; the
// stored transcript keeps the vendor tokens untouched.
func (s *TranscriptStore) SaveTranscript(_ context.Context, call domain.Call, tr *domain.Transcript, downloadedAt, transcribedAt time.Time) (string, error) {
	name := fmt.Sprintf("%s_%s_%s.txt",
		call.Sid,
		downloadedAt.Format(filenameTimestamp),
		transcribedAt.Format(filenameTimestamp),
	)
	path := filepath.Join(s.dir, name)

	header := TranscriptHeader{
		CallSid:   call.Sid,
		From:      call.From,
		To:        call.To,
		Direction: call.Direction,
		Duration:  call.Duration,
		Date:      transcribedAt.Format(headerDateLayout),
	}

	data := renderTranscript(header, tr.Text, Relabel(tr.Segments, s.labelStyle))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &domain.PersistenceError{Path: path, Err: err}
	}

	s.logger.Debug("saved transcript",
		"call_sid", call.Sid,
		"path", path,
		"segments", len(tr.Segments),
	)
	return path, nil
}
