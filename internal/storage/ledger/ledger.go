// Package ledger keeps an append-only record of processed calls in a local
// SQLite database. It exists for auditing and operator queries; selection
// never reads it, so restart semantics stay exactly those of the in-memory
// dedup marker.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"call_transcriber/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS processed_calls (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	call_sid TEXT NOT NULL,
	from_number TEXT NOT NULL,
	to_number TEXT NOT NULL,
	direction TEXT NOT NULL,
	duration INTEGER NOT NULL,
	started_at TIMESTAMP NOT NULL,
	recording_path TEXT NOT NULL,
	transcript_path TEXT NOT NULL,
	provider TEXT NOT NULL,
	segments INTEGER NOT NULL,
	processed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_processed_calls_sid ON processed_calls(call_sid);`

type Ledger struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the ledger database at path.
func Open(path string, logger *slog.Logger) (*Ledger, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &Ledger{db: db, logger: logger.With("store", "ledger")}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record appends one processed call.
func (l *Ledger) Record(ctx context.Context, rec *domain.ProcessedCall) error {
	query := `
		INSERT INTO processed_calls (
			call_sid, from_number, to_number, direction, duration,
			started_at, recording_path, transcript_path, provider,
			segments, processed_at
		) VALUES (
			:call_sid, :from_number, :to_number, :direction, :duration,
			:started_at, :recording_path, :transcript_path, :provider,
			:segments, :processed_at
		)`

	if _, err := l.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("record processed call: %w", err)
	}

	l.logger.Debug("recorded processed call", "call_sid", rec.CallSid)
	return nil
}

// History returns the most recent processed calls, newest first.
func (l *Ledger) History(ctx context.Context, limit int) ([]domain.ProcessedCall, error) {
	query := `
		SELECT call_sid, from_number, to_number, direction, duration,
		       started_at, recording_path, transcript_path, provider,
		       segments, processed_at
		FROM processed_calls
		ORDER BY processed_at DESC, id DESC
		LIMIT ?`

	var out []domain.ProcessedCall
	if err := l.db.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, fmt.Errorf("query ledger history: %w", err)
	}
	return out, nil
}
