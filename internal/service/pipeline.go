package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"call_transcriber/internal/domain"
)

// PipelineConfig holds the orchestration knobs.
type PipelineConfig struct {
	Lookback time.Duration
	// InitialMarker seeds the dedup marker, normally empty. State is
	// volatile: a restart resets it and the latest call may be
	// reprocessed, which is an accepted trade-off.
	InitialMarker string
}

// Pipeline drives one processing cycle end to end and owns the in-memory
// dedup marker across cycles. A mutex serializes cycles so overlapping
// ticks can never race on the marker or process the same call twice.
type Pipeline struct {
	source      CallSource
	transcriber Transcriber
	recordings  RecordingStore
	transcripts TranscriptStore
	ledger      Ledger
	publisher   Publisher
	logger      *slog.Logger
	config      PipelineConfig

	mu     sync.Mutex
	marker string // Sid of the last successfully processed call

	now func() time.Time
}

func NewPipeline(
	source CallSource,
	transcriber Transcriber,
	recordings RecordingStore,
	transcripts TranscriptStore,
	ledger Ledger,
	publisher Publisher,
	logger *slog.Logger,
	cfg PipelineConfig,
) *Pipeline {
	return &Pipeline{
		source:      source,
		transcriber: transcriber,
		recordings:  recordings,
		transcripts: transcripts,
		ledger:      ledger,
		publisher:   publisher,
		logger:      logger,
		config:      cfg,
		marker:      cfg.InitialMarker,
		now:         time.Now,
	}
}

// Marker returns the Sid of the last successfully processed call, or the
// empty string if none.
func (p *Pipeline) Marker() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.marker
}

// RunOnce executes one fetch→select→download→transcribe→persist cycle.
// Any step's failure aborts the cycle without touching the dedup marker,
// so the same call is retried on the next cycle. A cycle that selects
// nothing is a successful no-op, not an error.
func (p *Pipeline) RunOnce(ctx context.Context) (*domain.CycleStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	startTime := p.now()
	stats := &domain.CycleStats{CycleID: uuid.NewString()}
	log := p.logger.With("cycle_id", stats.CycleID)

	log.Info("starting cycle",
		"source", p.source.Name(),
		"lookback", p.config.Lookback,
		"marker", p.marker,
	)

	since := startTime.Add(-p.config.Lookback)
	calls, err := p.source.ListCalls(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	stats.Fetched = len(calls)

	sel := Select(calls, p.marker, startTime, p.config.Lookback)
	switch {
	case sel.AlreadyProcessed:
		stats.Outcome = domain.OutcomeAlreadyProcessed
		stats.Duration = p.now().Sub(startTime)
		log.Info("latest call already processed", "fetched", stats.Fetched, "marker", p.marker)
		return stats, nil
	case sel.Call == nil:
		stats.Outcome = domain.OutcomeNoCandidate
		stats.Duration = p.now().Sub(startTime)
		log.Info("no eligible call", "fetched", stats.Fetched)
		return stats, nil
	}

	call := *sel.Call
	stats.CallSid = call.Sid
	log = log.With("call_sid", call.Sid)
	log.Info("selected call",
		"from", call.From,
		"to", call.To,
		"direction", call.Direction,
		"duration_sec", call.Duration,
		"started_at", call.StartedAt,
	)

	audio, err := p.source.DownloadRecording(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("download recording: %w", err)
	}

	downloadedAt := p.now()
	recPath, err := p.recordings.SaveRecording(ctx, call, audio, downloadedAt)
	if err != nil {
		return nil, fmt.Errorf("save recording: %w", err)
	}
	stats.RecordingPath = recPath

	if _, err := p.recordings.SaveMetadata(ctx, call, downloadedAt); err != nil {
		return nil, fmt.Errorf("save metadata: %w", err)
	}

	log.Info("transcribing", "provider", p.transcriber.Name(), "bytes", len(audio))
	transcript, err := p.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	transcribedAt := p.now()
	txPath, err := p.transcripts.SaveTranscript(ctx, call, transcript, downloadedAt, transcribedAt)
	if err != nil {
		return nil, fmt.Errorf("save transcript: %w", err)
	}
	stats.TranscriptPath = txPath

	// The call is fully processed; only now may the marker advance.
	p.marker = call.Sid
	stats.Outcome = domain.OutcomeProcessed

	rec := &domain.ProcessedCall{
		CallSid:        call.Sid,
		From:           call.From,
		To:             call.To,
		Direction:      call.Direction,
		Duration:       call.Duration,
		StartedAt:      call.StartedAt,
		RecordingPath:  recPath,
		TranscriptPath: txPath,
		Provider:       transcript.Provider,
		Segments:       len(transcript.Segments),
		ProcessedAt:    transcribedAt,
	}

	// Ledger and publish run after the marker advance: the call was
	// processed, and a broker or ledger hiccup must not cause a
	// re-transcription on the next cycle.
	if p.ledger != nil {
		if err := p.ledger.Record(ctx, rec); err != nil {
			log.Error("ledger record failed", "error", err)
		}
	}
	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, rec); err != nil {
			log.Error("publish failed", "error", err)
		}
	}

	stats.Duration = p.now().Sub(startTime)

	log.Info("cycle completed",
		"recording_path", recPath,
		"transcript_path", txPath,
		"segments", len(transcript.Segments),
		"duration", stats.Duration,
	)

	return stats, nil
}
