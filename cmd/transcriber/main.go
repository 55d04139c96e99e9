package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"call_transcriber/internal/config"
	"call_transcriber/internal/publisher"
	"call_transcriber/internal/scheduler"
	"call_transcriber/internal/service"
	"call_transcriber/internal/source/exotel"
	"call_transcriber/internal/storage/file"
	"call_transcriber/internal/storage/ledger"
	"call_transcriber/internal/transcriber/assemblyai"
	"call_transcriber/internal/transcriber/deepgram"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single cycle and exit, regardless of sync.continuous")
	history := flag.Int("history", 0, "print the N most recently processed calls from the ledger and exit")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	// Initialize stores
	recordings, err := file.NewRecordingStore(cfg.Storage.RecordingsDir, logger)
	if err != nil {
		logger.Error("failed to init recording store", "error", err)
		os.Exit(1)
	}
	transcripts, err := file.NewTranscriptStore(cfg.Storage.TranscriptionsDir, cfg.Storage.LabelStyle, logger)
	if err != nil {
		logger.Error("failed to init transcript store", "error", err)
		os.Exit(1)
	}

	var callLedger service.Ledger
	if cfg.Storage.LedgerPath != "" {
		l, err := ledger.Open(cfg.Storage.LedgerPath, logger)
		if err != nil {
			logger.Error("failed to open ledger", "error", err)
			os.Exit(1)
		}
		defer l.Close()
		callLedger = l

		if *history > 0 {
			if err := printHistory(l, *history); err != nil {
				logger.Error("failed to read ledger history", "error", err)
				os.Exit(1)
			}
			return
		}
	} else if *history > 0 {
		logger.Error("history requires storage.ledger_path to be set")
		os.Exit(1)
	}

	// Initialize optional RabbitMQ publisher
	var pub service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	// Initialize telephony source
	source := exotel.New(exotel.Config{
		BaseURL:    cfg.Telephony.BaseURL,
		AccountSID: cfg.Telephony.AccountSID,
		APIKey:     cfg.Telephony.APIKey,
		APIToken:   cfg.Telephony.APIToken,
		Timeout:    cfg.Telephony.Timeout,
	}, logger)

	// Initialize transcription provider
	var transcriber service.Transcriber
	switch cfg.Transcription.Provider {
	case "assemblyai":
		transcriber = assemblyai.New(assemblyai.Config{
			APIKey:       cfg.Transcription.APIKey,
			BaseURL:      cfg.Transcription.BaseURL,
			Language:     cfg.Transcription.Language,
			Diarize:      cfg.Transcription.Diarize,
			Punctuate:    cfg.Transcription.Punctuate,
			PollInterval: cfg.Transcription.PollInterval,
			PollTimeout:  cfg.Transcription.PollTimeout,
		}, logger)
	case "deepgram":
		transcriber = deepgram.New(deepgram.Config{
			APIKey:    cfg.Transcription.APIKey,
			BaseURL:   cfg.Transcription.BaseURL,
			Model:     cfg.Transcription.Model,
			Language:  cfg.Transcription.Language,
			Diarize:   cfg.Transcription.Diarize,
			Punctuate: cfg.Transcription.Punctuate,
		}, logger)
	}

	pipeline := service.NewPipeline(
		source,
		transcriber,
		recordings,
		transcripts,
		callLedger,
		pub,
		logger,
		service.PipelineConfig{Lookback: cfg.Sync.Lookback()},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting call transcriber",
		"source", source.Name(),
		"provider", transcriber.Name(),
		"hours", cfg.Sync.Hours,
		"continuous", cfg.Sync.Continuous,
		"interval", cfg.Sync.Interval,
	)

	if *once || !cfg.Sync.Continuous {
		cycleCtx, cycleCancel := context.WithTimeout(ctx, cfg.Sync.CycleTimeout)
		defer cycleCancel()
		if _, err := pipeline.RunOnce(cycleCtx); err != nil {
			logger.Error("cycle failed", "error", err)
			os.Exit(1)
		}
		return
	}

	sched := scheduler.New(pipeline, cfg.Sync.Interval, cfg.Sync.CycleTimeout, logger)
	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func printHistory(l *ledger.Ledger, limit int) error {
	records, err := l.History(context.Background(), limit)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
