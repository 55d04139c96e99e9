// Package deepgram implements the direct transcription variant: the vendor
// returns the finished result inline, so there is no polling phase.
package deepgram

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/pkg/client/listen"

	"call_transcriber/internal/domain"
)

const ProviderID = "deepgram"

// Config holds Deepgram client configuration.
type Config struct {
	APIKey    string
	BaseURL   string // empty uses the vendor default
	Model     string
	Language  string // empty lets the vendor detect the language
	Diarize   bool
	Punctuate bool
}

type Client struct {
	rest      *api.Client
	model     string
	language  string
	diarize   bool
	punctuate bool
	logger    *slog.Logger
}

// initOnce guards the SDK init: it registers klog flags on the global flag
// set and panics if run twice in one process.
var initOnce sync.Once

// New creates a new Deepgram client backed by the vendor SDK.
func New(cfg Config, logger *slog.Logger) *Client {
	initOnce.Do(client.InitWithDefault)

	opts := &interfaces.ClientOptions{}
	if cfg.BaseURL != "" {
		opts.Host = cfg.BaseURL
	}

	return &Client{
		rest:      api.New(client.NewREST(cfg.APIKey, opts)),
		model:     cfg.Model,
		language:  cfg.Language,
		diarize:   cfg.Diarize,
		punctuate: cfg.Punctuate,
		logger:    logger.With("provider", ProviderID),
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return ProviderID
}

// Transcribe submits the audio and parses the inline result. Speaker
// segments are built by grouping consecutive words that share the vendor's
// speaker id, which is how the prerecorded API exposes diarization.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (*domain.Transcript, error) {
	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:     c.model,
		Punctuate: c.punctuate,
		Diarize:   c.diarize,
	}
	if c.language != "" && c.language != "auto" {
		options.Language = c.language
	} else {
		options.DetectLanguage = true
	}

	resp, err := c.rest.FromStream(ctx, bytes.NewReader(audio), options)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "transcribe", Reason: err.Error()}
	}

	if resp.Results == nil || len(resp.Results.Channels) == 0 ||
		len(resp.Results.Channels[0].Alternatives) == 0 {
		return nil, &domain.TranscriptionError{Reason: "response contains no transcription alternatives"}
	}

	alt := resp.Results.Channels[0].Alternatives[0]

	words := make([]wordInfo, 0, len(alt.Words))
	for _, w := range alt.Words {
		text := w.PunctuatedWord
		if text == "" {
			text = w.Word
		}
		// The speaker id is absent when diarization is off.
		speaker := 0
		if w.Speaker != nil {
			speaker = *w.Speaker
		}
		words = append(words, wordInfo{speaker: speaker, text: text})
	}

	tr := &domain.Transcript{
		Text:     alt.Transcript,
		Segments: segmentsFromWords(words),
		Provider: ProviderID,
		Language: c.language,
	}

	c.logger.Debug("transcription completed",
		"segments", len(tr.Segments),
		"words", len(alt.Words),
	)

	return tr, nil
}
