// Package assemblyai implements the polling transcription variant: audio is
// uploaded, a job is submitted, and the job status is polled at a fixed
// interval until it reaches a terminal state or the deadline passes.
package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"call_transcriber/internal/domain"
)

const (
	ProviderID = "assemblyai"

	defaultBaseURL = "https://api.assemblyai.com"
)

// Config holds AssemblyAI client configuration. PollInterval and
// PollTimeout are independent budgets: the first sets the status-check
// cadence, the second the absolute deadline for the whole job.
type Config struct {
	APIKey       string
	BaseURL      string // empty uses the vendor default
	Language     string // "auto" enables provider-side detection
	Diarize      bool
	Punctuate    bool
	PollInterval time.Duration
	PollTimeout  time.Duration
}

type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	language     string
	diarize      bool
	punctuate    bool
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *slog.Logger
}

// New creates a new AssemblyAI client.
func New(cfg Config, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       cfg.APIKey,
		language:     cfg.Language,
		diarize:      cfg.Diarize,
		punctuate:    cfg.Punctuate,
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
		logger:       logger.With("provider", ProviderID),
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return ProviderID
}

// Transcribe uploads the audio, submits a transcription job and waits for a
// terminal state.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (*domain.Transcript, error) {
	audioURL, err := c.upload(ctx, audio)
	if err != nil {
		return nil, err
	}

	job, err := c.submit(ctx, audioURL)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("job submitted", "job_id", job.ID, "status", job.Status)

	final, err := c.await(ctx, job)
	if err != nil {
		return nil, err
	}

	return c.buildTranscript(final), nil
}

func (c *Client) upload(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/upload", bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var resp uploadResponse
	if err := c.do(req, "upload audio", &resp); err != nil {
		return "", err
	}
	if resp.UploadURL == "" {
		return "", &domain.UpstreamError{Op: "upload audio", Reason: "response missing upload_url"}
	}
	return resp.UploadURL, nil
}

func (c *Client) submit(ctx context.Context, audioURL string) (*transcriptResponse, error) {
	reqBody := transcriptRequest{
		AudioURL:      audioURL,
		SpeakerLabels: c.diarize,
		Punctuate:     c.punctuate,
	}
	if c.language == "" || c.language == "auto" {
		reqBody.LanguageDetection = true
	} else {
		reqBody.LanguageCode = c.language
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var resp transcriptResponse
	if err := c.do(req, "submit job", &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, &domain.UpstreamError{Op: "submit job", Reason: "response missing job id"}
	}
	return &resp, nil
}

// await polls the job status every pollInterval until a terminal state,
// giving up at pollTimeout. Both budgets are cut short by ctx cancellation.
func (c *Client) await(ctx context.Context, job *transcriptResponse) (*transcriptResponse, error) {
	if isTerminal(job.Status) {
		return c.checkTerminal(job)
	}

	deadline := time.NewTimer(c.pollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("job %s: %w", job.ID, domain.ErrTranscriptionTimeout)
		case <-ticker.C:
			status, err := c.poll(ctx, job.ID)
			if err != nil {
				return nil, err
			}
			c.logger.Debug("polled job", "job_id", job.ID, "status", status.Status)
			if isTerminal(status.Status) {
				return c.checkTerminal(status)
			}
		}
	}
}

func (c *Client) poll(ctx context.Context, jobID string) (*transcriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/transcript/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	var resp transcriptResponse
	if err := c.do(req, "poll job", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) checkTerminal(resp *transcriptResponse) (*transcriptResponse, error) {
	if resp.Status == statusError {
		return nil, &domain.TranscriptionError{JobID: resp.ID, Reason: resp.Error}
	}
	return resp, nil
}

func (c *Client) buildTranscript(resp *transcriptResponse) *domain.Transcript {
	tr := &domain.Transcript{
		Text:     resp.Text,
		Provider: ProviderID,
		Language: c.language,
	}
	for _, u := range resp.Utterances {
		tr.Segments = append(tr.Segments, domain.Segment{
			Speaker: u.Speaker,
			Text:    u.Text,
		})
	}
	return tr
}

func (c *Client) do(req *http.Request, op string, target any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UpstreamError{Op: op, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domain.UpstreamError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Reason:     strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &domain.UpstreamError{Op: op, Reason: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

func isTerminal(status string) bool {
	return status == statusCompleted || status == statusError
}
