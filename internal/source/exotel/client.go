package exotel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"call_transcriber/internal/domain"
)

const (
	SourceID   = "exotel"
	SourceName = "Exotel Voice"

	// Layout of StartTime in call-list responses.
	startTimeLayout = "2006-01-02 15:04:05"
)

// Config holds Exotel client configuration.
type Config struct {
	BaseURL    string
	AccountSID string
	APIKey     string
	APIToken   string
	Timeout    time.Duration
}

// Client wraps the Exotel call-list and recording-download endpoints.
// It performs no retries; the next poll cycle is the retry mechanism.
type Client struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	apiKey     string
	apiToken   string
	logger     *slog.Logger
}

// New creates a new Exotel client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accountSID: cfg.AccountSID,
		apiKey:     cfg.APIKey,
		apiToken:   cfg.APIToken,
		logger:     logger.With("source", SourceID),
	}
}

// Name returns the human-readable source name.
func (c *Client) Name() string {
	return SourceName
}

// ListCalls fetches calls with a start time on or after since.
func (c *Client) ListCalls(ctx context.Context, since time.Time) ([]domain.Call, error) {
	endpoint := fmt.Sprintf("%s/v1/Accounts/%s/Calls.json", c.baseURL, c.accountSID)

	q := url.Values{}
	q.Set("StartTime", since.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "list calls", Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{
			Op:         "list calls",
			StatusCode: resp.StatusCode,
			Reason:     resp.Status,
		}
	}

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &domain.UpstreamError{Op: "list calls", Reason: fmt.Sprintf("decode response: %v", err)}
	}

	calls := c.transform(apiResp.Calls)

	c.logger.Debug("fetched calls",
		"since", since.Format("2006-01-02"),
		"count", len(calls),
	)

	return calls, nil
}

// DownloadRecording fetches the raw audio bytes for a call's recording.
// Callers should have filtered calls without a recording already; the
// client re-validates and returns domain.ErrNoRecording if it is absent.
func (c *Client) DownloadRecording(ctx context.Context, call domain.Call) ([]byte, error) {
	if !call.HasRecording() {
		return nil, domain.ErrNoRecording
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, call.RecordingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "download recording", Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{
			Op:         "download recording",
			StatusCode: resp.StatusCode,
			Reason:     resp.Status,
		}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "download recording", Reason: fmt.Sprintf("read body: %v", err)}
	}

	c.logger.Debug("downloaded recording",
		"call_sid", call.Sid,
		"bytes", len(audio),
	)

	return audio, nil
}

func (c *Client) transform(records []CallRecord) []domain.Call {
	calls := make([]domain.Call, 0, len(records))

	for _, r := range records {
		startedAt, err := time.Parse(startTimeLayout, r.StartTime)
		if err != nil {
			c.logger.Warn("failed to parse start time",
				"call_sid", r.Sid,
				"start_time", r.StartTime,
			)
			continue
		}

		calls = append(calls, domain.Call{
			Sid:          r.Sid,
			From:         r.From,
			To:           r.To,
			Direction:    r.Direction,
			Status:       r.Status,
			Duration:     r.Duration,
			StartedAt:    startedAt,
			RecordingURL: r.RecordingURL,
		})
	}

	return calls
}
