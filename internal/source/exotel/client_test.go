package exotel

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call_transcriber/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(baseURL string) *Client {
	return New(Config{
		BaseURL:    baseURL,
		AccountSID: "acc123",
		APIKey:     "key",
		APIToken:   "token",
		Timeout:    5 * time.Second,
	}, testLogger())
}

func TestListCalls(t *testing.T) {
	const body = `{
		"Calls": [
			{
				"Sid": "c1",
				"From": "+15550001111",
				"To": "+15550002222",
				"Direction": "inbound",
				"Status": "completed",
				"Duration": 42,
				"StartTime": "2025-12-03 18:30:00",
				"RecordingUrl": "https://recordings.example.com/c1.mp3"
			},
			{
				"Sid": "c2",
				"Status": "completed",
				"Duration": 10,
				"StartTime": "not-a-time",
				"RecordingUrl": "https://recordings.example.com/c2.mp3"
			}
		]
	}`

	var gotPath, gotQuery string
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("StartTime")
		gotUser, gotPass, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	since := time.Date(2025, 12, 2, 18, 30, 0, 0, time.UTC)
	calls, err := client.ListCalls(context.Background(), since)
	require.NoError(t, err)

	assert.Equal(t, "/v1/Accounts/acc123/Calls.json", gotPath)
	assert.Equal(t, "2025-12-02", gotQuery)
	assert.Equal(t, "key", gotUser)
	assert.Equal(t, "token", gotPass)

	// The record with an unparseable StartTime is skipped, not fatal.
	require.Len(t, calls, 1)
	assert.Equal(t, "c1", calls[0].Sid)
	assert.Equal(t, "+15550001111", calls[0].From)
	assert.Equal(t, domain.StatusCompleted, calls[0].Status)
	assert.Equal(t, 42, calls[0].Duration)
	assert.Equal(t, time.Date(2025, 12, 3, 18, 30, 0, 0, time.UTC), calls[0].StartedAt)
	assert.True(t, calls[0].HasRecording())
}

func TestListCalls_UpstreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.ListCalls(context.Background(), time.Now())
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
	assert.Equal(t, "list calls", upstream.Op)
}

func TestListCalls_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Calls": [`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.ListCalls(context.Background(), time.Now())
	require.Error(t, err)

	var upstream *domain.UpstreamError
	assert.ErrorAs(t, err, &upstream)
}

func TestDownloadRecording(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ := r.BasicAuth()
		assert.Equal(t, "key", user)
		assert.Equal(t, "token", pass)
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	audio, err := client.DownloadRecording(context.Background(), domain.Call{
		Sid:          "c1",
		RecordingURL: server.URL + "/recordings/c1.mp3",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)
}

func TestDownloadRecording_NoRecording(t *testing.T) {
	client := newTestClient("https://api.exotel.com")

	_, err := client.DownloadRecording(context.Background(), domain.Call{Sid: "c1"})
	assert.ErrorIs(t, err, domain.ErrNoRecording)
}

func TestDownloadRecording_UpstreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.DownloadRecording(context.Background(), domain.Call{
		Sid:          "c1",
		RecordingURL: server.URL + "/recordings/c1.mp3",
	})
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.Equal(t, "download recording", upstream.Op)
}
