package assemblyai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call_transcriber/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// vendorStub serves the upload, submit and status endpoints. The sequence of
// statuses returned by the status endpoint is scripted per test.
type vendorStub struct {
	t        *testing.T
	statuses []string // consumed one per status poll; last one repeats
	polls    atomic.Int32
	jobText  string
	jobError string
}

func (v *vendorStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v2/upload", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(v.t, http.MethodPost, r.Method)
		assert.Equal(v.t, "secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NotEmpty(v.t, body)
		_ = json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example.com/a1"})
	})

	mux.HandleFunc("/v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(v.t, http.MethodPost, r.Method)
		var req transcriptRequest
		require.NoError(v.t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(v.t, "https://cdn.example.com/a1", req.AudioURL)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "job1", "status": "queued"})
	})

	mux.HandleFunc("/v2/transcript/job1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(v.t, http.MethodGet, r.Method)
		n := int(v.polls.Add(1)) - 1
		if n >= len(v.statuses) {
			n = len(v.statuses) - 1
		}
		status := v.statuses[n]

		resp := map[string]any{"id": "job1", "status": status}
		if status == statusCompleted {
			resp["text"] = v.jobText
			resp["utterances"] = []map[string]any{
				{"speaker": "A", "text": "hello there"},
				{"speaker": "B", "text": "hi"},
			}
		}
		if status == statusError {
			resp["error"] = v.jobError
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	return mux
}

func newTestClient(baseURL string) *Client {
	return New(Config{
		APIKey:       "secret",
		BaseURL:      baseURL,
		Language:     "en",
		Diarize:      true,
		Punctuate:    true,
		PollInterval: 5 * time.Millisecond,
		PollTimeout:  time.Second,
	}, testLogger())
}

func TestTranscribe_CompletedAfterPolling(t *testing.T) {
	stub := &vendorStub{
		t:        t,
		statuses: []string{"queued", "processing", statusCompleted},
		jobText:  "hello there hi",
	}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client := newTestClient(server.URL)

	tr, err := client.Transcribe(context.Background(), []byte("mp3-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "hello there hi", tr.Text)
	assert.Equal(t, ProviderID, tr.Provider)
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, "A", tr.Segments[0].Speaker)
	assert.Equal(t, "hello there", tr.Segments[0].Text)
	assert.GreaterOrEqual(t, stub.polls.Load(), int32(3))
}

func TestTranscribe_JobFails(t *testing.T) {
	stub := &vendorStub{
		t:        t,
		statuses: []string{"processing", statusError},
		jobError: "audio unreadable",
	}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Transcribe(context.Background(), []byte("mp3-bytes"))
	require.Error(t, err)

	var trErr *domain.TranscriptionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, "job1", trErr.JobID)
	assert.Equal(t, "audio unreadable", trErr.Reason)
}

func TestTranscribe_DeadlineExceeded(t *testing.T) {
	stub := &vendorStub{
		t:        t,
		statuses: []string{"processing"},
	}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client := New(Config{
		APIKey:       "secret",
		BaseURL:      server.URL,
		Language:     "en",
		PollInterval: 2 * time.Millisecond,
		PollTimeout:  20 * time.Millisecond,
	}, testLogger())

	_, err := client.Transcribe(context.Background(), []byte("mp3-bytes"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTranscriptionTimeout)
}

func TestTranscribe_ContextCancelled(t *testing.T) {
	stub := &vendorStub{
		t:        t,
		statuses: []string{"processing"},
	}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client := newTestClient(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Transcribe(ctx, []byte("mp3-bytes"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTranscribe_UploadRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Transcribe(context.Background(), []byte("mp3-bytes"))
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Equal(t, "upload audio", upstream.Op)
}

func TestSubmit_LanguageDetectionForAuto(t *testing.T) {
	for _, language := range []string{"", "auto"} {
		t.Run(fmt.Sprintf("language=%q", language), func(t *testing.T) {
			var got transcriptRequest
			mux := http.NewServeMux()
			mux.HandleFunc("/v2/transcript", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				_ = json.NewEncoder(w).Encode(map[string]string{"id": "job1", "status": statusCompleted})
			})
			server := httptest.NewServer(mux)
			defer server.Close()

			client := New(Config{
				APIKey:   "secret",
				BaseURL:  server.URL,
				Language: language,
			}, testLogger())

			_, err := client.submit(context.Background(), "https://cdn.example.com/a1")
			require.NoError(t, err)
			assert.True(t, got.LanguageDetection)
			assert.Empty(t, got.LanguageCode)
		})
	}
}
