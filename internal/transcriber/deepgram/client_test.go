package deepgram

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call_transcriber/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(baseURL string) *Client {
	return New(Config{
		APIKey:    "secret",
		BaseURL:   baseURL,
		Model:     "nova-2",
		Language:  "en",
		Diarize:   true,
		Punctuate: true,
	}, testLogger())
}

func transcriptionStub(t *testing.T, body string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/listen", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
	return mux
}

func TestTranscribe(t *testing.T) {
	const body = `{
		"results": {
			"channels": [
				{
					"alternatives": [
						{
							"transcript": "Hello there. Hi, how are you?",
							"words": [
								{"word": "hello", "punctuated_word": "Hello", "speaker": 0},
								{"word": "there", "punctuated_word": "there.", "speaker": 0},
								{"word": "hi", "punctuated_word": "Hi,", "speaker": 1},
								{"word": "how", "punctuated_word": "how", "speaker": 1},
								{"word": "are", "punctuated_word": "are", "speaker": 1},
								{"word": "you", "punctuated_word": "you?", "speaker": 1}
							]
						}
					]
				}
			]
		}
	}`

	server := httptest.NewServer(transcriptionStub(t, body))
	defer server.Close()

	client := newTestClient(server.URL)

	tr, err := client.Transcribe(context.Background(), []byte("mp3-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "Hello there. Hi, how are you?", tr.Text)
	assert.Equal(t, ProviderID, tr.Provider)
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, domain.Segment{Speaker: "0", Text: "Hello there."}, tr.Segments[0])
	assert.Equal(t, domain.Segment{Speaker: "1", Text: "Hi, how are you?"}, tr.Segments[1])
}

func TestTranscribe_MissingSpeakerIDs(t *testing.T) {
	// Without diarization the vendor omits the speaker field entirely;
	// all words collapse into one segment for the default speaker.
	const body = `{
		"results": {
			"channels": [
				{
					"alternatives": [
						{
							"transcript": "Hello there.",
							"words": [
								{"word": "hello", "punctuated_word": "Hello"},
								{"word": "there", "punctuated_word": "there."}
							]
						}
					]
				}
			]
		}
	}`

	server := httptest.NewServer(transcriptionStub(t, body))
	defer server.Close()

	client := newTestClient(server.URL)

	tr, err := client.Transcribe(context.Background(), []byte("mp3-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "Hello there.", tr.Text)
	require.Len(t, tr.Segments, 1)
	assert.Equal(t, domain.Segment{Speaker: "0", Text: "Hello there."}, tr.Segments[0])
}

func TestTranscribe_NoAlternatives(t *testing.T) {
	server := httptest.NewServer(transcriptionStub(t, `{"results": {"channels": []}}`))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Transcribe(context.Background(), []byte("mp3-bytes"))
	require.Error(t, err)

	var trErr *domain.TranscriptionError
	assert.ErrorAs(t, err, &trErr)
}

func TestTranscribe_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"err_code": "INVALID_AUTH", "err_msg": "bad key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Transcribe(context.Background(), []byte("mp3-bytes"))
	require.Error(t, err)

	var upstream *domain.UpstreamError
	assert.ErrorAs(t, err, &upstream)
}
