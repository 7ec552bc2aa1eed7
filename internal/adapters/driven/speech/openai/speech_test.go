package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefcast/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*SpeechService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewSpeechService(SpeechConfig{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return svc, server
}

func TestNewSpeechService_RequiresAPIKey(t *testing.T) {
	_, err := NewSpeechService(SpeechConfig{})
	assert.Error(t, err)
}

func TestSynthesize_Success(t *testing.T) {
	var gotReq speechRequest
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte("mp3-bytes"))
	})

	audio, err := svc.Synthesize(context.Background(), "hello world", "onyx", "tts-1")
	require.NoError(t, err)

	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, speechRequest{Model: "tts-1", Input: "hello world", Voice: "onyx"}, gotReq)
}

func TestSynthesize_DefaultModel(t *testing.T) {
	var gotReq speechRequest
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte("audio"))
	})

	_, err := svc.Synthesize(context.Background(), "text", "alloy", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSpeechModel, gotReq.Model)
}

func TestSynthesize_RateLimitedIsTransient(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limit reached","type":"requests"}}`,
			http.StatusTooManyRequests)
	})

	_, err := svc.Synthesize(context.Background(), "text", "alloy", "tts-1")
	require.Error(t, err)

	assert.True(t, domain.IsTransient(err))
	assert.False(t, domain.IsPermanent(err))
	assert.Contains(t, err.Error(), "rate limit reached")
}

func TestSynthesize_ServerErrorIsTransient(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	_, err := svc.Synthesize(context.Background(), "text", "alloy", "tts-1")
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}

func TestSynthesize_ClientErrorIsPermanent(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid voice 'robot'","type":"invalid_request_error"}}`,
			http.StatusBadRequest)
	})

	_, err := svc.Synthesize(context.Background(), "text", "robot", "tts-1")
	require.Error(t, err)

	assert.True(t, domain.IsPermanent(err))
	assert.Contains(t, err.Error(), "invalid voice")
}

func TestSynthesize_TimeoutIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	svc, err := NewSpeechService(SpeechConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = svc.Synthesize(context.Background(), "text", "alloy", "tts-1")
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}

func TestSynthesize_CancelledContextPassesThrough(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Synthesize(ctx, "text", "alloy", "tts-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVoices(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	voices := svc.Voices()
	assert.Contains(t, voices, "alloy")
	assert.Contains(t, voices, "shimmer")

	// The returned slice is a copy.
	voices[0] = "mutated"
	assert.Equal(t, "alloy", svc.Voices()[0])
}
