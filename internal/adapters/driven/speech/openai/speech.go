// Package openai provides a speech synthesis adapter using the OpenAI
// text-to-speech API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/briefcast/internal/core/domain"
	"github.com/custodia-labs/briefcast/internal/core/ports/driven"
)

// Ensure SpeechService implements the interface.
var _ driven.SpeechService = (*SpeechService)(nil)

// Default configuration values.
const (
	DefaultBaseURL       = "https://api.openai.com/v1"
	DefaultSpeechModel   = "tts-1"
	DefaultSpeechTimeout = 60 * time.Second
)

// AvailableVoices are the voices the OpenAI TTS backend accepts.
var AvailableVoices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

// SpeechConfig holds configuration for the OpenAI speech service.
type SpeechConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// SpeechService synthesizes audio through the OpenAI /audio/speech endpoint.
type SpeechService struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// speechRequest is the OpenAI /audio/speech request format.
type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// speechErrorResponse is the OpenAI error envelope for failed requests.
type speechErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewSpeechService creates a new OpenAI speech service.
func NewSpeechService(cfg SpeechConfig) (*SpeechService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultSpeechTimeout
	}

	return &SpeechService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}, nil
}

// Synthesize converts text to audio bytes with the given voice and
// model. Failures are classified: rate limits, server errors and
// network timeouts are transient; other client errors are permanent.
func (s *SpeechService) Synthesize(ctx context.Context, text, voice, model string) ([]byte, error) {
	if model == "" {
		model = DefaultSpeechModel
	}

	jsonBody, err := json.Marshal(speechRequest{
		Model: model,
		Input: text,
		Voice: voice,
	})
	if err != nil {
		return nil, domain.NewPermanentSpeechError(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/audio/speech",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, domain.NewPermanentSpeechError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatusError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewTransientSpeechError(fmt.Errorf("read audio body: %w", err))
	}
	return audio, nil
}

// Voices returns the voices this backend accepts.
func (s *SpeechService) Voices() []string {
	voices := make([]string, len(AvailableVoices))
	copy(voices, AvailableVoices)
	return voices
}

// Close releases resources.
func (s *SpeechService) Close() error {
	return nil
}

// classifyTransportError maps client/network failures. Timeouts and
// connection errors are transient; context cancellation passes
// through unwrapped so callers can distinguish shutdown from failure.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewTransientSpeechError(err)
	}
	return domain.NewTransientSpeechError(fmt.Errorf("send request: %w", err))
}

// classifyStatusError maps HTTP status codes onto the retry taxonomy.
func classifyStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := string(body)
	var envelope speechErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	cause := fmt.Errorf("openai error (status %d): %s", resp.StatusCode, message)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.NewTransientSpeechError(cause)
	case resp.StatusCode >= 500:
		return domain.NewTransientSpeechError(cause)
	default:
		return domain.NewPermanentSpeechError(cause)
	}
}
