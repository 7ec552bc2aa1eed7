// Package synth wraps the speech backend with retry, backoff and rate
// limiting for chunk synthesis.
package synth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/briefcast/internal/core/domain"
	"github.com/custodia-labs/briefcast/internal/core/ports/driven"
	"github.com/custodia-labs/briefcast/internal/logger"
)

// Default retry and throttle settings. The rate limit is conservative:
// TTS backends meter by request and the pipeline runs documents in
// parallel against one shared limiter.
const (
	DefaultMaxAttempts       = 3
	DefaultInitialBackoff    = 500 * time.Millisecond
	DefaultMaxBackoff        = 8 * time.Second
	DefaultRequestsPerSecond = 2.0
	DefaultBurst             = 2
)

// Config holds synthesizer settings.
type Config struct {
	// Model is the synthesis model identifier.
	Model string

	// DefaultVoice is used for chunks without an assigned voice.
	DefaultVoice string

	// MaxAttempts is the attempt ceiling for transient failures.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry; it doubles
	// per attempt up to MaxBackoff.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff delay.
	MaxBackoff time.Duration

	// RequestsPerSecond is the sustained rate across all documents.
	RequestsPerSecond float64

	// Burst is the token bucket burst size.
	Burst int
}

// Synthesizer converts chunks into audio with bounded retries.
// One instance is shared by all documents in a run; its rate limiter is
// the only state crossing document boundaries.
type Synthesizer struct {
	speech  driven.SpeechService
	limiter *rate.Limiter
	cfg     Config
}

// New creates a synthesizer, filling unset config fields with defaults.
func New(speech driven.SpeechService, cfg Config) *Synthesizer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}

	return &Synthesizer{
		speech:  speech,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cfg:     cfg,
	}
}

// SynthesizeChunk converts one chunk to audio.
// Transient failures are retried with exponential backoff up to the
// attempt ceiling; permanent failures abort immediately. The backoff
// sleep blocks only the calling document's pipeline.
func (s *Synthesizer) SynthesizeChunk(ctx context.Context, chunk domain.Chunk) (domain.AudioResult, error) {
	voice := chunk.Voice
	if voice == "" {
		voice = s.cfg.DefaultVoice
	}

	backoff := s.cfg.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return domain.AudioResult{}, err
		}

		data, err := s.speech.Synthesize(ctx, chunk.Text, voice, s.cfg.Model)
		if err == nil {
			return domain.AudioResult{Index: chunk.Index, Data: data, Voice: voice}, nil
		}
		if domain.IsPermanent(err) {
			return domain.AudioResult{}, err
		}

		lastErr = err
		if attempt == s.cfg.MaxAttempts {
			break
		}

		logger.Debug("synth: chunk %d attempt %d failed, retrying in %s: %v",
			chunk.Index, attempt, backoff, err)

		select {
		case <-ctx.Done():
			return domain.AudioResult{}, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > s.cfg.MaxBackoff {
			backoff = s.cfg.MaxBackoff
		}
	}

	return domain.AudioResult{}, fmt.Errorf("chunk %d failed after %d attempts: %w",
		chunk.Index, s.cfg.MaxAttempts, lastErr)
}
