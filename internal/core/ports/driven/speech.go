package driven

import "context"

// SpeechService converts text to audio via an external TTS backend.
// Failures are classified: implementations return *domain.SpeechError
// with kind Transient (rate limit, timeout, 5xx) or Permanent (invalid
// voice, content rejected). The retry loop lives in the synthesizer
// component, not here.
type SpeechService interface {
	// Synthesize converts one chunk of text to raw audio bytes using
	// the given voice and model identifiers.
	Synthesize(ctx context.Context, text, voice, model string) ([]byte, error)

	// Voices returns the voice identifiers the backend accepts.
	Voices() []string

	// Close releases resources.
	Close() error
}
