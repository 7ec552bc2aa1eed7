package driven

import (
	"context"

	"github.com/custodia-labs/briefcast/internal/core/domain"
)

// ScriptWriter turns extracted text into a structured dialogue script.
type ScriptWriter interface {
	Write(ctx context.Context, text string) (domain.Script, error)
}

// ChunkSynthesizer converts one chunk into audio, owning retry and
// backoff around the speech backend.
type ChunkSynthesizer interface {
	SynthesizeChunk(ctx context.Context, chunk domain.Chunk) (domain.AudioResult, error)
}
