package domain

// DocumentState tracks a document's progress through the pipeline.
// Transitions are one-way; a document never re-enters an earlier state.
type DocumentState int

const (
	// StateFetched is the initial state after a fetcher returned the document.
	StateFetched DocumentState = iota

	// StateProcessed means text extraction succeeded.
	StateProcessed

	// StateScripted means the dialogue script was generated and parsed.
	StateScripted

	// StateChunked means the script was split into bounded chunks.
	StateChunked

	// StateSynthesized means at least one chunk produced audio.
	StateSynthesized

	// StatePersisted is the successful terminal state: audio and
	// transcript written to storage.
	StatePersisted

	// StateFailed is the terminal state absorbing any stage's
	// unrecoverable error.
	StateFailed
)

// String returns the state name.
func (s DocumentState) String() string {
	switch s {
	case StateFetched:
		return "fetched"
	case StateProcessed:
		return "processed"
	case StateScripted:
		return "scripted"
	case StateChunked:
		return "chunked"
	case StateSynthesized:
		return "synthesized"
	case StatePersisted:
		return "persisted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stage identifies the pipeline stage where a failure occurred.
type Stage string

// Pipeline stages, in execution order.
const (
	StageFetch      Stage = "fetch"
	StageProcess    Stage = "process"
	StageScript     Stage = "script"
	StageChunk      Stage = "chunk"
	StageSynthesize Stage = "synthesize"
	StagePersist    Stage = "persist"
)
