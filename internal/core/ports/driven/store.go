package driven

import (
	"context"
	"time"
)

// ArtifactStore persists the output of a successful pipeline run:
// one audio file and one transcript file per document, named
// deterministically from title and processing time.
type ArtifactStore interface {
	// Save writes audio and transcript, returning the paths written.
	Save(title string, at time.Time, audio []byte, transcript string) (audioPath, transcriptPath string, err error)
}

// StateStore records which documents have already been converted, so
// repeated runs skip work that is already done.
type StateStore interface {
	// Seen reports whether the document key was already processed.
	Seen(ctx context.Context, key string) (bool, error)

	// MarkSeen records the document key as processed.
	MarkSeen(ctx context.Context, key string, at time.Time) error

	// Close releases resources.
	Close() error
}
