package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/briefcast/internal/core/domain"
)

// Fetcher produces documents from one external source.
// Authentication and pagination are entirely internal to the fetcher;
// the pipeline never inspects fetcher state.
type Fetcher interface {
	// Source returns the source identifier ("gmail", "calendar", ...).
	Source() string

	// Fetch returns documents created or received after since, in
	// source-natural order. A fetcher that finds zero matching items
	// returns an empty slice and a nil error.
	Fetch(ctx context.Context, since time.Time) ([]domain.Document, error)
}
