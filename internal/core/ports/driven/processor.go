// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// Processor converts raw content of a known MIME type into plain text.
// Each processor handles specific MIME types (e.g., PDF, plain text).
// Processors are pure with respect to the Document: they receive content
// and return text; the caller performs the single write to the
// document's extracted text.
type Processor interface {
	// SupportedMIMETypes returns the MIME types this processor handles.
	SupportedMIMETypes() []string

	// Process extracts plain text from content.
	// Returns a non-empty string for well-formed input, or an error
	// wrapping domain.ErrCorruptInput or domain.ErrUnsupportedEncoding
	// for malformed input.
	Process(ctx context.Context, content []byte) (string, error)
}
