// Package plaintext extracts text from plain text documents.
package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/briefcast/internal/core/domain"
	"github.com/custodia-labs/briefcast/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Processor = (*Processor)(nil)

// Processor handles plain text documents.
type Processor struct{}

// New creates a new plain text processor.
func New() *Processor {
	return &Processor{}
}

// SupportedMIMETypes returns the MIME types this processor handles.
func (p *Processor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
	}
}

// Process decodes content as UTF-8 text.
func (p *Processor) Process(_ context.Context, content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("decode text: %w", domain.ErrUnsupportedEncoding)
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", fmt.Errorf("empty text document: %w", domain.ErrCorruptInput)
	}

	return text, nil
}
