// Package ics extracts text from calendar event documents.
package ics

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

// Processor handles calendar event documents. The calendar connector
// assembles event fields into plain text paragraphs; this processor
// validates the encoding and normalizes paragraph spacing.
type Processor struct{}

// New creates a new calendar event processor.
func New() *Processor {
	return &Processor{}
}

// SupportedMIMETypes returns the MIME types this processor handles.
func (p *Processor) SupportedMIMETypes() []string {
	return []string{"text/calendar"}
}

// Process validates and normalizes assembled event text.
func (p *Processor) Process(_ context.Context, content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("decode event text: %w", domain.ErrUnsupportedEncoding)
	}

	var paragraphs []string
	for _, block := range strings.Split(string(content), "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			paragraphs = append(paragraphs, block)
		}
	}

	if len(paragraphs) == 0 {
		return "", fmt.Errorf("empty event: %w", domain.ErrCorruptInput)
	}

	return strings.Join(paragraphs, "\n\n"), nil
}
