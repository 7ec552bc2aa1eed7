// Package html extracts readable article text from HTML pages.
package html

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/custodia-labs/briefcast/internal/core/domain"
	"github.com/custodia-labs/briefcast/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Processor = (*Processor)(nil)

// Processor handles HTML documents, stripping navigation and boilerplate
// down to readable article text.
type Processor struct{}

// New creates a new HTML processor.
func New() *Processor {
	return &Processor{}
}

// SupportedMIMETypes returns the MIME types this processor handles.
func (p *Processor) SupportedMIMETypes() []string {
	return []string{
		"text/html",
		"application/xhtml+xml",
	}
}

// Process extracts the readable text content from an HTML page.
func (p *Processor) Process(_ context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty HTML document: %w", domain.ErrCorruptInput)
	}

	article, err := readability.FromReader(bytes.NewReader(content), &url.URL{})
	if err != nil {
		return "", fmt.Errorf("readability extraction: %w: %w", domain.ErrCorruptInput, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no readable text: %w", domain.ErrCorruptInput)
	}

	return text, nil
}
