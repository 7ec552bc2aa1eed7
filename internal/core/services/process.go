package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/briefcast/internal/core/domain"
	"github.com/custodia-labs/briefcast/internal/core/ports/driven"
)

// ProcessWith runs a processor over a document's content and performs
// the single write to ExtractedText.
// A processor whose supported set does not contain the document's MIME
// type fails with ErrUnsupportedFormat and leaves ExtractedText
// unchanged.
func ProcessWith(ctx context.Context, doc *domain.Document, p driven.Processor) error {
	if doc == nil || p == nil {
		return domain.ErrInvalidInput
	}

	if !supportsMIMEType(p, doc.MIMEType) {
		return fmt.Errorf("%w: processor does not handle %q", domain.ErrUnsupportedFormat, doc.MIMEType)
	}

	text, err := p.Process(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("process %q: %w", doc.Title, err)
	}

	return doc.SetExtractedText(text)
}

// supportsMIMEType checks a processor's supported set for a MIME type.
func supportsMIMEType(p driven.Processor, mimeType string) bool {
	return slices.Contains(p.SupportedMIMETypes(), strings.ToLower(mimeType))
}
