// Package pdf extracts text from PDF documents using poppler's
// pdftotext and pdfinfo tools.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/custodia-labs/briefcast/internal/core/domain"
	"github.com/custodia-labs/briefcast/internal/core/ports/driven"
	"github.com/custodia-labs/briefcast/internal/logger"
)

// Ensure Processor implements the interface.
var _ driven.Processor = (*Processor)(nil)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner executes external commands. Abstracted for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Processor handles PDF documents.
type Processor struct {
	runner CommandRunner
}

// New creates a new PDF processor using the system pdftotext.
func New() *Processor {
	return &Processor{runner: execRunner{}}
}

// NewWithRunner creates a PDF processor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Processor {
	return &Processor{runner: runner}
}

// CheckAvailable verifies pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform-specific install guidance.
func InstallInstructions() string {
	return `pdftotext is required for PDF extraction.

  macOS:  brew install poppler
  Debian: apt install poppler-utils
  Fedora: dnf install poppler-utils`
}

// SupportedMIMETypes returns the MIME types this processor handles.
func (p *Processor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Process extracts text page by page, joining pages with a blank line.
// Pages that fail to extract are skipped with a warning rather than
// aborting the whole document.
func (p *Processor) Process(ctx context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty PDF: %w", domain.ErrCorruptInput)
	}

	path, cleanup, err := writeTemp(content)
	if err != nil {
		return "", fmt.Errorf("write temp pdf: %w", err)
	}
	defer cleanup()

	pages, err := p.pageCount(ctx, path)
	if err != nil {
		return "", fmt.Errorf("read pdf info: %w: %w", domain.ErrCorruptInput, err)
	}

	var parts []string
	for page := 1; page <= pages; page++ {
		out, err := p.runner.Run(ctx, "pdftotext",
			"-f", strconv.Itoa(page), "-l", strconv.Itoa(page), "-q", path, "-")
		if err != nil {
			logger.Warn("pdf: page %d extraction failed, skipping: %v", page, err)
			continue
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no extractable pages: %w", domain.ErrCorruptInput)
	}

	return strings.Join(parts, "\n\n"), nil
}

// pageCount reads the page count from pdfinfo output.
func (p *Processor) pageCount(ctx context.Context, path string) (int, error) {
	out, err := p.runner.Run(ctx, "pdfinfo", path)
	if err != nil {
		return 0, err
	}

	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("parse page count: %w", err)
		}
		return n, nil
	}

	return 0, errors.New("pdfinfo output missing page count")
}

// writeTemp writes content to a temp file and returns its path with a
// cleanup function.
func writeTemp(content []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "briefcast-*.pdf")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() { os.Remove(path) }

	if _, err := f.Write(content); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}

	return path, cleanup, nil
}
