// Package services contains the pipeline orchestration logic.
package services

import (
	"strings"
	"sync"

	"github.com/custodia-labs/briefcast/internal/core/ports/driven"
)

// ProcessorRegistry maps MIME types to processors.
// Lookup is by exact MIME string, case-insensitive.
type ProcessorRegistry struct {
	mu         sync.RWMutex
	processors map[string]driven.Processor
}

// NewProcessorRegistry creates an empty registry.
func NewProcessorRegistry() *ProcessorRegistry {
	return &ProcessorRegistry{
		processors: make(map[string]driven.Processor),
	}
}

// Register adds a processor for all MIME types it supports.
// A later registration for the same MIME type wins.
func (r *ProcessorRegistry) Register(p driven.Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mime := range p.SupportedMIMETypes() {
		r.processors[strings.ToLower(mime)] = p
	}
}

// Get returns the processor for a MIME type.
func (r *ProcessorRegistry) Get(mimeType string) (driven.Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.processors[strings.ToLower(mimeType)]
	return p, ok
}

// MIMETypes returns all registered MIME types.
func (r *ProcessorRegistry) MIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.processors))
	for mime := range r.processors {
		types = append(types, mime)
	}
	return types
}
