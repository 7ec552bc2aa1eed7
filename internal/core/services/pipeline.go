package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/briefcast/internal/chunker"
	"github.com/custodia-labs/briefcast/internal/core/domain"
	"github.com/custodia-labs/briefcast/internal/core/ports/driven"
	"github.com/custodia-labs/briefcast/internal/logger"
)

// DefaultConcurrency is the per-run document parallelism bound.
const DefaultConcurrency = 4

// Pipeline composes fetch, process, script, chunk, synthesize and
// persist per document. Documents are independent: a failure in one
// never aborts the batch, and documents run in parallel up to the
// configured concurrency limit.
type Pipeline struct {
	fetchers     []driven.Fetcher
	registry     *ProcessorRegistry
	scriptwriter driven.ScriptWriter
	synthesizer  driven.ChunkSynthesizer
	artifacts    driven.ArtifactStore
	state        driven.StateStore
	maxChunkSize int
	concurrency  int
}

// PipelineConfig holds pipeline construction settings.
type PipelineConfig struct {
	// MaxChunkSize is the synthesis chunk ceiling in characters.
	MaxChunkSize int

	// Concurrency bounds parallel document pipelines.
	Concurrency int
}

// NewPipeline creates a pipeline orchestrator.
// The state store is optional; when nil, cross-run deduplication is
// disabled.
func NewPipeline(
	fetchers []driven.Fetcher,
	registry *ProcessorRegistry,
	scriptWriter driven.ScriptWriter,
	synthesizer driven.ChunkSynthesizer,
	artifacts driven.ArtifactStore,
	state driven.StateStore,
	cfg PipelineConfig,
) *Pipeline {
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = chunker.DefaultChunkSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	return &Pipeline{
		fetchers:     fetchers,
		registry:     registry,
		scriptwriter: scriptWriter,
		synthesizer:  synthesizer,
		artifacts:    artifacts,
		state:        state,
		maxChunkSize: cfg.MaxChunkSize,
		concurrency:  cfg.Concurrency,
	}
}

// DocumentResult records one document's terminal pipeline outcome.
type DocumentResult struct {
	// Document is the processed document.
	Document domain.Document

	// State is the terminal state: StatePersisted or StateFailed.
	State domain.DocumentState

	// Stage is the failure stage when State is StateFailed.
	Stage domain.Stage

	// Err is the failure cause when State is StateFailed.
	Err error

	// Chunks is the total number of synthesis chunks.
	Chunks int

	// MissingChunks lists chunk indices with no audio. A persisted
	// document with missing chunks is degraded, not failed.
	MissingChunks []int

	// AudioPath and TranscriptPath are set on StatePersisted.
	AudioPath      string
	TranscriptPath string
}

// Degraded reports whether the document persisted with partial audio.
func (r DocumentResult) Degraded() bool {
	return r.State == domain.StatePersisted && len(r.MissingChunks) > 0
}

// Summary is the outcome of one batch run.
type Summary struct {
	// RunID identifies the batch.
	RunID string

	// Results holds one entry per document that entered the pipeline.
	Results []DocumentResult

	// FetchErrors records sources whose fetch failed outright.
	FetchErrors map[string]error

	// Skipped counts documents skipped as already processed.
	Skipped int

	Started  time.Time
	Finished time.Time
}

// Succeeded counts fully persisted documents.
func (s Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.State == domain.StatePersisted && !r.Degraded() {
			n++
		}
	}
	return n
}

// Degraded counts persisted documents with missing chunks.
func (s Summary) Degraded() int {
	n := 0
	for _, r := range s.Results {
		if r.Degraded() {
			n++
		}
	}
	return n
}

// Failed counts documents that reached StateFailed.
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.State == domain.StateFailed {
			n++
		}
	}
	return n
}

// Run executes one batch: fetch from every enabled source, then run
// each document through the pipeline.
// Cancelling ctx stops new fetch and synthesis work promptly while
// in-flight documents reach a terminal state; no partial files are
// left behind.
func (p *Pipeline) Run(ctx context.Context, since time.Time) (Summary, error) {
	if len(p.fetchers) == 0 {
		return Summary{}, domain.ErrNoFetchers
	}

	summary := Summary{
		RunID:       uuid.NewString(),
		FetchErrors: make(map[string]error),
		Started:     time.Now(),
	}

	docs := p.fetchAll(ctx, since, &summary)
	logger.Info("pipeline: run %s fetched %d documents", summary.RunID, len(docs))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, p.concurrency)
	)

	for _, doc := range docs {
		if p.alreadySeen(ctx, doc) {
			summary.Skipped++
			continue
		}

		wg.Add(1)
		go func(doc domain.Document) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			result := p.runDocument(ctx, doc)

			mu.Lock()
			summary.Results = append(summary.Results, result)
			mu.Unlock()

			if result.State == domain.StatePersisted && !result.Degraded() {
				p.markSeen(doc)
			}
		}(doc)
	}

	wg.Wait()
	summary.Finished = time.Now()

	logger.Info("pipeline: run %s done: %d succeeded, %d degraded, %d failed, %d skipped",
		summary.RunID, summary.Succeeded(), summary.Degraded(), summary.Failed(), summary.Skipped)
	return summary, nil
}

// fetchAll pulls documents from every fetcher concurrently and merges
// the results. A failed source is recorded and does not abort the run.
func (p *Pipeline) fetchAll(ctx context.Context, since time.Time, summary *Summary) []domain.Document {
	type fetchResult struct {
		source string
		docs   []domain.Document
		err    error
	}

	results := make(chan fetchResult, len(p.fetchers))
	for _, f := range p.fetchers {
		go func(f driven.Fetcher) {
			docs, err := f.Fetch(ctx, since)
			results <- fetchResult{source: f.Source(), docs: docs, err: err}
		}(f)
	}

	var docs []domain.Document
	for range p.fetchers {
		r := <-results
		if r.err != nil {
			logger.Error("pipeline: fetch from %s failed: %v", r.source, r.err)
			summary.FetchErrors[r.source] = r.err
			continue
		}
		logger.Debug("pipeline: %s returned %d documents", r.source, len(r.docs))
		docs = append(docs, r.docs...)
	}

	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = uuid.NewString()
		}
	}
	return docs
}

// runDocument drives one document through the state machine.
// Transitions are one-way; any stage error moves the document to the
// terminal StateFailed without affecting its siblings.
func (p *Pipeline) runDocument(ctx context.Context, doc domain.Document) DocumentResult {
	if err := ctx.Err(); err != nil {
		return failed(doc, domain.StageProcess, err)
	}

	// Fetched -> Processed
	processor, ok := p.registry.Get(doc.MIMEType)
	if !ok {
		return failed(doc, domain.StageProcess,
			fmt.Errorf("%w: no processor for %q", domain.ErrUnsupportedFormat, doc.MIMEType))
	}
	if err := ProcessWith(ctx, &doc, processor); err != nil {
		return failed(doc, domain.StageProcess, err)
	}

	// Processed -> Scripted
	script, err := p.scriptwriter.Write(ctx, *doc.ExtractedText)
	if err != nil {
		return failed(doc, domain.StageScript, err)
	}

	// Scripted -> Chunked
	chunks, err := chunker.ChunkScript(script, p.maxChunkSize)
	if err != nil {
		return failed(doc, domain.StageChunk, err)
	}
	if len(chunks) == 0 {
		return failed(doc, domain.StageChunk,
			fmt.Errorf("%w: script produced no chunks", domain.ErrInvalidInput))
	}

	// Chunked -> Synthesized. Sibling chunks continue independently
	// past per-chunk failures; cancellation stops new chunk work.
	var (
		audio   []byte
		missing []int
		errs    []error
	)
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return failed(doc, domain.StageSynthesize, err)
		}

		result, err := p.synthesizer.SynthesizeChunk(ctx, chunk)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return failed(doc, domain.StageSynthesize, err)
			}
			logger.Warn("pipeline: %q chunk %d failed: %v", doc.Title, chunk.Index, err)
			missing = append(missing, chunk.Index)
			errs = append(errs, err)
			continue
		}
		audio = append(audio, result.Data...)
	}
	if len(missing) == len(chunks) {
		return failed(doc, domain.StageSynthesize, errors.Join(errs...))
	}

	// Synthesized -> Persisted
	audioPath, transcriptPath, err := p.artifacts.Save(doc.Title, time.Now(), audio, script.Transcript())
	if err != nil {
		return failed(doc, domain.StagePersist, err)
	}

	return DocumentResult{
		Document:       doc,
		State:          domain.StatePersisted,
		Chunks:         len(chunks),
		MissingChunks:  missing,
		AudioPath:      audioPath,
		TranscriptPath: transcriptPath,
	}
}

// alreadySeen checks the state store for a prior conversion.
func (p *Pipeline) alreadySeen(ctx context.Context, doc domain.Document) bool {
	if p.state == nil || doc.URL == "" {
		return false
	}
	seen, err := p.state.Seen(ctx, doc.URL)
	if err != nil {
		logger.Warn("pipeline: state lookup for %q failed: %v", doc.URL, err)
		return false
	}
	if seen {
		logger.Debug("pipeline: skipping already processed %q", doc.Title)
	}
	return seen
}

// markSeen records a fully successful conversion. Degraded documents
// are not marked so a later run can retry them.
func (p *Pipeline) markSeen(doc domain.Document) {
	if p.state == nil || doc.URL == "" {
		return
	}
	if err := p.state.MarkSeen(context.Background(), doc.URL, time.Now()); err != nil {
		logger.Warn("pipeline: recording %q failed: %v", doc.URL, err)
	}
}

func failed(doc domain.Document, stage domain.Stage, err error) DocumentResult {
	return DocumentResult{
		Document: doc,
		State:    domain.StateFailed,
		Stage:    stage,
		Err:      err,
	}
}
