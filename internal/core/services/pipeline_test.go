package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefcast/internal/chunker"
	"github.com/custodia-labs/briefcast/internal/core/domain"
	"github.com/custodia-labs/briefcast/internal/core/ports/driven"
	"github.com/custodia-labs/briefcast/internal/processors/pdf"
	"github.com/custodia-labs/briefcast/internal/synth"
)

type stubFetcher struct {
	source string
	docs   []domain.Document
	err    error
}

func (f *stubFetcher) Source() string { return f.source }

func (f *stubFetcher) Fetch(_ context.Context, _ time.Time) ([]domain.Document, error) {
	return f.docs, f.err
}

type stubScriptwriter struct {
	script domain.Script
	err    error
}

func (s *stubScriptwriter) Write(_ context.Context, _ string) (domain.Script, error) {
	return s.script, s.err
}

// funcSpeech routes synthesis behaviour per chunk text.
type funcSpeech struct {
	mu    sync.Mutex
	calls int
	fn    func(text string) ([]byte, error)
}

func (s *funcSpeech) Synthesize(_ context.Context, text, _, _ string) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.fn(text)
}

func (s *funcSpeech) Voices() []string { return []string{"alloy", "onyx"} }
func (s *funcSpeech) Close() error     { return nil }

type savedArtifact struct {
	title      string
	audio      []byte
	transcript string
}

type memArtifacts struct {
	mu    sync.Mutex
	saved []savedArtifact
	err   error
}

func (a *memArtifacts) Save(title string, _ time.Time, audio []byte, transcript string) (string, string, error) {
	if a.err != nil {
		return "", "", a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = append(a.saved, savedArtifact{title: title, audio: audio, transcript: transcript})
	return "audio/" + title + ".mp3", "transcripts/" + title + ".txt", nil
}

type memState struct {
	mu     sync.Mutex
	seen   map[string]bool
	marked []string
}

func newMemState(seen ...string) *memState {
	m := &memState{seen: make(map[string]bool)}
	for _, k := range seen {
		m.seen[k] = true
	}
	return m
}

func (m *memState) Seen(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[key], nil
}

func (m *memState) MarkSeen(_ context.Context, key string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[key] = true
	m.marked = append(m.marked, key)
	return nil
}

func (m *memState) Close() error { return nil }

func textRegistry() *ProcessorRegistry {
	reg := NewProcessorRegistry()
	reg.Register(&fakeProcessor{mimes: []string{"text/plain"}, output: "extracted body"})
	return reg
}

func threeTurnScript() domain.Script {
	return domain.Script{Lines: []domain.ScriptLine{
		{Speaker: "alloy", Voice: "alloy", Text: "chunk zero text."},
		{Speaker: "onyx", Voice: "onyx", Text: "chunk one text."},
		{Speaker: "alloy", Voice: "alloy", Text: "chunk two text."},
	}}
}

func okSpeech() *funcSpeech {
	return &funcSpeech{fn: func(text string) ([]byte, error) {
		return []byte(text + "|"), nil
	}}
}

func fastSynth(speech driven.SpeechService) *synth.Synthesizer {
	return synth.New(speech, synth.Config{
		Model:             "tts-1",
		DefaultVoice:      "alloy",
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		RequestsPerSecond: 10000,
		Burst:             100,
	})
}

func textDoc(title, url string) domain.Document {
	return domain.Document{
		Source:    "gmail",
		Title:     title,
		Content:   []byte("raw"),
		MIMEType:  "text/plain",
		URL:       url,
		Timestamp: time.Now(),
	}
}

func TestRun_NoFetchers(t *testing.T) {
	p := NewPipeline(nil, textRegistry(), &stubScriptwriter{}, fastSynth(okSpeech()), &memArtifacts{}, nil, PipelineConfig{})
	_, err := p.Run(context.Background(), time.Now())
	assert.ErrorIs(t, err, domain.ErrNoFetchers)
}

func TestRun_HappyPath(t *testing.T) {
	fetcher := &stubFetcher{source: "gmail", docs: []domain.Document{textDoc("Report", "gmail://m/1")}}
	artifacts := &memArtifacts{}
	state := newMemState()

	p := NewPipeline(
		[]driven.Fetcher{fetcher},
		textRegistry(),
		&stubScriptwriter{script: threeTurnScript()},
		fastSynth(okSpeech()),
		artifacts,
		state,
		PipelineConfig{MaxChunkSize: 1000},
	)

	summary, err := p.Run(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded())
	assert.Zero(t, summary.Degraded())
	assert.Zero(t, summary.Failed())

	require.Len(t, summary.Results, 1)
	result := summary.Results[0]
	assert.Equal(t, domain.StatePersisted, result.State)
	assert.Equal(t, 3, result.Chunks)
	assert.Empty(t, result.MissingChunks)
	assert.Equal(t, "audio/Report.mp3", result.AudioPath)

	// Audio concatenated in chunk order; transcript carries all turns.
	require.Len(t, artifacts.saved, 1)
	assert.Equal(t, "chunk zero text.|chunk one text.|chunk two text.|", string(artifacts.saved[0].audio))
	assert.Contains(t, artifacts.saved[0].transcript, "alloy: chunk zero text.")

	// Fully successful documents are recorded for cross-run dedup.
	assert.Equal(t, []string{"gmail://m/1"}, state.marked)
}

// A synthesizer stub failing transiently twice then succeeding yields
// success after exactly 3 attempts and no more.
func TestRun_RetryTransientThenSuccess(t *testing.T) {
	var mu sync.Mutex
	failures := 2
	speech := &funcSpeech{}
	speech.fn = func(text string) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		if failures > 0 {
			failures--
			return nil, domain.NewTransientSpeechError(errors.New("busy"))
		}
		return []byte(text), nil
	}

	fetcher := &stubFetcher{source: "gmail", docs: []domain.Document{textDoc("Doc", "")}}
	script := domain.Script{Lines: []domain.ScriptLine{{Speaker: "alloy", Voice: "alloy", Text: "only turn."}}}

	p := NewPipeline(
		[]driven.Fetcher{fetcher},
		textRegistry(),
		&stubScriptwriter{script: script},
		fastSynth(speech),
		&memArtifacts{},
		nil,
		PipelineConfig{MaxChunkSize: 1000},
	)

	summary, err := p.Run(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded())
	assert.Equal(t, 3, speech.calls)
}

// A permanent failure on chunk 2 of 3 degrades the document: it still
// persists, records chunk 2 missing, and keeps chunks 0 and 1.
func TestRun_PermanentChunkFailureDegrades(t *testing.T) {
	speech := &funcSpeech{fn: func(text string) ([]byte, error) {
		if strings.Contains(text, "chunk two") {
			return nil, domain.NewPermanentSpeechError(errors.New("content rejected"))
		}
		return []byte(text + "|"), nil
	}}

	fetcher := &stubFetcher{source: "gmail", docs: []domain.Document{textDoc("Partial", "gmail://m/2")}}
	artifacts := &memArtifacts{}
	state := newMemState()

	p := NewPipeline(
		[]driven.Fetcher{fetcher},
		textRegistry(),
		&stubScriptwriter{script: threeTurnScript()},
		fastSynth(speech),
		artifacts,
		state,
		PipelineConfig{MaxChunkSize: 1000},
	)

	summary, err := p.Run(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Degraded())
	assert.Zero(t, summary.Failed())

	require.Len(t, summary.Results, 1)
	result := summary.Results[0]
	assert.Equal(t, domain.StatePersisted, result.State)
	assert.True(t, result.Degraded())
	assert.Equal(t, []int{2}, result.MissingChunks)

	require.Len(t, artifacts.saved, 1)
	assert.Equal(t, "chunk zero text.|chunk one text.|", string(artifacts.saved[0].audio))

	// Degraded documents are not marked seen so a later run retries.
	assert.Empty(t, state.marked)
}

func TestRun_AllChunksFailIsFailed(t *testing.T) {
	speech := &funcSpeech{fn: func(string) ([]byte, error) {
		return nil, domain.NewPermanentSpeechError(errors.New("rejected"))
	}}
	fetcher := &stubFetcher{source: "gmail", docs: []domain.Document{textDoc("Doomed", "")}}

	p := NewPipeline(
		[]driven.Fetcher{fetcher},
		textRegistry(),
		&stubScriptwriter{script: threeTurnScript()},
		fastSynth(speech),
		&memArtifacts{},
		nil,
		PipelineConfig{MaxChunkSize: 1000},
	)

	summary, err := p.Run(context.Background(), time.Now())
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, domain.StateFailed, summary.Results[0].State)
	assert.Equal(t, domain.StageSynthesize, summary.Results[0].Stage)
}

// One document's failure never aborts its siblings.
func TestRun_FailureIsolation(t *testing.T) {
	fetcher := &stubFetcher{source: "gmail", docs: []domain.Document{
		textDoc("Good", ""),
		{Source: "gmail", Title: "Bad", Content: []byte("x"), MIMEType: "application/zip"},
	}}

	p := NewPipeline(
		[]driven.Fetcher{fetcher},
		textRegistry(),
		&stubScriptwriter{script: threeTurnScript()},
		fastSynth(okSpeech()),
		&memArtifacts{},
		nil,
		PipelineConfig{},
	)

	summary, err := p.Run(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded())
	assert.Equal(t, 1, summary.Failed())

	for _, r := range summary.Results {
		if r.State == domain.StateFailed {
			assert.Equal(t, domain.StageProcess, r.Stage)
			assert.ErrorIs(t, r.Err, domain.ErrUnsupportedFormat)
			assert.Nil(t, r.Document.ExtractedText)
		}
	}
}

func TestRun_FetcherErrorRecorded(t *testing.T) {
	good := &stubFetcher{source: "gmail", docs: []domain.Document{textDoc("Ok", "")}}
	bad := &stubFetcher{source: "hackernews", err: errors.New("feed unreachable")}

	p := NewPipeline(
		[]driven.Fetcher{good, bad},
		textRegistry(),
		&stubScriptwriter{script: threeTurnScript()},
		fastSynth(okSpeech()),
		&memArtifacts{},
		nil,
		PipelineConfig{},
	)

	summary, err := p.Run(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded())
	require.Contains(t, summary.FetchErrors, "hackernews")
}

func TestRun_SkipsSeenDocuments(t *testing.T) {
	fetcher := &stubFetcher{source: "gmail", docs: []domain.Document{
		textDoc("Old", "gmail://m/old"),
		textDoc("New", "gmail://m/new"),
	}}
	state := newMemState("gmail://m/old")

	p := NewPipeline(
		[]driven.Fetcher{fetcher},
		textRegistry(),
		&stubScriptwriter{script: threeTurnScript()},
		fastSynth(okSpeech()),
		&memArtifacts{},
		state,
		PipelineConfig{},
	)

	summary, err := p.Run(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "New", summary.Results[0].Document.Title)
}

func TestRun_ScriptFailureIsTerminalForDocument(t *testing.T) {
	fetcher := &stubFetcher{source: "gmail", docs: []domain.Document{textDoc("Doc", "")}}

	p := NewPipeline(
		[]driven.Fetcher{fetcher},
		textRegistry(),
		&stubScriptwriter{err: domain.ErrScriptFormat},
		fastSynth(okSpeech()),
		&memArtifacts{},
		nil,
		PipelineConfig{},
	)

	summary, err := p.Run(context.Background(), time.Now())
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, domain.StateFailed, summary.Results[0].State)
	assert.Equal(t, domain.StageScript, summary.Results[0].Stage)
	assert.ErrorIs(t, summary.Results[0].Err, domain.ErrScriptFormat)
}

func TestRun_CancelledContext(t *testing.T) {
	fetcher := &stubFetcher{source: "gmail", docs: []domain.Document{textDoc("Doc", "")}}
	artifacts := &memArtifacts{}

	p := NewPipeline(
		[]driven.Fetcher{fetcher},
		textRegistry(),
		&stubScriptwriter{script: threeTurnScript()},
		fastSynth(okSpeech()),
		artifacts,
		nil,
		PipelineConfig{},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := p.Run(ctx, time.Now())
	require.NoError(t, err)

	// The document reaches a terminal state and no partial files exist.
	require.Len(t, summary.Results, 1)
	assert.Equal(t, domain.StateFailed, summary.Results[0].State)
	assert.Empty(t, artifacts.saved)
}

// A 2-page PDF flows through extraction and chunking end to end: the
// pages join with a blank line and chunk concatenation reproduces the
// extracted text.
func TestEndToEnd_PDFExtractionToChunks(t *testing.T) {
	runner := pdfFixtureRunner{}
	processor := pdf.NewWithRunner(runner)

	doc := domain.Document{
		Title:    "fixture",
		Content:  []byte("%PDF-1.4 fixture"),
		MIMEType: "application/pdf",
	}
	require.NoError(t, ProcessWith(context.Background(), &doc, processor))

	require.NotNil(t, doc.ExtractedText)
	pageOne := "The first page talks about chunking strategies in audio pipelines."
	pageTwo := "The second page covers retry discipline for synthesis backends."
	assert.Equal(t, pageOne+"\n\n"+pageTwo, *doc.ExtractedText)

	segments, err := chunker.Split(*doc.ExtractedText, 100)
	require.NoError(t, err)
	for _, segment := range segments {
		assert.LessOrEqual(t, len(segment), 100)
	}
	joined := strings.Join(strings.Fields(strings.Join(segments, " ")), " ")
	expected := strings.Join(strings.Fields(*doc.ExtractedText), " ")
	assert.Equal(t, expected, joined)
}

type pdfFixtureRunner struct{}

func (pdfFixtureRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	if name == "pdfinfo" {
		return []byte("Pages: 2\n"), nil
	}
	for i, a := range args {
		if a == "-f" && args[i+1] == "1" {
			return []byte("The first page talks about chunking strategies in audio pipelines.\n"), nil
		}
	}
	return []byte("The second page covers retry discipline for synthesis backends.\n"), nil
}
