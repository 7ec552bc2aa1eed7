package domain

import "time"

// Document represents one item fetched from an external source.
// It is the canonical record flowing through the pipeline, from fetch
// to persisted audio.
type Document struct {
	// ID is the unique identifier for the document within a run.
	ID string

	// Source identifies the origin ("gmail", "calendar", "hackernews").
	Source string

	// Title is the human-readable title.
	Title string

	// Content is the raw payload as fetched, interpreted per MIMEType.
	Content []byte

	// MIMEType declares how Content must be interpreted.
	MIMEType string

	// URL is the optional origin reference. When set it doubles as the
	// stable key for cross-run deduplication.
	URL string

	// Timestamp is when the item was created or received at the source.
	Timestamp time.Time

	// Metadata contains source-specific key-value pairs.
	Metadata map[string]any

	// ExtractedText holds the full plain text after processing.
	// It is nil until a processor has run and is written exactly once.
	ExtractedText *string
}

// SetExtractedText performs the single write to ExtractedText.
// A second write attempt fails with ErrAlreadyProcessed and leaves the
// original text in place.
func (d *Document) SetExtractedText(text string) error {
	if d.ExtractedText != nil {
		return ErrAlreadyProcessed
	}
	d.ExtractedText = &text
	return nil
}

// Chunk is a bounded-size ordered slice of script text destined for one
// synthesis call.
type Chunk struct {
	// Index is the ordinal position within the document's chunk sequence.
	Index int

	// Text is the chunk content. len(Text) never exceeds the configured
	// maximum chunk size.
	Text string

	// Voice is the voice identifier assigned for synthesis.
	Voice string
}

// AudioResult is the synthesized audio for one chunk.
type AudioResult struct {
	// Index matches the chunk index the audio was produced from.
	Index int

	// Data is the raw audio bytes.
	Data []byte

	// Voice is the voice identifier used.
	Voice string

	// Duration is the audio duration when the backend reports it,
	// zero otherwise.
	Duration time.Duration
}
