// Package chunker splits text into ordered, bounded-size segments for
// speech synthesis.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/briefcast/internal/core/domain"
)

// DefaultChunkSize is the default maximum number of bytes per chunk.
// OpenAI-style TTS endpoints cap input at 4096 characters.
const DefaultChunkSize = 4000

// Split divides text into segments of at most max bytes.
// It accumulates greedily at sentence boundaries, falls back to word
// boundaries, and hard-cuts only when a single word exceeds the limit.
// Whitespace is trimmed at segment boundaries; apart from that the
// concatenation of all segments reproduces the input exactly.
// Identical input and limit always yield identical boundaries.
func Split(text string, max int) ([]string, error) {
	if max <= 0 {
		return nil, domain.ErrInvalidInput
	}

	rem := strings.TrimSpace(text)
	if rem == "" {
		return nil, nil
	}

	var segments []string
	for len(rem) > max {
		cut := cutPoint(rem, max)
		segment := strings.TrimRight(rem[:cut], " \t\n")
		if segment != "" {
			segments = append(segments, segment)
		}
		rem = strings.TrimLeft(rem[cut:], " \t\n")
	}
	if rem != "" {
		segments = append(segments, rem)
	}

	return segments, nil
}

// ChunkScript splits each script turn into bounded chunks carrying the
// turn's voice, with a single gap-free index sequence across the script.
func ChunkScript(script domain.Script, max int) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, line := range script.Lines {
		segments, err := Split(line.Text, max)
		if err != nil {
			return nil, err
		}
		for _, segment := range segments {
			chunks = append(chunks, domain.Chunk{
				Index: len(chunks),
				Text:  segment,
				Voice: line.Voice,
			})
		}
	}
	return chunks, nil
}

// cutPoint returns the byte index to cut s so the emitted segment stays
// within max. Preference order: sentence end, whitespace, hard cut.
// Callers guarantee len(s) > max.
func cutPoint(s string, max int) int {
	window := s[:max+1]

	if i := lastSentenceEnd(window, max); i > 0 {
		return i
	}
	if i := strings.LastIndexAny(window, " \t\n"); i > 0 {
		return i
	}

	// Single word longer than the limit: cut at max, backing up to a
	// rune boundary so multi-byte characters stay intact.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		cut = max
	}
	return cut
}

// lastSentenceEnd returns the largest index i <= max such that
// window[:i] ends with sentence-final punctuation followed by
// whitespace (or the window edge). Returns 0 if none exists.
func lastSentenceEnd(window string, max int) int {
	for i := max; i > 0; i-- {
		if !isSentenceEnd(window[i-1]) {
			continue
		}
		if i == len(window) || isSpace(window[i]) {
			return i
		}
	}
	return 0
}

func isSentenceEnd(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}
