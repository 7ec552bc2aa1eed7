// Package scriptwriter turns extracted document text into a
// multi-voice dialogue script via an LLM.
package scriptwriter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/briefcast/internal/core/domain"
	"github.com/custodia-labs/briefcast/internal/core/ports/driven"
	"github.com/custodia-labs/briefcast/internal/logger"
)

// DefaultStyle is the presentation style used when none is configured.
const DefaultStyle = "two-host podcast"

// turnPattern matches "label: utterance" dialogue lines.
var turnPattern = regexp.MustCompile(`^([A-Za-z0-9 _\-]{1,64}):\s*(.+)$`)

// Config holds scriptwriter settings.
type Config struct {
	// Style is the target presentation style.
	Style string

	// Voices is the rotation list, length >= 1. Recognized speaker
	// labels are drawn from this set.
	Voices []string

	// MaxTokens bounds the generated script length. Zero means the
	// model default.
	MaxTokens int
}

// Scriptwriter generates and parses dialogue scripts.
type Scriptwriter struct {
	llm driven.LLMService
	cfg Config
}

// New creates a scriptwriter. The voice rotation list must not be empty.
func New(llm driven.LLMService, cfg Config) (*Scriptwriter, error) {
	if len(cfg.Voices) == 0 {
		return nil, fmt.Errorf("scriptwriter: %w: empty voice rotation", domain.ErrInvalidInput)
	}
	if cfg.Style == "" {
		cfg.Style = DefaultStyle
	}
	return &Scriptwriter{llm: llm, cfg: cfg}, nil
}

// Write generates a dialogue script from extracted text.
func (s *Scriptwriter) Write(ctx context.Context, text string) (domain.Script, error) {
	prompt := buildPrompt(s.cfg.Style, s.cfg.Voices, text)

	raw, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return domain.Script{}, fmt.Errorf("generate dialogue: %w", err)
	}

	script, err := Parse(raw, s.cfg.Voices)
	if err != nil {
		return domain.Script{}, err
	}

	logger.Debug("scriptwriter: %d turns from %d characters of input", len(script.Lines), len(text))
	return script, nil
}

// Parse splits raw model output into structured turns.
// Each line of the form "label: utterance" becomes one turn. A label
// matching a configured voice keeps that voice; any other turn is
// assigned the next voice in rotation (turn index mod rotation length)
// so no content is lost. Output with zero parsable turns fails with
// ErrScriptFormat.
func Parse(raw string, voices []string) (domain.Script, error) {
	voiceSet := make(map[string]string, len(voices))
	for _, v := range voices {
		voiceSet[strings.ToLower(v)] = v
	}

	var lines []domain.ScriptLine
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		speaker, text := splitTurn(line)
		if text == "" {
			continue
		}

		voice, ok := voiceSet[strings.ToLower(speaker)]
		if !ok {
			voice = voices[len(lines)%len(voices)]
			if speaker == "" {
				speaker = voice
			}
		}

		lines = append(lines, domain.ScriptLine{
			Speaker: speaker,
			Voice:   voice,
			Text:    text,
		})
	}

	if len(lines) == 0 {
		return domain.Script{}, domain.ErrScriptFormat
	}

	return domain.Script{Lines: lines}, nil
}

// splitTurn separates a dialogue line into label and utterance.
// Lines without a label are returned with an empty speaker.
func splitTurn(line string) (speaker, text string) {
	if m := turnPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return "", line
}

// buildPrompt assembles the dialogue generation prompt.
// Derived from a podcast-dialogue prompt: extract key points from messy
// source text and present them as an engaging spoken conversation.
func buildPrompt(style string, voices []string, text string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Turn the input text below into an engaging, informative %s dialogue.\n", style)
	b.WriteString("The text may be messy or unstructured; extract the key points and interesting\n")
	b.WriteString("facts and present them conversationally for a general audience. Briefly explain\n")
	b.WriteString("any complex concepts in simple terms. The output will be read aloud and\n")
	b.WriteString("converted directly into audio, so write nothing that cannot be spoken.\n\n")

	fmt.Fprintf(&b, "Format every line exactly as \"SPEAKER: utterance\", one turn per line,\n")
	fmt.Fprintf(&b, "using only these speaker names: %s.\n", strings.Join(voices, ", "))
	b.WriteString("Alternate speakers naturally and keep each turn short enough to speak in one\n")
	b.WriteString("breath. End with the hosts naturally summarising the main takeaways.\n\n")

	b.WriteString("<input_text>\n")
	b.WriteString(text)
	b.WriteString("\n</input_text>\n")

	return b.String()
}
