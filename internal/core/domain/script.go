package domain

import "strings"

// ScriptLine is a single turn of dialogue: one speaker, one utterance.
type ScriptLine struct {
	// Speaker is the label as produced by the scriptwriter.
	Speaker string

	// Voice is the synthesis voice assigned to this turn.
	Voice string

	// Text is the utterance.
	Text string
}

// Script is an ordered multi-speaker dialogue derived from extracted text.
type Script struct {
	Lines []ScriptLine
}

// Transcript renders the script as plain text, one "speaker: text" line
// per turn separated by blank lines.
func (s Script) Transcript() string {
	var b strings.Builder
	for i, line := range s.Lines {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(line.Speaker)
		b.WriteString(": ")
		b.WriteString(line.Text)
	}
	return b.String()
}
