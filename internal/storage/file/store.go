// Package file persists podcast artifacts to the local filesystem:
// one audio file and one transcript file per document.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/briefcast/internal/core/ports/driven"
	"github.com/custodia-labs/briefcast/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ArtifactStore = (*Store)(nil)

const (
	audioExt      = ".mp3"
	transcriptExt = ".txt"
	timeLayout    = "2006-01-02_15-04-05"

	// maxTitleLen keeps filenames comfortably inside filesystem limits.
	maxTitleLen = 80

	dirPerm  = 0o755
	filePerm = 0o644
)

// Store writes artifacts under an audio directory and a transcript
// directory, creating them on first use.
type Store struct {
	audioDir      string
	transcriptDir string
}

// NewStore creates a filesystem artifact store.
func NewStore(audioDir, transcriptDir string) (*Store, error) {
	if err := os.MkdirAll(audioDir, dirPerm); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	if err := os.MkdirAll(transcriptDir, dirPerm); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	return &Store{audioDir: audioDir, transcriptDir: transcriptDir}, nil
}

// Save writes the audio and transcript for one document and returns
// both paths. Filenames share a sanitized title and timestamp so the
// pair is easy to match up.
func (s *Store) Save(title string, at time.Time, audio []byte, transcript string) (string, string, error) {
	base := fmt.Sprintf("%s_%s", SanitizeTitle(title), at.Format(timeLayout))

	audioPath := filepath.Join(s.audioDir, base+audioExt)
	if err := os.WriteFile(audioPath, audio, filePerm); err != nil {
		return "", "", fmt.Errorf("write audio: %w", err)
	}

	transcriptPath := filepath.Join(s.transcriptDir, base+transcriptExt)
	if err := os.WriteFile(transcriptPath, []byte(transcript), filePerm); err != nil {
		// Keep the pair atomic from the caller's point of view.
		os.Remove(audioPath)
		return "", "", fmt.Errorf("write transcript: %w", err)
	}

	return audioPath, transcriptPath, nil
}

// CleanupOld removes artifacts older than the retention period from
// both directories. It returns the number of files removed.
func (s *Store) CleanupOld(retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	removed := 0

	for _, dir := range []string{s.audioDir, s.transcriptDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, fmt.Errorf("read dir %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !isArtifact(entry.Name()) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				logger.Warn("cleanup: could not remove %s: %v", path, err)
				continue
			}
			removed++
		}
	}

	logger.Debug("cleanup: removed %d artifact(s) older than %s", removed, retention)
	return removed, nil
}

func isArtifact(name string) bool {
	return strings.HasSuffix(name, audioExt) || strings.HasSuffix(name, transcriptExt)
}

// SanitizeTitle reduces a document title to a safe filename fragment:
// letters, digits, dashes and underscores, everything else collapsed
// to single underscores.
func SanitizeTitle(title string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	out := strings.Trim(b.String(), "_")
	if out == "" {
		out = "untitled"
	}
	if len(out) > maxTitleLen {
		out = out[:maxTitleLen]
		out = strings.TrimRight(out, "_")
	}
	return out
}
