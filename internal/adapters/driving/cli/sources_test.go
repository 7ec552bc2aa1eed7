package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSourcesCmd(t *testing.T, cfgContent string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "briefcast.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfgContent), 0o644))

	originalConfig := configPath
	configPath = path
	defer func() { configPath = originalConfig }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sources"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestSourcesCmd_ListsAllSources(t *testing.T) {
	out := runSourcesCmd(t, `
[sources.gmail]
enabled = true

[sources.hackernews]
enabled = true
min_score = 250
`)

	assert.Contains(t, out, "gmail")
	assert.Contains(t, out, "calendar")
	assert.Contains(t, out, "hackernews")
	assert.Contains(t, out, "min score 250")
	assert.NotContains(t, out, "No sources enabled")
}

func TestSourcesCmd_NoneEnabled(t *testing.T) {
	out := runSourcesCmd(t, "")
	assert.Contains(t, out, "No sources enabled")
}
