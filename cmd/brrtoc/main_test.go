package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/metcalfc/brrtoc/internal/autotoc"
)

const filler = "The wind moved across the quiet valley while the river ran slow under a pale and patient sky. " +
	"Nobody in the village spoke of the winter, though everyone felt it waiting beyond the far hills."

func chapterText(n int) string {
	var parts []string
	for i := 1; i <= n; i++ {
		parts = append(parts, fmt.Sprintf("Chapter %d", i), filler)
	}
	return strings.Join(parts, "\n")
}

// isolate points config and state at fresh directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScanFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, "book.txt", chapterText(5))

	out, err := run(t, "", "scan", path)
	require.NoError(t, err)

	var got tocOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, path, got.Source)
	assert.Equal(t, "Chapter *", got.Template)
	assert.Greater(t, got.Beauty, 0.0)
	require.Len(t, got.Entries, 5)

	words := len(strings.Fields(filler)) + 2
	for i, e := range got.Entries {
		assert.Equal(t, fmt.Sprintf("Chapter %d", i+1), e.Title)
		assert.Equal(t, 2*i+1, e.Line)
		assert.Equal(t, i*words, e.WordIndex)
		assert.True(t, strings.HasPrefix(filler, e.Preview), "preview %q", e.Preview)
	}
	assert.Equal(t, 0, got.Entries[0].Cursor)
}

func TestScanStdinJSON(t *testing.T) {
	isolate(t)

	out, err := run(t, chapterText(5), "scan", "-o", "json")
	require.NoError(t, err)

	var got tocOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "-", got.Source)
	assert.Equal(t, "Chapter *", got.Template)
	assert.Len(t, got.Entries, 5)
}

func TestScanNothingFound(t *testing.T) {
	isolate(t)

	_, err := run(t, filler, "scan")
	assert.ErrorIs(t, err, errNoTOC)
}

func TestScanRememberThenApply(t *testing.T) {
	isolate(t)
	path := writeFile(t, "book.txt", chapterText(5))

	_, err := run(t, "", "scan", "--remember", path)
	require.NoError(t, err)

	out, err := run(t, "", "apply", path)
	require.NoError(t, err)

	var got tocOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Chapter *", got.Template)
	assert.Len(t, got.Entries, 5)
}

func TestScanRememberStdin(t *testing.T) {
	isolate(t)

	_, err := run(t, chapterText(5), "scan", "--remember")
	assert.ErrorContains(t, err, "only be remembered for files")
}

func TestApply(t *testing.T) {
	isolate(t)
	path := writeFile(t, "book.txt", chapterText(3)+"\nAppendix\n"+filler)

	tests := []struct {
		name     string
		template string
		titles   []string
	}{
		{"literal", "Appendix", []string{"Appendix"}},
		{"wildcard", "Chapter *", []string{"Chapter 1", "Chapter 2", "Chapter 3"}},
		{"regex", `/^(Chapter 2|Appendix)$/`, []string{"Chapter 2", "Appendix"}},
		{"no match", "Prologue *", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", "apply", "-t", tt.template, "-o", "json", path)
			require.NoError(t, err)

			var got tocOutput
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, tt.template, got.Template)
			assert.Zero(t, got.Beauty)

			var titles []string
			for _, e := range got.Entries {
				titles = append(titles, e.Title)
			}
			assert.Equal(t, tt.titles, titles)
		})
	}
}

func TestApplyErrors(t *testing.T) {
	isolate(t)
	path := writeFile(t, "book.txt", chapterText(3))

	_, err := run(t, "", "apply", "-t", "/[/", path)
	assert.ErrorIs(t, err, autotoc.ErrInvalidTemplate)

	_, err = run(t, "", "apply", path)
	assert.ErrorContains(t, err, "no template remembered")

	_, err = run(t, chapterText(3), "apply")
	assert.ErrorContains(t, err, "no --template given")

	_, err = run(t, "", "apply", "-t", "Chapter *", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "brr", "config.yaml")

	out, err := run(t, "", "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = run(t, "", "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "", "config", "init", "--force", path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("wpm: 450\ndetector:\n  second_stage_min: 0.5\n"), 0o644))
	out, err = run(t, "", "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "wpm: 450")
	assert.Contains(t, out, "second_stage_min: 0.5")
}

func TestConfigInitDefaultPath(t *testing.T) {
	isolate(t)

	_, err := run(t, "", "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "brr", "config.yaml"))
}

func TestBadOutputFormat(t *testing.T) {
	isolate(t)

	_, err := run(t, chapterText(5), "scan", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestApplyHelp(t *testing.T) {
	out, err := run(t, "", "apply", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "* matches any\nrun of characters and ? exactly one")
	assert.NotContains(t, out, "numeral")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "brrtoc dev")
	assert.Contains(t, out, "Commit: none")
}
