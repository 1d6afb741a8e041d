package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeassist/internal/config"
	"github.com/gradeassist/pkg/models"
)

// analyzer output as it often arrives: fenced, with a trailing comma
const fencedFindings = "```json\n" + `{
  "issues": [
    {"id": "i1", "title": "Global state", "severity": "high", "suggested_fix": "Move the cart into a React context"},
    {"id": "i2", "title": "Inline styles", "severity": "low"},
  ],
  "strengths": [
    {"id": "s1", "title": "Good application of React hooks"}
  ]
}` + "\n```"

type fixture struct {
	dir      string
	config   string
	findings string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:      dir,
		config:   filepath.Join(dir, "gradeassist.toml"),
		findings: filepath.Join(dir, "findings.json"),
	}
	require.NoError(t, config.InitConfig(f.config))
	require.NoError(t, os.WriteFile(f.findings, []byte(fencedFindings), 0644))
	return f
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp("test")
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"gradeassist"}, args...))
	return out.String(), err
}

func TestGradeCommand(t *testing.T) {
	f := newFixture(t)
	out, err := run(t, "-c", f.config, "grade", "-f", f.findings)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "pass", got["grade"])
	assert.Equal(t, "Godkänt", got["label"])
	assert.Contains(t, got["rationale"], "Global state")
}

func TestComposeActionScore(t *testing.T) {
	f := newFixture(t)

	text, err := run(t, "-c", f.config, "compose", "-f", f.findings,
		"--assignment-text", "Build a product listing with a cart.", "--student", "Viktor")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Hi Viktor,"))
	assert.Contains(t, text, "Maria Andersson")

	draftJSON, err := run(t, "-c", f.config, "compose", "-f", f.findings, "--json",
		"--assignment-text", "Build a product listing with a cart.")
	require.NoError(t, err)
	draftPath := filepath.Join(f.dir, "draft.json")
	require.NoError(t, os.WriteFile(draftPath, []byte(draftJSON), 0644))

	out, err := run(t, "-c", f.config, "action", "-d", draftPath, "--action", "suggest_next_steps",
		"-f", f.findings, "--assignment-text", "Build a product listing with a cart.")
	require.NoError(t, err)
	var next models.FeedbackDraft
	require.NoError(t, json.Unmarshal([]byte(out), &next))
	assert.Equal(t, 1, next.Revision)
	assert.Contains(t, next.Text, "1. Move the cart into a React context")

	out, err = run(t, "-c", f.config, "score", "-d", draftPath)
	require.NoError(t, err)
	var breakdown map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &breakdown))
	assert.GreaterOrEqual(t, breakdown["total"], float64(90))
}

func TestActionCommand_UnknownAction(t *testing.T) {
	f := newFixture(t)
	_, err := run(t, "-c", f.config, "action", "-d", filepath.Join(f.dir, "missing.json"), "--action", "shout")
	assert.True(t, models.IsUnknownAction(err))
}

func TestComposeCommand_EmptyInput(t *testing.T) {
	f := newFixture(t)
	_, err := run(t, "-c", f.config, "compose")
	assert.ErrorIs(t, err, models.ErrEmptyInput)
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.toml")

	out, err := run(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.Contains(t, out, `2 profiles (default "maria")`)

	out, err = run(t, "-c", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid (2 profiles)")

	_, err = run(t, "config", "init", "-o", path)
	assert.Error(t, err)

	_, err = run(t, "config", "init", "-o", path, "--force")
	assert.NoError(t, err)
}
