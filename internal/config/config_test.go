package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeassist/pkg/models"
)

func TestLoadConfig_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 0.25, cfg.Grading.PassRatio)
	assert.False(t, cfg.LLM.Enabled)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	require.Contains(t, cfg.Profiles, "default")
	assert.Equal(t, []string{"correctness", "readability"}, cfg.Profiles["default"].FocusAreas)
	assert.NoError(t, Validate(cfg))
}

func TestInitConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradeassist.toml")
	require.NoError(t, InitConfig(path))
	assert.Error(t, InitConfig(path), "refuses to overwrite")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	labels, err := cfg.GradeLabels()
	require.NoError(t, err)
	assert.Equal(t, "Väl godkänt", labels.Label(models.GradePassWithDistinction))

	catalog, err := cfg.Catalog()
	require.NoError(t, err)
	maria, ok := catalog.Get("maria")
	require.True(t, ok)
	assert.Equal(t, models.ToneEncouragingDirect, maria.Tone)
	assert.Equal(t, models.LengthLong, maria.PreferredSentenceLength)
	assert.Equal(t, "Best regards,\n{{teacher}}", maria.Signoff)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradeassist.toml")
	require.NoError(t, InitConfig(path))
	t.Setenv("GRADEASSIST_SERVER__PORT", "9100")
	t.Setenv("GRADEASSIST_GRADING__PASS_RATIO", "0.4")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 0.4, cfg.Grading.PassRatio)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	write := func(t *testing.T, body string) *Config {
		t.Helper()
		path := filepath.Join(t.TempDir(), "c.toml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad ratios", "[grading]\npass_ratio = 2.0\ndistinction_ratio = 1.0\n", "grading ratios"},
		{"unknown grade", "[grades]\nexcellent = \"A\"\n", "unknown grade"},
		{"profile without focus", "[profiles.erik]\ntone = \"direct\"\nfocus_areas = []\n", "erik"},
		{"missing default profile", "[composer]\ndefault_profile = \"nobody\"\n", "nobody"},
		{"llm without key", "[llm]\nenabled = true\nprovider = \"openai\"\nmodel = \"gpt-4o-mini\"\n", "api_key"},
		{"port", "[server]\nport = 0\n", "port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(write(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "llm.api_key", envKey("GRADEASSIST_LLM__API_KEY"))
	assert.Equal(t, "server.port", envKey("GRADEASSIST_SERVER__PORT"))
}
