package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"

	"github.com/gradeassist/internal/aiconnectors"
	"github.com/gradeassist/internal/grading"
	"github.com/gradeassist/internal/style"
	"github.com/gradeassist/pkg/models"
)

// EnvPrefix prefixes every environment override. Nested keys use a double underscore,
// e.g. GRADEASSIST_SERVER__PORT or GRADEASSIST_GRADING__PASS_RATIO.
const EnvPrefix = "GRADEASSIST_"

// DefaultPaths are searched in order when no config path is given
var DefaultPaths = []string{"./data/gradeassist.toml", "./gradeassist.toml", "$HOME/.gradeassist.toml"}

// Config represents the application configuration
type Config struct {
	General struct {
		LogLevel      string `koanf:"log_level"`
		LogPretty     bool   `koanf:"log_pretty"`
		SessionLogDir string `koanf:"session_log_dir"`
	} `koanf:"general"`

	Server struct {
		Host             string        `koanf:"host"`
		Port             int           `koanf:"port"`
		MaxSessions      int           `koanf:"max_sessions"`
		ActionsPerMinute int           `koanf:"actions_per_minute"`
		ActionBurst      int           `koanf:"action_burst"`
		BodyLimit        string        `koanf:"body_limit"`
		RequestTimeout   time.Duration `koanf:"request_timeout"`
	} `koanf:"server"`

	Composer struct {
		DefaultProfile string `koanf:"default_profile"`
	} `koanf:"composer"`

	Grades   map[string]string              `koanf:"grades"`
	Grading  grading.Policy                 `koanf:"grading"`
	LLM      aiconnectors.Options           `koanf:"llm"`
	Profiles map[string]models.StyleProfile `koanf:"profiles"`
}

func defaults() map[string]interface{} {
	llm := aiconnectors.DefaultOptions()
	return map[string]interface{}{
		"general.log_level":         "info",
		"general.log_pretty":        true,
		"server.host":               "127.0.0.1",
		"server.port":               8088,
		"server.max_sessions":       256,
		"server.actions_per_minute": 60,
		"server.action_burst":       10,
		"server.body_limit":         "2M",
		"server.request_timeout":    "30s",
		"composer.default_profile":  "default",
		"grading.pass_ratio":        grading.DefaultPolicy().PassRatio,
		"grading.distinction_ratio": grading.DefaultPolicy().DistinctionRatio,
		"llm.enabled":               false,
		"llm.provider":              string(llm.Provider),
		"llm.base_url":              llm.BaseURL,
		"llm.model":                 llm.Model,
		"llm.temperature":           llm.Temperature,
		"llm.max_tokens":            llm.MaxTokens,
		"llm.timeout":               llm.Timeout.String(),
		"llm.retry.max_retries":     llm.Retry.MaxRetries,
		"llm.retry.base_delay":      llm.Retry.BaseDelay.String(),
		"llm.retry.max_delay":       llm.Retry.MaxDelay.String(),
		"llm.retry.multiplier":      llm.Retry.Multiplier,
		"llm.retry.jitter":          llm.Retry.Jitter,

		"profiles.default.tone":        string(models.ToneNeutral),
		"profiles.default.focus_areas": []string{"correctness", "readability"},
	}
}

// LoadConfig loads defaults, then the TOML file, then environment overrides
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		for _, path := range DefaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config %s: %w", path, err)
			}
			log.Debug().Str("path", path).Msg("Loaded config file")
			break
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &config, nil
}

// envKey maps GRADEASSIST_LLM__API_KEY to llm.api_key
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// GradeLabels returns the configured labels over the English defaults
func (c *Config) GradeLabels() (models.GradeLabels, error) {
	labels := models.DefaultGradeLabels()
	for name, label := range c.Grades {
		g, ok := models.ParseGrade(name)
		if !ok {
			return nil, &models.UnknownGradeError{Name: name}
		}
		if label = strings.TrimSpace(label); label != "" {
			labels[g] = label
		}
	}
	return labels, nil
}

// Catalog builds the normalized profile catalog
func (c *Config) Catalog() (*style.Catalog, error) {
	return style.NewCatalog(c.Profiles)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", config.Server.Port)
	}
	if config.Grading.PassRatio <= 0 || config.Grading.DistinctionRatio <= config.Grading.PassRatio {
		return fmt.Errorf("grading ratios must satisfy 0 < pass_ratio < distinction_ratio, got %.2f and %.2f",
			config.Grading.PassRatio, config.Grading.DistinctionRatio)
	}
	if _, err := config.GradeLabels(); err != nil {
		return err
	}
	catalog, err := config.Catalog()
	if err != nil {
		return err
	}
	if def := config.Composer.DefaultProfile; def != "" {
		if _, ok := catalog.Get(def); !ok {
			return fmt.Errorf("default profile %q is not configured", def)
		}
	}
	if err := config.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}

// InitConfig writes a sample configuration file
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# gradeassist configuration

[general]
log_level = "info"
log_pretty = true
# session_log_dir = "./data/sessions"

[server]
host = "127.0.0.1"
port = 8088
max_sessions = 256
actions_per_minute = 60
action_burst = 10

[composer]
default_profile = "maria"

[grades]
fail = "Underkänt"
pass = "Godkänt"
pass_with_distinction = "Väl godkänt"

[grading]
pass_ratio = 0.25
distinction_ratio = 1.0

[llm]
enabled = false
provider = "ollama"
base_url = "http://localhost:11434"
model = "llama3"

[profiles.maria]
display_name = "Maria Andersson"
tone = "Encouraging & Direct"
language_level = "advanced"
sentence_length = "long"
focus_areas = ["code quality", "React best practices"]
salutation = "Hi {{student}},"
signoff = "Best regards,\n{{teacher}}"
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}
