package aiconnectors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/cohere"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/gradeassist/internal/retry"
)

// Provider represents an AI provider type
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderClaude Provider = "claude"
	ProviderCohere Provider = "cohere"
	ProviderOllama Provider = "ollama"
)

// Providers lists every supported provider
var Providers = []Provider{ProviderOpenAI, ProviderGemini, ProviderClaude, ProviderCohere, ProviderOllama}

const defaultOllamaURL = "http://localhost:11434"

// Options configures a connector. It maps onto the [llm] config section.
type Options struct {
	Enabled     bool          `koanf:"enabled"`
	Provider    Provider      `koanf:"provider"`
	APIKey      string        `koanf:"api_key"`
	BaseURL     string        `koanf:"base_url"`
	Model       string        `koanf:"model"`
	Temperature float64       `koanf:"temperature"`
	MaxTokens   int           `koanf:"max_tokens"`
	Timeout     time.Duration `koanf:"timeout"`
	Retry       retry.Config  `koanf:"retry"`
}

// DefaultOptions returns a disabled ollama setup
func DefaultOptions() Options {
	return Options{
		Provider:    ProviderOllama,
		BaseURL:     defaultOllamaURL,
		Model:       "llama3",
		Temperature: 0.2,
		MaxTokens:   32,
		Timeout:     10 * time.Second,
		Retry:       retry.DefaultConfig(),
	}
}

// Validate checks the options of an enabled connector
func (o Options) Validate() error {
	if !o.Enabled {
		return nil
	}
	known := false
	for _, p := range Providers {
		if p == o.Provider {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unsupported provider: %s", o.Provider)
	}
	if o.Model == "" {
		return fmt.Errorf("llm model is required for provider %s", o.Provider)
	}
	if o.Provider != ProviderOllama && o.APIKey == "" {
		return fmt.Errorf("llm api_key is required for provider %s", o.Provider)
	}
	return nil
}

// Connector sends single prompts to one provider
type Connector struct {
	llm     llms.Model
	options Options
}

// NewConnector creates a connector for the configured provider
func NewConnector(ctx context.Context, options Options) (*Connector, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("provider", string(options.Provider)).
		Str("model", options.Model).
		Msg("Creating connector")

	var (
		model llms.Model
		err   error
	)
	switch options.Provider {
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithModel(options.Model), openai.WithToken(options.APIKey)}
		if options.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(options.BaseURL))
		}
		model, err = openai.New(opts...)
	case ProviderGemini:
		model, err = googleai.New(ctx, googleai.WithAPIKey(options.APIKey), googleai.WithDefaultModel(options.Model))
	case ProviderClaude:
		model, err = anthropic.New(anthropic.WithToken(options.APIKey), anthropic.WithModel(options.Model))
	case ProviderCohere:
		opts := []cohere.Option{cohere.WithToken(options.APIKey), cohere.WithModel(options.Model)}
		if options.BaseURL != "" {
			opts = append(opts, cohere.WithBaseURL(options.BaseURL))
		}
		model, err = cohere.New(opts...)
	case ProviderOllama:
		if options.BaseURL == "" {
			options.BaseURL = defaultOllamaURL
		}
		model, err = ollama.New(ollama.WithServerURL(options.BaseURL), ollama.WithModel(options.Model))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create model for provider %s: %w", options.Provider, err)
	}
	return NewConnectorWithModel(model, options), nil
}

// NewConnectorWithModel wraps an existing model
func NewConnectorWithModel(model llms.Model, options Options) *Connector {
	return &Connector{llm: model, options: options}
}

// Call sends one prompt, retrying transient failures, and returns the trimmed completion
func (c *Connector) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	callOptions := []llms.CallOption{llms.WithTemperature(c.options.Temperature)}
	if c.options.MaxTokens > 0 {
		callOptions = append(callOptions, llms.WithMaxTokens(c.options.MaxTokens))
	}
	if c.options.Provider == ProviderGemini {
		callOptions = append(callOptions, llms.WithModel(c.options.Model))
	}
	callOptions = append(callOptions, options...)

	if c.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.options.Timeout)
		defer cancel()
	}

	var completion string
	result := retry.Do(ctx, c.options.Retry, "llm."+string(c.options.Provider), func(ctx context.Context) error {
		out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, callOptions...)
		if err != nil {
			return err
		}
		completion = out
		return nil
	})
	if !result.Success {
		return "", fmt.Errorf("llm call failed after %d attempts: %w", result.Attempts, result.LastError)
	}
	return strings.TrimSpace(completion), nil
}

// Provider returns the connector's provider
func (c *Connector) Provider() Provider {
	return c.options.Provider
}

// Model returns the configured model name
func (c *Connector) Model() string {
	return c.options.Model
}
