package aiconnectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OllamaModel is one entry of the Ollama /api/tags listing
type OllamaModel struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
}

type ollamaTagsResponse struct {
	Models []OllamaModel `json:"models"`
}

// FetchOllamaModels lists the models installed on an Ollama server
func FetchOllamaModels(ctx context.Context, baseURL string) ([]OllamaModel, error) {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	apiURL := strings.TrimSuffix(baseURL, "/") + "/api/tags"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ollama at %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to parse Ollama response: %w", err)
	}
	return tags.Models, nil
}

// CheckOllama verifies that the server is reachable and has the configured model
func CheckOllama(ctx context.Context, options Options) error {
	models, err := FetchOllamaModels(ctx, options.BaseURL)
	if err != nil {
		return err
	}
	for _, m := range models {
		if m.Name == options.Model || strings.TrimSuffix(m.Name, ":latest") == options.Model {
			return nil
		}
	}
	return fmt.Errorf("model %q not found on Ollama at %s", options.Model, options.BaseURL)
}
