package config

import (
	"os"
	"strings"
	"sync"
	"time"
)

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

var (
	openRouterConfig *OpenRouterConfig
	openRouterOnce   sync.Once
)

func LoadOpenRouterConfig() *OpenRouterConfig {
	openRouterOnce.Do(func() {
		model := os.Getenv("OPENROUTER_MODEL")
		if model == "" {
			model = "openai/gpt-4o-mini"
		}
		baseURL := os.Getenv("OPENROUTER_BASE_URL")
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
		openRouterConfig = &OpenRouterConfig{
			APIKey:  os.Getenv("OPENROUTER_API_KEY"),
			Model:   model,
			BaseURL: strings.TrimSuffix(baseURL, "/"),
			Timeout: durationEnv("OPENROUTER_TIMEOUT", 60*time.Second),
		}
	})
	return openRouterConfig
}

// SummarizerProvider is "gemini", "openrouter" or empty for none.
func SummarizerProvider() string {
	return strings.ToLower(strings.TrimSpace(os.Getenv("SUMMARIZER_PROVIDER")))
}
