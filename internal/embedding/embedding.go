package embedding

import (
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"corpus-embed/internal/config"
)

// NewClient builds the embedding model client for the configured provider.
// The returned client is the process-lifetime model handle: constructed once
// and shared by the batch encoder and the query encoder.
func NewClient(cfg *config.EmbedderConfig) (embeddings.EmbedderClient, error) {
	switch cfg.Provider {
	case "openai":
		return newOpenAIClient(cfg)
	default:
		return newOllamaClient(cfg)
	}
}

func newOllamaClient(cfg *config.EmbedderConfig) (*ollama.LLM, error) {
	return ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
}

func newOpenAIClient(cfg *config.EmbedderConfig) (*openai.LLM, error) {
	return openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.APIKey, "Bearer ")),
		openai.WithModel(cfg.Model),
		openai.WithEmbeddingModel(cfg.Model),
	)
}
