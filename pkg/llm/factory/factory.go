package factory

import (
	"fmt"

	"product-chat-be/pkg/embedding"
	"product-chat-be/pkg/llm"
	"product-chat-be/pkg/llm/ollama"
	llmopenai "product-chat-be/pkg/llm/openai"

	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

type ProviderConfig struct {
	Provider      string
	Model         string
	BaseURL       string
	APIKey        string
	AzureEndpoint string
	AzureVersion  string
	MaxRetries    int
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	case "openai":
		return llmopenai.NewOpenAIProvider(cfg.Model, OpenAIOptions(cfg)...), nil
	case "azure":
		return llmopenai.NewOpenAIProvider(cfg.Model, OpenAIOptions(cfg)...), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// NewEmbeddingProvider builds the embedding client for the same provider
// names as NewLLMProvider. dimensions only applies to openai and azure.
func NewEmbeddingProvider(cfg ProviderConfig, dimensions int) (embedding.EmbeddingProvider, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return embedding.NewOllamaProvider(baseURL, cfg.Model), nil
	case "openai", "azure":
		return embedding.NewOpenAIProvider(cfg.Model, dimensions, OpenAIOptions(cfg)...), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// OpenAIOptions builds SDK request options for the openai and azure providers.
func OpenAIOptions(cfg ProviderConfig) []option.RequestOption {
	opts := []option.RequestOption{option.WithMaxRetries(cfg.MaxRetries)}
	if cfg.Provider == "azure" {
		return append(opts,
			azure.WithEndpoint(cfg.AzureEndpoint, cfg.AzureVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
	}
	opts = append(opts, option.WithAPIKey(cfg.APIKey))
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return opts
}
