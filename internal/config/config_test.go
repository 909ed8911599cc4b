package config

import (
	"testing"

	"product-chat-be/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAX_COMPLETION_TOKENS", "")
	t.Setenv("DEFAULT_COLLECTION", "clothes")

	cfg := Load()

	assert.Equal(t, 4000, cfg.Ai.MaxCompletionTokens)
	assert.Equal(t, "clothes", cfg.Ai.DefaultCollection)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_CONVERSATION_TOKENS", "250")
	t.Setenv("VECTOR_SEARCH_RESULTS", "25")
	t.Setenv("LLM_PROVIDER", "openai")

	cfg := Load()

	assert.Equal(t, 250, cfg.Ai.MaxConversationTokens)
	assert.Equal(t, 25, cfg.Ai.VectorSearchResults)
	assert.Equal(t, "openai", cfg.Ai.LLMProvider)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Connection: "postgres://localhost/chat"},
			Ai: AIConfig{
				LLMProvider:           "ollama",
				EmbeddingProvider:     "ollama",
				MaxCompletionTokens:   4000,
				MaxConversationTokens: 100,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing dsn", mutate: func(c *Config) { c.Database.Connection = "" }, wantErr: true},
		{name: "openai without key", mutate: func(c *Config) { c.Ai.LLMProvider = "openai" }, wantErr: true},
		{name: "openai with key", mutate: func(c *Config) { c.Ai.LLMProvider = "openai"; c.Keys.OpenAI = "sk-test" }},
		{name: "azure without endpoint", mutate: func(c *Config) { c.Ai.EmbeddingProvider = "azure"; c.Keys.AzureOpenAI = "k" }, wantErr: true},
		{name: "unknown provider", mutate: func(c *Config) { c.Ai.LLMProvider = "gemini" }, wantErr: true},
		{name: "zero completion ceiling", mutate: func(c *Config) { c.Ai.MaxCompletionTokens = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Equal(t, apperror.KindConfiguration, apperror.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
