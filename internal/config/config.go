package config

import (
	"log"
	"os"
	"strconv"

	"product-chat-be/pkg/apperror"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	VectorizeTopic     string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	// ChatApiKey guards every /api route through the ApiKey header.
	ChatApiKey  string
	OpenAI      string
	AzureOpenAI string
}

type AIConfig struct {
	LLMProvider       string // "ollama", "openai" or "azure"
	LLMModel          string
	EmbeddingProvider string // "ollama", "openai" or "azure"
	EmbeddingModel    string
	OllamaBaseURL     string
	AzureEndpoint     string
	AzureAPIVersion   string
	Encoding          string

	MaxConversationTokens int
	MaxCompletionTokens   int
	MaxEmbeddingTokens    int
	VectorSearchResults   int
	EmbeddingDimensions   int
	DefaultCollection     string
	MaxRetries            int

	// EmbeddingCacheTTLMinutes of 0 disables the redis embedding cache.
	EmbeddingCacheTTLMinutes int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.json"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			VectorizeTopic:     getEnv("VECTORIZE_PRODUCT_TOPIC_NAME", "VECTORIZE_PRODUCT"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			ChatApiKey:  getEnv("CHAT_API_KEY", ""),
			OpenAI:      getEnv("OPENAI_API_KEY", ""),
			AzureOpenAI: getEnv("AZURE_OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			AzureEndpoint:     getEnv("AZURE_OPENAI_ENDPOINT", ""),
			AzureAPIVersion:   getEnv("AZURE_OPENAI_API_VERSION", "2024-06-01"),
			Encoding:          getEnv("TOKENIZER_ENCODING", "cl100k_base"),

			MaxConversationTokens: getEnvAsInt("MAX_CONVERSATION_TOKENS", 100),
			MaxCompletionTokens:   getEnvAsInt("MAX_COMPLETION_TOKENS", 4000),
			MaxEmbeddingTokens:    getEnvAsInt("MAX_EMBEDDING_TOKENS", 8000),
			VectorSearchResults:   getEnvAsInt("VECTOR_SEARCH_RESULTS", 10),
			EmbeddingDimensions:   getEnvAsInt("EMBEDDING_DIMENSIONS", 768),
			DefaultCollection:     getEnv("DEFAULT_COLLECTION", "clothes"),
			MaxRetries:            getEnvAsInt("AI_MAX_RETRIES", 3),

			EmbeddingCacheTTLMinutes: getEnvAsInt("EMBEDDING_CACHE_TTL_MINUTES", 60),
		},
	}
}

// Validate reports missing settings that would make the service unusable.
func (c *Config) Validate() error {
	if c.Database.Connection == "" {
		return apperror.Configuration("DB_CONNECTION_STRING is required")
	}
	if c.Ai.MaxCompletionTokens <= 0 {
		return apperror.Configuration("MAX_COMPLETION_TOKENS must be positive, got %d", c.Ai.MaxCompletionTokens)
	}
	if c.Ai.MaxConversationTokens < 0 {
		return apperror.Configuration("MAX_CONVERSATION_TOKENS must not be negative, got %d", c.Ai.MaxConversationTokens)
	}
	for _, provider := range []string{c.Ai.LLMProvider, c.Ai.EmbeddingProvider} {
		switch provider {
		case "openai":
			if c.Keys.OpenAI == "" {
				return apperror.Configuration("OPENAI_API_KEY is required for provider openai")
			}
		case "azure":
			if c.Keys.AzureOpenAI == "" || c.Ai.AzureEndpoint == "" {
				return apperror.Configuration("AZURE_OPENAI_API_KEY and AZURE_OPENAI_ENDPOINT are required for provider azure")
			}
		case "ollama":
		default:
			return apperror.Configuration("unsupported AI provider: %s", provider)
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
