package bootstrap

import (
	"context"
	"fmt"
	"time"

	"product-chat-be/internal/config"
	"product-chat-be/internal/controller"
	"product-chat-be/internal/pkg/logger"
	"product-chat-be/internal/repository/implementation"
	"product-chat-be/internal/repository/memory"
	"product-chat-be/internal/repository/store"
	"product-chat-be/internal/repository/unitofwork"
	"product-chat-be/internal/service"
	"product-chat-be/pkg/embedding"
	"product-chat-be/pkg/llm/factory"
	pktNats "product-chat-be/pkg/nats"
	"product-chat-be/pkg/rag/executor"
	"product-chat-be/pkg/rag/retrieval"
	"product-chat-be/pkg/tokenizer"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const moduleName = "BOOTSTRAP"

type Container struct {
	ChatController    controller.IChatController
	ProductController controller.IProductController

	// Background services, started by main.
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func() error
}

// Close releases the connections opened by NewContainer, newest first.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn(moduleName, "failed to close resource", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Logger: sysLogger}

	uowFactory := unitofwork.NewRepositoryFactory(db)

	tok, err := tokenizer.NewTiktoken(cfg.Ai.Encoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: %w", err)
	}

	llmProvider, err := factory.NewLLMProvider(providerConfig(cfg, cfg.Ai.LLMProvider, cfg.Ai.LLMModel))
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	sysLogger.Info(moduleName, "using LLM provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	embeddingProvider, err := newEmbeddingProvider(c, cfg, tok)
	if err != nil {
		return nil, err
	}

	// Event bus for the vectorize queue
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	c.closers = append(c.closers, pubSub.Close)

	// NATS is optional; without it turns are not announced.
	var eventPublisher executor.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn(moduleName, "failed to connect to NATS publisher", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, func() error {
				natsPub.Close()
				return nil
			})
		}
	}

	sessions := memory.NewSessionCache(store.NewSessionStore(uowFactory), memory.DefaultSessionTTL)
	productRepo := implementation.NewProductRepository(db)
	retriever := retrieval.NewRetriever(embeddingProvider, productRepo, cfg.Ai.VectorSearchResults)

	pipeline := executor.NewPipeline(
		sessions,
		llmProvider,
		retriever,
		productRepo,
		tok,
		sysLogger,
		executor.Config{
			MaxConversationTokens: cfg.Ai.MaxConversationTokens,
			MaxCompletionTokens:   cfg.Ai.MaxCompletionTokens,
			DefaultCollection:     cfg.Ai.DefaultCollection,
		},
	).WithPublisher(eventPublisher)

	publisherService := service.NewPublisherService(cfg.App.VectorizeTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.App.VectorizeTopic,
		uowFactory,
		embeddingProvider,
		sysLogger,
	)

	chatService := service.NewChatService(sessions, pipeline)
	productService := service.NewProductService(
		uowFactory,
		publisherService,
		eventPublisher,
		sysLogger,
		cfg.Ai.DefaultCollection,
	)

	c.ChatController = controller.NewChatController(chatService)
	c.ProductController = controller.NewProductController(productService)

	return c, nil
}

func providerConfig(cfg *config.Config, provider, model string) factory.ProviderConfig {
	apiKey := cfg.Keys.OpenAI
	if provider == "azure" {
		apiKey = cfg.Keys.AzureOpenAI
	}
	baseURL := ""
	if provider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	return factory.ProviderConfig{
		Provider:      provider,
		Model:         model,
		BaseURL:       baseURL,
		APIKey:        apiKey,
		AzureEndpoint: cfg.Ai.AzureEndpoint,
		AzureVersion:  cfg.Ai.AzureAPIVersion,
		MaxRetries:    cfg.Ai.MaxRetries,
	}
}

// newEmbeddingProvider builds the configured provider, cuts inputs to the
// model's token limit and, when redis is configured, caches vectors.
func newEmbeddingProvider(c *Container, cfg *config.Config, tok tokenizer.Tokenizer) (embedding.EmbeddingProvider, error) {
	base, err := factory.NewEmbeddingProvider(
		providerConfig(cfg, cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel),
		cfg.Ai.EmbeddingDimensions,
	)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	c.Logger.Info(moduleName, "using embedding provider", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"model":    cfg.Ai.EmbeddingModel,
	})

	var provider embedding.EmbeddingProvider = embedding.NewTruncatingProvider(base, tok, cfg.Ai.MaxEmbeddingTokens)

	if cfg.App.RedisURL == "" || cfg.Ai.EmbeddingCacheTTLMinutes <= 0 {
		return provider, nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		c.Logger.Warn(moduleName, "failed to parse Redis URL, using direct Addr", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		c.Logger.Warn(moduleName, "failed to connect to Redis, embedding cache disabled", map[string]interface{}{
			"error": err.Error(),
		})
		_ = rdb.Close()
		return provider, nil
	}
	c.closers = append(c.closers, rdb.Close)

	ttl := time.Duration(cfg.Ai.EmbeddingCacheTTLMinutes) * time.Minute
	return embedding.NewCachedProvider(provider, embedding.NewRedisCache(rdb, ttl), cfg.Ai.EmbeddingModel, c.Logger), nil
}
