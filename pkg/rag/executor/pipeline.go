package executor

import (
	"context"

	"product-chat-be/internal/entity"
	"product-chat-be/internal/pkg/logger"
	"product-chat-be/internal/repository/memory"
	"product-chat-be/internal/repository/specification"
	"product-chat-be/pkg/apperror"
	"product-chat-be/pkg/events"
	"product-chat-be/pkg/llm"
	"product-chat-be/pkg/rag/budget"
	"product-chat-be/pkg/rag/extract"
	"product-chat-be/pkg/rag/history"
	"product-chat-be/pkg/rag/retrieval"
	"product-chat-be/pkg/tokenizer"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const moduleName = "PIPELINE"

// ProductCatalog is the part of the product store the pipeline reads.
type ProductCatalog interface {
	retrieval.ProductSearcher
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error)
}

// EventPublisher receives a notification after each persisted turn.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Config struct {
	MaxConversationTokens int
	MaxCompletionTokens   int
	DefaultCollection     string
}

// Pipeline runs chat turns: the single-shot RAG turn, the multi-stage product
// search turn and the product reasoning turn. Every turn ends with exactly one
// AppendTurn on the session cache.
type Pipeline struct {
	sessions  *memory.SessionCache
	runner    *extract.Runner
	retriever *retrieval.Retriever
	catalog   ProductCatalog
	llm       llm.LLMProvider
	allocator *budget.Allocator
	tok       tokenizer.Tokenizer
	publisher EventPublisher
	logger    logger.ILogger
	tracer    trace.Tracer
	cfg       Config
}

func NewPipeline(
	sessions *memory.SessionCache,
	llmProvider llm.LLMProvider,
	retriever *retrieval.Retriever,
	catalog ProductCatalog,
	tok tokenizer.Tokenizer,
	log logger.ILogger,
	cfg Config,
) *Pipeline {
	if cfg.DefaultCollection == "" {
		cfg.DefaultCollection = entity.DefaultCollection
	}
	allocator := budget.NewAllocator(tok)
	return &Pipeline{
		sessions:  sessions,
		runner:    extract.NewRunner(llmProvider, allocator, log, cfg.MaxCompletionTokens),
		retriever: retriever,
		catalog:   catalog,
		llm:       llmProvider,
		allocator: allocator,
		tok:       tok,
		logger:    log,
		tracer:    otel.Tracer("product-chat-be/pipeline"),
		cfg:       cfg,
	}
}

// WithPublisher enables turn-completed events. A nil publisher disables them.
func (p *Pipeline) WithPublisher(publisher EventPublisher) *Pipeline {
	p.publisher = publisher
	return p
}

func (p *Pipeline) collection(name string) string {
	if name == "" {
		return p.cfg.DefaultCollection
	}
	return name
}

// ProductSearch runs one product-search turn and returns the persisted user
// and assistant messages, in that order. Extraction stages that fail degrade
// to their fallback; only an unknown session, a retrieval failure or a
// persistence failure abort the turn.
func (p *Pipeline) ProductSearch(ctx context.Context, sessionId, prompt, collection string, templates extract.Templates) ([]entity.Message, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.product_search",
		trace.WithAttributes(attribute.String("session.id", sessionId)))
	defer span.End()

	session, err := p.sessions.Snapshot(ctx, sessionId)
	if err != nil {
		return nil, p.abort(span, "product search", sessionId, err)
	}
	userHistory := history.Select(session, p.cfg.MaxConversationTokens, entity.RoleUser)

	var (
		intent    extract.Result[string]
		attrs     extract.Result[*entity.CustomerAttributes]
		questions extract.Result[[]string]
		g         errgroup.Group
	)
	g.Go(func() error {
		intent = p.runner.Intent(ctx, sessionId, templates.Intent, userHistory, prompt)
		return nil
	})
	g.Go(func() error {
		attrs = p.runner.Attributes(ctx, sessionId, templates.Attributes, userHistory, prompt)
		return nil
	})
	g.Go(func() error {
		questions = p.runner.ExtraQuestions(ctx, sessionId, templates.ExtraQuestions, userHistory, prompt)
		return nil
	})
	_ = g.Wait()

	found, err := p.retriever.Retrieve(ctx, sessionId, p.collection(collection), userHistory, prompt, intent.Value, attrs.Value)
	if err != nil {
		return nil, p.abort(span, "product search", sessionId, err)
	}

	products, categories := p.runner.NormalizeCategories(ctx, sessionId, found.Products)

	report := &TurnReport{SessionId: sessionId, EmbeddingTokens: found.EmbeddingTokens, Products: len(products)}
	record(report, extract.IntentStage.Name, intent)
	record(report, extract.AttributesStage.Name, attrs)
	record(report, extract.ExtraQuestionsStage.Name, questions)
	record(report, extract.CategoriesStage.Name, categories)

	userMessage := entity.NewMessage(sessionId, entity.RoleUser, tokenizer.Count(p.tok, prompt), 0, prompt)
	assistantMessage := entity.NewMessage(sessionId, entity.RoleAssistant,
		report.CompletionTokens(), report.PromptTokens(), intent.Value,
		entity.WithProducts(products),
		entity.WithCustomerAttributes(attrs.Value),
		entity.WithExtraQuestions(questions.Value),
	)

	if err := p.sessions.AppendTurn(ctx, sessionId, userMessage, assistantMessage); err != nil {
		return nil, p.abort(span, "product search", sessionId, err)
	}

	p.logger.Info(moduleName, "product search turn completed", report.Details())
	span.SetAttributes(
		attribute.Int("turn.prompt_tokens", report.PromptTokens()),
		attribute.Int("turn.completion_tokens", report.CompletionTokens()),
		attribute.StringSlice("turn.fallbacks", report.Fallbacks()),
	)
	p.publish(ctx, events.NewChatTurnCompleted(sessionId, "product_search",
		report.PromptTokens(), report.CompletionTokens(), report.Fallbacks()))

	return []entity.Message{userMessage, assistantMessage}, nil
}

// abort logs a failed turn and classifies unclassified errors as upstream
// failures.
func (p *Pipeline) abort(span trace.Span, turn, sessionId string, err error) error {
	if !apperror.HasKind(err) {
		err = apperror.Upstream(turn+" failed", err)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.logger.Error(moduleName, turn+" turn aborted", map[string]interface{}{
		"session_id": sessionId,
		"error":      err,
	})
	return err
}

func (p *Pipeline) publish(ctx context.Context, event events.Event) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.Warn(moduleName, "failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}
