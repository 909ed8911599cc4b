package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"product-chat-be/internal/entity"
	"product-chat-be/internal/repository/specification"
	"product-chat-be/pkg/apperror"
	"product-chat-be/pkg/events"
	"product-chat-be/pkg/llm"
	"product-chat-be/pkg/rag/budget"
	"product-chat-be/pkg/rag/extract"
	"product-chat-be/pkg/rag/history"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const MaxSessionNameLength = 30

// CompleteRAG answers prompt from the products nearest to it and the recent
// conversation, persists the prompt/answer pair and returns the answer.
func (p *Pipeline) CompleteRAG(ctx context.Context, sessionId, prompt, collection string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.rag",
		trace.WithAttributes(attribute.String("session.id", sessionId)))
	defer span.End()

	session, err := p.sessions.Snapshot(ctx, sessionId)
	if err != nil {
		return "", p.abort(span, "rag", sessionId, err)
	}

	found, err := p.retriever.Search(ctx, sessionId, p.collection(collection), prompt)
	if err != nil {
		return "", p.abort(span, "rag", sessionId, err)
	}
	// Built before the completion so its timestamp precedes the answer.
	userMessage := entity.NewMessage(sessionId, entity.RoleUser, found.EmbeddingTokens, 0, prompt)

	documents, err := json.Marshal(found.Products)
	if err != nil {
		return "", p.abort(span, "rag", sessionId, apperror.Wrap(apperror.KindInternal, "serialize products", err))
	}
	conversation := history.Select(session, p.cfg.MaxConversationTokens, "")

	alloc, err := p.allocator.Allocate(string(documents), conversation, prompt, budget.DefaultBuffer, p.cfg.MaxCompletionTokens)
	if err != nil {
		return "", p.abort(span, "rag", sessionId, err)
	}

	completion, err := p.llm.Complete(ctx, llm.Request{
		SessionId: sessionId,
		Prompt:    alloc.ConversationAndPrompt,
		Context:   alloc.Context,
	})
	if err != nil {
		return "", p.abort(span, "rag", sessionId, apperror.Upstream("rag completion", err))
	}

	assistantMessage := entity.NewMessage(sessionId, entity.RoleAssistant,
		completion.CompletionTokens, completion.PromptTokens, completion.Text)

	if err := p.sessions.AppendTurn(ctx, sessionId, userMessage, assistantMessage); err != nil {
		return "", p.abort(span, "rag", sessionId, err)
	}

	p.logger.Info(moduleName, "rag turn completed", map[string]interface{}{
		"session_id":        sessionId,
		"products":          len(found.Products),
		"trimmed":           alloc.Trimmed,
		"prompt_tokens":     completion.PromptTokens,
		"completion_tokens": completion.CompletionTokens,
	})
	p.publish(ctx, events.NewChatTurnCompleted(sessionId, "rag",
		completion.PromptTokens, completion.CompletionTokens+found.EmbeddingTokens, nil))

	return completion.Text, nil
}

// ProductReasoning explains why the user may like productId and appends the
// explanation to the session as a single assistant message.
func (p *Pipeline) ProductReasoning(ctx context.Context, sessionId, productId string) (*entity.Message, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.product_reasoning",
		trace.WithAttributes(
			attribute.String("session.id", sessionId),
			attribute.String("product.id", productId),
		))
	defer span.End()

	session, err := p.sessions.Snapshot(ctx, sessionId)
	if err != nil {
		return nil, p.abort(span, "product reasoning", sessionId, err)
	}

	product, err := p.catalog.FindOne(ctx, specification.ByProductID{ProductID: productId})
	if err != nil {
		return nil, p.abort(span, "product reasoning", sessionId, apperror.Upstream("find product", err))
	}
	if product == nil {
		return nil, p.abort(span, "product reasoning", sessionId, apperror.NotFound("product %s not found", productId))
	}

	userHistory := history.Select(session, p.cfg.MaxConversationTokens, entity.RoleUser)
	card := productCard(product)
	prompt := strings.NewReplacer(
		extract.UserPromptMarker, userHistory,
		extract.ProductMarker, card,
	).Replace(extract.ProductReasoningTemplate)

	alloc, err := p.allocator.Allocate("", "", prompt, budget.DefaultBuffer, p.cfg.MaxCompletionTokens)
	if err != nil {
		return nil, p.abort(span, "product reasoning", sessionId, err)
	}

	completion, err := p.llm.Complete(ctx, llm.Request{
		SessionId: sessionId,
		Prompt:    alloc.ConversationAndPrompt,
		Context:   alloc.Context,
	})
	if err != nil {
		return nil, p.abort(span, "product reasoning", sessionId, apperror.Upstream("reasoning completion", err))
	}

	text := strings.NewReplacer(
		extract.ProductMarker, card,
		extract.ChatCompletionMarker, completion.Text,
	).Replace(extract.WhyLikeProductTemplate)

	message := entity.NewMessage(sessionId, entity.RoleAssistant,
		completion.CompletionTokens, completion.PromptTokens, text)

	if err := p.sessions.AppendTurn(ctx, sessionId, message); err != nil {
		return nil, p.abort(span, "product reasoning", sessionId, err)
	}

	p.publish(ctx, events.NewChatTurnCompleted(sessionId, "product_reasoning",
		completion.PromptTokens, completion.CompletionTokens, nil))

	return &message, nil
}

func productCard(product *entity.Product) string {
	if product.ImageUrl == "" {
		return product.Card()
	}
	return fmt.Sprintf("![%s](%s)\n%s", product.ProductName, product.ImageUrl, product.Card())
}

// SummarizeSessionName asks the model for a short label for prompt and
// renames the session to it.
func (p *Pipeline) SummarizeSessionName(ctx context.Context, sessionId, prompt string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.summarize_name",
		trace.WithAttributes(attribute.String("session.id", sessionId)))
	defer span.End()

	if err := p.sessions.EnsureLoaded(ctx, sessionId); err != nil {
		return "", p.abort(span, "summarize", sessionId, err)
	}

	completion, err := p.llm.Complete(ctx, llm.Request{
		SessionId:     sessionId,
		Prompt:        prompt,
		SystemMessage: llm.SummarizeSystemPrompt,
	})
	if err != nil {
		return "", p.abort(span, "summarize", sessionId, apperror.Upstream("summarize completion", err))
	}

	name := truncateName(strings.TrimSpace(completion.Text))
	if err := p.sessions.Rename(ctx, sessionId, name); err != nil {
		return "", p.abort(span, "summarize", sessionId, err)
	}
	return name, nil
}

func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= MaxSessionNameLength {
		return name
	}
	return string([]rune(name)[:MaxSessionNameLength]) + "..."
}
