package executor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"product-chat-be/internal/entity"
	"product-chat-be/internal/pkg/logger"
	"product-chat-be/internal/repository/memory"
	"product-chat-be/internal/repository/specification"
	"product-chat-be/internal/repository/store"
	"product-chat-be/pkg/apperror"
	"product-chat-be/pkg/embedding"
	"product-chat-be/pkg/events"
	"product-chat-be/pkg/llm"
	"product-chat-be/pkg/rag/extract"
	"product-chat-be/pkg/rag/retrieval"
	"product-chat-be/pkg/tokenizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	intentReply    = "You are going on a date and need an elegant dress"
	attributesJSON = `{"gender":"Womens","minPrice":400,"maxPrice":0}`
	questionsJSON  = `["Black dress", "High heels", "Elegant jewelry", "Red lipstick", "Stylish handbag"]`
	categoriesJSON = `{"womens~dresses":"Women's Clothing"}`
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(ctx context.Context, sessionId string, text string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{Values: []float32{1, 0}, Tokens: 7}, nil
}

type fakeCatalog struct {
	products []entity.Product
}

func (f *fakeCatalog) SearchSimilar(ctx context.Context, collection string, embedding []float32, limit int) ([]entity.Product, error) {
	return f.products, nil
}

func (f *fakeCatalog) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error) {
	for _, spec := range specs {
		byID, ok := spec.(specification.ByProductID)
		if !ok {
			continue
		}
		for _, p := range f.products {
			if p.ProductId == byID.ProductID {
				found := p
				return &found, nil
			}
		}
	}
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// replies answers each kind of prompt with fixed text and fixed usage.
func replies(overrides map[string]string) func(req llm.Request) (*llm.Completion, error) {
	pick := func(kind, def string) string {
		if v, ok := overrides[kind]; ok {
			return v
		}
		return def
	}
	return func(req llm.Request) (*llm.Completion, error) {
		switch {
		case req.SystemMessage == extract.CategorySystemMessage:
			return &llm.Completion{Text: pick("categories", categoriesJSON), PromptTokens: 40, CompletionTokens: 4}, nil
		case req.SystemMessage == llm.SummarizeSystemPrompt:
			return &llm.Completion{Text: pick("summary", "Date night"), PromptTokens: 5, CompletionTokens: 2}, nil
		case strings.Contains(req.Prompt, "Return JSON object based on the user story"):
			return &llm.Completion{Text: pick("attributes", attributesJSON), PromptTokens: 20, CompletionTokens: 2}, nil
		case strings.Contains(req.Prompt, "Think of 5 additional apparel pieces"):
			return &llm.Completion{Text: pick("questions", questionsJSON), PromptTokens: 30, CompletionTokens: 3}, nil
		case strings.Contains(req.Prompt, "Tell me who I might be"):
			return &llm.Completion{Text: pick("intent", intentReply), PromptTokens: 10, CompletionTokens: 1}, nil
		case strings.Contains(req.Prompt, "why you think I may like the product"):
			return &llm.Completion{Text: pick("reasoning", "It suits a formal evening."), PromptTokens: 50, CompletionTokens: 9}, nil
		default:
			return &llm.Completion{Text: pick("rag", "Try the red evening dress."), PromptTokens: 60, CompletionTokens: 12}, nil
		}
	}
}

type fixture struct {
	pipeline  *Pipeline
	sessions  *memory.SessionCache
	store     *store.MemoryStore
	llm       *llm.MockProvider
	embedder  *fakeEmbedder
	publisher *recordingPublisher
	tok       tokenizer.Tokenizer
	sessionId string
}

func newFixture(t *testing.T, overrides map[string]string) *fixture {
	t.Helper()

	st := store.NewMemoryStore()
	sessions := memory.NewSessionCache(st, 0)
	session, err := sessions.Create(context.Background())
	require.NoError(t, err)

	catalog := &fakeCatalog{products: []entity.Product{
		{ProductId: "p1", ProductName: "Evening dress", Gender: "Womens", Price: 450, Categories: "womens~dresses", ImageUrl: "https://img/p1.jpg"},
		{ProductId: "p2", ProductName: "Oxford shirt", Gender: "Mens", Price: 300, Categories: "mens~shirts"},
	}}
	embedder := &fakeEmbedder{}
	provider := llm.NewMockProvider(replies(overrides))
	tok := tokenizer.NewWordTokenizer()
	publisher := &recordingPublisher{}

	p := NewPipeline(sessions, provider, retrieval.NewRetriever(embedder, catalog, 10), catalog, tok,
		logger.NewNopLogger(), Config{MaxConversationTokens: 100, MaxCompletionTokens: 4000}).
		WithPublisher(publisher)

	return &fixture{
		pipeline:  p,
		sessions:  sessions,
		store:     st,
		llm:       provider,
		embedder:  embedder,
		publisher: publisher,
		tok:       tok,
		sessionId: session.Id,
	}
}

func productIDs(products []entity.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ProductId
	}
	return ids
}

func TestProductSearch(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	prompt := "I am looking for something special for my date night, budget $400"

	msgs, err := f.pipeline.ProductSearch(ctx, f.sessionId, prompt, "", extract.Templates{})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	user, assistant := msgs[0], msgs[1]
	assert.Equal(t, entity.RoleUser, user.Sender)
	assert.Equal(t, prompt, user.Text)
	assert.Equal(t, tokenizer.Count(f.tok, prompt), user.Tokens)
	assert.Zero(t, user.PromptTokens)

	assert.Equal(t, entity.RoleAssistant, assistant.Sender)
	assert.Equal(t, intentReply, assistant.Text)
	assert.Equal(t, 10+20+30+40, assistant.PromptTokens)
	assert.Equal(t, 1+2+3+4+7, assistant.Tokens)
	assert.Equal(t, []string{"p1"}, productIDs(assistant.Products))
	assert.Equal(t, "Women's Clothing", assistant.Products[0].Category)
	require.NotNil(t, assistant.CustomerAttributes)
	assert.Equal(t, "Womens", *assistant.CustomerAttributes.Gender)
	assert.Len(t, assistant.ExtraQuestions, 5)
	assert.True(t, user.TimeStamp.Before(assistant.TimeStamp))

	session, err := f.sessions.Snapshot(ctx, f.sessionId)
	require.NoError(t, err)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, user.Id, session.Messages[0].Id)
	assert.Equal(t, assistant.Id, session.Messages[1].Id)
	assert.Equal(t, user.Tokens+assistant.Tokens+assistant.PromptTokens, session.TokensUsed)

	persisted, err := f.store.GetMessages(ctx, f.sessionId)
	require.NoError(t, err)
	assert.Len(t, persisted, 2)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.TypeChatTurnCompleted, f.publisher.events[0].EventType())
	assert.Equal(t, []string{}, f.publisher.events[0].Payload()["fallbacks"])
}

func TestProductSearchStageFallbackDoesNotAbort(t *testing.T) {
	f := newFixture(t, map[string]string{
		"attributes": "I cannot answer that",
		"questions":  "",
	})

	msgs, err := f.pipeline.ProductSearch(context.Background(), f.sessionId, "date night", "clothes", extract.Templates{})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assistant := msgs[1]
	assert.Nil(t, assistant.CustomerAttributes)
	assert.Nil(t, assistant.ExtraQuestions)
	// Without attributes nothing is filtered.
	assert.Equal(t, []string{"p1", "p2"}, productIDs(assistant.Products))
	assert.Equal(t, entity.DefaultProductCategory, assistant.Products[1].Category)
	// Tokens of failed stages are still counted.
	assert.Equal(t, 10+20+30+40, assistant.PromptTokens)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, []string{extract.AttributesStage.Name, extract.ExtraQuestionsStage.Name},
		f.publisher.events[0].Payload()["fallbacks"])
}

func TestProductSearchCustomTemplate(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.pipeline.ProductSearch(context.Background(), f.sessionId, "hiking trip", "",
		extract.Templates{Intent: "Tell me who I might be. Story: [USER_PROMPT]"})
	require.NoError(t, err)

	var found bool
	for _, call := range f.llm.Calls() {
		if strings.Contains(call.Prompt, "Story: \nhiking trip") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestProductSearchUsesUserHistory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.pipeline.ProductSearch(ctx, f.sessionId, "first story", "", extract.Templates{})
	require.NoError(t, err)
	_, err = f.pipeline.ProductSearch(ctx, f.sessionId, "second story", "", extract.Templates{})
	require.NoError(t, err)

	var found bool
	for _, call := range f.llm.Calls() {
		if strings.Contains(call.Prompt, "first story\nsecond story") {
			found = true
		}
		// Assistant text never leaks into the user-only history.
		assert.NotContains(t, call.Prompt, intentReply+"\nsecond story")
	}
	assert.True(t, found)
}

func TestProductSearchAborts(t *testing.T) {
	t.Run("unknown session", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.pipeline.ProductSearch(context.Background(), "missing", "date night", "", extract.Templates{})
		assert.True(t, apperror.IsNotFound(err))
		assert.Empty(t, f.llm.Calls())
	})

	t.Run("retrieval failure", func(t *testing.T) {
		f := newFixture(t, nil)
		f.embedder.err = errors.New("embedding quota exceeded")

		_, err := f.pipeline.ProductSearch(context.Background(), f.sessionId, "date night", "", extract.Templates{})
		assert.True(t, apperror.IsUpstream(err))

		msgs, err := f.sessions.Messages(context.Background(), f.sessionId)
		require.NoError(t, err)
		assert.Empty(t, msgs)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("store failure leaves the session unchanged", func(t *testing.T) {
		f := newFixture(t, nil)
		f.store.FailWith(errors.New("connection reset"))

		_, err := f.pipeline.ProductSearch(context.Background(), f.sessionId, "date night", "", extract.Templates{})
		require.Error(t, err)

		f.store.FailWith(nil)
		msgs, err := f.sessions.Messages(context.Background(), f.sessionId)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestCompleteRAG(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	answer, err := f.pipeline.CompleteRAG(ctx, f.sessionId, "what should I wear tonight", "")
	require.NoError(t, err)
	assert.Equal(t, "Try the red evening dress.", answer)

	calls := f.llm.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Context, `"id":"p1"`)
	assert.True(t, strings.HasSuffix(calls[0].Prompt, "\nwhat should I wear tonight"))

	msgs, err := f.sessions.Messages(ctx, f.sessionId)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, entity.RoleUser, msgs[0].Sender)
	assert.Equal(t, 7, msgs[0].Tokens)
	assert.Equal(t, entity.RoleAssistant, msgs[1].Sender)
	assert.Equal(t, 12, msgs[1].Tokens)
	assert.Equal(t, 60, msgs[1].PromptTokens)
}

func TestCompleteRAGIncludesConversation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.pipeline.CompleteRAG(ctx, f.sessionId, "first question", "")
	require.NoError(t, err)
	_, err = f.pipeline.CompleteRAG(ctx, f.sessionId, "second question", "")
	require.NoError(t, err)

	calls := f.llm.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "first question\nTry the red evening dress.\nsecond question", calls[1].Prompt)
}

func TestCompleteRAGFailures(t *testing.T) {
	t.Run("completion error", func(t *testing.T) {
		f := newFixture(t, nil)
		f.pipeline.llm = llm.NewMockProvider(func(req llm.Request) (*llm.Completion, error) {
			return nil, errors.New("503 from model")
		})

		_, err := f.pipeline.CompleteRAG(context.Background(), f.sessionId, "hello", "")
		assert.True(t, apperror.IsUpstream(err))

		msgs, err := f.sessions.Messages(context.Background(), f.sessionId)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.pipeline.CompleteRAG(context.Background(), "missing", "hello", "")
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestProductReasoning(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.pipeline.ProductSearch(ctx, f.sessionId, "date night", "", extract.Templates{})
	require.NoError(t, err)

	msg, err := f.pipeline.ProductReasoning(ctx, f.sessionId, "p1")
	require.NoError(t, err)

	assert.Equal(t, entity.RoleAssistant, msg.Sender)
	assert.Contains(t, msg.Text, "Why you may like it?")
	assert.Contains(t, msg.Text, "It suits a formal evening.")
	assert.Contains(t, msg.Text, "![Evening dress](https://img/p1.jpg)")
	assert.NotContains(t, msg.Text, extract.ChatCompletionMarker)
	assert.Equal(t, 9, msg.Tokens)
	assert.Equal(t, 50, msg.PromptTokens)

	msgs, err := f.sessions.Messages(ctx, f.sessionId)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, msg.Id, msgs[2].Id)
	assert.Equal(t, msg.Text, msgs[2].Text)
}

func TestProductReasoningUnknownProduct(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.pipeline.ProductReasoning(context.Background(), f.sessionId, "nope")
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, f.llm.Calls())
}

func TestSummarizeSessionName(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		want    string
	}{
		{name: "short", summary: "Date night", want: "Date night"},
		{name: "trimmed", summary: "  Hiking gear  ", want: "Hiking gear"},
		{
			name:    "long",
			summary: "Elegant evening outfits for a special date",
			want:    "Elegant evening outfits for a ...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, map[string]string{"summary": tt.summary})
			ctx := context.Background()

			name, err := f.pipeline.SummarizeSessionName(ctx, f.sessionId, "I need something for my date")
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)

			session, err := f.sessions.Snapshot(ctx, f.sessionId)
			require.NoError(t, err)
			assert.Equal(t, tt.want, session.Name)
		})
	}
}

func TestTurnReport(t *testing.T) {
	r := &TurnReport{SessionId: "s1", EmbeddingTokens: 5}
	record(r, "A", extract.Result[string]{Status: extract.StatusOK, PromptTokens: 3, CompletionTokens: 1})
	record(r, "B", extract.Result[int]{Status: extract.StatusFallback, PromptTokens: 4, CompletionTokens: 2})

	assert.Equal(t, 7, r.PromptTokens())
	assert.Equal(t, 8, r.CompletionTokens())
	assert.Equal(t, []string{"B"}, r.Fallbacks())
	assert.Equal(t, map[string]string{"A": "OK", "B": "FALLBACK"}, r.Details()["stages"])
}
