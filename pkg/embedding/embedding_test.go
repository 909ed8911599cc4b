package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"product-chat-be/internal/pkg/logger"
	"product-chat-be/pkg/tokenizer"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Generate(ctx context.Context, sessionId string, text string) (*EmbeddingResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &EmbeddingResponse{Values: []float32{1, 0}, Tokens: len(text)}, nil
}

type mapCache struct {
	mu     sync.Mutex
	data   map[string][]float32
	getErr error
	setErr error
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]float32{}} }

func (c *mapCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, values []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = values
	return nil
}

func TestCachedProvider(t *testing.T) {
	next := &countingProvider{}
	p := NewCachedProvider(next, newMapCache(), "nomic-embed-text", logger.NewNopLogger())
	ctx := context.Background()

	first, err := p.Generate(ctx, "s1", "red dress")
	require.NoError(t, err)
	assert.Equal(t, 9, first.Tokens)

	second, err := p.Generate(ctx, "s2", "red dress")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Tokens)
	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, 1, next.calls)

	_, err = p.Generate(ctx, "s1", "blue jeans")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedProviderFallsThroughOnCacheError(t *testing.T) {
	tests := []struct {
		name        string
		getErr      error
		setErr      error
		wantMessage string
	}{
		{name: "read failure", getErr: errors.New("redis down"), wantMessage: "failed to read cached embedding"},
		{name: "write failure", setErr: errors.New("redis down"), wantMessage: "failed to cache embedding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newMapCache()
			cache.getErr = tt.getErr
			cache.setErr = tt.setErr
			core, logs := observer.New(zapcore.DebugLevel)
			next := &countingProvider{}
			p := NewCachedProvider(next, cache, "m", logger.NewFromZap(zap.New(core)))

			res, err := p.Generate(context.Background(), "s1", "shoes")
			require.NoError(t, err)
			assert.Equal(t, 5, res.Tokens)
			assert.Equal(t, 1, next.calls)

			warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
			require.Len(t, warnings, 1)
			assert.Equal(t, tt.wantMessage, warnings[0].Message)
			assert.Equal(t, "EMBEDDING_CACHE", warnings[0].ContextMap()["module"])
		})
	}
}

func TestCachedProviderPropagatesProviderError(t *testing.T) {
	p := NewCachedProvider(&countingProvider{err: errors.New("quota")}, newMapCache(), "m", logger.NewNopLogger())

	_, err := p.Generate(context.Background(), "s1", "shoes")
	assert.EqualError(t, err, "quota")
}

func TestOllamaProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "warm jacket", req.Input)
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embeddings:      [][]float64{{3, 4}},
			PromptEvalCount: 3,
		})
	}))
	defer srv.Close()

	res, err := NewOllamaProvider(srv.URL, "nomic-embed-text").Generate(context.Background(), "s1", "warm jacket")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Tokens)
	assert.InDelta(t, 0.6, res.Values[0], 1e-6)
	assert.InDelta(t, 0.8, res.Values[1], 1e-6)
}

func TestOpenAIProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-3-small",
			"data": [{"object": "embedding", "index": 0, "embedding": [0, 2]}],
			"usage": {"prompt_tokens": 6, "total_tokens": 6}
		}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("text-embedding-3-small", 0, option.WithBaseURL(srv.URL), option.WithAPIKey("k"), option.WithMaxRetries(0))
	res, err := p.Generate(context.Background(), "s1", "linen shirt")
	require.NoError(t, err)

	assert.Equal(t, 6, res.Tokens)
	assert.Equal(t, []float32{0, 1}, res.Values)
}

func TestNormalizeVector(t *testing.T) {
	v := normalizeVector([]float32{1, 1, 1, 1})
	var mag float64
	for _, x := range v {
		mag += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(mag), 1e-6)

	assert.Equal(t, []float32{0, 0}, normalizeVector([]float32{0, 0}))
}

type recordingProvider struct {
	texts []string
}

func (p *recordingProvider) Generate(ctx context.Context, sessionId string, text string) (*EmbeddingResponse, error) {
	p.texts = append(p.texts, text)
	return &EmbeddingResponse{Values: []float32{1}}, nil
}

func TestTruncatingProvider(t *testing.T) {
	tests := []struct {
		name      string
		maxTokens int
		text      string
		want      string
	}{
		{name: "under limit", maxTokens: 5, text: "red silk dress", want: "red silk dress"},
		{name: "over limit keeps head", maxTokens: 2, text: "red silk dress", want: "red silk"},
		{name: "disabled", maxTokens: 0, text: "red silk dress", want: "red silk dress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &recordingProvider{}
			p := NewTruncatingProvider(next, tokenizer.NewWordTokenizer(), tt.maxTokens)

			_, err := p.Generate(context.Background(), "s1", tt.text)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, next.texts)
		})
	}
}
