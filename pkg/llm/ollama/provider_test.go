package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"product-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:           "llama3",
			Message:         ollamaMessage{Role: "assistant", Content: `{"gender":"Mens"}`},
			Done:            true,
			PromptEvalCount: 42,
			EvalCount:       7,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	res, err := p.Complete(context.Background(), llm.Request{SessionId: "s1", Prompt: "I am a man"}, llm.WithMaxTokens(50))
	require.NoError(t, err)

	assert.Equal(t, `{"gender":"Mens"}`, res.Text)
	assert.Equal(t, 42, res.PromptTokens)
	assert.Equal(t, 7, res.CompletionTokens)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "I am a man", got.Messages[1].Content)
	assert.Equal(t, 50, got.Options.NumPredict)
	assert.False(t, got.Stream)
}

func TestCompleteNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "missing")
	_, err := p.Complete(context.Background(), llm.Request{Prompt: "hi"})
	assert.ErrorContains(t, err, "status 404")
}
