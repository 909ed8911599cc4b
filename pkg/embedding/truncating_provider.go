package embedding

import (
	"context"

	"product-chat-be/pkg/tokenizer"
)

// TruncatingProvider keeps only the leading maxTokens tokens of the input so
// requests stay within the embedding model's input limit.
type TruncatingProvider struct {
	next      EmbeddingProvider
	tok       tokenizer.Tokenizer
	maxTokens int
}

func NewTruncatingProvider(next EmbeddingProvider, tok tokenizer.Tokenizer, maxTokens int) *TruncatingProvider {
	return &TruncatingProvider{next: next, tok: tok, maxTokens: maxTokens}
}

func (p *TruncatingProvider) Generate(ctx context.Context, sessionId string, text string) (*EmbeddingResponse, error) {
	if p.maxTokens > 0 {
		if tokens := p.tok.Encode(text); len(tokens) > p.maxTokens {
			text = p.tok.Decode(tokens[:p.maxTokens])
		}
	}
	return p.next.Generate(ctx, sessionId, text)
}
