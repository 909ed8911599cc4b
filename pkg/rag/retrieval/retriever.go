package retrieval

import (
	"context"

	"product-chat-be/internal/entity"
	"product-chat-be/pkg/apperror"
	"product-chat-be/pkg/embedding"
)

// ProductSearcher runs the similarity search over a product collection.
type ProductSearcher interface {
	SearchSimilar(ctx context.Context, collection string, embedding []float32, limit int) ([]entity.Product, error)
}

// Retriever embeds the shopping intent and finds matching products.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	searcher          ProductSearcher
	topK              int
}

func NewRetriever(embeddingProvider embedding.EmbeddingProvider, searcher ProductSearcher, topK int) *Retriever {
	if topK <= 0 {
		topK = 10
	}
	return &Retriever{
		embeddingProvider: embeddingProvider,
		searcher:          searcher,
		topK:              topK,
	}
}

// Result carries the products and the embedding tokens spent finding them.
type Result struct {
	Products        []entity.Product
	EmbeddingTokens int
}

// Search embeds query and returns the nearest products of collection in
// relevance order.
func (r *Retriever) Search(ctx context.Context, sessionId, collection, query string) (*Result, error) {
	if collection == "" {
		collection = entity.DefaultCollection
	}

	emb, err := r.embeddingProvider.Generate(ctx, sessionId, query)
	if err != nil {
		return nil, apperror.Upstream("embed product query", err)
	}

	hits, err := r.searcher.SearchSimilar(ctx, collection, emb.Values, r.topK)
	if err != nil {
		return nil, apperror.Upstream("vector search", err)
	}

	return &Result{Products: hits, EmbeddingTokens: emb.Tokens}, nil
}

// Retrieve embeds history, prompt and intent together, searches the collection
// and narrows the hits by attrs. If the filters reject every hit the
// unfiltered hits are returned, so a non-empty search never yields an empty
// result.
func (r *Retriever) Retrieve(ctx context.Context, sessionId, collection, history, prompt, intentText string, attrs *entity.CustomerAttributes) (*Result, error) {
	res, err := r.Search(ctx, sessionId, collection, history+"\n"+prompt+"\n"+intentText)
	if err != nil {
		return nil, err
	}
	res.Products = Filter(res.Products, attrs)
	return res, nil
}

// Filter keeps products matching gender, then min price, then max price. A
// bound is ignored when absent, zero, or equal to the opposite bound; gender
// is ignored only when absent, so Undefined matches Undefined products only.
func Filter(products []entity.Product, attrs *entity.CustomerAttributes) []entity.Product {
	if attrs == nil {
		return products
	}

	filtered := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if matchesGender(p, attrs) && aboveMin(p, attrs) && belowMax(p, attrs) {
			filtered = append(filtered, p)
		}
	}

	if len(filtered) == 0 {
		return products
	}
	return filtered
}

func matchesGender(p entity.Product, attrs *entity.CustomerAttributes) bool {
	if attrs.Gender == nil {
		return true
	}
	return p.Gender == *attrs.Gender
}

func aboveMin(p entity.Product, attrs *entity.CustomerAttributes) bool {
	if !boundActive(attrs.MinPrice, attrs.MaxPrice) {
		return true
	}
	return p.Price >= *attrs.MinPrice
}

func belowMax(p entity.Product, attrs *entity.CustomerAttributes) bool {
	if !boundActive(attrs.MaxPrice, attrs.MinPrice) {
		return true
	}
	return p.Price <= *attrs.MaxPrice
}

func boundActive(bound, opposite *float64) bool {
	if bound == nil || *bound == 0 {
		return false
	}
	if opposite != nil && *opposite == *bound {
		return false
	}
	return true
}
