package contract

import (
	"context"

	"product-chat-be/internal/entity"
	"product-chat-be/internal/repository/specification"
)

type ProductRepository interface {
	UpsertBulk(ctx context.Context, products []entity.Product) error
	UpdateEmbedding(ctx context.Context, collection, productId string, embedding []float32) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Product, error)
	// SearchSimilar returns up to limit products of the collection ordered by
	// cosine distance to embedding, nearest first.
	SearchSimilar(ctx context.Context, collection string, embedding []float32, limit int) ([]entity.Product, error)
}
