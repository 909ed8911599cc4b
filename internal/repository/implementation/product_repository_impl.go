package implementation

import (
	"context"
	"errors"

	"product-chat-be/internal/entity"
	"product-chat-be/internal/mapper"
	"product-chat-be/internal/model"
	"product-chat-be/internal/repository/contract"
	"product-chat-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProductMapper
}

func NewProductRepository(db *gorm.DB) contract.ProductRepository {
	return &ProductRepositoryImpl{
		db:     db,
		mapper: mapper.NewProductMapper(),
	}
}

func (r *ProductRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// UpsertBulk replaces product attributes on conflict and clears the stored
// embedding so the product is vectorized again.
func (r *ProductRepositoryImpl) UpsertBulk(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	models := make([]*model.Product, len(products))
	for i := range products {
		models[i] = r.mapper.ToModel(&products[i])
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "collection"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_name", "gender", "price", "description", "description_generated",
			"primary_color", "image_url", "product_url", "categories", "embedding", "updated_at",
		}),
	}).Create(models).Error
}

func (r *ProductRepositoryImpl) UpdateEmbedding(ctx context.Context, collection, productId string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("collection = ? AND product_id = ?", collection, productId).
		Update("embedding", &vec).Error
}

func (r *ProductRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error) {
	var m model.Product
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProductRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Product, error) {
	var models []*model.Product
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProductRepositoryImpl) SearchSimilar(ctx context.Context, collection string, embedding []float32, limit int) ([]entity.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	var models []*model.Product

	// pgvector cosine distance: smaller is closer
	err := r.db.WithContext(ctx).
		Where("collection = ?", collection).
		Where("embedding IS NOT NULL").
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
