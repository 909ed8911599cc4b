package specification

import "gorm.io/gorm"

type ByCollection struct {
	Collection string
}

func (s ByCollection) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("collection = ?", s.Collection)
}

type ByProductID struct {
	ProductID string
}

func (s ByProductID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("product_id = ?", s.ProductID)
}

type ByProductIDs struct {
	ProductIDs []string
}

func (s ByProductIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("product_id IN ?", s.ProductIDs)
}

// NotVectorized matches products still waiting for an embedding.
type NotVectorized struct{}

func (s NotVectorized) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding IS NULL")
}
