package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

type Product struct {
	Collection           string           `gorm:"type:text;primaryKey"`
	ProductId            string           `gorm:"type:text;primaryKey"`
	ProductName          string           `gorm:"type:text"`
	Gender               string           `gorm:"type:text;index"`
	Price                float64          `gorm:"not null;default:0"`
	Description          string           `gorm:"type:text"`
	DescriptionGenerated string           `gorm:"type:text"`
	PrimaryColor         string           `gorm:"type:text"`
	ImageUrl             string           `gorm:"type:text"`
	ProductUrl           string           `gorm:"type:text"`
	Categories           *string          `gorm:"type:text"`
	Embedding            *pgvector.Vector `gorm:"type:vector(768)"` // nil until vectorized
	CreatedAt            time.Time        `gorm:"autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
