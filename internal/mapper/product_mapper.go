package mapper

import (
	"product-chat-be/internal/entity"
	"product-chat-be/internal/model"
)

type ProductMapper struct{}

func NewProductMapper() *ProductMapper {
	return &ProductMapper{}
}

func (m *ProductMapper) ToEntity(p *model.Product) *entity.Product {
	if p == nil {
		return nil
	}
	e := &entity.Product{
		ProductId:            p.ProductId,
		Collection:           p.Collection,
		ProductName:          p.ProductName,
		Gender:               p.Gender,
		Price:                p.Price,
		Description:          p.Description,
		DescriptionGenerated: p.DescriptionGenerated,
		PrimaryColor:         p.PrimaryColor,
		ImageUrl:             p.ImageUrl,
		ProductUrl:           p.ProductUrl,
	}
	if p.Categories != nil {
		e.Categories = *p.Categories
	}
	return e
}

// ToModel leaves Embedding unset; vectors are written through UpdateEmbedding.
func (m *ProductMapper) ToModel(p *entity.Product) *model.Product {
	if p == nil {
		return nil
	}
	out := &model.Product{
		Collection:           p.Collection,
		ProductId:            p.ProductId,
		ProductName:          p.ProductName,
		Gender:               p.Gender,
		Price:                p.Price,
		Description:          p.Description,
		DescriptionGenerated: p.DescriptionGenerated,
		PrimaryColor:         p.PrimaryColor,
		ImageUrl:             p.ImageUrl,
		ProductUrl:           p.ProductUrl,
	}
	if p.Categories != "" {
		categories := p.Categories
		out.Categories = &categories
	}
	return out
}

func (m *ProductMapper) ToEntities(models []*model.Product) []entity.Product {
	out := make([]entity.Product, 0, len(models))
	for _, p := range models {
		out = append(out, *m.ToEntity(p))
	}
	return out
}
