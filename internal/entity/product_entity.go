package entity

import (
	"fmt"
	"strings"
)

const (
	DefaultCollection      = "clothes"
	DefaultProductCategory = "Others"
)

type Product struct {
	ProductId            string  `json:"id"`
	Collection           string  `json:"-"`
	ProductName          string  `json:"title"`
	Gender               string  `json:"gender"`
	Price                float64 `json:"price"`
	Description          string  `json:"description"`
	DescriptionGenerated string  `json:"description_generated"`
	PrimaryColor         string  `json:"color"`
	ImageUrl             string  `json:"image_link"`
	ProductUrl           string  `json:"link"`
	Categories           string  `json:"categories,omitempty"`
	Category             string  `json:"category,omitempty"`
}

// VectorText is the text embedded for similarity search.
func (p Product) VectorText() string {
	return p.Gender + " " + p.PrimaryColor + " " + p.ProductName + " " + p.Description
}

// Card is the short human-readable line shown in replies.
func (p Product) Card() string {
	return fmt.Sprintf("%s  $%.2f  %s", p.ProductId, p.Price, p.ProductName)
}

// FormatProducts renders one card per line.
func FormatProducts(products []Product) string {
	var sb strings.Builder
	for _, p := range products {
		sb.WriteString(p.Card())
		sb.WriteString("\n")
	}
	return sb.String()
}
