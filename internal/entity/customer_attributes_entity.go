package entity

import (
	"fmt"
	"strings"
)

const GenderUndefined = "Undefined"

var validGenders = map[string]bool{
	"Mens":          true,
	"Womens":        true,
	"Boys":          true,
	"Girls":         true,
	"Unisex":        true,
	GenderUndefined: true,
}

type CustomerAttributes struct {
	Gender   *string  `json:"gender,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
}

// Sanitize coerces model output into the allowed value space: unknown
// genders become Undefined and negative prices become absent. A blank gender
// is left as is.
func (c *CustomerAttributes) Sanitize() {
	if c.Gender != nil && strings.TrimSpace(*c.Gender) != "" && !validGenders[*c.Gender] {
		undefined := GenderUndefined
		c.Gender = &undefined
	}
	if c.MinPrice != nil && *c.MinPrice < 0 {
		c.MinPrice = nil
	}
	if c.MaxPrice != nil && *c.MaxPrice < 0 {
		c.MaxPrice = nil
	}
}

func (c CustomerAttributes) String() string {
	gender := ""
	if c.Gender != nil {
		gender = *c.Gender
	}
	return fmt.Sprintf("Gender: %s MinPrice: %s MaxPrice: %s", gender, formatPrice(c.MinPrice), formatPrice(c.MaxPrice))
}

func formatPrice(p *float64) string {
	if p == nil {
		return "--"
	}
	return fmt.Sprintf("$%.2f", *p)
}
