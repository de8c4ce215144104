package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryAppetizers Category = "appetizers"
	CategoryPasta      Category = "pasta"
	CategoryPizza      Category = "pizza"
	CategoryMains      Category = "mains"
	CategoryDesserts   Category = "desserts"
)

// CategoryAll disables category filtering in menu listings.
const CategoryAll Category = "all"

// Categories in menu display order.
var Categories = []Category{
	CategoryAppetizers,
	CategoryPasta,
	CategoryPizza,
	CategoryMains,
	CategoryDesserts,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const DefaultMenuImage = "https://images.pexels.com/photos/1279330/pexels-photo-1279330.jpeg"

type MenuItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Tags        []string        `json:"tags"`
	Image       string          `json:"image"`
}

func (m MenuItem) Clone() MenuItem {
	m.Tags = slices.Clone(m.Tags)
	return m
}

type CartLine struct {
	ItemID   int64           `json:"itemId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

func (l CartLine) OrderLine() OrderLine {
	return OrderLine{ItemID: l.ItemID, Name: l.Name, Price: l.Price, Quantity: l.Quantity}
}
