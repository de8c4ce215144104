package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Course string

const (
	CourseAppetizer Course = "appetizer"
	CourseMain      Course = "main"
	CourseDessert   Course = "dessert"
	CourseBeverage  Course = "beverage"
)

// Courses in the order a custom menu is served.
var Courses = []Course{CourseAppetizer, CourseMain, CourseDessert, CourseBeverage}

type BuilderOption struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type CustomMenuLine struct {
	Course Course          `json:"course"`
	Option BuilderOption   `json:"option"`
	Amount decimal.Decimal `json:"amount"`
}

type CustomMenu struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	CustomerID      int64            `json:"customerId,omitempty"`
	Lines           []CustomMenuLine `json:"lines"`
	ServingSize     int              `json:"servingSize"`
	SpecialRequests string           `json:"specialRequests"`
	Total           decimal.Decimal  `json:"total"`
	CreatedAt       time.Time        `json:"createdAt"`
}
