package services

import (
	"time"

	"bellavista/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const (
	SeedAdminEmail       = "admin@bellavista.com"
	SeedAdminPassword    = "admin123"
	SeedCustomerEmail    = "customer@example.com"
	SeedCustomerPassword = "customer123"
)

func seedAccounts(now time.Time, cost int) ([]domain.Account, error) {
	adminHash, err := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), cost)
	if err != nil {
		return nil, err
	}
	customerHash, err := bcrypt.GenerateFromPassword([]byte(SeedCustomerPassword), cost)
	if err != nil {
		return nil, err
	}
	return []domain.Account{
		{
			ID:           1,
			Name:         "Admin User",
			Email:        SeedAdminEmail,
			PasswordHash: string(adminHash),
			Role:         domain.RoleAdmin,
			Phone:        "(555) 123-4567",
			JoinDate:     now,
			Orders:       []string{},
			TotalSpent:   decimal.Zero,
		},
		{
			ID:           2,
			Name:         "John Customer",
			Email:        SeedCustomerEmail,
			PasswordHash: string(customerHash),
			Role:         domain.RoleCustomer,
			Phone:        "(555) 987-6543",
			JoinDate:     now,
			Orders:       []string{"ORD-001", "ORD-002"},
			TotalSpent:   price("64.76"),
		},
	}, nil
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

const (
	imgStarters = "https://images.pexels.com/photos/1279330/pexels-photo-1279330.jpeg"
	imgPasta    = "https://images.pexels.com/photos/1437267/pexels-photo-1437267.jpeg"
)

func seedMenuItems() []domain.MenuItem {
	return []domain.MenuItem{
		{ID: 1, Name: "Bruschetta Classica", Description: "Grilled bread with fresh tomatoes, basil, and garlic", Price: price("12.99"), Category: domain.CategoryAppetizers, Image: imgStarters, Tags: []string{"vegetarian", "popular"}},
		{ID: 2, Name: "Antipasto Platter", Description: "Selection of Italian meats, cheeses, and marinated vegetables", Price: price("18.99"), Category: domain.CategoryAppetizers, Image: imgStarters, Tags: []string{"popular"}},
		{ID: 3, Name: "Calamari Fritti", Description: "Crispy fried squid rings with marinara sauce", Price: price("14.99"), Category: domain.CategoryAppetizers, Image: imgStarters, Tags: []string{}},
		{ID: 4, Name: "Spaghetti Carbonara", Description: "Classic Roman pasta with eggs, pancetta, and parmesan", Price: price("22.99"), Category: domain.CategoryPasta, Image: imgPasta, Tags: []string{"popular"}},
		{ID: 5, Name: "Fettuccine Alfredo", Description: "Rich and creamy parmesan sauce with fresh fettuccine", Price: price("19.99"), Category: domain.CategoryPasta, Image: imgPasta, Tags: []string{"vegetarian"}},
		{ID: 6, Name: "Penne Arrabbiata", Description: "Spicy tomato sauce with garlic, chili, and herbs", Price: price("18.99"), Category: domain.CategoryPasta, Image: imgPasta, Tags: []string{"vegetarian", "spicy"}},
		{ID: 7, Name: "Lasagna Bolognese", Description: "Traditional layered pasta with meat sauce and three cheeses", Price: price("24.99"), Category: domain.CategoryPasta, Image: imgPasta, Tags: []string{"popular"}},
		{ID: 8, Name: "Margherita Pizza", Description: "San Marzano tomatoes, fresh mozzarella, and basil", Price: price("18.99"), Category: domain.CategoryPizza, Image: imgStarters, Tags: []string{"vegetarian", "popular"}},
		{ID: 9, Name: "Pepperoni Pizza", Description: "Classic pepperoni with mozzarella and tomato sauce", Price: price("21.99"), Category: domain.CategoryPizza, Image: imgStarters, Tags: []string{"popular"}},
		{ID: 10, Name: "Quattro Stagioni", Description: "Four seasons pizza with mushrooms, ham, artichokes, and olives", Price: price("26.99"), Category: domain.CategoryPizza, Image: imgStarters, Tags: []string{}},
		{ID: 11, Name: "Osso Buco", Description: "Braised veal shanks with risotto Milanese", Price: price("32.99"), Category: domain.CategoryMains, Image: imgStarters, Tags: []string{}},
		{ID: 12, Name: "Chicken Parmigiana", Description: "Breaded chicken breast with marinara and mozzarella", Price: price("26.99"), Category: domain.CategoryMains, Image: imgStarters, Tags: []string{"popular"}},
		{ID: 13, Name: "Branzino Mediterranean", Description: "Pan-seared sea bass with lemon, herbs, and vegetables", Price: price("28.99"), Category: domain.CategoryMains, Image: imgStarters, Tags: []string{}},
		{ID: 14, Name: "Tiramisu", Description: "Classic coffee-flavored dessert with mascarpone", Price: price("8.99"), Category: domain.CategoryDesserts, Image: imgStarters, Tags: []string{"popular"}},
		{ID: 15, Name: "Panna Cotta", Description: "Silky vanilla custard with seasonal berry compote", Price: price("7.99"), Category: domain.CategoryDesserts, Image: imgStarters, Tags: []string{"vegetarian"}},
	}
}

func seedOrders(now time.Time) []domain.Order {
	first := []domain.OrderLine{
		{ItemID: 4, Name: "Spaghetti Carbonara", Price: price("22.99"), Quantity: 1},
		{ItemID: 8, Name: "Margherita Pizza", Price: price("18.99"), Quantity: 1},
	}
	second := []domain.OrderLine{
		{ItemID: 14, Name: "Tiramisu", Price: price("8.99"), Quantity: 2},
	}
	t1, t2 := domain.ComputeTotals(first), domain.ComputeTotals(second)

	return []domain.Order{
		{
			ID:            domain.FormatOrderID(1),
			CustomerID:    2,
			CustomerName:  "John Customer",
			CustomerEmail: SeedCustomerEmail,
			Items:         first,
			Subtotal:      t1.Subtotal,
			Tax:           t1.Tax,
			Total:         t1.Total,
			Status:        domain.StatusPending,
			OrderDate:     now,
			Notes:         "Extra cheese on pizza",
		},
		{
			ID:            domain.FormatOrderID(2),
			CustomerID:    2,
			CustomerName:  "John Customer",
			CustomerEmail: SeedCustomerEmail,
			Items:         second,
			Subtotal:      t2.Subtotal,
			Tax:           t2.Tax,
			Total:         t2.Total,
			Status:        domain.StatusConfirmed,
			OrderDate:     now.Add(-24 * time.Hour),
		},
	}
}
