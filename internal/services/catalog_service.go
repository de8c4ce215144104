package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bellavista/internal/domain"
	"bellavista/internal/repository"

	"github.com/shopspring/decimal"
)

var ErrMenuItemNotFound = fmt.Errorf("menu item: %w", domain.ErrNotFound)

type MenuFilter struct {
	Category string
	Search   string
}

type MenuItemInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    domain.Category `json:"category" validate:"required,oneof=appetizers pasta pizza mains desserts"`
	Tags        []string        `json:"tags"`
	Image       string          `json:"image" validate:"omitempty,url"`
}

type MenuItemPatch struct {
	Name        *string          `json:"name" validate:"omitnil,min=1"`
	Description *string          `json:"description" validate:"omitnil,min=1"`
	Price       *decimal.Decimal `json:"price"`
	Category    *domain.Category `json:"category" validate:"omitnil,oneof=appetizers pasta pizza mains desserts"`
	Tags        []string         `json:"tags"`
	Image       *string          `json:"image"`
}

type CategoryGroup struct {
	Category domain.Category   `json:"category"`
	Items    []domain.MenuItem `json:"items"`
}

// CatalogService manages the menu items.
type CatalogService struct {
	items *repository.Collection[domain.MenuItem]
	now   func() time.Time
}

func NewCatalogService(store repository.Store) *CatalogService {
	return &CatalogService{
		items: repository.NewCollection[domain.MenuItem](store, repository.KeyMenuItems),
		now:   time.Now,
	}
}

func (s *CatalogService) Load(ctx context.Context) error {
	return s.items.Load(ctx, seedMenuItems)
}

// List filters by category and a case-insensitive search over name and
// description. Insertion order is preserved.
func (s *CatalogService) List(ctx context.Context, f MenuFilter) []domain.MenuItem {
	category := strings.TrimSpace(f.Category)
	if domain.Category(category) == domain.CategoryAll {
		category = ""
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	items := s.items.Snapshot()
	out := make([]domain.MenuItem, 0, len(items))
	for _, it := range items {
		if category != "" && string(it.Category) != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(it.Name), search) &&
			!strings.Contains(strings.ToLower(it.Description), search) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Grouped returns the menu split by category in display order.
func (s *CatalogService) Grouped(ctx context.Context) []CategoryGroup {
	items := s.items.Snapshot()
	groups := make([]CategoryGroup, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		g := CategoryGroup{Category: c, Items: []domain.MenuItem{}}
		for _, it := range items {
			if it.Category == c {
				g.Items = append(g.Items, it)
			}
		}
		groups = append(groups, g)
	}
	return groups
}

func (s *CatalogService) Count() int {
	return len(s.items.Snapshot())
}

func (s *CatalogService) Get(ctx context.Context, id int64) (domain.MenuItem, error) {
	if it, ok := s.Lookup(ctx, id); ok {
		return it, nil
	}
	return domain.MenuItem{}, ErrMenuItemNotFound
}

// Lookup satisfies ItemLookup for carts.
func (s *CatalogService) Lookup(_ context.Context, id int64) (domain.MenuItem, bool) {
	for _, it := range s.items.Snapshot() {
		if it.ID == id {
			return it, true
		}
	}
	return domain.MenuItem{}, false
}

func (s *CatalogService) Create(ctx context.Context, in MenuItemInput) (domain.MenuItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)

	verr := validateInput(in)
	if in.Price.IsNegative() {
		verr.Add("price", "must not be negative")
	}
	if err := verr.OrNil(); err != nil {
		return domain.MenuItem{}, err
	}

	item := domain.MenuItem{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Category:    in.Category,
		Tags:        normalizeTags(in.Tags),
		Image:       in.Image,
	}
	if item.Image == "" {
		item.Image = domain.DefaultMenuImage
	}

	err := s.items.Mutate(ctx, func(items []domain.MenuItem) ([]domain.MenuItem, error) {
		ids := make([]int64, len(items))
		for i, it := range items {
			ids[i] = it.ID
		}
		item.ID = nextTimeID(s.now(), ids)
		return append(items, item), nil
	})
	if err != nil {
		return domain.MenuItem{}, err
	}

	slog.Info("menu item created", "itemId", item.ID, "category", item.Category)
	return item, nil
}

func (s *CatalogService) Update(ctx context.Context, id int64, patch MenuItemPatch) (domain.MenuItem, error) {
	verr := validateInput(patch)
	if patch.Price != nil && patch.Price.IsNegative() {
		verr.Add("price", "must not be negative")
	}
	if patch.Image != nil && validate.Var(strings.TrimSpace(*patch.Image), "omitempty,url") != nil {
		verr.Add("image", "must be a valid URL")
	}
	if err := verr.OrNil(); err != nil {
		return domain.MenuItem{}, err
	}

	var updated domain.MenuItem
	err := s.items.Mutate(ctx, func(items []domain.MenuItem) ([]domain.MenuItem, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			it := &items[i]
			if patch.Name != nil {
				it.Name = strings.TrimSpace(*patch.Name)
			}
			if patch.Description != nil {
				it.Description = strings.TrimSpace(*patch.Description)
			}
			if patch.Price != nil {
				it.Price = patch.Price.Round(2)
			}
			if patch.Category != nil {
				it.Category = *patch.Category
			}
			if patch.Tags != nil {
				it.Tags = normalizeTags(patch.Tags)
			}
			if patch.Image != nil {
				it.Image = strings.TrimSpace(*patch.Image)
				if it.Image == "" {
					it.Image = domain.DefaultMenuImage
				}
			}
			updated = *it
			return items, nil
		}
		return nil, ErrMenuItemNotFound
	})
	if err != nil {
		return domain.MenuItem{}, err
	}

	slog.Info("menu item updated", "itemId", id)
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	err := s.items.Mutate(ctx, func(items []domain.MenuItem) ([]domain.MenuItem, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, ErrMenuItemNotFound
	})
	if err != nil {
		return err
	}
	slog.Info("menu item deleted", "itemId", id)
	return nil
}

// normalizeTags trims, drops blanks and de-duplicates while keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
