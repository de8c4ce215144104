package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bellavista/internal/domain"
	"bellavista/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultCustomMenuName = "My Custom Menu"

var builderOptions = map[domain.Course][]domain.BuilderOption{
	domain.CourseAppetizer: {
		{ID: "app1", Name: "Bruschetta Classica", Price: price("12.99")},
		{ID: "app2", Name: "Antipasto Platter", Price: price("18.99")},
		{ID: "app3", Name: "Calamari Fritti", Price: price("14.99")},
		{ID: "app4", Name: "Caprese Salad", Price: price("13.99")},
	},
	domain.CourseMain: {
		{ID: "main1", Name: "Spaghetti Carbonara", Price: price("22.99")},
		{ID: "main2", Name: "Margherita Pizza", Price: price("18.99")},
		{ID: "main3", Name: "Chicken Parmigiana", Price: price("26.99")},
		{ID: "main4", Name: "Branzino Mediterranean", Price: price("28.99")},
		{ID: "main5", Name: "Osso Buco", Price: price("32.99")},
	},
	domain.CourseDessert: {
		{ID: "dessert1", Name: "Tiramisu", Price: price("8.99")},
		{ID: "dessert2", Name: "Panna Cotta", Price: price("7.99")},
		{ID: "dessert3", Name: "Cannoli", Price: price("9.99")},
		{ID: "dessert4", Name: "Gelato Selection", Price: price("6.99")},
	},
	domain.CourseBeverage: {
		{ID: "bev1", Name: "Italian Wine (Glass)", Price: price("8.99")},
		{ID: "bev2", Name: "Sparkling Water", Price: price("3.99")},
		{ID: "bev3", Name: "Espresso", Price: price("4.99")},
		{ID: "bev4", Name: "Italian Soda", Price: price("4.99")},
	},
}

// CustomMenuInput picks at most one option per course, keyed by course.
type CustomMenuInput struct {
	Name            string                   `json:"name" validate:"max=80"`
	Selections      map[domain.Course]string `json:"selections" validate:"required,min=1"`
	ServingSize     int                      `json:"servingSize" validate:"min=1,max=12"`
	SpecialRequests string                   `json:"specialRequests" validate:"max=500"`
}

type CourseOptions struct {
	Course  domain.Course          `json:"course"`
	Options []domain.BuilderOption `json:"options"`
}

// BuilderService prices and stores custom multi-course menus.
type BuilderService struct {
	menus *repository.Collection[domain.CustomMenu]
	now   func() time.Time
}

func NewBuilderService(store repository.Store) *BuilderService {
	return &BuilderService{
		menus: repository.NewCollection[domain.CustomMenu](store, repository.KeyCustomMenus),
		now:   time.Now,
	}
}

func (s *BuilderService) Load(ctx context.Context) error {
	return s.menus.Load(ctx, nil)
}

func (s *BuilderService) Options() []CourseOptions {
	out := make([]CourseOptions, 0, len(domain.Courses))
	for _, c := range domain.Courses {
		opts := make([]domain.BuilderOption, len(builderOptions[c]))
		copy(opts, builderOptions[c])
		out = append(out, CourseOptions{Course: c, Options: opts})
	}
	return out
}

// Quote prices the selection without saving it. Every option is charged
// once per guest.
func (s *BuilderService) Quote(in CustomMenuInput) (domain.CustomMenu, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SpecialRequests = strings.TrimSpace(in.SpecialRequests)
	if in.ServingSize == 0 {
		in.ServingSize = 1
	}
	verr := validateInput(in)

	servings := decimal.NewFromInt(int64(in.ServingSize))
	menu := domain.CustomMenu{
		Name:            in.Name,
		Lines:           []domain.CustomMenuLine{},
		ServingSize:     in.ServingSize,
		SpecialRequests: in.SpecialRequests,
		Total:           decimal.Zero,
	}
	if menu.Name == "" {
		menu.Name = defaultCustomMenuName
	}

	for course := range in.Selections {
		if _, ok := builderOptions[course]; !ok {
			verr.Add("selections."+string(course), "unknown course")
		}
	}
	for _, course := range domain.Courses {
		optionID, ok := in.Selections[course]
		if !ok {
			continue
		}
		opt, found := findOption(course, optionID)
		if !found {
			verr.Add("selections."+string(course), "unknown option")
			continue
		}
		amount := opt.Price.Mul(servings)
		menu.Lines = append(menu.Lines, domain.CustomMenuLine{Course: course, Option: opt, Amount: amount})
		menu.Total = menu.Total.Add(amount)
	}
	if err := verr.OrNil(); err != nil {
		return domain.CustomMenu{}, err
	}
	return menu, nil
}

// Save prices the selection and stores it for the customer, who may be nil
// for anonymous visitors.
func (s *BuilderService) Save(ctx context.Context, session *domain.Session, in CustomMenuInput) (domain.CustomMenu, error) {
	menu, err := s.Quote(in)
	if err != nil {
		return domain.CustomMenu{}, err
	}
	menu.ID = uuid.NewString()
	menu.CreatedAt = s.now()
	if session != nil {
		menu.CustomerID = session.Account.ID
	}

	err = s.menus.Mutate(ctx, func(items []domain.CustomMenu) ([]domain.CustomMenu, error) {
		return append(items, menu), nil
	})
	if err != nil {
		return domain.CustomMenu{}, err
	}
	slog.Info("custom menu saved", "menuId", menu.ID, "servingSize", menu.ServingSize, "total", menu.Total.StringFixed(2))
	return menu, nil
}

// List returns saved menus, newest last. Admins see all of them, customers
// only their own.
func (s *BuilderService) List(ctx context.Context, session *domain.Session) ([]domain.CustomMenu, error) {
	if session == nil {
		return nil, domain.ErrAccessDenied
	}
	out := []domain.CustomMenu{}
	for _, m := range s.menus.Snapshot() {
		if session.IsAdmin() || m.CustomerID == session.Account.ID {
			out = append(out, m)
		}
	}
	return out, nil
}

func findOption(course domain.Course, id string) (domain.BuilderOption, bool) {
	for _, opt := range builderOptions[course] {
		if opt.ID == id {
			return opt, true
		}
	}
	return domain.BuilderOption{}, false
}
