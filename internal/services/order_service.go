package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"bellavista/internal/domain"
	rabbit "bellavista/internal/infra/rabbitmq"
	"bellavista/internal/repository"

	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = fmt.Errorf("order: %w", domain.ErrNotFound)

// AccountRecorder attributes placed orders to customer accounts.
type AccountRecorder interface {
	RecordOrder(ctx context.Context, customerID int64, orderID string, total decimal.Decimal) error
}

type OrderFilter struct {
	Status string
	// Date is a calendar day formatted as 2006-01-02.
	Date string
}

// OrderService is the order ledger.
type OrderService struct {
	orders    *repository.Collection[domain.Order]
	seq       *repository.Counter
	accounts  AccountRecorder
	publisher rabbit.PublisherInterface
	location  *time.Location
	now       func() time.Time

	inflight sync.WaitGroup
}

func NewOrderService(store repository.Store, accounts AccountRecorder, pub rabbit.PublisherInterface) *OrderService {
	if pub == nil {
		pub = rabbit.NopPublisher{}
	}
	return &OrderService{
		orders:    repository.NewCollection[domain.Order](store, repository.KeyOrders),
		seq:       repository.NewCounter(store, repository.KeyOrderSequence),
		accounts:  accounts,
		publisher: pub,
		location:  time.Local,
		now:       time.Now,
	}
}

// SetLocation sets the zone used to decide which calendar day an order falls on.
func (s *OrderService) SetLocation(loc *time.Location) {
	if loc != nil {
		s.location = loc
	}
}

// Load reads the ledger and makes sure the id sequence starts above every
// order already stored.
func (s *OrderService) Load(ctx context.Context) error {
	if err := s.orders.Load(ctx, func() []domain.Order { return seedOrders(s.now()) }); err != nil {
		return err
	}
	var highest int64
	for _, o := range s.orders.Snapshot() {
		if n, ok := domain.ParseOrderSeq(o.ID); ok && n > highest {
			highest = n
		}
	}
	return s.seq.Init(ctx, highest)
}

func (s *OrderService) Create(ctx context.Context, customer domain.CustomerRef, lines []domain.OrderLine, notes string) (*domain.Order, error) {
	verr := &domain.ValidationError{}
	if len(lines) == 0 {
		verr.Add("items", "at least one item is required")
	}
	for i, l := range lines {
		if l.Quantity < 1 {
			verr.Add(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		if l.Price.IsNegative() {
			verr.Add(fmt.Sprintf("items[%d].price", i), "must not be negative")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	seq, err := s.seq.Next(ctx)
	if err != nil {
		return nil, err
	}

	items := slices.Clone(lines)
	totals := domain.ComputeTotals(items)
	order := &domain.Order{
		ID:            domain.FormatOrderID(seq),
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Status:        domain.StatusPending,
		OrderDate:     s.now(),
		Notes:         notes,
	}

	err = s.orders.Mutate(ctx, func(orders []domain.Order) ([]domain.Order, error) {
		return append(orders, *order), nil
	})
	if err != nil {
		return nil, err
	}

	if s.accounts != nil && customer.ID != 0 {
		if err := s.accounts.RecordOrder(ctx, customer.ID, order.ID, order.Total); err != nil {
			slog.Warn("order not attributed to account", "orderId", order.ID, "customerId", customer.ID, "error", err)
		}
	}

	slog.Info("order created", "orderId", order.ID, "customerId", customer.ID, "total", order.Total.StringFixed(2))
	s.publishAsync(domain.EventOrderCreated, domain.OrderCreatedEvent{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total.StringFixed(2),
		ItemCount:  len(order.Items),
		CreatedAt:  order.OrderDate,
	})

	return order, nil
}

// List applies the status and date filters and sorts newest first.
func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	var day time.Time
	if f.Date != "" {
		d, err := time.ParseInLocation(time.DateOnly, f.Date, s.location)
		if err != nil {
			verr := &domain.ValidationError{}
			verr.Add("date", "must be formatted as YYYY-MM-DD")
			return nil, verr
		}
		day = d
	}
	if f.Status != "" && f.Status != domain.StatusAll && !domain.OrderStatus(f.Status).Valid() {
		verr := &domain.ValidationError{}
		verr.Add("status", "unknown order status")
		return nil, verr
	}

	out := []domain.Order{}
	for _, o := range s.orders.Snapshot() {
		if f.Status != "" && f.Status != domain.StatusAll && string(o.Status) != f.Status {
			continue
		}
		if !day.IsZero() && !s.sameDay(o.OrderDate, day) {
			continue
		}
		out = append(out, o)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *OrderService) ListByCustomer(ctx context.Context, customerID int64) []domain.Order {
	out := []domain.Order{}
	for _, o := range s.orders.Snapshot() {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	for _, o := range s.orders.Snapshot() {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, ErrOrderNotFound
}

// SetStatus moves an order along its lifecycle. Jumps the lifecycle does not
// allow are rejected with *domain.InvalidTransitionError and change nothing.
func (s *OrderService) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		verr := &domain.ValidationError{}
		verr.Add("status", "unknown order status")
		return nil, verr
	}

	var (
		updated domain.Order
		from    domain.OrderStatus
	)
	err := s.orders.Mutate(ctx, func(orders []domain.Order) ([]domain.Order, error) {
		for i := range orders {
			if orders[i].ID != id {
				continue
			}
			from = orders[i].Status
			if !from.CanTransitionTo(status) {
				return nil, &domain.InvalidTransitionError{OrderID: id, From: from, To: status}
			}
			orders[i].Status = status
			updated = orders[i]
			return orders, nil
		}
		return nil, ErrOrderNotFound
	})
	if err != nil {
		var terr *domain.InvalidTransitionError
		if errors.As(err, &terr) {
			slog.Warn("order transition rejected", "orderId", id, "from", terr.From, "to", terr.To)
		}
		return nil, err
	}

	slog.Info("order status changed", "orderId", id, "from", from, "to", status)
	s.publishAsync(domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:   id,
		From:      from,
		To:        status,
		ChangedAt: s.now(),
	})
	return &updated, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	err := s.orders.Mutate(ctx, func(orders []domain.Order) ([]domain.Order, error) {
		for i := range orders {
			if orders[i].ID == id {
				return append(orders[:i], orders[i+1:]...), nil
			}
		}
		return nil, ErrOrderNotFound
	})
	if err != nil {
		return err
	}

	slog.Info("order deleted", "orderId", id)
	s.publishAsync(domain.EventOrderDeleted, domain.OrderDeletedEvent{OrderID: id, DeletedAt: s.now()})
	return nil
}

// Wait blocks until every pending event publication has finished.
func (s *OrderService) Wait() {
	s.inflight.Wait()
}

func (s *OrderService) publishAsync(pattern string, evt any) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(ctx, pattern, evt); err != nil {
			slog.Error("failed to publish event", "pattern", pattern, "error", err)
		}
	}()
}

func (s *OrderService) sameDay(t, day time.Time) bool {
	y1, m1, d1 := t.In(s.location).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func sortNewestFirst(orders []domain.Order) {
	slices.SortStableFunc(orders, func(a, b domain.Order) int {
		return b.OrderDate.Compare(a.OrderDate)
	})
}
