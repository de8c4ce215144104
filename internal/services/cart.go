package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bellavista/internal/domain"

	"github.com/google/uuid"
)

var ErrCartNotFound = fmt.Errorf("cart: %w", domain.ErrNotFound)

// ItemLookup resolves menu items for the cart.
type ItemLookup interface {
	Lookup(ctx context.Context, id int64) (domain.MenuItem, bool)
}

// OrderCreator places orders on checkout.
type OrderCreator interface {
	Create(ctx context.Context, customer domain.CustomerRef, lines []domain.OrderLine, notes string) (*domain.Order, error)
}

// Cart is a per-visitor basket of menu items. It is never persisted.
type Cart struct {
	ID string

	checkout sync.Mutex

	mu      sync.Mutex
	catalog ItemLookup
	lines   []domain.CartLine
	touched time.Time
}

func NewCart(catalog ItemLookup) *Cart {
	return &Cart{ID: uuid.NewString(), catalog: catalog, touched: time.Now()}
}

// Add puts one unit of the item in the cart. Unknown items are ignored.
func (c *Cart) Add(ctx context.Context, itemID int64) {
	item, ok := c.catalog.Lookup(ctx, itemID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = time.Now()
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, domain.CartLine{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Image:    item.Image,
		Quantity: 1,
	})
}

func (c *Cart) Remove(itemID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = time.Now()
	c.remove(itemID)
}

func (c *Cart) remove(itemID int64) {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetQuantity replaces a line's quantity; n <= 0 removes the line.
func (c *Cart) SetQuantity(itemID int64, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = time.Now()
	if n <= 0 {
		c.remove(itemID)
		return
	}
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines[i].Quantity = n
			return
		}
	}
}

func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Totals() domain.Totals {
	return domain.ComputeTotals(c.orderLines())
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.touched = time.Now()
}

// release takes the checked-out quantities off the cart. Units added while
// the order was being placed stay in the cart.
func (c *Cart) release(lines []domain.OrderLine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = time.Now()
	for _, l := range lines {
		for i := range c.lines {
			if c.lines[i].ItemID != l.ItemID {
				continue
			}
			c.lines[i].Quantity -= l.Quantity
			if c.lines[i].Quantity <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			}
			break
		}
	}
}

func (c *Cart) orderLines() []domain.OrderLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.OrderLine, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, l.OrderLine())
	}
	return out
}

func (c *Cart) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

// Checkout places the cart as an order for the signed-in customer and
// removes the ordered quantities. The cart is left untouched when the order
// is not created. Concurrent checkouts of one cart run one at a time.
func (c *Cart) Checkout(ctx context.Context, session *domain.Session, orders OrderCreator, notes string) (*domain.Order, error) {
	c.checkout.Lock()
	defer c.checkout.Unlock()

	lines := c.orderLines()
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if session == nil {
		return nil, domain.ErrAccessDenied
	}

	order, err := orders.Create(ctx, domain.CustomerRef{
		ID:    session.Account.ID,
		Name:  session.Account.Name,
		Email: session.Account.Email,
	}, lines, notes)
	if err != nil {
		return nil, err
	}
	c.release(lines)
	return order, nil
}

// CartService keeps the open carts keyed by cart id.
type CartService struct {
	catalog ItemLookup
	orders  OrderCreator
	idleTTL time.Duration

	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewCartService(catalog ItemLookup, orders OrderCreator, idleTTL time.Duration) *CartService {
	return &CartService{
		catalog: catalog,
		orders:  orders,
		idleTTL: idleTTL,
		carts:   make(map[string]*Cart),
	}
}

func (s *CartService) New() *Cart {
	cart := NewCart(s.catalog)
	s.mu.Lock()
	s.carts[cart.ID] = cart
	s.mu.Unlock()
	return cart
}

func (s *CartService) Get(id string) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

func (s *CartService) Discard(id string) {
	s.mu.Lock()
	delete(s.carts, id)
	s.mu.Unlock()
}

func (s *CartService) Checkout(ctx context.Context, cartID string, session *domain.Session, notes string) (*domain.Order, error) {
	cart, err := s.Get(cartID)
	if err != nil {
		return nil, err
	}
	order, err := cart.Checkout(ctx, session, s.orders, notes)
	if err != nil {
		return nil, err
	}
	slog.Info("cart checked out", "cartId", cartID, "orderId", order.ID)
	return order, nil
}

// Sweep drops carts idle for longer than the configured TTL and returns how
// many were removed.
func (s *CartService) Sweep(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, cart := range s.carts {
		if now.Sub(cart.idleSince()) > s.idleTTL {
			delete(s.carts, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps idle carts every interval until ctx is done.
func (s *CartService) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				slog.Debug("idle carts swept", "count", n)
			}
		}
	}
}
