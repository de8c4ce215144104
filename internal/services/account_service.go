package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bellavista/internal/domain"
	"bellavista/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var ErrAccountNotFound = fmt.Errorf("account: %w", domain.ErrNotFound)

type RegisterInput struct {
	FullName        string `json:"fullName" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,simple_email"`
	Phone           string `json:"phone" validate:"required,min=10"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

func (in *RegisterInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
}

// AccountPatch carries the profile fields to merge; nil fields are left alone.
type AccountPatch struct {
	Name     *string `json:"name" validate:"omitnil,min=2"`
	Email    *string `json:"email" validate:"omitnil,simple_email"`
	Phone    *string `json:"phone" validate:"omitnil,min=10"`
	Password *string `json:"password" validate:"omitnil,min=6"`
}

func (p *AccountPatch) normalize() {
	if p.Name != nil {
		v := strings.TrimSpace(*p.Name)
		p.Name = &v
	}
	if p.Email != nil {
		v := normalizeEmail(*p.Email)
		p.Email = &v
	}
	if p.Phone != nil {
		v := strings.TrimSpace(*p.Phone)
		p.Phone = &v
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccountService is the user directory.
type AccountService struct {
	accounts *repository.Collection[domain.Account]
	sessions *SessionManager
	hashCost int
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAccountService(store repository.Store, sessions *SessionManager) *AccountService {
	return &AccountService{
		accounts: repository.NewCollection[domain.Account](store, repository.KeyUsers),
		sessions: sessions,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// SetHashCost overrides the bcrypt cost, mainly so tests stay fast.
func (s *AccountService) SetHashCost(cost int) {
	s.hashCost = cost
}

func (s *AccountService) Load(ctx context.Context) error {
	var seedErr error
	err := s.accounts.Load(ctx, func() []domain.Account {
		var seeds []domain.Account
		seeds, seedErr = seedAccounts(s.now(), s.hashCost)
		return seeds
	})
	if seedErr != nil {
		return seedErr
	}
	return err
}

// Register creates a customer account and signs it in.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.Session, error) {
	in.normalize()
	if err := validateInput(in).OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created domain.Account
	err = s.accounts.Mutate(ctx, func(items []domain.Account) ([]domain.Account, error) {
		ids := make([]int64, 0, len(items))
		for _, a := range items {
			if a.Email == in.Email {
				return nil, domain.ErrDuplicateEmail
			}
			ids = append(ids, a.ID)
		}
		created = domain.Account{
			ID:           nextTimeID(s.now(), ids),
			Name:         in.FullName,
			Email:        in.Email,
			PasswordHash: string(hash),
			Role:         domain.RoleCustomer,
			Phone:        in.Phone,
			JoinDate:     s.now(),
			Orders:       []string{},
			TotalSpent:   decimal.Zero,
		}
		return append(items, created), nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("account registered", "accountId", created.ID)
	return s.sessions.Start(ctx, created.View())
}

// Authenticate checks credentials and opens a session.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.Session, error) {
	email = normalizeEmail(email)

	var found *domain.Account
	for _, a := range s.accounts.Snapshot() {
		if a.Email == email {
			found = &a
			break
		}
	}
	if found == nil {
		// burn the same time as a real comparison
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.sessions.Start(ctx, found.View())
}

func (s *AccountService) Logout(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return nil
	}
	return s.sessions.End(ctx, session.ID)
}

func (s *AccountService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.hashCost)
	})
	return s.dummyHash
}

// UpdateAccount merges the patch into the account. Last write wins.
func (s *AccountService) UpdateAccount(ctx context.Context, id int64, patch AccountPatch) (domain.AccountView, error) {
	patch.normalize()
	if err := validateInput(patch).OrNil(); err != nil {
		return domain.AccountView{}, err
	}

	var hash []byte
	if patch.Password != nil {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(*patch.Password), s.hashCost); err != nil {
			return domain.AccountView{}, fmt.Errorf("hash password: %w", err)
		}
	}

	var updated domain.Account
	err := s.accounts.Mutate(ctx, func(items []domain.Account) ([]domain.Account, error) {
		idx := -1
		for i, a := range items {
			if a.ID == id {
				idx = i
			} else if patch.Email != nil && a.Email == *patch.Email {
				return nil, domain.ErrDuplicateEmail
			}
		}
		if idx == -1 {
			return nil, ErrAccountNotFound
		}

		a := &items[idx]
		if patch.Name != nil {
			a.Name = *patch.Name
		}
		if patch.Email != nil {
			a.Email = *patch.Email
		}
		if patch.Phone != nil {
			a.Phone = *patch.Phone
		}
		if hash != nil {
			a.PasswordHash = string(hash)
		}
		updated = *a
		return items, nil
	})
	if err != nil {
		return domain.AccountView{}, err
	}

	view := updated.View()
	s.refreshSessions(ctx, view)
	slog.Info("account updated", "accountId", id)
	return view, nil
}

// RecordOrder attributes a placed order to the account's history and spend.
func (s *AccountService) RecordOrder(ctx context.Context, customerID int64, orderID string, total decimal.Decimal) error {
	var updated domain.Account
	err := s.accounts.Mutate(ctx, func(items []domain.Account) ([]domain.Account, error) {
		for i := range items {
			if items[i].ID == customerID {
				items[i].Orders = append(items[i].Orders, orderID)
				items[i].TotalSpent = items[i].TotalSpent.Add(total)
				updated = items[i]
				return items, nil
			}
		}
		return nil, ErrAccountNotFound
	})
	if err != nil {
		return err
	}
	s.refreshSessions(ctx, updated.View())
	return nil
}

func (s *AccountService) refreshSessions(ctx context.Context, view domain.AccountView) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Refresh(ctx, view); err != nil {
		slog.Warn("session refresh failed", "accountId", view.ID, "error", err)
	}
}

func (s *AccountService) Get(ctx context.Context, id int64) (domain.AccountView, error) {
	for _, a := range s.accounts.Snapshot() {
		if a.ID == id {
			return a.View(), nil
		}
	}
	return domain.AccountView{}, ErrAccountNotFound
}

// ListAccounts returns every account without password material. Admin only.
func (s *AccountService) ListAccounts(ctx context.Context, actor *domain.Session) ([]domain.AccountView, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}
	return s.views(func(domain.Account) bool { return true }), nil
}

// Customers lists the accounts with the customer role.
func (s *AccountService) Customers(ctx context.Context) []domain.AccountView {
	return s.views(func(a domain.Account) bool { return a.Role == domain.RoleCustomer })
}

func (s *AccountService) views(keep func(domain.Account) bool) []domain.AccountView {
	items := s.accounts.Snapshot()
	out := make([]domain.AccountView, 0, len(items))
	for _, a := range items {
		if keep(a) {
			out = append(out, a.View())
		}
	}
	return out
}
