package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"bellavista/internal/domain"
	"bellavista/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type sessionClaims struct {
	AccountID int64       `json:"accountId"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type storedSession struct {
	ID        string             `json:"id"`
	Account   domain.AccountView `json:"account"`
	IssuedAt  time.Time          `json:"issuedAt"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

func (s storedSession) Clone() storedSession {
	s.Account.Orders = slices.Clone(s.Account.Orders)
	return s
}

// SessionManager issues and resolves signed session tokens. Live sessions are
// persisted so they survive a restart and can be revoked on logout.
type SessionManager struct {
	sessions *repository.Collection[storedSession]
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionManager(store repository.Store, secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: repository.NewCollection[storedSession](store, repository.KeySessions),
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Load restores persisted sessions and drops the expired ones.
func (m *SessionManager) Load(ctx context.Context) error {
	if err := m.sessions.Load(ctx, nil); err != nil {
		return err
	}
	return m.prune(ctx)
}

func (m *SessionManager) prune(ctx context.Context) error {
	now := m.now()
	return m.sessions.Mutate(ctx, func(items []storedSession) ([]storedSession, error) {
		return liveSessions(items, now), nil
	})
}

func liveSessions(items []storedSession, now time.Time) []storedSession {
	live := items[:0]
	for _, s := range items {
		if s.ExpiresAt.After(now) {
			live = append(live, s)
		}
	}
	return live
}

// Start opens a session for the account and returns it with its token.
func (m *SessionManager) Start(ctx context.Context, account domain.AccountView) (*domain.Session, error) {
	now := m.now()
	stored := storedSession{
		ID:        uuid.NewString(),
		Account:   account,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	claims := sessionClaims{
		AccountID: account.ID,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        stored.ID,
			Subject:   fmt.Sprint(account.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(stored.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	err = m.sessions.Mutate(ctx, func(items []storedSession) ([]storedSession, error) {
		return append(liveSessions(items, now), stored), nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("session started", "sessionId", stored.ID, "accountId", account.ID)
	return &domain.Session{ID: stored.ID, Token: token, Account: account, IssuedAt: now}, nil
}

// Resolve validates a token and returns the live session it names.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, domain.ErrSessionExpired
	}
	if err != nil {
		return nil, domain.ErrInvalidSessionToken
	}

	for _, s := range m.sessions.Snapshot() {
		if s.ID == claims.ID {
			return &domain.Session{ID: s.ID, Token: token, Account: s.Account, IssuedAt: s.IssuedAt}, nil
		}
	}
	return nil, domain.ErrSessionExpired
}

// End revokes a session. Ending an unknown session is not an error.
func (m *SessionManager) End(ctx context.Context, sessionID string) error {
	err := m.sessions.Mutate(ctx, func(items []storedSession) ([]storedSession, error) {
		out := items[:0]
		for _, s := range items {
			if s.ID != sessionID {
				out = append(out, s)
			}
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	slog.Info("session ended", "sessionId", sessionID)
	return nil
}

// Refresh rewrites the account snapshot held by every live session of that account.
func (m *SessionManager) Refresh(ctx context.Context, account domain.AccountView) error {
	return m.sessions.Mutate(ctx, func(items []storedSession) ([]storedSession, error) {
		for i := range items {
			if items[i].Account.ID == account.ID {
				items[i].Account = account
			}
		}
		return items, nil
	})
}
