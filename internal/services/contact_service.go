package services

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"bellavista/internal/domain"
	"bellavista/internal/repository"

	"github.com/google/uuid"
)

type ContactInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,simple_email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required,min=10"`
}

type ContactService struct {
	messages *repository.Collection[domain.ContactMessage]
	now      func() time.Time
}

func NewContactService(store repository.Store) *ContactService {
	return &ContactService{
		messages: repository.NewCollection[domain.ContactMessage](store, repository.KeyContactMessages),
		now:      time.Now,
	}
}

func (s *ContactService) Load(ctx context.Context) error {
	return s.messages.Load(ctx, nil)
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) (domain.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	if err := validateInput(in).OrNil(); err != nil {
		return domain.ContactMessage{}, err
	}

	msg := domain.ContactMessage{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Email:      in.Email,
		Subject:    in.Subject,
		Message:    in.Message,
		ReceivedAt: s.now(),
	}
	err := s.messages.Mutate(ctx, func(items []domain.ContactMessage) ([]domain.ContactMessage, error) {
		return append(items, msg), nil
	})
	if err != nil {
		return domain.ContactMessage{}, err
	}
	slog.Info("contact message received", "messageId", msg.ID, "subject", msg.Subject)
	return msg, nil
}

// List returns the inbox newest first. Admin only.
func (s *ContactService) List(ctx context.Context, actor *domain.Session) ([]domain.ContactMessage, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}
	out := s.messages.Snapshot()
	if out == nil {
		out = []domain.ContactMessage{}
	}
	slices.Reverse(out)
	return out, nil
}
