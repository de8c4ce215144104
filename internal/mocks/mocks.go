package mocks

import (
	"context"

	"bellavista/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

type MockAccountRecorder struct {
	mock.Mock
}

func (m *MockAccountRecorder) RecordOrder(ctx context.Context, customerID int64, orderID string, total decimal.Decimal) error {
	args := m.Called(ctx, customerID, orderID, total)
	return args.Error(0)
}

type MockOrderCreator struct {
	mock.Mock
}

func (m *MockOrderCreator) Create(ctx context.Context, customer domain.CustomerRef, lines []domain.OrderLine, notes string) (*domain.Order, error) {
	args := m.Called(ctx, customer, lines, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
