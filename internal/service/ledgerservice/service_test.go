package ledgerservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookstock/internal/domain"
	apperror "bookstock/internal/errors"
	"bookstock/internal/pkg/logger"
	"bookstock/internal/service/ledgerservice"
)

// MockRepository é uma implementação mock da interface ledgerservice.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) RecordMovement(ctx context.Context, mv domain.Movement) (domain.Transaction, domain.InventoryItem, error) {
	args := m.Called(ctx, mv)
	return args.Get(0).(domain.Transaction), args.Get(1).(domain.InventoryItem), args.Error(2)
}

func (m *MockRepository) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockRepository) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.InventoryItem), args.Error(1)
}

// MockInvalidator registra as invalidações de relatórios.
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

func TestApplyMovement_Success(t *testing.T) {
	mockRepo := new(MockRepository)
	mockInv := new(MockInvalidator)
	svc := ledgerservice.NewService(mockRepo, mockInv, logger.Nop())

	expectedMovement := domain.Movement{Title: "Intro to Systems", Type: domain.MovementShipment, Quantity: 3, Partner: "BookStoreA"}
	tx := domain.Transaction{
		Timestamp: time.Now(),
		Type:      domain.MovementShipment,
		Partner:   "BookStoreA",
		Title:     "Intro to Systems",
		Quantity:  3,
		UnitPrice: decimal.NewFromInt(20000),
	}
	item := domain.InventoryItem{Title: "Intro to Systems", Quantity: 2, SafetyStock: 3, Price: decimal.NewFromInt(20000)}

	mockRepo.On("RecordMovement", mock.Anything, expectedMovement).Return(tx, item, nil)
	mockInv.On("Invalidate", mock.Anything).Return()

	// Tipo em minúsculas e espaços são normalizados pelo serviço.
	result, err := svc.ApplyMovement(context.Background(), domain.Movement{
		Title: " Intro to Systems ", Type: "shipment", Quantity: 3, Partner: "BookStoreA",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Quantity)
	assert.True(t, decimal.NewFromInt(20000).Equal(result.UnitPrice))
	mockRepo.AssertExpectations(t)
	mockInv.AssertExpectations(t)
}

func TestApplyMovement_Fail_Validation(t *testing.T) {
	tests := []struct {
		name     string
		movement domain.Movement
		errType  interface{}
	}{
		{"título vazio", domain.Movement{Title: "  ", Type: domain.MovementReceipt, Quantity: 1}, &apperror.MissingFieldError{}},
		{"quantidade zero", domain.Movement{Title: "A", Type: domain.MovementReceipt, Quantity: 0}, &apperror.InvalidQuantityError{}},
		{"quantidade negativa", domain.Movement{Title: "A", Type: domain.MovementReceipt, Quantity: -4}, &apperror.InvalidQuantityError{}},
		{"tipo desconhecido", domain.Movement{Title: "A", Type: "LOAN", Quantity: 1}, &apperror.ValidationError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			svc := ledgerservice.NewService(mockRepo, nil, logger.Nop())

			_, err := svc.ApplyMovement(context.Background(), tt.movement)

			require.Error(t, err)
			assert.IsType(t, tt.errType, err)
			mockRepo.AssertNotCalled(t, "RecordMovement", mock.Anything, mock.Anything)
		})
	}
}

func TestApplyMovement_Fail_InsufficientStock(t *testing.T) {
	mockRepo := new(MockRepository)
	mockInv := new(MockInvalidator)
	svc := ledgerservice.NewService(mockRepo, mockInv, logger.Nop())

	mockRepo.On("RecordMovement", mock.Anything, mock.AnythingOfType("domain.Movement")).
		Return(domain.Transaction{}, domain.InventoryItem{}, apperror.NewInsufficientStockError("Intro to Systems", 2, 10))

	_, err := svc.ApplyMovement(context.Background(), domain.Movement{
		Title: "Intro to Systems", Type: domain.MovementShipment, Quantity: 10, Partner: "BookStoreA",
	})

	require.Error(t, err)
	assert.IsType(t, &apperror.InsufficientStockError{}, err)
	mockInv.AssertNotCalled(t, "Invalidate", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestApplyMovement_Fail_InternalError(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := ledgerservice.NewService(mockRepo, nil, logger.Nop())

	mockRepo.On("RecordMovement", mock.Anything, mock.AnythingOfType("domain.Movement")).
		Return(domain.Transaction{}, domain.InventoryItem{}, errors.New("disco cheio"))

	_, err := svc.ApplyMovement(context.Background(), domain.Movement{Title: "A", Type: domain.MovementReceipt, Quantity: 1})

	require.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
	assert.Contains(t, err.Error(), "Falha interna ao gravar movimentação.")
}

func TestListTransactions_NewestFirst(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := ledgerservice.NewService(mockRepo, nil, logger.Nop())

	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	mockRepo.On("ListTransactions", mock.Anything).Return([]domain.Transaction{
		{Timestamp: base, Title: "old"},
		{Timestamp: base.Add(48 * time.Hour), Title: "new"},
		{Timestamp: base.Add(24 * time.Hour), Title: "mid"},
	}, nil)

	txs, err := svc.ListTransactions(context.Background())

	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "new", txs[0].Title)
	assert.Equal(t, "mid", txs[1].Title)
	assert.Equal(t, "old", txs[2].Title)
}

func TestListAlerts(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := ledgerservice.NewService(mockRepo, nil, logger.Nop())

	mockRepo.On("ListItems", mock.Anything).Return([]domain.InventoryItem{
		{Title: "safe", Quantity: 10, SafetyStock: 3},
		{Title: "at-threshold", Quantity: 3, SafetyStock: 3},
		{Title: "below", Quantity: 1, SafetyStock: 3},
	}, nil)

	alerts, err := svc.ListAlerts(context.Background())

	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "at-threshold", alerts[0].Title)
	assert.Equal(t, "below", alerts[1].Title)
}
