package ledgerservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
	"govendas/internal/service/ledgerservice"
)

// MockLedgerRepository é uma implementação mock da interface LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) RecordSale(ctx context.Context, productID string, quantity int) (domain.Product, error) {
	args := m.Called(ctx, productID, quantity)
	return args.Get(0).(domain.Product), args.Error(1)
}

// TestRecordSale_Success reproduz o cenário base do Ledger: produto com
// estoque 10 e preço 100, venda de 3 unidades.
func TestRecordSale_Success(t *testing.T) {
	mockRepo := new(MockLedgerRepository)
	mockLogger := logger.NewLogger("debug")

	svc := ledgerservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	now := time.Now().UTC()

	// O repositório devolve o produto pós-mutação, com a venda embutida.
	mutated := domain.Product{
		ID:        productID,
		Name:      "Fone",
		Price:     100,
		Stock:     7,
		UnitsSold: 3,
		Sales: []domain.Sale{
			{ID: uuid.New().String(), ProductID: productID, Date: now, Quantity: 3, PriceAtSale: 100},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	mockRepo.On("RecordSale", mock.Anything, productID, 3).Return(mutated, nil)

	view, err := svc.RecordSale(context.Background(), domain.SaleRequest{ProductID: productID, Quantity: 3})

	assert.NoError(t, err)
	assert.Equal(t, 7, view.Stock)
	assert.Equal(t, 3, view.UnitsSold)
	assert.Len(t, view.Sales, 1)
	assert.Equal(t, 3, view.Sales[0].Quantity)
	assert.Equal(t, float64(100), view.Sales[0].PriceAtSale)
	mockRepo.AssertExpectations(t)
}

// TestRecordSale_Fail_InvalidQuantity verifica que quantidade não positiva
// é rejeitada sem tocar o store.
func TestRecordSale_Fail_InvalidQuantity(t *testing.T) {
	mockRepo := new(MockLedgerRepository)
	mockLogger := logger.NewLogger("debug")

	svc := ledgerservice.NewService(mockRepo, mockLogger)

	for _, quantity := range []int{0, -5} {
		_, err := svc.RecordSale(context.Background(), domain.SaleRequest{
			ProductID: uuid.New().String(),
			Quantity:  quantity,
		})

		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}

	mockRepo.AssertNotCalled(t, "RecordSale", mock.Anything, mock.Anything, mock.Anything)
}

// TestRecordSale_Fail_InsufficientStock verifica que a rejeição por
// estoque insuficiente chega tipada ao chamador, sem retentativa.
func TestRecordSale_Fail_InsufficientStock(t *testing.T) {
	mockRepo := new(MockLedgerRepository)
	mockLogger := logger.NewLogger("debug")

	svc := ledgerservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	mockRepo.On("RecordSale", mock.Anything, productID, 8).
		Return(domain.Product{}, apperror.NewInsufficientStockError("Estoque atual (7) não comporta a quantidade solicitada (8)."))

	_, err := svc.RecordSale(context.Background(), domain.SaleRequest{ProductID: productID, Quantity: 8})

	assert.Error(t, err)
	assert.IsType(t, &apperror.InsufficientStockError{}, err)
	mockRepo.AssertExpectations(t)
	// A chamada foi feita uma única vez (nenhuma retentativa interna)
	mockRepo.AssertNumberOfCalls(t, "RecordSale", 1)
}

// TestRecordSale_Fail_ProductNotFound verifica o produto inexistente.
func TestRecordSale_Fail_ProductNotFound(t *testing.T) {
	mockRepo := new(MockLedgerRepository)
	mockLogger := logger.NewLogger("debug")

	svc := ledgerservice.NewService(mockRepo, mockLogger)

	productID := uuid.New().String()
	mockRepo.On("RecordSale", mock.Anything, productID, 2).
		Return(domain.Product{}, apperror.NewNotFoundError("Produto não existe."))

	_, err := svc.RecordSale(context.Background(), domain.SaleRequest{ProductID: productID, Quantity: 2})

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestRecordSale_Fail_MalformedID verifica que um ID que não é UUID nunca
// resolve: NOT_FOUND sem consultar o store.
func TestRecordSale_Fail_MalformedID(t *testing.T) {
	mockRepo := new(MockLedgerRepository)
	mockLogger := logger.NewLogger("debug")

	svc := ledgerservice.NewService(mockRepo, mockLogger)

	_, err := svc.RecordSale(context.Background(), domain.SaleRequest{ProductID: "nao-e-uuid", Quantity: 1})

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertNotCalled(t, "RecordSale", mock.Anything, mock.Anything, mock.Anything)
}
