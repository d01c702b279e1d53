package productservice_test

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
	"govendas/internal/service/productservice"
)

// MockProductRepository é uma implementação mock da interface ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id string, update domain.ProductUpdate) (domain.Product, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Normalização (read model) ---

// TestNormalize_DefaultsAndTrim verifica coleções nil viram vazias e a
// categoria perde espaços nas bordas.
func TestNormalize_DefaultsAndTrim(t *testing.T) {
	view := domain.ProductView{
		ID:       uuid.New().String(),
		Name:     "Caderno",
		Category: "  stationary ",
		Price:    12.5,
		Stock:    3,
	}

	normalized, err := productservice.Normalize(view)

	assert.NoError(t, err)
	assert.Equal(t, "stationary", normalized.Category)
	assert.NotNil(t, normalized.Images)
	assert.NotNil(t, normalized.Sales)
	assert.Len(t, normalized.Images, 0)
	assert.Len(t, normalized.Sales, 0)
}

// TestNormalize_Idempotent verifica que normalizar input já normalizado
// não muda nada: Normalize(Normalize(x)) == Normalize(x).
func TestNormalize_Idempotent(t *testing.T) {
	view := domain.ProductView{
		ID:        uuid.New().String(),
		Name:      "Fone",
		Category:  " electronic",
		Price:     199.9,
		Stock:     8,
		UnitsSold: 4,
		Images:    nil,
		Sales: []domain.SaleView{
			{ID: uuid.New().String(), Date: "2026-03-10T14:00:00+02:00", Quantity: 4, PriceAtSale: 180},
		},
		CreatedAt: "2026-01-05T08:30:00-03:00",
	}

	once, err := productservice.Normalize(view)
	assert.NoError(t, err)

	twice, err := productservice.Normalize(once)
	assert.NoError(t, err)

	assert.Equal(t, once, twice)
	// Timestamps reescritos em UTC na primeira passada
	assert.Equal(t, "2026-01-05T11:30:00Z", once.CreatedAt)
	assert.Equal(t, "2026-03-10T12:00:00Z", once.Sales[0].Date)
}

// TestNormalize_MalformedRecord verifica a sinalização de registros que o
// read model não consegue normalizar.
func TestNormalize_MalformedRecord(t *testing.T) {
	cases := []struct {
		name string
		view domain.ProductView
	}{
		{"sem identificador", domain.ProductView{Name: "X", Price: 1}},
		{"preço negativo", domain.ProductView{ID: "abc", Price: -1}},
		{"estoque negativo", domain.ProductView{ID: "abc", Stock: -2}},
		{"venda com quantidade zero", domain.ProductView{
			ID:    "abc",
			Sales: []domain.SaleView{{ID: "s1", Quantity: 0}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := productservice.Normalize(tc.view)
			assert.Error(t, err)
			assert.IsType(t, &apperror.MalformedRecordError{}, err)
		})
	}
}

// TestNewView_ZeroTimestamps verifica que datas zero viram string vazia em
// vez de uma data espúria.
func TestNewView_ZeroTimestamps(t *testing.T) {
	p := domain.Product{ID: uuid.New().String(), Name: "Antigo", Price: 10}

	view := productservice.NewView(p)

	assert.Equal(t, "", view.CreatedAt)
	assert.Equal(t, "", view.UpdatedAt)
	assert.NotNil(t, view.Sales)
}

// --- CreateProduct ---

// TestCreateProduct_Success testa o cadastro válido de um produto.
func TestCreateProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)

	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("domain.Product")).
		Return(domain.Product{
			ID:        uuid.New().String(),
			Name:      "Shampoo",
			Category:  domain.CategoryBathEssential,
			Price:     25,
			Stock:     40,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}, nil)

	ctx := context.Background()
	view, err := svc.CreateProduct(ctx, domain.Product{
		Name:     "Shampoo",
		Category: domain.CategoryBathEssential,
		Price:    25,
		Stock:    40,
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, view.UnitsSold)
	assert.Len(t, view.Sales, 0)
	mockRepo.AssertExpectations(t)

	// O serviço deve gerar ID e zerar o contador antes de persistir
	saved := mockRepo.Calls[0].Arguments.Get(1).(domain.Product)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, 0, saved.UnitsSold)
}

// TestCreateProduct_Fail_Validation testa os cadastros rejeitados.
func TestCreateProduct_Fail_Validation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)
	ctx := context.Background()

	cases := []struct {
		name    string
		product domain.Product
	}{
		{"nome vazio", domain.Product{Category: domain.CategoryBeauty, Price: 1}},
		{"categoria não reconhecida", domain.Product{Name: "X", Category: "toys", Price: 1}},
		{"preço negativo", domain.Product{Name: "X", Category: domain.CategoryBeauty, Price: -5}},
		{"estoque negativo", domain.Product{Name: "X", Category: domain.CategoryBeauty, Price: 5, Stock: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tc.product)
			assert.Error(t, err)
			assert.IsType(t, &apperror.ValidationError{}, err)
		})
	}

	// Nenhum cadastro inválido deve chegar ao repositório
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// --- Leituras ---

// TestGetProductByID_InvalidUUID testa a validação de formato do ID.
func TestGetProductByID_InvalidUUID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)

	_, err := svc.GetProductByID(context.Background(), "nao-e-uuid")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

// TestGetProducts_SkipsMalformedRecord verifica que um registro isolado
// malformado é excluído da listagem sem abortar a operação.
func TestGetProducts_SkipsMalformedRecord(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)

	good := domain.Product{ID: uuid.New().String(), Name: "Bom", Price: 10, Stock: 2}
	bad := domain.Product{ID: uuid.New().String(), Name: "Ruim", Price: -10}

	mockRepo.On("FindAll", mock.Anything).Return([]domain.Product{good, bad}, nil)

	views, err := svc.GetProducts(context.Background())

	assert.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, good.ID, views[0].ID)
	mockRepo.AssertExpectations(t)
}

// --- UpdateProduct ---

// TestUpdateProduct_Fail_InvalidCategory testa a rejeição de categoria em update.
func TestUpdateProduct_Fail_InvalidCategory(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)

	badCategory := "toys"
	_, err := svc.UpdateProduct(context.Background(), uuid.New().String(), domain.ProductUpdate{
		Category: &badCategory,
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// TestUpdateProduct_Success testa a atualização parcial de preço e estoque.
func TestUpdateProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockLogger := logger.NewLogger("debug")

	svc := productservice.NewService(mockRepo, mockLogger)

	id := uuid.New().String()
	newPrice := 99.9
	newStock := 30
	update := domain.ProductUpdate{Price: &newPrice, Stock: &newStock}

	mockRepo.On("Update", mock.Anything, id, update).Return(domain.Product{
		ID:    id,
		Name:  "Fone",
		Price: newPrice,
		Stock: newStock,
	}, nil)

	view, err := svc.UpdateProduct(context.Background(), id, update)

	assert.NoError(t, err)
	assert.Equal(t, newPrice, view.Price)
	assert.Equal(t, newStock, view.Stock)
	mockRepo.AssertExpectations(t)
}
