package analyticsservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"govendas/internal/domain"
	"govendas/internal/pkg/logger"
	"govendas/internal/service/analyticsservice"
)

// MockStatsRepository é uma implementação mock da interface StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.DashboardStats), args.Error(1)
}

// MockProductReader é uma implementação mock da interface ProductReader
type MockProductReader struct {
	mock.Mock
}

func (m *MockProductReader) GetProducts(ctx context.Context) ([]domain.ProductView, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ProductView), args.Error(1)
}

// --- Aggregate (função pura) ---

// TestAggregate_KPIs verifica receita total, unidades vendidas e valor de
// inventário. A receita usa o preço atual (price × unitsSold).
func TestAggregate_KPIs(t *testing.T) {
	products := []domain.ProductView{
		{ID: "p1", Price: 100, Stock: 7, UnitsSold: 3},
		{ID: "p2", Price: 10, Stock: 2, UnitsSold: 5},
	}

	report := analyticsservice.Aggregate(products)

	assert.Equal(t, float64(100*3+10*5), report.TotalRevenue)
	assert.Equal(t, 8, report.TotalUnitsSold)
	assert.Equal(t, float64(100*7+10*2), report.InventoryValue)
}

// TestAggregate_CategoryStock reproduz o cenário: categorias "a","a","b"
// com estoques 5,3,2 somam {a:8, b:2}.
func TestAggregate_CategoryStock(t *testing.T) {
	products := []domain.ProductView{
		{ID: "p1", Category: "a", Stock: 5},
		{ID: "p2", Category: "a", Stock: 3},
		{ID: "p3", Category: "b", Stock: 2},
	}

	report := analyticsservice.Aggregate(products)

	assert.Len(t, report.CategoryStock, 2)
	byCategory := map[string]int{}
	for _, cs := range report.CategoryStock {
		byCategory[cs.Category] = cs.Stock
	}
	assert.Equal(t, 8, byCategory["a"])
	assert.Equal(t, 2, byCategory["b"])
}

// TestAggregate_StockHealth reproduz o cenário: estoques 0, 5 e 11 caem um
// em cada bucket, e as contagens somam o total de produtos.
func TestAggregate_StockHealth(t *testing.T) {
	products := []domain.ProductView{
		{ID: "p1", Stock: 0},
		{ID: "p2", Stock: 5},
		{ID: "p3", Stock: 11},
	}

	report := analyticsservice.Aggregate(products)

	assert.Len(t, report.StockHealth, 3)
	assert.Equal(t, domain.BucketHealthyStock, report.StockHealth[0].Name)
	assert.Equal(t, 1, report.StockHealth[0].Count)
	assert.Equal(t, domain.BucketLowStock, report.StockHealth[1].Name)
	assert.Equal(t, 1, report.StockHealth[1].Count)
	assert.Equal(t, domain.BucketOutOfStock, report.StockHealth[2].Name)
	assert.Equal(t, 1, report.StockHealth[2].Count)

	total := 0
	for _, bucket := range report.StockHealth {
		total += bucket.Count
	}
	assert.Equal(t, len(products), total)
}

// TestAggregate_StockHealth_Boundary verifica o limiar fixo: estoque 10
// ainda é "Low Stock", 11 já é saudável.
func TestAggregate_StockHealth_Boundary(t *testing.T) {
	report := analyticsservice.Aggregate([]domain.ProductView{
		{ID: "p1", Stock: 10},
		{ID: "p2", Stock: 11},
	})

	assert.Equal(t, 1, report.StockHealth[0].Count) // Healthy
	assert.Equal(t, 1, report.StockHealth[1].Count) // Low
	assert.Equal(t, 0, report.StockHealth[2].Count) // Out
}

// TestAggregate_RevenueTrend_SortedAscending verifica a ordenação
// cronológica dos buckets mensais, independente da ordem de entrada.
func TestAggregate_RevenueTrend_SortedAscending(t *testing.T) {
	products := []domain.ProductView{
		{ID: "p1", Price: 10, UnitsSold: 1, CreatedAt: "2026-03-15T10:00:00Z"},
		{ID: "p2", Price: 20, UnitsSold: 2, CreatedAt: "2025-11-01T10:00:00Z"},
		{ID: "p3", Price: 5, UnitsSold: 4, CreatedAt: "2026-01-20T10:00:00Z"},
		{ID: "p4", Price: 7, UnitsSold: 1, CreatedAt: "2026-01-02T23:00:00Z"},
	}

	report := analyticsservice.Aggregate(products)

	assert.Len(t, report.RevenueTrend, 3)
	assert.Equal(t, "Nov 2025", report.RevenueTrend[0].Month)
	assert.Equal(t, "Jan 2026", report.RevenueTrend[1].Month)
	assert.Equal(t, "Mar 2026", report.RevenueTrend[2].Month)

	// Produtos do mesmo mês somam no mesmo bucket
	assert.Equal(t, float64(5*4+7*1), report.RevenueTrend[1].Revenue)
	assert.Equal(t, float64(40), report.RevenueTrend[0].Revenue)
}

// TestAggregate_RevenueTrend_ExcludesMissingCreatedAt verifica que um
// produto sem created_at legível fica fora apenas da faceta de tendência.
func TestAggregate_RevenueTrend_ExcludesMissingCreatedAt(t *testing.T) {
	products := []domain.ProductView{
		{ID: "p1", Price: 10, UnitsSold: 2, Stock: 1, CreatedAt: ""},
		{ID: "p2", Price: 10, UnitsSold: 1, Stock: 1, CreatedAt: "lixo"},
		{ID: "p3", Price: 10, UnitsSold: 3, Stock: 1, CreatedAt: "2026-02-01T00:00:00Z"},
	}

	report := analyticsservice.Aggregate(products)

	// Apenas p3 entra na tendência...
	assert.Len(t, report.RevenueTrend, 1)
	assert.Equal(t, float64(30), report.RevenueTrend[0].Revenue)

	// ...mas todos contribuem para as demais facetas
	assert.Equal(t, 6, report.TotalUnitsSold)
	assert.Equal(t, float64(60), report.TotalRevenue)
	total := 0
	for _, bucket := range report.StockHealth {
		total += bucket.Count
	}
	assert.Equal(t, 3, total)
}

// TestAggregate_TopSellers reproduz o cenário: units_sold 10,50,5,100,20
// produz o ranking [100,50,20,10,5].
func TestAggregate_TopSellers(t *testing.T) {
	products := []domain.ProductView{
		{ID: "p1", UnitsSold: 10},
		{ID: "p2", UnitsSold: 50},
		{ID: "p3", UnitsSold: 5},
		{ID: "p4", UnitsSold: 100},
		{ID: "p5", UnitsSold: 20},
	}

	report := analyticsservice.Aggregate(products)

	got := make([]int, 0, len(report.TopSellers))
	for _, p := range report.TopSellers {
		got = append(got, p.UnitsSold)
	}
	assert.Equal(t, []int{100, 50, 20, 10, 5}, got)
}

// TestAggregate_TopSellers_StableTiesAndLimit verifica o corte em 5 e a
// preservação da ordem de entrada em empates.
func TestAggregate_TopSellers_StableTiesAndLimit(t *testing.T) {
	products := []domain.ProductView{
		{ID: "p1", UnitsSold: 7},
		{ID: "p2", UnitsSold: 7},
		{ID: "p3", UnitsSold: 9},
		{ID: "p4", UnitsSold: 7},
		{ID: "p5", UnitsSold: 1},
		{ID: "p6", UnitsSold: 3},
	}

	report := analyticsservice.Aggregate(products)

	assert.Len(t, report.TopSellers, 5)
	assert.Equal(t, "p3", report.TopSellers[0].ID)
	// Empate em 7: ordem de entrada preservada
	assert.Equal(t, "p1", report.TopSellers[1].ID)
	assert.Equal(t, "p2", report.TopSellers[2].ID)
	assert.Equal(t, "p4", report.TopSellers[3].ID)
	assert.Equal(t, "p6", report.TopSellers[4].ID)
}

// TestAggregate_EmptyPopulation verifica o relatório vazio (sem nil em
// nenhuma coleção).
func TestAggregate_EmptyPopulation(t *testing.T) {
	report := analyticsservice.Aggregate([]domain.ProductView{})

	assert.Equal(t, float64(0), report.TotalRevenue)
	assert.NotNil(t, report.CategoryStock)
	assert.NotNil(t, report.RevenueTrend)
	assert.Len(t, report.StockHealth, 3)
	assert.Len(t, report.TopSellers, 0)
}

// --- Report / Summarize (com dependências mockadas) ---

// TestReport_PullsFreshPopulation verifica que o relatório puxa a
// população do read model a cada chamada.
func TestReport_PullsFreshPopulation(t *testing.T) {
	mockRepo := new(MockStatsRepository)
	mockReader := new(MockProductReader)
	mockLogger := logger.NewLogger("debug")

	svc := analyticsservice.NewService(mockRepo, mockReader, mockLogger)

	mockReader.On("GetProducts", mock.Anything).Return([]domain.ProductView{
		{ID: "p1", Price: 50, Stock: 4, UnitsSold: 2},
	}, nil)

	report, err := svc.Report(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, float64(100), report.TotalRevenue)
	mockReader.AssertExpectations(t)
}

// TestReport_Fail_ReaderError verifica a propagação de erro do read model.
func TestReport_Fail_ReaderError(t *testing.T) {
	mockRepo := new(MockStatsRepository)
	mockReader := new(MockProductReader)
	mockLogger := logger.NewLogger("debug")

	svc := analyticsservice.NewService(mockRepo, mockReader, mockLogger)

	readerErr := errors.New("database connection lost")
	mockReader.On("GetProducts", mock.Anything).Return([]domain.ProductView{}, readerErr)

	_, err := svc.Report(context.Background())

	assert.Error(t, err)
	assert.Equal(t, readerErr, err)
	mockReader.AssertExpectations(t)
}

// TestSummarize_DelegatesToRepository verifica os contadores do painel.
func TestSummarize_DelegatesToRepository(t *testing.T) {
	mockRepo := new(MockStatsRepository)
	mockReader := new(MockProductReader)
	mockLogger := logger.NewLogger("debug")

	svc := analyticsservice.NewService(mockRepo, mockReader, mockLogger)

	expected := domain.DashboardStats{TotalProducts: 12, TotalCategories: 4, LowStock: 3}
	mockRepo.On("DashboardStats", mock.Anything).Return(expected, nil)

	stats, err := svc.Summarize(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, expected, stats)
	mockRepo.AssertExpectations(t)
}
