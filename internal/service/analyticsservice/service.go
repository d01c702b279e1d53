package analyticsservice

import (
	"context"
	"sort"
	"time"

	"govendas/internal/domain"
	"govendas/internal/pkg/logger"
)

// Quantidade de produtos no ranking de mais vendidos.
const topSellersLimit = 5

// StatsRepository define o contrato de agregação direta no store para os
// contadores do painel.
type StatsRepository interface {
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
}

// ProductReader é o read model consumido pelo agregador: a população
// completa e normalizada, puxada fresca a cada chamada (modelo pull, sem
// cache de agregação).
type ProductReader interface {
	GetProducts(ctx context.Context) ([]domain.ProductView, error)
}

// Service calcula os relatórios derivados de produtos e vendas. As
// leituras não são isoladas de escritas concorrentes: um relatório pode
// refletir uma população parcialmente atualizada se uma venda commitar no
// meio do scan. É uma janela de staleness aceita, não um bug.
type Service struct {
	repo     StatsRepository
	products ProductReader
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Analytics.
func NewService(repo StatsRepository, products ProductReader, logger logger.Logger) *Service {
	return &Service{repo: repo, products: products, logger: logger}
}

// Report puxa a população atual e calcula todas as facetas sobre o mesmo
// snapshot. Custo O(produtos + vendas) por chamada.
func (s *Service) Report(ctx context.Context) (domain.AnalyticsReport, error) {
	products, err := s.products.GetProducts(ctx)
	if err != nil {
		s.logger.Error("Falha ao obter população de produtos para o relatório.", err)
		return domain.AnalyticsReport{}, err
	}

	return Aggregate(products), nil
}

// Summarize calcula os contadores do painel via agregação direta no store.
func (s *Service) Summarize(ctx context.Context) (domain.DashboardStats, error) {
	return s.repo.DashboardStats(ctx)
}

// monthBucket acumula a receita de um mês-calendário durante o agrupamento.
type monthBucket struct {
	label   string
	revenue float64
}

// Aggregate calcula todas as facetas do relatório em uma única passada
// sobre a população. Função pura: mesmo input, mesmo output.
//
// A receita usa o preço ATUAL do produto (price × unitsSold), não o
// histórico price_at_sale das vendas. É o comportamento observado do
// produto; mudar para o histórico é uma decisão de negócio pendente.
func Aggregate(products []domain.ProductView) domain.AnalyticsReport {
	report := domain.AnalyticsReport{
		CategoryStock: make([]domain.CategoryStock, 0),
		RevenueTrend:  make([]domain.MonthRevenue, 0),
	}

	categoryIndex := make(map[string]int)
	trend := make(map[int]*monthBucket)
	var healthy, low, out int

	for _, p := range products {
		revenue := p.Price * float64(p.UnitsSold)

		// KPIs
		report.TotalRevenue += revenue
		report.TotalUnitsSold += p.UnitsSold
		report.InventoryValue += p.Price * float64(p.Stock)

		// Estoque por categoria (categoria como armazenada na view)
		if i, ok := categoryIndex[p.Category]; ok {
			report.CategoryStock[i].Stock += p.Stock
		} else {
			categoryIndex[p.Category] = len(report.CategoryStock)
			report.CategoryStock = append(report.CategoryStock, domain.CategoryStock{
				Category: p.Category,
				Stock:    p.Stock,
			})
		}

		// Buckets de saúde de estoque (limiares fixos)
		switch {
		case p.Stock == 0:
			out++
		case p.Stock <= domain.HealthyStockFloor:
			low++
		default:
			healthy++
		}

		// Tendência de receita por mês de criação. Produtos sem created_at
		// legível ficam de fora apenas desta faceta.
		if createdAt, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
			key := createdAt.Year()*12 + int(createdAt.Month()) - 1
			bucket, ok := trend[key]
			if !ok {
				bucket = &monthBucket{label: createdAt.Format("Jan 2006")}
				trend[key] = bucket
			}
			bucket.revenue += revenue
		}
	}

	report.StockHealth = []domain.StockHealthBucket{
		{Name: domain.BucketHealthyStock, Count: healthy},
		{Name: domain.BucketLowStock, Count: low},
		{Name: domain.BucketOutOfStock, Count: out},
	}

	// O agrupamento é agnóstico à ordem; a ordenação cronológica ascendente
	// é aplicada explicitamente sobre as chaves dos buckets.
	keys := make([]int, 0, len(trend))
	for key := range trend {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	for _, key := range keys {
		report.RevenueTrend = append(report.RevenueTrend, domain.MonthRevenue{
			Month:   trend[key].label,
			Revenue: trend[key].revenue,
		})
	}

	report.TopSellers = topSellers(products)

	return report
}

// topSellers devolve os produtos com maior units_sold, em ordem
// decrescente. A ordenação é estável: empates preservam a ordem de entrada.
func topSellers(products []domain.ProductView) []domain.ProductView {
	ranked := make([]domain.ProductView, len(products))
	copy(ranked, products)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].UnitsSold > ranked[j].UnitsSold
	})

	if len(ranked) > topSellersLimit {
		ranked = ranked[:topSellersLimit]
	}
	return ranked
}
