package ledgerservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
	"govendas/internal/service/productservice"
)

// LedgerRepository define o contrato de persistência do Ledger. A
// implementação deve garantir que a mutação de estoque/units_sold/venda
// seja atômica por produto.
type LedgerRepository interface {
	RecordSale(ctx context.Context, productID string, quantity int) (domain.Product, error)
}

// Service é o Ledger de inventário: o único caminho de escrita para o
// histórico de vendas. Invariantes mantidas aqui e no repositório:
// estoque nunca negativo, units_sold sempre igual à soma das quantidades
// vendidas, histórico append-only.
type Service struct {
	repo   LedgerRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Ledger.
func NewService(repo LedgerRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RecordSale registra uma venda contra um produto.
//
// Falhas distintas são sinalizadas distintamente e nunca são retentadas
// internamente:
//   - quantidade <= 0        -> VALIDATION_FAILED (o store não é tocado)
//   - produto inexistente    -> NOT_FOUND
//   - quantidade > estoque   -> INSUFFICIENT_STOCK (nenhuma mutação parcial)
func (s *Service) RecordSale(ctx context.Context, req domain.SaleRequest) (domain.ProductView, error) {
	if req.Quantity <= 0 {
		return domain.ProductView{}, apperror.NewValidationError(
			fmt.Sprintf("A quantidade da venda deve ser um inteiro positivo (recebido: %d).", req.Quantity))
	}

	// Um ID que não é UUID nunca resolve para um produto existente.
	if _, err := uuid.Parse(req.ProductID); err != nil {
		return domain.ProductView{}, apperror.NewNotFoundError(
			fmt.Sprintf("Produto com ID %s não foi encontrado.", req.ProductID))
	}

	product, err := s.repo.RecordSale(ctx, req.ProductID, req.Quantity)
	if err != nil {
		// O repositório já devolve erros tipados (NotFound, InsufficientStock,
		// Internal); apenas propagamos para o chamador decidir.
		return domain.ProductView{}, err
	}

	s.logger.Info("Venda registrada pelo Ledger.", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   req.Quantity,
		"stock":      product.Stock,
		"units_sold": product.UnitsSold,
	})

	return productservice.Normalize(productservice.NewView(product))
}
