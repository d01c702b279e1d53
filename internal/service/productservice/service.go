package productservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
)

// ProductRepository define o contrato que este Serviço espera da camada de
// Persistência (DB, Cache).
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, id string, update domain.ProductUpdate) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Service é a camada de negócio de produtos: validação de cadastro,
// atualizações parciais e o read model normalizado consumido pela
// apresentação e pelo agregador de analytics.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// --- Read Model (normalização) ---

// NewView converte a entidade interna para a forma externa: ids como
// string, datas RFC3339 e coleções nunca nil. Datas zero viram string
// vazia (registros antigos podem não carregar created_at).
func NewView(p domain.Product) domain.ProductView {
	view := domain.ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		UnitsSold:   p.UnitsSold,
		Images:      p.Images,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}

	view.Sales = make([]domain.SaleView, 0, len(p.Sales))
	for _, s := range p.Sales {
		view.Sales = append(view.Sales, domain.SaleView{
			ID:          s.ID,
			Date:        formatTime(s.Date),
			Quantity:    s.Quantity,
			PriceAtSale: s.PriceAtSale,
		})
	}

	return view
}

// Normalize canonicaliza uma ProductView: coleções opcionais ausentes viram
// sequências vazias, a categoria perde espaços nas bordas e os timestamps
// parseáveis são reescritos em RFC3339/UTC. É uma função pura e
// idempotente: Normalize(Normalize(v)) == Normalize(v).
//
// Entrada que não pode ser normalizada (id vazio, contadores negativos)
// sinaliza MALFORMED_RECORD.
func Normalize(v domain.ProductView) (domain.ProductView, error) {
	if v.ID == "" {
		return domain.ProductView{}, apperror.NewMalformedRecordError("produto sem identificador")
	}
	if v.Price < 0 {
		return domain.ProductView{}, apperror.NewMalformedRecordError(fmt.Sprintf("produto %s com preço negativo", v.ID))
	}
	if v.Stock < 0 || v.UnitsSold < 0 {
		return domain.ProductView{}, apperror.NewMalformedRecordError(fmt.Sprintf("produto %s com contadores negativos", v.ID))
	}

	v.Category = strings.TrimSpace(v.Category)

	if v.Images == nil {
		v.Images = []string{}
	}
	if v.Sales == nil {
		v.Sales = []domain.SaleView{}
	}
	for i := range v.Sales {
		if v.Sales[i].Quantity <= 0 {
			return domain.ProductView{}, apperror.NewMalformedRecordError(fmt.Sprintf("venda %s com quantidade não positiva", v.Sales[i].ID))
		}
		v.Sales[i].Date = canonicalTime(v.Sales[i].Date)
	}

	v.CreatedAt = canonicalTime(v.CreatedAt)
	v.UpdatedAt = canonicalTime(v.UpdatedAt)

	return v, nil
}

// formatTime converte time.Time para a forma textual canônica.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// canonicalTime reescreve um timestamp textual em RFC3339/UTC quando
// parseável; caso contrário devolve o valor original (o agregador exclui
// timestamps ilegíveis apenas da faceta de tendência).
func canonicalTime(s string) string {
	if s == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	return s
}

// --- Operações de leitura ---

// GetProducts retorna a população completa de produtos normalizada.
// Um registro isolado que não normaliza é excluído da listagem (com log),
// em vez de abortar a operação inteira.
func (s *Service) GetProducts(ctx context.Context) ([]domain.ProductView, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]domain.ProductView, 0, len(products))
	for _, p := range products {
		view, err := Normalize(NewView(p))
		if err != nil {
			s.logger.Warn("Registro malformado excluído da listagem.", map[string]interface{}{
				"product_id": p.ID,
				"error":      err.Error(),
			})
			continue
		}
		views = append(views, view)
	}

	return views, nil
}

// GetProductByID retorna um produto normalizado pelo ID.
func (s *Service) GetProductByID(ctx context.Context, id string) (domain.ProductView, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ProductView{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.ProductView{}, err
	}

	return Normalize(NewView(product))
}

// --- Operações de escrita ---

// CreateProduct valida e cadastra um novo produto. Produtos nascem sem
// vendas e com units_sold zerado; só o Ledger mexe nesses campos depois.
func (s *Service) CreateProduct(ctx context.Context, product domain.Product) (domain.ProductView, error) {
	if strings.TrimSpace(product.Name) == "" {
		return domain.ProductView{}, apperror.NewValidationError("O nome do produto é obrigatório.")
	}
	if !domain.IsValidCategory(product.Category) {
		return domain.ProductView{}, apperror.NewValidationError(
			fmt.Sprintf("Categoria '%s' não reconhecida. Aceitas: %s.", product.Category, strings.Join(domain.ValidCategories, ", ")))
	}
	if product.Price < 0 {
		return domain.ProductView{}, apperror.NewValidationError("O preço do produto não pode ser negativo.")
	}
	if product.Stock < 0 {
		return domain.ProductView{}, apperror.NewValidationError("O estoque inicial não pode ser negativo.")
	}

	product.ID = uuid.New().String()
	product.UnitsSold = 0
	product.Sales = nil
	if product.Images == nil {
		product.Images = []string{}
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	created, err := s.repo.Save(ctx, product)
	if err != nil {
		return domain.ProductView{}, err
	}

	s.logger.Info("Produto cadastrado.", map[string]interface{}{"product_id": created.ID, "name": created.Name})
	return Normalize(NewView(created))
}

// UpdateProduct aplica uma atualização parcial a um produto existente.
func (s *Service) UpdateProduct(ctx context.Context, id string, update domain.ProductUpdate) (domain.ProductView, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ProductView{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return domain.ProductView{}, apperror.NewValidationError("O nome do produto não pode ser vazio.")
	}
	if update.Category != nil && !domain.IsValidCategory(*update.Category) {
		return domain.ProductView{}, apperror.NewValidationError(
			fmt.Sprintf("Categoria '%s' não reconhecida.", *update.Category))
	}
	if update.Price != nil && *update.Price < 0 {
		return domain.ProductView{}, apperror.NewValidationError("O preço do produto não pode ser negativo.")
	}
	if update.Stock != nil && *update.Stock < 0 {
		return domain.ProductView{}, apperror.NewValidationError("O estoque não pode ser negativo.")
	}

	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return domain.ProductView{}, err
	}

	return Normalize(NewView(updated))
}

// DeleteProduct remove um produto e, em cascata, seu histórico de vendas.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	return s.repo.Delete(ctx, id)
}
