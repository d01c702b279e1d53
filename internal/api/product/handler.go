package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
	"govendas/internal/pkg/middleware"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	CreateProduct(ctx context.Context, product domain.Product) (domain.ProductView, error)
	GetProducts(ctx context.Context) ([]domain.ProductView, error)
	GetProductByID(ctx context.Context, id string) (domain.ProductView, error)
	UpdateProduct(ctx context.Context, id string, update domain.ProductUpdate) (domain.ProductView, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		// Sucesso
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)

		h.Logger.Info("Requisição concluída com sucesso", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	// TRATAMENTO DE ERROS
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		// Erros de cliente (4xx) são logged como debug
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// ProductsHandler lida com a coleção /v1/products (POST cria, GET lista).
// @Summary Lista e cria produtos
// @Tags products
// @Accept json
// @Produce json
// @Success 200 {array} domain.ProductView
// @Success 201 {object} domain.ProductView
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /v1/products [get]
func (h *Handler) ProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		products, err := h.Service.GetProducts(ctx)
		h.handleServiceResponse(w, r, products, err, http.StatusOK)

	case http.MethodPost:
		if claims, ok := middleware.GetUserClaimsFromContext(ctx); ok {
			h.Logger.Debug("Criação de produto solicitada por", map[string]interface{}{
				"user_id": claims.UserID,
				"role":    claims.Role,
			})
		}

		var product domain.Product
		if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
			return
		}

		newProduct, err := h.Service.CreateProduct(ctx, product)
		h.handleServiceResponse(w, r, newProduct, err, http.StatusCreated)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// ProductByIDHandler lida com /v1/products/{id} (GET, PUT, DELETE).
// @Summary Busca, atualiza ou remove um produto pelo ID
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "ID do produto (UUID)"
// @Success 200 {object} domain.ProductView
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /v1/products/{id} [get]
func (h *Handler) ProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Extrair ID do último segmento da URL: /v1/products/{id}
	path := strings.Trim(r.URL.Path, "/")
	segments := strings.Split(path, "/")
	if len(segments) != 3 || segments[2] == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formato de URL inválido ou ID ausente."), 0)
		return
	}
	productID := segments[2]

	switch r.Method {
	case http.MethodGet:
		product, err := h.Service.GetProductByID(ctx, productID)
		h.handleServiceResponse(w, r, product, err, http.StatusOK)

	case http.MethodPut:
		var update domain.ProductUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
			return
		}
		updated, err := h.Service.UpdateProduct(ctx, productID, update)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)

	case http.MethodDelete:
		err := h.Service.DeleteProduct(ctx, productID)
		h.handleServiceResponse(w, r, map[string]bool{"success": err == nil}, err, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
