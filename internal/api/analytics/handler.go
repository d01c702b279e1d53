package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
)

// AnalyticsService define o contrato que o Handler espera da camada de Serviço.
type AnalyticsService interface {
	Report(ctx context.Context) (domain.AnalyticsReport, error)
	Summarize(ctx context.Context) (domain.DashboardStats, error)
}

// Handler expõe o relatório de analytics e os contadores do painel.
type Handler struct {
	Service AnalyticsService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AnalyticsService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)
	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
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

// ReportHandler lida com a requisição GET /v1/analytics/report.
// @Summary Relatório completo de analytics
// @Description KPIs, estoque por categoria, saúde de estoque, tendência de
// @Description receita mensal e ranking de mais vendidos, calculados sobre
// @Description o mesmo snapshot da população.
// @Tags analytics
// @Produce json
// @Success 200 {object} domain.AnalyticsReport
// @Security BearerAuth
// @Router /v1/analytics/report [get]
func (h *Handler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	report, err := h.Service.Report(r.Context())
	h.handleServiceResponse(w, r, report, err, http.StatusOK)
}

// StatsHandler lida com a requisição GET /v1/analytics/stats.
// @Summary Contadores do painel
// @Tags analytics
// @Produce json
// @Success 200 {object} domain.DashboardStats
// @Security BearerAuth
// @Router /v1/analytics/stats [get]
func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.Service.Summarize(r.Context())
	h.handleServiceResponse(w, r, stats, err, http.StatusOK)
}
