package report

import (
	"context"
	"net/http"
	"strconv"

	"bookstock/internal/domain"
	"bookstock/internal/pkg/logger"
	"bookstock/internal/pkg/response"
)

// ReportService define o contrato que o Handler espera da camada de Serviço.
type ReportService interface {
	MonthlySales(ctx context.Context) ([]domain.MonthlySalesRow, error)
	InventoryValuation(ctx context.Context) (domain.Valuation, error)
	ReturnRates(ctx context.Context) (map[string]domain.ReturnRate, error)
	RenderPDF(ctx context.Context) ([]byte, error)
}

// Handler agrupa os handlers de relatórios.
type Handler struct {
	Service ReportService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ReportService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// MonthlySalesHandler lida com a requisição GET /v1/reports/monthly-sales.
// @Summary Vendas mensais por título
// @Tags reports
// @Produce json
// @Success 200 {array} domain.MonthlySalesRow "Quantidade expedida por mês e título"
// @Security ApiKeyAuth
// @Router /reports/monthly-sales [get]
func (h *Handler) MonthlySalesHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.MonthlySales(r.Context())
	if rows == nil {
		rows = []domain.MonthlySalesRow{}
	}
	response.Write(w, r, h.Logger, rows, err, http.StatusOK)
}

// ValuationHandler lida com a requisição GET /v1/reports/valuation.
// @Summary Valor total do estoque
// @Tags reports
// @Produce json
// @Success 200 {object} domain.Valuation "Soma de quantidade * preço"
// @Security ApiKeyAuth
// @Router /reports/valuation [get]
func (h *Handler) ValuationHandler(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.InventoryValuation(r.Context())
	response.Write(w, r, h.Logger, v, err, http.StatusOK)
}

// ReturnRatesHandler lida com a requisição GET /v1/reports/return-rates.
// @Summary Taxa de devolução por parceiro
// @Tags reports
// @Produce json
// @Success 200 {object} map[string]domain.ReturnRate "Taxa (%) por parceiro"
// @Security ApiKeyAuth
// @Router /reports/return-rates [get]
func (h *Handler) ReturnRatesHandler(w http.ResponseWriter, r *http.Request) {
	rates, err := h.Service.ReturnRates(r.Context())
	response.Write(w, r, h.Logger, rates, err, http.StatusOK)
}

// PDFHandler lida com a requisição GET /v1/reports/pdf.
// @Summary Relatório consolidado em PDF
// @Tags reports
// @Produce application/pdf
// @Success 200 {file} file "Relatório"
// @Security ApiKeyAuth
// @Router /reports/pdf [get]
func (h *Handler) PDFHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Service.RenderPDF(r.Context())
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="relatorio-estoque.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		h.Logger.Error("Falha ao enviar PDF.", err)
	}
}
