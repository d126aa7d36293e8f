package ledger

import (
	"context"
	"net/http"

	"bookstock/internal/domain"
	"bookstock/internal/pkg/logger"
	"bookstock/internal/pkg/middleware"
	"bookstock/internal/pkg/response"
)

// LedgerService define o contrato que o Handler espera da camada de Serviço.
type LedgerService interface {
	ApplyMovement(ctx context.Context, m domain.Movement) (domain.Transaction, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	ListAlerts(ctx context.Context) ([]domain.InventoryItem, error)
}

// Handler agrupa os handlers de movimentação de estoque.
type Handler struct {
	Service LedgerService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc LedgerService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// ApplyMovementHandler lida com a requisição POST /v1/movements.
// @Summary Registra uma movimentação
// @Description Aplica RECEIPT, SHIPMENT, DAMAGE ou RETURN ao estoque e grava a transação.
// @Tags ledger
// @Accept json
// @Produce json
// @Param movement body domain.Movement true "Movimentação"
// @Success 201 {object} domain.Transaction "Transação registrada"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Título desconhecido"
// @Failure 409 {object} domain.ErrorResponse "Estoque insuficiente"
// @Security ApiKeyAuth
// @Router /movements [post]
func (h *Handler) ApplyMovementHandler(w http.ResponseWriter, r *http.Request) {
	var m domain.Movement
	if err := response.Decode(r, &m); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	if claims, ok := middleware.GetOperatorClaimsFromContext(r.Context()); ok {
		h.Logger.Info("Movimentação solicitada.", map[string]interface{}{
			"operator": claims.Username,
			"type":     string(m.Type),
			"title":    m.Title,
			"quantity": m.Quantity,
		})
	}

	tx, err := h.Service.ApplyMovement(r.Context(), m)
	response.Write(w, r, h.Logger, tx, err, http.StatusCreated)
}

// ListTransactionsHandler lida com a requisição GET /v1/transactions.
// @Summary Lista o histórico de transações
// @Tags ledger
// @Produce json
// @Success 200 {array} domain.Transaction "Transações, da mais recente para a mais antiga"
// @Security ApiKeyAuth
// @Router /transactions [get]
func (h *Handler) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Service.ListTransactions(r.Context())
	if txs == nil {
		txs = []domain.Transaction{}
	}
	response.Write(w, r, h.Logger, txs, err, http.StatusOK)
}

// ListAlertsHandler lida com a requisição GET /v1/alerts.
// @Summary Lista títulos com estoque baixo
// @Tags ledger
// @Produce json
// @Success 200 {array} domain.InventoryItem "Itens com quantidade menor ou igual ao estoque de segurança"
// @Security ApiKeyAuth
// @Router /alerts [get]
func (h *Handler) ListAlertsHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListAlerts(r.Context())
	if items == nil {
		items = []domain.InventoryItem{}
	}
	response.Write(w, r, h.Logger, items, err, http.StatusOK)
}
