package order

import (
	"context"
	"net/http"

	"bookstock/internal/domain"
	"bookstock/internal/pkg/logger"
	"bookstock/internal/pkg/response"
)

// OrderService define o contrato que o Handler espera da camada de Serviço.
type OrderService interface {
	SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// Handler agrupa os handlers de pedidos dos parceiros.
type Handler struct {
	Service OrderService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc OrderService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// SubmitOrderHandler lida com a requisição POST /v1/orders.
// @Summary Envia um pedido
// @Description Registra o pedido de um parceiro com status PENDING. Não altera o estoque.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body domain.OrderRequest true "Parceiro, título e quantidade"
// @Success 201 {object} domain.Order "Pedido registrado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Título desconhecido"
// @Failure 429 {string} string "Limite de requisições excedido"
// @Router /orders [post]
func (h *Handler) SubmitOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	order, err := h.Service.SubmitOrder(r.Context(), req)
	response.Write(w, r, h.Logger, order, err, http.StatusCreated)
}

// ListOrdersHandler lida com a requisição GET /v1/orders.
// @Summary Lista os pedidos recebidos
// @Tags orders
// @Produce json
// @Success 200 {array} domain.Order "Pedidos, do mais recente para o mais antigo"
// @Security ApiKeyAuth
// @Router /orders [get]
func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.ListOrders(r.Context())
	if orders == nil {
		orders = []domain.Order{}
	}
	response.Write(w, r, h.Logger, orders, err, http.StatusOK)
}
