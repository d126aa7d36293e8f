package inventory

import (
	"context"
	"net/http"

	"bookstock/internal/domain"
	"bookstock/internal/pkg/logger"
	"bookstock/internal/pkg/response"
)

// InventoryService define o contrato que o Handler espera da camada de Serviço.
type InventoryService interface {
	Search(ctx context.Context, term string) ([]domain.InventoryItem, error)
	AddItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)
}

// Handler agrupa os handlers do catálogo.
type Handler struct {
	Service InventoryService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc InventoryService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// SearchHandler lida com a requisição GET /v1/inventory.
// @Summary Consulta o estoque
// @Description Lista os títulos cujo título ou ISBN contém o termo informado. Sem termo, lista tudo.
// @Tags inventory
// @Produce json
// @Param q query string false "Trecho do título ou ISBN"
// @Success 200 {array} domain.InventoryItem "Itens encontrados"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /inventory [get]
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Search(r.Context(), r.URL.Query().Get("q"))
	if items == nil {
		items = []domain.InventoryItem{}
	}
	response.Write(w, r, h.Logger, items, err, http.StatusOK)
}

// CreateItemHandler lida com a requisição POST /v1/inventory.
// @Summary Cadastra um título
// @Tags inventory
// @Accept json
// @Produce json
// @Param item body domain.InventoryItem true "Título, ISBN, preço, quantidade e estoque de segurança"
// @Success 201 {object} domain.InventoryItem "Item cadastrado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Título já cadastrado"
// @Security ApiKeyAuth
// @Router /inventory [post]
func (h *Handler) CreateItemHandler(w http.ResponseWriter, r *http.Request) {
	var item domain.InventoryItem
	if err := response.Decode(r, &item); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.AddItem(r.Context(), item)
	response.Write(w, r, h.Logger, created, err, http.StatusCreated)
}
