package auth

import (
	"context"
	"net/http"

	"bookstock/internal/domain"
	"bookstock/internal/pkg/logger"
	"bookstock/internal/pkg/response"
)

// AuthService define o contrato que o Handler espera da camada de Serviço.
type AuthService interface {
	Login(ctx context.Context, req domain.LoginRequest) (string, error)
}

// LoginResponse carrega o token emitido.
type LoginResponse struct {
	Token string `json:"token"`
}

// Handler agrupa os handlers de autenticação.
type Handler struct {
	Service AuthService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AuthService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// LoginHandler lida com a requisição POST /v1/login.
// @Summary Autentica um operador
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body domain.LoginRequest true "Usuário e senha"
// @Success 200 {object} LoginResponse "Token JWT"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	tok, err := h.Service.Login(r.Context(), req)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.Write(w, r, h.Logger, LoginResponse{Token: tok}, nil, http.StatusOK)
}
