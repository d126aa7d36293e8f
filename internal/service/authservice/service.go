package authservice

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"bookstock/internal/domain"
	apperror "bookstock/internal/errors"
	"bookstock/internal/pkg/logger"
)

// CredentialStore é a origem das credenciais dos operadores.
type CredentialStore interface {
	FindOperator(ctx context.Context, username string) (domain.Operator, error)
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(username string, role string) (string, error)
}

// Service autentica operadores e emite tokens de sessão.
type Service struct {
	creds    CredentialStore
	tokenSvc TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do Service, injetando credenciais e tokens.
func NewService(creds CredentialStore, tokenSvc TokenService, logger logger.Logger) *Service {
	return &Service{creds: creds, tokenSvc: tokenSvc, logger: logger}
}

// Login verifica usuário e senha e devolve um JWT assinado.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (string, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return "", apperror.NewUnauthorizedError("Usuário e senha são obrigatórios.")
	}

	op, err := s.creds.FindOperator(ctx, username)
	if err != nil {
		// NotFound vira 401 para não revelar quais usuários existem.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			s.logger.Info("Login recusado: operador desconhecido.", map[string]interface{}{"username": username})
			return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("Login recusado: senha incorreta.", map[string]interface{}{"username": username})
		return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.tokenSvc.GenerateToken(op.Username, string(op.Role))
	if err != nil {
		s.logger.Error("Falha ao gerar token.", err)
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Operador autenticado.", map[string]interface{}{"username": op.Username, "role": string(op.Role)})
	return tokenString, nil
}
