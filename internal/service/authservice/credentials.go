package authservice

import (
	"context"
	"errors"
	"fmt"

	"bookstock/internal/domain"
	apperror "bookstock/internal/errors"
)

// StaticCredentials é o operador administrador definido na configuração.
type StaticCredentials struct {
	Username     string
	PasswordHash string
}

// FindOperator devolve o administrador configurado.
func (c StaticCredentials) FindOperator(_ context.Context, username string) (domain.Operator, error) {
	if c.Username == "" || c.PasswordHash == "" || username != c.Username {
		return domain.Operator{}, apperror.NewNotFoundError(fmt.Sprintf("Operador '%s' não encontrado", username))
	}
	return domain.Operator{Username: c.Username, PasswordHash: c.PasswordHash, Role: domain.RoleAdmin}, nil
}

// Chain consulta as origens em ordem; NotFound passa para a próxima.
type Chain []CredentialStore

func (c Chain) FindOperator(ctx context.Context, username string) (domain.Operator, error) {
	for _, store := range c {
		op, err := store.FindOperator(ctx, username)
		if err == nil {
			return op, nil
		}
		var notFoundErr *apperror.NotFoundError
		if !errors.As(err, &notFoundErr) {
			return domain.Operator{}, err
		}
	}
	return domain.Operator{}, apperror.NewNotFoundError(fmt.Sprintf("Operador '%s' não encontrado", username))
}
