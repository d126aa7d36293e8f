package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bookstock/internal/domain"
	apperror "bookstock/internal/errors"
	"bookstock/internal/pkg/logger"
)

// OperatorRepository busca credenciais de operadores na tabela operators.
type OperatorRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewOperatorRepository cria uma nova instância do OperatorRepository, injetando o DB.
func NewOperatorRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *OperatorRepository {
	return &OperatorRepository{DB: db, DBTimeout: dbTimeout, logger: logger}
}

// FindOperator busca um operador pelo nome de usuário.
func (r *OperatorRepository) FindOperator(ctx context.Context, username string) (domain.Operator, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var op domain.Operator
	var role string
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT username, password_hash, role FROM operators WHERE username = $1`, username,
	).Scan(&op.Username, &op.PasswordHash, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Info("Operador não encontrado no DB.", map[string]interface{}{"username": username})
			return domain.Operator{}, apperror.NewNotFoundError(fmt.Sprintf("Operador '%s' não encontrado", username))
		}
		r.logger.Error("Falha ao buscar operador no DB.", err)
		return domain.Operator{}, apperror.NewDBError("failed to find operator (DB)", err)
	}
	op.Role = domain.Role(role)
	return op, nil
}
