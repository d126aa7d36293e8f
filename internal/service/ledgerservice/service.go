package ledgerservice

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"bookstock/internal/domain"
	apperror "bookstock/internal/errors"
	"bookstock/internal/pkg/logger"
)

// Repository define o contrato que o Serviço do Razão espera da camada de Persistência.
// RecordMovement deve ser atômico: atualiza o item e anexa a transação, ou não faz nada.
type Repository interface {
	RecordMovement(ctx context.Context, m domain.Movement) (domain.Transaction, domain.InventoryItem, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)
}

// ReportInvalidator é notificado após cada movimentação gravada.
type ReportInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service aplica movimentações de estoque e expõe o histórico e os alertas.
type Service struct {
	repo        Repository
	invalidator ReportInvalidator
	logger      logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço do Razão.
// invalidator pode ser nil.
func NewService(repo Repository, invalidator ReportInvalidator, logger logger.Logger) *Service {
	return &Service{repo: repo, invalidator: invalidator, logger: logger}
}

// ApplyMovement valida a entrada e grava a movimentação.
func (s *Service) ApplyMovement(ctx context.Context, m domain.Movement) (domain.Transaction, error) {
	s.logger.Debug("Iniciando movimentação no serviço.", map[string]interface{}{
		"title":         m.Title,
		"movement_type": m.Type,
		"quantity":      m.Quantity,
	})

	m.Title = strings.TrimSpace(m.Title)
	m.Partner = strings.TrimSpace(m.Partner)
	if m.Title == "" {
		return domain.Transaction{}, apperror.NewMissingFieldError("title")
	}
	if m.Quantity <= 0 {
		return domain.Transaction{}, apperror.NewInvalidQuantityError(m.Quantity)
	}
	mt, err := domain.ParseMovementType(string(m.Type))
	if err != nil {
		return domain.Transaction{}, err
	}
	m.Type = mt

	tx, item, err := s.repo.RecordMovement(ctx, m)
	if err != nil {
		var appErr apperror.AppError
		if errors.As(err, &appErr) {
			return domain.Transaction{}, err
		}
		s.logger.Error("Falha ao gravar movimentação no repositório.", err)
		return domain.Transaction{}, apperror.NewInternalError("Falha interna ao gravar movimentação.", err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}

	if item.IsLowStock() {
		s.logger.Warn("Item no estoque de segurança ou abaixo.", map[string]interface{}{
			"title":        item.Title,
			"quantity":     item.Quantity,
			"safety_stock": item.SafetyStock,
		})
	}

	s.logger.Info("Movimentação aplicada com sucesso.", map[string]interface{}{
		"title":         tx.Title,
		"movement_type": tx.Type,
		"quantity":      tx.Quantity,
		"new_quantity":  item.Quantity,
	})
	return tx, nil
}

// ListTransactions devolve o histórico completo, do mais recente para o mais antigo.
func (s *Service) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar transações.", err)
		return nil, err
	}
	slices.SortStableFunc(txs, func(a, b domain.Transaction) int {
		return cmp.Compare(b.Timestamp.UnixNano(), a.Timestamp.UnixNano())
	})
	return txs, nil
}

// ListAlerts devolve os itens no estoque de segurança ou abaixo dele.
func (s *Service) ListAlerts(ctx context.Context) ([]domain.InventoryItem, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar itens para alertas.", err)
		return nil, err
	}
	return domain.LowStockItems(items), nil
}
