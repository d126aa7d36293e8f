package inventoryservice

import (
	"context"
	"strings"

	"bookstock/internal/domain"
	apperror "bookstock/internal/errors"
	"bookstock/internal/pkg/logger"
)

// Repository define o contrato que o Serviço de Inventário espera da camada de Persistência.
type Repository interface {
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)
	CreateItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)
}

// ReportInvalidator é notificado após cada item cadastrado (o valor do estoque muda).
type ReportInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service consulta o estoque e cadastra títulos no catálogo.
type Service struct {
	repo        Repository
	invalidator ReportInvalidator
	logger      logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Inventário.
// invalidator pode ser nil.
func NewService(repo Repository, invalidator ReportInvalidator, logger logger.Logger) *Service {
	return &Service{repo: repo, invalidator: invalidator, logger: logger}
}

// Search devolve os itens cujo título ou ISBN contém term (vazio = todos).
func (s *Service) Search(ctx context.Context, term string) ([]domain.InventoryItem, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar inventário.", err)
		return nil, err
	}
	return domain.FilterItems(items, term), nil
}

// AddItem cadastra um título no catálogo.
func (s *Service) AddItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	item.Title = strings.TrimSpace(item.Title)
	item.ISBN = strings.TrimSpace(item.ISBN)

	if item.Title == "" {
		return domain.InventoryItem{}, apperror.NewMissingFieldError("title")
	}
	if item.ISBN == "" {
		return domain.InventoryItem{}, apperror.NewMissingFieldError("isbn")
	}
	if item.Price.IsNegative() {
		return domain.InventoryItem{}, apperror.NewValidationError("O preço não pode ser negativo.")
	}
	if item.Quantity < 0 || item.SafetyStock < 0 {
		return domain.InventoryItem{}, apperror.NewValidationError("Quantidade e estoque de segurança não podem ser negativos.")
	}

	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		s.logger.Warn("Falha ao cadastrar item.", map[string]interface{}{"title": item.Title, "error": err.Error()})
		return domain.InventoryItem{}, err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
	return created, nil
}
