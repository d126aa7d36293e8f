package orderservice

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

// Repository define o contrato que o Serviço de Pedidos espera da camada de Persistência.
type Repository interface {
	FindItem(ctx context.Context, title string) (domain.InventoryItem, error)
	SaveOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// Service recebe pedidos de parceiros. Pedidos não movimentam estoque.
type Service struct {
	repo   Repository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Pedidos.
func NewService(repo Repository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SubmitOrder valida e grava um pedido com status PENDING.
func (s *Service) SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	partner := strings.TrimSpace(req.Partner)
	title := strings.TrimSpace(req.Title)

	if partner == "" {
		return domain.Order{}, apperror.NewMissingFieldError("partner")
	}
	if title == "" {
		return domain.Order{}, apperror.NewMissingFieldError("title")
	}
	if req.Quantity <= 0 {
		return domain.Order{}, apperror.NewInvalidQuantityError(req.Quantity)
	}

	// Só aceita títulos do catálogo.
	if _, err := s.repo.FindItem(ctx, title); err != nil {
		var unknown *apperror.UnknownItemError
		if !errors.As(err, &unknown) {
			s.logger.Error("Falha ao verificar título do pedido.", err)
		}
		return domain.Order{}, err
	}

	order, err := s.repo.SaveOrder(ctx, domain.Order{
		Partner:  partner,
		Title:    title,
		Quantity: req.Quantity,
		Status:   domain.OrderStatusPending,
	})
	if err != nil {
		s.logger.Error("Falha ao gravar pedido no repositório.", err)
		return domain.Order{}, err
	}

	s.logger.Info("Pedido recebido.", map[string]interface{}{
		"partner":  order.Partner,
		"title":    order.Title,
		"quantity": order.Quantity,
	})
	return order, nil
}

// ListOrders devolve os pedidos do mais recente para o mais antigo.
func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar pedidos.", err)
		return nil, err
	}
	slices.SortStableFunc(orders, func(a, b domain.Order) int {
		return cmp.Compare(b.Timestamp.UnixNano(), a.Timestamp.UnixNano())
	})
	return orders, nil
}
