package reportservice

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"bookstock/internal/domain"
	"bookstock/internal/pkg/cache"
	"bookstock/internal/pkg/logger"
	"bookstock/internal/pkg/pdf"
)

// Chaves dos relatórios no cache.
const (
	keyMonthlySales = "report:monthly-sales"
	keyValuation    = "report:valuation"
	keyReturnRates  = "report:return-rates"
)

// Repository define o que os relatórios leem do armazenamento.
type Repository interface {
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// Renderer gera o documento PDF do relatório consolidado.
type Renderer interface {
	Render(ctx context.Context, rep pdf.Report) ([]byte, error)
}

// Service calcula os relatórios de vendas, valor e devoluções.
// Os resultados ficam em cache até a próxima movimentação.
type Service struct {
	repo     Repository
	cache    cache.Client
	renderer Renderer
	ttl      time.Duration
	logger   logger.Logger
	now      func() time.Time
}

// NewService cria o serviço de relatórios. Com cacheClient nil, usa cache.NopClient.
func NewService(repo Repository, cacheClient cache.Client, renderer Renderer, ttl time.Duration, logger logger.Logger) *Service {
	if cacheClient == nil {
		cacheClient = cache.NopClient{}
	}
	return &Service{
		repo:     repo,
		cache:    cacheClient,
		renderer: renderer,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// MonthlySales devolve as vendas por mês e título, ordenadas.
func (s *Service) MonthlySales(ctx context.Context) ([]domain.MonthlySalesRow, error) {
	return cached(ctx, s, keyMonthlySales, func() ([]domain.MonthlySalesRow, error) {
		txs, err := s.repo.ListTransactions(ctx)
		if err != nil {
			return nil, err
		}
		return slices.Collect(domain.MonthlySales(txs)), nil
	})
}

// InventoryValuation devolve o valor total do estoque.
func (s *Service) InventoryValuation(ctx context.Context) (domain.Valuation, error) {
	return cached(ctx, s, keyValuation, func() (domain.Valuation, error) {
		items, err := s.repo.ListItems(ctx)
		if err != nil {
			return domain.Valuation{}, err
		}
		return domain.Valuation{Total: domain.InventoryValuation(items)}, nil
	})
}

// ReturnRates devolve a taxa de devolução por parceiro.
func (s *Service) ReturnRates(ctx context.Context) (map[string]domain.ReturnRate, error) {
	return cached(ctx, s, keyReturnRates, func() (map[string]domain.ReturnRate, error) {
		txs, err := s.repo.ListTransactions(ctx)
		if err != nil {
			return nil, err
		}
		return domain.ReturnRates(txs), nil
	})
}

// Invalidate descarta os relatórios em cache. Falhas só são registradas:
// o TTL limita o tempo de vida de um valor desatualizado.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, keyMonthlySales, keyValuation, keyReturnRates); err != nil {
		s.logger.Warn("Falha ao invalidar relatórios em cache.", map[string]interface{}{"error": err.Error()})
	}
}

// RenderPDF monta o relatório consolidado em PDF.
func (s *Service) RenderPDF(ctx context.Context) ([]byte, error) {
	sales, err := s.MonthlySales(ctx)
	if err != nil {
		return nil, err
	}
	valuation, err := s.InventoryValuation(ctx)
	if err != nil {
		return nil, err
	}
	rates, err := s.ReturnRates(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := s.renderer.Render(ctx, pdf.Report{
		GeneratedAt:  s.now(),
		Valuation:    valuation.Total,
		MonthlySales: sales,
		ReturnRates:  rates,
	})
	if err != nil {
		s.logger.Error("Falha ao gerar relatório PDF.", err)
		return nil, err
	}
	return doc, nil
}

// cached lê key do cache; em miss (ou falha do cache) calcula com compute e grava o resultado.
func cached[T any](ctx context.Context, s *Service, key string, compute func() (T, error)) (T, error) {
	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal([]byte(raw), &v); jsonErr == nil {
			s.logger.Debug("Relatório servido do cache.", map[string]interface{}{"key": key})
			return v, nil
		}
		s.logger.Warn("Entrada de cache corrompida; recalculando.", map[string]interface{}{"key": key})
	case !errors.Is(err, cache.ErrCacheMiss):
		s.logger.Warn("Cache indisponível; calculando direto.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	v, err := compute()
	if err != nil {
		s.logger.Error("Falha ao calcular relatório.", err)
		var zero T
		return zero, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("Falha ao gravar relatório no cache.", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return v, nil
}
