package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"
	"time"

	"bookstock/internal/domain"
	apperror "bookstock/internal/errors"
	"bookstock/internal/pkg/logger"
)

// Store persiste inventário, transações e pedidos em arquivos CSV.
// Cada operação carrega os datasets do disco; mutações são gravadas com commit via journal.
// O mutex serializa os escritores do processo (fronteira de escritor único).
type Store struct {
	dir    string
	mu     sync.Mutex
	logger logger.Logger

	// Now fornece o horário das transações e pedidos. Substituível em testes.
	Now func() time.Time

	rename  func(oldpath, newpath string) error
	pending []string // datasets de um commit decidido ainda não renomeados
}

// Open prepara o diretório de dados: conclui commits interrompidos e cria
// os arquivos ausentes apenas com o cabeçalho.
func Open(dir string, log logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("criar diretório de dados: %w", err)
	}

	s := &Store{dir: dir, logger: log, Now: time.Now, rename: os.Rename}

	if err := s.recover(); err != nil {
		return nil, err
	}

	for name := range schemas {
		_, err := os.Stat(s.path(name))
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("verificar %s: %w", name, err)
		}
		if err := s.commit(fileChange{name: name}); err != nil {
			return nil, fmt.Errorf("criar %s: %w", name, err)
		}
		s.logger.Info("Dataset criado com cabeçalho padrão.", map[string]interface{}{"file": name})
	}

	s.logger.Info("Armazenamento CSV pronto.", map[string]interface{}{"dir": dir})
	return s, nil
}

// load lê as linhas de um dataset (sem cabeçalho), validando o cabeçalho.
func (s *Store) load(name string) ([][]string, error) {
	if err := s.settle(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, apperror.NewStorageError(fmt.Sprintf("Falha ao abrir %s", name), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(schemas[name])
	records, err := r.ReadAll()
	if err != nil {
		return nil, apperror.NewStorageError(fmt.Sprintf("Falha ao ler %s", name), err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if !slices.Equal(records[0], schemas[name]) {
		return nil, apperror.NewInternalError(fmt.Sprintf("Cabeçalho inesperado em %s: %v", name, records[0]), nil)
	}
	return records[1:], nil
}

func (s *Store) loadItems() ([]domain.InventoryItem, error) {
	rows, err := s.load(inventoryFile)
	if err != nil {
		return nil, err
	}
	items := make([]domain.InventoryItem, 0, len(rows))
	for i, rec := range rows {
		item, err := decodeItem(rec)
		if err != nil {
			return nil, apperror.NewStorageError(fmt.Sprintf("Linha %d inválida em %s", i+2, inventoryFile), err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Store) loadTransactions() ([]domain.Transaction, error) {
	rows, err := s.load(transactionsFile)
	if err != nil {
		return nil, err
	}
	txs := make([]domain.Transaction, 0, len(rows))
	for i, rec := range rows {
		tx, err := decodeTransaction(rec)
		if err != nil {
			return nil, apperror.NewStorageError(fmt.Sprintf("Linha %d inválida em %s", i+2, transactionsFile), err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (s *Store) loadOrders() ([]domain.Order, error) {
	rows, err := s.load(ordersFile)
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(rows))
	for i, rec := range rows {
		o, err := decodeOrder(rec)
		if err != nil {
			return nil, apperror.NewStorageError(fmt.Sprintf("Linha %d inválida em %s", i+2, ordersFile), err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// ListItems devolve todos os itens do inventário na ordem do arquivo.
func (s *Store) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadItems()
}

// FindItem busca um item pelo título exato.
func (s *Store) FindItem(ctx context.Context, title string) (domain.InventoryItem, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	idx := slices.IndexFunc(items, func(it domain.InventoryItem) bool { return it.Title == title })
	if idx < 0 {
		return domain.InventoryItem{}, apperror.NewUnknownItemError(title)
	}
	return items[idx], nil
}

// CreateItem cadastra um novo título. Títulos duplicados geram ConflictError.
func (s *Store) CreateItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.InventoryItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadItems()
	if err != nil {
		return domain.InventoryItem{}, err
	}
	if slices.ContainsFunc(items, func(it domain.InventoryItem) bool { return it.Title == item.Title }) {
		return domain.InventoryItem{}, apperror.NewConflictError(fmt.Sprintf("O título '%s' já está cadastrado.", item.Title))
	}

	items = append(items, item)
	if err := s.commit(fileChange{name: inventoryFile, rows: encodeItems(items)}); err != nil {
		s.logger.Error("Falha ao gravar novo item no inventário.", err)
		return domain.InventoryItem{}, apperror.NewStorageError("Falha ao gravar inventário", err)
	}

	s.logger.Info("Item cadastrado no inventário.", map[string]interface{}{"title": item.Title, "isbn": item.ISBN})
	return item, nil
}

// RecordMovement aplica a movimentação ao item e anexa a transação.
// Inventário e transações são gravados no mesmo commit; uma rejeição não toca em nenhum arquivo.
func (s *Store) RecordMovement(ctx context.Context, m domain.Movement) (domain.Transaction, domain.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.Transaction{}, domain.InventoryItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadItems()
	if err != nil {
		return domain.Transaction{}, domain.InventoryItem{}, err
	}
	idx := slices.IndexFunc(items, func(it domain.InventoryItem) bool { return it.Title == m.Title })
	if idx < 0 {
		return domain.Transaction{}, domain.InventoryItem{}, apperror.NewUnknownItemError(m.Title)
	}

	updated, tx, err := domain.ApplyMovement(items[idx], m, s.Now())
	if err != nil {
		s.logger.Warn("Movimentação rejeitada.", map[string]interface{}{
			"title":            m.Title,
			"movement_type":    m.Type,
			"quantity":         m.Quantity,
			"current_quantity": items[idx].Quantity,
		})
		return domain.Transaction{}, domain.InventoryItem{}, err
	}

	txRows, err := s.load(transactionsFile)
	if err != nil {
		return domain.Transaction{}, domain.InventoryItem{}, err
	}

	items[idx] = updated
	err = s.commit(
		fileChange{name: inventoryFile, rows: encodeItems(items)},
		fileChange{name: transactionsFile, rows: append(txRows, encodeTransaction(tx))},
	)
	if err != nil {
		s.logger.Error("Falha ao gravar movimentação.", err)
		return domain.Transaction{}, domain.InventoryItem{}, apperror.NewStorageError("Falha ao gravar movimentação", err)
	}

	s.logger.Info("Movimentação gravada.", map[string]interface{}{
		"title":         tx.Title,
		"movement_type": tx.Type,
		"quantity":      tx.Quantity,
		"new_quantity":  updated.Quantity,
	})
	return tx, updated, nil
}

// ListTransactions devolve o histórico na ordem de gravação.
func (s *Store) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTransactions()
}

// SaveOrder anexa um pedido ao dataset de pedidos. O Timestamp é preenchido aqui se vier zerado.
func (s *Store) SaveOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.Timestamp.IsZero() {
		o.Timestamp = s.Now().Truncate(time.Second)
	}

	rows, err := s.load(ordersFile)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.commit(fileChange{name: ordersFile, rows: append(rows, encodeOrder(o))}); err != nil {
		s.logger.Error("Falha ao gravar pedido.", err)
		return domain.Order{}, apperror.NewStorageError("Falha ao gravar pedido", err)
	}

	s.logger.Info("Pedido gravado.", map[string]interface{}{"partner": o.Partner, "title": o.Title, "quantity": o.Quantity})
	return o, nil
}

// ListOrders devolve os pedidos na ordem de gravação.
func (s *Store) ListOrders(ctx context.Context) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadOrders()
}

func encodeItems(items []domain.InventoryItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, encodeItem(item))
	}
	return rows
}
