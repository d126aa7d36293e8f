package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"bookstock/internal/domain"
	apperror "bookstock/internal/errors"
	"bookstock/internal/pkg/logger"
)

// uniqueViolation é o código SQLSTATE do PostgreSQL para chave duplicada.
const uniqueViolation = "23505"

// Store implementa os repositórios de inventário, transações e pedidos sobre PostgreSQL.
type Store struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger

	// Now fornece o horário das transações e pedidos.
	Now func() time.Time
}

// NewStore cria e retorna uma nova instância do Store PostgreSQL.
func NewStore(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *Store {
	return &Store{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
		Now:       time.Now,
	}
}

const selectItemSQL = `
        SELECT title, price, isbn, quantity, safety_stock, version
        FROM inventory_items`

// ListItems devolve todos os itens do inventário ordenados por título.
func (r *Store) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, selectItemSQL+` ORDER BY title`)
	if err != nil {
		r.logger.Error("Falha ao listar inventário no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar inventário", err)
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0)
	for rows.Next() {
		var item domain.InventoryItem
		var version int
		if err := rows.Scan(&item.Title, &item.Price, &item.ISBN, &item.Quantity, &item.SafetyStock, &version); err != nil {
			return nil, apperror.NewDBError("Falha ao ler item do inventário", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar inventário", err)
	}
	return items, nil
}

// FindItem busca um item pelo título exato.
func (r *Store) FindItem(ctx context.Context, title string) (domain.InventoryItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var item domain.InventoryItem
	var version int
	err := r.DB.QueryRowContext(ctxTimeout, selectItemSQL+` WHERE title = $1`, title).Scan(
		&item.Title, &item.Price, &item.ISBN, &item.Quantity, &item.SafetyStock, &version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InventoryItem{}, apperror.NewUnknownItemError(title)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar item no DB.", err)
		return domain.InventoryItem{}, apperror.NewDBError("Falha ao buscar item", err)
	}
	return item, nil
}

// CreateItem cadastra um novo título.
func (r *Store) CreateItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO inventory_items (title, price, isbn, quantity, safety_stock, version)
        VALUES ($1, $2, $3, $4, $5, 1)`

	_, err := r.DB.ExecContext(ctxTimeout, query, item.Title, item.Price, item.ISBN, item.Quantity, item.SafetyStock)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.InventoryItem{}, apperror.NewConflictError(fmt.Sprintf("O título '%s' já está cadastrado.", item.Title))
		}
		r.logger.Error("Falha ao inserir item no DB.", err)
		return domain.InventoryItem{}, apperror.NewDBError("Falha ao cadastrar item", err)
	}

	r.logger.Info("Item cadastrado no inventário.", map[string]interface{}{"title": item.Title, "isbn": item.ISBN})
	return item, nil
}

// RecordMovement aplica a movimentação em uma única transação de banco:
// SELECT ... FOR UPDATE, UPDATE com controle de versão (OCC) e INSERT da transação.
func (r *Store) RecordMovement(ctx context.Context, m domain.Movement) (domain.Transaction, domain.InventoryItem, error) {
	r.logger.Debug("Iniciando movimentação no repositório.", map[string]interface{}{
		"title":         m.Title,
		"movement_type": m.Type,
		"quantity":      m.Quantity,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação para movimentação.", err)
		return domain.Transaction{}, domain.InventoryItem{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // Rollback em caso de erro

	// 1. Bloquear a linha do item e obter a versão atual.
	var current domain.InventoryItem
	var version int
	err = tx.QueryRowContext(ctxTimeout, selectItemSQL+` WHERE title = $1 FOR UPDATE`, m.Title).Scan(
		&current.Title, &current.Price, &current.ISBN, &current.Quantity, &current.SafetyStock, &version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transaction{}, domain.InventoryItem{}, apperror.NewUnknownItemError(m.Title)
	}
	if err != nil {
		r.logger.Error("Falha ao selecionar item para movimentação.", err)
		return domain.Transaction{}, domain.InventoryItem{}, apperror.NewDBError("Falha ao buscar item para movimentação", err)
	}

	// 2. Regra do razão (estoque nunca negativo).
	updated, record, err := domain.ApplyMovement(current, m, r.Now())
	if err != nil {
		r.logger.Warn("Movimentação rejeitada.", map[string]interface{}{
			"title":            m.Title,
			"current_quantity": current.Quantity,
			"quantity":         m.Quantity,
		})
		return domain.Transaction{}, domain.InventoryItem{}, err
	}

	// 3. Atualizar com OCC.
	result, err := tx.ExecContext(ctxTimeout, `
        UPDATE inventory_items
        SET quantity = $1, version = $2
        WHERE title = $3 AND version = $4`,
		updated.Quantity, version+1, updated.Title, version,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar quantidade do item.", err)
		return domain.Transaction{}, domain.InventoryItem{}, apperror.NewDBError("Falha ao atualizar estoque", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Transaction{}, domain.InventoryItem{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Falha no controle de concorrência otimista (OCC).", map[string]interface{}{"title": m.Title, "expected_version": version})
		return domain.Transaction{}, domain.InventoryItem{}, apperror.NewConflictError("O estoque foi modificado por outra operação. Tente novamente.")
	}

	// 4. Anexar a transação.
	_, err = tx.ExecContext(ctxTimeout, `
        INSERT INTO transactions (occurred_at, movement_type, partner, title, quantity, unit_price)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		record.Timestamp, string(record.Type), record.Partner, record.Title, record.Quantity, record.UnitPrice,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir transação.", err)
		return domain.Transaction{}, domain.InventoryItem{}, apperror.NewDBError("Falha ao registrar transação", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar movimentação.", err)
		return domain.Transaction{}, domain.InventoryItem{}, apperror.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Movimentação gravada.", map[string]interface{}{
		"title":         record.Title,
		"movement_type": record.Type,
		"new_quantity":  updated.Quantity,
		"new_version":   version + 1,
	})
	return record, updated, nil
}

// ListTransactions devolve o histórico na ordem de gravação.
func (r *Store) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `
        SELECT occurred_at, movement_type, partner, title, quantity, unit_price
        FROM transactions
        ORDER BY id`)
	if err != nil {
		r.logger.Error("Falha ao listar transações no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar transações", err)
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		var t domain.Transaction
		var mt string
		if err := rows.Scan(&t.Timestamp, &mt, &t.Partner, &t.Title, &t.Quantity, &t.UnitPrice); err != nil {
			return nil, apperror.NewDBError("Falha ao ler transação", err)
		}
		t.Type = domain.MovementType(mt)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar transações", err)
	}
	return txs, nil
}

// SaveOrder insere um pedido.
func (r *Store) SaveOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if o.Timestamp.IsZero() {
		o.Timestamp = r.Now().Truncate(time.Second)
	}

	_, err := r.DB.ExecContext(ctxTimeout, `
        INSERT INTO orders (occurred_at, partner, title, quantity, status)
        VALUES ($1, $2, $3, $4, $5)`,
		o.Timestamp, o.Partner, o.Title, o.Quantity, string(o.Status),
	)
	if err != nil {
		r.logger.Error("Falha ao inserir pedido no DB.", err)
		return domain.Order{}, apperror.NewDBError("Falha ao gravar pedido", err)
	}

	r.logger.Info("Pedido gravado.", map[string]interface{}{"partner": o.Partner, "title": o.Title, "quantity": o.Quantity})
	return o, nil
}

// ListOrders devolve os pedidos na ordem de gravação.
func (r *Store) ListOrders(ctx context.Context) ([]domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `
        SELECT occurred_at, partner, title, quantity, status
        FROM orders
        ORDER BY id`)
	if err != nil {
		r.logger.Error("Falha ao listar pedidos no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar pedidos", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		var status string
		if err := rows.Scan(&o.Timestamp, &o.Partner, &o.Title, &o.Quantity, &status); err != nil {
			return nil, apperror.NewDBError("Falha ao ler pedido", err)
		}
		o.Status = domain.OrderStatus(status)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar pedidos", err)
	}
	return orders, nil
}
