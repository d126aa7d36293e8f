package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstock/internal/domain"
	apperror "bookstock/internal/errors"
	"bookstock/internal/pkg/logger"
)

var fixedNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.Local)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	s.Now = func() time.Time { return fixedNow }
	return s
}

func seedItem(t *testing.T, s *Store, title string, qty, safety int, price string) {
	t.Helper()
	_, err := s.CreateItem(context.Background(), domain.InventoryItem{
		Title:       title,
		Price:       decimal.RequireFromString(price),
		ISBN:        "978-89-0000-000-0",
		Quantity:    qty,
		SafetyStock: safety,
	})
	require.NoError(t, err)
}

func readFile(t *testing.T, s *Store, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(s.path(name))
	require.NoError(t, err)
	return data
}

func TestOpen_CreatesDatasetsWithHeader(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, "title,price,isbn,quantity,safety_stock\n", string(readFile(t, s, inventoryFile)))
	assert.Equal(t, "timestamp,movement_type,partner,title,quantity,unit_price\n", string(readFile(t, s, transactionsFile)))
	assert.Equal(t, "timestamp,partner,title,quantity,status\n", string(readFile(t, s, ordersFile)))

	items, err := s.ListItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOpen_KeepsExistingData(t *testing.T) {
	dir := t.TempDir()
	content := "title,price,isbn,quantity,safety_stock\nIntro to Systems,20000,978-1,5,3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, inventoryFile), []byte(content), 0o644))

	s, err := Open(dir, logger.Nop())
	require.NoError(t, err)

	item, err := s.FindItem(context.Background(), "Intro to Systems")
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
	assert.True(t, decimal.NewFromInt(20000).Equal(item.Price))
	assert.Equal(t, content, string(readFile(t, s, inventoryFile)))
}

func TestLoad_RejectsUnexpectedHeader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, inventoryFile), []byte("a,b,c,d,e\n"), 0o644))

	s, err := Open(dir, logger.Nop())
	require.NoError(t, err)

	_, err = s.ListItems(context.Background())
	require.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
}

func TestRecordMovement_ShipmentScenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, "Intro to Systems", 5, 3, "20000")

	tx, item, err := s.RecordMovement(ctx, domain.Movement{
		Title: "Intro to Systems", Type: domain.MovementShipment, Quantity: 3, Partner: "BookStoreA",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, 3, tx.Quantity)
	assert.Equal(t, "BookStoreA", tx.Partner)
	assert.True(t, decimal.NewFromInt(20000).Equal(tx.UnitPrice))

	txs, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, fixedNow, txs[0].Timestamp)

	// Segunda saída excede o estoque: nada muda.
	invBefore := readFile(t, s, inventoryFile)
	txBefore := readFile(t, s, transactionsFile)

	_, _, err = s.RecordMovement(ctx, domain.Movement{
		Title: "Intro to Systems", Type: domain.MovementShipment, Quantity: 10, Partner: "BookStoreA",
	})
	require.Error(t, err)
	assert.IsType(t, &apperror.InsufficientStockError{}, err)

	assert.Equal(t, invBefore, readFile(t, s, inventoryFile))
	assert.Equal(t, txBefore, readFile(t, s, transactionsFile))

	current, err := s.FindItem(ctx, "Intro to Systems")
	require.NoError(t, err)
	assert.Equal(t, 2, current.Quantity)
}

func TestRecordMovement_DamageForcesDisposalPartner(t *testing.T) {
	s := newTestStore(t)
	seedItem(t, s, "Compilers", 4, 1, "15000")

	tx, _, err := s.RecordMovement(context.Background(), domain.Movement{
		Title: "Compilers", Type: domain.MovementDamage, Quantity: 1, Partner: "BookStoreB",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DisposalPartner, tx.Partner)

	txs, err := s.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.DisposalPartner, txs[0].Partner)
}

func TestRecordMovement_UnknownItem(t *testing.T) {
	s := newTestStore(t)
	txBefore := readFile(t, s, transactionsFile)

	_, _, err := s.RecordMovement(context.Background(), domain.Movement{
		Title: "Missing", Type: domain.MovementReceipt, Quantity: 1,
	})

	require.Error(t, err)
	assert.IsType(t, &apperror.UnknownItemError{}, err)
	assert.Equal(t, txBefore, readFile(t, s, transactionsFile))
}

func TestRecordMovement_QuantityIsNetOfMovements(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedItem(t, s, "Networks", 10, 2, "9000")

	movements := []domain.Movement{
		{Title: "Networks", Type: domain.MovementReceipt, Quantity: 5},
		{Title: "Networks", Type: domain.MovementShipment, Quantity: 8, Partner: "A"},
		{Title: "Networks", Type: domain.MovementReturn, Quantity: 2, Partner: "A"},
		{Title: "Networks", Type: domain.MovementDamage, Quantity: 1},
		{Title: "Networks", Type: domain.MovementShipment, Quantity: 50, Partner: "B"}, // rejeitada
	}
	for _, m := range movements {
		_, _, _ = s.RecordMovement(ctx, m)
	}

	item, err := s.FindItem(ctx, "Networks")
	require.NoError(t, err)
	assert.Equal(t, 10+5-8+2-1, item.Quantity)

	txs, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 4)
}

func TestCreateItem_DuplicateTitle(t *testing.T) {
	s := newTestStore(t)
	seedItem(t, s, "Compilers", 1, 1, "1")

	_, err := s.CreateItem(context.Background(), domain.InventoryItem{Title: "Compilers", Price: decimal.NewFromInt(1)})

	require.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
}

func TestSaveOrder_AppendsPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveOrder(ctx, domain.Order{Partner: "BookStoreA", Title: "Compilers", Quantity: 10, Status: domain.OrderStatusPending})
	require.NoError(t, err)
	_, err = s.SaveOrder(ctx, domain.Order{Partner: "BookStoreB", Title: "Compilers", Quantity: 2, Status: domain.OrderStatusPending})
	require.NoError(t, err)

	orders, err := s.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "BookStoreA", orders[0].Partner)
	assert.Equal(t, domain.OrderStatusPending, orders[1].Status)
	assert.Equal(t, fixedNow, orders[0].Timestamp)
}

func TestOpen_RollsForwardInterruptedCommit(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, logger.Nop())
	require.NoError(t, err)

	// Simula uma queda depois da decisão do commit e antes das renomeações.
	newInventory := "title,price,isbn,quantity,safety_stock\nCompilers,100,1,7,1\n"
	require.NoError(t, os.WriteFile(s.path(inventoryFile)+tmpSuffix, []byte(newInventory), 0o644))
	require.NoError(t, os.WriteFile(s.path(journalFile), []byte(inventoryFile+"\n"), 0o644))

	reopened, err := Open(dir, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, newInventory, string(readFile(t, reopened, inventoryFile)))
	assert.NoFileExists(t, s.path(journalFile))
	assert.NoFileExists(t, s.path(inventoryFile)+tmpSuffix)
}

func TestOpen_DiscardsOrphanTemps(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, logger.Nop())
	require.NoError(t, err)
	before := readFile(t, s, inventoryFile)

	// Temporário sem journal: o commit nunca foi decidido.
	require.NoError(t, os.WriteFile(s.path(inventoryFile)+tmpSuffix, []byte("lixo parcial"), 0o644))

	reopened, err := Open(dir, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, before, readFile(t, reopened, inventoryFile))
	assert.NoFileExists(t, s.path(inventoryFile)+tmpSuffix)
}

func TestListItems_CanceledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListItems(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordMovement_DecidedCommitCompletesAfterRenameFailure(t *testing.T) {
	s := newTestStore(t)
	seedItem(t, s, "Intro to Systems", 5, 3, "20000")

	// A renomeação de transactions.csv falha uma vez, depois do journal publicado.
	failures := 1
	s.rename = func(oldpath, newpath string) error {
		if filepath.Base(newpath) == transactionsFile && failures > 0 {
			failures--
			return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: os.ErrPermission}
		}
		return os.Rename(oldpath, newpath)
	}

	tx, item, err := s.RecordMovement(context.Background(), domain.Movement{
		Title: "Intro to Systems", Type: domain.MovementShipment, Quantity: 3, Partner: "BookStoreA",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.FileExists(t, s.path(journalFile))

	// A próxima leitura conclui o commit antes de responder.
	txs, err := s.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, tx.Quantity, txs[0].Quantity)
	assert.NoFileExists(t, s.path(journalFile))
	assert.NoFileExists(t, s.path(transactionsFile)+tmpSuffix)

	items, err := s.ListItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestLoad_PendingCommitBlocksReads(t *testing.T) {
	s := newTestStore(t)
	seedItem(t, s, "Intro to Systems", 5, 3, "20000")

	s.rename = func(oldpath, newpath string) error {
		if filepath.Base(newpath) == transactionsFile {
			return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: os.ErrPermission}
		}
		return os.Rename(oldpath, newpath)
	}

	_, _, err := s.RecordMovement(context.Background(), domain.Movement{
		Title: "Intro to Systems", Type: domain.MovementReceipt, Quantity: 1, Partner: "Printer",
	})
	require.NoError(t, err)

	// Inventário já renomeado sem a transação correspondente: nada é servido.
	_, err = s.ListItems(context.Background())
	require.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)

	s.rename = os.Rename
	items, err := s.ListItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, items[0].Quantity)
	txs, err := s.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}
