package csvstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bookstock/internal/domain"
)

// Nomes dos arquivos e cabeçalhos fixos de cada dataset.
const (
	inventoryFile    = "inventory.csv"
	transactionsFile = "transactions.csv"
	ordersFile       = "orders.csv"
)

var (
	inventoryHeader    = []string{"title", "price", "isbn", "quantity", "safety_stock"}
	transactionsHeader = []string{"timestamp", "movement_type", "partner", "title", "quantity", "unit_price"}
	ordersHeader       = []string{"timestamp", "partner", "title", "quantity", "status"}
)

// schemas associa cada arquivo ao seu cabeçalho.
var schemas = map[string][]string{
	inventoryFile:    inventoryHeader,
	transactionsFile: transactionsHeader,
	ordersFile:       ordersHeader,
}

// --- Inventário ---

func encodeItem(item domain.InventoryItem) []string {
	return []string{
		item.Title,
		item.Price.String(),
		item.ISBN,
		strconv.Itoa(item.Quantity),
		strconv.Itoa(item.SafetyStock),
	}
}

func decodeItem(rec []string) (domain.InventoryItem, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(rec[1]))
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("price %q: %w", rec[1], err)
	}
	qty, err := atoi(rec[3])
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("quantity %q: %w", rec[3], err)
	}
	safety, err := atoi(rec[4])
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("safety_stock %q: %w", rec[4], err)
	}
	return domain.InventoryItem{
		Title:       rec[0],
		Price:       price,
		ISBN:        rec[2],
		Quantity:    qty,
		SafetyStock: safety,
	}, nil
}

// --- Transações ---

func encodeTransaction(tx domain.Transaction) []string {
	return []string{
		tx.Timestamp.Format(domain.TimestampLayout),
		string(tx.Type),
		tx.Partner,
		tx.Title,
		strconv.Itoa(tx.Quantity),
		tx.UnitPrice.String(),
	}
}

func decodeTransaction(rec []string) (domain.Transaction, error) {
	ts, err := parseTimestamp(rec[0])
	if err != nil {
		return domain.Transaction{}, err
	}
	mt, err := domain.ParseMovementType(rec[1])
	if err != nil {
		return domain.Transaction{}, err
	}
	qty, err := atoi(rec[4])
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("quantity %q: %w", rec[4], err)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(rec[5]))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("unit_price %q: %w", rec[5], err)
	}
	return domain.Transaction{
		Timestamp: ts,
		Type:      mt,
		Partner:   rec[2],
		Title:     rec[3],
		Quantity:  qty,
		UnitPrice: price,
	}, nil
}

// --- Pedidos ---

func encodeOrder(o domain.Order) []string {
	return []string{
		o.Timestamp.Format(domain.TimestampLayout),
		o.Partner,
		o.Title,
		strconv.Itoa(o.Quantity),
		string(o.Status),
	}
}

func decodeOrder(rec []string) (domain.Order, error) {
	ts, err := parseTimestamp(rec[0])
	if err != nil {
		return domain.Order{}, err
	}
	qty, err := atoi(rec[3])
	if err != nil {
		return domain.Order{}, fmt.Errorf("quantity %q: %w", rec[3], err)
	}
	return domain.Order{
		Timestamp: ts,
		Partner:   rec[1],
		Title:     rec[2],
		Quantity:  qty,
		Status:    domain.OrderStatus(rec[4]),
	}, nil
}

// --- Helpers ---

func parseTimestamp(s string) (time.Time, error) {
	ts, err := time.ParseInLocation(domain.TimestampLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return ts, nil
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
