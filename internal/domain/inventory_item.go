package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// InventoryItem representa um título do catálogo e o seu nível de estoque atual.
// O título é a chave única do item; a quantidade só é alterada pelo razão (ApplyMovement).
type InventoryItem struct {
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	ISBN        string          `json:"isbn"`
	Quantity    int             `json:"quantity"`
	SafetyStock int             `json:"safety_stock"`
}

// IsLowStock indica se o item está no estoque de segurança ou abaixo dele.
func (i InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.SafetyStock
}

// Value devolve quantidade * preço.
func (i InventoryItem) Value() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// FilterItems devolve os itens cujo título ou ISBN contém term.
// Um termo vazio devolve todos os itens.
func FilterItems(items []InventoryItem, term string) []InventoryItem {
	term = strings.TrimSpace(term)
	if term == "" {
		return items
	}

	result := make([]InventoryItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(item.Title, term) || strings.Contains(item.ISBN, term) {
			result = append(result, item)
		}
	}
	return result
}

// LowStockItems devolve os itens em alerta de estoque de segurança.
func LowStockItems(items []InventoryItem) []InventoryItem {
	result := make([]InventoryItem, 0)
	for _, item := range items {
		if item.IsLowStock() {
			result = append(result, item)
		}
	}
	return result
}
