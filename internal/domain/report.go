package domain

import (
	"cmp"
	"encoding/json"
	"iter"
	"slices"

	"github.com/shopspring/decimal"
)

// MonthLayout é o formato da chave de mês nos relatórios.
const MonthLayout = "2006-01"

// returnRateEpsilon evita divisão por zero no cálculo da taxa de devolução.
var returnRateEpsilon = decimal.RequireFromString("0.0001")

// MonthlySalesRow agrega as saídas (SHIPMENT) de um título em um mês.
type MonthlySalesRow struct {
	Month         string `json:"month"`
	Title         string `json:"title"`
	TotalQuantity int    `json:"total_quantity"`
}

// ReturnRate resume expedições e devoluções de um parceiro.
type ReturnRate struct {
	Shipped     int             `json:"shipped"`
	Returned    int             `json:"returned"`
	RatePercent decimal.Decimal `json:"rate_percent"`
}

// MarshalJSON publica a taxa sempre com duas casas decimais ("10.00").
func (r ReturnRate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Shipped     int    `json:"shipped"`
		Returned    int    `json:"returned"`
		RatePercent string `json:"rate_percent"`
	}{r.Shipped, r.Returned, r.RatePercent.StringFixed(2)})
}

// Valuation é o valor total do estoque.
type Valuation struct {
	Total decimal.Decimal `json:"total"`
}

// MonthlySales agrupa as transações SHIPMENT por (mês, título) e soma as quantidades.
// A sequência é ordenada por mês e título e pode ser percorrida mais de uma vez.
func MonthlySales(txs []Transaction) iter.Seq[MonthlySalesRow] {
	return func(yield func(MonthlySalesRow) bool) {
		type key struct{ month, title string }
		totals := make(map[key]int)
		for _, tx := range txs {
			if tx.Type != MovementShipment {
				continue
			}
			totals[key{tx.Timestamp.Format(MonthLayout), tx.Title}] += tx.Quantity
		}

		rows := make([]MonthlySalesRow, 0, len(totals))
		for k, total := range totals {
			rows = append(rows, MonthlySalesRow{Month: k.month, Title: k.title, TotalQuantity: total})
		}
		slices.SortFunc(rows, func(a, b MonthlySalesRow) int {
			return cmp.Or(cmp.Compare(a.Month, b.Month), cmp.Compare(a.Title, b.Title))
		})

		for _, row := range rows {
			if !yield(row) {
				return
			}
		}
	}
}

// InventoryValuation soma quantidade * preço de todos os itens.
func InventoryValuation(items []InventoryItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Value())
	}
	return total
}

// ReturnRates calcula a taxa de devolução por parceiro.
// Parceiros sem expedição ou sem devolução ficam fora do resultado.
func ReturnRates(txs []Transaction) map[string]ReturnRate {
	shipped := make(map[string]int)
	returned := make(map[string]int)
	for _, tx := range txs {
		if tx.Partner == "" {
			continue
		}
		switch tx.Type {
		case MovementShipment:
			shipped[tx.Partner] += tx.Quantity
		case MovementReturn:
			returned[tx.Partner] += tx.Quantity
		}
	}

	result := make(map[string]ReturnRate)
	for partner, s := range shipped {
		r, ok := returned[partner]
		if !ok {
			continue
		}
		rate := decimal.NewFromInt(int64(r)).
			Div(decimal.NewFromInt(int64(s)).Add(returnRateEpsilon)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		result[partner] = ReturnRate{Shipped: s, Returned: r, RatePercent: rate}
	}
	return result
}
