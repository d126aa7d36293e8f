package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperror "bookstock/internal/errors"
)

// TimestampLayout é o formato usado para persistir datas nos datasets.
const TimestampLayout = "2006-01-02 15:04:05"

// DisposalPartner é o parceiro gravado em toda movimentação de avaria.
const DisposalPartner = "disposal"

// MovementType identifica o tipo de movimentação de estoque.
type MovementType string

const (
	MovementReceipt  MovementType = "RECEIPT"
	MovementShipment MovementType = "SHIPMENT"
	MovementDamage   MovementType = "DAMAGE"
	MovementReturn   MovementType = "RETURN"
)

// ParseMovementType converte uma string (sem diferenciar maiúsculas) em MovementType.
func ParseMovementType(s string) (MovementType, error) {
	switch mt := MovementType(strings.ToUpper(strings.TrimSpace(s))); mt {
	case MovementReceipt, MovementShipment, MovementDamage, MovementReturn:
		return mt, nil
	default:
		return "", apperror.NewValidationError(fmt.Sprintf("Tipo de movimentação desconhecido: '%s'.", s))
	}
}

// Sign devolve +1 para entradas (RECEIPT, RETURN) e -1 para saídas (SHIPMENT, DAMAGE).
func (m MovementType) Sign() int {
	switch m {
	case MovementReceipt, MovementReturn:
		return 1
	case MovementShipment, MovementDamage:
		return -1
	default:
		return 0
	}
}

// Movement é o pedido de movimentação recebido do operador.
type Movement struct {
	Title    string       `json:"title"`
	Type     MovementType `json:"movement_type"`
	Quantity int          `json:"quantity"`
	Partner  string       `json:"partner"`
}

// Transaction é o registro imutável de uma movimentação aplicada.
// UnitPrice é um retrato do preço do item no momento da movimentação.
type Transaction struct {
	Timestamp time.Time       `json:"timestamp"`
	Type      MovementType    `json:"movement_type"`
	Partner   string          `json:"partner"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ApplyMovement calcula o novo estado do item e a transação correspondente.
// Não altera nada se a movimentação deixar o estoque negativo.
func ApplyMovement(item InventoryItem, m Movement, now time.Time) (InventoryItem, Transaction, error) {
	if m.Quantity <= 0 {
		return InventoryItem{}, Transaction{}, apperror.NewInvalidQuantityError(m.Quantity)
	}
	sign := m.Type.Sign()
	if sign == 0 {
		return InventoryItem{}, Transaction{}, apperror.NewValidationError(fmt.Sprintf("Tipo de movimentação desconhecido: '%s'.", m.Type))
	}

	if sign > 0 && m.Quantity > math.MaxInt-item.Quantity {
		return InventoryItem{}, Transaction{}, apperror.NewInvalidQuantityError(m.Quantity)
	}

	newQty := item.Quantity + sign*m.Quantity
	if newQty < 0 {
		return InventoryItem{}, Transaction{}, apperror.NewInsufficientStockError(item.Title, item.Quantity, m.Quantity)
	}

	partner := m.Partner
	if m.Type == MovementDamage {
		partner = DisposalPartner
	}

	updated := item
	updated.Quantity = newQty

	tx := Transaction{
		Timestamp: now.Truncate(time.Second),
		Type:      m.Type,
		Partner:   partner,
		Title:     item.Title,
		Quantity:  m.Quantity,
		UnitPrice: item.Price,
	}
	return updated, tx, nil
}
