package domain

import "time"

// OrderStatus é o estado de um pedido de parceiro.
type OrderStatus string

// OrderStatusPending é o único estado gravado hoje; não há fluxo de atendimento.
const OrderStatusPending OrderStatus = "PENDING"

// Order é um pedido de compra enviado por um parceiro externo.
type Order struct {
	Timestamp time.Time   `json:"timestamp"`
	Partner   string      `json:"partner"`
	Title     string      `json:"title"`
	Quantity  int         `json:"quantity"`
	Status    OrderStatus `json:"status"`
}

// OrderRequest é o payload de entrada para a submissão de pedidos.
type OrderRequest struct {
	Partner  string `json:"partner"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}
