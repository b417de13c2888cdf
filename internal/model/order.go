package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the server-side lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderItem is a purchased line with the unit price captured at order time.
type OrderItem struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order is a placed order. IDs are UUIDs issued by the backend.
type Order struct {
	ID              string          `json:"id"`
	Status          OrderStatus     `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// OrderLine references a cart line when placing an order.
type OrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest is the payload for POST /api/orders/create/.
type CreateOrderRequest struct {
	Cart           []OrderLine `json:"cart"`
	Address        string      `json:"address"`
	ShippingMethod string      `json:"shipping_method,omitempty"`
}
