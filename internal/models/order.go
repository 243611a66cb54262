package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest value a NUMERIC(10,2) money column holds.
var MaxAmount = decimal.RequireFromString("99999999.99")

const (
	StatusPending = 0 // создан, ждёт оплаты

	OrderTypeDefault = 0
)

// Order is the aggregate root: it owns its items, which are written and
// loaded together with it.
type Order struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	DeliveryAddrID int64           `json:"delivery_addr_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         int             `json:"status"`
	CreateTime     time.Time       `json:"create_time"`
	OrderType      int             `json:"order_type"`
	Items          []OrderItem     `json:"items"`
}

// OrderItem snapshots the goods name and price at the moment of ordering.
type OrderItem struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"order_id"`
	GoodsID    int64           `json:"goods_id"`
	GoodsName  string          `json:"goods_name"`
	GoodsPrice decimal.Decimal `json:"goods_price"`
	Count      int             `json:"count"`
	ItemAmount decimal.Decimal `json:"item_amount"`
}

type OrderItemCreate struct {
	GoodsID int64 `json:"goods_id"`
	Count   int   `json:"count"`
}

type OrderCreate struct {
	DeliveryAddrID int64             `json:"delivery_addr_id"`
	Items          []OrderItemCreate `json:"items"`
}
