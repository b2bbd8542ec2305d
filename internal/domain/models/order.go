package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order представляет оформленный заказ. После создания не изменяется.
type Order struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user"`
	TotalPrice decimal.Decimal `json:"total_price"`
	PaidAt     time.Time       `json:"date_of_payment"`
}

// OrderItem позиция заказа. Название и цена товара копируются в момент оформления
// и не зависят от последующих изменений каталога.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order"`
	ProductID   int64           `json:"product"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"qty"`
	Price       decimal.Decimal `json:"price"`
}
