package models

import "github.com/shopspring/decimal"

// CartLine одна позиция корзины (пользователь, товар, количество)
type CartLine struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user"`
	ProductID   int64           `json:"product"`
	ProductName string          `json:"product_name"` // заполняется через JOIN с products
	Price       decimal.Decimal `json:"price"`        // текущая цена товара; заполняется через JOIN
	Quantity    int             `json:"qty"`
}

// LookupStatus результат поиска позиции корзины
type LookupStatus int

const (
	LookupNotFound LookupStatus = iota
	LookupFound
)

// CartLookup результат явной проверки существования позиции (user, product).
// Line заполнен только при Status == LookupFound.
type CartLookup struct {
	Status LookupStatus
	Line   *CartLine
}
