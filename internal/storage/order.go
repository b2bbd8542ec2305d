package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/proshop/internal/domain/models"
	"github.com/shopspring/decimal"
)

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrderTx вставляет новый заказ в таблицу orders с использованием транзакции.
	CreateOrderTx(ctx context.Context, tx *sql.Tx, userID int64, total decimal.Decimal) (*models.Order, error)
	// CreateOrderItemsTx вставляет позиции заказа в той же транзакции.
	CreateOrderItemsTx(ctx context.Context, tx *sql.Tx, items []*models.OrderItem) error
	// ListOrdersByUserID возвращает заказы пользователя, новые первыми.
	ListOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	// ListOrderItems возвращает позиции заказа, если заказ принадлежит пользователю.
	ListOrderItems(ctx context.Context, userID, orderID int64) ([]*models.OrderItem, error)
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, userID int64, total decimal.Decimal) (*models.Order, error) {
	order := &models.Order{UserID: userID, TotalPrice: total}
	query := `INSERT INTO orders (user_id, total_price, paid_at)
	          VALUES ($1, $2, NOW()) RETURNING id, paid_at`
	if err := tx.QueryRowContext(ctx, query, userID, total).Scan(&order.ID, &order.PaidAt); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) CreateOrderItemsTx(ctx context.Context, tx *sql.Tx, items []*models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	for _, item := range items {
		err := tx.QueryRowContext(ctx, query, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.Price).
			Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) ListOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT id, user_id, total_price, paid_at
		FROM orders
		WHERE user_id = $1
		ORDER BY paid_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.TotalPrice, &order.PaidAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListOrderItems(ctx context.Context, userID, orderID int64) ([]*models.OrderItem, error) {
	query := `
		SELECT i.id, i.order_id, i.product_id, i.product_name, i.quantity, i.price
		FROM order_items i
		JOIN orders o ON i.order_id = o.id
		WHERE i.order_id = $1 AND o.user_id = $2
		ORDER BY i.id`
	rows, err := r.db.QueryContext(ctx, query, orderID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
