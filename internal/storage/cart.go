package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/proshop/internal/domain/models"
)

var ErrCartLineNotFound = errors.New("cart line not found")

// CartStorage описывает методы для работы с корзиной.
type CartStorage interface {
	// ListCartLines возвращает позиции корзины пользователя с названием и ценой товара.
	ListCartLines(ctx context.Context, userID int64) ([]*models.CartLine, error)
	// FindCartLine явно проверяет, есть ли у пользователя позиция с этим товаром.
	FindCartLine(ctx context.Context, userID, productID int64) (models.CartLookup, error)
	CreateCartLine(ctx context.Context, userID, productID int64, quantity int) (*models.CartLine, error)
	UpdateCartLineQuantity(ctx context.Context, id int64, quantity int) error
	GetCartLineByID(ctx context.Context, id int64) (*models.CartLine, error)
	DeleteCartLine(ctx context.Context, id int64) error
	// LockCartLinesTx читает корзину пользователя внутри транзакции, блокируя строки до конца транзакции.
	LockCartLinesTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartLine, error)
	// DeleteCartLinesTx удаляет внутри транзакции только переданные (заблокированные) позиции.
	DeleteCartLinesTx(ctx context.Context, tx *sql.Tx, ids []int64) (int64, error)
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

func (r *cartRepository) ListCartLines(ctx context.Context, userID int64) ([]*models.CartLine, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, p.name, p.price, c.quantity
		FROM cart_lines c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()
	return scanCartLines(rows)
}

func scanCartLines(rows *sql.Rows) ([]*models.CartLine, error) {
	var lines []*models.CartLine
	for rows.Next() {
		line := &models.CartLine{}
		if err := rows.Scan(&line.ID, &line.UserID, &line.ProductID, &line.ProductName, &line.Price, &line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *cartRepository) FindCartLine(ctx context.Context, userID, productID int64) (models.CartLookup, error) {
	line := &models.CartLine{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, product_id, quantity FROM cart_lines WHERE user_id = $1 AND product_id = $2 ORDER BY id LIMIT 1",
		userID, productID)
	if err := row.Scan(&line.ID, &line.UserID, &line.ProductID, &line.Quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CartLookup{Status: models.LookupNotFound}, nil
		}
		return models.CartLookup{}, err
	}
	return models.CartLookup{Status: models.LookupFound, Line: line}, nil
}

func (r *cartRepository) CreateCartLine(ctx context.Context, userID, productID int64, quantity int) (*models.CartLine, error) {
	line := &models.CartLine{UserID: userID, ProductID: productID, Quantity: quantity}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO cart_lines (user_id, product_id, quantity) VALUES ($1, $2, $3) RETURNING id",
		userID, productID, quantity,
	).Scan(&line.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart line: %w", err)
	}
	return line, nil
}

func (r *cartRepository) UpdateCartLineQuantity(ctx context.Context, id int64, quantity int) error {
	res, err := r.db.ExecContext(ctx, "UPDATE cart_lines SET quantity = $1 WHERE id = $2", quantity, id)
	if err != nil {
		return fmt.Errorf("failed to update cart line: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartLineNotFound
	}
	return nil
}

func (r *cartRepository) GetCartLineByID(ctx context.Context, id int64) (*models.CartLine, error) {
	line := &models.CartLine{}
	row := r.db.QueryRowContext(ctx, "SELECT id, user_id, product_id, quantity FROM cart_lines WHERE id = $1", id)
	if err := row.Scan(&line.ID, &line.UserID, &line.ProductID, &line.Quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartLineNotFound
		}
		return nil, err
	}
	return line, nil
}

func (r *cartRepository) DeleteCartLine(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cart_lines WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartLineNotFound
	}
	return nil
}

// LockCartLinesTx берёт FOR UPDATE только на строки корзины; строки товаров не блокируются,
// цена читается на момент запроса.
func (r *cartRepository) LockCartLinesTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartLine, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, p.name, p.price, c.quantity
		FROM cart_lines c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.id
		FOR UPDATE OF c`
	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart lines: %w", err)
	}
	defer rows.Close()
	return scanCartLines(rows)
}

// DeleteCartLinesTx удаляет строки по id, а не по user_id: позиция, добавленная после блокировки,
// остаётся в корзине.
func (r *cartRepository) DeleteCartLinesTx(ctx context.Context, tx *sql.Tx, ids []int64) (int64, error) {
	res, err := tx.ExecContext(ctx, "DELETE FROM cart_lines WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return res.RowsAffected()
}
