package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/linemk/proshop/internal/domain/models"
	"github.com/linemk/proshop/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "email", "username", "pass_hash", "created_at"}

func TestGetUserByEmail_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	email := "test@example.com"
	now := time.Now()

	rows := sqlmock.NewRows(userColumns).AddRow(1, email, "tester", []byte("hashed"), now)
	query := regexp.QuoteMeta("SELECT id, email, username, pass_hash, created_at FROM users WHERE email = $1")
	mock.ExpectQuery(query).WithArgs(email).WillReturnRows(rows)

	user, err := repo.GetUserByEmail(context.Background(), email)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, email, user.Email)
	assert.Equal(t, "tester", user.Username)
	assert.Equal(t, []byte("hashed"), user.PassHash)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	query := regexp.QuoteMeta("SELECT id, email, username, pass_hash, created_at FROM users WHERE email = $1")
	mock.ExpectQuery(query).WithArgs("nobody@example.com").WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	query := regexp.QuoteMeta("SELECT id, email, username, pass_hash, created_at FROM users WHERE id = $1")
	mock.ExpectQuery(query).WithArgs(int64(3)).WillReturnError(errors.New("db error"))

	user, err := repo.GetUserByID(context.Background(), 3)
	assert.Error(t, err)
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	now := time.Now()

	query := regexp.QuoteMeta("INSERT INTO users (email, username, pass_hash) VALUES ($1, $2, $3) RETURNING id, created_at")
	mock.ExpectQuery(query).WithArgs("new@example.com", "newbie", []byte("hashed")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, now))

	user, err := repo.CreateUser(context.Background(), &models.User{
		Email:    "new@example.com",
		Username: "newbie",
		PassHash: []byte("hashed"),
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, now, user.CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	query := regexp.QuoteMeta("INSERT INTO users (email, username, pass_hash) VALUES ($1, $2, $3) RETURNING id, created_at")
	mock.ExpectQuery(query).WillReturnError(&pq.Error{Code: "23505"})

	user, err := repo.CreateUser(context.Background(), &models.User{Email: "dup@example.com"})
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, storage.ErrUserExists))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsers_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "username", "created_at"}).
		AddRow(1, "a@example.com", "a", now).
		AddRow(2, "b@example.com", "b", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, username, created_at FROM users ORDER BY id")).WillReturnRows(rows)

	users, err := repo.ListUsers(context.Background())
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "b@example.com", users[1].Email)

	assert.NoError(t, mock.ExpectationsWereMet())
}

var productRowColumns = []string{"id", "name", "brand", "category", "description", "rating", "num_reviews", "price", "count_in_stock", "created_at"}

func TestListProducts_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(productRowColumns).
		AddRow(1, "Mouse", "Logitech", "Electronics", "gaming mouse", "3.50", 10, "49.99", 7, now).
		AddRow(2, "PS5", "Sony", "Electronics", "console", "5.00", 12, "399.99", 11, now)
	mock.ExpectQuery("SELECT (.+) FROM products ORDER BY id").WillReturnRows(rows)

	products, err := repo.ListProducts(context.Background())
	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.True(t, decimal.RequireFromString("49.99").Equal(products[0].Price))
	assert.True(t, decimal.RequireFromString("3.5").Equal(products[0].Rating))
	assert.Equal(t, 11, products[1].CountInStock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	mock.ExpectQuery("SELECT (.+) FROM products WHERE id = \\$1").WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	product, err := repo.GetProductByID(context.Background(), 42)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, storage.ErrProductNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCartLine_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	query := regexp.QuoteMeta("SELECT id, user_id, product_id, quantity FROM cart_lines WHERE user_id = $1 AND product_id = $2 ORDER BY id LIMIT 1")
	mock.ExpectQuery(query).WithArgs(int64(1), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity"}).AddRow(10, 1, 5, 3))

	lookup, err := repo.FindCartLine(context.Background(), 1, 5)
	assert.NoError(t, err)
	assert.Equal(t, models.LookupFound, lookup.Status)
	require.NotNil(t, lookup.Line)
	assert.Equal(t, int64(10), lookup.Line.ID)
	assert.Equal(t, 3, lookup.Line.Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCartLine_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	query := regexp.QuoteMeta("SELECT id, user_id, product_id, quantity FROM cart_lines WHERE user_id = $1 AND product_id = $2")
	mock.ExpectQuery(query).WithArgs(int64(1), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity"}))

	lookup, err := repo.FindCartLine(context.Background(), 1, 5)
	assert.NoError(t, err)
	assert.Equal(t, models.LookupNotFound, lookup.Status)
	assert.Nil(t, lookup.Line)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCartLine_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	query := regexp.QuoteMeta("INSERT INTO cart_lines (user_id, product_id, quantity) VALUES ($1, $2, $3) RETURNING id")
	mock.ExpectQuery(query).WithArgs(int64(1), int64(5), 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	line, err := repo.CreateCartLine(context.Background(), 1, 5, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(11), line.ID)
	assert.Equal(t, 2, line.Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCartLineQuantity_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	query := regexp.QuoteMeta("UPDATE cart_lines SET quantity = $1 WHERE id = $2")
	mock.ExpectExec(query).WithArgs(4, int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateCartLineQuantity(context.Background(), 99, 4)
	assert.True(t, errors.Is(err, storage.ErrCartLineNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCartLine_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_lines WHERE id = $1")).WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.DeleteCartLine(context.Background(), 10))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockCartLinesTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "user_id", "product_id", "name", "price", "quantity"}).
		AddRow(1, 1, 100, "A", "10.00", 2).
		AddRow(2, 1, 200, "B", "5.50", 1)
	mock.ExpectQuery(`SELECT (.+) FROM cart_lines c JOIN products p ON c\.product_id = p\.id WHERE c\.user_id = \$1 ORDER BY c\.id FOR UPDATE OF c`).
		WithArgs(int64(1)).WillReturnRows(rows)

	lines, err := repo.LockCartLinesTx(ctx, tx, 1)
	assert.NoError(t, err)
	assert.Len(t, lines, 2)
	assert.Equal(t, "B", lines[1].ProductName)
	assert.True(t, decimal.RequireFromString("5.5").Equal(lines[1].Price))

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCartLinesTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	// удаляются только заблокированные строки, а не вся корзина пользователя
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_lines WHERE id = ANY($1)")).WithArgs(pq.Array([]int64{10, 11})).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteCartLinesTx(context.Background(), tx, []int64{10, 11})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mock.ExpectRollback()
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	total := decimal.RequireFromString("25.50")
	now := time.Now()

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	query := regexp.QuoteMeta("INSERT INTO orders (user_id, total_price, paid_at) VALUES ($1, $2, NOW()) RETURNING id, paid_at")
	mock.ExpectQuery(query).WithArgs(int64(1), total).
		WillReturnRows(sqlmock.NewRows([]string{"id", "paid_at"}).AddRow(5, now))

	order, err := repo.CreateOrderTx(context.Background(), tx, 1, total)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), order.ID)
	assert.Equal(t, now, order.PaidAt)
	assert.True(t, total.Equal(order.TotalPrice))

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderItemsTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	items := []*models.OrderItem{
		{OrderID: 5, ProductID: 100, ProductName: "A", Quantity: 2, Price: decimal.RequireFromString("10.00")},
		{OrderID: 5, ProductID: 200, ProductName: "B", Quantity: 1, Price: decimal.RequireFromString("5.50")},
	}
	query := regexp.QuoteMeta("INSERT INTO order_items (order_id, product_id, product_name, quantity, price) VALUES ($1, $2, $3, $4, $5) RETURNING id")
	mock.ExpectQuery(query).WithArgs(int64(5), int64(100), "A", 2, items[0].Price).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(query).WithArgs(int64(5), int64(200), "B", 1, items[1].Price).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

	assert.NoError(t, repo.CreateOrderItemsTx(context.Background(), tx, items))
	assert.Equal(t, int64(2), items[1].ID)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersByUserID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "total_price", "paid_at"}).
		AddRow(2, 1, "30.00", now).
		AddRow(1, 1, "25.50", now.Add(-time.Hour))
	mock.ExpectQuery(`SELECT id, user_id, total_price, paid_at FROM orders WHERE user_id = \$1 ORDER BY paid_at DESC`).
		WithArgs(int64(1)).WillReturnRows(rows)

	orders, err := repo.ListOrdersByUserID(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, int64(2), orders[0].ID)
	assert.True(t, decimal.RequireFromString("25.5").Equal(orders[1].TotalPrice))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrderItems_ScopedToOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	rows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "quantity", "price"}).
		AddRow(1, 5, 100, "A", 2, "10.00")
	mock.ExpectQuery(`SELECT (.+) FROM order_items i JOIN orders o ON i\.order_id = o\.id WHERE i\.order_id = \$1 AND o\.user_id = \$2`).
		WithArgs(int64(5), int64(1)).WillReturnRows(rows)

	items, err := repo.ListOrderItems(context.Background(), 1, 5)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "A", items[0].ProductName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenBlacklist_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewTokenBlacklistRepository(db)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO token_blacklist (jti, expires_at) VALUES ($1, $2) ON CONFLICT (jti) DO NOTHING")).
		WithArgs("jti-1", exp).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = $1")).
		WithArgs("jti-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	assert.NoError(t, repo.Blacklist(ctx, "jti-1", exp))
	ok, err := repo.IsBlacklisted(ctx, "jti-1")
	assert.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}
