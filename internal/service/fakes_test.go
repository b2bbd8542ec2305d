package service_test

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/linemk/proshop/internal/domain/models"
	"github.com/linemk/proshop/internal/storage"
	"github.com/shopspring/decimal"
)

type fakeUserRepo struct {
	users map[string]*models.User // ключ: email
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return nil, storage.ErrUserExists
	}
	user.ID = int64(len(f.users) + 1)
	user.CreatedAt = time.Now()
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	for _, u := range f.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type fakeBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	err     error
}

var _ storage.TokenBlacklist = (*fakeBlacklist)(nil)

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{entries: make(map[string]time.Time)}
}

func (f *fakeBlacklist) Blacklist(ctx context.Context, jti string, expiresAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[jti] = expiresAt
	return nil
}

func (f *fakeBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[jti]
	return ok, nil
}

type fakeProductRepo struct {
	products map[int64]*models.Product
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[int64]*models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepo) ListProducts(ctx context.Context) ([]*models.Product, error) {
	var products []*models.Product
	for _, p := range f.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return p, nil
}

// fakeCartRepo хранит позиции в памяти, цену и название берёт из fakeProductRepo, как JOIN
type fakeCartRepo struct {
	products *fakeProductRepo
	lines    map[int64]*models.CartLine
	nextID   int64

	lockErr   error
	deleteErr error
	cleared   int
	// afterLock вызывается после чтения корзины в LockCartLinesTx, имитируя параллельный запрос
	afterLock func()
	// beforeUpdate вызывается перед обновлением количества
	beforeUpdate func()
}

var _ storage.CartStorage = (*fakeCartRepo)(nil)

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{products: products, lines: make(map[int64]*models.CartLine)}
}

func (f *fakeCartRepo) add(userID, productID int64, qty int) *models.CartLine {
	f.nextID++
	line := &models.CartLine{ID: f.nextID, UserID: userID, ProductID: productID, Quantity: qty}
	f.lines[line.ID] = line
	return line
}

func (f *fakeCartRepo) userLines(userID int64) []*models.CartLine {
	var lines []*models.CartLine
	for _, l := range f.lines {
		if l.UserID != userID {
			continue
		}
		cp := *l
		if p, ok := f.products.products[l.ProductID]; ok {
			cp.ProductName = p.Name
			cp.Price = p.Price
		}
		lines = append(lines, &cp)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines
}

func (f *fakeCartRepo) ListCartLines(ctx context.Context, userID int64) ([]*models.CartLine, error) {
	return f.userLines(userID), nil
}

func (f *fakeCartRepo) FindCartLine(ctx context.Context, userID, productID int64) (models.CartLookup, error) {
	for _, l := range f.userLines(userID) {
		if l.ProductID == productID {
			return models.CartLookup{Status: models.LookupFound, Line: l}, nil
		}
	}
	return models.CartLookup{Status: models.LookupNotFound}, nil
}

func (f *fakeCartRepo) CreateCartLine(ctx context.Context, userID, productID int64, quantity int) (*models.CartLine, error) {
	line := f.add(userID, productID, quantity)
	cp := *line
	return &cp, nil
}

func (f *fakeCartRepo) UpdateCartLineQuantity(ctx context.Context, id int64, quantity int) error {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	l, ok := f.lines[id]
	if !ok {
		return storage.ErrCartLineNotFound
	}
	l.Quantity = quantity
	return nil
}

func (f *fakeCartRepo) GetCartLineByID(ctx context.Context, id int64) (*models.CartLine, error) {
	l, ok := f.lines[id]
	if !ok {
		return nil, storage.ErrCartLineNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeCartRepo) DeleteCartLine(ctx context.Context, id int64) error {
	if _, ok := f.lines[id]; !ok {
		return storage.ErrCartLineNotFound
	}
	delete(f.lines, id)
	return nil
}

func (f *fakeCartRepo) LockCartLinesTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartLine, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	lines := f.userLines(userID)
	if f.afterLock != nil {
		f.afterLock()
	}
	return lines, nil
}

func (f *fakeCartRepo) DeleteCartLinesTx(ctx context.Context, tx *sql.Tx, ids []int64) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.cleared++
	var n int64
	for _, id := range ids {
		if _, ok := f.lines[id]; ok {
			delete(f.lines, id)
			n++
		}
	}
	return n, nil
}

type fakeOrderRepo struct {
	orders []*models.Order
	items  []*models.OrderItem

	createErr error
	itemsErr  error
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{}
}

func (f *fakeOrderRepo) CreateOrderTx(ctx context.Context, tx *sql.Tx, userID int64, total decimal.Decimal) (*models.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	order := &models.Order{ID: int64(len(f.orders) + 1), UserID: userID, TotalPrice: total, PaidAt: time.Now()}
	f.orders = append(f.orders, order)
	return order, nil
}

func (f *fakeOrderRepo) CreateOrderItemsTx(ctx context.Context, tx *sql.Tx, items []*models.OrderItem) error {
	if f.itemsErr != nil {
		return f.itemsErr
	}
	for _, item := range items {
		item.ID = int64(len(f.items) + 1)
		f.items = append(f.items, item)
	}
	return nil
}

func (f *fakeOrderRepo) ListOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	var orders []*models.Order
	for i := len(f.orders) - 1; i >= 0; i-- {
		if f.orders[i].UserID == userID {
			orders = append(orders, f.orders[i])
		}
	}
	return orders, nil
}

func (f *fakeOrderRepo) ListOrderItems(ctx context.Context, userID, orderID int64) ([]*models.OrderItem, error) {
	var owner int64 = -1
	for _, o := range f.orders {
		if o.ID == orderID {
			owner = o.UserID
		}
	}
	if owner != userID {
		return nil, nil
	}
	var items []*models.OrderItem
	for _, it := range f.items {
		if it.OrderID == orderID {
			items = append(items, it)
		}
	}
	return items, nil
}

var errDB = errors.New("db error")

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
