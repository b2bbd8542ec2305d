package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/linemk/proshop/internal/domain/models"
	"github.com/linemk/proshop/internal/storage"
	"github.com/shopspring/decimal"
)

type CheckoutService interface {
	Checkout(ctx context.Context, id models.Identity) (*models.Order, error)
	ListOrders(ctx context.Context, id models.Identity) ([]*models.Order, error)
	ListOrderItems(ctx context.Context, id models.Identity, orderID int64) ([]*models.OrderItem, error)
}

type checkoutService struct {
	log       *slog.Logger
	db        *sql.DB
	cartRepo  storage.CartStorage
	orderRepo storage.OrderStorage
}

func NewCheckoutService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage, orderRepo storage.OrderStorage) CheckoutService {
	return &checkoutService{
		log:       log,
		db:        db,
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
	}
}

// OrderTotal считает сумму price × qty по позициям корзины без округления.
func OrderTotal(lines []*models.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Checkout превращает корзину в заказ в одной транзакции:
// заказ, позиции заказа со снимком названия и цены, очистка корзины.
// Если что-то идет не так, транзакция откатывается.
func (s *checkoutService) Checkout(ctx context.Context, id models.Identity) (*models.Order, error) {
	const op = "service.CheckoutService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", id.UserID))
	logger.Info("starting checkout transaction")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
	}

	// строки корзины блокируются до конца транзакции: параллельный checkout ждёт и видит пустую корзину
	lines, err := s.cartRepo.LockCartLinesTx(ctx, tx, id.UserID)
	if err != nil {
		rollback()
		logger.Error("failed to read cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to read cart: %w", op, err)
	}
	if len(lines) == 0 {
		rollback()
		logger.Warn("cart is empty")
		return nil, fmt.Errorf("%s: %w", op, ErrCartEmpty)
	}

	order, err := s.orderRepo.CreateOrderTx(ctx, tx, id.UserID, OrderTotal(lines))
	if err != nil {
		rollback()
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	items := make([]*models.OrderItem, 0, len(lines))
	lineIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		lineIDs = append(lineIDs, line.ID)
		items = append(items, &models.OrderItem{
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       line.Price,
		})
	}
	if err := s.orderRepo.CreateOrderItemsTx(ctx, tx, items); err != nil {
		rollback()
		logger.Error("failed to create order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order items: %w", op, err)
	}

	// удаляются только оформленные строки: добавленное в корзину во время checkout остаётся в ней
	if _, err := s.cartRepo.DeleteCartLinesTx(ctx, tx, lineIDs); err != nil {
		rollback()
		logger.Error("failed to clear cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to clear cart: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order created",
		slog.Int64("orderID", order.ID),
		slog.String("total", order.TotalPrice.StringFixed(2)),
		slog.Int("items", len(items)),
	)
	return order, nil
}

func (s *checkoutService) ListOrders(ctx context.Context, id models.Identity) ([]*models.Order, error) {
	const op = "service.CheckoutService.ListOrders"
	orders, err := s.orderRepo.ListOrdersByUserID(ctx, id.UserID)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

// ListOrderItems возвращает позиции заказа вызывающего, для чужого или несуществующего заказа ErrOrderNotFound.
func (s *checkoutService) ListOrderItems(ctx context.Context, id models.Identity, orderID int64) ([]*models.OrderItem, error) {
	const op = "service.CheckoutService.ListOrderItems"
	items, err := s.orderRepo.ListOrderItems(ctx, id.UserID, orderID)
	if err != nil {
		s.log.Error("failed to list order items", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
	}
	return items, nil
}
