package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/proshop/internal/domain/models"
	"github.com/linemk/proshop/internal/storage"
)

type CartService interface {
	ListCart(ctx context.Context, id models.Identity) ([]*models.CartLine, error)
	Upsert(ctx context.Context, id models.Identity, productID int64, quantity int) (*UpsertResult, error)
	Delete(ctx context.Context, id models.Identity, lineID int64) error
}

// UpsertResult: позиция после upsert, Created показывает, была ли она создана
type UpsertResult struct {
	Line    *models.CartLine
	Created bool
}

type cartService struct {
	log         *slog.Logger
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage, productRepo storage.ProductStorage) CartService {
	return &cartService{
		log:         log,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) ListCart(ctx context.Context, id models.Identity) ([]*models.CartLine, error) {
	const op = "service.CartService.ListCart"
	lines, err := s.cartRepo.ListCartLines(ctx, id.UserID)
	if err != nil {
		s.log.Error("failed to list cart", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if lines == nil {
		lines = []*models.CartLine{}
	}
	return lines, nil
}

// Upsert перезаписывает количество существующей позиции (user, product) или создаёт новую.
func (s *cartService) Upsert(ctx context.Context, id models.Identity, productID int64, quantity int) (*UpsertResult, error) {
	const op = "service.CartService.Upsert"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", id.UserID), slog.Int64("productID", productID))

	if quantity < 1 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, storage.ErrProductNotFound) {
			logger.Error("failed to get product", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lookup, err := s.cartRepo.FindCartLine(ctx, id.UserID, productID)
	if err != nil {
		logger.Error("failed to look up cart line", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &UpsertResult{}
	if lookup.Status == models.LookupFound {
		err := s.cartRepo.UpdateCartLineQuantity(ctx, lookup.Line.ID, quantity)
		switch {
		case err == nil:
			lookup.Line.Quantity = quantity
			result.Line = lookup.Line
		case errors.Is(err, storage.ErrCartLineNotFound):
			// позицию успел удалить параллельный checkout, создаём заново
			logger.Warn("cart line disappeared before update, recreating")
			lookup = models.CartLookup{Status: models.LookupNotFound}
		default:
			logger.Error("failed to update cart line", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if lookup.Status == models.LookupNotFound {
		line, err := s.cartRepo.CreateCartLine(ctx, id.UserID, productID, quantity)
		if err != nil {
			logger.Error("failed to create cart line", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result.Line = line
		result.Created = true
	}

	result.Line.ProductName = product.Name
	result.Line.Price = product.Price

	logger.Info("cart line saved", slog.Bool("created", result.Created), slog.Int("quantity", quantity))
	return result, nil
}

// Delete удаляет позицию корзины, если она принадлежит вызывающему.
func (s *cartService) Delete(ctx context.Context, id models.Identity, lineID int64) error {
	const op = "service.CartService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", id.UserID), slog.Int64("lineID", lineID))

	line, err := s.cartRepo.GetCartLineByID(ctx, lineID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if line.UserID != id.UserID {
		logger.Warn("attempt to delete foreign cart line", slog.Int64("ownerID", line.UserID))
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.cartRepo.DeleteCartLine(ctx, lineID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("cart line deleted")
	return nil
}
