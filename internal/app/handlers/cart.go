package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/proshop/internal/domain/models"
	"github.com/linemk/proshop/internal/lib/api/response"
	"github.com/linemk/proshop/internal/service"
)

// AddCartRequest: qty обязателен, указатель отличает отсутствие поля от нуля
type AddCartRequest struct {
	Qty *int `json:"qty" validate:"required,gte=1"`
}

type AddCartResponse struct {
	Message string           `json:"message"`
	Result  *models.CartLine `json:"Result"`
}

// CartHandler обрабатывает GET /cart
func CartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartHandler"
		logger := log.With(slog.String("op", op))

		id, ok := identityFromRequest(w, r, logger)
		if !ok {
			return
		}

		lines, err := cartService.ListCart(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, lines)
	}
}

// AddCartHandler обрабатывает POST /add-cart/{productId}
func AddCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddCartHandler"
		logger := log.With(slog.String("op", op))

		id, ok := identityFromRequest(w, r, logger)
		if !ok {
			return
		}
		productID, ok := pathID(w, r, logger, "productId")
		if !ok {
			return
		}

		var req AddCartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			response.Error(w, http.StatusBadRequest, "invalid request")
			return
		}
		if req.Qty == nil {
			response.Error(w, http.StatusBadRequest, "You need to provide quantity")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			response.Error(w, http.StatusBadRequest, "quantity must be a positive integer")
			return
		}

		res, err := cartService.Upsert(r.Context(), id, productID, *req.Qty)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		msg := "Cart updated"
		if res.Created {
			msg = "Product added to cart"
		}
		writeJSON(w, logger, http.StatusOK, AddCartResponse{Message: msg, Result: res.Line})
	}
}

// DeleteCartHandler обрабатывает DELETE /delete-cart/{cartLineId}
func DeleteCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteCartHandler"
		logger := log.With(slog.String("op", op))

		id, ok := identityFromRequest(w, r, logger)
		if !ok {
			return
		}
		lineID, ok := pathID(w, r, logger, "cartLineId")
		if !ok {
			return
		}

		if err := cartService.Delete(r.Context(), id, lineID); err != nil {
			writeError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
