package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/proshop/internal/service"
)

// CreateOrderResponse ответ при успешном оформлении заказа.
type CreateOrderResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
}

// CreateOrderHandler обрабатывает POST /create-order
func CreateOrderHandler(log *slog.Logger, checkout service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		id, ok := identityFromRequest(w, r, logger)
		if !ok {
			return
		}

		order, err := checkout.Checkout(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, CreateOrderResponse{
			Message: "Order created successfully",
			OrderID: order.ID,
		})
	}
}

// OrdersHandler обрабатывает GET /orders
func OrdersHandler(log *slog.Logger, checkout service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersHandler"
		logger := log.With(slog.String("op", op))

		id, ok := identityFromRequest(w, r, logger)
		if !ok {
			return
		}

		orders, err := checkout.ListOrders(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, orders)
	}
}

// OrderItemsHandler обрабатывает GET /order-items/{orderId}
func OrderItemsHandler(log *slog.Logger, checkout service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderItemsHandler"
		logger := log.With(slog.String("op", op))

		id, ok := identityFromRequest(w, r, logger)
		if !ok {
			return
		}
		orderID, ok := pathID(w, r, logger, "orderId")
		if !ok {
			return
		}

		items, err := checkout.ListOrderItems(r.Context(), id, orderID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, items)
	}
}
