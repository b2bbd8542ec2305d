package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/proshop/internal/app/handlers"
	security "github.com/linemk/proshop/internal/jwt-new"
	"github.com/linemk/proshop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/proshop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/proshop/internal/service"
)

// Services содержит сервисы, которые обслуживает роутер
type Services struct {
	Auth     service.AuthServiceInterface
	Catalog  service.CatalogService
	Cart     service.CartService
	Checkout service.CheckoutService
}

// NewRouter собирает chi роутер со всеми эндпоинтами
func NewRouter(log *slog.Logger, tokens *security.TokenManager, s Services) http.Handler {
	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)

	// публичные эндпоинты
	router.Post("/register", handlers.RegisterHandler(log, s.Auth))
	router.Post("/login", handlers.LoginHandler(log, s.Auth))
	router.Post("/token/refresh", handlers.RefreshHandler(log, s.Auth))
	router.Get("/products", handlers.ProductsHandler(log, s.Catalog))
	router.Get("/product/{id}", handlers.ProductHandler(log, s.Catalog))

	router.Group(func(r chi.Router) {
		r.Use(jwtmiddleware.NewJWTMiddleware(tokens))

		r.Post("/logout", handlers.LogoutHandler(log, s.Auth))
		r.Get("/user", handlers.CurrentUserHandler(log, s.Auth))
		r.Get("/current-user", handlers.CurrentUserHandler(log, s.Auth))
		r.Get("/users", handlers.UsersHandler(log, s.Auth))

		// корзина
		r.Get("/cart", handlers.CartHandler(log, s.Cart))
		r.Post("/add-cart/{productId}", handlers.AddCartHandler(log, s.Cart))
		r.Delete("/delete-cart/{cartLineId}", handlers.DeleteCartHandler(log, s.Cart))

		// заказы
		r.Post("/create-order", handlers.CreateOrderHandler(log, s.Checkout))
		r.Get("/orders", handlers.OrdersHandler(log, s.Checkout))
		r.Get("/order-items/{orderId}", handlers.OrderItemsHandler(log, s.Checkout))
	})

	return router
}
