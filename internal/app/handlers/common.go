package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/linemk/proshop/internal/domain/models"
	"github.com/linemk/proshop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/proshop/internal/lib/api/response"
	"github.com/linemk/proshop/internal/service"
	"github.com/linemk/proshop/internal/storage"
)

var validate = validator.New()

type errorMapping struct {
	target  error
	status  int
	message string
}

// соответствие ошибок сервиса и хранилища HTTP-статусам
var errorMappings = []errorMapping{
	{service.ErrInvalidQuantity, http.StatusBadRequest, "quantity must be a positive integer"},
	{service.ErrCartEmpty, http.StatusBadRequest, "Cart is empty"},
	{service.ErrOrderNotFound, http.StatusBadRequest, "There is not order with this number"},
	{storage.ErrUserExists, http.StatusBadRequest, "user with this email already exists"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Incorrect credentials"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "token is invalid or expired"},
	{service.ErrForbidden, http.StatusForbidden, "You are not allowed to delete this product"},
	{storage.ErrProductNotFound, http.StatusNotFound, "product not found"},
	{storage.ErrCartLineNotFound, http.StatusNotFound, "cart line not found"},
	{storage.ErrUserNotFound, http.StatusNotFound, "user not found"},
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			logger.Warn("request failed", slog.Any("error", err), slog.Int("status", m.status))
			response.Error(w, m.status, m.message)
			return
		}
	}
	logger.Error("internal error", slog.Any("error", err))
	response.Error(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	if err := response.JSON(w, status, v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// identityFromRequest извлекает identity, установленную JWT middleware
func identityFromRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (models.Identity, bool) {
	id, ok := jwtmiddleware.FromContext(r.Context())
	if !ok {
		logger.Error("identity not found in context")
		response.Error(w, http.StatusUnauthorized, "unauthorized")
	}
	return id, ok
}

func pathID(w http.ResponseWriter, r *http.Request, logger *slog.Logger, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		logger.Warn("invalid path id", slog.String("param", param), slog.String("value", chi.URLParam(r, param)))
		response.Error(w, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}
