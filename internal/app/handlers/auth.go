package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/proshop/internal/domain/models"
	security "github.com/linemk/proshop/internal/jwt-new"
	"github.com/linemk/proshop/internal/lib/api/response"
	"github.com/linemk/proshop/internal/service"
)

// RegisterRequest представляет структуру запроса на регистрацию с тегами валидации
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest используется и для logout, и для обновления access-токена
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// AuthResponse содержит пользователя и пару токенов
type AuthResponse struct {
	UserResponse
	Tokens *security.TokenPair `json:"tokens"`
}

type AccessResponse struct {
	Access string `json:"access"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Username: u.Username}
}

// decodeAndValidate разбирает JSON тела запроса и проверяет его validator'ом
func decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		logger.Error("invalid request: decoding error", slog.Any("error", err))
		response.Error(w, http.StatusBadRequest, "invalid request")
		return false
	}
	if err := validate.Struct(req); err != nil {
		logger.Error("invalid request: validation error", slog.Any("error", err))
		response.Error(w, http.StatusBadRequest, "validation error: "+err.Error())
		return false
	}
	return true
}

// RegisterHandler обрабатывает POST /register
func RegisterHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		var req RegisterRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		user, pair, err := authService.Register(r.Context(), req.Email, req.Username, req.Password)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusCreated, AuthResponse{UserResponse: toUserResponse(user), Tokens: pair})
	}
}

// LoginHandler – HTTP-обработчик для аутентификации по email и паролю
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		user, pair, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, AuthResponse{UserResponse: toUserResponse(user), Tokens: pair})
	}
}

// LogoutHandler отзывает refresh-токен. При любой ошибке отвечает 400 без подробностей.
func LogoutHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LogoutHandler"
		logger := log.With(slog.String("op", op))

		id, ok := identityFromRequest(w, r, logger)
		if !ok {
			return
		}

		var req RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
			logger.Warn("logout without refresh token")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := authService.Logout(r.Context(), id, req.Refresh); err != nil {
			logger.Warn("logout failed", slog.Any("error", err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusResetContent)
	}
}

// RefreshHandler обрабатывает POST /token/refresh
func RefreshHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RefreshHandler"
		logger := log.With(slog.String("op", op))

		var req RefreshRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		access, err := authService.Refresh(r.Context(), req.Refresh)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, AccessResponse{Access: access})
	}
}

// CurrentUserHandler обрабатывает GET /user и GET /current-user
func CurrentUserHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CurrentUserHandler"
		logger := log.With(slog.String("op", op))

		id, ok := identityFromRequest(w, r, logger)
		if !ok {
			return
		}

		user, err := authService.CurrentUser(r.Context(), id)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, toUserResponse(user))
	}
}

func UsersHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UsersHandler"
		logger := log.With(slog.String("op", op))

		users, err := authService.ListUsers(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		resp := make([]UserResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, toUserResponse(u))
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}
