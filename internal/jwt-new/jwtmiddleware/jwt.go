package jwtmiddleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/linemk/proshop/internal/domain/models"
	security "github.com/linemk/proshop/internal/jwt-new"
	"github.com/linemk/proshop/internal/lib/api/response"
)

type contextKey string

const IdentityKey contextKey = "identity"

// NewJWTMiddleware создаёт middleware для проверки access-токена.
func NewJWTMiddleware(tokens *security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization (формат: "Bearer <token>")
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Error(w, http.StatusUnauthorized, "missing token")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Error(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			claims, err := tokens.ParseAccess(parts[1])
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "invalid token claims: invalid user id")
				return
			}

			ctx := WithIdentity(r.Context(), models.Identity{UserID: userID, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// FromContext извлекает identity из контекста.
func FromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(models.Identity)
	return id, ok
}
