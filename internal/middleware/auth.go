package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Elyson25/clean-air-now/internal/auth"
	"github.com/Elyson25/clean-air-now/internal/domain"

	"github.com/google/uuid"
)

type ctxKey string

const userKey ctxKey = "auth_user"

// UserGetter loads the token's subject so revoked/deleted accounts fail
// even with a valid signature.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

func Auth(jwtSecret string, users UserGetter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w)
				return
			}

			userID, _, err := auth.Parse(jwtSecret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.Warn("token rejected", slog.Any("error", err))
				unauthorized(w)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				logger.Warn("token subject not found", slog.String("user_id", userID.String()))
				unauthorized(w)
				return
			}

			authUser := domain.AuthUser{
				ID:      user.ID,
				Name:    user.Name,
				Email:   user.Email,
				IsAdmin: user.IsAdmin,
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, authUser)))
		})
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			if !user.IsAdmin {
				logger.Warn("admin route denied", slog.String("user_id", user.ID.String()))
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserFromContext(ctx context.Context) (domain.AuthUser, bool) {
	user, ok := ctx.Value(userKey).(domain.AuthUser)
	return user, ok
}

// WithUser injects an authenticated user the way Auth does.
func WithUser(ctx context.Context, user domain.AuthUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func unauthorized(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}
