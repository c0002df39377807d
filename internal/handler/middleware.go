package handler

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/avbelova/tasktracker-api/internal/model"
	"github.com/avbelova/tasktracker-api/internal/service"
	"github.com/avbelova/tasktracker-api/pkg/respond"
)

type ctxKey string

const userKey ctxKey = "auth.user"

// Authenticator проверяет Bearer-токен и кладет пользователя в контекст.
// Любой провал - единый 401, конкретная причина уходит только в лог.
func Authenticator(auth *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
				return
			}

			user, err := auth.Resolve(r.Context(), token)
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, u model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromCtx(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(userKey).(model.User)
	return u, ok
}
