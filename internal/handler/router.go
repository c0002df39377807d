package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/avbelova/tasktracker-api/internal/service"
)

// NewRouter собирает все маршруты приложения в одном месте.
// Новый эндпоинт = одна строка здесь, без какой-либо магии регистрации.
func NewRouter(auth *AuthHandler, users *UserHandler, tasks *TaskHandler, authSvc *service.AuthService, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", users.Create)

		r.Route("/users/auth", func(r chi.Router) {
			r.Post("/token", auth.Token)
			r.Post("/refresh", auth.Refresh)
			r.Post("/logout", auth.Logout)
		})

		// все, что ниже, требует access-токен
		r.Group(func(r chi.Router) {
			r.Use(Authenticator(authSvc, logger))

			r.Get("/users/me", users.Me)
			r.Put("/users/me", users.UpdateMe)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", tasks.Create)
				r.Get("/", tasks.List)
				r.Get("/export", tasks.Export)
				r.Post("/import", tasks.Import)
				r.Get("/import/{id}", tasks.ImportStatus)
				r.Get("/{id}", tasks.Get)
				r.Patch("/{id}", tasks.Update)
				r.Delete("/{id}", tasks.Delete)
			})
		})
	})

	return r
}
