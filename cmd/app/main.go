package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/avbelova/tasktracker-api/internal/auth"
	"github.com/avbelova/tasktracker-api/internal/config"
	"github.com/avbelova/tasktracker-api/internal/handler"
	"github.com/avbelova/tasktracker-api/internal/migrate"
	"github.com/avbelova/tasktracker-api/internal/repo"
	"github.com/avbelova/tasktracker-api/internal/service"
	"github.com/avbelova/tasktracker-api/internal/worker"
)

func main() {
	// Подключаем логгер
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Загрузка конфигурации
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Миграции до подъема пула
	if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	// Подключаем БД
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to the database", zap.Error(err)) // Fatal потому что дальнейшая работа теряет смысл
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping the database", zap.Error(err))
	}
	logger.Info("successfully connected to the database")

	// Сборка зависимостей: все явно, без глобального состояния
	hasher := auth.NewHasher()
	codec := auth.NewCodec([]byte(cfg.JWTSecret))

	userRepo := repo.NewUserRepo(pool)
	taskRepo := repo.NewTaskRepo(pool)
	jobRepo := repo.NewImportJobRepo(pool)

	userService := service.NewUserService(userRepo, hasher)
	authService := service.NewAuthService(userRepo, hasher, codec, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	taskService := service.NewTaskService(taskRepo, jobRepo)

	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)

	r := handler.NewRouter(authHandler, userHandler, taskHandler, authService, logger)

	// Пул фоновых воркеров для CSV-импорта
	importPool := worker.NewPool(pool, taskService, logger, cfg.WorkerCount)
	importPool.Start(ctx)

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()

	logger.Info("shutting down server...")
	importPool.Stop()

	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shCtx); err != nil {
		logger.Fatal("shutdown error", zap.Error(err))
	}
	logger.Info("server stopped successfully")
}
