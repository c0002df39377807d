package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/avbelova/tasktracker-api/internal/auth"
	"github.com/avbelova/tasktracker-api/internal/migrate"
	"github.com/avbelova/tasktracker-api/internal/model"
)

// SetupTestDB поднимает PostgreSQL в testcontainers и накатывает миграции
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	if err := migrate.Up(ctx, connStr); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// TruncateTables очищает все таблицы
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, "TRUNCATE users, tasks, import_jobs RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// SeedUser создает пользователя с заданным паролем
func SeedUser(t *testing.T, pool *pgxpool.Pool, username, password string) model.User {
	t.Helper()
	ctx := context.Background()

	hash, err := auth.NewHasher().Hash(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	u := model.User{
		ID:           uuid.Must(uuid.NewV7()),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`, u.ID, u.Username, u.Email, u.PasswordHash)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}

	return u
}

// SeedTasks создает задачи владельца, возвращает id в порядке создания
func SeedTasks(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID, count int) []uuid.UUID {
	t.Helper()
	ctx := context.Background()

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.Must(uuid.NewV7())
		_, err := pool.Exec(ctx, `
			INSERT INTO tasks (id, title, status, priority, owner_id)
			VALUES ($1, $2, $3, $4, $5)
		`, id, fmt.Sprintf("Task %d", i+1), "todo", "medium", ownerID)
		if err != nil {
			t.Fatalf("Failed to seed task: %v", err)
		}
		ids = append(ids, id)
	}

	return ids
}

// SeedImportJob кладет CSV в очередь напрямую
func SeedImportJob(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID, payload []byte) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO import_jobs (owner_id, payload, status)
		VALUES ($1, $2, 'pending')
		RETURNING id
	`, ownerID, payload).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed import job: %v", err)
	}

	return id
}

// WaitForCondition ждет выполнения условия с таймаутом
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}
