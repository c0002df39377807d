package repo

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/avbelova/tasktracker-api/internal/model"
)

// UserRepository определяет интерфейс для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Update(ctx context.Context, u model.User) (model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskRepository определяет интерфейс для работы с задачами.
// Все операции ограничены владельцем: чужая задача неотличима от несуществующей.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id, ownerID uuid.UUID) (model.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, cursor *uuid.UUID, limit int, filter model.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, upd model.TaskUpdate) (model.Task, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

// ImportJobRepository - очередь фоновых CSV-импортов
type ImportJobRepository interface {
	Enqueue(ctx context.Context, ownerID uuid.UUID, payload []byte) (model.ImportJob, error)
	Get(ctx context.Context, id int64, ownerID uuid.UUID) (model.ImportJob, error)
}
