package repo

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/avbelova/tasktracker-api/internal/model"
)

type TaskRepo struct {
	pool PgxPool
}

func NewTaskRepo(pool PgxPool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, description, status, priority, owner_id, created_at, updated_at
	`, t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), t.OwnerID).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *TaskRepo) Get(ctx context.Context, id, ownerID uuid.UUID) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, description, status, priority, owner_id, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

// List отдает задачи владельца строго по возрастанию id начиная с позиции
// за курсором. id монотонный (UUIDv7), поэтому параллельные вставки никогда
// не появляются раньше курсора, а удаление строки-курсора выборку не ломает:
// сравнение id > $2 работает и по уже несуществующему значению.
func (r *TaskRepo) List(ctx context.Context, ownerID uuid.UUID, cursor *uuid.UUID, limit int, filter model.TaskFilter) ([]model.Task, error) {
	var status, priority *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}
	if filter.Priority != nil {
		p := string(*filter.Priority)
		priority = &p
	}

	query := `
		SELECT id, title, description, status, priority, owner_id, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1
		  AND ($2::uuid IS NULL OR id > $2)
		  AND ($3::text IS NULL OR status = $3)
		  AND ($4::text IS NULL OR priority = $4)
		  AND ($5::timestamptz IS NULL OR created_at >= $5)
		  AND ($6::timestamptz IS NULL OR created_at <= $6)
		  AND ($7::timestamptz IS NULL OR updated_at >= $7)
		  AND ($8::timestamptz IS NULL OR updated_at <= $8)
		ORDER BY id
		LIMIT $9
	`

	rows, err := r.pool.Query(ctx, query,
		ownerID, cursor, status, priority,
		filter.CreatedAfter, filter.CreatedBefore,
		filter.UpdatedAfter, filter.UpdatedBefore,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, limit)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) Update(ctx context.Context, id, ownerID uuid.UUID, upd model.TaskUpdate) (model.Task, error) {
	var status, priority *string
	if upd.Status != nil {
		s := string(*upd.Status)
		status = &s
	}
	if upd.Priority != nil {
		p := string(*upd.Priority)
		priority = &p
	}

	var t model.Task
	err := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    status = COALESCE($5, status),
		    priority = COALESCE($6, priority),
		    updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING id, title, description, status, priority, owner_id, created_at, updated_at
	`, id, ownerID, upd.Title, upd.Description, status, priority).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}
