package repo

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/avbelova/tasktracker-api/internal/model"
)

type ImportJobRepo struct {
	pool PgxPool
}

func NewImportJobRepo(pool PgxPool) *ImportJobRepo {
	return &ImportJobRepo{pool: pool}
}

func (r *ImportJobRepo) Enqueue(ctx context.Context, ownerID uuid.UUID, payload []byte) (model.ImportJob, error) {
	var j model.ImportJob
	err := r.pool.QueryRow(ctx, `
		INSERT INTO import_jobs (owner_id, payload, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, owner_id, status, success_count, error_count, created_at, updated_at
	`, ownerID, payload).Scan(
		&j.ID, &j.OwnerID, &j.Status, &j.SuccessCount, &j.ErrorCount, &j.CreatedAt, &j.UpdatedAt,
	)
	return j, err
}

func (r *ImportJobRepo) Get(ctx context.Context, id int64, ownerID uuid.UUID) (model.ImportJob, error) {
	var j model.ImportJob
	err := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, status, success_count, error_count, created_at, updated_at
		FROM import_jobs
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID).Scan(
		&j.ID, &j.OwnerID, &j.Status, &j.SuccessCount, &j.ErrorCount, &j.CreatedAt, &j.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return j, ErrorNotFound
	}
	return j, err
}
