package repo

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/avbelova/tasktracker-api/internal/model"
)

type UserRepo struct {
	pool PgxPool
}

func NewUserRepo(pool PgxPool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, email, password_hash, created_at, updated_at
	`, u.ID, u.Username, u.Email, u.PasswordHash).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if isUniqueViolation(err) { // гонку двух регистраций ловит unique-индекс
		return u, ErrorConflict
	}
	return u, err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getBy(ctx, "username = $1", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *UserRepo) getBy(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE `+where, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, ErrorNotFound
	}
	return u, err
}

func (r *UserRepo) Update(ctx context.Context, u model.User) (model.User, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, updated_at = now()
		WHERE id = $1
		RETURNING id, username, email, password_hash, created_at, updated_at
	`, u.ID, u.Username, u.Email, u.PasswordHash).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, ErrorNotFound
	}
	if isUniqueViolation(err) {
		return u, ErrorConflict
	}
	return u, err
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}
