package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/avbelova/tasktracker-api/internal/auth"
	"github.com/avbelova/tasktracker-api/internal/model"
	"github.com/avbelova/tasktracker-api/internal/repo"
)

type UserService struct {
	repo   repo.UserRepository
	hasher *auth.Hasher
}

func NewUserService(repo repo.UserRepository, hasher *auth.Hasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (model.User, error) {
	if err := validateUsername(username); err != nil {
		return model.User{}, err
	}
	if err := validateEmail(email); err != nil {
		return model.User{}, err
	}
	if err := validatePassword(password); err != nil {
		return model.User{}, err
	}

	// Проверки уникальности до вставки, чтобы назвать поле в ответе.
	// Гонку двух одновременных регистраций добивает unique-индекс.
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return model.User{}, fmt.Errorf("username %q is already taken: %w", username, repo.ErrorConflict)
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return model.User{}, fmt.Errorf("email %q is already registered: %w", email, repo.ErrorConflict)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, err
	}

	id, err := uuid.NewV7() // время-упорядоченный id
	if err != nil {
		return model.User{}, err
	}

	return s.repo.Create(ctx, model.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Update меняет только переданные поля; смена username/email заново
// проходит проверку уникальности, пароль перехэшируется
func (s *UserService) Update(ctx context.Context, id uuid.UUID, upd model.UserUpdate) (model.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if upd.Username != nil && *upd.Username != u.Username {
		if err := validateUsername(*upd.Username); err != nil {
			return model.User{}, err
		}
		if _, err := s.repo.GetByUsername(ctx, *upd.Username); err == nil {
			return model.User{}, fmt.Errorf("username %q is already taken: %w", *upd.Username, repo.ErrorConflict)
		}
		u.Username = *upd.Username
	}
	if upd.Email != nil && *upd.Email != u.Email {
		if err := validateEmail(*upd.Email); err != nil {
			return model.User{}, err
		}
		if _, err := s.repo.GetByEmail(ctx, *upd.Email); err == nil {
			return model.User{}, fmt.Errorf("email %q is already registered: %w", *upd.Email, repo.ErrorConflict)
		}
		u.Email = *upd.Email
	}
	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return model.User{}, err
		}
		hash, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return model.User{}, err
		}
		u.PasswordHash = hash
	}

	return s.repo.Update(ctx, u)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
