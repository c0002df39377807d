package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/avbelova/tasktracker-api/internal/auth"
	"github.com/avbelova/tasktracker-api/internal/model"
	"github.com/avbelova/tasktracker-api/internal/repo"
)

// AuthService выпускает, обновляет и проверяет токены сессии.
// Токены stateless: серверного списка отзыва нет, выпущенный токен
// криптографически валиден до своего exp.
type AuthService struct {
	users      repo.UserRepository
	hasher     *auth.Hasher
	codec      *auth.Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(users repo.UserRepository, hasher *auth.Hasher, codec *auth.Codec, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		hasher:     hasher,
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *AuthService) Authenticate(ctx context.Context, username, password string) (model.TokenPair, error) {
	u, err := s.users.GetByUsername(ctx, username)
	// Verify по пустому хэшу отрабатывает и на несуществующем
	// пользователе - обе ветки отказа стоят одинаково
	if err != nil || !s.hasher.Verify(password, u.PasswordHash) {
		return model.TokenPair{}, ErrUnauthorized
	}
	return s.issuePair(u.ID)
}

// Refresh проверяет refresh-токен, заново резолвит subject в живого
// пользователя (удаленный пользователь автоматически теряет все свои
// refresh-токены) и ротирует пару: клиент дальше живет на новом токене.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.codec.Parse(refreshToken)
	if err != nil || claims.TokenType != auth.TokenRefresh {
		return model.TokenPair{}, ErrUnauthorized
	}
	id, err := claims.UserID()
	if err != nil {
		return model.TokenPair{}, ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.TokenPair{}, ErrUnauthorized
	}
	return s.issuePair(u.ID)
}

// Resolve превращает access-токен в пользователя; им пользуется middleware
func (s *AuthService) Resolve(ctx context.Context, accessToken string) (model.User, error) {
	claims, err := s.codec.Parse(accessToken)
	if err != nil || claims.TokenType != auth.TokenAccess {
		return model.User{}, ErrUnauthorized
	}
	id, err := claims.UserID()
	if err != nil {
		return model.User{}, ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, ErrUnauthorized
	}
	return u, nil
}

// RefreshTTL нужен хэндлеру для max-age у cookie
func (s *AuthService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *AuthService) issuePair(id uuid.UUID) (model.TokenPair, error) {
	access, err := s.codec.Issue(id, auth.TokenAccess, s.accessTTL)
	if err != nil {
		return model.TokenPair{}, err
	}
	refresh, err := s.codec.Issue(id, auth.TokenRefresh, s.refreshTTL)
	if err != nil {
		return model.TokenPair{}, err
	}
	return model.TokenPair{UserID: id, AccessToken: access, RefreshToken: refresh}, nil
}
