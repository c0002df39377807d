package service

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avbelova/tasktracker-api/internal/auth"
	"github.com/avbelova/tasktracker-api/internal/model"
	"github.com/avbelova/tasktracker-api/internal/repo"
)

func newAuthService(users repo.UserRepository) *AuthService {
	hasher := auth.NewHasher()
	codec := auth.NewCodec([]byte("test-secret"))
	return NewAuthService(users, hasher, codec, 30*time.Minute, time.Hour)
}

func seedUser(t *testing.T, password string) model.User {
	t.Helper()
	hash, err := auth.NewHasher().Hash(password)
	require.NoError(t, err)
	return model.User{
		ID:           uuid.Must(uuid.NewV7()),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	user := seedUser(t, "Alice@123")

	tests := []struct {
		name      string
		username  string
		password  string
		setupMock func(*MockUserRepository)
		wantErr   error
	}{
		{
			name:     "valid credentials",
			username: "alice",
			password: "Alice@123",
			setupMock: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
			},
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "Alice@124",
			setupMock: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
			},
			wantErr: ErrUnauthorized,
		},
		{
			name:     "unknown user",
			username: "nobody",
			password: "Alice@123",
			setupMock: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "nobody").Return(model.User{}, repo.ErrorNotFound)
			},
			wantErr: ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := newAuthService(mockRepo)
			pair, err := service.Authenticate(context.Background(), tt.username, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, user.ID, pair.UserID)
				assert.NotEmpty(t, pair.AccessToken)
				assert.NotEmpty(t, pair.RefreshToken)
				assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_AuthFailuresAreIndistinguishable(t *testing.T) {
	user := seedUser(t, "Alice@123")

	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
	mockRepo.On("GetByUsername", mock.Anything, "nobody").Return(model.User{}, repo.ErrorNotFound)

	service := newAuthService(mockRepo)

	_, errWrongPass := service.Authenticate(context.Background(), "alice", "wrong")
	_, errNoUser := service.Authenticate(context.Background(), "nobody", "Alice@123")

	// обе ветки отказа отдают один и тот же error
	assert.Equal(t, errWrongPass, errNoUser)
}

func TestAuthService_Refresh(t *testing.T) {
	user := seedUser(t, "Alice@123")

	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
	mockRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	service := newAuthService(mockRepo)

	pair, err := service.Authenticate(context.Background(), "alice", "Alice@123")
	require.NoError(t, err)

	rotated, err := service.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, user.ID, rotated.UserID)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken, "refresh must rotate the pair")
	assert.NotEqual(t, pair.AccessToken, rotated.AccessToken)

	// новый refresh-токен сам пригоден для следующей ротации
	_, err = service.Refresh(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_RefreshRejectsAccessToken(t *testing.T) {
	user := seedUser(t, "Alice@123")

	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByUsername", mock.Anything, "alice").Return(user, nil)

	service := newAuthService(mockRepo)

	pair, err := service.Authenticate(context.Background(), "alice", "Alice@123")
	require.NoError(t, err)

	_, err = service.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_RefreshDeletedUser(t *testing.T) {
	user := seedUser(t, "Alice@123")

	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
	mockRepo.On("GetByID", mock.Anything, user.ID).Return(model.User{}, repo.ErrorNotFound)

	service := newAuthService(mockRepo)

	pair, err := service.Authenticate(context.Background(), "alice", "Alice@123")
	require.NoError(t, err)

	// пользователь удален - его refresh-токены больше не работают
	_, err = service.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_RefreshGarbage(t *testing.T) {
	service := newAuthService(new(MockUserRepository))

	_, err := service.Refresh(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Resolve(t *testing.T) {
	user := seedUser(t, "Alice@123")

	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
	mockRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	service := newAuthService(mockRepo)

	pair, err := service.Authenticate(context.Background(), "alice", "Alice@123")
	require.NoError(t, err)

	resolved, err := service.Resolve(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	// refresh-токен не проходит как access
	_, err = service.Resolve(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_ResolveExpired(t *testing.T) {
	user := seedUser(t, "Alice@123")

	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByUsername", mock.Anything, "alice").Return(user, nil)

	hasher := auth.NewHasher()
	codec := auth.NewCodec([]byte("test-secret"))
	service := NewAuthService(mockRepo, hasher, codec, -time.Minute, time.Hour)

	pair, err := service.Authenticate(context.Background(), "alice", "Alice@123")
	require.NoError(t, err)

	_, err = service.Resolve(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
