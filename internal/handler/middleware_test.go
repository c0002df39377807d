package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avbelova/tasktracker-api/internal/auth"
	"github.com/avbelova/tasktracker-api/internal/model"
	"github.com/avbelova/tasktracker-api/internal/repo"
	"github.com/avbelova/tasktracker-api/internal/service"
)

// stubUserRepo отдает одного заранее заданного пользователя
type stubUserRepo struct {
	user model.User
}

func (s *stubUserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	return u, nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	if id == s.user.ID {
		return s.user, nil
	}
	return model.User{}, repo.ErrorNotFound
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	if username == s.user.Username {
		return s.user, nil
	}
	return model.User{}, repo.ErrorNotFound
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	if email == s.user.Email {
		return s.user, nil
	}
	return model.User{}, repo.ErrorNotFound
}

func (s *stubUserRepo) Update(ctx context.Context, u model.User) (model.User, error) {
	return u, nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func newTestAuth(t *testing.T) (*service.AuthService, model.User) {
	t.Helper()
	hasher := auth.NewHasher()
	hash, err := hasher.Hash("Alice@123")
	require.NoError(t, err)

	user := model.User{
		ID:           uuid.Must(uuid.NewV7()),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
	}
	codec := auth.NewCodec([]byte("test-secret"))
	return service.NewAuthService(&stubUserRepo{user: user}, hasher, codec, 30*time.Minute, time.Hour), user
}

func TestAuthenticator(t *testing.T) {
	authSvc, user := newTestAuth(t)

	pair, err := authSvc.Authenticate(context.Background(), "alice", "Alice@123")
	require.NoError(t, err)

	var gotUser model.User
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotUser, _ = UserFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := Authenticator(authSvc, zap.NewNop())(next)

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
		wantCalled bool
	}{
		{
			name:       "valid access token",
			authHeader: "Bearer " + pair.AccessToken,
			wantCode:   http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "lowercase scheme accepted",
			authHeader: "bearer " + pair.AccessToken,
			wantCode:   http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic " + pair.AccessToken,
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not.a.token",
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "refresh token is not an access token",
			authHeader: "Bearer " + pair.RefreshToken,
			wantCode:   http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			if tt.authHeader != "" {
				r.Header.Set("Authorization", tt.authHeader)
			}

			protected.ServeHTTP(w, r)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantCalled {
				assert.Equal(t, user.ID, gotUser.ID)
			}
		})
	}
}

func TestUserFromCtx(t *testing.T) {
	user := model.User{ID: uuid.Must(uuid.NewV7())}

	got, ok := UserFromCtx(WithUser(context.Background(), user))
	assert.True(t, ok)
	assert.Equal(t, user.ID, got.ID)

	_, ok = UserFromCtx(context.Background())
	assert.False(t, ok)
}
