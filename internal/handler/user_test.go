package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avbelova/tasktracker-api/internal/auth"
	"github.com/avbelova/tasktracker-api/internal/model"
	"github.com/avbelova/tasktracker-api/internal/service"
)

func TestUserHandler_Create(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{
			name:     "valid registration",
			body:     `{"username":"newuser","email":"newuser@example.com","password":"Newuser@123"}`,
			wantCode: http.StatusCreated,
		},
		{
			name:     "weak password",
			body:     `{"username":"newuser","email":"newuser@example.com","password":"password"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid json",
			body:     `{"username":`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "empty body",
			body:     "",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userService := service.NewUserService(&stubUserRepo{}, auth.NewHasher())
			h := NewUserHandler(userService, zap.NewNop())

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(tt.body))

			h.Create(w, r)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestUserHandler_CreateNeverLeaksHash(t *testing.T) {
	userService := service.NewUserService(&stubUserRepo{}, auth.NewHasher())
	h := NewUserHandler(userService, zap.NewNop())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/users",
		strings.NewReader(`{"username":"newuser","email":"newuser@example.com","password":"Newuser@123"}`))

	h.Create(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "argon2id")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestUserHandler_Me(t *testing.T) {
	_, user := newTestAuth(t)
	userService := service.NewUserService(&stubUserRepo{user: user}, auth.NewHasher())
	h := NewUserHandler(userService, zap.NewNop())

	t.Run("with user in context", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		r = r.WithContext(WithUser(r.Context(), user))

		h.Me(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var got model.User
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("without user in context", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)

		h.Me(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUserHandler_UpdateMe(t *testing.T) {
	_, user := newTestAuth(t)

	userService := service.NewUserService(&stubUserRepo{user: user}, auth.NewHasher())
	h := NewUserHandler(userService, zap.NewNop())

	t.Run("rename", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/api/users/me",
			strings.NewReader(`{"username":"alice_two"}`))
		r = r.WithContext(WithUser(r.Context(), user))

		h.UpdateMe(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var got model.User
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, "alice_two", got.Username)
	})

	t.Run("invalid email", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/api/users/me",
			strings.NewReader(`{"email":"nope"}`))
		r = r.WithContext(WithUser(r.Context(), user))

		h.UpdateMe(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
