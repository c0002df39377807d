package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/avbelova/tasktracker-api/internal/service"
	"github.com/avbelova/tasktracker-api/pkg/respond"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	auth       *service.AuthService
	logger     *zap.Logger
	refreshTTL time.Duration
}

func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		logger:     logger,
		refreshTTL: auth.RefreshTTL(),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token - POST /api/users/auth/token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Username == "" || req.Password == "" {
		respond.Error(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	pair, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		handleErrors(h.logger, w, r, err)
		return
	}

	// refresh уезжает и в cookie: http-only канал недоступен скриптам
	// страницы, поэтому по умолчанию клиентам стоит жить на нем
	h.setRefreshCookie(w, pair.RefreshToken)
	respond.JSON(w, r, http.StatusOK, pair)
}

// Refresh - POST /api/users/auth/refresh. Токен берется из cookie,
// иначе из тела. Успех ротирует пару: cookie сразу перезаписывается новой.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := h.refreshTokenFrom(r)
	if token == "" {
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	pair, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		handleErrors(h.logger, w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	respond.JSON(w, r, http.StatusOK, pair)
}

// Logout - POST /api/users/auth/logout, просто гасит cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) refreshTokenFrom(r *http.Request) string {
	if c, err := r.Cookie(refreshCookie); err == nil && c.Value != "" {
		return c.Value
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	return body.RefreshToken
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
