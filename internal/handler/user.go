package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/avbelova/tasktracker-api/internal/model"
	"github.com/avbelova/tasktracker-api/internal/service"
	"github.com/avbelova/tasktracker-api/pkg/respond"
)

type UserHandler struct {
	service *service.UserService
	logger  *zap.Logger
}

func NewUserHandler(srv *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: srv, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Create - POST /api/users, регистрация
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		handleErrors(h.logger, w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, user)
}

// Me - GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromCtx(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}
	respond.JSON(w, r, http.StatusOK, user)
}

// UpdateMe - PUT /api/users/me, частичное обновление профиля
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromCtx(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	var upd model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	updated, err := h.service.Update(r.Context(), user.ID, upd)
	if err != nil {
		handleErrors(h.logger, w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, updated)
}
