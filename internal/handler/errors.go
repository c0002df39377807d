package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/avbelova/tasktracker-api/internal/repo"
	"github.com/avbelova/tasktracker-api/internal/service"
	"github.com/avbelova/tasktracker-api/pkg/respond"
)

// handleErrors - единая точка маппинга ошибок слоев на HTTP-статусы.
// Текст ошибок валидации и конфликтов безопасно отдать наружу,
// там нет секретов. 401 всегда обезличенный.
func handleErrors(logger *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	default:
		logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
