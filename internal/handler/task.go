package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/avbelova/tasktracker-api/internal/model"
	"github.com/avbelova/tasktracker-api/internal/service"
	"github.com/avbelova/tasktracker-api/pkg/respond"
)

const maxImportSize = 10 << 20 // 10 MB на CSV-файл

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{service: srv, logger: logger}
}

// Create - POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserFromCtx(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.Task
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Create(r.Context(), owner.ID, req)
	if err != nil {
		handleErrors(h.logger, w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%s", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

// Get - GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserFromCtx(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	// кривой id не может существовать, поэтому тот же 404
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, http.StatusNotFound, "not found")
		return
	}

	task, err := h.service.Get(r.Context(), id, owner.ID)
	if err != nil {
		handleErrors(h.logger, w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// List - GET /api/tasks?cursor&limit&status&priority&created_after&...
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserFromCtx(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	q := r.URL.Query()

	filter, err := parseFilter(q)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var cursor *string
	if c := q.Get("cursor"); c != "" {
		cursor = &c
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	page, err := h.service.List(r.Context(), owner.ID, cursor, limit, filter)
	if err != nil {
		handleErrors(h.logger, w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, page)
}

// Update - PATCH /api/tasks/{id}, частичное обновление
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserFromCtx(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, http.StatusNotFound, "not found")
		return
	}

	var upd model.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Update(r.Context(), id, owner.ID, upd)
	if err != nil {
		handleErrors(h.logger, w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// Delete - DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserFromCtx(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, http.StatusNotFound, "not found")
		return
	}

	if err := h.service.Delete(r.Context(), id, owner.ID); err != nil {
		handleErrors(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export - GET /api/tasks/export, отдает CSV потоком
func (h *TaskHandler) Export(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserFromCtx(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.csv"`)
	if err := h.service.ExportCSV(r.Context(), owner.ID, w); err != nil {
		// заголовки уже ушли, статус менять поздно
		h.logger.Error("csv export failed", zap.Error(err))
	}
}

// Import - POST /api/tasks/import, принимает multipart-файл и ставит
// его в очередь: большой CSV не должен держать запрос
func (h *TaskHandler) Import(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserFromCtx(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, maxImportSize+1))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "failed to read file")
		return
	}
	if len(payload) > maxImportSize {
		respond.Error(w, r, http.StatusBadRequest, "file is too large")
		return
	}

	job, err := h.service.EnqueueImport(r.Context(), owner.ID, payload)
	if err != nil {
		handleErrors(h.logger, w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/import/%d", job.ID))
	respond.JSON(w, r, http.StatusAccepted, job)
}

// ImportStatus - GET /api/tasks/import/{id}
func (h *TaskHandler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := UserFromCtx(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, r, http.StatusNotFound, "not found")
		return
	}

	job, err := h.service.ImportJob(r.Context(), id, owner.ID)
	if err != nil {
		handleErrors(h.logger, w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, job)
}

func parseFilter(q url.Values) (model.TaskFilter, error) {
	var f model.TaskFilter

	if s := q.Get("status"); s != "" {
		st := model.TaskStatus(s)
		if !st.Valid() {
			return f, fmt.Errorf("unknown status %q", s)
		}
		f.Status = &st
	}
	if p := q.Get("priority"); p != "" {
		pr := model.TaskPriority(p)
		if !pr.Valid() {
			return f, fmt.Errorf("unknown priority %q", p)
		}
		f.Priority = &pr
	}

	for name, dst := range map[string]**time.Time{
		"created_after":  &f.CreatedAfter,
		"created_before": &f.CreatedBefore,
		"updated_after":  &f.UpdatedAfter,
		"updated_before": &f.UpdatedBefore,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("invalid %s, expected RFC3339", name)
		}
		*dst = &t
	}

	return f, nil
}
