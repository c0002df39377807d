package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/avbelova/tasktracker-api/internal/model"
	"github.com/avbelova/tasktracker-api/internal/repo"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	exportLimit  = 1000 // потолок страницы при выгрузке в CSV

	maxTitleLen       = 255
	maxDescriptionLen = 2048
)

type TaskService struct {
	repo repo.TaskRepository
	jobs repo.ImportJobRepository
}

func NewTaskService(repo repo.TaskRepository, jobs repo.ImportJobRepository) *TaskService {
	return &TaskService{repo: repo, jobs: jobs}
}

func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, t model.Task) (model.Task, error) {
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if err := validateTask(t); err != nil {
		return t, err
	}

	id, err := uuid.NewV7() // монотонный id, порядок создания = порядок сортировки
	if err != nil {
		return t, err
	}
	t.ID = id
	t.OwnerID = ownerID
	return s.repo.Create(ctx, t)
}

func (s *TaskService) Get(ctx context.Context, id, ownerID uuid.UUID) (model.Task, error) {
	return s.repo.Get(ctx, id, ownerID)
}

// List - курсорная пагинация: запрашиваем у репозитория limit+1 строк,
// лишняя строка дает точный has_more без отдельного COUNT. next_cursor -
// id последней отданной строки, граница по значению, а не живая ссылка.
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID, cursor *string, limit int, filter model.TaskFilter) (model.TaskPage, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var cursorID *uuid.UUID
	if cursor != nil && *cursor != "" {
		id, err := uuid.FromString(*cursor)
		if err != nil {
			return model.TaskPage{}, fmt.Errorf("%w: invalid cursor", ErrValidation)
		}
		cursorID = &id
	}

	items, err := s.repo.List(ctx, ownerID, cursorID, limit+1, filter)
	if err != nil {
		return model.TaskPage{}, err
	}

	page := model.TaskPage{HasMore: len(items) > limit}
	if page.HasMore {
		items = items[:limit]
	}
	page.Data = items
	if page.HasMore && len(items) > 0 {
		last := items[len(items)-1].ID.String()
		page.NextCursor = &last
	}
	return page, nil
}

func (s *TaskService) Update(ctx context.Context, id, ownerID uuid.UUID, upd model.TaskUpdate) (model.Task, error) {
	if upd.Title != nil {
		if strings.TrimSpace(*upd.Title) == "" || len(*upd.Title) > maxTitleLen {
			return model.Task{}, fmt.Errorf("%w: title must be 1-%d characters", ErrValidation, maxTitleLen)
		}
	}
	if upd.Description != nil && len(*upd.Description) > maxDescriptionLen {
		return model.Task{}, fmt.Errorf("%w: description is too long", ErrValidation)
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return model.Task{}, fmt.Errorf("%w: unknown status %q", ErrValidation, *upd.Status)
	}
	if upd.Priority != nil && !upd.Priority.Valid() {
		return model.Task{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, *upd.Priority)
	}
	return s.repo.Update(ctx, id, ownerID, upd)
}

func (s *TaskService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return s.repo.Delete(ctx, id, ownerID)
}

var csvHeader = []string{"id", "title", "description", "status", "priority", "created_at", "updated_at", "owner_id"}

// ExportCSV выгружает все задачи владельца в порядке создания,
// страницами по exportLimit через тот же курсорный механизм
func (s *TaskService) ExportCSV(ctx context.Context, ownerID uuid.UUID, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	var cursor *uuid.UUID
	for {
		items, err := s.repo.List(ctx, ownerID, cursor, exportLimit+1, model.TaskFilter{})
		if err != nil {
			return err
		}
		hasMore := len(items) > exportLimit
		if hasMore {
			items = items[:exportLimit]
		}
		for _, t := range items {
			rec := []string{
				t.ID.String(), t.Title, t.Description,
				string(t.Status), string(t.Priority),
				t.CreatedAt.Format(time.RFC3339), t.UpdatedAt.Format(time.RFC3339),
				t.OwnerID.String(),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		if !hasMore {
			break
		}
		last := items[len(items)-1].ID
		cursor = &last
	}

	cw.Flush()
	return cw.Error()
}

// EnqueueImport ставит CSV в очередь фоновой обработки
func (s *TaskService) EnqueueImport(ctx context.Context, ownerID uuid.UUID, payload []byte) (model.ImportJob, error) {
	if len(payload) == 0 {
		return model.ImportJob{}, fmt.Errorf("%w: empty file", ErrValidation)
	}
	return s.jobs.Enqueue(ctx, ownerID, payload)
}

func (s *TaskService) ImportJob(ctx context.Context, id int64, ownerID uuid.UUID) (model.ImportJob, error) {
	return s.jobs.Get(ctx, id, ownerID)
}

// ImportCSV обрабатывает файл построчно: плохая строка увеличивает
// счетчик ошибок, но не прерывает импорт. Вызывается воркером, не хэндлером.
func (s *TaskService) ImportCSV(ctx context.Context, ownerID uuid.UUID, payload []byte) (succeeded, failed int, err error) {
	r := csv.NewReader(bytes.NewReader(payload))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid csv", ErrValidation)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["title"]; !ok {
		return 0, 0, fmt.Errorf("%w: missing title column", ErrValidation)
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	for {
		rec, rerr := r.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			failed++
			continue
		}
		t := model.Task{
			Title:       field(rec, "title"),
			Description: field(rec, "description"),
			Status:      model.TaskStatus(field(rec, "status")),
			Priority:    model.TaskPriority(field(rec, "priority")),
		}
		if _, cerr := s.Create(ctx, ownerID, t); cerr != nil {
			failed++
			continue
		}
		succeeded++
	}
	return succeeded, failed, nil
}

func validateTask(t model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(t.Title) > maxTitleLen {
		return fmt.Errorf("%w: title must be 1-%d characters", ErrValidation, maxTitleLen)
	}
	if len(t.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description is too long", ErrValidation)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, t.Status)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, t.Priority)
	}
	return nil
}
