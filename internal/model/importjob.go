package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

const (
	ImportPending    = "pending"
	ImportProcessing = "processing"
	ImportCompleted  = "completed"
	ImportFailed     = "failed"
)

// ImportJob - фоновый CSV-импорт. Большой файл не должен держать
// request/response цикл, поэтому обрабатывается пулом воркеров.
type ImportJob struct {
	ID           int64     `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Payload      []byte    `json:"-"`
	Status       string    `json:"status"`
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
