package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/avbelova/tasktracker-api/internal/model"
	"github.com/avbelova/tasktracker-api/internal/service"
)

// Pool обрабатывает очередь CSV-импортов из таблицы import_jobs.
// Воркеры ходят в БД через свой пул соединений, не через соединение
// исходного запроса. FOR UPDATE SKIP LOCKED гарантирует, что два
// воркера не возьмут одну и ту же работу.
type Pool struct {
	pool   *pgxpool.Pool
	tasks  *service.TaskService
	logger *zap.Logger
	count  int
	wg     sync.WaitGroup
	stop   chan struct{}
}

func NewPool(pool *pgxpool.Pool, tasks *service.TaskService, logger *zap.Logger, count int) *Pool {
	return &Pool{
		pool:   pool,
		tasks:  tasks,
		logger: logger,
		count:  count,
		stop:   make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("starting import worker pool", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) Stop() {
	p.logger.Info("stopping import worker pool...")
	close(p.stop)
	p.wg.Wait()
	p.logger.Info("import worker pool stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.processNext(ctx, id); err != nil && err != pgx.ErrNoRows {
				p.logger.Error("import worker error", zap.Int("worker", id), zap.Error(err))
			}
		}
	}
}

func (p *Pool) processNext(ctx context.Context, workerID int) error {
	job, err := p.claimJob(ctx)
	if err != nil {
		return err
	}

	p.logger.Info("processing csv import",
		zap.Int("worker", workerID),
		zap.Int64("job_id", job.ID),
		zap.String("owner_id", job.OwnerID.String()),
	)

	succeeded, failed, err := p.tasks.ImportCSV(ctx, job.OwnerID, job.Payload)
	if err != nil {
		// файл не разобрался целиком - помечаем failed, но воркер живет дальше
		p.pool.Exec(ctx, `
			UPDATE import_jobs SET status = 'failed', updated_at = now() WHERE id = $1
		`, job.ID)
		return err
	}

	if err := p.completeJob(ctx, job.ID, succeeded, failed); err != nil {
		return err
	}

	p.logger.Info("csv import completed",
		zap.Int("worker", workerID),
		zap.Int64("job_id", job.ID),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
	)
	return nil
}

// claimJob атомарно забирает одну pending-работу
func (p *Pool) claimJob(ctx context.Context) (model.ImportJob, error) {
	var j model.ImportJob

	err := p.pool.QueryRow(ctx, `
		WITH claimed AS (
			SELECT id
			FROM import_jobs
			WHERE status = 'pending'
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE import_jobs
		SET status = 'processing', updated_at = now()
		FROM claimed
		WHERE import_jobs.id = claimed.id
		RETURNING import_jobs.id, import_jobs.owner_id, import_jobs.payload
	`).Scan(&j.ID, &j.OwnerID, &j.Payload)

	return j, err
}

func (p *Pool) completeJob(ctx context.Context, id int64, succeeded, failed int) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE import_jobs
		SET status = 'completed', success_count = $2, error_count = $3, updated_at = now()
		WHERE id = $1
	`, id, succeeded, failed)
	return err
}
