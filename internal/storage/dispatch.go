package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/linemk/remeras-order/internal/domain/models"
)

// DispatchStorage журнал попыток отправки заказа
type DispatchStorage interface {
	RecordDispatch(ctx context.Context, d *models.Dispatch) error
	// ListDispatches возвращает попытки сессии от новых к старым
	ListDispatches(ctx context.Context, sessionID string) ([]*models.Dispatch, error)
}

// DispatchPruner хранилища, которым нужно чистить журнал самим.
// Postgres-журнал хранится без ограничения срока и его не реализует.
type DispatchPruner interface {
	// PruneDispatches удаляет записи, созданные раньше before
	PruneDispatches(ctx context.Context, before time.Time) (int64, error)
}

type dispatchRepository struct {
	db *sql.DB
}

func NewDispatchRepository(db *sql.DB) DispatchStorage {
	return &dispatchRepository{db: db}
}

func (r *dispatchRepository) RecordDispatch(ctx context.Context, d *models.Dispatch) error {
	query := `INSERT INTO dispatches (id, session_id, units, recipients, status, error, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, d.ID, d.SessionID, d.Units, d.Recipients, string(d.Status), d.Error, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record dispatch: %w", err)
	}
	return nil
}

func (r *dispatchRepository) ListDispatches(ctx context.Context, sessionID string) ([]*models.Dispatch, error) {
	query := `
		SELECT id, session_id, units, recipients, status, error, created_at
		FROM dispatches
		WHERE session_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dispatches []*models.Dispatch
	for rows.Next() {
		d := &models.Dispatch{}
		var status string
		if err := rows.Scan(&d.ID, &d.SessionID, &d.Units, &d.Recipients, &status, &d.Error, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Status = models.DispatchStatus(status)
		dispatches = append(dispatches, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dispatches, nil
}

type memoryDispatchRepository struct {
	mu         sync.RWMutex
	dispatches []models.Dispatch
}

func NewMemoryDispatchRepository() DispatchStorage {
	return &memoryDispatchRepository{}
}

func (r *memoryDispatchRepository) RecordDispatch(_ context.Context, d *models.Dispatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatches = append(r.dispatches, *d)
	return nil
}

func (r *memoryDispatchRepository) ListDispatches(_ context.Context, sessionID string) ([]*models.Dispatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Dispatch
	for i := len(r.dispatches) - 1; i >= 0; i-- {
		if r.dispatches[i].SessionID == sessionID {
			d := r.dispatches[i]
			out = append(out, &d)
		}
	}
	return out, nil
}

// PruneDispatches журнал в памяти живёт не дольше сессий, к которым он относится
func (r *memoryDispatchRepository) PruneDispatches(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.dispatches[:0]
	for _, d := range r.dispatches {
		if !d.CreatedAt.Before(before) {
			kept = append(kept, d)
		}
	}
	removed := int64(len(r.dispatches) - len(kept))
	// хвост обнуляется, чтобы не держать строки ошибок
	for i := len(kept); i < len(r.dispatches); i++ {
		r.dispatches[i] = models.Dispatch{}
	}
	r.dispatches = kept
	return removed, nil
}
