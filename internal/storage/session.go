package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linemk/remeras-order/internal/domain/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

// SessionStorage хранит состояние формы между шагами; просроченные сессии считаются отсутствующими
type SessionStorage interface {
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	// SaveSession перезаписывает состояние существующей сессии
	SaveSession(ctx context.Context, s *models.Session) error
	DeleteSession(ctx context.Context, id string) error
	// DeleteExpiredSessions удаляет сессии с expires_at <= now и возвращает их количество
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// sessionState то, что лежит в jsonb-колонке state
type sessionState struct {
	Customer   models.CustomerInfo `json:"customer"`
	Quantities models.SizeQuantity `json:"quantities"`
	Details    []models.UnitDetail `json:"details"`
}

type sessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository создаёт postgres-репозиторий сессий.
func NewSessionRepository(db *sql.DB) SessionStorage {
	return &sessionRepository{db: db, now: time.Now}
}

func marshalState(s *models.Session) ([]byte, error) {
	return json.Marshal(sessionState{
		Customer:   s.Customer,
		Quantities: s.Quantities,
		Details:    s.Details,
	})
}

func (r *sessionRepository) CreateSession(ctx context.Context, s *models.Session) error {
	state, err := marshalState(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	query := `INSERT INTO sessions (id, state, created_at, updated_at, expires_at)
	          VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, s.ID, state, s.CreatedAt, s.UpdatedAt, s.ExpiresAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT state, created_at, updated_at, expires_at FROM sessions WHERE id = $1 AND expires_at > $2`

	var (
		raw []byte
		s   = &models.Session{ID: id}
	)
	row := r.db.QueryRowContext(ctx, query, id, r.now())
	if err := row.Scan(&raw, &s.CreatedAt, &s.UpdatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var state sessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	s.Customer = state.Customer
	s.Quantities = state.Quantities
	s.Details = state.Details
	return s, nil
}

func (r *sessionRepository) SaveSession(ctx context.Context, s *models.Session) error {
	state, err := marshalState(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET state = $1, updated_at = $2, expires_at = $3 WHERE id = $4",
		state, s.UpdatedAt, s.ExpiresAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return expectAffected(res)
}

func (r *sessionRepository) DeleteSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return expectAffected(res)
}

func (r *sessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= $1", now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
