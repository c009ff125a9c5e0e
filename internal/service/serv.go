package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/linemk/remeras-order/internal/domain/models"
	security "github.com/linemk/remeras-order/internal/jwt-new"
	"github.com/linemk/remeras-order/internal/order"
	"github.com/linemk/remeras-order/internal/storage"
)

// FormView текущее состояние формы, которое клиент отрисовывает как есть
type FormView struct {
	SessionID  string              `json:"session_id"`
	Customer   models.CustomerInfo `json:"customer"`
	Quantities models.SizeQuantity `json:"quantities"`
	Units      int                 `json:"units"`
	Details    []models.UnitDetail `json:"details"`
	CanSubmit  bool                `json:"can_submit"`
	ExpiresAt  time.Time           `json:"expires_at"`
}

func newFormView(s *models.Session) *FormView {
	details := s.Details
	if details == nil {
		details = []models.UnitDetail{}
	}
	quantities := s.Quantities
	if quantities == nil {
		quantities = models.SizeQuantity{}
	}
	return &FormView{
		SessionID:  s.ID,
		Customer:   s.Customer,
		Quantities: quantities,
		Units:      len(details),
		Details:    details,
		CanSubmit:  len(details) > 0,
		ExpiresAt:  s.ExpiresAt,
	}
}

// StartResult токен новой сессии и пустая форма
type StartResult struct {
	Token string    `json:"token"`
	Form  *FormView `json:"form"`
}

// IntakeInput первый блок формы: клиент и количества по размерам
type IntakeInput struct {
	Customer   models.CustomerInfo
	Quantities map[models.SizeLabel]int
}

// DetailInput ответы по одной строке, адресуется стабильным ключом строки
type DetailInput struct {
	Key       string
	Recipient string
	Locations []models.PrintLocation
}

type SessionService interface {
	Start(ctx context.Context) (*StartResult, error)
	Get(ctx context.Context, sessionID string) (*FormView, error)
	UpdateIntake(ctx context.Context, sessionID string, in IntakeInput) (*FormView, error)
	UpdateDetails(ctx context.Context, sessionID string, rows []DetailInput) (*FormView, error)
	End(ctx context.Context, sessionID string) error
}

type sessionService struct {
	log      *slog.Logger
	sessions storage.SessionStorage
	ttl      time.Duration
	secret   string
	now      func() time.Time

	// updateMu сериализует чтение-изменение-запись сессии в пределах процесса
	updateMu sync.Mutex
}

func NewSessionService(log *slog.Logger, sessions storage.SessionStorage, ttl time.Duration, secret string) SessionService {
	return &sessionService{
		log:      log,
		sessions: sessions,
		ttl:      ttl,
		secret:   secret,
		now:      time.Now,
	}
}

// Start открывает новую сессию формы и выдаёт подписанный токен
func (s *sessionService) Start(ctx context.Context) (*StartResult, error) {
	const op = "service.SessionService.Start"

	now := s.now()
	sess := &models.Session{
		ID:         uuid.NewString(),
		Customer:   models.CustomerInfo{Channel: models.ChannelInstagram},
		Quantities: models.SizeQuantity{},
		Details:    []models.UnitDetail{},
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}
	logger := s.log.With(slog.String("op", op), slog.String("sessionID", sess.ID))

	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		logger.Error("failed to create session", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := security.NewToken(sess.ID, sess.ExpiresAt, s.secret)
	if err != nil {
		logger.Error("failed to sign session token", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to sign token: %w", op, err)
	}

	logger.Info("session started")
	return &StartResult{Token: token, Form: newFormView(sess)}, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*FormView, error) {
	const op = "service.SessionService.Get"

	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return newFormView(sess), nil
}

// UpdateIntake сохраняет данные клиента и количества и перестраивает строки деталей.
// Нулевые количества отбрасываются, ответы сохраняются только для оставшихся ключей строк.
func (s *sessionService) UpdateIntake(ctx context.Context, sessionID string, in IntakeInput) (*FormView, error) {
	const op = "service.SessionService.UpdateIntake"
	logger := s.log.With(slog.String("op", op), slog.String("sessionID", sessionID))

	quantities := make(models.SizeQuantity, len(in.Quantities))
	for size, n := range in.Quantities {
		if !size.Valid() {
			return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidSize, size)
		}
		if n < models.MinQuantity || n > models.MaxQuantity {
			return nil, fmt.Errorf("%s: %w: %s=%d", op, ErrInvalidQuantity, size, n)
		}
		if n > 0 {
			quantities[size] = n
		}
	}

	customer := in.Customer
	if customer.Channel == "" {
		customer.Channel = models.ChannelInstagram
	}
	if !customer.Channel.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidChannel, customer.Channel)
	}

	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	before := len(sess.Details)
	sess.Customer = customer
	sess.Quantities = quantities
	sess.Details = order.Reconcile(sess.Details, quantities)
	sess.UpdatedAt = s.now()

	if err := s.sessions.SaveSession(ctx, sess); err != nil {
		logger.Error("failed to save session", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Debug("intake updated", slog.Int("units_before", before), slog.Int("units", len(sess.Details)))
	return newFormView(sess), nil
}

// UpdateDetails записывает ответы по строкам; строки, которых нет в запросе, не меняются
func (s *sessionService) UpdateDetails(ctx context.Context, sessionID string, rows []DetailInput) (*FormView, error) {
	const op = "service.SessionService.UpdateDetails"
	logger := s.log.With(slog.String("op", op), slog.String("sessionID", sessionID))

	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	index := make(map[string]int, len(sess.Details))
	for i, d := range sess.Details {
		index[d.Key] = i
	}

	for _, row := range rows {
		i, ok := index[row.Key]
		if !ok {
			// строка могла пропасть после изменения количеств
			return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownUnit, row.Key)
		}
		for _, l := range row.Locations {
			if !l.Valid() {
				return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidLocation, l)
			}
		}
		sess.Details[i].Recipient = row.Recipient
		sess.Details[i].Locations = order.NormalizeLocations(row.Locations)
	}
	sess.UpdatedAt = s.now()

	if err := s.sessions.SaveSession(ctx, sess); err != nil {
		logger.Error("failed to save session", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Debug("details updated", slog.Int("rows", len(rows)))
	return newFormView(sess), nil
}

// End закрывает сессию и удаляет её состояние
func (s *sessionService) End(ctx context.Context, sessionID string) error {
	const op = "service.SessionService.End"

	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("session ended", slog.String("op", op), slog.String("sessionID", sessionID))
	return nil
}
