package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/linemk/remeras-order/internal/config"
	"github.com/linemk/remeras-order/internal/domain/models"
	"github.com/linemk/remeras-order/internal/export"
	"github.com/linemk/remeras-order/internal/mailer"
	"github.com/linemk/remeras-order/internal/order"
	"github.com/linemk/remeras-order/internal/storage"
)

// SubmitResult итог успешной отправки
type SubmitResult struct {
	Message    string              `json:"message"`
	Recipients []string            `json:"recipients"`
	Units      int                 `json:"units"`
	Summary    models.OrderSummary `json:"summary"`
}

type SubmitService interface {
	Submit(ctx context.Context, sessionID string) (*SubmitResult, error)
	History(ctx context.Context, sessionID string) ([]*models.Dispatch, error)
}

type submitService struct {
	log        *slog.Logger
	sessions   storage.SessionStorage
	dispatches storage.DispatchStorage
	sender     mailer.Sender
	mailCfg    config.MailConfig
	exportOpts export.Options
	now        func() time.Time
}

func NewSubmitService(
	log *slog.Logger,
	sessions storage.SessionStorage,
	dispatches storage.DispatchStorage,
	sender mailer.Sender,
	mailCfg config.MailConfig,
	exportOpts export.Options,
) SubmitService {
	return &submitService{
		log:        log,
		sessions:   sessions,
		dispatches: dispatches,
		sender:     sender,
		mailCfg:    mailCfg,
		exportOpts: exportOpts,
		now:        time.Now,
	}
}

// Submit проверяет все строки, строит xlsx и отправляет его одним письмом.
// Временный файл выгрузки удаляется на любом пути выхода.
func (s *submitService) Submit(ctx context.Context, sessionID string) (*SubmitResult, error) {
	const op = "service.SubmitService.Submit"
	logger := s.log.With(slog.String("op", op), slog.String("sessionID", sessionID))

	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(sess.Details) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyOrder)
	}

	if problems := order.Validate(sess.Details); len(problems) > 0 {
		logger.Info("order rejected by validation", slog.Int("problems", len(problems)))
		return nil, &ValidationError{Problems: problems}
	}

	doc := order.BuildDocument(sess.Customer, sess.Details)
	att, err := export.Write(doc, s.exportOpts)
	if err != nil {
		logger.Error("failed to build spreadsheet", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := att.Close(); err != nil {
			logger.Error("failed to remove attachment", slog.Any("error", err))
		}
	}()

	if email := strings.TrimSpace(sess.Customer.Email); s.mailCfg.CopyCustomer && email != "" && !mailer.ValidAddress(email) {
		logger.Warn("customer copy skipped: invalid email address")
	}

	msg := mailer.NewOrderMessage(s.mailCfg, sess.Customer, mailer.Attachment{
		Name:        att.Name,
		ContentType: export.ContentType,
		Path:        att.Path,
		Data:        att.Data,
	})

	logger.Info("sending order", slog.Int("units", len(sess.Details)), slog.Int("recipients", len(msg.To)))
	sendErr := s.send(ctx, msg)
	s.record(ctx, logger, sess, len(msg.To), sendErr)

	if sendErr != nil {
		logger.Error("failed to send order", slog.Any("error", sendErr))
		return nil, &DeliveryError{Err: sendErr}
	}

	logger.Info("order sent")
	return &SubmitResult{
		Message:    "Pedido enviado correctamente a " + strings.Join(msg.To, ", "),
		Recipients: msg.To,
		Units:      len(sess.Details),
		Summary:    doc.Summary,
	}, nil
}

// send изолирует панику транспорта, чтобы она стала обычной ошибкой доставки
func (s *submitService) send(ctx context.Context, msg *mailer.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mail transport panic: %v", r)
		}
	}()
	return s.sender.Send(ctx, msg)
}

// record пишет попытку в журнал; сбой журнала не меняет результат отправки
func (s *submitService) record(ctx context.Context, logger *slog.Logger, sess *models.Session, recipients int, sendErr error) {
	d := &models.Dispatch{
		ID:         uuid.NewString(),
		SessionID:  sess.ID,
		Units:      len(sess.Details),
		Recipients: recipients,
		Status:     models.DispatchSent,
		CreatedAt:  s.now(),
	}
	if sendErr != nil {
		d.Status = models.DispatchFailed
		d.Error = sendErr.Error()
	}
	if err := s.dispatches.RecordDispatch(ctx, d); err != nil {
		logger.Warn("failed to record dispatch", slog.Any("error", err))
	}
}

// History попытки отправки текущей сессии, новые первыми
func (s *submitService) History(ctx context.Context, sessionID string) ([]*models.Dispatch, error) {
	const op = "service.SubmitService.History"

	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list, err := s.dispatches.ListDispatches(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
