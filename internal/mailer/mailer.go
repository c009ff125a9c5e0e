// Package mailer отправляет выгрузку заказа письмом через SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linemk/remeras-order/internal/config"
	"github.com/wneessen/go-mail"
)

// Attachment вложение письма: файл на диске (Path) или содержимое в памяти (Data)
type Attachment struct {
	Name        string
	ContentType string
	Path        string
	Data        []byte
}

type Message struct {
	From        string
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender доставка одного письма без повторов
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPSender отправка через SMTP с учётными данными из конфигурации
type SMTPSender struct {
	log *slog.Logger
	cfg config.MailConfig
}

func NewSMTPSender(log *slog.Logger, cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{log: log, cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	const op = "mailer.SMTPSender.Send"
	logger := s.log.With(slog.String("op", op), slog.Int("recipients", len(msg.To)))

	// ошибки уходят пользователю как есть, поэтому op только в логе
	m, err := BuildMsg(msg)
	if err != nil {
		logger.Error("failed to build message", slog.Any("error", err))
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		logger.Error("failed to create smtp client", slog.Any("error", err))
		return fmt.Errorf("create client: %w", err)
	}

	logger.Debug("dialing smtp server", slog.String("host", s.cfg.Host), slog.Int("port", s.cfg.Port))
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		logger.Error("smtp delivery failed", slog.Any("error", err))
		return err
	}

	logger.Info("mail sent")
	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.username()),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(tlsPolicy(s.cfg.TLSPolicy)),
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}
	if s.cfg.SSL {
		opts = append(opts, mail.WithSSL())
	}
	return opts
}

// без отдельного логина авторизуемся адресом отправителя, как у gmail
func (s *SMTPSender) username() string {
	if s.cfg.Username != "" {
		return s.cfg.Username
	}
	return s.cfg.From
}

func tlsPolicy(policy string) mail.TLSPolicy {
	switch policy {
	case config.TLSOpportunistic:
		return mail.TLSOpportunistic
	case config.TLSNone:
		return mail.NoTLS
	default:
		return mail.TLSMandatory
	}
}

// BuildMsg переводит Message в письмо go-mail
func BuildMsg(msg *Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("no recipients")
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipients %s: %w", strings.Join(msg.To, ", "), err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	for _, a := range msg.Attachments {
		opts := []mail.FileOption{mail.WithFileName(a.Name)}
		if a.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
		}
		if a.Path != "" {
			m.AttachFile(a.Path, opts...)
			continue
		}
		if err := m.AttachReader(a.Name, bytes.NewReader(a.Data), opts...); err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.Name, err)
		}
	}
	return m, nil
}

// LogSender режим dry_run: письмо только пишется в лог
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg *Message) error {
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Name)
	}
	s.log.Info("dry run: mail not sent",
		slog.String("op", "mailer.LogSender.Send"),
		slog.Any("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Any("attachments", names),
	)
	return nil
}
