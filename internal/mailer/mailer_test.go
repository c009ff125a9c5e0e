package mailer_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/linemk/remeras-order/internal/config"
	"github.com/linemk/remeras-order/internal/domain/models"
	"github.com/linemk/remeras-order/internal/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mailCfg() config.MailConfig {
	return config.MailConfig{
		From:            "formulario@example.com",
		BusinessAddress: "pedidos@example.com",
	}
}

func TestRecipients(t *testing.T) {
	customer := models.CustomerInfo{Email: " lu@example.com "}

	cfg := mailCfg()
	assert.Equal(t, []string{"pedidos@example.com"}, mailer.Recipients(cfg, customer))

	cfg.CopyCustomer = true
	assert.Equal(t, []string{"pedidos@example.com", "lu@example.com"}, mailer.Recipients(cfg, customer))

	// пустой адрес клиента и совпадающий с бизнесом не добавляются
	assert.Equal(t, []string{"pedidos@example.com"}, mailer.Recipients(cfg, models.CustomerInfo{}))
	assert.Equal(t, []string{"pedidos@example.com"}, mailer.Recipients(cfg, models.CustomerInfo{Email: "PEDIDOS@example.com"}))

	// неразборчивый адрес клиента не мешает копии бизнесу
	assert.Equal(t, []string{"pedidos@example.com"}, mailer.Recipients(cfg, models.CustomerInfo{Email: "not an email"}))
	assert.Equal(t, []string{"pedidos@example.com"}, mailer.Recipients(cfg, models.CustomerInfo{Email: "lu@"}))
}

func TestNewOrderMessage_InvalidCustomerEmailBuilds(t *testing.T) {
	cfg := mailCfg()
	cfg.CopyCustomer = true

	msg := mailer.NewOrderMessage(cfg, models.CustomerInfo{Email: "not an email"}, mailer.Attachment{
		Name: "pedido_personalizado.xlsx", Data: []byte("xlsx"),
	})
	require.Equal(t, []string{"pedidos@example.com"}, msg.To)

	m, err := mailer.BuildMsg(msg)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "pedidos@example.com")
	assert.NotContains(t, buf.String(), "not an email")
}

func TestValidAddress(t *testing.T) {
	assert.True(t, mailer.ValidAddress("lu@example.com"))
	assert.True(t, mailer.ValidAddress("Lucía <lu@example.com>"))
	assert.False(t, mailer.ValidAddress(""))
	assert.False(t, mailer.ValidAddress("not an email"))
	assert.False(t, mailer.ValidAddress("@@"))
}

func TestNewOrderMessage_Body(t *testing.T) {
	customer := models.CustomerInfo{Name: " Lucía "}
	att := mailer.Attachment{Name: "pedido_personalizado.xlsx", Data: []byte("x")}

	msg := mailer.NewOrderMessage(mailCfg(), customer, att)
	assert.Equal(t, mailer.OrderSubject, msg.Subject)
	assert.Equal(t, mailer.OrderBody, msg.Body)
	assert.Equal(t, "formulario@example.com", msg.From)
	require.Len(t, msg.Attachments, 1)

	cfg := mailCfg()
	cfg.Personalize = true
	msg = mailer.NewOrderMessage(cfg, customer, att)
	assert.Equal(t, "Hola Lucía, se adjunta el archivo con los datos de tu pedido.", msg.Body)

	// без имени остаётся статичный текст
	msg = mailer.NewOrderMessage(cfg, models.CustomerInfo{}, att)
	assert.Equal(t, mailer.OrderBody, msg.Body)
}

func TestBuildMsg_RendersAttachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pedido-123.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("xlsx-bytes"), 0o600))

	for name, att := range map[string]mailer.Attachment{
		"file":   {Name: "pedido_personalizado.xlsx", Path: path},
		"memory": {Name: "pedido_personalizado.xlsx", Data: []byte("xlsx-bytes")},
	} {
		t.Run(name, func(t *testing.T) {
			msg := &mailer.Message{
				From:        "formulario@example.com",
				To:          []string{"pedidos@example.com", "lu@example.com"},
				Subject:     mailer.OrderSubject,
				Body:        mailer.OrderBody,
				Attachments: []mailer.Attachment{att},
			}

			m, err := mailer.BuildMsg(msg)
			require.NoError(t, err)

			var buf bytes.Buffer
			_, err = m.WriteTo(&buf)
			require.NoError(t, err)

			out := buf.String()
			assert.Contains(t, out, "Subject: Nuevo pedido de remeras")
			assert.Contains(t, out, "pedidos@example.com")
			assert.Contains(t, out, "lu@example.com")
			assert.Contains(t, out, "pedido_personalizado.xlsx")
		})
	}
}

func TestBuildMsg_Errors(t *testing.T) {
	_, err := mailer.BuildMsg(&mailer.Message{From: "formulario@example.com"})
	assert.Error(t, err, "no recipients")

	_, err = mailer.BuildMsg(&mailer.Message{From: "not an address", To: []string{"pedidos@example.com"}})
	assert.Error(t, err)

	_, err = mailer.BuildMsg(&mailer.Message{From: "formulario@example.com", To: []string{"@@"}})
	assert.Error(t, err)
}

func TestSMTPSender_UnreachableServer(t *testing.T) {
	cfg := mailCfg()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.Password = "secret"
	cfg.TLSPolicy = config.TLSNone

	sender := mailer.NewSMTPSender(slog.New(slog.NewTextHandler(os.Stdout, nil)), cfg)
	msg := &mailer.Message{
		From:    cfg.From,
		To:      []string{cfg.BusinessAddress},
		Subject: mailer.OrderSubject,
		Body:    mailer.OrderBody,
	}

	err := sender.Send(context.Background(), msg)
	require.Error(t, err)
	// текст ошибки показывается пользователю, внутренних имён в нём нет
	assert.NotContains(t, err.Error(), "mailer.SMTPSender")
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := mailer.NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	err := sender.Send(context.Background(), &mailer.Message{
		To:          []string{"pedidos@example.com"},
		Subject:     mailer.OrderSubject,
		Attachments: []mailer.Attachment{{Name: "pedido_personalizado.xlsx"}},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "dry run")
	assert.Contains(t, buf.String(), "pedido_personalizado.xlsx")
}
