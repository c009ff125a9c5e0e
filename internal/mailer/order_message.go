package mailer

import (
	"fmt"
	netmail "net/mail"
	"strings"

	"github.com/linemk/remeras-order/internal/config"
	"github.com/linemk/remeras-order/internal/domain/models"
)

const (
	OrderSubject = "Nuevo pedido de remeras"
	OrderBody    = "Se adjunta el archivo con los datos del pedido."
)

// NewOrderMessage письмо с выгрузкой: всегда бизнесу, клиенту - если включено copy_customer и указан адрес
func NewOrderMessage(cfg config.MailConfig, customer models.CustomerInfo, att Attachment) *Message {
	customer = customer.Trimmed()

	return &Message{
		From:        cfg.From,
		To:          Recipients(cfg, customer),
		Subject:     OrderSubject,
		Body:        orderBody(cfg, customer),
		Attachments: []Attachment{att},
	}
}

// Recipients адрес бизнеса первым, без дублей (регистр не важен).
// Адрес клиента, который не разбирается, пропускается: копия бизнесу уходит всегда.
func Recipients(cfg config.MailConfig, customer models.CustomerInfo) []string {
	to := []string{cfg.BusinessAddress}
	email := strings.TrimSpace(customer.Email)
	if cfg.CopyCustomer && ValidAddress(email) && !strings.EqualFold(email, cfg.BusinessAddress) {
		to = append(to, email)
	}
	return to
}

// ValidAddress тот же разбор адреса, что go-mail делает в Msg.To
func ValidAddress(addr string) bool {
	if addr == "" {
		return false
	}
	_, err := netmail.ParseAddress(addr)
	return err == nil
}

func orderBody(cfg config.MailConfig, customer models.CustomerInfo) string {
	if !cfg.Personalize || customer.Name == "" {
		return OrderBody
	}
	return fmt.Sprintf("Hola %s, se adjunta el archivo con los datos de tu pedido.", customer.Name)
}
