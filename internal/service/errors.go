package service

import (
	"errors"
	"strings"

	"github.com/linemk/remeras-order/internal/order"
)

var (
	// ErrEmptyOrder отправка без единой строки деталей
	ErrEmptyOrder      = errors.New("order has no units")
	ErrUnknownUnit     = errors.New("unknown unit")
	ErrInvalidSize     = errors.New("invalid size")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidChannel  = errors.New("invalid contact channel")
	ErrInvalidLocation = errors.New("invalid print location")
)

// ValidationHeadline заголовок списка ошибок для пользователя
const ValidationHeadline = "No se puede enviar el pedido. Corregí los siguientes errores:"

// ValidationError строки с незаполненным получателем или местом печати; отправка заблокирована
type ValidationError struct {
	Problems []order.RowProblem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Message
	}
	return ValidationHeadline + " " + strings.Join(msgs, "; ")
}

// DeliveryError ошибка почтового транспорта; повтора нет, пользователь может отправить ещё раз
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return "Error al enviar el correo: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
