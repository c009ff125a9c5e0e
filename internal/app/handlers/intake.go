package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/linemk/remeras-order/internal/domain/models"
	"github.com/linemk/remeras-order/internal/service"
)

// CustomerRequest поля клиента; на этом шаге все необязательны
type CustomerRequest struct {
	Name    string `json:"name" validate:"max=200"`
	Surname string `json:"surname" validate:"max=200"`
	Channel string `json:"channel" validate:"omitempty,oneof=Instagram WhatsApp Otro"`
	Handle  string `json:"handle" validate:"max=200"`
	Email   string `json:"email" validate:"omitempty,max=200,email"`
}

// normalize убирает пробелы вокруг адреса до проверки тегами
func (c *CustomerRequest) normalize() {
	c.Email = strings.TrimSpace(c.Email)
}

// IntakeRequest первый блок формы; ключи - метки размеров, значения - позиции степпера
type IntakeRequest struct {
	Customer   CustomerRequest `json:"customer"`
	Quantities map[string]int  `json:"quantities" validate:"dive,keys,oneof=XS S M L XL XXL 0 2 4 6 8 10 12 14 16,endkeys,min=0,max=20"`
}

// UpdateIntakeHandler обрабатывает запрос PUT /api/session/intake
func UpdateIntakeHandler(log *slog.Logger, sessions service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateIntakeHandler"
		logger := log.With(slog.String("op", op))

		id, ok := sessionID(w, r, logger)
		if !ok {
			return
		}

		var req IntakeRequest
		if !decodeAndValidate(w, r, logger, &req, req.Customer.normalize) {
			return
		}

		quantities := make(map[models.SizeLabel]int, len(req.Quantities))
		for size, n := range req.Quantities {
			quantities[models.SizeLabel(size)] = n
		}
		in := service.IntakeInput{
			Customer: models.CustomerInfo{
				Name:    req.Customer.Name,
				Surname: req.Customer.Surname,
				Channel: models.ContactChannel(req.Customer.Channel),
				Handle:  req.Customer.Handle,
				Email:   req.Customer.Email,
			},
			Quantities: quantities,
		}

		form, err := sessions.UpdateIntake(r.Context(), id, in)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, form)
	}
}
