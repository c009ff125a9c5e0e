package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/remeras-order/internal/domain/models"
	"github.com/linemk/remeras-order/internal/service"
)

type DetailRowRequest struct {
	Key       string   `json:"key" validate:"required,max=16"`
	Recipient string   `json:"recipient" validate:"max=200"`
	Locations []string `json:"locations" validate:"max=3,dive,oneof=pecho espalda manga"`
}

type DetailsRequest struct {
	Rows []DetailRowRequest `json:"rows" validate:"required,dive"`
}

// UpdateDetailsHandler обрабатывает запрос PUT /api/session/details
func UpdateDetailsHandler(log *slog.Logger, sessions service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateDetailsHandler"
		logger := log.With(slog.String("op", op))

		id, ok := sessionID(w, r, logger)
		if !ok {
			return
		}

		var req DetailsRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		rows := make([]service.DetailInput, 0, len(req.Rows))
		for _, row := range req.Rows {
			locs := make([]models.PrintLocation, 0, len(row.Locations))
			for _, l := range row.Locations {
				locs = append(locs, models.PrintLocation(l))
			}
			rows = append(rows, service.DetailInput{Key: row.Key, Recipient: row.Recipient, Locations: locs})
		}

		form, err := sessions.UpdateDetails(r.Context(), id, rows)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, form)
	}
}
