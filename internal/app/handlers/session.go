package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/remeras-order/internal/service"
)

// StartSessionHandler обрабатывает запрос POST /api/session
func StartSessionHandler(log *slog.Logger, sessions service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.StartSessionHandler"
		logger := log.With(slog.String("op", op))

		res, err := sessions.Start(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, res)
	}
}

// GetSessionHandler обрабатывает запрос GET /api/session: текущее состояние формы
func GetSessionHandler(log *slog.Logger, sessions service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetSessionHandler"
		logger := log.With(slog.String("op", op))

		id, ok := sessionID(w, r, logger)
		if !ok {
			return
		}

		form, err := sessions.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, form)
	}
}

// EndSessionHandler обрабатывает запрос DELETE /api/session
func EndSessionHandler(log *slog.Logger, sessions service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.EndSessionHandler"
		logger := log.With(slog.String("op", op))

		id, ok := sessionID(w, r, logger)
		if !ok {
			return
		}

		if err := sessions.End(r.Context(), id); err != nil {
			writeServiceError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
