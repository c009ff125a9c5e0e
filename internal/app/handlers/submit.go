package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/remeras-order/internal/domain/models"
	"github.com/linemk/remeras-order/internal/service"
)

// SubmitHandler обрабатывает запрос POST /api/session/submit.
// 422 - строки с ошибками, 502 - письмо не ушло, 409 - нет ни одной строки.
func SubmitHandler(log *slog.Logger, submit service.SubmitService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SubmitHandler"
		logger := log.With(slog.String("op", op))

		id, ok := sessionID(w, r, logger)
		if !ok {
			return
		}

		res, err := submit.Submit(r.Context(), id)
		if err != nil {
			logger.Warn("submission failed", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, res)
	}
}

// HistoryResponse попытки отправки текущей сессии
type HistoryResponse struct {
	Dispatches []*models.Dispatch `json:"dispatches"`
}

// HistoryHandler обрабатывает запрос GET /api/session/dispatches
func HistoryHandler(log *slog.Logger, submit service.SubmitService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.HistoryHandler"
		logger := log.With(slog.String("op", op))

		id, ok := sessionID(w, r, logger)
		if !ok {
			return
		}

		list, err := submit.History(r.Context(), id)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		if list == nil {
			list = []*models.Dispatch{}
		}
		writeJSON(w, logger, http.StatusOK, HistoryResponse{Dispatches: list})
	}
}
