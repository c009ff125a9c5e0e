package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/remeras-order/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/remeras-order/internal/order"
	"github.com/linemk/remeras-order/internal/service"
	"github.com/linemk/remeras-order/internal/storage"
)

var validate = validator.New()

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationResponse ответ 422 со списком строк, которые нужно исправить
type ValidationResponse struct {
	Error    string             `json:"error"`
	Problems []order.RowProblem `json:"problems"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// writeServiceError переводит ошибки сервисов в http-статусы
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		vErr *service.ValidationError
		dErr *service.DeliveryError
	)
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, logger, http.StatusUnprocessableEntity, ValidationResponse{
			Error:    service.ValidationHeadline,
			Problems: vErr.Problems,
		})
	case errors.As(err, &dErr):
		writeError(w, logger, http.StatusBadGateway, dErr.Error())
	case errors.Is(err, storage.ErrSessionNotFound):
		writeError(w, logger, http.StatusNotFound, "session not found or expired")
	case errors.Is(err, service.ErrEmptyOrder):
		writeError(w, logger, http.StatusConflict, "order has no units")
	case errors.Is(err, service.ErrUnknownUnit),
		errors.Is(err, service.ErrInvalidSize),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidChannel),
		errors.Is(err, service.ErrInvalidLocation):
		writeError(w, logger, http.StatusBadRequest, err.Error())
	default:
		logger.Error("internal error", slog.Any("error", err))
		writeError(w, logger, http.StatusInternalServerError, "internal server error")
	}
}

// decodeAndValidate читает json-тело, применяет prepare и проверяет тегами validator
func decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst interface{}, prepare ...func()) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Error("invalid request: decoding error", slog.Any("error", err))
		writeError(w, logger, http.StatusBadRequest, "invalid request")
		return false
	}
	for _, fn := range prepare {
		fn()
	}
	if err := validate.Struct(dst); err != nil {
		logger.Error("invalid request: validation error", slog.Any("error", err))
		writeError(w, logger, http.StatusBadRequest, "validation error: "+err.Error())
		return false
	}
	return true
}

// sessionID достаёт идентификатор сессии, положенный jwt middleware
func sessionID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	id, ok := jwtmiddleware.FromContext(r.Context())
	if !ok {
		logger.Error("sessionID not found in context")
		writeError(w, logger, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return id, true
}
