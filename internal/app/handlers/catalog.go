package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/remeras-order/internal/domain/models"
)

// CatalogResponse всё, что нужно клиенту для отрисовки пустой формы
type CatalogResponse struct {
	Sizes       []models.SizeLabel      `json:"sizes"`
	MinQuantity int                     `json:"min_quantity"`
	MaxQuantity int                     `json:"max_quantity"`
	Channels    []models.ContactChannel `json:"channels"`
	Locations   []models.PrintLocation  `json:"locations"`
}

// CatalogHandler обрабатывает запрос GET /api/catalog
func CatalogHandler(log *slog.Logger) http.HandlerFunc {
	resp := CatalogResponse{
		Sizes:       models.Sizes(),
		MinQuantity: models.MinQuantity,
		MaxQuantity: models.MaxQuantity,
		Channels:    models.Channels(),
		Locations:   models.Locations(),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.CatalogHandler"))
		writeJSON(w, logger, http.StatusOK, resp)
	}
}
