package order

import (
	"sort"
	"strings"

	"github.com/linemk/remeras-order/internal/domain/models"
)

// Summarize группирует изделия по размеру.
// Строки сортируются по метке размера как по строке ("10" < "2" < "M" < "S"), итог равен числу изделий.
func Summarize(details []models.UnitDetail) models.OrderSummary {
	counts := make(map[string]int)
	for _, d := range details {
		counts[string(d.Size)]++
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	summary := models.OrderSummary{Rows: make([]models.SummaryRow, 0, len(labels))}
	for _, label := range labels {
		summary.Rows = append(summary.Rows, models.SummaryRow{Size: label, Count: counts[label]})
		summary.Total += counts[label]
	}
	return summary
}

// UnitRow строка листа datos_pedido
type UnitRow struct {
	Size     string
	Person   string
	Location string
}

// Document три таблицы, которые уходят в выгрузку
type Document struct {
	Customer models.CustomerInfo
	Summary  models.OrderSummary
	Units    []UnitRow
}

// BuildDocument собирает таблицы из данных клиента и провалидированных строк
func BuildDocument(customer models.CustomerInfo, details []models.UnitDetail) Document {
	units := make([]UnitRow, 0, len(details))
	for _, d := range details {
		units = append(units, UnitRow{
			Size:     string(d.Size),
			Person:   strings.TrimSpace(d.Recipient),
			Location: JoinLocations(d.Locations),
		})
	}
	return Document{
		Customer: customer.Trimmed(),
		Summary:  Summarize(details),
		Units:    units,
	}
}

func JoinLocations(locs []models.PrintLocation) string {
	parts := make([]string, len(locs))
	for i, l := range locs {
		parts[i] = string(l)
	}
	return strings.Join(parts, ", ")
}
