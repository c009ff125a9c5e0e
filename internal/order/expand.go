// Package order содержит чистую логику заказа: развёртку количеств в строки,
// проверку строк и построение таблиц для выгрузки.
package order

import (
	"sort"

	"github.com/linemk/remeras-order/internal/domain/models"
)

// Expand разворачивает количества по размерам в упорядоченный список изделий.
// Размеры идут в порядке сетки формы, внутри размера номера начинаются с 1.
// Длина результата всегда равна сумме положительных количеств.
func Expand(q models.SizeQuantity) []models.UnitDetail {
	q = q.Compact()
	details := make([]models.UnitDetail, 0, q.Total())

	seen := make(map[models.SizeLabel]bool, len(q))
	for _, size := range models.Sizes() {
		seen[size] = true
		details = appendUnits(details, size, q[size])
	}

	// размеры вне каталога сюда попадать не должны, но инвариант длины держим и для них
	var extra []string
	for size := range q {
		if !seen[size] {
			extra = append(extra, string(size))
		}
	}
	sort.Strings(extra)
	for _, size := range extra {
		details = appendUnits(details, models.SizeLabel(size), q[models.SizeLabel(size)])
	}

	return details
}

func appendUnits(details []models.UnitDetail, size models.SizeLabel, n int) []models.UnitDetail {
	for seq := 1; seq <= n; seq++ {
		details = append(details, models.UnitDetail{
			Key:       models.UnitKey(size, seq),
			Size:      size,
			Seq:       seq,
			Locations: []models.PrintLocation{},
		})
	}
	return details
}

// Reconcile заново строит строки по текущим количествам.
// Ответы переносятся только для ключей (размер, номер), которые остались в новой развёртке;
// строки, выпавшие из развёртки, удаляются и при повторном появлении начинаются пустыми.
func Reconcile(prev []models.UnitDetail, q models.SizeQuantity) []models.UnitDetail {
	byKey := make(map[string]models.UnitDetail, len(prev))
	for _, d := range prev {
		byKey[d.Key] = d
	}

	next := Expand(q)
	for i := range next {
		old, ok := byKey[next[i].Key]
		if !ok {
			continue
		}
		next[i].Recipient = old.Recipient
		next[i].Locations = append([]models.PrintLocation{}, old.Locations...)
	}
	return next
}

// NormalizeLocations убирает дубликаты и неизвестные значения и приводит выбор к порядку pecho, espalda, manga
func NormalizeLocations(locs []models.PrintLocation) []models.PrintLocation {
	picked := make(map[models.PrintLocation]bool, len(locs))
	for _, l := range locs {
		picked[l] = true
	}
	out := make([]models.PrintLocation, 0, len(picked))
	for _, l := range models.Locations() {
		if picked[l] {
			out = append(out, l)
		}
	}
	return out
}
