package order

import (
	"fmt"
	"strings"

	"github.com/linemk/remeras-order/internal/domain/models"
)

// RowProblem ошибка заполнения одной строки; Row нумеруется с 1
type RowProblem struct {
	Row     int    `json:"row"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Validate проверяет все строки без раннего выхода.
// Строка невалидна, если получатель пустой (или из пробелов) либо не выбрано ни одного места печати.
func Validate(details []models.UnitDetail) []RowProblem {
	var problems []RowProblem
	for i, d := range details {
		if strings.TrimSpace(d.Recipient) != "" && len(d.Locations) > 0 {
			continue
		}
		row := i + 1
		problems = append(problems, RowProblem{
			Row:     row,
			Key:     d.Key,
			Message: fmt.Sprintf("Fila %d: faltan datos (Nombre o ubicación)", row),
		})
	}
	return problems
}
