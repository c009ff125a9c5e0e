package models

import "fmt"

// PrintLocation место печати на изделии
type PrintLocation string

const (
	LocationChest  PrintLocation = "pecho"
	LocationBack   PrintLocation = "espalda"
	LocationSleeve PrintLocation = "manga"
)

// Locations возвращает допустимые места печати в каноническом порядке
func Locations() []PrintLocation {
	return []PrintLocation{LocationChest, LocationBack, LocationSleeve}
}

func (l PrintLocation) Valid() bool {
	for _, loc := range Locations() {
		if l == loc {
			return true
		}
	}
	return false
}

// UnitDetail одна физическая изделие заказа
type UnitDetail struct {
	Key       string          `json:"key"` // стабильный ключ строки: <talle>-<номер внутри размера>
	Size      SizeLabel       `json:"size"`
	Seq       int             `json:"seq"`
	Recipient string          `json:"recipient"`
	Locations []PrintLocation `json:"locations"`
}

// UnitKey формирует ключ строки по размерам и порядковому номеру (с 1)
func UnitKey(size SizeLabel, seq int) string {
	return fmt.Sprintf("%s-%d", size, seq)
}
