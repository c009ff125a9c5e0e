package models

// SizeLabel размер: текстильный (XS–XXL) или числовой (0–16)
type SizeLabel string

const (
	SizeXS  SizeLabel = "XS"
	SizeS   SizeLabel = "S"
	SizeM   SizeLabel = "M"
	SizeL   SizeLabel = "L"
	SizeXL  SizeLabel = "XL"
	SizeXXL SizeLabel = "XXL"
	Size0   SizeLabel = "0"
	Size2   SizeLabel = "2"
	Size4   SizeLabel = "4"
	Size6   SizeLabel = "6"
	Size8   SizeLabel = "8"
	Size10  SizeLabel = "10"
	Size12  SizeLabel = "12"
	Size14  SizeLabel = "14"
	Size16  SizeLabel = "16"
)

// границы степпера количества
const (
	MinQuantity = 0
	MaxQuantity = 20
)

var catalog = []SizeLabel{
	SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL,
	Size0, Size2, Size4, Size6, Size8, Size10, Size12, Size14, Size16,
}

// Sizes возвращает все размеры в порядке сетки формы: сначала текстильные, затем числовые
func Sizes() []SizeLabel {
	out := make([]SizeLabel, len(catalog))
	copy(out, catalog)
	return out
}

func (s SizeLabel) Valid() bool {
	for _, c := range catalog {
		if s == c {
			return true
		}
	}
	return false
}

// SizeQuantity количество изделий по размерам; хранятся только значения > 0
type SizeQuantity map[SizeLabel]int

// Total сумма всех количеств
func (q SizeQuantity) Total() int {
	total := 0
	for _, n := range q {
		total += n
	}
	return total
}

// Compact отбрасывает нулевые и отрицательные значения
func (q SizeQuantity) Compact() SizeQuantity {
	out := make(SizeQuantity, len(q))
	for size, n := range q {
		if n > 0 {
			out[size] = n
		}
	}
	return out
}
