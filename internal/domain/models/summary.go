package models

// TotalLabel метка итоговой строки в resumen_pedido
const TotalLabel = "TOTAL"

// SummaryRow количество изделий одного размера
type SummaryRow struct {
	Size  string `json:"size"`
	Count int    `json:"count"`
}

// OrderSummary агрегат по размерам, пересчитывается при каждой отправке
type OrderSummary struct {
	Rows  []SummaryRow `json:"rows"`
	Total int          `json:"total"`
}
