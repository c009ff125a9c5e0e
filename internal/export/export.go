// Package export сериализует заказ в xlsx с тремя листами.
package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/linemk/remeras-order/internal/domain/models"
	"github.com/linemk/remeras-order/internal/order"
	"github.com/xuri/excelize/v2"
)

// имена листов в порядке следования
const (
	SheetCustomer = "datos_cliente"
	SheetSummary  = "resumen_pedido"
	SheetUnits    = "datos_pedido"
)

// ContentType mime-тип xlsx для вложения
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// режимы хранения выгрузки
const (
	ModeMemory   = "memory"
	ModeTempFile = "tempfile"
)

var (
	CustomerHeader = []string{"Nombre", "Apellido", "Medio", "Usuario", "Mail"}
	SummaryHeader  = []string{"Talle", "Cantidad"}
	UnitsHeader    = []string{"Talle", "Persona", "Ubicación"}
)

type Options struct {
	Mode     string
	TempDir  string // пусто - системный каталог временных файлов
	FileName string
}

// Attachment готовый документ: либо байты в памяти, либо временный файл.
// Close удаляет временный файл и безопасен для повторного вызова.
type Attachment struct {
	Name string
	Path string
	Data []byte

	removed bool
}

func (a *Attachment) Close() error {
	if a == nil || a.Path == "" || a.removed {
		return nil
	}
	a.removed = true
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove attachment %s: %w", a.Path, err)
	}
	return nil
}

// Build собирает книгу из трёх таблиц документа
func Build(doc order.Document) (*excelize.File, error) {
	const op = "export.Build"

	f := excelize.NewFile()

	// лист по умолчанию становится первым листом книги
	if err := f.SetSheetName(f.GetSheetName(0), SheetCustomer); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: rename default sheet: %w", op, err)
	}
	for _, name := range []string{SheetSummary, SheetUnits} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: create sheet %s: %w", op, name, err)
		}
	}

	c := doc.Customer
	customerRows := [][]interface{}{
		toRow(CustomerHeader),
		{c.Name, c.Surname, string(c.Channel), c.Handle, c.Email},
	}

	summaryRows := [][]interface{}{toRow(SummaryHeader)}
	for _, r := range doc.Summary.Rows {
		summaryRows = append(summaryRows, []interface{}{r.Size, r.Count})
	}
	summaryRows = append(summaryRows, []interface{}{models.TotalLabel, doc.Summary.Total})

	unitRows := [][]interface{}{toRow(UnitsHeader)}
	for _, u := range doc.Units {
		unitRows = append(unitRows, []interface{}{u.Size, u.Person, u.Location})
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetCustomer, customerRows},
		{SheetSummary, summaryRows},
		{SheetUnits, unitRows},
	}
	for _, s := range sheets {
		if err := writeRows(f, s.name, s.rows); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toRow(header []string) []interface{} {
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	return row
}

// Write строит книгу и сохраняет её в память или во временный файл в зависимости от режима
func Write(doc order.Document, opts Options) (*Attachment, error) {
	const op = "export.Write"

	f, err := Build(doc)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	att := &Attachment{Name: opts.FileName}

	switch opts.Mode {
	case ModeMemory:
		buf, err := f.WriteToBuffer()
		if err != nil {
			return nil, fmt.Errorf("%s: write buffer: %w", op, err)
		}
		att.Data = buf.Bytes()
	case ModeTempFile:
		tmp, err := os.CreateTemp(opts.TempDir, "pedido-*.xlsx")
		if err != nil {
			return nil, fmt.Errorf("%s: create temp file: %w", op, err)
		}
		att.Path = tmp.Name()
		if err := f.Write(tmp); err != nil {
			tmp.Close()
			att.Close()
			return nil, fmt.Errorf("%s: write temp file: %w", op, err)
		}
		if err := tmp.Close(); err != nil {
			att.Close()
			return nil, fmt.Errorf("%s: close temp file: %w", op, err)
		}
	default:
		return nil, fmt.Errorf("%s: unknown mode %q", op, opts.Mode)
	}

	return att, nil
}
