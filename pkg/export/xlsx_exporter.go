package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// XLSXExporter renders one or more datasets into an Excel workbook.
type XLSXExporter struct {
	Placeholder string
}

// NewXLSXExporter builds an XLSX exporter.
func NewXLSXExporter(placeholder string) *XLSXExporter {
	return &XLSXExporter{Placeholder: placeholder}
}

// Render writes every sheet in order. The first sheet replaces the workbook default.
func (e *XLSXExporter) Render(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one sheet")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx header style: %w", err)
	}

	used := make(map[string]int, len(sheets))
	for i, sheet := range sheets {
		if len(sheet.Data.Headers) == 0 {
			return nil, fmt.Errorf("sheet %q requires at least one header", sheet.Name)
		}
		name := uniqueSheetName(SheetName(sheet.Name), used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := e.writeSheet(f, name, sheet.Data, headerStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *XLSXExporter) writeSheet(f *excelize.File, name string, data Dataset, headerStyle int) error {
	header := make([]interface{}, len(data.Headers))
	for i, h := range data.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(data.Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style xlsx header: %w", err)
	}

	for r, row := range data.Rows {
		values := record(data.Headers, row, e.Placeholder)
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", r+1, err)
		}
	}
	return nil
}

// SheetName strips characters Excel rejects and truncates to the sheet name limit.
func SheetName(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '-'
		}
		return r
	}, strings.TrimSpace(raw))
	cleaned = strings.Trim(cleaned, "'")
	if cleaned == "" {
		cleaned = "Sheet"
	}
	if len(cleaned) > maxSheetName {
		cleaned = cleaned[:maxSheetName]
	}
	return cleaned
}

func uniqueSheetName(name string, used map[string]int) string {
	key := strings.ToLower(name)
	count := used[key]
	used[key] = count + 1
	if count == 0 {
		return name
	}
	suffix := fmt.Sprintf(" (%d)", count+1)
	if len(name)+len(suffix) > maxSheetName {
		name = name[:maxSheetName-len(suffix)]
	}
	return name + suffix
}
