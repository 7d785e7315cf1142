package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-lookup/internal/options"
)

// SheetName is the worksheet holding the country rows.
const SheetName = "Countries"

// Header lists the workbook columns in order.
var Header = []string{"ID", "Name", "Dial Code", "Code", "Description", "Created At", "Updated At", "Deleted At"}

var columnWidths = []float64{38, 28, 12, 8, 40, 22, 22, 22}

const timeLayout = time.RFC3339

// BuildWorkbook renders one row per active country. Soft deleted records are
// skipped even if passed in.
func BuildWorkbook(countries []*options.CountryOption) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("export: create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("export: drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}

	if err := writeRow(f, 1, toCells(Header)); err != nil {
		return nil, err
	}
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(SheetName, first, last, headerStyle); err != nil {
		return nil, fmt.Errorf("export: apply header style: %w", err)
	}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("export: column name: %w", err)
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("export: column width: %w", err)
		}
	}

	row := 2
	for _, c := range countries {
		if c == nil || c.DeletedAt != nil {
			continue
		}
		if err := writeRow(f, row, countryCells(c)); err != nil {
			return nil, err
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func countryCells(c *options.CountryOption) []any {
	description := ""
	if c.Description != nil {
		description = *c.Description
	}
	deletedAt := ""
	if c.DeletedAt != nil {
		deletedAt = c.DeletedAt.UTC().Format(timeLayout)
	}
	return []any{
		c.ID.String(),
		c.Name,
		c.DialCode,
		c.Code,
		description,
		c.CreatedAt.UTC().Format(timeLayout),
		c.UpdatedAt.UTC().Format(timeLayout),
		deletedAt,
	}
}

func writeRow(f *excelize.File, row int, values []any) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, value); err != nil {
			return fmt.Errorf("export: set cell %s: %w", cell, err)
		}
	}
	return nil
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
