package excel

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/colref"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/dataset"
)

// MaxColumnWidth is the widest column a sheet accepts.
const MaxColumnWidth = 255

// Links places one formula per data row into Column.
type Links struct {
	Column   string
	Formulas []string
}

// SaveDataset writes ds to a new workbook at path with the link formulas
// injected and columns sized to their content. The file is either fully
// written or not created.
func SaveDataset(path string, ds *dataset.Dataset, links Links) error {
	editor := CreateNewFile()
	defer editor.Close()

	if err := editor.WriteDataset(DefaultSheet, ds); err != nil {
		return err
	}
	if err := editor.WriteLinks(DefaultSheet, links); err != nil {
		return err
	}
	if err := editor.AutoSizeColumns(DefaultSheet, ds); err != nil {
		return err
	}
	return editor.SaveAs(path)
}

// WriteDataset writes the header to row 1 and data from row 2. Missing cells
// are left blank.
func (e *Editor) WriteDataset(sheet string, ds *dataset.Dataset) error {
	header := make([]interface{}, len(ds.Header))
	for i, h := range ds.Header {
		header[i] = h
	}
	if err := e.file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range ds.Rows {
		for c, cell := range row {
			if cell.IsMissing() {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := e.file.SetCellValue(sheet, name, cell.Value()); err != nil {
				return fmt.Errorf("failed to write %s: %w", name, err)
			}
		}
	}
	return nil
}

// WriteLinks writes formulas into links.Column starting at row 2.
func (e *Editor) WriteLinks(sheet string, links Links) error {
	if len(links.Formulas) == 0 {
		return nil
	}
	col := colref.ToIndex(links.Column)
	if !colref.Valid(links.Column) || col < 0 {
		return fmt.Errorf("invalid hyperlink column %q", links.Column)
	}
	for i, formula := range links.Formulas {
		name, err := excelize.CoordinatesToCellName(col+1, i+2)
		if err != nil {
			return err
		}
		if err := e.SetCellFormula(sheet, name, formula); err != nil {
			return fmt.Errorf("failed to write formula to %s: %w", name, err)
		}
	}
	return nil
}

// AutoSizeColumns sets each column's width to the longest of its header and
// cell texts, capped at MaxColumnWidth.
func (e *Editor) AutoSizeColumns(sheet string, ds *dataset.Dataset) error {
	for c, width := range ColumnWidths(ds) {
		if width == 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := e.SetColumnWidth(sheet, name, float64(width)); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}
	return nil
}

// ColumnWidths returns min(MaxColumnWidth, max(header, longest cell)) per column.
func ColumnWidths(ds *dataset.Dataset) []int {
	widths := make([]int, ds.Width())
	for c, h := range ds.Header {
		widths[c] = utf8.RuneCountInString(h)
	}
	for _, row := range ds.Rows {
		for c, cell := range row {
			if n := utf8.RuneCountInString(cell.String()); n > widths[c] {
				widths[c] = n
			}
		}
	}
	for c := range widths {
		widths[c] = min(widths[c], MaxColumnWidth)
	}
	return widths
}
