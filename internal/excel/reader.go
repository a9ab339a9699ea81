package excel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/dataset"
)

// LoadDataset reads the first sheet of an xlsx file. Row 1 is the header and
// every following row becomes a data row of typed cells.
func LoadDataset(path string) (*dataset.Dataset, error) {
	editor, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer editor.Close()

	sheet, err := editor.FirstSheet()
	if err != nil {
		return nil, err
	}
	return editor.ReadDataset(sheet)
}

// ReadDataset converts a sheet into a Dataset.
func (e *Editor) ReadDataset(sheet string) (*dataset.Dataset, error) {
	rows, err := e.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	styles := make(map[int]bool)
	data := make([][]dataset.Cell, 0, len(rows)-1)
	for r := 1; r < len(rows); r++ {
		cells := make([]dataset.Cell, len(rows[r]))
		for c, raw := range rows[r] {
			cell, err := e.readCell(sheet, c+1, r+1, raw, styles)
			if err != nil {
				return nil, err
			}
			cells[c] = cell
		}
		data = append(data, cells)
	}
	return dataset.New(rows[0], data), nil
}

// readCell classifies one raw cell value. col and row are 1-based.
func (e *Editor) readCell(sheet string, col, row int, raw string, styles map[int]bool) (dataset.Cell, error) {
	if raw == "" {
		return dataset.MissingCell(), nil
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return dataset.Cell{}, err
	}
	typ, err := e.file.GetCellType(sheet, name)
	if err != nil {
		return dataset.Cell{}, fmt.Errorf("failed to get type of %s: %w", name, err)
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return dataset.TextCell(raw), nil
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "TRUE") {
			return dataset.TextCell("TRUE"), nil
		}
		return dataset.TextCell("FALSE"), nil
	case excelize.CellTypeError:
		return dataset.MissingCell(), nil
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
			if t, err := time.Parse(layout, raw); err == nil {
				return dataset.DateCell(t), nil
			}
		}
		return dataset.TextCell(raw), nil
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return dataset.TextCell(raw), nil
	}
	isDate, err := e.isDateStyled(sheet, name, styles)
	if err != nil {
		return dataset.Cell{}, err
	}
	if isDate {
		t, err := excelize.ExcelDateToTime(n, false)
		if err == nil {
			return dataset.DateCell(t), nil
		}
	}
	return dataset.NumberCell(n), nil
}

func (e *Editor) isDateStyled(sheet, cell string, cache map[int]bool) (bool, error) {
	id, err := e.file.GetCellStyle(sheet, cell)
	if err != nil {
		return false, fmt.Errorf("failed to get style of %s: %w", cell, err)
	}
	if v, ok := cache[id]; ok {
		return v, nil
	}
	style, err := e.file.GetStyle(id)
	if err != nil || style == nil {
		cache[id] = false
		return false, nil
	}
	v := isDateFormat(style.NumFmt, style.CustomNumFmt)
	cache[id] = v
	return v, nil
}

// isDateFormat reports whether a number format renders a date or time.
func isDateFormat(numFmt int, custom *string) bool {
	if custom != nil && *custom != "" {
		return hasDateTokens(*custom)
	}
	switch {
	case numFmt >= 14 && numFmt <= 22,
		numFmt >= 27 && numFmt <= 36,
		numFmt >= 45 && numFmt <= 47,
		numFmt >= 50 && numFmt <= 58:
		return true
	}
	return false
}

func hasDateTokens(format string) bool {
	var b strings.Builder
	quoted := false
	for _, r := range format {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		default:
			b.WriteRune(r)
		}
	}
	f := strings.ToLower(b.String())
	// drop colour and locale blocks like [Red] or [$-409]
	for {
		i := strings.IndexByte(f, '[')
		j := strings.IndexByte(f, ']')
		if i < 0 || j < i {
			break
		}
		f = f[:i] + f[j+1:]
	}
	return strings.ContainsAny(f, "dy") || strings.Contains(f, "mmm") || strings.Contains(f, "h:mm")
}
