package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column pairs a column label with its header text.
type Column struct {
	Letter string
	Header string
}

// ScanColumns lists the header of every column of the first sheet, so a
// template author can see which letter holds which field.
func ScanColumns(path string) ([]Column, error) {
	editor, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer editor.Close()

	sheet, err := editor.FirstSheet()
	if err != nil {
		return nil, err
	}
	headers, err := editor.GetColumnHeaders(sheet)
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return nil, ErrEmptySheet
	}

	columns := make([]Column, 0, len(headers))
	for i, header := range headers {
		letter, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to name column %d: %w", i+1, err)
		}
		columns = append(columns, Column{Letter: letter, Header: strings.TrimSpace(header)})
	}
	return columns, nil
}
