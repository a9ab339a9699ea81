package excel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/dataset"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Name", "Phone", "Link", "Joined", "Note"}))
	require.NoError(t, f.SetCellValue(sheet, "A2", "Ann"))
	require.NoError(t, f.SetCellValue(sheet, "B2", 9998887776))
	require.NoError(t, f.SetCellValue(sheet, "D2", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellValue(sheet, "E2", "Tom & Jerry"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "Bob"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "8887776665"))
	require.NoError(t, f.SetCellValue(sheet, "D3", 45000))
	require.NoError(t, f.SetCellBool(sheet, "E3", true))

	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadDataset(t *testing.T) {
	ds, err := LoadDataset(writeFixture(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Phone", "Link", "Joined", "Note"}, ds.Header)
	require.Equal(t, 2, ds.Len())

	row := ds.Rows[0]
	assert.Equal(t, dataset.TextCell("Ann"), row[0])
	assert.Equal(t, dataset.Number, row[1].Kind)
	assert.Equal(t, float64(9998887776), row[1].Number)
	assert.True(t, row[2].IsMissing())
	require.Equal(t, dataset.Date, row[3].Kind)
	assert.Equal(t, "2024-03-09", row[3].Time.Format(time.DateOnly))
	assert.Equal(t, "Tom & Jerry", row[4].Text)

	row = ds.Rows[1]
	assert.Equal(t, dataset.TextCell("8887776665"), row[1])
	assert.Equal(t, dataset.NumberCell(45000), row[3])
	assert.Equal(t, dataset.TextCell("TRUE"), row[4])
}

func TestLoadDatasetEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := LoadDataset(path)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestLoadDatasetMissingFile(t *testing.T) {
	_, err := LoadDataset(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestSaveDataset(t *testing.T) {
	ds := dataset.New([]string{"Name", "Phone", "Link"}, [][]dataset.Cell{
		{dataset.TextCell("Ann"), dataset.TextCell("9998887776")},
		{dataset.TextCell(strings.Repeat("x", 300)), dataset.NumberCell(8887776665)},
	})
	path := filepath.Join(t.TempDir(), "out.xlsx")
	err := SaveDataset(path, ds, Links{Column: "c", Formulas: []string{`HYPERLINK("a","b")`, `HYPERLINK("c","d")`}})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(DefaultSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Ann", v)

	formula, err := f.GetCellFormula(DefaultSheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, `HYPERLINK("c","d")`, formula)

	w, err := f.GetColWidth(DefaultSheet, "B")
	require.NoError(t, err)
	assert.Equal(t, float64(10), w)

	w, err = f.GetColWidth(DefaultSheet, "A")
	require.NoError(t, err)
	assert.Equal(t, float64(MaxColumnWidth), w)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSaveDatasetRoundTripsDates(t *testing.T) {
	day := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	ds := dataset.New([]string{"Joined"}, [][]dataset.Cell{{dataset.DateCell(day)}})
	path := filepath.Join(t.TempDir(), "dates.xlsx")
	require.NoError(t, SaveDataset(path, ds, Links{Column: "B"}))

	back, err := LoadDataset(path)
	require.NoError(t, err)
	require.Equal(t, dataset.Date, back.Rows[0][0].Kind)
	assert.True(t, day.Equal(back.Rows[0][0].Time))
}

func TestSaveDatasetBadDirectory(t *testing.T) {
	ds := dataset.New([]string{"A"}, nil)
	err := SaveDataset(filepath.Join(t.TempDir(), "missing", "out.xlsx"), ds, Links{})
	assert.Error(t, err)
}

func TestWriteLinksRejectsBadColumn(t *testing.T) {
	e := CreateNewFile()
	defer e.Close()
	assert.Error(t, e.WriteLinks(DefaultSheet, Links{Column: "1", Formulas: []string{"x"}}))
}

func TestColumnWidths(t *testing.T) {
	ds := dataset.New([]string{"ID", "", "Name"}, [][]dataset.Cell{
		{dataset.NumberCell(12345), dataset.MissingCell(), dataset.TextCell("Zoë")},
	})
	assert.Equal(t, []int{5, 0, 4}, ColumnWidths(ds))
}

func TestIsDateFormat(t *testing.T) {
	custom := func(s string) *string { return &s }
	assert.True(t, isDateFormat(14, nil))
	assert.True(t, isDateFormat(22, nil))
	assert.False(t, isDateFormat(0, nil))
	assert.False(t, isDateFormat(2, nil))
	assert.True(t, isDateFormat(0, custom("dd/mm/yyyy")))
	assert.True(t, isDateFormat(0, custom("[$-409]mmm yy")))
	assert.False(t, isDateFormat(0, custom(`0.00 "days"`)))
	assert.False(t, isDateFormat(0, custom("[Red]0.00")))
}

func TestScanColumns(t *testing.T) {
	cols, err := ScanColumns(writeFixture(t))
	require.NoError(t, err)
	require.Len(t, cols, 5)
	assert.Equal(t, Column{Letter: "A", Header: "Name"}, cols[0])
	assert.Equal(t, Column{Letter: "E", Header: "Note"}, cols[4])
}
