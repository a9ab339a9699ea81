package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/dataset"
)

func sampleRow() []dataset.Cell {
	return []dataset.Cell{
		dataset.TextCell("Ann"),
		dataset.NumberCell(500000),
		dataset.TextCell("Tom & Jerry"),
		dataset.MissingCell(),
		dataset.DateCell(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)),
		dataset.NumberCell(9998887776.0),
		dataset.TextCell("45000"),
		dataset.TextCell("soon"),
	}
}

func TestCompileLiteralsOnly(t *testing.T) {
	res := Compile(`"Hello   "   "world" "!"`, sampleRow())
	assert.Equal(t, "Hello world!", res.Preview)
	assert.Equal(t, `"Hello   ","world","!",`, res.Formula)
	assert.Equal(t, `"Hello   ","world","!"`, res.FormulaTemplate())
	assert.Empty(t, res.Diagnostics)
}

func TestCompileColumnRef(t *testing.T) {
	res := Compile(`"Hi "a" bye"`, sampleRow())
	assert.Equal(t, "Hi Ann bye", res.Preview)
	assert.Equal(t, `"Hi ",IF(ISBLANK(A#), "N/A", A#)," bye",`, res.Formula)
}

func TestCompileColumnRefCoercions(t *testing.T) {
	assert.Equal(t, "9998887776", Compile(`F`, sampleRow()).Preview)
	assert.Equal(t, "N/A", Compile(`D`, sampleRow()).Preview)
	assert.Equal(t, "2024-03-09 00:00:00", Compile(`E`, sampleRow()).Preview)
}

func TestCompileColumnRefOutOfRangeIsSkipped(t *testing.T) {
	res := Compile(`"x" Hello "y"`, sampleRow())
	assert.Equal(t, "xy", res.Preview)
	assert.Equal(t, `"x","y",`, res.Formula)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, Warning, res.Diagnostics[0].Severity)
	require.Len(t, res.Fragments, 3)
	assert.True(t, res.Fragments[1].Skipped)
}

func TestCompileAmpersandLiteral(t *testing.T) {
	res := Compile(`"Q&A"`, sampleRow())
	assert.Equal(t, "Q&A", res.Preview)
	assert.Equal(t, `"Q%26A",`, res.Formula)
}

func TestCompileEscapes(t *testing.T) {
	res := Compile(`"Line1\nLine2\tEnd"`, sampleRow())
	assert.Equal(t, "Line1\nLine2\tEnd", res.Preview)
	assert.Equal(t, `"Line1%0ALine2%09End",`, res.Formula)
}

func TestCompileDateSerial(t *testing.T) {
	res := Compile(`[DATE.B]`, sampleRow())
	want := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 500000).Format("02-01-2006")
	assert.Equal(t, want, res.Preview)
	assert.Equal(t, `IF(ISBLANK(B#), "N/A", TEXT(B#,"dd-mm-yyyy")),`, res.Formula)
}

func TestCompileDateVariants(t *testing.T) {
	assert.Equal(t, "09-03-2024", Compile(`[DATE.E]`, sampleRow()).Preview)
	assert.Equal(t, "N/A", Compile(`[date.d]`, sampleRow()).Preview)
	assert.Equal(t, "15-03-2023", Compile(`[DATE.G]`, sampleRow()).Preview)
}

func TestCompileDateUnparseableKeepsFormula(t *testing.T) {
	res := Compile(`"due "[DATE.H]`, sampleRow())
	assert.Equal(t, "due", res.Preview)
	assert.Contains(t, res.Formula, `TEXT(H#,"dd-mm-yyyy")`)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, Error, res.Diagnostics[0].Severity)
}

func TestCompileAmpr(t *testing.T) {
	res := Compile(`[AMPR.C]`, sampleRow())
	assert.Equal(t, "Tom & Jerry", res.Preview)
	assert.Equal(t, `SUBSTITUTE(C#, "&", "%26"),`, res.Formula)

	assert.Equal(t, "N/A", Compile(`[AMPR.D]`, sampleRow()).Preview)
}

func TestCompileInvalidMode(t *testing.T) {
	res := Compile(`"a"[UPPER.A]"b"`, sampleRow())
	assert.Equal(t, "ab", res.Preview)
	assert.Equal(t, `"a","b",`, res.Formula)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "Invalid mode 'UPPER' is being used!", res.Status())
}

func TestCompileDirectiveOutOfRange(t *testing.T) {
	res := Compile(`[DATE.Z]`, sampleRow())
	assert.True(t, res.Empty())
	assert.Len(t, res.Diagnostics, 1)
}

func TestCompileWithoutSample(t *testing.T) {
	res := Compile(`"Hi "A`, nil)
	assert.Equal(t, "Hi", res.Preview)
	assert.Equal(t, `"Hi ",`, res.Formula)
}

func TestSerialToDate(t *testing.T) {
	assert.Equal(t, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), SerialToDate(2))
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), SerialToDate(45000))
}

func TestCompileHashLiteralIsEncoded(t *testing.T) {
	res := Compile(`"Order #"A`, sampleRow())
	assert.Equal(t, "Order #Ann", res.Preview)
	assert.Equal(t, `"Order %23",IF(ISBLANK(A#), "N/A", A#)`, res.FormulaTemplate())
}

func TestCompileNumberTruncates(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want string
	}{
		{42.9, "42"},
		{-3.7, "-3"},
		{-0.5, "0"},
		{1e20, "100000000000000000000"},
		{-2.5e19, "-25000000000000000000"},
	} {
		res := Compile(`A`, []dataset.Cell{dataset.NumberCell(tc.in)})
		assert.Equal(t, tc.want, res.Preview, "value %v", tc.in)
	}
}
