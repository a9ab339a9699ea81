package linkgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/colref"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/template"
)

// FirstDataRow is the sheet row of the first data row; row 1 is the header.
const FirstDataRow = 2

// Settings are the externally configured link constants.
type Settings struct {
	BaseURL        string
	CountryCode    string
	PhoneNumberLen int
	AnchorText     string
}

// Generator expands a compiled formula template into one HYPERLINK formula
// per sheet row.
type Generator struct {
	settings Settings
	phone    string
	message  string
}

// New returns a generator for the given phone column and formula template
// (already stripped of its trailing separator).
func New(settings Settings, phoneColumn, formulaTemplate string) *Generator {
	message := strings.TrimSpace(formulaTemplate)
	if message == "" {
		message = `""`
	}
	return &Generator{
		settings: settings,
		phone:    colref.Normalize(phoneColumn),
		message:  message,
	}
}

// Formula returns the formula for a 1-based sheet row.
func (g *Generator) Formula(row int) string {
	r := strconv.Itoa(row)
	phone := g.phone + r
	message := strings.ReplaceAll(g.message, template.RowPlaceholder, r)

	return fmt.Sprintf(
		`HYPERLINK(%s&IF(LEN(%s)=%d,%s&%s,%s)&"?text="&TRIM(CONCATENATE(%s)),%s)`,
		quote(g.settings.BaseURL),
		phone, g.settings.PhoneNumberLen, quote(g.settings.CountryCode), phone, phone,
		message,
		quote(g.settings.AnchorText),
	)
}

// Formulas returns the formulas for n data rows, sheet rows 2..n+1.
func (g *Generator) Formulas(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = g.Formula(FirstDataRow + i)
	}
	return out
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
