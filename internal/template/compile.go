package template

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/colref"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/dataset"
)

const (
	// RowPlaceholder marks where the concrete row number goes in a formula template.
	RowPlaceholder = "#"
	// Separator follows every formula fragment, including the last one.
	Separator = ","

	missingText = "N/A"
	previewDate = "02-01-2006"
)

// SerialEpoch is day zero of spreadsheet serial dates.
var SerialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Severity of a Diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic explains why a token produced less output than expected.
type Diagnostic struct {
	Token    Token
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %d (%s): %s", d.Severity, d.Token.Pos, d.Token.Text, d.Message)
}

// Fragment is the output of a single token. A skipped fragment contributes
// nothing to either the preview or the formula.
type Fragment struct {
	Token   Token
	Formula string
	Preview string
	Skipped bool
}

// Result is a compiled template.
type Result struct {
	// Preview is the message rendered against the sample row with runs of
	// spaces collapsed and the ends trimmed.
	Preview string
	// Formula holds every fragment followed by Separator. Use FormulaTemplate
	// for the form ready for row expansion.
	Formula     string
	Fragments   []Fragment
	Diagnostics []Diagnostic
}

// FormulaTemplate returns Formula with exactly one trailing separator removed.
func (r Result) FormulaTemplate() string {
	return strings.TrimSuffix(r.Formula, Separator)
}

// Empty reports whether no token produced a formula fragment.
func (r Result) Empty() bool {
	return r.Formula == ""
}

// Status summarises the last diagnostic, or "" when there is none.
func (r Result) Status() string {
	if len(r.Diagnostics) == 0 {
		return ""
	}
	return r.Diagnostics[len(r.Diagnostics)-1].Message
}

var spaceRun = regexp.MustCompile(` +`)

// Compile translates a template into a preview (evaluated against sample)
// and a row-relative formula template. Per-token problems are recorded as
// diagnostics and never abort the compile.
func Compile(src string, sample []dataset.Cell) Result {
	var res Result
	var preview, formula strings.Builder

	for tok := range Tokens(src) {
		frag, diag := compileToken(tok, sample)
		if diag != nil {
			res.Diagnostics = append(res.Diagnostics, *diag)
		}
		res.Fragments = append(res.Fragments, frag)
		if frag.Skipped {
			continue
		}
		preview.WriteString(frag.Preview)
		if frag.Formula != "" {
			formula.WriteString(frag.Formula)
			formula.WriteString(Separator)
		}
	}

	res.Preview = strings.TrimSpace(spaceRun.ReplaceAllString(preview.String(), " "))
	res.Formula = formula.String()
	return res
}

func compileToken(tok Token, sample []dataset.Cell) (Fragment, *Diagnostic) {
	switch tok.Kind {
	case Literal:
		return compileLiteral(tok), nil
	case ColumnRef:
		cell, diag := lookup(tok, sample)
		if diag != nil {
			return Fragment{Token: tok, Skipped: true}, diag
		}
		return Fragment{
			Token:   tok,
			Formula: fmt.Sprintf(`IF(ISBLANK(%s), "N/A", %s)`, cellRef(tok.Column), cellRef(tok.Column)),
			Preview: columnPreview(cell),
		}, nil
	case Directive:
		return compileDirective(tok, sample)
	}
	return Fragment{Token: tok, Skipped: true}, nil
}

func compileLiteral(tok Token) Fragment {
	// # is the row placeholder in the formula, so literal ones travel encoded.
	formula := strings.NewReplacer(`&`, `%26`, `#`, `%23`, `\n`, `%0A`, `\t`, `%09`).Replace(tok.Text)
	inner := strings.TrimSuffix(strings.TrimPrefix(tok.Text, `"`), `"`)
	preview := strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(inner)
	return Fragment{Token: tok, Formula: formula, Preview: preview}
}

func compileDirective(tok Token, sample []dataset.Cell) (Fragment, *Diagnostic) {
	skip := Fragment{Token: tok, Skipped: true}

	switch tok.Mode {
	case "DATE", "AMPR":
	default:
		return skip, &Diagnostic{
			Token:    tok,
			Severity: Warning,
			Message:  fmt.Sprintf("Invalid mode '%s' is being used!", tok.Mode),
		}
	}

	cell, diag := lookup(tok, sample)
	if diag != nil {
		return skip, diag
	}
	ref := cellRef(tok.Column)

	if tok.Mode == "AMPR" {
		preview := missingText
		if !cell.IsMissing() {
			preview = cell.String()
		}
		return Fragment{
			Token:   tok,
			Formula: fmt.Sprintf(`SUBSTITUTE(%s, "&", "%%26")`, ref),
			Preview: preview,
		}, nil
	}

	frag := Fragment{
		Token:   tok,
		Formula: fmt.Sprintf(`IF(ISBLANK(%s), "N/A", TEXT(%s,"dd-mm-yyyy"))`, ref, ref),
	}
	if cell.IsMissing() {
		frag.Preview = missingText
		return frag, nil
	}
	t, err := asDate(cell)
	if err != nil {
		// The formula is still valid for other rows; only the preview is lost.
		return frag, &Diagnostic{Token: tok, Severity: Error, Message: err.Error()}
	}
	frag.Preview = t.Format(previewDate)
	return frag, nil
}

func lookup(tok Token, sample []dataset.Cell) (dataset.Cell, *Diagnostic) {
	idx := colref.ToIndex(tok.Column)
	if idx < 0 || idx >= len(sample) {
		return dataset.Cell{}, &Diagnostic{
			Token:    tok,
			Severity: Warning,
			Message:  fmt.Sprintf("column %s is out of range", tok.Column),
		}
	}
	return sample[idx], nil
}

func cellRef(column string) string {
	return column + RowPlaceholder
}

func columnPreview(cell dataset.Cell) string {
	switch cell.Kind {
	case dataset.Text:
		return cell.Text
	case dataset.Number:
		n := math.Trunc(cell.Number)
		if n == 0 {
			n = 0 // drop the sign of -0
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	case dataset.Date:
		return cell.Time.Format(time.DateTime)
	default:
		return missingText
	}
}

// SerialToDate converts a spreadsheet serial day count to a calendar date.
func SerialToDate(days int) time.Time {
	return SerialEpoch.AddDate(0, 0, days)
}

func asDate(cell dataset.Cell) (time.Time, error) {
	switch cell.Kind {
	case dataset.Date:
		return cell.Time, nil
	case dataset.Number:
		return SerialToDate(int(cell.Number)), nil
	case dataset.Text:
		s := strings.TrimSpace(cell.Text)
		if n, err := strconv.Atoi(s); err == nil {
			return SerialToDate(n), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return SerialToDate(int(f)), nil
		}
		return time.Time{}, fmt.Errorf("invalid literal for a date serial: '%s'", cell.Text)
	}
	return time.Time{}, fmt.Errorf("no date value")
}
