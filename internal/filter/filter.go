package filter

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/xuri/excelize/v2"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/dataset"
)

// Filter keeps the rows for which a boolean expression holds. Columns are
// bound by letter: text as string, numbers as float64, dates as time.Time and
// missing cells as nil.
//
//	B != nil && len(string(B)) >= 10
type Filter struct {
	source  string
	program *vm.Program
}

// Compile parses an expression for a dataset with the given header. An empty
// expression returns a nil Filter that keeps every row.
func Compile(source string, header []string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil
	}
	env := make(map[string]any, len(header))
	for i := range header {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		env[name] = nil
	}
	program, err := expr.Compile(source, expr.Env(env), expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}
	return &Filter{source: source, program: program}, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Match evaluates the filter against one row.
func (f *Filter) Match(row []dataset.Cell) (bool, error) {
	if f == nil {
		return true, nil
	}
	env := make(map[string]any, len(row))
	for i, cell := range row {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return false, err
		}
		env[name] = cell.Value()
	}
	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Apply returns a dataset holding only matching rows, in order.
func (f *Filter) Apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if f == nil {
		return ds, nil
	}
	var keep []int
	for i, row := range ds.Rows {
		ok, err := f.Match(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return ds.Select(keep), nil
}
