package dataset

import (
	"strconv"
	"time"
)

// Kind tags the value held by a Cell.
type Kind int

const (
	Missing Kind = iota
	Text
	Number
	Date
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	case Date:
		return "date"
	default:
		return "missing"
	}
}

// Cell is one loaded spreadsheet value. Only the field matching Kind is set.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
	Time   time.Time
}

func TextCell(s string) Cell { return Cell{Kind: Text, Text: s} }
func NumberCell(n float64) Cell { return Cell{Kind: Number, Number: n} }
func DateCell(t time.Time) Cell { return Cell{Kind: Date, Time: t} }
func MissingCell() Cell { return Cell{} }
func (c Cell) IsMissing() bool { return c.Kind == Missing }

// String returns the plain string form of the cell: numbers without a
// trailing ".0", dates as "2006-01-02 15:04:05", missing as "".
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return c.Text
	case Number:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case Date:
		return c.Time.Format(time.DateTime)
	default:
		return ""
	}
}

// Value returns the cell as a Go value suitable for writing back to a sheet.
func (c Cell) Value() any {
	switch c.Kind {
	case Text:
		return c.Text
	case Number:
		return c.Number
	case Date:
		return c.Time
	default:
		return nil
	}
}
