package partition

import (
	"fmt"
	"iter"
	"strings"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/colref"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/dataset"
)

// DefaultChunkSize is used when a chunked split has no usable size.
const DefaultChunkSize = 200

// Mode selects how a dataset is split.
type Mode int

const (
	ModeChunk Mode = iota
	ModeColumn
)

func (m Mode) String() string {
	if m == ModeColumn {
		return "column"
	}
	return "chunk"
}

// Spec is built once per run. A ByColumn spec whose column cannot be resolved
// falls back to chunking with ChunkSize.
type Spec struct {
	Mode      Mode
	Column    string
	ChunkSize int
}

// ByColumn groups rows by the trimmed string value of a column. chunkSize is
// only used if the column turns out to be unusable.
func ByColumn(letters string, chunkSize int) Spec {
	return Spec{Mode: ModeColumn, Column: colref.Normalize(letters), ChunkSize: chunkSize}
}

// ByChunkSize splits rows into contiguous windows of n.
func ByChunkSize(n int) Spec {
	return Spec{Mode: ModeChunk, ChunkSize: n}
}

func (s Spec) String() string {
	if s.Mode == ModeColumn {
		return fmt.Sprintf("column %s", s.Column)
	}
	return fmt.Sprintf("chunks of %d", s.ChunkSize)
}

// Resolve returns the spec that will actually run for a dataset of the given
// width, and the column index when grouping.
func (s Spec) Resolve(width int) (Spec, int) {
	if s.Mode == ModeColumn {
		idx := colref.ToIndex(s.Column)
		if colref.Valid(s.Column) && idx < width {
			return s, idx
		}
	}
	n := s.ChunkSize
	if n <= 0 {
		n = DefaultChunkSize
	}
	return Spec{Mode: ModeChunk, ChunkSize: n}, -1
}

// Unit is one output file worth of rows.
type Unit struct {
	// Label is the group value, empty for chunks.
	Label string
	// Sequence is 1-based, in output order.
	Sequence int
	// Chunked is true when no grouping column was in effect.
	Chunked bool
	Data    *dataset.Dataset
}

// Split partitions a private copy of ds according to spec. Units are
// produced lazily and in order: groups in first-seen order of their value,
// chunks front to back.
func Split(ds *dataset.Dataset, spec Spec) iter.Seq[Unit] {
	data := ds.Copy()
	resolved, col := spec.Resolve(data.Width())

	if resolved.Mode == ModeColumn {
		return byColumn(data, col)
	}
	return byChunk(data, resolved.ChunkSize)
}

// Collect runs Split to completion.
func Collect(ds *dataset.Dataset, spec Spec) []Unit {
	var units []Unit
	for u := range Split(ds, spec) {
		units = append(units, u)
	}
	return units
}

// Groups returns the distinct trimmed values of column col in first-seen
// order, with the indices of the rows holding each value.
func Groups(ds *dataset.Dataset, col int) ([]string, map[string][]int) {
	var order []string
	members := make(map[string][]int)
	for i, row := range ds.Rows {
		if col < 0 || col >= len(row) {
			continue
		}
		label := strings.TrimSpace(row[col].String())
		if _, seen := members[label]; !seen {
			order = append(order, label)
		}
		members[label] = append(members[label], i)
	}
	return order, members
}

func byColumn(data *dataset.Dataset, col int) iter.Seq[Unit] {
	return func(yield func(Unit) bool) {
		order, members := Groups(data, col)
		for i, label := range order {
			u := Unit{Label: label, Sequence: i + 1, Data: data.Select(members[label])}
			if !yield(u) {
				return
			}
		}
	}
}

func byChunk(data *dataset.Dataset, size int) iter.Seq[Unit] {
	return func(yield func(Unit) bool) {
		seq := 0
		for start := 0; start < data.Len(); start += size {
			seq++
			u := Unit{Sequence: seq, Chunked: true, Data: data.Slice(start, start+size)}
			if !yield(u) {
				return
			}
		}
	}
}
