package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPadsRows(t *testing.T) {
	ds := New([]string{"Name", "Phone", "Link"}, [][]Cell{
		{TextCell("Ann")},
		{TextCell("Bob"), NumberCell(8887776665)},
	})
	require.Equal(t, 3, ds.Width())
	require.Equal(t, 2, ds.Len())
	for _, row := range ds.Rows {
		assert.Len(t, row, 3)
	}
	c, err := ds.Cell(0, 2)
	require.NoError(t, err)
	assert.True(t, c.IsMissing())
}

func TestCellOutOfRange(t *testing.T) {
	ds := New([]string{"A"}, [][]Cell{{TextCell("x")}})
	_, err := ds.Cell(0, 5)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = ds.Cell(3, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestCopyIsIndependent(t *testing.T) {
	ds := New([]string{"A"}, [][]Cell{{TextCell("x")}})
	cp := ds.Copy()
	cp.Rows[0][0] = TextCell("y")
	assert.Equal(t, "x", ds.Rows[0][0].Text)
}

func TestSliceAndSelect(t *testing.T) {
	ds := New([]string{"A"}, [][]Cell{{NumberCell(1)}, {NumberCell(2)}, {NumberCell(3)}})
	assert.Equal(t, 2, ds.Slice(1, 10).Len())
	assert.Equal(t, 0, ds.Slice(3, 3).Len())

	sel := ds.Select([]int{2, 0, 9})
	require.Equal(t, 2, sel.Len())
	assert.Equal(t, float64(3), sel.Rows[0][0].Number)
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "512", NumberCell(512).String())
	assert.Equal(t, "1.5", NumberCell(1.5).String())
	assert.Equal(t, "", MissingCell().String())
	d := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-09 00:00:00", DateCell(d).String())
	assert.Equal(t, time.Time(d), DateCell(d).Value())
}
