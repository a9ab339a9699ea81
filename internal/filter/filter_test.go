package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/dataset"
)

func contacts() *dataset.Dataset {
	return dataset.New([]string{"Name", "Phone", "Branch"}, [][]dataset.Cell{
		{dataset.TextCell("Ann"), dataset.TextCell("9998887776"), dataset.NumberCell(512)},
		{dataset.TextCell("Bob"), dataset.MissingCell(), dataset.NumberCell(523)},
		{dataset.TextCell("Cy"), dataset.TextCell("123"), dataset.NumberCell(512)},
	})
}

func TestEmptyFilterKeepsAll(t *testing.T) {
	f, err := Compile("  ", contacts().Header)
	require.NoError(t, err)
	assert.Nil(t, f)

	out, err := f.Apply(contacts())
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
}

func TestFilterByMissingAndLength(t *testing.T) {
	ds := contacts()
	f, err := Compile(`B != nil && len(B) >= 10`, ds.Header)
	require.NoError(t, err)

	out, err := f.Apply(ds)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "Ann", out.Rows[0][0].Text)
}

func TestFilterByNumber(t *testing.T) {
	ds := contacts()
	f, err := Compile(`C == 512`, ds.Header)
	require.NoError(t, err)

	out, err := f.Apply(ds)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, "C == 512", f.String())
}

func TestFilterSyntaxError(t *testing.T) {
	_, err := Compile(`B ==`, contacts().Header)
	assert.Error(t, err)
}
