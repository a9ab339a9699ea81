package editor

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/dataset"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/generate"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/linkgen"
)

func newTestModel(t *testing.T, initial generate.Request) *model {
	t.Helper()
	r := generate.NewRunner(linkgen.Settings{
		BaseURL:        "https://wa.me/",
		CountryCode:    "91",
		PhoneNumberLen: 10,
		AnchorText:     "Send Message",
	})
	r.SetDataset(filepath.Join(t.TempDir(), "people.xlsx"), dataset.New(
		[]string{"Name", "Phone", "Link"},
		[][]dataset.Cell{
			{dataset.TextCell("Ann"), dataset.TextCell("9998887776")},
			{dataset.TextCell("Bob"), dataset.TextCell("8887776665")},
			{dataset.TextCell("Cy"), dataset.TextCell("7776665554")},
		},
	))
	return newModel(r, initial)
}

func TestPrefillAndPreview(t *testing.T) {
	m := newTestModel(t, generate.Request{
		PhoneColumn: "B",
		ChunkSize:   50,
		Template:    `"Hello "A`,
	})

	assert.Equal(t, "B", m.inputs[fieldPhone].Value())
	assert.Equal(t, "50", m.inputs[fieldChunk].Value())
	assert.Equal(t, fieldTemplate, m.focus)
	assert.Equal(t, "Hello Ann", m.preview.Preview)
	assert.Contains(t, m.View(), "Columns: A=Name  B=Phone  C=Link")
}

func TestFocusCycles(t *testing.T) {
	m := newTestModel(t, generate.Request{})

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldInput, m.focus)
	assert.True(t, m.inputs[fieldInput].Focused())

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldTemplate, m.focus)
	assert.True(t, m.template.Focused())
	assert.False(t, m.inputs[fieldInput].Focused())
}

func TestTypingUpdatesPreview(t *testing.T) {
	m := newTestModel(t, generate.Request{})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("A")})
	assert.Equal(t, "A", m.template.Value())
	assert.Equal(t, "Ann", m.preview.Preview)
}

func TestToggleGroup(t *testing.T) {
	m := newTestModel(t, generate.Request{})
	assert.False(t, m.groupBy)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.True(t, m.groupBy)
	assert.Contains(t, m.View(), "[x]")
}

func TestStartRejectsInvalidForm(t *testing.T) {
	m := newTestModel(t, generate.Request{OutputDir: t.TempDir(), LinkColumn: "C", ChunkSize: 10})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.True(t, m.failed)
	assert.Equal(t, "Please provide the phone column", m.status)
	assert.False(t, m.busy)
}

func TestStartRejectsBadChunkSize(t *testing.T) {
	m := newTestModel(t, generate.Request{OutputDir: t.TempDir(), PhoneColumn: "B", LinkColumn: "C"})
	m.inputs[fieldChunk].SetValue("ten")

	_, err := m.request()
	require.Error(t, err)
	assert.Nil(t, m.startRun())
	assert.Equal(t, "The chunk size must be a whole number", m.status)
}

func TestRunReportsEachFile(t *testing.T) {
	out := t.TempDir()
	m := newTestModel(t, generate.Request{
		OutputDir:   out,
		PhoneColumn: "B",
		LinkColumn:  "C",
		ChunkSize:   2,
		Template:    `"Hi "A`,
	})

	require.NotNil(t, m.startRun())
	assert.True(t, m.busy)
	assert.True(t, m.runner.Busy())

	var statuses int
	for cmd := m.waitForRun(); cmd != nil; {
		msg := cmd()
		_, cmd = m.Update(msg)
		if _, ok := msg.(statusMsg); ok {
			statuses++
		}
	}

	assert.Equal(t, 2, statuses)
	assert.Len(t, m.written, 2)
	assert.False(t, m.busy)
	assert.False(t, m.failed)
	assert.Equal(t, "Done: 2 file(s), 3 row(s) written", m.status)
}

func TestEscAsksBeforeQuitting(t *testing.T) {
	m := newTestModel(t, generate.Request{Template: `"Hi "A`})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.True(t, m.confirmQuit)
	assert.Equal(t, `"Hi "A`, m.template.Value())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("B")})
	assert.False(t, m.confirmQuit)
	assert.Equal(t, `"Hi "AB`, m.template.Value())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
