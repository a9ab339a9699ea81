package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xuri/excelize/v2"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/generate"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/logger"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/template"
)

// Form fields, in focus order. The template area comes last.
const (
	fieldInput = iota
	fieldOutput
	fieldPhone
	fieldLink
	fieldGroup
	fieldChunk
	fieldWhere
	fieldTemplate
)

var labels = [...]string{
	fieldInput:  "Spreadsheet",
	fieldOutput: "Output folder",
	fieldPhone:  "Phone column",
	fieldLink:   "Link column",
	fieldGroup:  "Split column",
	fieldChunk:  "Chunk size",
	fieldWhere:  "Row filter",
}

type loadedMsg struct {
	path string
	err  error
}

type statusMsg generate.Status

type runFinishedMsg struct {
	summary generate.Summary
	err     error
}

type model struct {
	runner *generate.Runner

	inputs   []textinput.Model
	template textarea.Model
	groupBy  bool
	focus    int

	spinner spinner.Model
	busy    bool
	task    *generate.Task
	updates chan generate.Status
	cancel  context.CancelFunc

	preview     template.Result
	status      string
	confirmQuit bool
	failed      bool
	written     []string

	width int

	titleStyle   lipgloss.Style
	labelStyle   lipgloss.Style
	focusStyle   lipgloss.Style
	previewStyle lipgloss.Style
	warnStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	okStyle      lipgloss.Style
	helpStyle    lipgloss.Style
}

func newModel(runner *generate.Runner, initial generate.Request) *model {
	m := &model{
		runner:  runner,
		groupBy: initial.GroupBy,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Width(15),
		focusStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(15),
		previewStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		warnStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		okStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}

	values := [...]string{
		fieldInput:  initial.InputPath,
		fieldOutput: initial.OutputDir,
		fieldPhone:  initial.PhoneColumn,
		fieldLink:   initial.LinkColumn,
		fieldGroup:  initial.GroupColumn,
		fieldWhere:  initial.Where,
	}
	if initial.ChunkSize > 0 {
		values[fieldChunk] = strconv.Itoa(initial.ChunkSize)
	}
	m.inputs = make([]textinput.Model, fieldTemplate)
	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = "> "
		in.CharLimit = 512
		in.SetValue(values[i])
		m.inputs[i] = in
	}
	for _, i := range []int{fieldPhone, fieldLink, fieldGroup} {
		m.inputs[i].CharLimit = 3
	}
	m.inputs[fieldChunk].CharLimit = 9

	m.template = textarea.New()
	m.template.Prompt = ""
	m.template.CharLimit = 4096
	m.template.ShowLineNumbers = false
	m.template.SetHeight(5)
	m.template.SetWidth(60)
	m.template.SetValue(initial.Template)
	m.template.Blur()

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = m.warnStyle.Bold(true)

	m.setFocus(fieldTemplate)
	m.refreshPreview()
	if ds := runner.Dataset(); ds != nil {
		m.status = fmt.Sprintf("Loaded %d rows from %s", ds.Len(), runner.Source())
	} else {
		m.status = "No spreadsheet loaded. Enter a path and press ctrl+o."
	}
	return m
}

func (m *model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 4; w > 20 {
			m.template.SetWidth(w)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(fmt.Sprintf("Failed to load %s: %v", msg.path, msg.err))
			return m, nil
		}
		ds := m.runner.Dataset()
		m.setStatus(fmt.Sprintf("Loaded %d rows from %s", ds.Len(), msg.path))
		m.refreshPreview()
		return m, nil

	case statusMsg:
		m.written = append(m.written, msg.Path)
		m.setStatus(generate.Status(msg).String())
		return m, m.waitForRun()

	case runFinishedMsg:
		m.finishRun(msg)
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if key != "esc" {
			m.confirmQuit = false
		}
		switch key {
		case "ctrl+c":
			m.stop()
			return m, tea.Quit
		case "esc":
			if m.busy && m.cancel != nil {
				m.cancel()
				m.setStatus("Cancelling after the current file...")
				return m, nil
			}
			if !m.confirmQuit {
				m.confirmQuit = true
				m.setStatus("Press esc again to quit, any other key to keep editing")
				return m, nil
			}
			return m, tea.Quit
		case "tab":
			m.setFocus((m.focus + 1) % (fieldTemplate + 1))
			return m, nil
		case "shift+tab":
			m.setFocus((m.focus + fieldTemplate) % (fieldTemplate + 1))
			return m, nil
		case "ctrl+g":
			m.groupBy = !m.groupBy
			return m, nil
		case "ctrl+o":
			return m, m.startLoad()
		case "ctrl+s":
			return m, m.startRun()
		}
	}

	var cmd tea.Cmd
	if m.focus == fieldTemplate {
		m.template, cmd = m.template.Update(msg)
		m.refreshPreview()
	} else {
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	}
	return m, cmd
}

func (m *model) setFocus(field int) {
	m.focus = field
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	if field == fieldTemplate {
		m.template.Focus()
	} else {
		m.template.Blur()
	}
}

func (m *model) setStatus(s string) {
	m.status, m.failed = s, false
}

func (m *model) setError(s string) {
	m.status, m.failed = s, true
}

func (m *model) refreshPreview() {
	m.preview = m.runner.Preview(m.template.Value())
}

func (m *model) value(field int) string {
	return strings.TrimSpace(m.inputs[field].Value())
}

// request builds a generate.Request from the form.
func (m *model) request() (generate.Request, error) {
	req := generate.Request{
		InputPath:   m.value(fieldInput),
		OutputDir:   m.value(fieldOutput),
		PhoneColumn: m.value(fieldPhone),
		LinkColumn:  m.value(fieldLink),
		GroupBy:     m.groupBy,
		GroupColumn: m.value(fieldGroup),
		Template:    m.template.Value(),
		Where:       m.value(fieldWhere),
	}
	if cs := m.value(fieldChunk); cs != "" {
		n, err := strconv.Atoi(cs)
		if err != nil {
			return req, &generate.InputError{Messages: []string{"The chunk size must be a whole number"}}
		}
		req.ChunkSize = n
	}
	return req, nil
}

func (m *model) startLoad() tea.Cmd {
	path := m.value(fieldInput)
	if path == "" {
		m.setError("Please provide the spreadsheet path")
		return nil
	}
	task, err := m.runner.StartLoad(path)
	if err != nil {
		m.setError(err.Error())
		return nil
	}
	m.busy = true
	m.setStatus("Loading " + path)
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		_, err := task.Wait()
		return loadedMsg{path: path, err: err}
	})
}

func (m *model) startRun() tea.Cmd {
	req, err := m.request()
	if err != nil {
		m.showError(err)
		return nil
	}
	if err := req.Validate(); err != nil {
		m.showError(err)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan generate.Status)
	notify := func(st generate.Status) {
		select {
		case updates <- st:
		case <-ctx.Done():
		}
	}
	task, err := m.runner.Start(ctx, req, notify)
	if err != nil {
		cancel()
		m.showError(err)
		return nil
	}

	m.task, m.updates, m.cancel = task, updates, cancel
	m.busy = true
	m.written = nil
	m.setStatus("Generating links...")
	logger.Info("Started run from editor", "input", req.InputPath, "output", req.OutputDir)
	return tea.Batch(m.spinner.Tick, m.waitForRun())
}

// waitForRun delivers the next status update, or the result once the task
// is done. notify blocks until the update is received, so none are lost.
func (m *model) waitForRun() tea.Cmd {
	task, updates := m.task, m.updates
	if task == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case st := <-updates:
			return statusMsg(st)
		case <-task.Done():
			summary, err := task.Wait()
			return runFinishedMsg{summary: summary, err: err}
		}
	}
}

func (m *model) finishRun(msg runFinishedMsg) {
	m.busy = false
	if m.cancel != nil {
		m.cancel()
	}
	m.task, m.updates, m.cancel = nil, nil, nil

	switch {
	case errors.Is(msg.err, context.Canceled):
		m.setError(fmt.Sprintf("Cancelled after %d file(s)", len(msg.summary.Files)))
	case msg.err != nil:
		m.showError(msg.err)
	default:
		m.setStatus(fmt.Sprintf("Done: %d file(s), %d row(s) written", len(msg.summary.Files), msg.summary.Rows))
	}
}

func (m *model) showError(err error) {
	var inputErr *generate.InputError
	if errors.As(err, &inputErr) {
		m.setError(strings.Join(inputErr.Messages, "\n"))
		return
	}
	m.setError(err.Error())
}

func (m *model) stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *model) View() string {
	var b strings.Builder

	b.WriteString(m.titleStyle.Render("WhatsApp Link Generator"))
	b.WriteString("\n\n")

	for i := range m.inputs {
		style := m.labelStyle
		if i == m.focus {
			style = m.focusStyle
		}
		b.WriteString(style.Render(labels[i]))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	check := "[ ]"
	if m.groupBy {
		check = "[x]"
	}
	b.WriteString(m.labelStyle.Render("Split by value"))
	b.WriteString(check)
	b.WriteString("\n")

	if cols := m.columns(); cols != "" {
		b.WriteString(m.helpStyle.Render(cols))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	style := m.labelStyle
	if m.focus == fieldTemplate {
		style = m.focusStyle
	}
	b.WriteString(style.Render("Message"))
	b.WriteString("\n")
	b.WriteString(m.template.View())
	b.WriteString("\n\n")

	preview := m.preview.Preview
	if preview == "" {
		preview = m.helpStyle.Render("(empty)")
	}
	b.WriteString(m.previewStyle.Render(preview))
	b.WriteString("\n")
	for _, d := range m.preview.Diagnostics {
		if d.Severity == template.Error {
			b.WriteString(m.errorStyle.Render(d.String()))
		} else {
			b.WriteString(m.warnStyle.Render(d.String()))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.busy:
		b.WriteString(m.spinner.View() + " " + m.status)
	case m.failed:
		b.WriteString(m.errorStyle.Render(m.status))
	default:
		b.WriteString(m.okStyle.Render(m.status))
	}
	b.WriteString("\n\n")

	help := "tab/shift+tab: move | ctrl+g: toggle split | ctrl+o: load | ctrl+s: start | esc: cancel, esc esc: quit"
	b.WriteString(m.helpStyle.Render(help))

	return b.String()
}

// columns lists the loaded header by column letter.
func (m *model) columns() string {
	ds := m.runner.Dataset()
	if ds == nil {
		return ""
	}
	parts := make([]string, 0, len(ds.Header))
	for i, h := range ds.Header {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			break
		}
		parts = append(parts, name+"="+h)
	}
	return "Columns: " + strings.Join(parts, "  ")
}

// Run opens the interactive editor with the form prefilled from initial.
func Run(runner *generate.Runner, initial generate.Request) error {
	m := newModel(runner, initial)

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running editor: %v", err)
	}
	if fm, ok := final.(*model); ok {
		fm.stop()
		for _, path := range fm.written {
			fmt.Printf("✓ %s\n", path)
		}
		if fm.status != "" {
			fmt.Println(fm.status)
		}
	}
	return nil
}
