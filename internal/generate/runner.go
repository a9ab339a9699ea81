package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/dataset"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/excel"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/filter"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/linkgen"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/logger"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/partition"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/template"
)

var (
	ErrBusy      = errors.New("a task is already running")
	ErrNotLoaded = errors.New("no spreadsheet loaded")
	ErrNoRows    = errors.New("the spreadsheet has no data rows")
)

// Status is reported after each output file is written.
type Status struct {
	Label    string
	Sequence int
	Chunked  bool
	Rows     int
	Path     string
}

func (s Status) String() string {
	if s.Chunked {
		return fmt.Sprintf("chunk %d (%d rows)...done!", s.Sequence, s.Rows)
	}
	return fmt.Sprintf("%s...done!", s.Label)
}

// Summary describes a finished (or interrupted) run.
type Summary struct {
	Files       []string
	Rows        int
	Spec        partition.Spec
	Diagnostics []template.Diagnostic
}

// Runner owns the loaded spreadsheet and runs one background task at a time.
type Runner struct {
	settings  linkgen.Settings
	stateFile string
	now       func() time.Time

	busy atomic.Bool

	mu     sync.RWMutex
	data   *dataset.Dataset
	source string
}

type Option func(*Runner)

// WithStateFile remembers every successful request in path.
func WithStateFile(path string) Option {
	return func(r *Runner) { r.stateFile = path }
}

// WithClock overrides the date used in output file names.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(settings linkgen.Settings, opts ...Option) *Runner {
	r := &Runner{settings: settings, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Busy reports whether a load or run is in flight.
func (r *Runner) Busy() bool {
	return r.busy.Load()
}

// Dataset returns the loaded spreadsheet, or nil.
func (r *Runner) Dataset() *dataset.Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

// Source returns the path of the loaded spreadsheet.
func (r *Runner) Source() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

// SetDataset installs an already loaded dataset under the given source name.
func (r *Runner) SetDataset(source string, ds *dataset.Dataset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data, r.source = ds, source
}

// Load reads a spreadsheet and makes it the current dataset.
func (r *Runner) Load(path string) error {
	if !r.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer r.busy.Store(false)
	return r.load(path)
}

func (r *Runner) load(path string) error {
	start := time.Now()
	ds, err := excel.LoadDataset(path)
	if err != nil {
		logger.Error("Failed to load spreadsheet", "input", path, "error", err)
		return err
	}
	r.SetDataset(path, ds)
	logger.Info("Loaded spreadsheet", "input", path, "rows", ds.Len(), "columns", ds.Width(), "duration", time.Since(start))
	return nil
}

// Preview compiles a template against the first data row.
func (r *Runner) Preview(tmpl string) template.Result {
	var sample []dataset.Cell
	if ds := r.Dataset(); ds != nil {
		sample, _ = ds.Sample()
	}
	return template.Compile(tmpl, sample)
}

// Run validates req, splits the dataset and writes one workbook per unit,
// strictly in order. notify may be nil. Cancelling ctx stops the run before
// the next unit; files already written are kept.
func (r *Runner) Run(ctx context.Context, req Request, notify func(Status)) (Summary, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return Summary{}, ErrBusy
	}
	defer r.busy.Store(false)
	return r.run(ctx, req, notify)
}

func (r *Runner) run(ctx context.Context, req Request, notify func(Status)) (Summary, error) {
	if err := req.Validate(); err != nil {
		return Summary{}, err
	}
	req.normalize()

	if req.InputPath != "" && req.InputPath != r.Source() {
		if err := r.load(req.InputPath); err != nil {
			return Summary{}, err
		}
	}
	ds := r.Dataset()
	if ds == nil {
		return Summary{}, ErrNotLoaded
	}
	if ds.Len() == 0 {
		return Summary{}, ErrNoRows
	}

	compiled := r.Preview(req.Template)
	for _, d := range compiled.Diagnostics {
		logger.Warn("Template diagnostic", "detail", d.String())
	}

	where, err := filter.Compile(req.Where, ds.Header)
	if err != nil {
		return Summary{}, &InputError{Messages: []string{err.Error()}}
	}
	rows, err := where.Apply(ds)
	if err != nil {
		return Summary{}, err
	}
	if rows.Len() == 0 {
		return Summary{}, fmt.Errorf("filter %q matched no rows: %w", where.String(), ErrNoRows)
	}

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return Summary{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	spec, _ := req.Spec().Resolve(rows.Width())
	summary := Summary{Spec: spec, Diagnostics: compiled.Diagnostics}
	if spec.Mode == partition.ModeChunk {
		logger.Info("Chunking rows", "chunk_size", spec.ChunkSize, "rows", rows.Len())
	}

	gen := linkgen.New(r.settings, req.PhoneColumn, compiled.FormulaTemplate())
	source := r.Source()
	names := newNamer(req.OutputDir, source, r.now())

	for unit := range partition.Split(rows, spec) {
		if err := ctx.Err(); err != nil {
			logger.Warn("Run cancelled", "written", len(summary.Files))
			return summary, err
		}

		path := names.path(unit)
		links := excel.Links{Column: req.LinkColumn, Formulas: gen.Formulas(unit.Data.Len())}
		if err := excel.SaveDataset(path, unit.Data, links); err != nil {
			logger.Error("Failed to write workbook", "path", path, "error", err)
			return summary, fmt.Errorf("failed to write %s: %w", path, err)
		}

		summary.Files = append(summary.Files, path)
		summary.Rows += unit.Data.Len()
		status := Status{
			Label:    unit.Label,
			Sequence: unit.Sequence,
			Chunked:  unit.Chunked,
			Rows:     unit.Data.Len(),
			Path:     path,
		}
		logger.Info("Wrote workbook", "group", unit.Label, "chunk", unit.Sequence, "rows", status.Rows, "path", path)
		if notify != nil {
			notify(status)
		}
	}

	if r.stateFile != "" {
		if req.InputPath == "" {
			req.InputPath = source
		}
		if err := req.State().SaveToFile(r.stateFile); err != nil {
			logger.Warn("Failed to save session state", "path", r.stateFile, "error", err)
		}
	}
	logger.Info("Run finished", "files", len(summary.Files), "rows", summary.Rows, "spec", spec.String())
	return summary, nil
}
