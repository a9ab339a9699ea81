package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/config"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/editor"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/excel"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/generate"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/logger"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/session"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/template"
)

const configPath = "configs/config.toml"

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Directory, cfg.Logging.Level); err != nil {
		fmt.Printf("Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	switch command {
	case "columns":
		if len(args) < 1 {
			fmt.Println("Error: columns command requires input file path")
			fmt.Println("Usage: washeet columns <input_file_path>")
			return
		}
		err = runColumns(args[0])
	case "preview":
		err = runPreview(cfg, args)
	case "generate":
		err = runGenerate(cfg, args)
	case "resume":
		err = runResume(cfg)
	case "edit":
		err = runEdit(cfg, args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage(os.Stdout)
		return
	}

	if err != nil {
		logger.Error("Command failed", "command", command, "error", err)
		printError(err)
		logger.Close()
		os.Exit(1)
	}
}

const templateHelp = `Template:
  A, B, AB       column value of the row (numbers without decimals, blank as N/A)
  "Hi there "    quoted text; \n and \t become a new line and a tab, & is kept
  [DATE.C]       column C as DD-MM-YYYY (dates or serial day numbers)
  [AMPR.C]       column C with every & kept in the link
  Anything outside quotes that is not a column or a [MODE.COLUMN] block is dropped.
  Example: "Hi "A", your plan ends on "[DATE.C]`

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "washeet - WhatsApp link generator for Excel contact sheets")
	fmt.Fprintln(w, "\nUsage:")
	fmt.Fprintln(w, "  washeet columns <input_file>                  - List column letters and headers")
	fmt.Fprintln(w, "  washeet preview -i <input> -t <template>      - Preview a message template")
	fmt.Fprintln(w, "  washeet generate -i <input> -o <dir> ...      - Write workbooks with message links")
	fmt.Fprintln(w, "  washeet resume                                - Repeat the last successful run")
	fmt.Fprintln(w, "  washeet edit [-i <input>]                     - Open the interactive editor")
	fmt.Fprintln(w)
	fmt.Fprintln(w, templateHelp)
}

func printError(err error) {
	var inputErr *generate.InputError
	if errors.As(err, &inputErr) {
		for _, m := range inputErr.Messages {
			fmt.Printf("[error]: %s\n", m)
		}
		return
	}
	fmt.Printf("[error]: %v\n", err)
}

func printDiagnostics(diags []template.Diagnostic) {
	for _, d := range diags {
		fmt.Printf("[%s]: %s (%s at %d)\n", d.Severity, d.Message, d.Token.Text, d.Token.Pos)
	}
}

func runColumns(path string) error {
	logger.Info("Listing columns", "input", path)
	columns, err := excel.ScanColumns(path)
	if err != nil {
		return err
	}
	for _, c := range columns {
		fmt.Printf("%-4s %s\n", c.Letter, c.Header)
	}
	return nil
}

// templateFlags registers -t and -tf on fs and returns a resolver.
func templateFlags(fs *flag.FlagSet) func() (string, error) {
	text := fs.String("t", "", "message template")
	file := fs.String("tf", "", "file holding the message template")
	return func() (string, error) {
		if *file == "" {
			return *text, nil
		}
		b, err := os.ReadFile(*file)
		if err != nil {
			return "", fmt.Errorf("failed to read template file: %w", err)
		}
		return strings.TrimRight(string(b), "\r\n"), nil
	}
}

func runPreview(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	input := fs.String("i", "", "input spreadsheet")
	tmpl := templateFlags(fs)
	_ = fs.Parse(args)

	source, err := tmpl()
	if err != nil {
		return err
	}

	runner := generate.NewRunner(cfg.LinkSettings())
	if *input != "" {
		if err := runner.Load(*input); err != nil {
			return err
		}
	}

	res := runner.Preview(source)
	fmt.Printf("Preview:  %s\n", res.Preview)
	fmt.Printf("Formula:  %s\n", res.FormulaTemplate())
	printDiagnostics(res.Diagnostics)
	if res.Status() == "" {
		fmt.Println("[info]: Template compiled")
	}
	return nil
}

func runGenerate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	input := fs.String("i", "", "input spreadsheet")
	output := fs.String("o", cfg.Output.Directory, "output directory")
	phone := fs.String("phone", "", "phone number column letter")
	link := fs.String("link", "", "column letter to write links into")
	group := fs.String("group", "", "split by the values of this column")
	chunk := fs.Int("chunk", cfg.Output.ChunkSize, "rows per file when not splitting by column")
	where := fs.String("where", "", "keep only rows matching this expression")
	tmpl := templateFlags(fs)
	_ = fs.Parse(args)

	source, err := tmpl()
	if err != nil {
		return err
	}
	if *input == "" {
		return &generate.InputError{Messages: []string{"Please provide the spreadsheet to read (-i)"}}
	}

	req := generate.Request{
		InputPath:   *input,
		OutputDir:   *output,
		PhoneColumn: *phone,
		LinkColumn:  *link,
		GroupBy:     *group != "",
		GroupColumn: *group,
		ChunkSize:   *chunk,
		Template:    source,
		Where:       *where,
	}
	return run(cfg, req)
}

func runResume(cfg *config.Config) error {
	state, err := session.LoadFromFile(cfg.Session.StateFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no saved session at %s, run generate first", cfg.Session.StateFile)
		}
		return err
	}
	req, err := generate.RequestFromState(state)
	if err != nil {
		return err
	}
	fmt.Printf("[info]: Resuming %s -> %s\n", req.InputPath, req.OutputDir)
	return run(cfg, req)
}

func run(cfg *config.Config, req generate.Request) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := generate.NewRunner(cfg.LinkSettings(), generate.WithStateFile(cfg.Session.StateFile))
	summary, err := runner.Run(ctx, req, func(s generate.Status) {
		fmt.Printf("[info]: %s\n", s)
	})
	printDiagnostics(summary.Diagnostics)
	if err != nil {
		return err
	}
	fmt.Printf("[info]: Wrote %d file(s), %d row(s) to %s\n", len(summary.Files), summary.Rows, req.OutputDir)
	return nil
}

func runEdit(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	input := fs.String("i", "", "input spreadsheet")
	_ = fs.Parse(args)

	initial := generate.Request{
		OutputDir: cfg.Output.Directory,
		ChunkSize: cfg.Output.ChunkSize,
	}
	if state, err := session.LoadFromFile(cfg.Session.StateFile); err == nil {
		if req, err := generate.RequestFromState(state); err == nil {
			initial = req
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to read session state", "path", cfg.Session.StateFile, "error", err)
	}
	if *input != "" {
		initial.InputPath = *input
	}

	runner := generate.NewRunner(cfg.LinkSettings(), generate.WithStateFile(cfg.Session.StateFile))
	if initial.InputPath != "" {
		if err := runner.Load(initial.InputPath); err != nil {
			fmt.Printf("[warn]: %v\n", err)
		}
	}
	return editor.Run(runner, initial)
}
