// Package cliutil holds the flags and helpers shared by the smartgen
// subcommands.
package cliutil

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"

	"github.com/broady/smartgen"
	"github.com/broady/smartgen/ir"
)

// Input selects the snapshots and the configuration of a pass.
type Input struct {
	Patterns []string `arg:"" help:"Snapshot files or doublestar patterns (e.g. 'snapshots/**/*.yaml')."`
	Dir      string   `help:"Resolve patterns relative to this directory." short:"C" default:"." type:"existingdir"`
	Config   string   `help:"TOML configuration file." type:"existingfile"`
	Define   []string `help:"Override a configuration key (key=value)." short:"D" placeholder:"KEY=VALUE"`
	Verbose  bool     `help:"Log per-stage details." short:"v"`
}

// LoadConfig builds the configuration from the defaults, the optional
// configuration file and the -D overrides, in that order.
func (in *Input) LoadConfig() (smartgen.Config, error) {
	cfg := smartgen.DefaultConfig()
	if in.Config != "" {
		var err error
		if cfg, err = smartgen.LoadConfigFile(in.Config); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyOptions(in.Define); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Logger returns a text logger writing to w. Verbose lowers the level to
// Debug.
func Logger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// Printer writes user-facing status lines.
type Printer struct {
	W io.Writer
}

// OK prints a success line.
func (p Printer) OK(format string, args ...any) {
	fmt.Fprintf(p.W, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// Fail prints a failure line.
func (p Printer) Fail(format string, args ...any) {
	fmt.Fprintf(p.W, "%s %s\n", red("✗"), fmt.Sprintf(format, args...))
}

// Warning prints a skipped declaration.
func (p Printer) Warning(w ir.Warning) {
	if w.TypeName == "" {
		fmt.Fprintf(p.W, "%s %s %s\n", yellow("!"), w.Message, dim("("+w.Code+")"))
		return
	}
	fmt.Fprintf(p.W, "%s %s: %s %s\n", yellow("!"), w.TypeName, w.Message, dim("("+w.Code+")"))
}

// Detail prints an indented, dimmed line.
func (p Printer) Detail(s string) {
	fmt.Fprintf(p.W, "  %s\n", dim(s))
}
