package gen

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/broady/smartgen"
	"github.com/broady/smartgen/cmd/smartgen/internal/cliutil"
	"github.com/broady/smartgen/provider"
	"github.com/broady/smartgen/sink"
)

type Cmd struct {
	cliutil.Input

	Out      string        `help:"Output directory, or archive file with --txtar." short:"o" required:""`
	Txtar    bool          `help:"Write one txtar archive instead of a directory."`
	Prune    bool          `help:"Remove generated files that are no longer produced." default:"true" negatable:""`
	Watch    bool          `help:"Regenerate whenever a snapshot changes." short:"w"`
	Interval time.Duration `help:"Polling interval in watch mode." default:"500ms"`
}

func (c *Cmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}
	r := &Runner{
		Input:  c.Input,
		Out:    c.Out,
		Txtar:  c.Txtar,
		Prune:  c.Prune,
		Gen:    smartgen.New(cfg).WithLogger(cliutil.Logger(os.Stderr, c.Verbose)),
		Print:  cliutil.Printer{W: os.Stdout},
		suffix: cfg.HintSuffix,
	}
	if !c.Watch {
		return r.Once(ctx)
	}
	return r.Watch(ctx, c.Interval)
}

// Runner performs generation passes for the gen command. One Runner keeps
// one generator, so passes in watch mode reuse each other's results.
type Runner struct {
	Input cliutil.Input
	Out   string
	Txtar bool
	Prune bool
	Gen   *smartgen.Generator
	Print cliutil.Printer

	suffix string
	fs     *sink.FilesystemSink
}

// Once runs one pass and writes its fragments.
func (r *Runner) Once(ctx context.Context) error {
	comp, err := provider.LoadCompilation(r.Input.Dir, r.Input.Patterns...)
	if err != nil {
		return smartgen.Errorf(smartgen.CodeInvalidSnapshot, "%w", err)
	}

	var archive *sink.TxtarSink
	if r.Txtar {
		archive = sink.NewTxtarSink("generated by smartgen " + comp.Name)
		r.Gen.WithSink(archive)
	} else {
		if r.fs == nil {
			r.fs = sink.NewFilesystemSink(r.Out)
		}
		r.Gen.WithSink(r.fs)
	}

	res, err := r.Gen.Run(ctx, comp)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		r.Print.Warning(w)
	}

	if archive != nil {
		if dir := filepath.Dir(r.Out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
		if err := archive.WriteArchive(r.Out); err != nil {
			return err
		}
		r.Print.OK("%d fragments archived in %s", len(res.Fragments), r.Out)
		return nil
	}

	r.Print.OK("%d fragments written to %s", len(res.Fragments), r.Out)
	if r.Prune {
		removed, err := r.fs.Prune(r.suffix)
		if err != nil {
			return err
		}
		for _, p := range removed {
			r.Print.Detail("removed " + p)
		}
	}
	return nil
}

// Watch runs a pass, then polls the snapshots every interval and runs
// another pass whenever one is added, removed or modified. Pass errors are
// printed and watching continues. It returns when ctx is done.
func (r *Runner) Watch(ctx context.Context, interval time.Duration) error {
	var last string
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		stamp, err := r.stamp()
		switch {
		case err != nil:
			if stamp != last {
				r.Print.Fail("%v", err)
			}
		case stamp != last:
			if err := r.Once(ctx); err != nil && ctx.Err() == nil {
				r.Print.Fail("%v", err)
			}
		}
		last = stamp

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// stamp summarizes the path, size and modification time of every matched
// snapshot.
func (r *Runner) stamp() (string, error) {
	files, err := provider.Discover(r.Input.Dir, r.Input.Patterns...)
	if err != nil {
		return "error: " + err.Error(), err
	}
	var stamp string
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return "error: " + err.Error(), err
		}
		stamp += fmt.Sprintf("%s:%d:%d;", f, info.Size(), info.ModTime().UnixNano())
	}
	return stamp, nil
}
