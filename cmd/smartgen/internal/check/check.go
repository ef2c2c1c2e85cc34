package check

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/broady/smartgen"
	"github.com/broady/smartgen/cmd/smartgen/internal/cliutil"
	"github.com/broady/smartgen/provider"
	"github.com/broady/smartgen/sink"
)

type Cmd struct {
	cliutil.Input

	Out string `help:"Directory holding the generated files." short:"o" required:""`
}

// ErrStale is returned when the output directory is not up to date.
var ErrStale = errors.New("generated files are out of date")

func (c *Cmd) Run() error {
	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}
	comp, err := provider.LoadCompilation(c.Dir, c.Patterns...)
	if err != nil {
		return smartgen.Errorf(smartgen.CodeInvalidSnapshot, "%w", err)
	}

	mem := sink.NewMemorySink()
	gen := smartgen.New(cfg).
		WithLogger(cliutil.Logger(os.Stderr, c.Verbose)).
		WithSink(mem)
	res, err := gen.Run(context.Background(), comp)
	if err != nil {
		return err
	}

	p := cliutil.Printer{W: os.Stdout}
	for _, w := range res.Warnings {
		p.Warning(w)
	}
	diffs, err := Compare(mem.Files(), c.Out, cfg.HintSuffix)
	if err != nil {
		return err
	}
	if len(diffs) == 0 {
		p.OK("%d generated files up to date", len(res.Fragments))
		return nil
	}
	for _, d := range diffs {
		p.Fail("%s: %s", d.Path, d.Kind)
		if d.Diff != "" {
			fmt.Print(d.Diff)
		}
	}
	return fmt.Errorf("%w: %d of %d", ErrStale, len(diffs), len(res.Fragments))
}

// Kind classifies a difference.
type Kind string

const (
	Missing Kind = "missing"
	Stale   Kind = "stale"
	Extra   Kind = "no longer generated"
)

// Difference is one file that does not match.
type Difference struct {
	Path string
	Kind Kind

	// Diff is a unified diff from the file on disk to the expected content,
	// set for stale files.
	Diff string
}

// Compare checks the files in dir against want. Files below dir ending in
// suffix that are not in want are reported as extra. The result is sorted
// by path.
func Compare(want map[string][]byte, dir, suffix string) ([]Difference, error) {
	var diffs []Difference
	for path, content := range want {
		got, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			diffs = append(diffs, Difference{Path: path, Kind: Missing})
			continue
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if bytes.Equal(got, content) {
			continue
		}
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(got)),
			B:        difflib.SplitLines(string(content)),
			FromFile: filepath.ToSlash(filepath.Join(dir, path)),
			ToFile:   "generated",
			Context:  3,
		})
		if err != nil {
			return nil, fmt.Errorf("diff %s: %w", path, err)
		}
		diffs = append(diffs, Difference{Path: path, Kind: Stale, Diff: diff})
	}

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if _, ok := want[rel]; !ok {
			diffs = append(diffs, Difference{Path: rel, Kind: Extra})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Path < diffs[j].Path })
	return diffs, nil
}
