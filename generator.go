// Package smartgen generates the companion source of smart enum
// declarations.
//
// A smart enum is a partial class marked with the smart enum attribute
// whose static fields and properties marked as members become its fixed set
// of instances. For every such class the generator emits one C# fragment
// that constructs the instances, exposes them through an "all members"
// accessor and, when the class does not declare a suitable constructor or
// base class, supplies those too.
//
// A [Generator] is incremental: each call to [Generator.Run] reuses the
// results of the previous call for declarations whose relevant structure has
// not changed.
//
// Example:
//
//	comp, err := provider.LoadCompilation(".", "snapshots/**/*.yaml")
//	if err != nil {
//	    return err
//	}
//	res, err := smartgen.New(smartgen.DefaultConfig()).
//	    WithSink(sink.NewFilesystemSink("obj/generated")).
//	    Run(ctx, comp)
package smartgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/tidwall/btree"
	"golang.org/x/sync/errgroup"

	"github.com/broady/smartgen/analysis"
	"github.com/broady/smartgen/csharp"
	"github.com/broady/smartgen/internal/incremental"
	"github.com/broady/smartgen/ir"
	"github.com/broady/smartgen/sink"
)

// WarnMissingIdentity is reported when a well-known type is not part of the
// compilation and the pass therefore generates nothing.
const WarnMissingIdentity = "missing_identity"

// WarnDuplicateOutput is reported for a declaration whose hint name is
// already taken by an earlier declaration in source order. The earlier
// fragment is kept.
const WarnDuplicateOutput = "duplicate_output"

// Stage names, as reported in [Result.Stats].
const (
	StageFilter  = "filter"
	StageMarker  = "marker"
	StageContext = "context"
	StageEmit    = "emit"
)

// Generator runs generation passes and keeps the memoized results of the
// last one. Create it with [New] and configure it with method chaining.
// Passes on one Generator are serialized.
type Generator struct {
	cfg    Config
	logger *slog.Logger
	sink   sink.OutputSink

	emitter  *csharp.Emitter
	filter   *incremental.Memo[bool]
	marker   *incremental.Memo[bool]
	contexts *incremental.Memo[*analysis.GenerationContext]
	emits    *incremental.Memo[emitted]
	stages   incremental.Group

	mu sync.Mutex
}

type emitted struct {
	Fragment *csharp.Fragment
	Warning  *ir.Warning
}

// New creates a Generator for cfg. The configuration is validated by the
// first call to Run.
func New(cfg Config) *Generator {
	g := &Generator{
		cfg:      cfg,
		logger:   slog.Default(),
		emitter:  csharp.NewEmitter(cfg.emitterOptions()),
		filter:   incremental.NewMemo[bool](StageFilter),
		marker:   incremental.NewMemo[bool](StageMarker),
		contexts: incremental.NewMemo[*analysis.GenerationContext](StageContext),
		emits:    incremental.NewMemo[emitted](StageEmit),
	}
	g.stages = incremental.Group{g.filter, g.marker, g.contexts, g.emits}
	return g
}

// WithLogger sets the logger for pass summaries. Nil restores slog.Default().
func (g *Generator) WithLogger(l *slog.Logger) *Generator {
	if l == nil {
		l = slog.Default()
	}
	g.logger = l
	return g
}

// WithSink makes every successful pass write its fragments to s.
func (g *Generator) WithSink(s sink.OutputSink) *Generator {
	g.sink = s
	return g
}

// Config returns the generator's configuration.
func (g *Generator) Config() Config { return g.cfg }

// Result is the outcome of one pass.
type Result struct {
	// Fragments are the generated files, sorted by hint name.
	Fragments []*csharp.Fragment

	// Warnings explain why confirmed declarations produced no fragment.
	Warnings []ir.Warning

	// Stats reports, per stage, how many results were computed and how many
	// were reused from the previous pass.
	Stats map[string]incremental.Stats
}

// WriteTo writes every fragment to s under its hint name.
func (r *Result) WriteTo(ctx context.Context, s sink.OutputSink) error {
	for _, f := range r.Fragments {
		if err := s.WriteFile(ctx, f.HintName, f.Source); err != nil {
			return fmt.Errorf("write %s: %w", f.HintName, err)
		}
	}
	return nil
}

// Fragment returns the fragment with the given hint name, or nil.
func (r *Result) Fragment(hintName string) *csharp.Fragment {
	for _, f := range r.Fragments {
		if f.HintName == hintName {
			return f
		}
	}
	return nil
}

type confirmed struct {
	key string
	sym *ir.NamedType
}

// Run performs one generation pass over comp. When ctx is cancelled the
// pass is discarded, the previous pass's results stay memoized, and Run
// returns the cancellation cause.
func (g *Generator) Run(ctx context.Context, comp *ir.Compilation) (*Result, error) {
	if comp == nil {
		return nil, errors.New("smartgen: nil compilation")
	}
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.stages.Begin()
	committed := false
	defer func() {
		if !committed {
			g.stages.Abort()
		}
	}()

	decls, err := g.confirm(ctx, comp)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	ids, err := analysis.ResolveIdentities(comp, g.cfg.names())
	if err != nil {
		if !errors.Is(err, analysis.ErrMissingIdentity) {
			return nil, err
		}
		g.logger.Warn("skipping pass", slog.String("compilation", comp.Name), slog.Any("error", err))
		res.Warnings = append(res.Warnings, ir.Warning{Code: WarnMissingIdentity, Message: err.Error()})
		g.stages.Commit()
		committed = true
		res.Stats = g.stages.Stats()
		return res, nil
	}

	outputs, err := g.generate(ctx, decls, ids)
	if err != nil {
		return nil, err
	}

	var fragments btree.Map[string, *csharp.Fragment]
	owners := make(map[string]string)
	for i, out := range outputs {
		if out.Warning != nil {
			res.Warnings = append(res.Warnings, *out.Warning)
			continue
		}
		name := decls[i].sym.DisplayName()
		if owner, exists := owners[out.Fragment.HintName]; exists {
			res.Warnings = append(res.Warnings, ir.Warning{
				Code:     WarnDuplicateOutput,
				Message:  fmt.Sprintf("%s is already generated for %s", out.Fragment.HintName, owner),
				TypeName: name,
			})
			continue
		}
		owners[out.Fragment.HintName] = name
		fragments.Set(out.Fragment.HintName, out.Fragment)
	}
	fragments.Scan(func(_ string, f *csharp.Fragment) bool {
		res.Fragments = append(res.Fragments, f)
		return true
	})

	g.stages.Commit()
	committed = true
	res.Stats = g.stages.Stats()

	g.logger.Info("generated",
		slog.String("compilation", comp.Name),
		slog.Int("fragments", len(res.Fragments)),
		slog.Int("warnings", len(res.Warnings)))
	for name, s := range res.Stats {
		g.logger.Debug("stage", slog.String("stage", name), slog.Int("computed", s.Computed), slog.Int("reused", s.Reused))
	}
	for _, w := range res.Warnings {
		g.logger.Debug("skipped", slog.String("type", w.TypeName), slog.String("code", w.Code), slog.String("reason", w.Message))
	}

	if g.sink != nil {
		if err := res.WriteTo(ctx, g.sink); err != nil {
			return res, err
		}
	}
	return res, nil
}

// confirm runs the filter and marker stages over every declaration and
// returns the confirmed symbols in source order, partial declarations of one
// symbol collapsed into the first.
func (g *Generator) confirm(ctx context.Context, comp *ir.Compilation) ([]confirmed, error) {
	attrs := newAttributeIndex(comp)
	var out []confirmed
	seen := make(map[*ir.NamedType]bool)
	for _, tree := range comp.Trees {
		model := comp.SemanticModel(tree)
		for _, decl := range tree.Declarations {
			if err := ctx.Err(); err != nil {
				return nil, context.Cause(ctx)
			}
			syntax := declarationSyntaxKey(decl)
			digest, err := incremental.Fingerprint(syntax)
			if err != nil {
				return nil, err
			}
			candidate, err := g.filter.Get(decl.ID, digest, func() (bool, error) {
				return analysis.IsCandidate(decl), nil
			})
			if err != nil {
				return nil, err
			}
			if !candidate {
				continue
			}

			key := markerKey{
				Syntax:     syntax,
				Namespace:  decl.Namespace,
				Usings:     tree.Usings,
				Candidates: attrs.markerCandidates(decl),
				Marker:     g.cfg.TypeMarker,
			}
			if decl.Parent != nil {
				key.Outer = decl.Parent.QualifiedName()
			}
			digest, err = incremental.Fingerprint(key)
			if err != nil {
				return nil, err
			}
			marked, err := g.marker.Get(decl.ID, digest, func() (bool, error) {
				ok := analysis.HasMarker(ctx, model, decl, g.cfg.TypeMarker)
				if ctx.Err() != nil {
					return false, context.Cause(ctx)
				}
				return ok, nil
			})
			if err != nil {
				return nil, err
			}
			if !marked {
				continue
			}

			sym := model.DeclaredSymbol(decl)
			if sym == nil || seen[sym] {
				continue
			}
			seen[sym] = true
			out = append(out, confirmed{key: sym.FullMetadataName(), sym: sym})
		}
	}
	return out, nil
}

// generate builds the context of every confirmed symbol and emits it, in
// parallel. The outputs are in the order of decls.
func (g *Generator) generate(ctx context.Context, decls []confirmed, ids *analysis.Identities) ([]emitted, error) {
	opts, err := incremental.Fingerprint(g.cfg.emitterOptions())
	if err != nil {
		return nil, err
	}

	outputs := make([]emitted, len(decls))
	eg, ectx := errgroup.WithContext(ctx)
	limit := g.cfg.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg.SetLimit(limit)
	for i, d := range decls {
		i, d := i, d
		eg.Go(func() error {
			if ectx.Err() != nil {
				return context.Cause(ectx)
			}
			digest, err := incremental.Fingerprint(symbolShape(d.sym, ids))
			if err != nil {
				return err
			}
			gc, err := g.contexts.Get(d.key, digest, func() (*analysis.GenerationContext, error) {
				return analysis.BuildContext(d.sym, ids), nil
			})
			if err != nil {
				return err
			}

			digest, err = incremental.Fingerprint([]any{gc, opts})
			if err != nil {
				return err
			}
			out, err := g.emits.Get(d.key, digest, func() (emitted, error) {
				f, w := g.emitter.Emit(gc)
				return emitted{Fragment: f, Warning: w}, nil
			})
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		return nil, err
	}
	return outputs, nil
}
