// Package pipeline drives parameter elision over a repository: load, locate,
// cross-check, elide, write back and report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/vd09-projects/go-param-elide/internal/callgraph"
	"github.com/vd09-projects/go-param-elide/internal/candidates"
	"github.com/vd09-projects/go-param-elide/internal/elide"
	"github.com/vd09-projects/go-param-elide/internal/filehandler"
	"github.com/vd09-projects/go-param-elide/internal/gitutil"
	"github.com/vd09-projects/go-param-elide/internal/gotree"
	"github.com/vd09-projects/go-param-elide/internal/log"
	"github.com/vd09-projects/go-param-elide/internal/model"
	"github.com/vd09-projects/go-param-elide/internal/modinfo"
	"github.com/vd09-projects/go-param-elide/internal/scanner"
	"github.com/vd09-projects/go-param-elide/internal/stream"
)

var ErrDirty = errors.New("pipeline: files to rewrite have uncommitted changes")

type Options struct {
	RepoRoot   string
	RepoName   string
	CommitHash string
	Module     modinfo.Info

	DryRun       bool
	Gofmt        bool
	KeepGoing    bool // per edit inside a target, and across plan entries
	WritePartial bool // write the edits of a failed target
	CrossCheck   bool
	Force        bool // write over uncommitted changes
}

// Loader loads type-checked packages and splits them into file units.
// *scanner.GoPackagesReader is the production implementation.
type Loader interface {
	Load() ([]*packages.Package, error)
	Units(pkgs []*packages.Package) []scanner.FileUnit
}

var _ Loader = (*scanner.GoPackagesReader)(nil)

type Pipeline struct {
	Reader  Loader
	Emitter stream.Emitter[model.Report]
	opts    Options
	root    string
}

func New(reader Loader, em stream.Emitter[model.Report], opts Options) *Pipeline {
	root, err := filepath.Abs(opts.RepoRoot)
	if err != nil {
		root = opts.RepoRoot
	}
	return &Pipeline{Reader: reader, Emitter: em, opts: opts, root: root}
}

// Apply runs targets in order, reloading the repository between them so each
// sees the previous one's edits. Every target produces a report.
func (p *Pipeline) Apply(ctx context.Context, targets []model.Target) error {
	var errs []error
	for i, t := range targets {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		log.Infof("[%d/%d] %s param %s", i+1, len(targets), t.Symbol, paramLabel(t))
		rep, err := p.applyOne(ctx, t)
		if err != nil {
			rep.Status = model.StatusFailed
			rep.Error = err.Error()
			log.Errorf("%s: %v", t.Symbol, err)
		}
		if eerr := p.Emitter.EmitOne(rep); eerr != nil {
			return errors.Join(append(errs, err, eerr)...)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.Symbol, err))
			if !p.opts.KeepGoing {
				break
			}
		}
	}
	return errors.Join(errs...)
}

func (p *Pipeline) applyOne(ctx context.Context, t model.Target) (model.Report, error) {
	rep := model.Report{
		Repo:      p.opts.RepoName,
		Commit:    p.opts.CommitHash,
		Module:    p.opts.Module.Path,
		GoVersion: p.opts.Module.GoVersion,
		Path:      t.Path,
		Symbol:    t.Symbol,
		Param:     t.Param,
		ParamName: t.ParamName,
		Mode:      t.Mode,
		DryRun:    p.opts.DryRun,
	}
	mode, err := gotree.ParseMode(t.Mode)
	if err != nil {
		return rep, err
	}
	rep.Mode = string(mode)

	pkgs, tree, err := p.load()
	if err != nil {
		return rep, err
	}
	target, fn, err := tree.Find(gotree.Query{Symbol: t.Symbol, File: t.Path, Param: t.Param, ParamName: t.ParamName})
	if err != nil {
		return rep, err
	}
	rep.Symbol = fn.Symbol()
	rep.Param = target.ParamPos
	if fn.Unit != nil {
		rep.Path = fn.Unit.RelPath
	}
	if prm := fn.Param(target.ParamPos); prm != nil {
		rep.ParamName = prm.Name()
	}

	plan, err := elide.Collect(tree, target)
	if err != nil {
		return rep, err
	}
	for _, c := range plan.Calls {
		log.Debugf("call site %s", c)
	}
	if p.opts.CrossCheck {
		p.crossCheck(&rep, pkgs, tree, target, plan)
	}
	if p.opts.DryRun {
		rep.DeclEdits = len(plan.Decls)
		rep.CallSites = len(plan.Calls)
		rep.ConstructSites = len(plan.Constructs)
		for _, d := range plan.Decls {
			if d.IsDefinition() && mode != gotree.ModeRemove {
				rep.HookCalls++
			}
		}
		rep.Sites = p.sites(tree, plan)
		rep.Status = model.StatusPlanned
		return rep, nil
	}

	rw := gotree.NewRewriter(tree, fn)
	res, runErr := elide.Run(tree, target, rw, rw.Hook(mode), elide.Options{KeepGoing: p.opts.KeepGoing})
	rep.DeclEdits = res.DeclEdits
	rep.CallSites = res.CallEdits
	rep.ConstructSites = res.ConstructEdits
	rep.HookCalls = res.HookCalls
	if runErr != nil && !p.opts.WritePartial {
		return rep, runErr
	}

	files := rw.Edits().Files()
	if err := p.guard(files); err != nil {
		return rep, errors.Join(runErr, err)
	}
	written, err := filehandler.WriteFiles(ctx, files, filehandler.Options{Gofmt: p.opts.Gofmt})
	if err != nil {
		return rep, errors.Join(runErr, err)
	}
	for _, name := range written {
		rep.Files = append(rep.Files, p.rel(name))
	}
	if runErr != nil {
		return rep, runErr
	}
	rep.Status = model.StatusApplied
	log.Infof("%s: %d declarations, %d call sites, %d files", rep.Symbol, rep.DeclEdits, rep.CallSites, len(rep.Files))
	return rep, nil
}

// Candidates lists elision candidates across the repository.
func (p *Pipeline) Candidates(ctx context.Context, opts candidates.Options, em stream.Emitter[model.Candidate]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, tree, err := p.load()
	if err != nil {
		return err
	}
	cs, err := candidates.List(tree, opts)
	if err != nil {
		return err
	}
	log.Infof("%d candidates", len(cs))
	return em.Emit(cs)
}

func (p *Pipeline) load() ([]*packages.Package, *gotree.Tree, error) {
	pkgs, err := p.Reader.Load()
	if err != nil {
		return nil, nil, err
	}
	if n := packages.PrintErrors(pkgs); n > 0 {
		log.Warningf("%d package errors; unresolved calls are looked up by name", n)
	}
	units := p.Reader.Units(pkgs)
	tree := gotree.New(units, gotree.Options{Root: p.root})
	return pkgs, tree, nil
}

// crossCheck compares matched call sites with the call graph. Callers on
// lines without a matched call are dynamic calls the rewrite cannot reach.
func (p *Pipeline) crossCheck(rep *model.Report, pkgs []*packages.Package, tree *gotree.Tree, target elide.Target, plan *elide.Plan) {
	g, err := callgraph.Build(pkgs, p.root)
	if err != nil {
		log.Warningf("call graph: %v", err)
		return
	}
	key := target.Decl.Key()
	sites := g.Callers(func(fn *types.Func) bool { return tree.KeyOf(fn) == key })

	matched := make(map[string]bool)
	for _, c := range plan.Calls {
		gc, ok := c.(*gotree.Call)
		if !ok {
			continue
		}
		pos := tree.Fset().PositionFor(gc.Expr.Lparen, false)
		matched[p.rel(pos.Filename)+":"+strconv.Itoa(pos.Line)] = true
	}
	rep.StaticCallers = len(sites)
	for _, s := range callgraph.Unmatched(sites, matched) {
		rep.UnmatchedCallers = append(rep.UnmatchedCallers, s.String())
		log.Warningf("caller not rewritten: %s", s)
	}
}

func (p *Pipeline) sites(tree *gotree.Tree, plan *elide.Plan) []model.Site {
	var out []model.Site
	for _, d := range plan.Decls {
		f, ok := d.(*gotree.Func)
		if !ok || f.Unit == nil {
			continue
		}
		out = append(out, model.Site{Kind: "decl", Path: f.Unit.RelPath, Line: f.Line(), Code: f.Unit.Snippet(f.Line(), f.Line())})
	}
	for _, c := range plan.Calls {
		gc, ok := c.(*gotree.Call)
		if !ok {
			continue
		}
		start := tree.Fset().PositionFor(gc.Expr.Pos(), false).Line
		end := tree.Fset().PositionFor(gc.Expr.End(), false).Line
		out = append(out, model.Site{Kind: "call", Path: gc.Unit.RelPath, Line: start, Code: gc.Unit.Snippet(start, end)})
	}
	return out
}

func (p *Pipeline) guard(files map[string][]byte) error {
	if p.opts.Force || len(files) == 0 {
		return nil
	}
	var rels []string
	for name := range files {
		rels = append(rels, p.rel(name))
	}
	if dirty := gitutil.Dirty(p.root, rels); len(dirty) > 0 {
		return fmt.Errorf("%w: %s (use -force)", ErrDirty, strings.Join(dirty, ", "))
	}
	return nil
}

func (p *Pipeline) rel(name string) string {
	r, err := filepath.Rel(p.root, name)
	if err != nil || strings.HasPrefix(r, "..") {
		return filepath.ToSlash(name)
	}
	return filepath.ToSlash(r)
}

func paramLabel(t model.Target) string {
	if t.ParamName != "" {
		return t.ParamName
	}
	return strconv.Itoa(t.Param)
}

// ReadPlan reads targets from a JSONL plan file.
func ReadPlan(path string) ([]model.Target, error) {
	r, err := stream.NewJSONLReader[model.Target](path, nil)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	targets, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	for i, t := range targets {
		if t.Symbol == "" {
			return nil, fmt.Errorf("plan %s: entry %d has no symbol", path, i+1)
		}
	}
	return targets, nil
}
