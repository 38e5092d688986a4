// Package candidates ranks parameters that look safe to elide.
package candidates

import (
	"go/ast"
	"go/types"
	"sort"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/vd09-projects/go-param-elide/internal/elide"
	"github.com/vd09-projects/go-param-elide/internal/gotree"
	"github.com/vd09-projects/go-param-elide/internal/model"
)

type Options struct {
	UnusedOnly bool
	// Generated includes files carrying a "Code generated" header.
	Generated bool
}

// counter tallies typed fan-in: calls whose callee resolved to a declaration.
// A function referenced other than as a callee escapes; its signature is
// pinned by whatever it is assigned to.
type counter struct {
	decls   []*gotree.Func
	fanIn   map[elide.Key]int
	refs    map[elide.Key]int
	callees map[*ast.Ident]bool
	tree    *gotree.Tree
}

func (c *counter) VisitFuncDecl(d elide.FuncDecl) error {
	if f, ok := d.(*gotree.Func); ok && f.IsDefinition() {
		c.decls = append(c.decls, f)
	}
	return nil
}

func (c *counter) VisitCtorDecl(d elide.CtorDecl) error { return c.VisitFuncDecl(d) }

func (c *counter) VisitCall(call elide.Call) error {
	callee := call.Callee()
	if callee == nil {
		return nil
	}
	c.fanIn[callee.Key()]++
	if gc, ok := call.(*gotree.Call); ok {
		if id := calleeIdent(gc.Expr.Fun); id != nil {
			c.callees[id] = true
		}
	}
	return nil
}

func (c *counter) VisitRef(r elide.Ref) error {
	ref, ok := r.(*gotree.Ref)
	if !ok || c.callees[ref.Ident] {
		return nil
	}
	if fn, ok := ref.Obj.(*types.Func); ok {
		c.refs[c.tree.KeyOf(fn)]++
	}
	return nil
}

// List enumerates the parameters of every function with a body.
func List(tree *gotree.Tree, opts Options) ([]model.Candidate, error) {
	c := &counter{
		fanIn:   make(map[elide.Key]int),
		refs:    make(map[elide.Key]int),
		callees: make(map[*ast.Ident]bool),
		tree:    tree,
	}
	if err := tree.Walk(c); err != nil {
		return nil, err
	}
	ifaces := interfaces(tree)

	var out []model.Candidate
	for _, f := range c.decls {
		if f.Unit.Generated && !opts.Generated {
			continue
		}
		if skip(f, ifaces) || c.refs[f.Key()] > 0 {
			continue
		}
		for _, p := range f.Params() {
			unused := gotree.Uses(f, p) == 0
			if opts.UnusedOnly && !unused {
				continue
			}
			out = append(out, model.Candidate{
				Path:      f.Unit.RelPath,
				Symbol:    f.Symbol(),
				Param:     p.Index,
				ParamName: p.Name(),
				Unused:    unused,
				FanIn:     c.fanIn[f.Key()],
				Line:      f.Line(),
			})
		}
	}
	Sort(out)
	return out, nil
}

// Sort orders unused parameters first, then by fan-in, then by position.
func Sort(cs []model.Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Unused != b.Unused {
			return a.Unused
		}
		if a.FanIn != b.FanIn {
			return a.FanIn > b.FanIn
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Param < b.Param
	})
}

// skip excludes functions whose signature is fixed elsewhere: by the
// language, or by an interface the receiver satisfies.
func skip(f *gotree.Func, ifaces []*types.Interface) bool {
	if f.NumParams() == 0 {
		return true
	}
	if f.Decl.Recv == nil {
		return f.Obj.Name() == "main" || f.Obj.Name() == "init"
	}
	return satisfies(f.Obj, ifaces)
}

func calleeIdent(fun ast.Expr) *ast.Ident {
	fun = astutil.Unparen(fun)
	switch f := fun.(type) {
	case *ast.IndexExpr:
		fun = astutil.Unparen(f.X)
	case *ast.IndexListExpr:
		fun = astutil.Unparen(f.X)
	}
	switch f := fun.(type) {
	case *ast.Ident:
		return f
	case *ast.SelectorExpr:
		return f.Sel
	}
	return nil
}
