// Package gotree presents type-checked Go packages to the elide core and
// rewrites their source text.
package gotree

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/ast/inspector"

	"github.com/vd09-projects/go-param-elide/internal/elide"
	"github.com/vd09-projects/go-param-elide/internal/scanner"
)

var (
	ErrNotFound  = errors.New("gotree: function not found")
	ErrAmbiguous = errors.New("gotree: symbol is ambiguous")
	ErrNoParam   = errors.New("gotree: no such parameter")
)

type Options struct {
	// Root is used to shorten file names in diagnostics.
	Root string
}

type Tree struct {
	fset  *token.FileSet
	units []scanner.FileUnit
	opts  Options
}

var _ elide.Tree = (*Tree)(nil)

// New builds a tree over units, which must share one FileSet.
func New(units []scanner.FileUnit, opts Options) *Tree {
	t := &Tree{units: units, opts: opts}
	if len(units) > 0 {
		t.fset = units[0].Fset
	} else {
		t.fset = token.NewFileSet()
	}
	return t
}

func (t *Tree) Fset() *token.FileSet      { return t.fset }
func (t *Tree) Units() []scanner.FileUnit { return t.units }

var walkFilter = []ast.Node{
	(*ast.FuncDecl)(nil),
	(*ast.CallExpr)(nil),
	(*ast.Ident)(nil),
}

// Walk visits files in load order and every file's nodes in pre-order.
func (t *Tree) Walk(v elide.Visitor) error {
	for i := range t.units {
		u := &t.units[i]
		if u.Pkg == nil || u.Pkg.TypesInfo == nil {
			continue
		}
		var err error
		ins := inspector.New([]*ast.File{u.File})
		ins.Preorder(walkFilter, func(n ast.Node) {
			if err != nil {
				return
			}
			switch n := n.(type) {
			case *ast.FuncDecl:
				if f := t.declOf(u, n); f != nil {
					err = v.VisitFuncDecl(f)
				}
			case *ast.CallExpr:
				err = v.VisitCall(t.newCall(u, n))
			case *ast.Ident:
				if obj := u.Pkg.TypesInfo.Uses[n]; obj != nil {
					err = v.VisitRef(&Ref{tree: t, Ident: n, Obj: obj})
				}
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) Lookup(name string, scope elide.Scope) elide.Decl {
	fn := t.lookup(name, scope)
	if fn == nil {
		return nil
	}
	return t.funcOf(fn)
}

func (t *Tree) declOf(u *scanner.FileUnit, fd *ast.FuncDecl) *Func {
	fn, _ := u.Pkg.TypesInfo.Defs[fd.Name].(*types.Func)
	if fn == nil {
		return nil
	}
	return &Func{tree: t, Obj: fn, Decl: fd, Unit: u}
}

func (t *Tree) funcOf(fn *types.Func) *Func {
	return &Func{tree: t, Obj: fn}
}

func (t *Tree) rel(filename string) string {
	if t.opts.Root == "" {
		return filename
	}
	r, err := filepath.Rel(t.opts.Root, filename)
	if err != nil || strings.HasPrefix(r, "..") {
		return filename
	}
	return filepath.ToSlash(r)
}

// Ref is an identifier use.
type Ref struct {
	tree  *Tree
	Ident *ast.Ident
	Obj   types.Object
}

func (r *Ref) String() string { return r.Ident.Name + " at " + r.tree.nodePos(r.Ident) }

// Query selects the target function and parameter.
type Query struct {
	Symbol    string
	File      string // optional path suffix of the declaring file
	Param     int    // used when ParamName is empty
	ParamName string
}

// Find resolves q to a target. Several declarations with one key (package
// variants) are fine; a definition is preferred over a bodiless one.
func (t *Tree) Find(q Query) (elide.Target, *Func, error) {
	sym := ParseSymbol(q.Symbol)
	file := filepath.ToSlash(q.File)

	var found *Func
	for i := range t.units {
		u := &t.units[i]
		if u.Pkg == nil || u.Pkg.TypesInfo == nil {
			continue
		}
		if file != "" && !strings.HasSuffix(u.RelPath, file) {
			continue
		}
		for _, d := range u.File.Decls {
			fd, ok := d.(*ast.FuncDecl)
			if !ok {
				continue
			}
			f := t.declOf(u, fd)
			if f == nil || !sym.matches(f.Obj) {
				continue
			}
			switch {
			case found == nil:
				found = f
			case found.Key() != f.Key():
				return elide.Target{}, nil, fmt.Errorf("%w: %q matches %s and %s", ErrAmbiguous, q.Symbol, found, f)
			case !found.IsDefinition() && f.IsDefinition():
				found = f
			}
		}
	}
	if found == nil {
		return elide.Target{}, nil, fmt.Errorf("%w: %q", ErrNotFound, q.Symbol)
	}

	pos, err := paramIndex(found, q)
	if err != nil {
		return elide.Target{}, nil, err
	}
	return elide.Target{Decl: found, ParamPos: pos, Parent: parentScope(found.Obj)}, found, nil
}

func paramIndex(f *Func, q Query) (int, error) {
	if q.ParamName == "" {
		if q.Param < 0 || q.Param >= f.NumParams() {
			return 0, fmt.Errorf("%w: index %d, %s has %d params", ErrNoParam, q.Param, f, f.NumParams())
		}
		return q.Param, nil
	}
	for _, p := range f.Params() {
		if p.Name() == q.ParamName {
			return p.Index, nil
		}
	}
	return 0, fmt.Errorf("%w: %q in %s", ErrNoParam, q.ParamName, f)
}

func (t *Tree) line(pos token.Pos) int { return t.fset.PositionFor(pos, false).Line }
