package gotree

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/vd09-projects/go-param-elide/internal/elide"
	"github.com/vd09-projects/go-param-elide/internal/scanner"
)

// Call is a call expression together with what type checking made of its
// callee.
type Call struct {
	tree   *Tree
	Expr   *ast.CallExpr
	Unit   *scanner.FileUnit
	callee *types.Func

	name       string
	qualifier  elide.Scope
	unresolved bool

	// ArgOffset is 1 for method expressions, T.M(recv, args...).
	ArgOffset int
}

var _ elide.Call = (*Call)(nil)

func (c *Call) Callee() elide.Decl {
	if c.callee == nil {
		return nil
	}
	return c.tree.funcOf(c.callee)
}

func (c *Call) Unresolved() (string, elide.Scope, bool) {
	return c.name, c.qualifier, c.unresolved
}

func (c *Call) String() string {
	name := c.name
	if c.callee != nil {
		name = displayName(c.callee)
	}
	if name == "" {
		name = "call"
	}
	return name + "(...) at " + c.tree.nodePos(c.Expr)
}

func (t *Tree) newCall(u *scanner.FileUnit, expr *ast.CallExpr) *Call {
	c := &Call{tree: t, Expr: expr, Unit: u}
	info := u.Pkg.TypesInfo

	fun := astutil.Unparen(expr.Fun)
	switch f := fun.(type) {
	case *ast.IndexExpr:
		fun = astutil.Unparen(f.X)
	case *ast.IndexListExpr:
		fun = astutil.Unparen(f.X)
	}

	switch f := fun.(type) {
	case *ast.Ident:
		obj, known := info.Uses[f]
		if !known {
			c.name, c.unresolved = f.Name, true
			return c
		}
		c.callee, _ = obj.(*types.Func)

	case *ast.SelectorExpr:
		if sel, ok := info.Selections[f]; ok {
			c.callee, _ = sel.Obj().(*types.Func)
			if sel.Kind() == types.MethodExpr {
				c.ArgOffset = 1
			}
			return c
		}
		if obj, ok := info.Uses[f.Sel]; ok {
			// qualified identifier, pkg.F
			c.callee, _ = obj.(*types.Func)
			return c
		}
		c.name, c.unresolved = f.Sel.Name, true
		if id, ok := f.X.(*ast.Ident); ok {
			if pn, ok := info.Uses[id].(*types.PkgName); ok {
				c.qualifier = pn.Imported().Scope()
			}
		}
	}
	return c
}

// methodScope looks names up in the method set of a receiver type.
type methodScope struct {
	recv types.Type
	pkg  *types.Package
}

func (t *Tree) lookup(name string, scope elide.Scope) *types.Func {
	switch s := scope.(type) {
	case *types.Scope:
		if s == nil {
			return nil
		}
		fn, _ := s.Lookup(name).(*types.Func)
		return fn
	case methodScope:
		obj, _, _ := types.LookupFieldOrMethod(s.recv, true, s.pkg, name)
		fn, _ := obj.(*types.Func)
		return fn
	}
	return nil
}

// parentScope is where an unqualified unresolved call to fn would be found.
func parentScope(fn *types.Func) elide.Scope {
	sig := fn.Type().(*types.Signature)
	if recv := sig.Recv(); recv != nil {
		return methodScope{recv: deref(recv.Type()), pkg: fn.Pkg()}
	}
	if fn.Pkg() == nil {
		return nil
	}
	return fn.Pkg().Scope()
}
