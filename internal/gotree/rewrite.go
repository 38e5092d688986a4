package gotree

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"github.com/vd09-projects/go-param-elide/internal/edit"
	"github.com/vd09-projects/go-param-elide/internal/elide"
)

var (
	ErrArgCount = errors.New("gotree: argument count does not match the signature")
	ErrNotGo    = errors.New("gotree: node does not come from a Go tree")
)

// Rewriter removes the target's parameter and arguments from Go source.
type Rewriter struct {
	tree   *Tree
	target *Func
	set    *edit.Set
}

var _ elide.Rewriter = (*Rewriter)(nil)

func NewRewriter(t *Tree, target *Func) *Rewriter {
	set := edit.NewSet(t.fset)
	for _, u := range t.units {
		set.Add(u.Filename, u.Src)
	}
	return &Rewriter{tree: t, target: target, set: set}
}

func (r *Rewriter) Edits() *edit.Set { return r.set }

func (r *Rewriter) RemoveParam(d elide.FuncDecl, pos, numParams int) error {
	f, ok := d.(*Func)
	if !ok || f.Decl == nil {
		return fmt.Errorf("%w: %v", ErrNotGo, d)
	}
	fields := f.Decl.Type.Params.List
	idx := 0
	for fi, field := range fields {
		names := len(field.Names)
		if names == 0 {
			names = 1
		}
		if pos >= idx+names {
			idx += names
			continue
		}
		if len(field.Names) > 1 {
			return r.removeName(field.Names, pos-idx)
		}
		return r.removeItem(fieldNodes(fields), fi, f.Decl.Type.Params.Closing, token.NoPos)
	}
	return fmt.Errorf("%w: %s declares %d params, want %d", ErrArgCount, f, idx, numParams)
}

func (r *Rewriter) RemoveArg(c elide.Call, pos int) error {
	call, ok := c.(*Call)
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotGo, c)
	}
	args := call.Expr.Args
	n := r.target.NumParams() + call.ArgOffset
	i := pos + call.ArgOffset

	if spreads(call) {
		return fmt.Errorf("%w: %s passes a multi-value call", ErrArgCount, call)
	}

	if r.target.Variadic() && pos == r.target.NumParams()-1 {
		// The variadic parameter takes every trailing argument.
		if i >= len(args) {
			return nil
		}
		return r.removeTail(call, i)
	}
	want := len(args) == n
	if r.target.Variadic() {
		want = len(args) >= n-1
	}
	if !want {
		return fmt.Errorf("%w: %s has %d args, want %d", ErrArgCount, call, len(args), n)
	}
	return r.removeItem(exprNodes(args), i, call.Expr.Rparen, call.Expr.Ellipsis)
}

func (r *Rewriter) RemoveConstructArg(c elide.Construct, pos int) error {
	return fmt.Errorf("%w: Go has no constructor initializers (%v)", ErrNotGo, c)
}

// removeName drops one name from a grouped field, "a, b int".
func (r *Rewriter) removeName(names []*ast.Ident, k int) error {
	if k < len(names)-1 {
		return r.set.Delete(names[k].Pos(), names[k+1].Pos())
	}
	return r.set.Delete(names[k-1].End(), names[k].End())
}

// removeItem drops items[i] and one adjacent separator. closing is the
// list's closing paren; ellipsis is the position of a trailing "...".
func (r *Rewriter) removeItem(items []ast.Node, i int, closing, ellipsis token.Pos) error {
	last := len(items) - 1
	end := items[i].End()
	if i == last && ellipsis.IsValid() {
		end = ellipsis + token.Pos(len(token.ELLIPSIS.String()))
	}
	switch {
	case i < last:
		return r.set.Delete(items[i].Pos(), items[i+1].Pos())
	case i > 0:
		return r.set.Delete(items[i-1].End(), end)
	default:
		// Up to the paren, so a trailing comma goes too.
		return r.set.Delete(items[i].Pos(), closing)
	}
}

// removeTail drops args[i:] including a "..." spread.
func (r *Rewriter) removeTail(call *Call, i int) error {
	args := call.Expr.Args
	if i == 0 {
		return r.set.Delete(args[0].Pos(), call.Expr.Rparen)
	}
	end := args[len(args)-1].End()
	if call.Expr.Ellipsis.IsValid() {
		end = call.Expr.Ellipsis + token.Pos(len(token.ELLIPSIS.String()))
	}
	return r.set.Delete(args[i-1].End(), end)
}

// spreads reports f(g()) where g returns several values.
func spreads(call *Call) bool {
	if len(call.Expr.Args) != 1 {
		return false
	}
	tv, ok := call.Unit.Pkg.TypesInfo.Types[call.Expr.Args[0]]
	if !ok {
		return false
	}
	tuple, ok := tv.Type.(*types.Tuple)
	return ok && tuple.Len() > 1
}

func fieldNodes(fields []*ast.Field) []ast.Node {
	out := make([]ast.Node, len(fields))
	for i, f := range fields {
		out[i] = f
	}
	return out
}

func exprNodes(exprs []ast.Expr) []ast.Node {
	out := make([]ast.Node, len(exprs))
	for i, e := range exprs {
		out[i] = e
	}
	return out
}
