package gotree

import (
	"errors"
	"fmt"
	"go/ast"
	"go/types"

	"github.com/vd09-projects/go-param-elide/internal/elide"
)

var ErrParamUsed = errors.New("gotree: parameter is used in the body")

// Mode selects what happens to uses of the removed parameter in a body.
type Mode string

const (
	// ModeRemove leaves bodies alone; the build decides.
	ModeRemove Mode = "remove"
	// ModeRemoveUnused refuses to remove a parameter the body reads.
	ModeRemoveUnused Mode = "remove-unused"
	// ModeToLocal turns a used parameter into a zero-valued local.
	ModeToLocal Mode = "to-local"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeRemove, ModeRemoveUnused, ModeToLocal:
		return m, nil
	case "":
		return ModeRemove, nil
	}
	return "", fmt.Errorf("unknown mode %q (want remove, remove-unused or to-local)", s)
}

// Hook returns the body hook for mode, nil for ModeRemove.
func (r *Rewriter) Hook(mode Mode) elide.BodyHook {
	switch mode {
	case ModeRemoveUnused:
		return elide.BodyHookFunc(r.requireUnused)
	case ModeToLocal:
		return elide.BodyHookFunc(r.toLocal)
	}
	return nil
}

func (r *Rewriter) requireUnused(d elide.FuncDecl, p elide.Param) error {
	f, param, err := goParam(d, p)
	if err != nil {
		return err
	}
	if n := Uses(f, param); n > 0 {
		return fmt.Errorf("%w: %s is read %d times in %s", ErrParamUsed, param.Name(), n, f)
	}
	return nil
}

// toLocal declares the parameter as the first statement of the body.
func (r *Rewriter) toLocal(d elide.FuncDecl, p elide.Param) error {
	f, param, err := goParam(d, p)
	if err != nil {
		return err
	}
	if Uses(f, param) == 0 {
		return nil
	}
	typ, err := r.typeText(param.Field.Type)
	if err != nil {
		return err
	}
	decl := fmt.Sprintf("\n\tvar %s %s", param.Name(), typ)
	body := f.Decl.Body
	if len(body.List) > 0 && r.tree.line(body.Lbrace) == r.tree.line(body.List[0].Pos()) {
		decl += "\n"
	}
	return r.set.Insert(body.Lbrace+1, decl)
}

func (r *Rewriter) typeText(t ast.Expr) (string, error) {
	if e, ok := t.(*ast.Ellipsis); ok {
		elt, err := r.set.Original(e.Elt.Pos(), e.Elt.End())
		return "[]" + elt, err
	}
	return r.set.Original(t.Pos(), t.End())
}

// Uses counts reads of param inside f's body. Unnamed and blank parameters
// have none. Arguments that a recursive call passes in the removed position
// go away with the parameter and are not counted.
func Uses(f *Func, param *Param) int {
	if param.Var == nil || param.Name() == "" || param.Name() == "_" || f.Decl == nil || f.Decl.Body == nil {
		return 0
	}
	info := f.Unit.Pkg.TypesInfo
	key := f.Key()
	dropped := make(map[ast.Expr]bool)
	n := 0
	ast.Inspect(f.Decl.Body, func(node ast.Node) bool {
		if e, ok := node.(ast.Expr); ok && dropped[e] {
			return false
		}
		switch node := node.(type) {
		case *ast.CallExpr:
			call := f.tree.newCall(f.Unit, node)
			if call.callee != nil && f.tree.KeyOf(call.callee) == key {
				for _, arg := range droppedArgs(f, call, param.Index) {
					dropped[arg] = true
				}
			}
		case *ast.Ident:
			if v, ok := info.Uses[node].(*types.Var); ok && v == param.Var {
				n++
			}
		}
		return true
	})
	return n
}

// droppedArgs are the arguments of a call to f that removing parameter pos
// deletes.
func droppedArgs(f *Func, call *Call, pos int) []ast.Expr {
	args := call.Expr.Args
	i := pos + call.ArgOffset
	if spreads(call) || i >= len(args) {
		return nil
	}
	if f.Variadic() && pos == f.NumParams()-1 {
		return args[i:]
	}
	return args[i : i+1]
}

func goParam(d elide.FuncDecl, p elide.Param) (*Func, *Param, error) {
	f, ok := d.(*Func)
	if !ok || f.Decl == nil || f.Unit == nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotGo, d)
	}
	param, ok := p.(*Param)
	if !ok || param.Field == nil {
		return nil, nil, fmt.Errorf("%w: parameter %v", ErrNotGo, p)
	}
	return f, param, nil
}
