package gotree

import (
	"fmt"
	"go/ast"
	"go/types"

	"github.com/vd09-projects/go-param-elide/internal/elide"
	"github.com/vd09-projects/go-param-elide/internal/scanner"
)

// DeclKey identifies a declaration by the source position of its name.
// Package variants and instantiations of one declaration share a key.
type DeclKey struct {
	File   string
	Line   int
	Column int
}

// templateKey is the identity of a generic origin.
type templateKey struct{ DeclKey }

type Param struct {
	Index int
	Field *ast.Field // nil for declarations known only from type information
	Ident *ast.Ident // nil for unnamed parameters
	Var   *types.Var
}

func (p *Param) Name() string {
	if p.Var != nil {
		return p.Var.Name()
	}
	if p.Ident != nil {
		return p.Ident.Name
	}
	return ""
}

// Func is a function or method. Decl and Unit are nil when the function was
// reached through a call or lookup rather than through its declaration.
type Func struct {
	tree   *Tree
	Obj    *types.Func
	Decl   *ast.FuncDecl
	Unit   *scanner.FileUnit
	params []*Param
}

var _ elide.FuncDecl = (*Func)(nil)

func (f *Func) Key() elide.Key { return f.tree.keyOf(f.Obj.Origin()) }

func (f *Func) TemplateKey() elide.Key {
	origin := f.Obj.Origin()
	if !isGeneric(origin) {
		return nil
	}
	return templateKey{f.tree.keyOf(origin)}
}

func (f *Func) NumParams() int { return f.signature().Params().Len() }

func (f *Func) IsDefinition() bool { return f.Decl != nil && f.Decl.Body != nil }

func (f *Func) Param(i int) elide.Param {
	ps := f.Params()
	if i < 0 || i >= len(ps) {
		return nil
	}
	return ps[i]
}

// Params flattens the parameter list: "a, b int" yields two entries.
func (f *Func) Params() []*Param {
	if f.params != nil {
		return f.params
	}
	sig := f.signature()
	if f.Decl == nil {
		for i := 0; i < sig.Params().Len(); i++ {
			f.params = append(f.params, &Param{Index: i, Var: sig.Params().At(i)})
		}
		return f.params
	}

	i := 0
	for _, field := range f.Decl.Type.Params.List {
		if len(field.Names) == 0 {
			p := &Param{Index: i, Field: field}
			if i < sig.Params().Len() {
				p.Var = sig.Params().At(i)
			}
			f.params = append(f.params, p)
			i++
			continue
		}
		for _, name := range field.Names {
			p := &Param{Index: i, Field: field, Ident: name}
			if v, ok := f.Unit.Pkg.TypesInfo.Defs[name].(*types.Var); ok {
				p.Var = v
			}
			f.params = append(f.params, p)
			i++
		}
	}
	return f.params
}

// Variadic reports whether the last parameter is "...T".
func (f *Func) Variadic() bool { return f.signature().Variadic() }

func (f *Func) String() string {
	name := f.Symbol()
	pos := f.Obj.Pos()
	if f.Decl != nil {
		pos = f.Decl.Name.Pos()
	}
	if p := f.tree.fset.PositionFor(pos, false); p.IsValid() {
		return fmt.Sprintf("%s (%s:%d)", name, f.tree.rel(p.Filename), p.Line)
	}
	return name
}

// Symbol renders f in the form ParseSymbol accepts, package-qualified.
func (f *Func) Symbol() string {
	name := displayName(f.Obj)
	if pkg := f.Obj.Pkg(); pkg != nil {
		name = pkg.Name() + "." + name
	}
	return name
}

// Line is the declaration's line, 0 when it has no source.
func (f *Func) Line() int {
	if f.Decl == nil {
		return 0
	}
	return f.tree.line(f.Decl.Name.Pos())
}

func (f *Func) signature() *types.Signature {
	return f.Obj.Type().(*types.Signature)
}

func (t *Tree) keyOf(obj types.Object) DeclKey {
	p := t.fset.PositionFor(obj.Pos(), false)
	return DeclKey{File: p.Filename, Line: p.Line, Column: p.Column}
}

func isGeneric(fn *types.Func) bool {
	sig, ok := fn.Type().(*types.Signature)
	if !ok {
		return false
	}
	return sig.TypeParams().Len() > 0 || sig.RecvTypeParams().Len() > 0
}

func (t *Tree) nodePos(n ast.Node) string {
	p := t.fset.PositionFor(n.Pos(), false)
	return fmt.Sprintf("%s:%d:%d", t.rel(p.Filename), p.Line, p.Column)
}

// KeyOf is the key of fn's declaration, shared by its instantiations and
// package variants.
func (t *Tree) KeyOf(fn *types.Func) elide.Key { return t.keyOf(fn.Origin()) }
