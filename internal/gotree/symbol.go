package gotree

import (
	"go/types"
	"strings"
)

// Symbol is a parsed target name: "F", "pkg.F", "(T).M", "(*T).M" or
// "pkg.(*T).M".
type Symbol struct {
	Pkg  string // package name or import path, optional
	Recv string // receiver base type name, "" for functions
	Name string
}

func ParseSymbol(s string) Symbol {
	s = strings.TrimSpace(s)
	var sym Symbol
	if i := strings.Index(s, "("); i > 0 {
		sym.Pkg = strings.TrimSuffix(s[:i], ".")
		s = s[i:]
	}
	if strings.HasPrefix(s, "(") {
		if i := strings.Index(s, ")."); i > 1 {
			inside := strings.TrimSpace(s[1:i])
			rest := strings.TrimSpace(s[i+2:])
			if rest != "" {
				recv := strings.TrimPrefix(inside, "*")
				if j := strings.IndexByte(recv, '['); j >= 0 {
					recv = recv[:j] // (*List[T]).Push
				}
				sym.Recv = recv
				sym.Name = rest
				return sym
			}
		}
	}
	if dot := strings.LastIndexByte(s, '.'); dot >= 0 && sym.Pkg == "" {
		sym.Pkg = strings.TrimSpace(s[:dot])
		sym.Name = strings.TrimSpace(s[dot+1:])
		return sym
	}
	sym.Name = s
	return sym
}

func (s Symbol) matches(fn *types.Func) bool {
	if fn.Name() != s.Name {
		return false
	}
	if recvName(fn) != s.Recv {
		return false
	}
	if s.Pkg == "" {
		return true
	}
	pkg := fn.Pkg()
	if pkg == nil {
		return false
	}
	return pkg.Name() == s.Pkg || pkg.Path() == s.Pkg || strings.HasSuffix(pkg.Path(), "/"+s.Pkg)
}

// recvName is the receiver's base type name, "" for plain functions.
func recvName(fn *types.Func) string {
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return ""
	}
	switch t := deref(sig.Recv().Type()).(type) {
	case *types.Named:
		return t.Obj().Name()
	case *types.Alias:
		return t.Obj().Name()
	default:
		return types.TypeString(t, func(p *types.Package) string { return p.Name() })
	}
}

// displayName renders fn the way callers write it in -symbol.
func displayName(fn *types.Func) string {
	if r := recvName(fn); r != "" {
		if sig := fn.Type().(*types.Signature); isPointer(sig.Recv().Type()) {
			return "(*" + r + ")." + fn.Name()
		}
		return "(" + r + ")." + fn.Name()
	}
	return fn.Name()
}

func deref(t types.Type) types.Type {
	if p, ok := t.(*types.Pointer); ok {
		return p.Elem()
	}
	return t
}

func isPointer(t types.Type) bool {
	_, ok := t.(*types.Pointer)
	return ok
}
