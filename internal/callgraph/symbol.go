package callgraph

import (
	"go/types"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ssa"
)

func displayName(fn *ssa.Function) string {
	if fn == nil {
		return ""
	}
	if orig := fn.Origin(); orig != nil {
		fn = orig
	}
	name := fn.Name()
	if sig := fn.Signature; sig != nil && sig.Recv() != nil {
		name = "(" + recvString(sig.Recv().Type()) + ")." + name
	}
	if fn.Pkg != nil {
		name = fn.Pkg.Pkg.Name() + "." + name
	}
	return name
}

func recvString(t types.Type) string {
	switch tt := t.(type) {
	case *types.Pointer:
		return "*" + recvString(tt.Elem())
	case *types.Named:
		if obj := tt.Obj(); obj != nil {
			return obj.Name()
		}
		return tt.String()
	default:
		return types.TypeString(t, func(p *types.Package) string { return p.Name() })
	}
}

func rel(root, p string) string {
	if root == "" {
		return filepath.ToSlash(p)
	}
	r, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(r, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}

func itoa(n int) string { return strconv.Itoa(n) }
