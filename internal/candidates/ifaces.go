package candidates

import (
	"go/types"

	"github.com/vd09-projects/go-param-elide/internal/gotree"
)

// interfaces gathers the non-generic named interfaces visible to the loaded
// packages, imported ones included.
func interfaces(tree *gotree.Tree) []*types.Interface {
	seen := make(map[*types.Package]bool)
	var out []*types.Interface
	var visit func(p *types.Package)
	visit = func(p *types.Package) {
		if p == nil || seen[p] {
			return
		}
		seen[p] = true
		scope := p.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || tn.IsAlias() {
				continue
			}
			if named, ok := tn.Type().(*types.Named); ok && named.TypeParams().Len() > 0 {
				continue
			}
			if it, ok := tn.Type().Underlying().(*types.Interface); ok && it.NumMethods() > 0 {
				out = append(out, it)
			}
		}
		for _, imp := range p.Imports() {
			visit(imp)
		}
	}
	for _, u := range tree.Units() {
		if u.Pkg != nil {
			visit(u.Pkg.Types)
		}
	}
	return out
}

// satisfies reports whether method m is required by an interface that its
// receiver type, or a pointer to it, implements.
func satisfies(m *types.Func, ifaces []*types.Interface) bool {
	recv := m.Type().(*types.Signature).Recv().Type()
	if p, ok := recv.(*types.Pointer); ok {
		recv = p.Elem()
	}
	named, _ := recv.(*types.Named)
	generic := named != nil && named.TypeParams().Len() > 0
	for _, it := range ifaces {
		if !requires(it, m.Name()) {
			continue
		}
		// Generic receivers are not checked; any interface naming the
		// method pins it.
		if generic || types.Implements(recv, it) || types.Implements(types.NewPointer(recv), it) {
			return true
		}
	}
	return false
}

func requires(it *types.Interface, name string) bool {
	for i := 0; i < it.NumMethods(); i++ {
		if it.Method(i).Name() == name {
			return true
		}
	}
	return false
}
