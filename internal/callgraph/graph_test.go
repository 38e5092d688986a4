package callgraph

import (
	"go/types"
	"testing"

	"golang.org/x/tools/go/packages"

	"github.com/vd09-projects/go-param-elide/internal/gotree/gotreetest"
)

const src = `package p

type I interface{ M(a int) }

type T struct{}

func (T) M(a int) {}

func direct() { T{}.M(1) }

func dynamic(i I) { i.M(2) }

func other() { direct() }
`

func isTM(fn *types.Func) bool {
	sig := fn.Type().(*types.Signature)
	if sig.Recv() == nil || fn.Name() != "M" {
		return false
	}
	named, ok := sig.Recv().Type().(*types.Named)
	return ok && named.Obj().Name() == "T"
}

func TestCallers(t *testing.T) {
	units := gotreetest.Load(t, gotreetest.Single(src))
	g, err := Build([]*packages.Package{units[0].Pkg}, "")
	if err != nil {
		t.Fatal(err)
	}
	sites := g.Callers(isTM)

	var gotDirect, gotDynamic bool
	for _, s := range sites {
		switch s.Caller {
		case "p.direct":
			gotDirect = !s.Dynamic && s.Line == 9
		case "p.dynamic":
			gotDynamic = s.Dynamic && s.Line == 11
		case "p.other":
			t.Errorf("other does not call M: %v", s)
		}
	}
	if !gotDirect || !gotDynamic {
		t.Fatalf("sites = %+v", sites)
	}

	unmatched := Unmatched(sites, map[string]bool{"p.go:9": true})
	if len(unmatched) != 1 || unmatched[0].Caller != "p.dynamic" {
		t.Errorf("unmatched = %+v", unmatched)
	}
}
