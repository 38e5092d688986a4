// Package callgraph cross-checks textual call-site matching against the
// union of the static and CHA call graphs.
package callgraph

import (
	"errors"
	"go/token"
	"go/types"
	"sort"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	staticcg "golang.org/x/tools/go/callgraph/static"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

var ErrNoProgram = errors.New("callgraph: no well-typed packages to build")

// Site is one incoming call edge of the target.
type Site struct {
	Caller string `json:"caller"`
	Path   string `json:"path"`
	Line   int    `json:"line"`
	// Dynamic is set for interface and function-value calls, which have no
	// static callee in the source.
	Dynamic bool `json:"dynamic,omitempty"`
}

func (s Site) String() string {
	return s.Caller + " (" + s.Path + ":" + itoa(s.Line) + ")"
}

// Graph is the union of the static and CHA call graphs of a program.
type Graph struct {
	fset   *token.FileSet
	root   string
	static *callgraph.Graph
	cha    *callgraph.Graph
}

// Build constructs SSA for pkgs and both call graphs. root shortens paths.
func Build(pkgs []*packages.Package, root string) (*Graph, error) {
	prog, _ := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	if prog == nil || prog.Fset == nil {
		return nil, ErrNoProgram
	}
	prog.Build()

	chaCG := cha.CallGraph(prog)
	chaCG.DeleteSyntheticNodes()
	return &Graph{
		fset:   prog.Fset,
		root:   root,
		static: staticcg.CallGraph(prog),
		cha:    chaCG,
	}, nil
}

// Callers returns the deduplicated incoming call sites of every function
// whose origin satisfies match. Synthetic callers (wrappers) are skipped.
func (g *Graph) Callers(match func(*types.Func) bool) []Site {
	seen := map[Site]bool{}
	var out []Site

	add := func(cg *callgraph.Graph) {
		for fn, node := range cg.Nodes {
			if fn == nil || node == nil || !matchesFunc(fn, match) {
				continue
			}
			for _, e := range node.In {
				if e == nil || e.Caller == nil || e.Caller.Func == nil || e.Caller.Func.Synthetic != "" {
					continue
				}
				p := g.fset.PositionFor(e.Pos(), false)
				if !p.IsValid() {
					continue
				}
				s := Site{
					Caller:  displayName(e.Caller.Func),
					Path:    rel(g.root, p.Filename),
					Line:    p.Line,
					Dynamic: e.Site != nil && e.Site.Common().StaticCallee() == nil,
				}
				if seen[s] {
					continue
				}
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	add(g.static)
	add(g.cha)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Caller < out[j].Caller
	})
	return out
}

// Unmatched returns the sites on lines where no call was rewritten. Lines
// are keyed "path:line", the same form Site.Path and Site.Line give.
func Unmatched(sites []Site, rewritten map[string]bool) []Site {
	var out []Site
	for _, s := range sites {
		if !rewritten[s.Path+":"+itoa(s.Line)] {
			out = append(out, s)
		}
	}
	return out
}

func matchesFunc(fn *ssa.Function, match func(*types.Func) bool) bool {
	if orig := fn.Origin(); orig != nil {
		fn = orig
	}
	obj, ok := fn.Object().(*types.Func)
	return ok && match(obj)
}
