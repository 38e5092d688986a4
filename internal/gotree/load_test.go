package gotree

import (
	"testing"

	"github.com/vd09-projects/go-param-elide/internal/elide"
	"github.com/vd09-projects/go-param-elide/internal/scanner"
)

type runResult struct {
	files map[string]string
	res   *elide.Result
	err   error
}

func runElide(t *testing.T, units []scanner.FileUnit, q Query, mode Mode, opts Options) runResult {
	t.Helper()
	tree := New(units, opts)
	target, fn, err := tree.Find(q)
	if err != nil {
		t.Fatalf("find %+v: %v", q, err)
	}
	rw := NewRewriter(tree, fn)
	res, err := elide.Run(tree, target, rw, rw.Hook(mode), elide.Options{})
	out := make(map[string]string)
	for _, u := range units {
		out[u.Filename] = rw.Edits().Buffer(u.Filename).String()
	}
	return runResult{files: out, res: res, err: err}
}
