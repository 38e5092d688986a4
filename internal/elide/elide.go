// Package elide removes one parameter from a function declaration and the
// matching argument from every call that targets it.
//
// The package only knows the program through the Tree, Rewriter and
// BodyHook interfaces. A run is a single pre-order walk that edits matching
// declarations in place and queues matching calls, followed by an apply
// phase that rewrites the queued calls innermost first.
package elide

import (
	"errors"
)

// Target is the declaration and parameter selected for removal.
type Target struct {
	Decl     FuncDecl
	ParamPos int
	// Parent is the lexical scope an unqualified unresolved callee is looked
	// up in.
	Parent Scope
}

func (t Target) validate() error {
	if t.Decl == nil {
		return internalf("no target declaration")
	}
	if t.ParamPos < 0 || t.ParamPos >= t.Decl.NumParams() {
		return internalf("param %d out of range for %s (%d params)", t.ParamPos, t.Decl, t.Decl.NumParams())
	}
	return nil
}

type Options struct {
	// KeepGoing attempts every queued edit and reports all failures instead
	// of stopping on the first one. Applied edits are never rolled back.
	KeepGoing bool
}

type Result struct {
	DeclEdits      int
	CallEdits      int
	ConstructEdits int
	HookCalls      int
	Failures       []*EditError
}

// Plan is what a walk discovered, in discovery order.
type Plan struct {
	Decls      []FuncDecl
	Calls      []Call
	Constructs []Construct
}

// Collect walks the tree without editing anything.
func Collect(tree Tree, t Target) (*Plan, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	w := newWalker(tree, t, nil, nil, Options{})
	if err := tree.Walk(w); err != nil {
		return nil, err
	}
	return w.plan(), nil
}

// Run performs the transformation. On failure the edits made so far stay in
// place and the returned Result describes them.
func Run(tree Tree, t Target, rw Rewriter, hook BodyHook, opts Options) (*Result, error) {
	if err := t.validate(); err != nil {
		return &Result{}, err
	}
	w := newWalker(tree, t, rw, hook, opts)
	if err := tree.Walk(w); err != nil {
		return w.res, err
	}
	if err := w.apply(); err != nil {
		return w.res, err
	}
	if len(w.res.Failures) > 0 {
		errs := make([]error, len(w.res.Failures))
		for i, f := range w.res.Failures {
			errs[i] = f
		}
		return w.res, errors.Join(errs...)
	}
	return w.res, nil
}
