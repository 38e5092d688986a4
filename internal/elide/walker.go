package elide

// walker implements Visitor. With a nil rewriter it only collects.
type walker struct {
	tree   Tree
	target Target
	key    Key
	tmpl   Key
	rw     Rewriter
	hook   BodyHook
	opts   Options
	res    *Result

	decls      []FuncDecl
	calls      []Call
	constructs []Construct
}

func newWalker(tree Tree, t Target, rw Rewriter, hook BodyHook, opts Options) *walker {
	return &walker{
		tree:   tree,
		target: t,
		key:    t.Decl.Key(),
		tmpl:   t.Decl.TemplateKey(),
		rw:     rw,
		hook:   hook,
		opts:   opts,
		res:    &Result{},
	}
}

func (w *walker) VisitFuncDecl(d FuncDecl) error {
	if d.Key() != w.key {
		return nil
	}
	w.decls = append(w.decls, d)
	if w.rw == nil {
		return nil
	}
	return w.rewriteDecl(d)
}

func (w *walker) VisitCtorDecl(d CtorDecl) error {
	if err := w.VisitFuncDecl(d); err != nil {
		return err
	}
	for _, ce := range d.Inits() {
		if ce == nil {
			continue
		}
		ctor := ce.Constructor()
		if ctor == nil || ctor.Key() != w.key {
			continue
		}
		w.constructs = append(w.constructs, ce)
	}
	return nil
}

func (w *walker) VisitCall(c Call) error {
	callee, err := w.resolve(c)
	if err != nil {
		return err
	}
	if callee == nil || !w.matches(callee) {
		return nil
	}
	// Collected only. Nested calls such as f(f(1)) are discovered outer
	// first and must be rewritten inner first, see apply.
	w.calls = append(w.calls, c)
	return nil
}

func (w *walker) VisitRef(Ref) error { return nil }

func (w *walker) rewriteDecl(d FuncDecl) error {
	pos := w.target.ParamPos
	n := d.NumParams()
	if pos >= n {
		return internalf("%s has %d params, cannot remove param %d", d, n, pos)
	}
	p := d.Param(pos)
	if p == nil {
		return internalf("%s: no descriptor for param %d", d, pos)
	}
	if err := w.rw.RemoveParam(d, pos, n); err != nil {
		return w.fail(&EditError{Op: OpRemoveParam, Site: d.String(), Pos: pos, Err: err})
	}
	w.res.DeclEdits++

	if !d.IsDefinition() || w.hook == nil {
		return nil
	}
	w.res.HookCalls++
	if err := w.hook.TransformParam(d, p); err != nil {
		return w.fail(&EditError{Op: OpBodyHook, Site: d.String(), Pos: pos, Err: err})
	}
	return nil
}

// fail records an edit failure; it returns the failure unless KeepGoing.
func (w *walker) fail(e *EditError) error {
	w.res.Failures = append(w.res.Failures, e)
	if w.opts.KeepGoing {
		return nil
	}
	return e
}

func (w *walker) plan() *Plan {
	return &Plan{
		Decls:      append([]FuncDecl(nil), w.decls...),
		Calls:      append([]Call(nil), w.calls...),
		Constructs: append([]Construct(nil), w.constructs...),
	}
}
