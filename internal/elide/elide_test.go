package elide

import (
	"errors"
	"reflect"
	"testing"
)

type fparam string

func (p fparam) Name() string { return string(p) }

type fdecl struct {
	name   string
	key    string
	tmpl   string
	params []string
	body   bool
}

func (d *fdecl) Key() Key { return d.key }

func (d *fdecl) TemplateKey() Key {
	if d.tmpl == "" {
		return nil
	}
	return d.tmpl
}

func (d *fdecl) NumParams() int     { return len(d.params) }
func (d *fdecl) String() string     { return d.name }
func (d *fdecl) IsDefinition() bool { return d.body }
func (d *fdecl) Param(i int) Param {
	if i < 0 || i >= len(d.params) {
		return nil
	}
	return fparam(d.params[i])
}

type fctor struct {
	*fdecl
	inits []Construct
}

func (c *fctor) Inits() []Construct { return c.inits }

type fconstruct struct {
	name string
	ctor Decl
}

func (c *fconstruct) Constructor() Decl { return c.ctor }
func (c *fconstruct) String() string    { return c.name }

type fcall struct {
	name       string
	callee     Decl
	unresolved string
	qual       Scope
}

func (c *fcall) Callee() Decl   { return c.callee }
func (c *fcall) String() string { return c.name }
func (c *fcall) Unresolved() (string, Scope, bool) {
	return c.unresolved, c.qual, c.unresolved != ""
}

type fref string

func (r fref) String() string { return string(r) }

type ftree struct {
	nodes  []any
	scopes map[string]map[string]Decl
}

func (t *ftree) Walk(v Visitor) error {
	for _, n := range t.nodes {
		var err error
		switch n := n.(type) {
		case *fctor:
			err = v.VisitCtorDecl(n)
		case *fdecl:
			err = v.VisitFuncDecl(n)
		case *fcall:
			err = v.VisitCall(n)
		case fref:
			err = v.VisitRef(n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *ftree) Lookup(name string, scope Scope) Decl {
	s, _ := scope.(string)
	d, ok := t.scopes[s][name]
	if !ok {
		return nil
	}
	return d
}

// recorder is both the rewriter and the body hook.
type recorder struct {
	ops  []string
	fail map[string]error
}

func (r *recorder) do(op string) error {
	if err := r.fail[op]; err != nil {
		return err
	}
	r.ops = append(r.ops, op)
	return nil
}

func (r *recorder) RemoveParam(d FuncDecl, pos, n int) error { return r.do("param " + d.String()) }
func (r *recorder) RemoveArg(c Call, pos int) error          { return r.do("arg " + c.String()) }
func (r *recorder) RemoveConstructArg(c Construct, pos int) error {
	return r.do("ctor-arg " + c.String())
}
func (r *recorder) TransformParam(d FuncDecl, p Param) error {
	return r.do("hook " + d.String() + " " + p.Name())
}

func TestRunRedeclarations(t *testing.T) {
	fwd := &fdecl{name: "f#fwd", key: "f", params: []string{"a", "b"}}
	def := &fdecl{name: "f#def", key: "f", params: []string{"a", "b"}, body: true}
	overload := &fdecl{name: "f#overload", key: "f(int)", params: []string{"a", "b"}, body: true}

	tree := &ftree{nodes: []any{
		fwd,
		&fcall{name: "call-fwd", callee: fwd},
		overload,
		&fcall{name: "call-overload", callee: overload},
		def,
		fref("a"),
		&fcall{name: "call-def", callee: def},
		&fcall{name: "len", callee: nil},
	}}

	want := []string{
		"param f#fwd",
		"param f#def",
		"hook f#def b",
		"arg call-def",
		"arg call-fwd",
	}
	for _, target := range []*fdecl{fwd, def} {
		rec := &recorder{}
		res, err := Run(tree, Target{Decl: target, ParamPos: 1}, rec, rec, Options{})
		if err != nil {
			t.Fatalf("target %s: unexpected error: %v", target, err)
		}
		if !reflect.DeepEqual(rec.ops, want) {
			t.Errorf("target %s: ops = %v, want %v", target, rec.ops, want)
		}
		if res.DeclEdits != 2 || res.HookCalls != 1 || res.CallEdits != 2 {
			t.Errorf("target %s: result = %+v", target, res)
		}
	}
}

func TestRunTemplates(t *testing.T) {
	primary := &fdecl{name: "T", key: "T", tmpl: "T", params: []string{"x"}, body: true}
	inst := &fdecl{name: "T<int>", key: "T<int>", tmpl: "T", params: []string{"x"}, body: true}
	unrelated := &fdecl{name: "T", key: "ns::T", tmpl: "ns::T", params: []string{"x"}, body: true}
	plain := &fdecl{name: "T", key: "T()", params: []string{"x"}, body: true}

	tree := &ftree{nodes: []any{
		primary,
		&fcall{name: "call-inst", callee: inst},
		&fcall{name: "call-primary", callee: primary},
		&fcall{name: "call-unrelated", callee: unrelated},
		&fcall{name: "call-plain", callee: plain},
	}}

	tests := []struct {
		name   string
		target *fdecl
	}{
		{"primary", primary},
		{"instantiation", inst},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Collect(tree, Target{Decl: tt.target})
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, c := range plan.Calls {
				got = append(got, c.String())
			}
			want := []string{"call-inst", "call-primary"}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("calls = %v, want %v", got, want)
			}
		})
	}
}

func TestRunNestedCallsInnerFirst(t *testing.T) {
	f := &fdecl{name: "f", key: "f", params: []string{"x"}, body: true}
	tree := &ftree{nodes: []any{
		f,
		&fcall{name: "outer", callee: f},
		&fcall{name: "middle", callee: f},
		&fcall{name: "inner", callee: f},
	}}
	rec := &recorder{}
	if _, err := Run(tree, Target{Decl: f}, rec, nil, Options{}); err != nil {
		t.Fatal(err)
	}
	want := []string{"param f", "arg inner", "arg middle", "arg outer"}
	if !reflect.DeepEqual(rec.ops, want) {
		t.Errorf("ops = %v, want %v", rec.ops, want)
	}
}

func TestRunConstructorInitializers(t *testing.T) {
	base := &fctor{fdecl: &fdecl{name: "Base::Base", key: "Base", params: []string{"a", "b"}, body: true}}
	other := &fdecl{name: "Other::Other", key: "Other", params: []string{"a", "b"}}
	derived := &fctor{
		fdecl: &fdecl{name: "Derived::Derived", key: "Derived", params: nil, body: true},
		inits: []Construct{
			&fconstruct{name: "init-base", ctor: base},
			nil,
			&fconstruct{name: "init-other", ctor: other},
		},
	}
	second := &fctor{
		fdecl: &fdecl{name: "Second::Second", key: "Second", body: true},
		inits: []Construct{&fconstruct{name: "init-base-2", ctor: base}},
	}
	tree := &ftree{nodes: []any{base, derived, second, &fcall{name: "call-base", callee: base}}}

	rec := &recorder{}
	res, err := Run(tree, Target{Decl: base, ParamPos: 0}, rec, rec, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"param Base::Base",
		"hook Base::Base a",
		"arg call-base",
		"ctor-arg init-base-2",
		"ctor-arg init-base",
	}
	if !reflect.DeepEqual(rec.ops, want) {
		t.Errorf("ops = %v, want %v", rec.ops, want)
	}
	if res.ConstructEdits != 2 {
		t.Errorf("ConstructEdits = %d, want 2", res.ConstructEdits)
	}
}

func TestRunUnresolvedCallees(t *testing.T) {
	f := &fdecl{name: "f", key: "f", params: []string{"x"}, body: true}
	g := &fdecl{name: "g", key: "g", params: []string{"x"}, body: true}
	scopes := map[string]map[string]Decl{
		"pkg": {"f": f, "g": g},
		"ns":  {"f": g},
	}

	t.Run("lookup", func(t *testing.T) {
		tree := &ftree{scopes: scopes, nodes: []any{
			&fcall{name: "unqualified-f", unresolved: "f"},
			&fcall{name: "ns.f", unresolved: "f", qual: "ns"},
			&fcall{name: "missing-qual.f", unresolved: "f", qual: "nowhere"},
			&fcall{name: "unqualified-g", unresolved: "g"},
		}}
		plan, err := Collect(tree, Target{Decl: f, Parent: "pkg"})
		if err != nil {
			t.Fatal(err)
		}
		var got []string
		for _, c := range plan.Calls {
			got = append(got, c.String())
		}
		want := []string{"unqualified-f", "missing-qual.f"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("calls = %v, want %v", got, want)
		}
	})

	t.Run("no candidate is fatal", func(t *testing.T) {
		later := &fdecl{name: "f", key: "f", params: []string{"x"}, body: true}
		tree := &ftree{scopes: scopes, nodes: []any{
			&fcall{name: "h()", unresolved: "h"},
			later,
		}}
		rec := &recorder{}
		_, err := Run(tree, Target{Decl: f, Parent: "pkg"}, rec, rec, Options{KeepGoing: true})
		if !errors.Is(err, ErrInternal) {
			t.Fatalf("err = %v, want ErrInternal", err)
		}
		if len(rec.ops) != 0 {
			t.Errorf("walk continued after fatal error: %v", rec.ops)
		}
	})
}

func TestRunEditFailures(t *testing.T) {
	f := &fdecl{name: "f", key: "f", params: []string{"x"}, body: true}
	tree := &ftree{nodes: []any{
		f,
		&fcall{name: "c1", callee: f},
		&fcall{name: "c2", callee: f},
		&fcall{name: "c3", callee: f},
	}}
	boom := errors.New("boom")

	t.Run("fail fast", func(t *testing.T) {
		rec := &recorder{fail: map[string]error{"arg c2": boom}}
		res, err := Run(tree, Target{Decl: f}, rec, nil, Options{})
		var ee *EditError
		if !errors.As(err, &ee) || ee.Site != "c2" || ee.Op != OpRemoveArg {
			t.Fatalf("err = %v, want EditError for c2", err)
		}
		if !errors.Is(err, boom) {
			t.Errorf("err does not wrap cause: %v", err)
		}
		want := []string{"param f", "arg c3"}
		if !reflect.DeepEqual(rec.ops, want) {
			t.Errorf("ops = %v, want %v", rec.ops, want)
		}
		if res.CallEdits != 1 {
			t.Errorf("CallEdits = %d, want 1", res.CallEdits)
		}
	})

	t.Run("keep going", func(t *testing.T) {
		rec := &recorder{fail: map[string]error{"arg c2": boom, "param f": boom}}
		res, err := Run(tree, Target{Decl: f}, rec, nil, Options{KeepGoing: true})
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want boom", err)
		}
		want := []string{"arg c3", "arg c1"}
		if !reflect.DeepEqual(rec.ops, want) {
			t.Errorf("ops = %v, want %v", rec.ops, want)
		}
		if len(res.Failures) != 2 || res.CallEdits != 2 {
			t.Errorf("result = %+v", res)
		}
	})
}

func TestRunInvalidParam(t *testing.T) {
	f := &fdecl{name: "f", key: "f", params: []string{"x"}}
	for _, pos := range []int{-1, 1, 5} {
		_, err := Run(&ftree{}, Target{Decl: f, ParamPos: pos}, &recorder{}, nil, Options{})
		if !errors.Is(err, ErrInternal) {
			t.Errorf("pos %d: err = %v, want ErrInternal", pos, err)
		}
	}

	// A matching redeclaration with fewer params breaks the precondition.
	short := &fdecl{name: "f#short", key: "f"}
	tree := &ftree{nodes: []any{short}}
	if _, err := Run(tree, Target{Decl: f}, &recorder{}, nil, Options{}); !errors.Is(err, ErrInternal) {
		t.Errorf("err = %v, want ErrInternal", err)
	}
}

func TestCollectIsPure(t *testing.T) {
	f := &fdecl{name: "f", key: "f", params: []string{"x"}, body: true}
	base := &fctor{fdecl: &fdecl{name: "B", key: "B", params: []string{"x"}}}
	d := &fctor{fdecl: &fdecl{name: "D", key: "D"}, inits: []Construct{&fconstruct{name: "init", ctor: base}}}
	tree := &ftree{nodes: []any{f, &fcall{name: "a", callee: f}, d, &fcall{name: "b", callee: f}}}

	p1, err := Collect(tree, Target{Decl: f})
	if err != nil {
		t.Fatal(err)
	}
	p2, err := Collect(tree, Target{Decl: f})
	if err != nil {
		t.Fatal(err)
	}
	if len(p1.Calls) != 2 || len(p1.Calls) != len(p2.Calls) || len(p1.Decls) != len(p2.Decls) {
		t.Fatalf("plans differ: %+v vs %+v", p1, p2)
	}
	for i := range p1.Calls {
		if p1.Calls[i] != p2.Calls[i] {
			t.Errorf("call %d differs: %v vs %v", i, p1.Calls[i], p2.Calls[i])
		}
	}

	pc, err := Collect(tree, Target{Decl: base})
	if err != nil {
		t.Fatal(err)
	}
	if len(pc.Constructs) != 1 || pc.Constructs[0].String() != "init" {
		t.Errorf("constructs = %v", pc.Constructs)
	}
}
