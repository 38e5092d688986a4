package elide

// Key is a normalized declaration identity. Implementations must use
// comparable dynamic types: keys are compared with ==.
type Key any

// Scope is an opaque lookup scope handed back to Tree.Lookup.
type Scope any

// Decl is anything a call can resolve to.
type Decl interface {
	// Key is the canonical identity shared by every redeclaration.
	Key() Key
	// TemplateKey identifies the primary template the declaration is, or
	// was instantiated from. Nil when the declaration is not templated.
	TemplateKey() Key
	NumParams() int
	String() string
}

type Param interface {
	Name() string
}

// FuncDecl is a function declaration as it appears in the tree.
type FuncDecl interface {
	Decl
	// Param returns the i-th parameter descriptor, nil if out of range.
	Param(i int) Param
	// IsDefinition reports whether this declaration carries a body.
	IsDefinition() bool
}

// CtorDecl is a constructor declaration with a member-initializer list.
type CtorDecl interface {
	FuncDecl
	// Inits returns the initializer expressions in source order. An entry is
	// nil when that initializer is not a constructor invocation.
	Inits() []Construct
}

// Construct is a constructor invocation inside a member-initializer list.
type Construct interface {
	Constructor() Decl
	String() string
}

// Call is a call expression.
type Call interface {
	// Callee returns the declaration the call is bound to, or nil when the
	// callee is not a declared function (builtins, conversions, values).
	Callee() Decl
	// Unresolved reports a callee name that type checking left unbound,
	// together with its explicit qualifier scope (nil when unqualified).
	Unresolved() (name string, qualifier Scope, ok bool)
	String() string
}

// Ref is an identifier reference.
type Ref interface {
	String() string
}

// Visitor receives nodes in pre-order, document order. A constructor is
// reported once, through VisitCtorDecl. A non-nil error stops the walk.
type Visitor interface {
	VisitFuncDecl(FuncDecl) error
	VisitCtorDecl(CtorDecl) error
	VisitCall(Call) error
	VisitRef(Ref) error
}

// Tree is the already analysed program.
type Tree interface {
	// Walk visits every node of interest exactly once.
	Walk(v Visitor) error
	// Lookup resolves name inside scope. It returns nil when nothing is found.
	Lookup(name string, scope Scope) Decl
}

// Rewriter is the text-rewriting service.
type Rewriter interface {
	RemoveParam(d FuncDecl, pos, numParams int) error
	RemoveArg(c Call, pos int) error
	RemoveConstructArg(c Construct, pos int) error
}

// BodyHook is invoked once per matched definition, before any call site is
// rewritten, with the parameter being removed.
type BodyHook interface {
	TransformParam(d FuncDecl, p Param) error
}

type BodyHookFunc func(d FuncDecl, p Param) error

func (f BodyHookFunc) TransformParam(d FuncDecl, p Param) error { return f(d, p) }
