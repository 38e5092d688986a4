package elide

// resolve returns the declaration a call targets. A nil declaration with a
// nil error means the call has no declared callee at all.
func (w *walker) resolve(c Call) (Decl, error) {
	name, qual, unresolved := c.Unresolved()
	if !unresolved {
		return c.Callee(), nil
	}

	var d Decl
	if qual != nil {
		d = w.tree.Lookup(name, qual)
	}
	if d == nil {
		d = w.tree.Lookup(name, w.target.Parent)
	}
	if d == nil {
		return nil, internalf("no declaration of %q visible from %s", name, c)
	}
	return d, nil
}

// matches compares by primary template when the target is a template and by
// canonical declaration otherwise.
func (w *walker) matches(d Decl) bool {
	if w.tmpl != nil {
		k := d.TemplateKey()
		return k != nil && k == w.tmpl
	}
	return d.Key() == w.key
}
