package elide

// apply drains both worklists last-discovered-first. Discovery is pre-order,
// so popping yields inner calls before the calls enclosing them and an outer
// removal never destroys text an inner removal still needs.
func (w *walker) apply() error {
	pos := w.target.ParamPos

	for len(w.calls) > 0 {
		c := w.calls[len(w.calls)-1]
		w.calls = w.calls[:len(w.calls)-1]
		if err := w.rw.RemoveArg(c, pos); err != nil {
			if err := w.fail(&EditError{Op: OpRemoveArg, Site: c.String(), Pos: pos, Err: err}); err != nil {
				return err
			}
			continue
		}
		w.res.CallEdits++
	}

	for len(w.constructs) > 0 {
		ce := w.constructs[len(w.constructs)-1]
		w.constructs = w.constructs[:len(w.constructs)-1]
		if err := w.rw.RemoveConstructArg(ce, pos); err != nil {
			if err := w.fail(&EditError{Op: OpRemoveConstructArg, Site: ce.String(), Pos: pos, Err: err}); err != nil {
				return err
			}
			continue
		}
		w.res.ConstructEdits++
	}
	return nil
}
