package edit

import (
	"errors"
	"fmt"
	"go/token"
	"sort"
)

var ErrUnknownFile = errors.New("edit: position in unregistered file")

// Set keeps one Buffer per file and addresses them with token positions.
type Set struct {
	fset *token.FileSet
	bufs map[string]*Buffer
}

func NewSet(fset *token.FileSet) *Set {
	return &Set{fset: fset, bufs: make(map[string]*Buffer)}
}

// Add registers the original content of filename. Adding a file twice keeps
// the first registration and its edits.
func (s *Set) Add(filename string, src []byte) {
	if _, ok := s.bufs[filename]; ok {
		return
	}
	s.bufs[filename] = NewBuffer(src)
}

func (s *Set) Delete(start, end token.Pos) error {
	return s.Replace(start, end, "")
}

func (s *Set) Insert(pos token.Pos, text string) error {
	return s.Replace(pos, pos, text)
}

func (s *Set) Replace(start, end token.Pos, text string) error {
	buf, so, eo, err := s.locate(start, end)
	if err != nil {
		return err
	}
	return buf.Replace(so, eo, text)
}

// Original returns the unedited source text of [start, end).
func (s *Set) Original(start, end token.Pos) (string, error) {
	buf, so, eo, err := s.locate(start, end)
	if err != nil {
		return "", err
	}
	b, err := buf.Original(so, eo)
	return string(b), err
}

// Files returns the edited content of every file that changed, by name.
func (s *Set) Files() map[string][]byte {
	out := make(map[string][]byte)
	for name, buf := range s.bufs {
		if buf.HasEdits() {
			out[name] = buf.Bytes()
		}
	}
	return out
}

// Changed lists the names of edited files in sorted order.
func (s *Set) Changed() []string {
	var names []string
	for name, buf := range s.bufs {
		if buf.HasEdits() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (s *Set) Buffer(filename string) *Buffer { return s.bufs[filename] }

func (s *Set) locate(start, end token.Pos) (*Buffer, int, int, error) {
	if !start.IsValid() || !end.IsValid() {
		return nil, 0, 0, fmt.Errorf("%w: invalid position", ErrRange)
	}
	// Line directives must not redirect edits, so positions are unadjusted.
	sp := s.fset.PositionFor(start, false)
	ep := s.fset.PositionFor(end, false)
	if sp.Filename != ep.Filename {
		return nil, 0, 0, fmt.Errorf("%w: range spans %s and %s", ErrRange, sp.Filename, ep.Filename)
	}
	buf, ok := s.bufs[sp.Filename]
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownFile, sp.Filename)
	}
	return buf, sp.Offset, ep.Offset, nil
}
