// Package edit records text edits against the original bytes of a file and
// applies them all at once.
package edit

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrOverlap is returned for an edit that lands inside text an earlier
	// edit already replaced, or that straddles an earlier edit's boundary.
	ErrOverlap = errors.New("edit: range overlaps an earlier edit")
	ErrRange   = errors.New("edit: offset out of range")
)

type span struct {
	start, end int
	text       string
	seq        int
}

// Buffer holds the original content plus the edits made so far. Offsets
// always refer to the original content.
type Buffer struct {
	old   []byte
	edits []span
	seq   int
}

func NewBuffer(data []byte) *Buffer {
	return &Buffer{old: data}
}

func (b *Buffer) Insert(pos int, text string) error {
	return b.Replace(pos, pos, text)
}

func (b *Buffer) Delete(start, end int) error {
	return b.Replace(start, end, "")
}

// Replace replaces old[start:end] with text. Earlier edits that lie entirely
// inside [start, end) are absorbed by the new one.
func (b *Buffer) Replace(start, end int, text string) error {
	if start < 0 || end < start || end > len(b.old) {
		return fmt.Errorf("%w: [%d,%d) in %d bytes", ErrRange, start, end, len(b.old))
	}
	kept := b.edits[:0:0]
	for _, e := range b.edits {
		switch {
		case e.end <= start && e.start < start, end <= e.start && end < e.end:
			// disjoint
			kept = append(kept, e)
		case e.start == e.end && (e.start == start || e.start == end):
			// insertion at a boundary
			kept = append(kept, e)
		case start <= e.start && e.end <= end && start < end:
			// absorbed
		default:
			return fmt.Errorf("%w: [%d,%d) against [%d,%d)", ErrOverlap, start, end, e.start, e.end)
		}
	}
	b.seq++
	b.edits = append(kept, span{start: start, end: end, text: text, seq: b.seq})
	return nil
}

func (b *Buffer) HasEdits() bool { return len(b.edits) > 0 }

// Bytes returns the content with every edit applied.
func (b *Buffer) Bytes() []byte {
	edits := append([]span(nil), b.edits...)
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].start != edits[j].start {
			return edits[i].start < edits[j].start
		}
		if edits[i].end != edits[j].end {
			return edits[i].end < edits[j].end
		}
		return edits[i].seq < edits[j].seq
	})

	var out bytes.Buffer
	off := 0
	for _, e := range edits {
		out.Write(b.old[off:e.start])
		out.WriteString(e.text)
		off = e.end
	}
	out.Write(b.old[off:])
	return out.Bytes()
}

func (b *Buffer) String() string { return string(b.Bytes()) }

// Original returns old[start:end].
func (b *Buffer) Original(start, end int) ([]byte, error) {
	if start < 0 || end < start || end > len(b.old) {
		return nil, fmt.Errorf("%w: [%d,%d) in %d bytes", ErrRange, start, end, len(b.old))
	}
	return b.old[start:end], nil
}
