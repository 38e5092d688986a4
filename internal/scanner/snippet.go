package scanner

import "strings"

// maxSnippetLines caps a snippet; longer ranges are cut with a marker.
const maxSnippetLines = 30

// Snippet returns lines start..end (1-based, inclusive) of u's source with
// trailing whitespace removed.
func (u *FileUnit) Snippet(start, end int) string {
	if start < 1 || end < start {
		return ""
	}
	lines := strings.Split(normalizeNewlines(string(u.Src)), "\n")
	if start > len(lines) {
		return ""
	}
	end = min(end, len(lines))
	cut := false
	if end-start+1 > maxSnippetLines {
		end = start + maxSnippetLines - 1
		cut = true
	}
	out := make([]string, 0, end-start+2)
	for _, l := range lines[start-1 : end] {
		out = append(out, strings.TrimRight(l, " \t"))
	}
	if cut {
		out = append(out, "// ...")
	}
	return strings.Join(out, "\n")
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
