package scanner

import (
	"fmt"
	"strings"
	"testing"
)

func TestSnippet(t *testing.T) {
	u := &FileUnit{Src: []byte("a  \r\nb\n\tc\t\nd")}
	tests := []struct {
		start, end int
		want       string
	}{
		{1, 1, "a"},
		{2, 3, "b\n\tc"},
		{3, 9, "\tc\nd"},
		{5, 6, ""},
		{2, 1, ""},
	}
	for _, tt := range tests {
		if got := u.Snippet(tt.start, tt.end); got != tt.want {
			t.Errorf("Snippet(%d, %d) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}

	var long strings.Builder
	for i := 1; i <= 40; i++ {
		fmt.Fprintf(&long, "line %d\n", i)
	}
	u = &FileUnit{Src: []byte(long.String())}
	got := strings.Split(u.Snippet(1, 40), "\n")
	if len(got) != maxSnippetLines+1 || got[len(got)-1] != "// ..." {
		t.Errorf("long snippet has %d lines, last %q", len(got), got[len(got)-1])
	}
}

func TestShouldExclude(t *testing.T) {
	res := compileExcludeRegexes(`(^|/)vendor/, _gen\.go$ ,[`)
	if len(res) != 2 {
		t.Fatalf("compiled %d patterns, want 2 (invalid ones are dropped)", len(res))
	}
	for path, want := range map[string]bool{
		"vendor/x/a.go":     true,
		"internal/vendor/b": true,
		"api/types_gen.go":  true,
		"internal/a.go":     false,
	} {
		if got := shouldExclude(path, res); got != want {
			t.Errorf("shouldExclude(%q) = %v, want %v", path, got, want)
		}
	}
}
