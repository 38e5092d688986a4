package filehandler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.go")
	b := filepath.Join(dir, "b.go")
	if err := os.WriteFile(a, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	files := map[string][]byte{
		a: []byte("package a\nfunc F( x int ) {}\n"),
		b: []byte("package b\nfunc ( {\n"),
	}
	names, err := WriteFiles(context.Background(), files, Options{Gofmt: true, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != a || names[1] != b {
		t.Errorf("names = %v", names)
	}

	got, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	if want := "package a\n\nfunc F(x int) {}\n"; string(got) != want {
		t.Errorf("a.go = %q, want %q", got, want)
	}
	if fi, err := os.Stat(a); err != nil || fi.Mode().Perm() != 0o600 {
		t.Errorf("a.go mode = %v, %v", fi.Mode(), err)
	}

	// Unformattable input is written as is.
	got, err = os.ReadFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(files[b]) {
		t.Errorf("b.go = %q", got)
	}
}

func TestWriteFilesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()
	_, err := WriteFiles(ctx, map[string][]byte{filepath.Join(dir, "a.go"): []byte("x")}, Options{})
	if err == nil {
		t.Fatal("expected an error from a canceled context")
	}
}
