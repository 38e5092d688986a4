package stream

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxLine bounds a single record; plan entries and reports are far smaller.
const maxLine = 4 << 20

// LineError is a record that failed to decode.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *LineError) Unwrap() error { return e.Err }

// JSONLReader decodes one record per line. Blank lines and "#" lines, such
// as the run headers JSONLEmitter writes, are skipped.
type JSONLReader[T any] struct {
	sc     *bufio.Scanner
	closer io.Closer
	decode DecoderFunc[T]
	line   int
}

// NewJSONLReader opens path, gunzipping it when it ends in ".gz". An empty
// path reads stdin. A nil decode uses json.Unmarshal.
func NewJSONLReader[T any](path string, decode DecoderFunc[T]) (*JSONLReader[T], error) {
	if path == "" {
		return NewReaderFrom(os.Stdin, decode), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(path), ".gz") {
		return newReader(f, f, decode), nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return newReader(zr, closers{zr, f}, decode), nil
}

// NewReaderFrom reads from r. Close leaves r open.
func NewReaderFrom[T any](r io.Reader, decode DecoderFunc[T]) *JSONLReader[T] {
	return newReader(r, nil, decode)
}

func newReader[T any](r io.Reader, c io.Closer, decode DecoderFunc[T]) *JSONLReader[T] {
	if decode == nil {
		decode = func(b []byte) (v T, err error) {
			err = json.Unmarshal(b, &v)
			return v, err
		}
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)
	return &JSONLReader[T]{sc: sc, closer: c, decode: decode}
}

var _ Reader[struct{}] = (*JSONLReader[struct{}])(nil)

func (r *JSONLReader[T]) Next() (T, bool, error) {
	var zero T
	for r.sc.Scan() {
		r.line++
		b := bytes.TrimSpace(r.sc.Bytes())
		if len(b) == 0 || b[0] == '#' {
			continue
		}
		v, err := r.decode(b)
		if err != nil {
			return zero, false, &LineError{Line: r.line, Err: err}
		}
		return v, true, nil
	}
	if err := r.sc.Err(); err != nil {
		return zero, false, &LineError{Line: r.line + 1, Err: err}
	}
	return zero, false, nil
}

func (r *JSONLReader[T]) ReadAll() ([]T, error) {
	var out []T
	for {
		v, ok, err := r.Next()
		if err != nil || !ok {
			return out, err
		}
		out = append(out, v)
	}
}

func (r *JSONLReader[T]) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// closers closes each in order and reports the first failure.
type closers []io.Closer

func (cs closers) Close() error {
	var first error
	for _, c := range cs {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
