package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// JSONLEmitter writes one JSON object per line (JSONL). An existing output
// file is appended to; the run header separates runs.
type JSONLEmitter[T any] struct {
	outPath      string
	encode       EncoderFunc[T]
	addRunHeader bool

	w      *bufio.Writer
	closer io.Closer
	count  int
}

// NewJSONLEmitter creates a JSONLEmitter with a fixed output path; "" means
// stdout. If encode is nil, it falls back to json.Marshal.
func NewJSONLEmitter[T any](outPath string, encode EncoderFunc[T], addRunHeader bool) *JSONLEmitter[T] {
	if encode == nil {
		encode = func(v T) ([]byte, error) { return json.Marshal(v) }
	}
	return &JSONLEmitter[T]{
		outPath:      outPath,
		encode:       encode,
		addRunHeader: addRunHeader,
	}
}

// NewWriterEmitter emits to w. Close flushes but does not close w.
func NewWriterEmitter[T any](w io.Writer, encode EncoderFunc[T]) *JSONLEmitter[T] {
	je := NewJSONLEmitter("", encode, false)
	je.w = bufio.NewWriter(w)
	return je
}

// Emit writes a slice of records.
func (je *JSONLEmitter[T]) Emit(records []T) error {
	for _, rec := range records {
		if err := je.EmitOne(rec); err != nil {
			return err
		}
	}
	return nil
}

// EmitOne writes a single record. Records are flushed one by one so a crash
// keeps every report written so far.
func (je *JSONLEmitter[T]) EmitOne(record T) error {
	if err := je.open(); err != nil {
		return err
	}
	if je.addRunHeader {
		header := fmt.Sprintf("# Run at %s\n", time.Now().Format(time.RFC3339))
		if _, err := je.w.WriteString(header); err != nil {
			return err
		}
		je.addRunHeader = false
	}

	b, err := je.encode(record)
	if err != nil {
		return fmt.Errorf("encode record %d: %w", je.count, err)
	}
	if _, err := je.w.Write(b); err != nil {
		return err
	}
	if err := je.w.WriteByte('\n'); err != nil {
		return err
	}
	je.count++
	return je.w.Flush()
}

// Count is the number of records written.
func (je *JSONLEmitter[T]) Count() int { return je.count }

func (je *JSONLEmitter[T]) Close() error {
	if je.w == nil {
		return nil
	}
	err := je.w.Flush()
	if je.closer != nil {
		if cerr := je.closer.Close(); err == nil {
			err = cerr
		}
		je.closer = nil
	}
	return err
}

func (je *JSONLEmitter[T]) open() error {
	if je.w != nil {
		return nil
	}
	if je.outPath == "" {
		je.w = bufio.NewWriter(os.Stdout)
		return nil
	}
	f, err := os.OpenFile(je.outPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	je.w = bufio.NewWriter(f)
	je.closer = f
	return nil
}
