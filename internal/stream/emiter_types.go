package stream

// EncoderFunc converts a value of type T to JSON bytes.
type EncoderFunc[T any] func(T) ([]byte, error)

// DecoderFunc converts one JSONL line into a T.
type DecoderFunc[T any] func([]byte) (T, error)

// Emitter is a generic interface for emitting records of type T.
type Emitter[T any] interface {
	Emit(records []T) error
	EmitOne(record T) error
	Close() error
}

// Reader yields records of type T in file order.
type Reader[T any] interface {
	// Next returns ok=false at end of input.
	Next() (record T, ok bool, err error)
	ReadAll() ([]T, error)
	Close() error
}
