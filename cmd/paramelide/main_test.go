package main

import (
	"errors"
	"testing"
)

type closer struct {
	err    error
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestCloseWith(t *testing.T) {
	errRun := errors.New("run failed")
	errFlush := errors.New("flush failed")
	tests := []struct {
		name     string
		run      error
		closeErr error
		want     error
	}{
		{"clean", nil, nil, nil},
		{"flush failure surfaces", nil, errFlush, errFlush},
		{"run failure wins", errRun, errFlush, errRun},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &closer{err: tt.closeErr}
			if got := closeWith(tt.run, c); got != tt.want {
				t.Errorf("closeWith = %v, want %v", got, tt.want)
			}
			if !c.closed {
				t.Error("not closed")
			}
		})
	}
}
