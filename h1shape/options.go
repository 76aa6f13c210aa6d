// Package h1shape implements the HTTP/1 Shape Applier (C3): the nine
// knobs of spec.md §3 that control header casing, obsolete line
// folding, and parser strictness on the HTTP/1.1 wire.
package h1shape

import "fmt"

// Http1Options is the value object of spec.md §3.
type Http1Options struct {
	AcceptHTTP09                  bool
	VectoredWrites                TriBool
	TitleCaseHeaders              bool
	PreserveHeaderCase            bool
	MaxHeaders                    int
	ReadBufExactSize              int // mutually exclusive with MaxBufSize
	MaxBufSize                    int // minimum 8192; 0 = unset
	AllowSpacesAfterHeaderName    bool
	AllowObsoleteMultilineHeaders bool
	IgnoreInvalidHeaders          bool
}

// TriBool mirrors tlsshape.Tri without introducing a cross-package
// dependency for a three-value flag used by exactly one field here.
type TriBool uint8

const (
	TriUnset TriBool = iota
	TriTrue
	TriFalse
)

// DefaultHttp1Options returns conservative defaults: at most 100
// headers, an 8192-byte MaxBufSize, and every leniency knob off.
func DefaultHttp1Options() *Http1Options {
	return &Http1Options{
		MaxHeaders: 100,
		MaxBufSize: 8192,
	}
}

// Validate enforces the ReadBufExactSize/MaxBufSize mutual exclusion
// and the 8192 floor on MaxBufSize, per spec.md §4.3.
func (o *Http1Options) Validate() error {
	if o.ReadBufExactSize > 0 && o.MaxBufSize > 0 {
		return fmt.Errorf("h1shape: read_buf_exact_size and max_buf_size are mutually exclusive")
	}
	if o.MaxBufSize > 0 && o.MaxBufSize < 8192 {
		return fmt.Errorf("h1shape: max_buf_size must be >= 8192, got %d", o.MaxBufSize)
	}
	return nil
}

// SetMaxBufSize sets MaxBufSize and clears ReadBufExactSize, per the
// mutual-exclusion rule in spec.md §3.
func (o *Http1Options) SetMaxBufSize(n int) {
	o.MaxBufSize = n
	o.ReadBufExactSize = 0
}

// SetReadBufExactSize sets ReadBufExactSize and clears MaxBufSize.
func (o *Http1Options) SetReadBufExactSize(n int) {
	o.ReadBufExactSize = n
	o.MaxBufSize = 0
}
