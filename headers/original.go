// Package headers implements the original-case header registry used to
// preserve caller-declared header casing and emission order across a
// request, even though the semantic header container (http.Header) is
// case-insensitive.
package headers

import (
	"strings"

	http "github.com/saucesteals/fhttp"
)

// OriginalHeaders is an insertion-ordered sequence of display names for
// header fields whose casing and emission order must be preserved exactly
// as the caller declared them, rather than however the transport would
// otherwise canonicalize or reorder them.
//
// Registering a name twice is idempotent with respect to ordering: the
// first insertion position wins. Removing a header's values from the
// underlying header map does not remove it from the registry; Emit
// simply skips names that have no values left.
type OriginalHeaders struct {
	order   []string          // lower-case keys, insertion order
	display map[string]string // lower-case key -> preserved display form
}

// New returns an empty OriginalHeaders registry.
func New() *OriginalHeaders {
	return &OriginalHeaders{
		display: make(map[string]string),
	}
}

// Insert registers name for case- and order-preservation. The first call
// for a given (case-insensitive) name fixes both its display form and its
// position; later calls with a different casing are ignored.
func (o *OriginalHeaders) Insert(name string) *OriginalHeaders {
	key := strings.ToLower(name)
	if _, ok := o.display[key]; ok {
		return o
	}
	o.display[key] = name
	o.order = append(o.order, key)
	return o
}

// Has reports whether name (compared case-insensitively) is registered.
func (o *OriginalHeaders) Has(name string) bool {
	if o == nil {
		return false
	}
	_, ok := o.display[strings.ToLower(name)]
	return ok
}

// Len reports how many names are registered.
func (o *OriginalHeaders) Len() int {
	if o == nil {
		return 0
	}
	return len(o.order)
}

// Clone returns a deep, independent copy of the registry so it can be
// attached to a single request without aliasing the client's default.
func (o *OriginalHeaders) Clone() *OriginalHeaders {
	if o == nil {
		return nil
	}
	c := &OriginalHeaders{
		order:   append([]string(nil), o.order...),
		display: make(map[string]string, len(o.display)),
	}
	for k, v := range o.display {
		c.display[k] = v
	}
	return c
}

// Emit writes h into a fresh http.Header such that every registered name
// with at least one value appears first, in registry insertion order,
// using its preserved display casing; any headers not mentioned by the
// registry follow afterward in h's natural (unordered) iteration order,
// and fhttp.HeaderOrderKey is populated so the underlying transport emits
// the keys in exactly this sequence.
func (o *OriginalHeaders) Emit(h http.Header) http.Header {
	out := make(http.Header, len(h))
	order := make([]string, 0, len(h))
	seen := make(map[string]bool, len(h))

	if o != nil {
		for _, key := range o.order {
			values := lookup(h, key)
			if len(values) == 0 {
				continue
			}
			display := o.display[key]
			out[display] = append([]string(nil), values...)
			order = append(order, display)
			seen[key] = true
		}
	}

	for key, values := range h {
		lower := strings.ToLower(key)
		if seen[lower] {
			continue
		}
		if lower == strings.ToLower(http.HeaderOrderKey) || lower == strings.ToLower(http.PHeaderOrderKey) {
			continue
		}
		out[key] = append([]string(nil), values...)
		order = append(order, key)
		seen[lower] = true
	}

	if len(order) > 0 {
		out[http.HeaderOrderKey] = order
	}
	return out
}

// lookup performs a case-insensitive read against an http.Header whose
// keys may not be canonicalized the way http.Header.Get expects (fhttp
// preserves arbitrary caller casing), so it cannot rely on Header.Values.
func lookup(h http.Header, lowerKey string) []string {
	for key, values := range h {
		if strings.ToLower(key) == lowerKey {
			return values
		}
	}
	return nil
}
