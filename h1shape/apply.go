package h1shape

import (
	"strings"

	http "github.com/saucesteals/fhttp"

	"github.com/corvidhttp/impersonate/headers"
)

// ApplyCasing resolves the interaction spec.md §4.3 calls out: a header
// registered in original wins outright (headers.Emit already preserves
// its exact casing); any other header falls back to title-case when
// opts.TitleCaseHeaders is set, else lower-case. The result is written
// into a fresh http.Header so callers can hand it straight to
// headers.Emit.
func ApplyCasing(h http.Header, original *headers.OriginalHeaders, opts *Http1Options) http.Header {
	out := make(http.Header, len(h))
	for key, values := range h {
		if original != nil && original.Has(key) {
			out[key] = values
			continue
		}
		out[casedKey(key, opts)] = values
	}
	return out
}

func casedKey(key string, opts *Http1Options) string {
	if !opts.TitleCaseHeaders {
		return strings.ToLower(key)
	}
	return http.CanonicalHeaderKey(key)
}
