package h1shape

import (
	"bufio"
	"bytes"
	"io"
)

// LenientReader wraps a raw response byte stream so the header block is
// normalized before fhttp's strict parser sees it, implementing the two
// leniency knobs of spec.md §3 that the underlying parser (an external
// collaborator, per spec.md §1) has no hook for:
//
//   - AllowSpacesAfterHeaderName rewrites "Name : value" to "Name: value".
//   - IgnoreInvalidHeaders drops lines that still don't look like a
//     header field (no colon) once rewritten, instead of surfacing a
//     parse error.
//
// Only the header block (up to and including the blank line terminator)
// is buffered and rewritten; everything after is passed through
// untouched so it never touches a body.
func LenientReader(r io.Reader, opts *Http1Options) io.Reader {
	if !opts.AllowSpacesAfterHeaderName && !opts.IgnoreInvalidHeaders {
		return r
	}
	br := bufio.NewReader(r)
	var out bytes.Buffer

	for {
		line, err := br.ReadString('\n')
		if line == "" && err != nil {
			break
		}
		trimmed := bytes.TrimRight([]byte(line), "\r\n")
		if len(trimmed) == 0 {
			out.WriteString("\r\n")
			break
		}
		rewritten := rewriteHeaderLine(trimmed, opts)
		if rewritten == nil {
			continue
		}
		out.Write(rewritten)
		out.WriteString("\r\n")
		if err != nil {
			break
		}
	}

	return io.MultiReader(&out, br)
}

func rewriteHeaderLine(line []byte, opts *Http1Options) []byte {
	colon := bytes.IndexByte(line, ':')
	if colon < 0 {
		if opts.IgnoreInvalidHeaders {
			return nil
		}
		return line
	}
	if opts.AllowSpacesAfterHeaderName {
		name := bytes.TrimRight(line[:colon], " \t")
		rest := line[colon+1:]
		out := append(append([]byte{}, name...), ':')
		out = append(out, rest...)
		return out
	}
	return line
}
