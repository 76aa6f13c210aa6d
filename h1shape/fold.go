package h1shape

import "strings"

// FoldObsoleteMultiline replaces each CRLF-fold continuation in raw (an
// already-delimited header field value still carrying its line-folding
// bytes, e.g. "value\r\n  more") with a single space, trimming the
// surrounding whitespace each fold introduces, per spec.md §4.3's
// obsolete-multiline-header pass (RFC 7230 §3.2.4 obs-fold).
func FoldObsoleteMultiline(raw string) string {
	if !strings.ContainsAny(raw, "\r\n") {
		return raw
	}
	lines := splitLines(raw)
	var b strings.Builder
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if i > 0 {
			if trimmed == "" {
				continue
			}
			b.WriteByte(' ')
		}
		b.WriteString(trimmed)
	}
	return b.String()
}

func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.Split(raw, "\n")
}
