package h1shape_test

import (
	"io"
	"strings"
	"testing"

	http "github.com/saucesteals/fhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidhttp/impersonate/h1shape"
	"github.com/corvidhttp/impersonate/headers"
)

func TestValidateMutualExclusion(t *testing.T) {
	opts := h1shape.DefaultHttp1Options()
	opts.SetMaxBufSize(16384)
	opts.ReadBufExactSize = 4096
	require.Error(t, opts.Validate())
}

func TestValidateMaxBufFloor(t *testing.T) {
	opts := &h1shape.Http1Options{MaxBufSize: 100}
	require.Error(t, opts.Validate())
}

func TestApplyCasingPreservesRegistered(t *testing.T) {
	o := headers.New()
	o.Insert("X-Custom-ID")

	h := http.Header{"x-custom-id": {"1"}, "accept": {"*/*"}}
	opts := &h1shape.Http1Options{TitleCaseHeaders: true}
	out := h1shape.ApplyCasing(h, o, opts)

	assert.Contains(t, out, "x-custom-id")
	assert.Contains(t, out, "Accept")
}

func TestApplyCasingLowerWhenTitleCaseOff(t *testing.T) {
	h := http.Header{"Accept": {"*/*"}}
	opts := &h1shape.Http1Options{TitleCaseHeaders: false}
	out := h1shape.ApplyCasing(h, nil, opts)
	assert.Contains(t, out, "accept")
}

func TestFoldObsoleteMultiline(t *testing.T) {
	got := h1shape.FoldObsoleteMultiline("first\r\n  second\r\n\tthird")
	assert.Equal(t, "first second third", got)
}

func TestFoldObsoleteMultilineNoFold(t *testing.T) {
	got := h1shape.FoldObsoleteMultiline("plain-value")
	assert.Equal(t, "plain-value", got)
}

func TestLenientReaderRewritesSpaceBeforeColon(t *testing.T) {
	opts := &h1shape.Http1Options{AllowSpacesAfterHeaderName: true}
	raw := "X-Foo : bar\r\n\r\nbody"
	r := h1shape.LenientReader(strings.NewReader(raw), opts)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "X-Foo: bar\r\n\r\nbody", string(out))
}

func TestLenientReaderDropsInvalidLines(t *testing.T) {
	opts := &h1shape.Http1Options{IgnoreInvalidHeaders: true}
	raw := "Good: yes\r\nnotaheader\r\n\r\nbody"
	r := h1shape.LenientReader(strings.NewReader(raw), opts)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Good: yes\r\n\r\nbody", string(out))
}
