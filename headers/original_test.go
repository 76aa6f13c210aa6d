package headers_test

import (
	"testing"

	http "github.com/saucesteals/fhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidhttp/impersonate/headers"
)

func TestEmitPreservesOrderAndCase(t *testing.T) {
	o := headers.New()
	o.Insert("User-Agent")
	o.Insert("Accept")
	o.Insert("Accept") // idempotent, second call ignored

	h := http.Header{}
	h.Set("accept", "*/*")
	h.Set("user-agent", "test/1.0")
	h.Set("x-extra", "1")

	out := o.Emit(h)

	order, ok := out[http.HeaderOrderKey]
	require.True(t, ok)
	assert.Equal(t, []string{"User-Agent", "Accept", "X-Extra"}, order)
}

func TestEmitSkipsEmptiedRegisteredNames(t *testing.T) {
	o := headers.New()
	o.Insert("X-Gone")

	h := http.Header{}
	h.Set("present", "1")

	out := o.Emit(h)
	order := out[http.HeaderOrderKey]
	assert.NotContains(t, order, "X-Gone")
	assert.Contains(t, order, "Present")
}

func TestInsertFirstCasingWins(t *testing.T) {
	o := headers.New()
	o.Insert("X-Foo")
	o.Insert("X-FOO")

	h := http.Header{}
	h.Set("x-foo", "1")
	out := o.Emit(h)
	assert.Contains(t, out, "X-Foo")
	assert.NotContains(t, out, "X-FOO")
}

func TestCloneIsIndependent(t *testing.T) {
	o := headers.New()
	o.Insert("A")
	clone := o.Clone()
	clone.Insert("B")

	assert.Equal(t, 1, o.Len())
	assert.Equal(t, 2, clone.Len())
}
