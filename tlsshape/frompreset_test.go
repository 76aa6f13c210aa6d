package tlsshape_test

import (
	"testing"

	utls "github.com/refraction-networking/utls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidhttp/impersonate/tlsshape"
)

func TestFromUtlsPresetPopulatesCiphersAndOrder(t *testing.T) {
	opts, err := tlsshape.FromUtlsPreset(utls.HelloChrome_120)
	require.NoError(t, err)
	assert.NotEmpty(t, opts.CipherList)
	assert.NotEmpty(t, opts.ExtensionPermutation)
}

func TestFromUtlsPresetUnknownID(t *testing.T) {
	_, err := tlsshape.FromUtlsPreset(utls.ClientHelloID{Client: "bogus-client", Version: "0"})
	assert.Error(t, err)
}
