package tlsshape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	utls "github.com/refraction-networking/utls"

	"github.com/corvidhttp/impersonate/tlsshape"
)

func TestApplyRejectsInvertedVersionRange(t *testing.T) {
	opts := tlsshape.DefaultTlsOptions()
	opts.MinVersion = tlsshape.TlsVersion13
	opts.MaxVersion = tlsshape.TlsVersion12

	_, err := tlsshape.Apply(opts, tlsshape.DialContext{ServerName: "example.com"})
	require.Error(t, err)
}

func TestApplyRejectsUnknownExtension(t *testing.T) {
	opts := tlsshape.DefaultTlsOptions()
	opts.ExtensionPermutation = []uint16{0xbeef}

	_, err := tlsshape.Apply(opts, tlsshape.DialContext{ServerName: "example.com"})
	require.Error(t, err)
}

func TestCipherListOrderIsPreserved(t *testing.T) {
	opts := tlsshape.DefaultTlsOptions()
	opts.CipherList = []uint16{
		utls.TLS_AES_128_GCM_SHA256,
		utls.TLS_AES_256_GCM_SHA384,
		utls.TLS_CHACHA20_POLY1305_SHA256,
	}
	opts.ExtensionPermutation = []uint16{tlsshape.ExtServerName}

	shaped, err := tlsshape.Apply(opts, tlsshape.DialContext{ServerName: "example.com"})
	require.NoError(t, err)

	spec, err := shaped.SpecFn()
	require.NoError(t, err)
	assert.Equal(t, opts.CipherList, spec.CipherSuites)

	// swapping two adjacent ciphers swaps the corresponding wire positions
	swapped := append([]uint16(nil), opts.CipherList...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	opts.CipherList = swapped
	shaped2, err := tlsshape.Apply(opts, tlsshape.DialContext{ServerName: "example.com"})
	require.NoError(t, err)
	spec2, err := shaped2.SpecFn()
	require.NoError(t, err)
	assert.Equal(t, swapped, spec2.CipherSuites)
}

func TestExtensionPermutationOrderIsHonored(t *testing.T) {
	opts := tlsshape.DefaultTlsOptions()
	opts.ExtensionPermutation = []uint16{
		tlsshape.ExtALPN,
		tlsshape.ExtServerName,
	}

	shaped, err := tlsshape.Apply(opts, tlsshape.DialContext{ServerName: "example.com"})
	require.NoError(t, err)
	spec, err := shaped.SpecFn()
	require.NoError(t, err)
	require.Len(t, spec.Extensions, 2)
	_, isALPN := spec.Extensions[0].(*utls.ALPNExtension)
	assert.True(t, isALPN)
	_, isSNI := spec.Extensions[1].(*utls.SNIExtension)
	assert.True(t, isSNI)
}

func TestSpecFnReturnsFreshCopyEachCall(t *testing.T) {
	opts := tlsshape.DefaultTlsOptions()
	opts.ExtensionPermutation = []uint16{tlsshape.ExtServerName}
	shaped, err := tlsshape.Apply(opts, tlsshape.DialContext{ServerName: "example.com"})
	require.NoError(t, err)

	a, err := shaped.SpecFn()
	require.NoError(t, err)
	b, err := shaped.SpecFn()
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}
