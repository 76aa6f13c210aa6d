package tlsshape

import (
	"io"

	utls "github.com/refraction-networking/utls"
)

// DialContext carries the per-dial information Apply needs that is not
// part of the immutable TlsOptions: the SNI host, a request-time ALPN
// preference override, and where to write TLS key-log lines.
type DialContext struct {
	ServerName   string
	ALPNOverride []string
	KeyLogWriter io.Writer
}

// ShapedTLS is the result of Apply: a reusable utls.Config plus a factory
// that produces a fresh ClientHelloSpec for each dial (utls mutates the
// spec it's given during the handshake, so the same *ClientHelloSpec
// value must never be handed to two handshakes).
type ShapedTLS struct {
	Config *utls.Config
	SpecFn func() (*utls.ClientHelloSpec, error)
}

// Apply translates opts into a ShapedTLS per spec.md §4.1. It fails with
// a *ConfigError when an extension id in the permutation is unrecognized
// or when min version exceeds max version. Cipher, curve and sigalg ids
// are passed through to utls without being checked, and unknown
// certificate-compression algorithm names are dropped without an error.
func Apply(opts *TlsOptions, ctx DialContext) (*ShapedTLS, error) {
	if opts.MinVersion > opts.MaxVersion {
		return nil, configErr("version range", []TlsVersion{opts.MinVersion, opts.MaxVersion}, nil)
	}

	// Build once to validate eagerly; SpecFn rebuilds per-dial afterward.
	if _, err := buildClientHelloSpec(opts, ctx); err != nil {
		return nil, err
	}

	cfg := &utls.Config{
		ServerName:             ctx.ServerName,
		InsecureSkipVerify:     !opts.CertVerification,
		RootCAs:                opts.RootCertPool,
		MinVersion:             uint16(opts.MinVersion),
		MaxVersion:             uint16(opts.MaxVersion),
		KeyLogWriter:           ctx.KeyLogWriter,
		SessionTicketsDisabled: !opts.SessionTicket,
	}
	RegisterCertCompression(cfg, opts.CertCompressionAlgos)

	if !opts.VerifyHostname {
		// utls has no direct "verify chain but not hostname" toggle;
		// approximate it with a custom verifier that skips hostname checks
		// but still validates the chain against cfg.RootCAs.
		cfg.InsecureSkipVerify = true
		cfg.VerifyPeerCertificate = chainOnlyVerifier(cfg)
	}

	return &ShapedTLS{
		Config: cfg,
		SpecFn: func() (*utls.ClientHelloSpec, error) {
			return buildClientHelloSpec(opts, ctx)
		},
	}, nil
}

func buildClientHelloSpec(opts *TlsOptions, ctx DialContext) (*utls.ClientHelloSpec, error) {
	order := opts.ExtensionPermutation
	if order == nil {
		order = defaultExtensionOrder
	}

	exts := make([]utls.TLSExtension, 0, len(order))
	for _, id := range order {
		ext, err := extensionFactory(id, opts, ctx)
		if err != nil {
			return nil, configErr("extension permutation", id, err)
		}
		if ext == nil {
			continue
		}
		exts = append(exts, ext)
	}

	if resolvePermuteExtensions(opts) {
		exts = utls.ShuffleChromeTLSExtensions(exts)
	}

	suites, err := cipherSuites(opts)
	if err != nil {
		return nil, err
	}

	spec := &utls.ClientHelloSpec{
		CipherSuites:       suites,
		CompressionMethods: []byte{0x00},
		Extensions:         exts,
		GetSessionID:       nil,
	}
	return spec, nil
}

func cipherSuites(opts *TlsOptions) ([]uint16, error) {
	if len(opts.CipherList) == 0 {
		return defaultCipherSuites(opts), nil
	}
	return opts.CipherList, nil
}

func defaultCipherSuites(opts *TlsOptions) []uint16 {
	preferAes := resolveAesHwPreference(opts)
	aead1, aead2 := utls.TLS_AES_128_GCM_SHA256, utls.TLS_CHACHA20_POLY1305_SHA256
	if !preferAes {
		aead1, aead2 = aead2, aead1
	}
	return []uint16{
		utls.GREASE_PLACEHOLDER,
		uint16(aead1),
		uint16(aead2),
		utls.TLS_AES_256_GCM_SHA384,
		utls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		utls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		utls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		utls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		utls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
		utls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
		utls.TLS_RSA_WITH_AES_128_GCM_SHA256,
		utls.TLS_RSA_WITH_AES_256_GCM_SHA384,
	}
}

func keyShareExtension(opts *TlsOptions) utls.TLSExtension {
	curves := opts.Curves
	if len(curves) == 0 {
		curves = []utls.CurveID{utls.X25519, utls.CurveP256}
	}
	limit := int(opts.KeySharesLimit)
	if limit == 0 || limit > len(curves) {
		limit = 1
	}
	shares := make([]utls.KeyShare, 0, limit+1)
	shares = append(shares, utls.KeyShare{Group: utls.CurveID(utls.GREASE_PLACEHOLDER), Data: []byte{0}})
	for i := 0; i < limit; i++ {
		shares = append(shares, utls.KeyShare{Group: curves[i]})
	}
	return &utls.KeyShareExtension{KeyShares: shares}
}
