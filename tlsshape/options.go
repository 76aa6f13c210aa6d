// Package tlsshape implements the TLS Shape Applier (C1): translating an
// immutable TlsOptions value into calls against the underlying utls
// ClientHello builder so the emitted ClientHello matches a chosen
// reference user agent byte-for-byte.
package tlsshape

import (
	"crypto/x509"
	"fmt"

	utls "github.com/refraction-networking/utls"
)

// TlsVersion enumerates the TLS protocol versions selectable as a
// min/max bound.
type TlsVersion uint16

const (
	TlsVersion10 TlsVersion = TlsVersion(utls.VersionTLS10)
	TlsVersion11 TlsVersion = TlsVersion(utls.VersionTLS11)
	TlsVersion12 TlsVersion = TlsVersion(utls.VersionTLS12)
	TlsVersion13 TlsVersion = TlsVersion(utls.VersionTLS13)
)

// CertCompressionAlgo names a TLS certificate-compression algorithm
// (RFC 8879). Only this closed set is meaningful on the wire.
type CertCompressionAlgo string

const (
	CertCompressionZlib   CertCompressionAlgo = "zlib"
	CertCompressionBrotli CertCompressionAlgo = "brotli"
	CertCompressionZstd   CertCompressionAlgo = "zstd"
)

// Tri is a three-state boolean: unset defers to per-dial randomized or
// engine-default behavior, rather than forcing true/false.
type Tri uint8

const (
	TriUnset Tri = iota
	TriTrue
	TriFalse
)

// Bool reports whether the tri-state resolves to a concrete value, and
// what it is.
func (t Tri) Bool() (value, ok bool) {
	switch t {
	case TriTrue:
		return true, true
	case TriFalse:
		return false, true
	default:
		return false, false
	}
}

// TlsOptions is the value object of spec.md §3: an immutable, ordered
// description of every knob that shapes a ClientHello. Field order
// within the struct has no wire significance; the order *within* each
// slice-typed field does.
type TlsOptions struct {
	CipherList             []uint16 // ordered cipher suite ids
	Curves                 []utls.CurveID
	SignatureAlgorithms    []utls.SignatureScheme
	DelegatedCredentials   []utls.SignatureScheme
	AlpnProtocols          []string
	AlpsProtocols          []string
	AlpsUseNewCodepoint    bool
	CertCompressionAlgos   []CertCompressionAlgo
	ExtensionPermutation   []uint16 // ordered extension type ids; nil = engine default order
	RecordSizeLimit        uint16   // 0 = not sent
	PreSharedKey           bool
	PskSkipSessionTicket   bool
	PskDheKe               bool
	SessionTicket          bool
	EchGrease              bool
	OcspStapling           bool
	SignedCertTimestamps   bool
	MinVersion             TlsVersion
	MaxVersion             TlsVersion
	KeySharesLimit         uint8
	PreferChacha20         bool
	AesHwOverride          Tri
	RandomAesHwOverride    bool
	Renegotiation          bool
	TlsSni                 bool
	VerifyHostname         bool
	CertVerification       bool
	PermuteExtensions      Tri
	Grease                 Tri
	KeyLogFile             string
	RootCertPool           *x509.CertPool // nil = system roots
}

// DefaultTlsOptions returns the conservative baseline: TLS 1.2 through
// 1.3, session tickets on, hostname and certificate verification on, no
// ECH-GREASE, system roots. The default extension order, the default
// cipher list and the key share still carry GREASE values. Profiles in the profiles package
// start from this and override fields to match a specific browser.
func DefaultTlsOptions() *TlsOptions {
	return &TlsOptions{
		MinVersion:       TlsVersion12,
		MaxVersion:       TlsVersion13,
		SessionTicket:    true,
		PskDheKe:         true,
		Renegotiation:    true,
		TlsSni:           true,
		VerifyHostname:   true,
		CertVerification: true,
		AlpnProtocols:    []string{"h2", "http/1.1"},
	}
}

// TlsOptionsBuilder builds a TlsOptions value through chained setters,
// mirroring the teacher's functional-options idiom.
type TlsOptionsBuilder struct {
	opts *TlsOptions
}

// NewTlsOptionsBuilder starts from DefaultTlsOptions.
func NewTlsOptionsBuilder() *TlsOptionsBuilder {
	return &TlsOptionsBuilder{opts: DefaultTlsOptions()}
}

func (b *TlsOptionsBuilder) CipherSuites(ids ...uint16) *TlsOptionsBuilder {
	b.opts.CipherList = ids
	return b
}

func (b *TlsOptionsBuilder) CurvesOrder(curves ...utls.CurveID) *TlsOptionsBuilder {
	b.opts.Curves = curves
	return b
}

func (b *TlsOptionsBuilder) SignatureAlgorithmsOrder(algos ...utls.SignatureScheme) *TlsOptionsBuilder {
	b.opts.SignatureAlgorithms = algos
	return b
}

func (b *TlsOptionsBuilder) Alpn(protos ...string) *TlsOptionsBuilder {
	b.opts.AlpnProtocols = protos
	return b
}

func (b *TlsOptionsBuilder) Alps(protos ...string) *TlsOptionsBuilder {
	b.opts.AlpsProtocols = protos
	return b
}

func (b *TlsOptionsBuilder) ExtensionPermutation(ids ...uint16) *TlsOptionsBuilder {
	b.opts.ExtensionPermutation = ids
	return b
}

func (b *TlsOptionsBuilder) CertCompression(algos ...CertCompressionAlgo) *TlsOptionsBuilder {
	b.opts.CertCompressionAlgos = algos
	return b
}

func (b *TlsOptionsBuilder) Versions(min, max TlsVersion) *TlsOptionsBuilder {
	b.opts.MinVersion = min
	b.opts.MaxVersion = max
	return b
}

func (b *TlsOptionsBuilder) InsecureSkipVerify() *TlsOptionsBuilder {
	b.opts.CertVerification = false
	return b
}

func (b *TlsOptionsBuilder) Build() (*TlsOptions, error) {
	if b.opts.MinVersion > b.opts.MaxVersion {
		return nil, fmt.Errorf("tlsshape: min version %#x exceeds max version %#x", b.opts.MinVersion, b.opts.MaxVersion)
	}
	cp := *b.opts
	return &cp, nil
}
