// Package connect implements the Connector Pipeline (C6): DNS resolution
// with happy-eyeballs, proxy selection, direct/tunnel/SOCKS transport
// establishment, and the per-OS TCP bind options spec.md §4.5 requires.
package connect

import (
	"crypto/x509"
	"net"
	"sync/atomic"
)

// PoisonPill is a one-bit flag attached to each Conn; once set, the pool
// must never hand the connection out again. It is shared cheaply (a
// pointer to a single atomic) so downstream protocol code — an HTTP/2
// keep-alive loop, a body reader that was abandoned mid-stream — can
// mark the connection unhealthy without owning the Conn itself.
type PoisonPill struct {
	poisoned atomic.Bool
}

// NewPoisonPill returns a pill in the healthy state.
func NewPoisonPill() *PoisonPill { return &PoisonPill{} }

// Poison marks the connection dead. Safe to call more than once or
// concurrently.
func (p *PoisonPill) Poison() { p.poisoned.Store(true) }

// Poisoned reports the current state. Uses relaxed/eventual visibility —
// the observer only needs to learn about poisoning before the next
// checkout, not synchronize on it.
func (p *PoisonPill) Poisoned() bool { return p.poisoned.Load() }

// TlsInfo carries the peer certificate extracted from a TLS connection,
// when the client opted into tls_info extraction (spec.md §6).
type TlsInfo struct {
	PeerCertificateDER []byte
}

// PeerCertificate parses the DER-encoded certificate.
func (t *TlsInfo) PeerCertificate() (*x509.Certificate, error) {
	return x509.ParseCertificate(t.PeerCertificateDER)
}

// Conn is an established, typed connection (spec.md §3). It is
// exclusively owned by whichever of {idle pool, in-flight request,
// caller} currently holds it — never aliased.
type Conn struct {
	net.Conn

	// IsProxied is true only when HTTP traffic is forwarded via a plain
	// HTTP proxy without a CONNECT tunnel — it controls whether the
	// HTTP/1 request line uses absolute-form or origin-form.
	IsProxied bool

	// NegotiatedALPN is the ALPN protocol the TLS handshake selected, or
	// empty for a plain connection.
	NegotiatedALPN string

	// Tls is populated only for TLS connections with tls_info extraction
	// enabled.
	Tls *TlsInfo

	// Pill is shared with any protocol-level state (e.g. an HTTP/2
	// keep-alive loop) that may need to declare the connection dead.
	Pill *PoisonPill
}

// NewConn wraps an established net.Conn.
func NewConn(raw net.Conn, isProxied bool) *Conn {
	return &Conn{Conn: raw, IsProxied: isProxied, Pill: NewPoisonPill()}
}

// Poisoned reports whether the connection must not be reused.
func (c *Conn) Poisoned() bool { return c.Pill.Poisoned() }
