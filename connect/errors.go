package connect

import "fmt"

// TunnelErrorKind enumerates the HTTP-CONNECT-tunnel failure modes of
// spec.md §4.5 step 3, grounded on the teacher's reference
// implementation's tunnel connector.
type TunnelErrorKind int

const (
	TunnelConnectFailed TunnelErrorKind = iota
	TunnelMissingHost
	TunnelProxyAuthRequired
	TunnelHeadersTooLong
	TunnelUnexpectedEOF
	TunnelUnsuccessful
)

// TunnelError is returned by Tunnel when establishing an HTTP CONNECT
// tunnel fails.
type TunnelError struct {
	Kind   TunnelErrorKind
	Status int // HTTP status line the proxy returned, when known
	Cause  error
}

func (e *TunnelError) Error() string {
	switch e.Kind {
	case TunnelMissingHost:
		return "connect: tunnel target has no host"
	case TunnelProxyAuthRequired:
		return "connect: proxy requires authentication (407)"
	case TunnelHeadersTooLong:
		return "connect: proxy CONNECT response exceeded 8192 bytes"
	case TunnelUnexpectedEOF:
		return "connect: proxy closed connection mid-CONNECT-response"
	case TunnelUnsuccessful:
		return fmt.Sprintf("connect: proxy CONNECT failed with status %d", e.Status)
	default:
		return fmt.Sprintf("connect: tunnel dial failed: %v", e.Cause)
	}
}

func (e *TunnelError) Unwrap() error { return e.Cause }

// DialError wraps a DNS, transport, or proxy-negotiation failure that
// isn't a tunnel-specific outcome.
type DialError struct {
	Stage string // "dns", "tcp", "socks4", "socks5", "bind"
	Addr  string
	Cause error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("connect: %s dial to %s failed: %v", e.Stage, e.Addr, e.Cause)
}

func (e *DialError) Unwrap() error { return e.Cause }

// ErrUnsupportedScheme is returned when a proxy URI names a scheme the
// connector doesn't recognize, or a SOCKS5 URI omits a port for a
// non-HTTP scheme (spec.md §9(c) — error rather than guess).
var ErrUnsupportedScheme = fmt.Errorf("connect: unsupported proxy scheme")
