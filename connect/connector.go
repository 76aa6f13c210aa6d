package connect

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/netip"
	"time"

	utls "github.com/refraction-networking/utls"

	"github.com/corvidhttp/impersonate/tlsshape"
)

// Request describes a single connection to establish, combining the
// target authority with the per-dial knobs the rest of this package
// needs (spec.md §4.5's pipeline input).
type Request struct {
	// Scheme is "http" or "https".
	Scheme string
	// Host is the target authority, "example.com:443".
	Host string

	Resolver    Resolver
	ProxyMatch  *ProxyMatcher
	Bind        *BindOptions
	DialTimeout time.Duration

	// Tls is non-nil for an https:// request; it carries the emulated
	// ClientHello shape to present during the handshake.
	Tls *tlsshape.ShapedTLS

	UserAgent string
}

// Dial runs the full connector pipeline — DNS, proxy selection,
// transport establishment (direct, HTTP CONNECT tunnel, or SOCKS), and
// optionally a uTLS handshake — and returns an established Conn.
func Dial(ctx context.Context, req *Request) (*Conn, error) {
	host, port, err := net.SplitHostPort(req.Host)
	portDefaulted := false
	if err != nil {
		host, port = req.Host, defaultPortForScheme(req.Scheme)
		portDefaulted = true
	}
	target := net.JoinHostPort(host, port)

	proxy := req.ProxyMatch.Match(req.Scheme, host)
	if portDefaulted && proxy != nil && (proxy.Scheme == ProxySchemeSOCKS5 || proxy.Scheme == ProxySchemeSOCKS5H) &&
		req.Scheme != "http" && req.Scheme != "https" {
		return nil, ErrUnsupportedScheme
	}

	var raw net.Conn
	var isProxied bool

	if proxy == nil {
		raw, err = dialDirect(ctx, req, host, port)
		if err != nil {
			return nil, err
		}
	} else {
		raw, isProxied, err = dialViaProxy(ctx, req, proxy, target)
		if err != nil {
			return nil, err
		}
	}

	if req.Tls == nil {
		return NewConn(raw, isProxied), nil
	}

	tlsConn, alpn, tlsInfo, err := handshake(ctx, raw, req.Tls)
	if err != nil {
		raw.Close()
		return nil, err
	}
	c := NewConn(tlsConn, isProxied)
	c.NegotiatedALPN = alpn
	c.Tls = tlsInfo
	return c, nil
}

func defaultPortForScheme(scheme string) string {
	if scheme == "https" {
		return "443"
	}
	return "80"
}

func dialDirect(ctx context.Context, req *Request, host, port string) (net.Conn, error) {
	resolver := req.Resolver
	if resolver == nil {
		resolver = DefaultResolver
	}

	if ip := net.ParseIP(host); ip != nil {
		d := newDialer(req)
		conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
		if err != nil {
			return nil, &DialError{Stage: "tcp", Addr: net.JoinHostPort(host, port), Cause: err}
		}
		return conn, nil
	}

	v4, v6, err := Resolve(ctx, resolver, host)
	if err != nil {
		return nil, err
	}
	d := newDialer(req)
	conn, err := HappyEyeballs(ctx, v4, v6, port, req.DialTimeout, func(dctx context.Context, addr netip.Addr, p string) (net.Conn, error) {
		return d.DialContext(dctx, "tcp", net.JoinHostPort(addr.String(), p))
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func newDialer(req *Request) *net.Dialer {
	d := &net.Dialer{Timeout: req.DialTimeout}
	if req.Bind != nil {
		d.Control = dialerControl(req.Bind)
		if req.Bind.LocalAddr != nil {
			d.LocalAddr = req.Bind.LocalAddr
		}
	}
	return d
}

// dialViaProxy routes the connection through proxy, returning the
// established conn and whether the request should be sent in
// absolute-form (true: plain HTTP forwarding; false: a tunnel was
// established, the conn now speaks directly to target).
func dialViaProxy(ctx context.Context, req *Request, proxy *Proxy, target string) (net.Conn, bool, error) {
	d := newDialer(req)

	switch proxy.Scheme {
	case ProxySchemeHTTP, ProxySchemeHTTPS:
		raw, err := d.DialContext(ctx, "tcp", proxy.Host)
		if err != nil {
			return nil, false, &DialError{Stage: "tcp", Addr: proxy.Host, Cause: err}
		}
		if proxy.Scheme == ProxySchemeHTTPS {
			raw = tls.Client(raw, &tls.Config{ServerName: proxyHostname(proxy.Host)})
		}
		if req.Scheme == "https" {
			conn, err := Tunnel(ctx, raw, target, proxy.Auth, req.UserAgent)
			if err != nil {
				return nil, false, err
			}
			return conn, false, nil
		}
		// Plain HTTP over an HTTP proxy: no CONNECT tunnel, the request
		// line carries an absolute URI and the proxy forwards directly.
		return raw, true, nil

	case ProxySchemeSOCKS4, ProxySchemeSOCKS4A:
		raw, err := d.DialContext(ctx, "tcp", proxy.Host)
		if err != nil {
			return nil, false, &DialError{Stage: "tcp", Addr: proxy.Host, Cause: err}
		}
		conn, err := DialSOCKS4(ctx, raw, target, proxy.Auth, proxy.Scheme == ProxySchemeSOCKS4A)
		if err != nil {
			return nil, false, err
		}
		return conn, false, nil

	case ProxySchemeSOCKS5, ProxySchemeSOCKS5H:
		conn, err := DialSOCKS5(ctx, "tcp", proxy.Host, proxy.Auth, target, proxy.Scheme == ProxySchemeSOCKS5H, nil)
		if err != nil {
			return nil, false, err
		}
		return conn, false, nil

	default:
		return nil, false, ErrUnsupportedScheme
	}
}

func proxyHostname(hostport string) string {
	h, _, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport
	}
	return h
}

// handshake runs the uTLS ClientHello against raw, returning the
// negotiated ALPN protocol and extracted peer-certificate info.
func handshake(ctx context.Context, raw net.Conn, shaped *tlsshape.ShapedTLS) (net.Conn, string, *TlsInfo, error) {
	spec, err := shaped.SpecFn()
	if err != nil {
		return nil, "", nil, fmt.Errorf("connect: building client hello: %w", err)
	}

	uconn := utls.UClient(raw, shaped.Config, utls.HelloCustom)
	if err := uconn.ApplyPreset(spec); err != nil {
		return nil, "", nil, fmt.Errorf("connect: applying client hello spec: %w", err)
	}

	if dl, ok := ctx.Deadline(); ok {
		raw.SetDeadline(dl)
		defer raw.SetDeadline(time.Time{})
	}

	if err := uconn.HandshakeContext(ctx); err != nil {
		return nil, "", nil, &DialError{Stage: "tls", Addr: shaped.Config.ServerName, Cause: err}
	}

	state := uconn.ConnectionState()
	var info *TlsInfo
	if len(state.PeerCertificates) > 0 {
		info = &TlsInfo{PeerCertificateDER: state.PeerCertificates[0].Raw}
	}
	return uconn, state.NegotiatedProtocol, info, nil
}
