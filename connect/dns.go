package connect

import (
	"context"
	"net"
	"net/netip"
	"time"
)

// Resolver is the pluggable DNS lookup the connector depends on. The
// default, DefaultResolver, wraps net.DefaultResolver; callers may
// inject a custom resolver (spec.md §6 "DNS resolver (pluggable)").
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// DefaultResolver is the stdlib-backed resolver used when the client
// configures none.
var DefaultResolver Resolver = stdlibResolver{}

type stdlibResolver struct{}

func (stdlibResolver) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	return net.DefaultResolver.LookupNetIP(ctx, network, host)
}

// HappyEyeballsTimeout is the default stagger between attempting the
// preferred address family and also attempting the other, per spec.md
// §4.5 step 1.
const HappyEyeballsTimeout = 300 * time.Millisecond

// Resolve looks up host and partitions the results by address family,
// matching spec.md §4.5 step 1. An empty result set is an error.
func Resolve(ctx context.Context, r Resolver, host string) (v4, v6 []netip.Addr, err error) {
	addrs, err := r.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, nil, &DialError{Stage: "dns", Addr: host, Cause: err}
	}
	if len(addrs) == 0 {
		return nil, nil, &DialError{Stage: "dns", Addr: host, Cause: errNoAddresses}
	}
	for _, a := range addrs {
		if a.Is4() || a.Is4In6() {
			v4 = append(v4, a)
		} else {
			v6 = append(v6, a)
		}
	}
	return v4, v6, nil
}

var errNoAddresses = &dnsEmptyError{}

type dnsEmptyError struct{}

func (*dnsEmptyError) Error() string { return "no addresses returned" }

// DialFunc dials a single resolved address.
type DialFunc func(ctx context.Context, addr netip.Addr, port string) (net.Conn, error)

// HappyEyeballs attempts the preferred family first (v4 per RFC 8305's
// common default of "whichever resolved first", here simplified to "v4
// first" to match the teacher's net.Dialer-based transport, which has no
// family preference signal of its own); after timeout it also starts
// the other family. First success wins; the loser is cancelled.
func HappyEyeballs(ctx context.Context, v4, v6 []netip.Addr, port string, timeout time.Duration, dial DialFunc) (net.Conn, error) {
	if timeout <= 0 {
		timeout = HappyEyeballsTimeout
	}
	primary, secondary := v4, v6
	if len(primary) == 0 {
		primary, secondary = v6, v4
	}

	type result struct {
		conn net.Conn
		err  error
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan result, 2)
	attempt := func(addrs []netip.Addr) {
		if len(addrs) == 0 {
			results <- result{nil, &DialError{Stage: "tcp", Addr: port, Cause: errNoAddresses}}
			return
		}
		conn, err := dialFirst(attemptCtx, addrs, port, dial)
		results <- result{conn, err}
	}

	go attempt(primary)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var first result
	gotFirst := false
	select {
	case first = <-results:
		gotFirst = true
	case <-timer.C:
	}

	if gotFirst && first.err == nil {
		return first.conn, nil
	}

	go attempt(secondary)

	// Wait for whichever of the (up to two) remaining attempts succeeds
	// first; if both fail, surface the error of the attempt that failed last.
	pending := 1
	if !gotFirst {
		pending = 2
	}
	var lastErr error
	if gotFirst {
		lastErr = first.err
	}
	for i := 0; i < pending; i++ {
		r := <-results
		if r.err == nil {
			cancel()
			return r.conn, nil
		}
		lastErr = r.err
	}
	return nil, lastErr
}

func dialFirst(ctx context.Context, addrs []netip.Addr, port string, dial DialFunc) (net.Conn, error) {
	var lastErr error
	for _, a := range addrs {
		conn, err := dial(ctx, a, port)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
