package h2shape

import (
	"context"
	"time"
)

// Poisoner marks a connection as unfit for pool reuse. connect.PoisonPill
// implements this; h2shape depends only on the interface rather than
// importing the connect package.
type Poisoner interface {
	Poison()
}

// Pinger issues an HTTP/2 PING and reports whether the ACK arrived
// before ctx is done. The concrete implementation is the per-connection
// http2.ClientConn the dispatcher already holds.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KeepAlive runs PING/ACK cycles at opts.KeepAliveInterval against conn
// and poisons poison when an ACK doesn't arrive within
// opts.KeepAliveTimeout, per spec.md §4.2's keep-alive semantics. It
// returns immediately if KeepAliveInterval is zero (disabled). The
// caller is expected to run this in its own goroutine and cancel ctx
// when the connection is checked back into the pool or torn down.
func KeepAlive(ctx context.Context, opts *Http2Options, conn Pinger, poison Poisoner, idle func() bool) {
	if opts.KeepAliveInterval <= 0 {
		return
	}
	interval := time.Duration(opts.KeepAliveInterval)
	timeout := time.Duration(opts.KeepAliveTimeout)
	if timeout <= 0 {
		timeout = interval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if idle != nil && idle() && !opts.KeepAliveWhileIdle {
				continue
			}
			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				poison.Poison()
				return
			}
		}
	}
}
