// Package pool implements the connection pool (C7): idle-connection
// reuse keyed by destination authority, proxy identity, and emulation
// fingerprint, so two clients impersonating different browsers never
// share a socket even when dialing the same host through the same
// proxy.
package pool

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/corvidhttp/impersonate/connect"
)

// Key identifies a class of interchangeable connections. Connections
// are only ever handed back out to a checkout bearing the identical
// Key — in particular Fingerprint, a hash of the full TLS+HTTP1+HTTP2
// option set, so differently-shaped emulations targeting the same host
// never collide on the wire.
type Key struct {
	Scheme        string
	Authority     string // host:port
	ProxyIdentity string // empty for direct connections
	Fingerprint   string // hex-encoded hash, see Fingerprint in the root package
}

// DialFunc establishes a brand-new connection for key. The pool calls
// this at most once concurrently per key (in-flight dials are
// coalesced).
type DialFunc func(ctx context.Context, key Key) (*connect.Conn, error)

type idleConn struct {
	conn     *connect.Conn
	key      Key
	idleFrom time.Time
	elem     *list.Element // this entry's node in bucket's lru list
}

type bucket struct {
	lru *list.List // of *idleConn, front = most recently returned
}

// Pool is a concurrency-safe set of idle connections grouped by Key,
// with bounded per-key idle depth and background idle-timeout reaping.
type Pool struct {
	mu       sync.Mutex
	buckets  map[Key]*bucket
	inflight map[Key]*dialWaiters

	maxIdlePerHost int
	idleTimeout    time.Duration

	closeCh chan struct{}
	closeWg sync.WaitGroup
	closed  bool
}

// dialWaiters coalesces concurrent checkouts for a key with no idle
// connection available: only the first caller dials; the rest wait on
// the same result.
type dialWaiters struct {
	done chan struct{}
	conn *connect.Conn
	err  error
}

// Options configures a new Pool.
type Options struct {
	// MaxIdlePerHost bounds the number of idle connections retained per
	// Key. Zero (the default) is treated as "use 2"; negative disables
	// idle retention entirely (every Checkin closes the connection).
	MaxIdlePerHost int
	// IdleTimeout is how long an idle connection may sit before the
	// reaper closes it. Zero disables reaping.
	IdleTimeout time.Duration
	// ReapInterval is how often the background reaper scans for expired
	// idle connections. Defaults to IdleTimeout/2, floor 1s.
	ReapInterval time.Duration
}

// New constructs a Pool and starts its background reaper goroutine.
// Call Close to stop it and evict all idle connections.
func New(opts Options) *Pool {
	maxIdle := opts.MaxIdlePerHost
	if maxIdle == 0 {
		maxIdle = 2
	}
	if maxIdle < 0 {
		maxIdle = 0
	}
	p := &Pool{
		buckets:        make(map[Key]*bucket),
		inflight:       make(map[Key]*dialWaiters),
		maxIdlePerHost: maxIdle,
		idleTimeout:    opts.IdleTimeout,
		closeCh:        make(chan struct{}),
	}

	if p.idleTimeout > 0 {
		interval := opts.ReapInterval
		if interval <= 0 {
			interval = p.idleTimeout / 2
			if interval < time.Second {
				interval = time.Second
			}
		}
		p.closeWg.Add(1)
		go p.reapLoop(interval)
	}

	return p
}
