package connect

import "net"

// BindOptions controls which local network path a dialed connection
// takes, per spec.md §4.5 "per-OS TCP bind options".
type BindOptions struct {
	// LocalAddr, if set, is bound as the dialer's local address.
	LocalAddr net.Addr

	// Interface, if non-empty, binds the socket to a named network
	// interface (SO_BINDTODEVICE on Linux, IP_BOUND_IF on Darwin).
	// Ignored on platforms with no equivalent.
	Interface string
}

// dialerControl is implemented per-OS in bind_linux.go /
// bind_darwin.go / bind_other.go, each setting a net.Dialer.Control
// hook that performs the raw-socket bind before connect(2) runs.
