//go:build !linux && !darwin

package connect

import "syscall"

// dialerControl is a no-op on platforms with no interface-bind syscall
// equivalent wired up; BindOptions.Interface is silently ignored rather
// than erroring, since most callers set it defensively and don't run on
// these platforms.
func dialerControl(opts *BindOptions) func(network, address string, c syscall.RawConn) error {
	return nil
}
