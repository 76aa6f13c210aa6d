//go:build linux

package connect

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// dialerControl returns a net.Dialer.Control hook that binds the raw
// socket to opts.Interface via SO_BINDTODEVICE before the kernel issues
// connect(2), matching the teacher's per-platform transport dial hooks.
func dialerControl(opts *BindOptions) func(network, address string, c syscall.RawConn) error {
	if opts == nil || opts.Interface == "" {
		return nil
	}
	iface := opts.Interface
	return func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.BindToDevice(int(fd), iface)
		})
		if err != nil {
			return err
		}
		return sockErr
	}
}
