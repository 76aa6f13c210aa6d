//go:build darwin

package connect

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// dialerControl returns a net.Dialer.Control hook that binds the raw
// socket to opts.Interface via IP_BOUND_IF/IPV6_BOUND_IF, Darwin's
// equivalent of Linux's SO_BINDTODEVICE.
func dialerControl(opts *BindOptions) func(network, address string, c syscall.RawConn) error {
	if opts == nil || opts.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(opts.Interface)
	if err != nil {
		return func(network, address string, c syscall.RawConn) error { return err }
	}
	index := iface.Index
	return func(network, address string, c syscall.RawConn) error {
		var sockErr error
		ctrlErr := c.Control(func(fd uintptr) {
			if network == "tcp6" || network == "udp6" {
				sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_BOUND_IF, index)
			} else {
				sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_BOUND_IF, index)
			}
		})
		if ctrlErr != nil {
			return ctrlErr
		}
		return sockErr
	}
}
