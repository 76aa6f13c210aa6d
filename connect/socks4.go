package connect

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"
)

// socks4 request/reply constants, RFC-less but stable since the
// original SOCKS4 memo (no RFC number was ever assigned).
const (
	socks4Version    = 0x04
	socks4ConnectCmd = 0x01
	socks4Granted    = 0x5a
)

// DialSOCKS4 establishes a SOCKS4 (or SOCKS4a, when resolveRemotely is
// true) connection to target over raw, which must already be connected
// to the SOCKS server. target is host:port; for SOCKS4a, host is sent
// as a domain name instead of a resolved IP.
func DialSOCKS4(ctx context.Context, raw net.Conn, target string, auth *ProxyAuth, resolveRemotely bool) (net.Conn, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		raw.Close()
		return nil, &DialError{Stage: "socks4", Addr: target, Cause: err}
	}
	port, err := parsePort(portStr)
	if err != nil {
		raw.Close()
		return nil, &DialError{Stage: "socks4", Addr: target, Cause: err}
	}

	if dl, ok := ctx.Deadline(); ok {
		raw.SetDeadline(dl)
	}

	userID := ""
	if auth != nil {
		userID = auth.Username
	}

	req := []byte{socks4Version, socks4ConnectCmd, byte(port >> 8), byte(port)}

	ip := net.ParseIP(host)
	useDomain := resolveRemotely && (ip == nil || ip.To4() == nil)
	if useDomain {
		// SOCKS4a: IP field is 0.0.0.x (x != 0) as a "invalid IP" marker,
		// followed by userid\0, then the domain name\0.
		req = append(req, 0, 0, 0, 1)
	} else {
		if ip == nil {
			raw.Close()
			return nil, &DialError{Stage: "socks4", Addr: target, Cause: fmt.Errorf("socks4 requires a resolved IPv4 address")}
		}
		v4 := ip.To4()
		if v4 == nil {
			raw.Close()
			return nil, &DialError{Stage: "socks4", Addr: target, Cause: fmt.Errorf("socks4 does not support IPv6")}
		}
		req = append(req, v4...)
	}
	req = append(req, []byte(userID)...)
	req = append(req, 0)
	if useDomain {
		req = append(req, []byte(host)...)
		req = append(req, 0)
	}

	if _, err := raw.Write(req); err != nil {
		raw.Close()
		return nil, &DialError{Stage: "socks4", Addr: target, Cause: err}
	}

	reply := make([]byte, 8)
	if _, err := io.ReadFull(raw, reply); err != nil {
		raw.Close()
		return nil, &DialError{Stage: "socks4", Addr: target, Cause: err}
	}
	if reply[1] != socks4Granted {
		raw.Close()
		return nil, &DialError{Stage: "socks4", Addr: target, Cause: fmt.Errorf("socks4 request rejected, code 0x%02x", reply[1])}
	}

	raw.SetDeadline(time.Time{})
	return raw, nil
}

func parsePort(s string) (uint16, error) {
	var p uint16
	_, err := fmt.Sscanf(s, "%d", &p)
	return p, err
}
