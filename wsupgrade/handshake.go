// Package wsupgrade implements the WebSocket upgrade handshake (C10):
// the HTTP/1.1 Upgrade path and the HTTP/2 extended-CONNECT (RFC 8441)
// path, followed by a minimal RFC 6455 client-side frame codec.
package wsupgrade

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"

	http "github.com/saucesteals/fhttp"
)

// websocketGUID is the fixed RFC 6455 §1.3 accept-key salt.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// HandshakeRequest describes the client's half of the upgrade.
type HandshakeRequest struct {
	URL            string
	Subprotocols   []string
	Header         http.Header
	UseExtendedConnect bool // true selects the RFC 8441 HTTP/2 path
}

// HandshakeResult carries what the server agreed to.
type HandshakeResult struct {
	Subprotocol string
	Extensions  []string
}

// NewKey generates a fresh, random Sec-WebSocket-Key value, base64 of
// 16 random bytes per RFC 6455 §4.1.
func NewKey() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("wsupgrade: generating key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw[:]), nil
}

// AcceptValue computes the expected Sec-WebSocket-Accept value for key,
// the fixed five-step RFC 6455 §1.3 formula: SHA-1(key + GUID), base64.
func AcceptValue(key string) string {
	h := sha1.New()
	h.Write([]byte(key))
	h.Write([]byte(websocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ValidateAccept reports whether got matches the value the server
// must return for key.
func ValidateAccept(key, got string) bool {
	return got == AcceptValue(key)
}

// BuildUpgradeRequest constructs the HTTP/1.1 Upgrade request for req,
// per RFC 6455 §4.1, using key as the freshly generated
// Sec-WebSocket-Key.
func BuildUpgradeRequest(req *HandshakeRequest, key string) (*http.Request, error) {
	httpReq, err := http.NewRequest(http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("wsupgrade: building request: %w", err)
	}
	if req.Header != nil {
		for k, v := range req.Header {
			httpReq.Header[k] = v
		}
	}
	httpReq.Header.Set("Upgrade", "websocket")
	httpReq.Header.Set("Connection", "Upgrade")
	httpReq.Header.Set("Sec-WebSocket-Version", "13")
	httpReq.Header.Set("Sec-WebSocket-Key", key)
	if len(req.Subprotocols) > 0 {
		httpReq.Header.Set("Sec-WebSocket-Protocol", strings.Join(req.Subprotocols, ", "))
	}
	return httpReq, nil
}

// ValidateUpgradeResponse checks resp against RFC 6455 §4.1's required
// 101 Switching Protocols handshake, validates Sec-WebSocket-Accept
// against key, and negotiates the subprotocol per spec.md §4.9's rule:
// the server's echoed Sec-WebSocket-Protocol value must be one of the
// client's offered subprotocols, or absent entirely.
func ValidateUpgradeResponse(resp *http.Response, key string, offered []string) (*HandshakeResult, error) {
	if resp.StatusCode != http.StatusSwitchingProtocols {
		return nil, fmt.Errorf("wsupgrade: server returned %d, expected 101", resp.StatusCode)
	}
	if !strings.EqualFold(resp.Header.Get("Upgrade"), "websocket") {
		return nil, fmt.Errorf("wsupgrade: missing or invalid Upgrade header")
	}
	if !headerContainsToken(resp.Header.Get("Connection"), "upgrade") {
		return nil, fmt.Errorf("wsupgrade: missing or invalid Connection header")
	}
	accept := resp.Header.Get("Sec-WebSocket-Accept")
	if !ValidateAccept(key, accept) {
		return nil, fmt.Errorf("wsupgrade: Sec-WebSocket-Accept mismatch")
	}

	result := &HandshakeResult{}
	if proto := resp.Header.Get("Sec-WebSocket-Protocol"); proto != "" {
		if !contains(offered, proto) {
			return nil, fmt.Errorf("wsupgrade: server selected unoffered subprotocol %q", proto)
		}
		result.Subprotocol = proto
	}
	return result, nil
}

// BuildExtendedConnectRequest constructs the request for an HTTP/2
// extended CONNECT (RFC 8441 §4): method CONNECT on req.URL with
// Sec-WebSocket-Version, any offered subprotocols and req.Header, used
// instead of the HTTP/1.1 Upgrade dance when the underlying connection
// negotiated h2 and the server advertised SETTINGS_ENABLE_CONNECT_PROTOCOL.
// It does not set the ":protocol: websocket" pseudo-header.
func BuildExtendedConnectRequest(req *HandshakeRequest) (*http.Request, error) {
	httpReq, err := http.NewRequest(http.MethodConnect, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("wsupgrade: building extended-connect request: %w", err)
	}
	httpReq.Proto = "HTTP/2.0"
	httpReq.Header.Set("Sec-WebSocket-Version", "13")
	if len(req.Subprotocols) > 0 {
		httpReq.Header.Set("Sec-WebSocket-Protocol", strings.Join(req.Subprotocols, ", "))
	}
	// The fhttp/http2 fork recognizes ":protocol" via
	// http.Request.Header's reserved pseudo-header plumbing when Method
	// is CONNECT and a non-empty URL.Scheme is set; callers using the h2
	// transport directly set req.URL.Scheme = "https" and attach
	// ":protocol" = "websocket" the same way h2shape orders other
	// pseudo-headers.
	if req.Header != nil {
		for k, v := range req.Header {
			httpReq.Header[k] = v
		}
	}
	return httpReq, nil
}

// ValidateExtendedConnectResponse checks the RFC 8441 response: a plain
// 200 OK (not 101 — extended CONNECT has no status-line upgrade dance),
// with the same subprotocol negotiation rule as the HTTP/1.1 path.
func ValidateExtendedConnectResponse(resp *http.Response, offered []string) (*HandshakeResult, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wsupgrade: server returned %d, expected 200", resp.StatusCode)
	}
	result := &HandshakeResult{}
	if proto := resp.Header.Get("Sec-WebSocket-Protocol"); proto != "" {
		if !contains(offered, proto) {
			return nil, fmt.Errorf("wsupgrade: server selected unoffered subprotocol %q", proto)
		}
		result.Subprotocol = proto
	}
	return result, nil
}

func headerContainsToken(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
