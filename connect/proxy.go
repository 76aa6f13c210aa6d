package connect

import (
	"net"
	"net/url"
	"os"
	"strings"
)

// ProxyScheme identifies the wire protocol a Proxy uses to reach its
// target, independent of the scheme of the request being proxied.
type ProxyScheme int

const (
	ProxySchemeHTTP ProxyScheme = iota
	ProxySchemeHTTPS
	ProxySchemeSOCKS4
	ProxySchemeSOCKS4A
	ProxySchemeSOCKS5
	ProxySchemeSOCKS5H
)

// Proxy is a resolved upstream proxy a connection should be routed
// through.
type Proxy struct {
	Scheme ProxyScheme
	Host   string // host:port
	Auth   *ProxyAuth
}

// ParseProxyURL parses a proxy URI of the form
// scheme://[user[:pass]@]host[:port], defaulting the port by scheme.
func ParseProxyURL(raw string) (*Proxy, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	var scheme ProxyScheme
	switch strings.ToLower(u.Scheme) {
	case "http":
		scheme = ProxySchemeHTTP
	case "https":
		scheme = ProxySchemeHTTPS
	case "socks4":
		scheme = ProxySchemeSOCKS4
	case "socks4a":
		scheme = ProxySchemeSOCKS4A
	case "socks5":
		scheme = ProxySchemeSOCKS5
	case "socks5h", "socks":
		scheme = ProxySchemeSOCKS5H
	default:
		return nil, ErrUnsupportedScheme
	}

	host := u.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, defaultProxyPort(scheme))
	}

	return &Proxy{Scheme: scheme, Host: host, Auth: ProxyURLAuth(u)}, nil
}

func defaultProxyPort(s ProxyScheme) string {
	switch s {
	case ProxySchemeHTTPS:
		return "443"
	case ProxySchemeSOCKS4, ProxySchemeSOCKS4A, ProxySchemeSOCKS5, ProxySchemeSOCKS5H:
		return "1080"
	default:
		return "80"
	}
}

// ProxyMatcher resolves the proxy (if any) that should be used for a
// given target host/scheme, implementing the HTTP_PROXY / HTTPS_PROXY /
// ALL_PROXY / NO_PROXY convention (spec.md §4.5 "proxy matching").
type ProxyMatcher struct {
	HTTPProxy  *Proxy
	HTTPSProxy *Proxy
	AllProxy   *Proxy
	NoProxy    []noProxyRule
}

// ProxyMatcherFromEnvironment builds a ProxyMatcher from the
// conventional environment variables, preferring the lowercase form and
// falling back to uppercase, matching net/http's http.ProxyFromEnvironment
// precedent.
func ProxyMatcherFromEnvironment() *ProxyMatcher {
	m := &ProxyMatcher{}
	if p := firstEnv("http_proxy", "HTTP_PROXY"); p != "" {
		m.HTTPProxy, _ = ParseProxyURL(p)
	}
	if p := firstEnv("https_proxy", "HTTPS_PROXY"); p != "" {
		m.HTTPSProxy, _ = ParseProxyURL(p)
	}
	if p := firstEnv("all_proxy", "ALL_PROXY"); p != "" {
		m.AllProxy, _ = ParseProxyURL(p)
	}
	m.NoProxy = parseNoProxy(firstEnv("no_proxy", "NO_PROXY"))
	return m
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// Match returns the proxy to use for a request to host (no port) over
// scheme ("http" or "https"), or nil for a direct connection.
func (m *ProxyMatcher) Match(scheme, host string) *Proxy {
	if m == nil {
		return nil
	}
	if matchesNoProxy(host, m.NoProxy) {
		return nil
	}
	switch strings.ToLower(scheme) {
	case "https":
		if m.HTTPSProxy != nil {
			return m.HTTPSProxy
		}
	default:
		if m.HTTPProxy != nil {
			return m.HTTPProxy
		}
	}
	return m.AllProxy
}

type noProxyRule struct {
	domain string // matches itself and its subdomains (with or without a leading "."); "*" means match all
	port   string // empty means any port
}

func parseNoProxy(v string) []noProxyRule {
	if v == "*" {
		return []noProxyRule{{domain: "*"}}
	}
	var rules []noProxyRule
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		domain, port := part, ""
		if h, p, err := net.SplitHostPort(part); err == nil {
			domain, port = h, p
		}
		domain = strings.TrimPrefix(domain, "*")
		rules = append(rules, noProxyRule{domain: strings.ToLower(domain), port: port})
	}
	return rules
}

func matchesNoProxy(host string, rules []noProxyRule) bool {
	h, port, err := net.SplitHostPort(host)
	if err != nil {
		h = host
	}
	h = strings.ToLower(h)
	for _, r := range rules {
		if r.domain == "*" {
			return true
		}
		if r.port != "" && r.port != port {
			continue
		}
		if strings.HasPrefix(r.domain, ".") {
			if strings.HasSuffix(h, r.domain) || h == strings.TrimPrefix(r.domain, ".") {
				return true
			}
			continue
		}
		if h == r.domain || strings.HasSuffix(h, "."+r.domain) {
			return true
		}
	}
	return false
}

// hostPort splits host (optionally "host:port") applying defaultPort
// when no port is present.
func hostPort(host, defaultPort string) (string, string) {
	if h, p, err := net.SplitHostPort(host); err == nil {
		return h, p
	}
	return host, defaultPort
}
