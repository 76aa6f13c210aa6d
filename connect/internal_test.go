package connect

import "testing"

func TestMatchesNoProxySuffix(t *testing.T) {
	rules := parseNoProxy("example.com,.internal.net")
	cases := map[string]bool{
		"example.com:443":     true,
		"api.example.com:443": true,
		"foo.internal.net:80": true,
		"internal.net:80":     true,
		"other.com:80":        false,
	}
	for host, want := range cases {
		if got := matchesNoProxy(host, rules); got != want {
			t.Errorf("matchesNoProxy(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestMatchesNoProxyWildcard(t *testing.T) {
	rules := parseNoProxy("*")
	if !matchesNoProxy("anything.com:443", rules) {
		t.Fatal("expected wildcard no_proxy to match everything")
	}
}
