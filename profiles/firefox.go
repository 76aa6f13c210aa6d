package profiles

import (
	"fmt"

	utls "github.com/refraction-networking/utls"
	http "github.com/saucesteals/fhttp"

	"github.com/corvidhttp/impersonate"
	"github.com/corvidhttp/impersonate/h2shape"
)

// Firefox builds an Emulation for desktop Firefox at the given full
// version string (e.g. "120.0"). Minimum supported version is 55.
// Firefox sends no sec-ch-ua client hint headers.
func Firefox(version string, platform Platform) (*impersonate.Emulation, error) {
	major, err := parseMajorVersion(version)
	if err != nil {
		return nil, err
	}
	if major < 55 {
		return nil, fmt.Errorf("profiles: firefox %s: %w", version, ErrUnsupportedVersion)
	}

	tls, err := fromPreset("firefox", firefoxHelloID(major))
	if err != nil {
		return nil, err
	}

	hdr, order, err := firefoxHeaders(version, platform)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("Firefox/%s/%s", version, platform)
	return buildEmulation(name, tls, firefoxHTTP2Options(), defaultHTTP1(), hdr, order), nil
}

func firefoxHelloID(major int) utls.ClientHelloID {
	switch {
	case major < 56:
		return utls.HelloFirefox_55
	case major < 63:
		return utls.HelloFirefox_56
	case major < 65:
		return utls.HelloFirefox_63
	case major < 99:
		return utls.HelloFirefox_65
	case major < 102:
		return utls.HelloFirefox_99
	case major < 105:
		return utls.HelloFirefox_102
	case major < 120:
		return utls.HelloFirefox_105
	default:
		return utls.HelloFirefox_120
	}
}

// firefoxHTTP2Options matches Firefox's distinctive pseudo-header order
// (method, path, authority, scheme, unlike Chromium's method-authority-
// scheme-path) and its stream-13 HEADERS priority.
//
// Real Firefox also opens the connection with a handful of standalone
// PRIORITY frames for streams 3/5/7/9/11/13 (9 depends on 7, 11 on 3,
// the rest on stream 0) before the first request ever goes out. They are
// declared in Priorities below and written on the wire by
// h2shape.PrimingConn, since they aren't a property of any single
// request's HEADERS frame.
func firefoxHTTP2Options() *h2shape.Http2Options {
	return &h2shape.Http2Options{
		PseudoHeaderOrder: []h2shape.PseudoHeader{
			h2shape.PseudoMethod, h2shape.PseudoPath, h2shape.PseudoAuthority, h2shape.PseudoScheme,
		},
		SettingsOrder: []h2shape.SettingID{
			h2shape.SettingHeaderTableSize,
			h2shape.SettingInitialWindowSize,
			h2shape.SettingMaxFrameSize,
		},
		HeaderTableSize:         65536,
		InitialWindowSize:       131072,
		InitialConnectionWindow: 12517377,
		MaxFrameSize:            16384,
		HeadersPriority: &h2shape.StreamDependency{
			StreamID:  13,
			Weight:    41,
			Exclusive: false,
		},
		Priorities: []h2shape.PriorityFrame{
			{StreamID: 3, DependencyID: 0, Weight: 200, Exclusive: false},
			{StreamID: 5, DependencyID: 0, Weight: 100, Exclusive: false},
			{StreamID: 7, DependencyID: 0, Weight: 0, Exclusive: false},
			{StreamID: 9, DependencyID: 7, Weight: 0, Exclusive: false},
			{StreamID: 11, DependencyID: 3, Weight: 0, Exclusive: false},
			{StreamID: 13, DependencyID: 0, Weight: 240, Exclusive: false},
		},
	}
}

func firefoxHeaders(version string, platform Platform) (http.Header, []string, error) {
	var uaPlatform string
	switch platform {
	case PlatformWindows:
		uaPlatform = "Windows NT 10.0; Win64; x64"
	case PlatformMac:
		// Firefox's macOS UA uses dots, not Chromium's underscore form.
		uaPlatform = "Macintosh; Intel Mac OS X 10.15"
	case PlatformLinux:
		uaPlatform = "X11; Linux x86_64"
	default:
		return nil, nil, fmt.Errorf("profiles: firefox on %s: %w", platform, ErrUnsupportedPlatform)
	}

	ua := fmt.Sprintf("Mozilla/5.0 (%s; rv:%s) Gecko/20100101 Firefox/%s", uaPlatform, version, version)

	h := http.Header{}
	order := []string{
		"user-agent", "accept", "accept-language", "accept-encoding",
		"upgrade-insecure-requests", "sec-fetch-dest", "sec-fetch-mode",
		"sec-fetch-site", "sec-fetch-user", "priority", "te",
	}
	h.Set("user-agent", ua)
	h.Set("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	h.Set("accept-language", "en-US,en;q=0.5")
	h.Set("accept-encoding", "gzip, deflate, br")
	h.Set("upgrade-insecure-requests", "1")
	h.Set("sec-fetch-dest", "document")
	h.Set("sec-fetch-mode", "navigate")
	h.Set("sec-fetch-site", "none")
	h.Set("sec-fetch-user", "?1")
	h.Set("priority", "u=0, i")
	h.Set("te", "trailers")

	return h, order, nil
}
