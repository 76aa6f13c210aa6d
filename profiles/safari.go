package profiles

import (
	"fmt"
	"strings"

	utls "github.com/refraction-networking/utls"
	http "github.com/saucesteals/fhttp"

	"github.com/corvidhttp/impersonate"
	"github.com/corvidhttp/impersonate/h2shape"
)

// settingEnableConnectProtocol is HTTP/2 SETTINGS_ENABLE_CONNECT_PROTOCOL
// (0x8), which Safari 17+ sends. h2shape.SettingEnableConnectProto
// covers this already; kept named here to mirror the teacher's own
// call-out that fhttp historically lacked the constant.
const settingEnableConnectProtocol = h2shape.SettingEnableConnectProto

// Safari builds an Emulation for Safari at the given version (e.g.
// "17.4", "16.0") on the given platform. Minimum supported version is
// 16. macOS and iPadOS share the desktop TLS fingerprint; iOS uses its
// own. Safari does not send sec-ch-ua client hint headers.
func Safari(version string, platform Platform) (*impersonate.Emulation, error) {
	major, err := parseMajorVersion(version)
	if err != nil {
		return nil, err
	}
	if major < 16 {
		return nil, fmt.Errorf("profiles: safari %s: %w", version, ErrUnsupportedVersion)
	}

	helloID, err := safariHelloID(platform)
	if err != nil {
		return nil, err
	}
	tls, err := fromPreset("safari", helloID)
	if err != nil {
		return nil, err
	}

	hdr, order, err := safariHeaders(version, platform)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("Safari/%s/%s", version, platform)
	return buildEmulation(name, tls, safariHTTP2Options(major), defaultHTTP1(), hdr, order), nil
}

func safariHelloID(platform Platform) (utls.ClientHelloID, error) {
	switch platform {
	case PlatformIOS:
		return utls.HelloIOS_14, nil
	case PlatformMac, PlatformIPadOS:
		return utls.HelloSafari_16_0, nil
	default:
		return utls.ClientHelloID{}, fmt.Errorf("profiles: safari on %s: %w", platform, ErrUnsupportedPlatform)
	}
}

func safariHTTP2Options(major int) *h2shape.Http2Options {
	opts := &h2shape.Http2Options{
		// Safari's unique pseudo-header order: method, scheme, path, authority.
		PseudoHeaderOrder: []h2shape.PseudoHeader{
			h2shape.PseudoMethod, h2shape.PseudoScheme, h2shape.PseudoPath, h2shape.PseudoAuthority,
		},
		InitialWindowSize:    2097152,
		HeaderTableSize:      4096,
		MaxHeaderListSize:    0,
		InitialConnectionWindow: 10485760,
		MaxConcurrentStreams: 100,
		MaxFrameSize:         16384,
		SettingsOrder: []h2shape.SettingID{
			h2shape.SettingHeaderTableSize,
			h2shape.SettingEnablePush,
			h2shape.SettingMaxConcurrentStreams,
			h2shape.SettingInitialWindowSize,
			h2shape.SettingMaxFrameSize,
		},
	}

	if major >= 17 {
		opts.EnableConnectProtocol = true
		opts.SettingsOrder = append(opts.SettingsOrder, settingEnableConnectProtocol)
	}

	return opts
}

// safariHeaders returns Safari's default header set. Safari does not
// send sec-ch-ua client hint headers.
func safariHeaders(version string, platform Platform) (http.Header, []string, error) {
	var ua string
	switch platform {
	case PlatformMac:
		// macOS Safari freezes the OS version at 10_15_7 for privacy.
		ua = fmt.Sprintf("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/%s Safari/605.1.15", version)
	case PlatformIOS:
		iosVer := strings.ReplaceAll(version, ".", "_")
		ua = fmt.Sprintf("Mozilla/5.0 (iPhone; CPU iPhone OS %s like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/%s Mobile/15E148 Safari/604.1", iosVer, version)
	case PlatformIPadOS:
		iosVer := strings.ReplaceAll(version, ".", "_")
		ua = fmt.Sprintf("Mozilla/5.0 (iPad; CPU OS %s like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/%s Mobile/15E148 Safari/604.1", iosVer, version)
	default:
		return nil, nil, fmt.Errorf("profiles: safari on %s: %w", platform, ErrUnsupportedPlatform)
	}

	h := http.Header{}
	order := []string{"accept", "user-agent", "accept-language", "accept-encoding", "connection"}
	h.Set("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("user-agent", ua)
	h.Set("accept-language", "en-US,en;q=0.9")
	h.Set("accept-encoding", "gzip, deflate, br")
	h.Set("connection", "keep-alive")

	return h, order, nil
}
