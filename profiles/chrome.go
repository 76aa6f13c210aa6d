package profiles

import (
	"fmt"

	utls "github.com/refraction-networking/utls"
	http "github.com/saucesteals/fhttp"

	"github.com/corvidhttp/impersonate"
	"github.com/corvidhttp/impersonate/h2shape"
)

// Chrome builds an Emulation for a Chromium-family browser (Chrome,
// Edge, or Brave) at the given full version string (e.g. "124.0.0.0")
// on the given platform. Minimum supported version is 100.
func Chrome(brand Brand, version string, platform Platform) (*impersonate.Emulation, error) {
	major, err := parseMajorVersion(version)
	if err != nil {
		return nil, err
	}
	if major < 100 {
		return nil, fmt.Errorf("profiles: chrome %s: %w", version, ErrUnsupportedVersion)
	}

	tls, err := fromPreset("chrome", chromeHelloID(major))
	if err != nil {
		return nil, err
	}

	hdr, order, err := chromeHeaders(brand, version, major, platform)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s/%s/%s", brand, version, platform)
	return buildEmulation(name, tls, chromeHTTP2Options(major), defaultHTTP1(), hdr, order), nil
}

// chromeHelloID mirrors the teacher's own version-to-preset bracketing;
// each bracket marks a JA3/JA4-significant change in a real Chrome
// release (cipher reordering, PSK introduction, post-quantum key share).
func chromeHelloID(major int) utls.ClientHelloID {
	switch {
	case major < 102:
		return utls.HelloChrome_100
	case major < 106:
		return utls.HelloChrome_102
	case major < 112:
		return utls.HelloChrome_106_Shuffle
	case major < 114:
		return utls.HelloChrome_112_PSK_Shuf
	case major < 115:
		return utls.HelloChrome_114_Padding_PSK_Shuf
	case major < 120:
		return utls.HelloChrome_115_PQ
	case major < 131:
		return utls.HelloChrome_120
	case major < 133:
		return utls.HelloChrome_131
	default:
		return utls.HelloChrome_133
	}
}

func chromeHTTP2Options(major int) *h2shape.Http2Options {
	opts := &h2shape.Http2Options{
		PseudoHeaderOrder: []h2shape.PseudoHeader{
			h2shape.PseudoMethod, h2shape.PseudoAuthority, h2shape.PseudoScheme, h2shape.PseudoPath,
		},
		InitialWindowSize:       6291456,
		InitialConnectionWindow: 15728640,
		HeaderTableSize:         65536,
		MaxConcurrentStreams:    1000,
		HeadersPriority: &h2shape.StreamDependency{
			StreamID:  0,
			Weight:    255,
			Exclusive: true,
		},
	}

	switch {
	case major < 107:
		opts.MaxHeaderListSize = 100000
		opts.SettingsOrder = []h2shape.SettingID{
			h2shape.SettingHeaderTableSize,
			h2shape.SettingMaxConcurrentStreams,
			h2shape.SettingInitialWindowSize,
			h2shape.SettingMaxHeaderListSize,
		}
	case major < 120:
		opts.MaxHeaderListSize = 262144
		opts.EnablePush = false
		opts.SettingsOrder = []h2shape.SettingID{
			h2shape.SettingHeaderTableSize,
			h2shape.SettingEnablePush,
			h2shape.SettingMaxConcurrentStreams,
			h2shape.SettingInitialWindowSize,
			h2shape.SettingMaxHeaderListSize,
		}
	default:
		opts.MaxHeaderListSize = 262144
		opts.EnablePush = false
		opts.SettingsOrder = []h2shape.SettingID{
			h2shape.SettingHeaderTableSize,
			h2shape.SettingEnablePush,
			h2shape.SettingInitialWindowSize,
			h2shape.SettingMaxHeaderListSize,
		}
	}

	return opts
}

// chromeHeaders returns the default header set and its emission order
// for a given brand/version/platform, including the sec-ch-ua client
// hint trio real Chromium browsers send on every request.
func chromeHeaders(brand Brand, version string, major int, platform Platform) (http.Header, []string, error) {
	var uaPlatform, hintPlatform string
	switch platform {
	case PlatformWindows:
		uaPlatform, hintPlatform = "Windows NT 10.0; Win64; x64", "Windows"
	case PlatformMac:
		uaPlatform, hintPlatform = "Macintosh; Intel Mac OS X 10_15_7", "macOS"
	case PlatformLinux:
		uaPlatform, hintPlatform = "X11; Linux x86_64", "Linux"
	default:
		return nil, nil, fmt.Errorf("profiles: chrome on %s: %w", platform, ErrUnsupportedPlatform)
	}

	ua := fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36", uaPlatform, version)
	if brand == BrandEdge {
		ua += fmt.Sprintf(" Edg/%s", version)
	}

	h := http.Header{}
	order := []string{
		"sec-ch-ua", "sec-ch-ua-mobile", "sec-ch-ua-platform",
		"upgrade-insecure-requests", "user-agent", "accept",
		"sec-fetch-site", "sec-fetch-mode", "sec-fetch-user", "sec-fetch-dest",
		"accept-encoding", "accept-language",
	}
	h.Set("sec-ch-ua", clientHintUA(brand, major))
	h.Set("sec-ch-ua-mobile", "?0")
	h.Set("sec-ch-ua-platform", fmt.Sprintf(`"%s"`, hintPlatform))
	h.Set("upgrade-insecure-requests", "1")
	h.Set("user-agent", ua)
	h.Set("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7")
	h.Set("sec-fetch-site", "none")
	h.Set("sec-fetch-mode", "navigate")
	h.Set("sec-fetch-user", "?1")
	h.Set("sec-fetch-dest", "document")
	h.Set("accept-encoding", "gzip, deflate, br, zstd")
	h.Set("accept-language", "en-US,en;q=0.9")

	return h, order, nil
}

// clientHintUA builds the sec-ch-ua brand list real Chromium browsers
// send: a GREASE brand first (RFC-equivalent convention to keep server
// parsers honest about unknown brands), then for Google Chrome the
// underlying Chromium version followed by the brand, and for any other
// brand the brand followed by the Chromium version.
func clientHintUA(brand Brand, major int) string {
	chromiumEntry := fmt.Sprintf(`"Chromium";v="%d"`, major)
	brandEntry := fmt.Sprintf(`"%s";v="%d"`, brand, major)
	if brand == BrandChrome {
		return fmt.Sprintf(`"Not_A Brand";v="8", %s, %s`, chromiumEntry, brandEntry)
	}
	return fmt.Sprintf(`"Not_A Brand";v="8", %s, %s`, brandEntry, chromiumEntry)
}
