// Package profiles builds ready-to-use Emulation values for specific
// browser and HTTP-library fingerprints, the way the teacher's own
// Chromium/Firefox/Safari constructors did for a *http.Transport, but
// returning an immutable *impersonate.Emulation instead of mutating one.
package profiles

import (
	"fmt"
	"strconv"
	"strings"

	utls "github.com/refraction-networking/utls"
	http "github.com/saucesteals/fhttp"

	"github.com/corvidhttp/impersonate"
	"github.com/corvidhttp/impersonate/h1shape"
	"github.com/corvidhttp/impersonate/h2shape"
	"github.com/corvidhttp/impersonate/headers"
	"github.com/corvidhttp/impersonate/tlsshape"
)

// Platform names the OS a profile's default headers and TLS fingerprint
// are built for. Not every profile supports every platform.
type Platform string

const (
	PlatformWindows Platform = "win"
	PlatformMac     Platform = "mac"
	PlatformLinux   Platform = "linux"
	PlatformIOS     Platform = "ios"
	PlatformIPadOS  Platform = "ipados"
	PlatformAndroid Platform = "android"
)

// Brand names a Chromium-family browser brand, since Chrome, Edge, and
// Brave share one TLS/HTTP2 fingerprint generator but diverge in their
// User-Agent and sec-ch-ua strings.
type Brand string

const (
	BrandChrome Brand = "Google Chrome"
	BrandEdge   Brand = "Microsoft Edge"
	BrandBrave  Brand = "Brave"
)

// ErrUnsupportedVersion reports a version below a profile's floor.
var ErrUnsupportedVersion = fmt.Errorf("profiles: unsupported version")

// ErrUnsupportedPlatform reports a (profile, platform) pair that does
// not exist for real browsers (e.g. Safari on Windows).
var ErrUnsupportedPlatform = fmt.Errorf("profiles: unsupported platform")

// fromPreset wraps tlsshape.FromUtlsPreset with the profile name in any
// error, since a resolution failure here means the vendored utls
// release no longer carries that preset.
func fromPreset(profile string, id utls.ClientHelloID) (*tlsshape.TlsOptions, error) {
	opts, err := tlsshape.FromUtlsPreset(id)
	if err != nil {
		return nil, fmt.Errorf("profiles: %s: %w", profile, err)
	}
	return opts, nil
}

// defaultHTTP1 is shared by every browser profile: real browsers do not
// exercise the HTTP/1 leniency knobs, only their ordering/casing ones,
// and none of the profiles in this package needs anything beyond the
// conservative baseline.
func defaultHTTP1() *h1shape.Http1Options {
	return h1shape.DefaultHttp1Options()
}

// buildEmulation assembles an Emulation from its wire shapes and a set
// of default headers, registering each header name with an
// OriginalHeaders registry in headerOrder so Emit preserves that exact
// order and casing on the wire.
func buildEmulation(name string, tls *tlsshape.TlsOptions, h2 *h2shape.Http2Options, h1 *h1shape.Http1Options, hdr http.Header, headerOrder []string) *impersonate.Emulation {
	original := headers.New()
	for _, n := range headerOrder {
		original.Insert(n)
	}
	return &impersonate.Emulation{
		Name:           name,
		Tls:            tls,
		Http1:          h1,
		Http2:          h2,
		DefaultHeaders: hdr,
		Original:       original,
	}
}

// parseMajorVersion extracts the major version number from a string
// like "137.0.0.0" or "18.3".
func parseMajorVersion(version string) (int, error) {
	majorStr := strings.SplitN(version, ".", 2)[0]
	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return 0, fmt.Errorf("profiles: parsing major version %q: %w", version, err)
	}
	return major, nil
}
