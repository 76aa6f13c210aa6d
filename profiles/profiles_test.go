package profiles_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidhttp/impersonate/profiles"
)

func TestChromeBuildsEmulation(t *testing.T) {
	emu, err := profiles.Chrome(profiles.BrandChrome, "124.0.0.0", profiles.PlatformWindows)
	require.NoError(t, err)
	assert.NotNil(t, emu.Tls)
	assert.NotEmpty(t, emu.Tls.CipherList)
	assert.Equal(t, "?0", emu.DefaultHeaders.Get("sec-ch-ua-mobile"))
	assert.Contains(t, emu.DefaultHeaders.Get("sec-ch-ua"), "Google Chrome")
	assert.True(t, emu.Original.Has("sec-ch-ua"))
}

func TestChromeEdgeUsesEdgSuffix(t *testing.T) {
	emu, err := profiles.Chrome(profiles.BrandEdge, "124.0.0.0", profiles.PlatformWindows)
	require.NoError(t, err)
	assert.Contains(t, emu.DefaultHeaders.Get("user-agent"), "Edg/124.0.0.0")
}

func TestChromeRejectsOldVersion(t *testing.T) {
	_, err := profiles.Chrome(profiles.BrandChrome, "80.0.0.0", profiles.PlatformWindows)
	assert.ErrorIs(t, err, profiles.ErrUnsupportedVersion)
}

func TestChromeRejectsUnsupportedPlatform(t *testing.T) {
	_, err := profiles.Chrome(profiles.BrandChrome, "124.0.0.0", profiles.PlatformIOS)
	assert.ErrorIs(t, err, profiles.ErrUnsupportedPlatform)
}

func TestFirefoxOmitsClientHints(t *testing.T) {
	emu, err := profiles.Firefox("120.0", profiles.PlatformLinux)
	require.NoError(t, err)
	assert.Empty(t, emu.DefaultHeaders.Get("sec-ch-ua"))
	assert.Contains(t, emu.DefaultHeaders.Get("user-agent"), "rv:120.0")
	assert.NotEmpty(t, emu.Http2.Priorities)
}

func TestFirefoxRejectsOldVersion(t *testing.T) {
	_, err := profiles.Firefox("40.0", profiles.PlatformLinux)
	assert.ErrorIs(t, err, profiles.ErrUnsupportedVersion)
}

func TestSafariIOSUsesIOSFingerprint(t *testing.T) {
	emu, err := profiles.Safari("17.4", profiles.PlatformIOS)
	require.NoError(t, err)
	assert.Contains(t, emu.DefaultHeaders.Get("user-agent"), "iPhone")
	assert.Empty(t, emu.DefaultHeaders.Get("sec-ch-ua"))
}

func TestSafariRejectsWindows(t *testing.T) {
	_, err := profiles.Safari("17.4", profiles.PlatformWindows)
	assert.ErrorIs(t, err, profiles.ErrUnsupportedPlatform)
}

func TestOkHttpModernVariantBuildsEmulation(t *testing.T) {
	emu, err := profiles.OkHttp(profiles.Variant4_10, "MyApp/1.0 OkHttp/4.10.0")
	require.NoError(t, err)
	assert.Equal(t, "MyApp/1.0 OkHttp/4.10.0", emu.DefaultHeaders.Get("user-agent"))
	assert.NotEmpty(t, emu.Tls.CipherList)
	assert.Equal(t, uint8(255), emu.Http2.HeadersPriority.Weight)
}

func TestOkHttpUnknownVariant(t *testing.T) {
	_, err := profiles.OkHttp(profiles.Variant("9.9"), "test")
	assert.Error(t, err)
}
