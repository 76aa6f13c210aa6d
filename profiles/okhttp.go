package profiles

import (
	"fmt"

	utls "github.com/refraction-networking/utls"
	http "github.com/saucesteals/fhttp"

	"github.com/corvidhttp/impersonate"
	"github.com/corvidhttp/impersonate/h2shape"
	"github.com/corvidhttp/impersonate/tlsshape"
)

// Variant names one of the OkHttp releases Android apps in the wild
// still ship, each with a distinct negotiated cipher list.
type Variant string

const (
	Variant3_9  Variant = "3.9"
	Variant3_11 Variant = "3.11"
	Variant3_13 Variant = "3.13"
	Variant3_14 Variant = "3.14"
	Variant4_9  Variant = "4.9"
	Variant4_10 Variant = "4.10"
	Variant5    Variant = "5.0"
)

// Cipher suite ids not already exposed by utls's named constants,
// quoted from the IANA TLS Cipher Suites registry since okhttp's
// older releases still offer CBC-mode and 3DES suites no modern
// browser profile in this package needs.
const (
	cipherECDHEECDSAWithAES128CBCSHA uint16 = 0xc009
	cipherECDHERSAWithAES128CBCSHA   uint16 = 0xc013
	cipherECDHEECDSAWithAES256CBCSHA uint16 = 0xc00a
	cipherECDHERSAWithAES256CBCSHA   uint16 = 0xc014
	cipherRSAWithAES128CBCSHA        uint16 = 0x002f
	cipherRSAWithAES256CBCSHA        uint16 = 0x0035
	cipherRSAWith3DESEDECBCSHA       uint16 = 0x000a
)

// modernCipherList is OkHttp's TLS_1_3-era default (3.14 and later),
// a superset ordering of AEAD suites with legacy CBC ones kept for
// servers that still negotiate TLS 1.2.
func modernCipherList() []uint16 {
	return []uint16{
		utls.TLS_AES_128_GCM_SHA256,
		utls.TLS_AES_256_GCM_SHA384,
		utls.TLS_CHACHA20_POLY1305_SHA256,
		utls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		utls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		utls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		utls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		utls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
		utls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
		cipherECDHERSAWithAES128CBCSHA,
		cipherECDHERSAWithAES256CBCSHA,
		utls.TLS_RSA_WITH_AES_128_GCM_SHA256,
		utls.TLS_RSA_WITH_AES_256_GCM_SHA384,
		cipherRSAWithAES128CBCSHA,
		cipherRSAWithAES256CBCSHA,
		cipherRSAWith3DESEDECBCSHA,
	}
}

// legacyCipherList is OkHttp 3.9-3.13's pre-TLS_1_3 default: no AEAD-
// only suites, ECDSA CBC suites present alongside RSA ones.
func legacyCipherList() []uint16 {
	return []uint16{
		utls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		utls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		utls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		utls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		utls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
		utls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
		cipherECDHEECDSAWithAES128CBCSHA,
		cipherECDHERSAWithAES128CBCSHA,
		cipherECDHEECDSAWithAES256CBCSHA,
		cipherECDHERSAWithAES256CBCSHA,
		utls.TLS_RSA_WITH_AES_128_GCM_SHA256,
		utls.TLS_RSA_WITH_AES_256_GCM_SHA384,
		cipherRSAWithAES128CBCSHA,
		cipherRSAWithAES256CBCSHA,
		cipherRSAWith3DESEDECBCSHA,
	}
}

func cipherListFor(v Variant) ([]uint16, error) {
	switch v {
	case Variant3_9, Variant3_11, Variant3_13:
		return legacyCipherList(), nil
	case Variant3_14, Variant4_9, Variant4_10, Variant5:
		return modernCipherList(), nil
	default:
		return nil, fmt.Errorf("profiles: okhttp: unknown variant %q", v)
	}
}

// OkHttp builds an Emulation for an Android app built on the given
// OkHttp release, sending userAgent as its User-Agent header (OkHttp
// itself never sets sec-ch-ua or any browser-only header; the calling
// app controls everything except the wire-level TLS/HTTP2 shape).
func OkHttp(variant Variant, userAgent string) (*impersonate.Emulation, error) {
	ciphers, err := cipherListFor(variant)
	if err != nil {
		return nil, err
	}

	tls := tlsshape.DefaultTlsOptions()
	tls.CipherList = ciphers
	tls.Curves = []utls.CurveID{utls.X25519, utls.CurveP256, utls.CurveP384}
	tls.SignatureAlgorithms = []utls.SignatureScheme{
		utls.ECDSAWithP256AndSHA256,
		utls.PSSWithSHA256,
		utls.PKCS1WithSHA256,
		utls.ECDSAWithP384AndSHA384,
		utls.PSSWithSHA384,
		utls.PKCS1WithSHA384,
		utls.PSSWithSHA512,
		utls.PKCS1WithSHA512,
		utls.PKCS1WithSHA1,
	}
	tls.OcspStapling = true

	h2 := &h2shape.Http2Options{
		PseudoHeaderOrder: []h2shape.PseudoHeader{
			h2shape.PseudoMethod, h2shape.PseudoPath, h2shape.PseudoAuthority, h2shape.PseudoScheme,
		},
		SettingsOrder: []h2shape.SettingID{
			h2shape.SettingHeaderTableSize,
			h2shape.SettingEnablePush,
			h2shape.SettingMaxConcurrentStreams,
			h2shape.SettingInitialWindowSize,
			h2shape.SettingMaxFrameSize,
			h2shape.SettingMaxHeaderListSize,
			h2shape.SettingEnableConnectProto,
			h2shape.SettingNoRFC7540Priorities,
		},
		InitialWindowSize:       6291456,
		InitialConnectionWindow: 15728640,
		MaxConcurrentStreams:    1000,
		MaxHeaderListSize:       262144,
		HeaderTableSize:         65536,
		HeadersPriority: &h2shape.StreamDependency{
			StreamID:  0,
			Weight:    255,
			Exclusive: true,
		},
	}

	h := http.Header{}
	order := []string{"accept", "accept-language", "user-agent", "accept-encoding"}
	h.Set("accept", "*/*")
	h.Set("accept-language", "en-US,en;q=0.9")
	h.Set("user-agent", userAgent)
	h.Set("accept-encoding", "gzip, deflate, br")

	name := fmt.Sprintf("OkHttp/%s", variant)
	return buildEmulation(name, tls, h2, defaultHTTP1(), h, order), nil
}
