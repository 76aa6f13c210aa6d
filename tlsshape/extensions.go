package tlsshape

import (
	"fmt"

	utls "github.com/refraction-networking/utls"
)

// Extension type identifiers addressable from TlsOptions.ExtensionPermutation.
// These are the IANA TLS ExtensionType codepoints (RFC 8446 §4.2 and the
// drafts referenced by spec.md's glossary), not utls internal ids.
const (
	ExtServerName              uint16 = 0
	ExtStatusRequest           uint16 = 5
	ExtSupportedGroups         uint16 = 10
	ExtECPointFormats          uint16 = 11
	ExtSignatureAlgorithms     uint16 = 13
	ExtALPN                    uint16 = 16
	ExtSCT                     uint16 = 18
	ExtExtendedMasterSecret    uint16 = 23
	ExtDelegatedCredentials    uint16 = 34
	ExtSessionTicket           uint16 = 35
	ExtCompressCertificate     uint16 = 27
	ExtRecordSizeLimit         uint16 = 28
	ExtPreSharedKey            uint16 = 41
	ExtSupportedVersions       uint16 = 43
	ExtCookie                  uint16 = 44
	ExtPSKKeyExchangeModes     uint16 = 45
	ExtSignatureAlgorithmsCert uint16 = 50
	ExtKeyShare                uint16 = 51
	ExtRenegotiationInfo       uint16 = 0xff01
	ExtALPS                    uint16 = 17513
	ExtALPSNew                 uint16 = 17613
	ExtGREASE                  uint16 = 0x0a0a // representative; actual wire value rotates among the GREASE set
)

// defaultExtensionOrder is used when TlsOptions.ExtensionPermutation is
// nil: a conventional, non-browser-specific ordering. Browser profiles
// set an explicit permutation; the OkHttp profiles and hand-built
// TlsOptions values that leave ExtensionPermutation nil use this order.
var defaultExtensionOrder = []uint16{
	ExtGREASE,
	ExtServerName,
	ExtExtendedMasterSecret,
	ExtRenegotiationInfo,
	ExtSupportedGroups,
	ExtECPointFormats,
	ExtSessionTicket,
	ExtALPN,
	ExtStatusRequest,
	ExtSignatureAlgorithms,
	ExtSignatureAlgorithmsCert,
	ExtKeyShare,
	ExtPSKKeyExchangeModes,
	ExtSupportedVersions,
	ExtCompressCertificate,
	ExtRecordSizeLimit,
	ExtDelegatedCredentials,
	ExtALPS,
	ExtSCT,
	ExtCookie,
	ExtPreSharedKey,
}

// extensionFactory builds the concrete utls.TLSExtension for a given
// extension type id from the effective options and dial context. It
// returns (nil, nil) when the extension has no data to emit (e.g. ALPS
// requested but no ALPS protocols configured) so callers can silently
// omit it rather than emit an empty/invalid extension.
func extensionFactory(id uint16, opts *TlsOptions, ctx DialContext) (utls.TLSExtension, error) {
	switch id {
	case ExtGREASE:
		return &utls.UtlsGREASEExtension{}, nil
	case ExtServerName:
		if !opts.TlsSni {
			return nil, nil
		}
		return &utls.SNIExtension{ServerName: ctx.ServerName}, nil
	case ExtExtendedMasterSecret:
		return &utls.ExtendedMasterSecretExtension{}, nil
	case ExtRenegotiationInfo:
		if !opts.Renegotiation {
			return nil, nil
		}
		return &utls.RenegotiationInfoExtension{Renegotiation: utls.RenegotiateOnceAsClient}, nil
	case ExtSupportedGroups:
		if len(opts.Curves) == 0 {
			return nil, nil
		}
		return &utls.SupportedCurvesExtension{Curves: opts.Curves}, nil
	case ExtECPointFormats:
		return &utls.SupportedPointsExtension{SupportedPoints: []byte{0x00}}, nil
	case ExtSessionTicket:
		if !opts.SessionTicket {
			return nil, nil
		}
		return &utls.SessionTicketExtension{}, nil
	case ExtALPN:
		protos := opts.AlpnProtocols
		if len(ctx.ALPNOverride) > 0 {
			protos = ctx.ALPNOverride
		}
		if len(protos) == 0 {
			return nil, nil
		}
		return &utls.ALPNExtension{AlpnProtocols: protos}, nil
	case ExtStatusRequest:
		if !opts.OcspStapling {
			return nil, nil
		}
		return &utls.StatusRequestExtension{}, nil
	case ExtSignatureAlgorithms:
		if len(opts.SignatureAlgorithms) == 0 {
			return nil, nil
		}
		return &utls.SignatureAlgorithmsExtension{SupportedSignatureAlgorithms: opts.SignatureAlgorithms}, nil
	case ExtSignatureAlgorithmsCert:
		if len(opts.SignatureAlgorithms) == 0 {
			return nil, nil
		}
		return &utls.SignatureAlgorithmsCertExtension{SupportedSignatureAlgorithms: opts.SignatureAlgorithms}, nil
	case ExtKeyShare:
		return keyShareExtension(opts), nil
	case ExtPSKKeyExchangeModes:
		if !opts.PskDheKe && !opts.PreSharedKey {
			return nil, nil
		}
		modes := []uint8{utls.PskModeDHE}
		if opts.PskSkipSessionTicket {
			modes = []uint8{utls.PskModeDHE}
		}
		return &utls.PSKKeyExchangeModesExtension{Modes: modes}, nil
	case ExtSupportedVersions:
		return &utls.SupportedVersionsExtension{Versions: supportedVersionList(opts)}, nil
	case ExtCompressCertificate:
		algos := certCompressionIDs(opts.CertCompressionAlgos)
		if len(algos) == 0 {
			return nil, nil
		}
		return &utls.UtlsCompressCertExtension{Algorithms: algos}, nil
	case ExtRecordSizeLimit:
		if opts.RecordSizeLimit == 0 {
			return nil, nil
		}
		return &utls.FakeRecordSizeLimitExtension{Limit: opts.RecordSizeLimit}, nil
	case ExtDelegatedCredentials:
		if len(opts.DelegatedCredentials) == 0 {
			return nil, nil
		}
		return &utls.DelegatedCredentialsExtension{SupportedSignatureAlgorithms: opts.DelegatedCredentials}, nil
	case ExtALPS:
		if opts.AlpsUseNewCodepoint || len(opts.AlpsProtocols) == 0 {
			return nil, nil
		}
		return &utls.ApplicationSettingsExtension{SupportedProtocols: opts.AlpsProtocols}, nil
	case ExtALPSNew:
		if !opts.AlpsUseNewCodepoint || len(opts.AlpsProtocols) == 0 {
			return nil, nil
		}
		return &utls.ApplicationSettingsExtensionNew{SupportedProtocols: opts.AlpsProtocols}, nil
	case ExtSCT:
		if !opts.SignedCertTimestamps {
			return nil, nil
		}
		return &utls.SCTExtension{}, nil
	case ExtCookie:
		return &utls.CookieExtension{}, nil
	case ExtPreSharedKey:
		// The PSK extension body is computed by utls itself from the session
		// state during the handshake; declaring it here only reserves its
		// wire position in the permutation.
		if !opts.PreSharedKey {
			return nil, nil
		}
		return &utls.UtlsPreSharedKeyExtension{}, nil
	default:
		return nil, fmt.Errorf("unknown extension type %#x", id)
	}
}

func supportedVersionList(opts *TlsOptions) []uint16 {
	var out []uint16
	all := []TlsVersion{TlsVersion13, TlsVersion12, TlsVersion11, TlsVersion10}
	for _, v := range all {
		if v <= opts.MaxVersion && v >= opts.MinVersion {
			out = append(out, uint16(v))
		}
	}
	return out
}

func certCompressionIDs(algos []CertCompressionAlgo) []utls.CertCompressionAlgo {
	out := make([]utls.CertCompressionAlgo, 0, len(algos))
	for _, a := range algos {
		switch a {
		case CertCompressionZlib:
			out = append(out, utls.CertCompressionZlib)
		case CertCompressionBrotli:
			out = append(out, utls.CertCompressionBrotli)
		case CertCompressionZstd:
			out = append(out, utls.CertCompressionZstd)
		}
	}
	return out
}
