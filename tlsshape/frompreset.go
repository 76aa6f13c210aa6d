package tlsshape

import (
	"fmt"

	utls "github.com/refraction-networking/utls"
)

// FromUtlsPreset derives a TlsOptions from one of utls's own built-in
// per-browser-version ClientHelloSpec presets, so a profiles package can
// ground a fingerprint directly on utls's maintained database instead of
// hand-copying cipher/extension lists that drift with every release.
// The extension *types* selected by the preset are preserved as
// ExtensionPermutation; this package's own extensionFactory (not the
// preset's prebuilt TLSExtension values) rebuilds each one per dial, so
// request-time overrides (ctx.ServerName, ALPN) still apply.
func FromUtlsPreset(id utls.ClientHelloID) (*TlsOptions, error) {
	spec, err := utls.UTLSIdToSpec(id)
	if err != nil {
		return nil, fmt.Errorf("tlsshape: resolving preset %s %s: %w", id.Client, id.Version, err)
	}

	opts := DefaultTlsOptions()
	opts.CipherList = append([]uint16(nil), spec.CipherSuites...)

	order := make([]uint16, 0, len(spec.Extensions))
	for _, ext := range spec.Extensions {
		extID, ok := extensionTypeID(ext)
		if !ok {
			continue
		}
		order = append(order, extID)

		switch e := ext.(type) {
		case *utls.SupportedCurvesExtension:
			opts.Curves = append([]utls.CurveID(nil), e.Curves...)
		case *utls.SignatureAlgorithmsExtension:
			opts.SignatureAlgorithms = append([]utls.SignatureScheme(nil), e.SupportedSignatureAlgorithms...)
		case *utls.ALPNExtension:
			opts.AlpnProtocols = append([]string(nil), e.AlpnProtocols...)
		}
	}
	opts.ExtensionPermutation = order

	return opts, nil
}

// extensionTypeID maps a concrete utls.TLSExtension back to its wire
// extension-type id, the inverse of this package's extensionFactory.
// Only the subset extensionFactory knows how to rebuild is meaningful
// here; anything else is dropped from the permutation and is therefore
// not emitted, since Apply builds exactly the extensions listed.
func extensionTypeID(ext utls.TLSExtension) (uint16, bool) {
	switch ext.(type) {
	case *utls.SNIExtension:
		return ExtServerName, true
	case *utls.StatusRequestExtension:
		return ExtStatusRequest, true
	case *utls.SupportedCurvesExtension:
		return ExtSupportedGroups, true
	case *utls.SupportedPointsExtension:
		return ExtECPointFormats, true
	case *utls.SignatureAlgorithmsExtension:
		return ExtSignatureAlgorithms, true
	case *utls.SignatureAlgorithmsCertExtension:
		return ExtSignatureAlgorithmsCert, true
	case *utls.ALPNExtension:
		return ExtALPN, true
	case *utls.SCTExtension:
		return ExtSCT, true
	case *utls.UtlsCompressCertExtension:
		return ExtCompressCertificate, true
	case *utls.SessionTicketExtension:
		return ExtSessionTicket, true
	case *utls.UtlsPreSharedKeyExtension:
		return ExtPreSharedKey, true
	case *utls.PSKKeyExchangeModesExtension:
		return ExtPSKKeyExchangeModes, true
	case *utls.SupportedVersionsExtension:
		return ExtSupportedVersions, true
	case *utls.CookieExtension:
		return ExtCookie, true
	case *utls.KeyShareExtension:
		return ExtKeyShare, true
	case *utls.RenegotiationInfoExtension:
		return ExtRenegotiationInfo, true
	case *utls.UtlsGREASEExtension:
		return ExtGREASE, true
	case *utls.FakeRecordSizeLimitExtension:
		return ExtRecordSizeLimit, true
	case *utls.ExtendedMasterSecretExtension:
		return ExtExtendedMasterSecret, true
	case *utls.DelegatedCredentialsExtension:
		return ExtDelegatedCredentials, true
	case *utls.ApplicationSettingsExtension:
		return ExtALPS, true
	case *utls.ApplicationSettingsExtensionNew:
		return ExtALPSNew, true
	default:
		return 0, false
	}
}
