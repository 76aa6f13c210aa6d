package tlsshape

import (
	"crypto/x509"

	utls "github.com/refraction-networking/utls"
)

// chainOnlyVerifier builds a VerifyPeerCertificate callback that checks
// the certificate chain against cfg.RootCAs (or the system pool when nil)
// without matching the connection's SNI/server name against the leaf —
// the verify_hostname=false knob of spec.md §3/§4.1.
func chainOnlyVerifier(cfg *utls.Config) func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return x509.CertificateInvalidError{Reason: x509.NotAuthorizedToSign}
		}
		certs := make([]*x509.Certificate, 0, len(rawCerts))
		for _, raw := range rawCerts {
			cert, err := x509.ParseCertificate(raw)
			if err != nil {
				return err
			}
			certs = append(certs, cert)
		}

		pool := cfg.RootCAs
		opts := x509.VerifyOptions{
			Roots:         pool,
			Intermediates: x509.NewCertPool(),
		}
		for _, c := range certs[1:] {
			opts.Intermediates.AddCert(c)
		}
		_, err := certs[0].Verify(opts)
		return err
	}
}
