package tlsshape

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	utls "github.com/refraction-networking/utls"
)

// RegisterCertCompression sets cfg.CertCompressionAlgos to the wire ids
// for the algorithms opts declares (RFC 8879, spec.md §3). utls performs
// the compress_certificate negotiation itself; DecompressCertificate
// below is a codec for a caller inspecting a captured compressed
// certificate message to verify what the handshake actually carried.
func RegisterCertCompression(cfg *utls.Config, algos []CertCompressionAlgo) {
	cfg.CertCompressionAlgos = certCompressionIDs(algos)
}

// DecompressCertificate reverses one of the three RFC 8879 algorithms
// spec.md allows. ZLIB uses the standard library; BROTLI and ZSTD use
// the third-party codecs already present transitively via utls/fhttp.
func DecompressCertificate(algo CertCompressionAlgo, compressed []byte) ([]byte, error) {
	switch algo {
	case CertCompressionZlib:
		r, err := zlib.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CertCompressionBrotli:
		return io.ReadAll(brotli.NewReader(bytes.NewReader(compressed)))
	case CertCompressionZstd:
		dec, err := zstd.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	default:
		return nil, fmt.Errorf("tlsshape: unsupported certificate compression algorithm %q", algo)
	}
}
