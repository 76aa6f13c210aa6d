// Package impersonate provides an HTTP client that reproduces a chosen
// browser's exact wire behavior — TLS ClientHello, HTTP/2 frame
// shaping, HTTP/1 header casing, and header ordering — rather than
// Go's own defaults, so a server performing TLS/HTTP fingerprinting
// cannot distinguish this client from the real browser it emulates.
package impersonate

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	http "github.com/saucesteals/fhttp"

	"github.com/corvidhttp/impersonate/h1shape"
	"github.com/corvidhttp/impersonate/h2shape"
	"github.com/corvidhttp/impersonate/headers"
	"github.com/corvidhttp/impersonate/tlsshape"
)

// Emulation bundles everything needed to make one HTTP request look
// like it came from a specific browser build: the TLS ClientHello
// shape, the HTTP/1 and HTTP/2 wire shape, and the default header set
// with its original casing/ordering preserved.
//
// An Emulation is built once per profile and shared by pointer across
// every Client and request that uses it; none of its fields are
// mutated after construction.
type Emulation struct {
	Name string

	Tls   *tlsshape.TlsOptions
	Http1 *h1shape.Http1Options
	Http2 *h2shape.Http2Options

	DefaultHeaders http.Header
	Original       *headers.OriginalHeaders
}

// Fingerprint returns a stable digest of every option in e, used as
// the pool-partitioning key so two emulations never share a connection
// even when dialing the identical host (spec.md §4.6).
func (e *Emulation) Fingerprint() [32]byte {
	h := sha256.New()
	writeFingerprintTls(h, e.Tls)
	writeFingerprintHttp1(h, e.Http1)
	writeFingerprintHttp2(h, e.Http2)
	writeFingerprintHeaders(h, e.DefaultHeaders, e.Original)

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

type fingerprintWriter interface {
	Write(p []byte) (int, error)
}

func writeUint32(w fingerprintWriter, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func writeUint16(w fingerprintWriter, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.Write(b[:])
}

func writeBool(w fingerprintWriter, v bool) {
	if v {
		w.Write([]byte{1})
	} else {
		w.Write([]byte{0})
	}
}

func writeString(w fingerprintWriter, s string) {
	writeUint32(w, uint32(len(s)))
	w.Write([]byte(s))
}

func writeFingerprintTls(w fingerprintWriter, o *tlsshape.TlsOptions) {
	if o == nil {
		w.Write([]byte{0x00})
		return
	}
	writeUint16(w, uint16(o.MinVersion))
	writeUint16(w, uint16(o.MaxVersion))
	for _, c := range o.CipherList {
		writeUint16(w, c)
	}
	for _, id := range o.ExtensionPermutation {
		writeUint16(w, uint16(id))
	}
	for _, c := range o.Curves {
		writeUint16(w, uint16(c))
	}
	writeBool(w, o.CertVerification)
	writeBool(w, o.VerifyHostname)
	writeBool(w, o.SessionTicket)
	for _, a := range o.CertCompressionAlgos {
		writeString(w, string(a))
	}
}

func writeFingerprintHttp1(w fingerprintWriter, o *h1shape.Http1Options) {
	if o == nil {
		w.Write([]byte{0x00})
		return
	}
	writeBool(w, o.AcceptHTTP09)
	writeBool(w, o.TitleCaseHeaders)
	writeBool(w, o.PreserveHeaderCase)
	writeUint32(w, uint32(o.MaxHeaders))
	writeUint32(w, uint32(o.ReadBufExactSize))
	writeUint32(w, uint32(o.MaxBufSize))
	writeBool(w, o.AllowSpacesAfterHeaderName)
	writeBool(w, o.AllowObsoleteMultilineHeaders)
	writeBool(w, o.IgnoreInvalidHeaders)
}

func writeFingerprintHttp2(w fingerprintWriter, o *h2shape.Http2Options) {
	if o == nil {
		w.Write([]byte{0x00})
		return
	}
	writeUint32(w, o.InitialStreamID)
	writeUint32(w, o.InitialWindowSize)
	writeUint32(w, o.InitialConnectionWindow)
	writeUint32(w, o.MaxFrameSize)
	writeUint32(w, o.MaxConcurrentStreams)
	writeUint32(w, o.MaxHeaderListSize)
	writeUint32(w, o.HeaderTableSize)
	writeBool(w, o.EnablePush)
	writeBool(w, o.EnableConnectProtocol)
	writeBool(w, o.NoRFC7540Priorities)
	for _, id := range o.SettingsOrder {
		writeUint16(w, uint16(id))
	}
	for _, ph := range o.PseudoHeaderOrder {
		writeString(w, string(ph))
	}
	for _, p := range o.Priorities {
		writeUint32(w, p.StreamID)
		writeUint32(w, p.DependencyID)
		w.Write([]byte{p.Weight})
		writeBool(w, p.Exclusive)
	}
}

func writeFingerprintHeaders(w fingerprintWriter, defaults http.Header, original *headers.OriginalHeaders) {
	names := make([]string, 0, len(defaults))
	for k := range defaults {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		writeString(w, k)
		for _, v := range defaults[k] {
			writeString(w, v)
		}
	}
	if original != nil {
		emitted := original.Emit(defaults)
		for _, name := range emitted[http.HeaderOrderKey] {
			if original.Has(name) {
				writeString(w, name)
			}
		}
	}
}
