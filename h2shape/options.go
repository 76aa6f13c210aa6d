// Package h2shape implements the HTTP/2 Shape Applier (C2): translating
// an Http2Options value into the non-standard SETTINGS ordering,
// pseudo-header order, priority signaling, and keep-alive behavior a
// specific browser profile requires.
package h2shape

// SettingID names the eight HTTP/2 SETTINGS identifiers spec.md §3
// lets a profile reorder. Values match RFC 7540/9218/8441 wire ids.
type SettingID uint16

const (
	SettingHeaderTableSize      SettingID = 0x1
	SettingEnablePush           SettingID = 0x2
	SettingMaxConcurrentStreams SettingID = 0x3
	SettingInitialWindowSize    SettingID = 0x4
	SettingMaxFrameSize         SettingID = 0x5
	SettingMaxHeaderListSize    SettingID = 0x6
	SettingEnableConnectProto   SettingID = 0x8
	SettingNoRFC7540Priorities  SettingID = 0x9
)

// PseudoHeader names one of the four HTTP/2 request pseudo-headers.
type PseudoHeader string

const (
	PseudoMethod    PseudoHeader = ":method"
	PseudoScheme    PseudoHeader = ":scheme"
	PseudoAuthority PseudoHeader = ":authority"
	PseudoPath      PseudoHeader = ":path"
)

// StreamDependency is a HEADERS or PRIORITY frame's priority payload.
type StreamDependency struct {
	StreamID uint32
	Weight   uint8
	Exclusive bool
}

// PriorityFrame is one standalone PRIORITY frame to emit at connection
// start, per spec.md §4.2 point 2. StreamID must be non-zero; entries
// with StreamID == 0 are silently skipped by EncodePriorities.
type PriorityFrame struct {
	StreamID     uint32
	DependencyID uint32
	Weight       uint8
	Exclusive    bool
}

// Http2Options is the value object of spec.md §3.
type Http2Options struct {
	InitialStreamID           uint32 // 0 = engine default (1)
	InitialWindowSize         uint32
	InitialConnectionWindow   uint32
	MaxFrameSize              uint32
	MaxConcurrentStreams      uint32
	MaxHeaderListSize         uint32
	HeaderTableSize           uint32
	EnablePush                bool
	EnableConnectProtocol     bool
	NoRFC7540Priorities       bool
	AdaptiveWindow            bool
	InitialMaxSendStreams     int
	MaxSendBufferSize         int
	MaxConcurrentResetStreams int
	MaxPendingAcceptReset     int
	KeepAliveInterval         int64 // nanoseconds; 0 = disabled
	KeepAliveTimeout          int64
	KeepAliveWhileIdle        bool

	SettingsOrder     []SettingID
	PseudoHeaderOrder []PseudoHeader
	HeadersPriority   *StreamDependency
	Priorities        []PriorityFrame

	// ForceInitialWindowUpdate, when non-nil, overrides whether a
	// connection-level WINDOW_UPDATE is sent at startup even when
	// InitialConnectionWindow equals the protocol default of 65535
	// (Open Question (b) in spec.md §9, resolved per-profile).
	ForceInitialWindowUpdate *bool

	ExperimentalSettings map[SettingID]uint32
}

// DefaultHttp2Options mirrors RFC 7540 defaults with no reordering.
func DefaultHttp2Options() *Http2Options {
	return &Http2Options{
		InitialWindowSize:       65535,
		InitialConnectionWindow: 65535,
		MaxFrameSize:            16384,
		MaxConcurrentStreams:    100,
		MaxHeaderListSize:       262144,
		HeaderTableSize:         4096,
		SettingsOrder: []SettingID{
			SettingHeaderTableSize,
			SettingEnablePush,
			SettingMaxConcurrentStreams,
			SettingInitialWindowSize,
			SettingMaxFrameSize,
			SettingMaxHeaderListSize,
		},
		PseudoHeaderOrder: []PseudoHeader{PseudoMethod, PseudoScheme, PseudoAuthority, PseudoPath},
	}
}
