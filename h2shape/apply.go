package h2shape

import (
	"fmt"

	http "github.com/saucesteals/fhttp"
	"github.com/saucesteals/fhttp/http2"
)

// Transport bundles the configured fhttp http2.Transport together with
// the pseudo-header order and priming data RoundTrip-level callers (the
// root dispatcher) need to apply per request.
type Transport struct {
	HTTP2             *http2.Transport
	PseudoHeaderOrder []string
	Priorities        []PriorityFrame
	InitialStreamID   uint32
}

// Apply upgrades base to HTTP/2 via http2.ConfigureTransports and
// configures the resulting transport per opts, per spec.md §4.2. It returns
// an *UnsupportedKnobError when opts requests a knob
// the underlying fhttp http2 fork has no hook for (InitialStreamID
// today) — silent divergence from a declared fingerprint is treated as
// a configuration error, not ignored, per SPEC_FULL.md §3.2.
func Apply(base *http.Transport, opts *Http2Options) (*Transport, error) {
	t2, err := http2.ConfigureTransports(base)
	if err != nil {
		return nil, fmt.Errorf("h2shape: enabling http2: %w", err)
	}

	t2.Settings = orderedSettings(opts)
	t2.MaxHeaderListSize = opts.MaxHeaderListSize
	t2.InitialWindowSize = opts.InitialWindowSize
	t2.HeaderTableSize = opts.HeaderTableSize

	if opts.InitialConnectionWindow > 0 && needsWindowUpdate(opts) {
		t2.TransportConnFlow = opts.InitialConnectionWindow
	}

	if opts.HeadersPriority != nil {
		t2.HeaderPriority = &http2.PriorityParam{
			StreamDep: opts.HeadersPriority.StreamID,
			Exclusive: opts.HeadersPriority.Exclusive,
			Weight:    opts.HeadersPriority.Weight,
		}
	}

	if opts.InitialStreamID != 0 && opts.InitialStreamID != 1 {
		return nil, &UnsupportedKnobError{Knob: "initial_stream_id", Value: opts.InitialStreamID}
	}

	pseudo := make([]string, 0, len(opts.PseudoHeaderOrder))
	for _, p := range opts.PseudoHeaderOrder {
		pseudo = append(pseudo, string(p))
	}

	return &Transport{
		HTTP2:             t2,
		PseudoHeaderOrder: pseudo,
		Priorities:        opts.Priorities,
		InitialStreamID:   opts.InitialStreamID,
	}, nil
}

// orderedSettings emits one http2.Setting per identifier present in
// opts.SettingsOrder, in that order, pulling the configured value.
// A zero MaxFrameSize is sent as 16384; a zero MaxConcurrentStreams or
// MaxHeaderListSize is omitted even when listed; other zero values are
// sent as 0. Identifiers outside the eight known ones take their value
// from ExperimentalSettings and are omitted when absent there.
// Identifiers not listed in SettingsOrder are omitted entirely, per
// spec.md §4.2 point 1.
func orderedSettings(opts *Http2Options) []http2.Setting {
	out := make([]http2.Setting, 0, len(opts.SettingsOrder))
	for _, id := range opts.SettingsOrder {
		val, ok := settingValue(opts, id)
		if !ok {
			continue
		}
		out = append(out, http2.Setting{ID: http2.SettingID(id), Val: val})
	}
	return out
}

func settingValue(opts *Http2Options, id SettingID) (uint32, bool) {
	switch id {
	case SettingHeaderTableSize:
		return opts.HeaderTableSize, true
	case SettingEnablePush:
		if opts.EnablePush {
			return 1, true
		}
		return 0, true
	case SettingMaxConcurrentStreams:
		if opts.MaxConcurrentStreams == 0 {
			return 0, false
		}
		return opts.MaxConcurrentStreams, true
	case SettingInitialWindowSize:
		return opts.InitialWindowSize, true
	case SettingMaxFrameSize:
		if opts.MaxFrameSize == 0 {
			return 16384, true
		}
		return opts.MaxFrameSize, true
	case SettingMaxHeaderListSize:
		if opts.MaxHeaderListSize == 0 {
			return 0, false
		}
		return opts.MaxHeaderListSize, true
	case SettingEnableConnectProto:
		if opts.EnableConnectProtocol {
			return 1, true
		}
		return 0, true
	case SettingNoRFC7540Priorities:
		if opts.NoRFC7540Priorities {
			return 1, true
		}
		return 0, true
	default:
		if v, ok := opts.ExperimentalSettings[id]; ok {
			return v, true
		}
		return 0, false
	}
}

// needsWindowUpdate resolves Open Question (b): whether to force an
// initial connection WINDOW_UPDATE even when the configured window
// equals the RFC 7540 default of 65535.
func needsWindowUpdate(opts *Http2Options) bool {
	if opts.ForceInitialWindowUpdate != nil {
		return *opts.ForceInitialWindowUpdate
	}
	return opts.InitialConnectionWindow != 65535
}

// UnsupportedKnobError is returned when opts names a configuration the
// wrapped http2 engine cannot express.
type UnsupportedKnobError struct {
	Knob  string
	Value any
}

func (e *UnsupportedKnobError) Error() string {
	return fmt.Sprintf("h2shape: %s=%v is not supported by the underlying http2 engine", e.Knob, e.Value)
}
