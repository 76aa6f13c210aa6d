package redirect

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	http "github.com/saucesteals/fhttp"
)

// sensitiveHeaders are stripped whenever a redirect crosses origin
// (scheme, host or port), matching the conservative behavior of every major
// browser and net/http's own cross-origin redirect handling.
var sensitiveHeaders = []string{
	"Authorization",
	"Www-Authenticate",
	"Cookie",
	"Cookie2",
	"Proxy-Authorization",
	"Proxy-Authenticate",
}

// Hop is one followed redirect, retained when RedirectHistory is
// requested.
type Hop struct {
	Request  *http.Request
	Response *http.Response
}

// Engine drives the redirect state machine
// (Sending → AwaitingResponse → ClassifyingStatus → AwaitingPolicy →
// Following → Done) described by spec.md §4.8.
type Engine struct {
	Policy Policy
	// RecordHistory, when true, makes Follow accumulate every hop.
	RecordHistory bool
}

// New constructs an Engine with the given policy, defaulting to
// Default when policy is nil.
func New(policy Policy) *Engine {
	if policy == nil {
		policy = Default
	}
	return &Engine{Policy: policy}
}

// Classify reports whether resp is a redirect this engine understands
// and, if so, the resolved absolute target URL.
func Classify(req *http.Request, resp *http.Response) (target *url.URL, isRedirect bool) {
	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		return nil, false
	}

	loc := resp.Header.Get("Location")
	if loc == "" {
		// A 3xx with no Location is not a redirect to follow; spec.md
		// §4.8 edge case: return unfollowed rather than erroring.
		return nil, false
	}

	ref, err := url.Parse(loc)
	if err != nil {
		// A malformed Location is likewise "return unfollowed, not an
		// error" per spec.md §4.8.
		return nil, false
	}

	return req.URL.ResolveReference(ref), true
}

// NextRequest builds the request for the next hop by rewriting method
// and body per RFC 7231 §6.4, resolving the new URL, and stripping
// sensitive headers on a cross-origin hop. The returned request shares
// no mutable state with prev.
func NextRequest(prev *http.Request, statusCode int, target *url.URL) (*http.Request, error) {
	method := prev.Method
	var body io.ReadCloser
	forceGET := false

	switch statusCode {
	case http.StatusMovedPermanently, http.StatusFound:
		// 301/302: historically browsers rewrite POST (and any non-GET/
		// HEAD) to GET, dropping the body — the de facto behavior RFC
		// 7231 §6.4.2/6.4.3 permits and every browser implements.
		if method != http.MethodGet && method != http.MethodHead {
			method = http.MethodGet
			forceGET = true
		}
	case http.StatusSeeOther:
		// 303 always becomes GET except for an already-HEAD request.
		if method != http.MethodHead {
			method = http.MethodGet
			forceGET = true
		}
	case http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		// 307/308 preserve method and body exactly.
		if prev.GetBody != nil {
			b, err := prev.GetBody()
			if err != nil {
				return nil, fmt.Errorf("redirect: rewinding request body: %w", err)
			}
			body = b
		} else if prev.Body != nil && prev.Body != http.NoBody {
			return nil, fmt.Errorf("redirect: %d redirect requires a replayable body (set GetBody)", statusCode)
		}
	}

	if forceGET {
		body = http.NoBody
	}
	if body == nil {
		body = http.NoBody
	}

	next, err := http.NewRequest(method, target.String(), body)
	if err != nil {
		return nil, err
	}
	next.GetBody = prev.GetBody
	if forceGET {
		next.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
	}

	next.Header = cloneHeader(prev.Header)
	if forceGET {
		next.Header.Del("Content-Type")
		next.Header.Del("Content-Length")
		next.ContentLength = 0
	} else {
		next.ContentLength = prev.ContentLength
	}

	if crossOrigin(prev.URL, target) {
		for _, h := range sensitiveHeaders {
			next.Header.Del(h)
		}
	}

	if ref := refererFor(prev.URL, target); ref != "" {
		next.Header.Set("Referer", ref)
	} else {
		next.Header.Del("Referer")
	}

	return next, nil
}

func cloneHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// crossOrigin reports whether a and b differ in scheme, host, or port —
// the condition under which sensitive headers must not be forwarded.
func crossOrigin(a, b *url.URL) bool {
	return !strings.EqualFold(a.Scheme, b.Scheme) || !strings.EqualFold(a.Host, b.Host)
}

// refererFor synthesizes a Referer value for the next hop from the
// previous request's URL, stripping user info per the standard Referer
// privacy rule and omitting it entirely for an https→http downgrade.
func refererFor(prev, target *url.URL) string {
	if prev == nil {
		return ""
	}
	if strings.EqualFold(prev.Scheme, "https") && strings.EqualFold(target.Scheme, "http") {
		return ""
	}
	ref := *prev
	ref.User = nil
	ref.Fragment = ""
	return ref.String()
}

// Follow runs the state machine to completion starting from resp (the
// response to req), calling send to issue each subsequent hop. It
// returns the final, non-redirected response and — if RecordHistory is
// set — the full hop history.
func (e *Engine) Follow(req *http.Request, resp *http.Response, send func(*http.Request) (*http.Response, error)) (*http.Response, []Hop, error) {
	var history []Hop
	var via []*http.Request

	cur, curResp := req, resp
	for {
		target, isRedirect := Classify(cur, curResp)
		if !isRedirect {
			return curResp, history, nil
		}

		via = append(via, cur)
		if e.RecordHistory {
			history = append(history, Hop{Request: cur, Response: curResp})
		}

		next, err := NextRequest(cur, curResp.StatusCode, target)
		if err != nil {
			return curResp, history, err
		}

		action, err := e.Policy.Decide(next, via)
		if err != nil {
			return curResp, history, err
		}
		if action == ActionStop {
			return curResp, history, nil
		}

		drainAndClose(curResp)

		nextResp, err := send(next)
		if err != nil {
			return nil, history, err
		}

		cur, curResp = next, nextResp
	}
}

func drainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	resp.Body.Close()
}
