// Package redirect implements the redirect engine (C9): deciding,
// for each 3xx response, whether and how to follow it, and rewriting
// the next request's method, body, and headers per RFC 7231 §6.4.
package redirect

import http "github.com/saucesteals/fhttp"

// Action is a policy's verdict for one hop.
type Action int

const (
	// ActionFollow means issue the rewritten request to Location.
	ActionFollow Action = iota
	// ActionStop means return the 3xx response to the caller unfollowed,
	// without an error.
	ActionStop
)

// Policy decides whether to follow the next redirect hop. req is the
// request that is about to be sent (already rewritten per RFC 7231
// §6.4); via is every request already followed, oldest first.
type Policy interface {
	Decide(req *http.Request, via []*http.Request) (Action, error)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(req *http.Request, via []*http.Request) (Action, error)

func (f PolicyFunc) Decide(req *http.Request, via []*http.Request) (Action, error) {
	return f(req, via)
}

// Default follows up to 10 redirects, matching net/http's own
// historical default and spec.md §4.8.
var Default Policy = Limited(10)

// Limited returns a Policy that follows up to n redirects, returning
// ActionStop (not an error) once the limit is reached — spec.md §4.8
// treats exhausting the redirect budget as "stop, don't fail".
func Limited(n int) Policy {
	return PolicyFunc(func(req *http.Request, via []*http.Request) (Action, error) {
		if len(via) >= n {
			return ActionStop, nil
		}
		return ActionFollow, nil
	})
}

// None never follows a redirect; the first 3xx response is returned
// to the caller as-is.
func None() Policy {
	return PolicyFunc(func(req *http.Request, via []*http.Request) (Action, error) {
		return ActionStop, nil
	})
}
