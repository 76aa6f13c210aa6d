package redirect_test

import (
	"net/url"
	"strings"
	"testing"

	http "github.com/saucesteals/fhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidhttp/impersonate/redirect"
)

func TestClassifyNoLocationIsNotRedirect(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	resp := &http.Response{StatusCode: http.StatusFound, Header: http.Header{}}
	_, isRedirect := redirect.Classify(req, resp)
	assert.False(t, isRedirect)
}

func TestClassifyResolvesRelativeLocation(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/a/b", nil)
	resp := &http.Response{StatusCode: http.StatusFound, Header: http.Header{"Location": {"/c"}}}
	target, isRedirect := redirect.Classify(req, resp)
	require.True(t, isRedirect)
	assert.Equal(t, "https://example.com/c", target.String())
}

func TestNextRequest302RewritesPostToGet(t *testing.T) {
	prev, _ := http.NewRequest(http.MethodPost, "https://example.com/submit", strings.NewReader("data"))
	prev.Header.Set("Content-Type", "text/plain")
	target, _ := url.Parse("https://example.com/done")

	next, err := redirect.NextRequest(prev, http.StatusFound, target)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, next.Method)
	assert.Empty(t, next.Header.Get("Content-Type"))
}

func TestNextRequest307PreservesMethodRequiresGetBody(t *testing.T) {
	prev, _ := http.NewRequest(http.MethodPost, "https://example.com/submit", strings.NewReader("data"))
	// http.NewRequest auto-populates GetBody for a *strings.Reader body;
	// clear it to exercise the "no replayable body" error path.
	prev.GetBody = nil
	target, _ := url.Parse("https://example.com/done")

	_, err := redirect.NextRequest(prev, http.StatusTemporaryRedirect, target)
	assert.Error(t, err)
}

func TestNextRequest307PreservesMethodWithGetBody(t *testing.T) {
	prev, _ := http.NewRequest(http.MethodPost, "https://example.com/submit", strings.NewReader("data"))
	target, _ := url.Parse("https://example.com/done")

	next, err := redirect.NextRequest(prev, http.StatusTemporaryRedirect, target)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, next.Method)
}

func TestNextRequestStripsAuthorizationCrossOrigin(t *testing.T) {
	prev, _ := http.NewRequest(http.MethodGet, "https://a.example.com/x", nil)
	prev.Header.Set("Authorization", "Bearer secret")
	target, _ := url.Parse("https://b.example.com/y")

	next, err := redirect.NextRequest(prev, http.StatusFound, target)
	require.NoError(t, err)
	assert.Empty(t, next.Header.Get("Authorization"))
}

func TestNextRequestKeepsAuthorizationSameOrigin(t *testing.T) {
	prev, _ := http.NewRequest(http.MethodGet, "https://a.example.com/x", nil)
	prev.Header.Set("Authorization", "Bearer secret")
	target, _ := url.Parse("https://a.example.com/y")

	next, err := redirect.NextRequest(prev, http.StatusFound, target)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", next.Header.Get("Authorization"))
}

func TestLimitedStopsAtBudget(t *testing.T) {
	p := redirect.Limited(2)
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	action, err := p.Decide(req, []*http.Request{req, req})
	require.NoError(t, err)
	assert.Equal(t, redirect.ActionStop, action)
}

func TestNoneAlwaysStops(t *testing.T) {
	p := redirect.None()
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	action, err := p.Decide(req, nil)
	require.NoError(t, err)
	assert.Equal(t, redirect.ActionStop, action)
}
