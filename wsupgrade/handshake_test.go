package wsupgrade_test

import (
	"testing"

	http "github.com/saucesteals/fhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidhttp/impersonate/wsupgrade"
)

func TestAcceptValueKnownVector(t *testing.T) {
	// RFC 6455 §1.3 worked example.
	got := wsupgrade.AcceptValue("dGhlIHNhbXBsZSBub25jZQ==")
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", got)
}

func TestValidateAcceptRejectsMismatch(t *testing.T) {
	assert.False(t, wsupgrade.ValidateAccept("key", "wrong"))
}

func TestValidateUpgradeResponseSuccess(t *testing.T) {
	key := "dGhlIHNhbXBsZSBub25jZQ=="
	resp := &http.Response{
		StatusCode: http.StatusSwitchingProtocols,
		Header: http.Header{
			"Upgrade":              {"websocket"},
			"Connection":           {"Upgrade"},
			"Sec-Websocket-Accept": {wsupgrade.AcceptValue(key)},
		},
	}
	result, err := wsupgrade.ValidateUpgradeResponse(resp, key, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Subprotocol)
}

func TestValidateUpgradeResponseWrongStatus(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}
	_, err := wsupgrade.ValidateUpgradeResponse(resp, "key", nil)
	assert.Error(t, err)
}

func TestValidateUpgradeResponseRejectsUnofferedSubprotocol(t *testing.T) {
	key := "dGhlIHNhbXBsZSBub25jZQ=="
	resp := &http.Response{
		StatusCode: http.StatusSwitchingProtocols,
		Header: http.Header{
			"Upgrade":               {"websocket"},
			"Connection":            {"Upgrade"},
			"Sec-Websocket-Accept":  {wsupgrade.AcceptValue(key)},
			"Sec-Websocket-Protocol": {"chat"},
		},
	}
	_, err := wsupgrade.ValidateUpgradeResponse(resp, key, []string{"graphql-ws"})
	assert.Error(t, err)
}

func TestValidateExtendedConnectResponseSuccess(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}
	_, err := wsupgrade.ValidateExtendedConnectResponse(resp, nil)
	assert.NoError(t, err)
}
