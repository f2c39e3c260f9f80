package tuyatest

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/cmstar/go-tuyavacuum/tuya"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, r *http.Request) (int, []byte) {
	res, err := new(http.Client).Do(r)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, body
}

func getEnvelope(t *testing.T, r *http.Request) tuya.Envelope {
	status, body := get(t, r)
	require.Equal(t, http.StatusOK, status)

	var env tuya.Envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestServer(t *testing.T) {
	s := NewServer(ServerOp{ClientId: "c", ClientSecret: "s"})
	defer s.Close()

	assert.Equal(t, "test_token", s.AccessToken())

	client := tuya.NewClient(tuya.ClientOp{BaseUrl: s.URL, ClientId: "c", ClientSecret: "s"})

	t.Run("Token", func(t *testing.T) {
		r, err := client.NewRequest(tuya.TokenEndpoint, "")
		require.NoError(t, err)

		env := getEnvelope(t, r)
		require.True(t, env.Success)
		assert.Equal(t, "test_token", env.Result.(map[string]any)["access_token"])
		assert.Equal(t, 1, s.TokenRequests())
	})

	t.Run("BadGrantType", func(t *testing.T) {
		r, err := client.NewRequest("/v1.0/token?grant_type=2", "")
		require.NoError(t, err)

		env := getEnvelope(t, r)
		assert.False(t, env.Success)
		assert.Equal(t, ErrorCode_ParamIllegal, env.Code)
	})

	t.Run("TamperedSign", func(t *testing.T) {
		r, err := client.NewRequest(tuya.TokenEndpoint, "")
		require.NoError(t, err)
		r.Header["sign"] = []string{"00"}

		env := getEnvelope(t, r)
		assert.False(t, env.Success)
		assert.Equal(t, ErrorCode_SignInvalid, env.Code)
	})

	t.Run("WrongToken", func(t *testing.T) {
		r, err := client.NewRequest(tuya.RealtimeMapEndpoint("d"), "other")
		require.NoError(t, err)

		env := getEnvelope(t, r)
		assert.False(t, env.Success)
		assert.Equal(t, ErrorCode_TokenInvalid, env.Code)
	})

	t.Run("UnknownDevice", func(t *testing.T) {
		r, err := client.NewRequest(tuya.RealtimeMapEndpoint("d"), "test_token")
		require.NoError(t, err)

		env := getEnvelope(t, r)
		assert.False(t, env.Success)
		assert.Equal(t, ErrorCode_NoPermission, env.Code)
	})

	t.Run("Files", func(t *testing.T) {
		u := s.SetFile("f", []byte{1, 2})
		assert.Equal(t, s.URL+"/files/f", u)

		r, _ := http.NewRequest(http.MethodGet, u, nil)
		status, body := get(t, r)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, []byte{1, 2}, body)

		r, _ = http.NewRequest(http.MethodGet, s.FileUrl("none"), nil)
		status, _ = get(t, r)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Headers", func(t *testing.T) {
		headers := s.Headers()
		require.Len(t, headers, 5)
		assert.Equal(t, "c", headers[0].Get("client_id"))
	})
}
