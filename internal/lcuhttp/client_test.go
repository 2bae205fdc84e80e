package lcuhttp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicAuth(t *testing.T) {
	// base64("riot:abc")
	assert.Equal(t, "Basic cmlvdDphYmM=", BasicAuth("abc"))
}

func TestDoSendsHeadersAndBody(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/lol-lobby/v2/lobby", r.URL.Path)
		assert.Equal(t, BasicAuth("tok"), r.Header.Get("Authorization"))
		assert.Equal(t, "application/json, text/plain", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(420), body["queueId"])

		_, _ = io.WriteString(w, `{"partyId":"p1","members":[1,2]}`)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Token: "tok", Auth: true, InsecureSkipVerify: true})
	got := c.Do(context.Background(), "post", "/lol-lobby/v2/lobby", map[string]any{"queueId": 420})

	m, ok := got.(map[string]any)
	require.True(t, ok, "got %T", got)
	assert.Equal(t, "p1", m["partyId"])
}

func TestDoWithoutLeadingSlash(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lol-summoner/v1/current-summoner", r.URL.Path)
		_, _ = io.WriteString(w, `"ok"`)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/", Token: "tok", Auth: true, InsecureSkipVerify: true})
	assert.Equal(t, "ok", c.Do(context.Background(), http.MethodGet, "lol-summoner/v1/current-summoner", nil))
}

func TestDoLiveHasNoAuth(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[1,2,3]`)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, InsecureSkipVerify: true})
	assert.Equal(t, []any{float64(1), float64(2), float64(3)},
		c.Do(context.Background(), http.MethodGet, "liveclientdata/playerlist", nil))
}

func TestDoMissingTokenIsErrorData(t *testing.T) {
	c := New(Options{BaseURL: "https://127.0.0.1:1/", Auth: true, InsecureSkipVerify: true})
	assert.Equal(t, ErrorBody(500, ServiceError), c.Do(context.Background(), http.MethodGet, "x", nil))
}

func TestDoNonJSONIsErrorData(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>nope</html>")
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, InsecureSkipVerify: true})
	assert.Equal(t, ErrorBody(500, RequestError), c.Do(context.Background(), http.MethodGet, "x", nil))
}

func TestDoEmptyBodyIsNil(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Token: "t", Auth: true, InsecureSkipVerify: true})
	assert.Nil(t, c.Do(context.Background(), http.MethodPost, "lol-matchmaking/v1/ready-check/accept", nil))
}

func TestDoTransportFailureIsErrorData(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url, Token: "t", Auth: true, InsecureSkipVerify: true})
	assert.Equal(t, ErrorBody(500, ServiceError), c.Do(context.Background(), http.MethodGet, "x", nil))
}

func TestDoRejectsSelfSignedWhenVerifying(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Token: "t", Auth: true})
	assert.Equal(t, ErrorBody(500, ServiceError), c.Do(context.Background(), http.MethodGet, "x", nil))
}

func TestDoTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(Options{BaseURL: srv.URL, InsecureSkipVerify: true, Timeout: 50 * time.Millisecond})
	assert.Equal(t, ErrorBody(500, RequestError), c.Do(context.Background(), http.MethodGet, "slow", nil))
}
