package httpbuilder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/librarybuilder/internal/build"
	"git.home.luguber.info/inful/librarybuilder/internal/credentials"
	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
)

var testCreds = credentials.Credentials{
	AccountID:       "76561198000000000",
	PrimaryAPIKey:   "ABC123",
	SecondaryAPIKey: "XYZ789",
}

func TestClientBuild_Success(t *testing.T) {
	var got map[string]string
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/build", WithToken("tok"))
	require.NoError(t, err)

	res, err := c.Build(context.Background(), testCreds)
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, map[string]string{
		"steam_id":           "76561198000000000",
		"steam_api_key":      "ABC123",
		"steam_grid_api_key": "XYZ789",
	}, got)
}

func TestClientBuild_FailureStatusIsAResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"status":"Invalid Steam API key"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	res, err := c.Build(context.Background(), testCreds)
	require.NoError(t, err)
	assert.Equal(t, "Invalid Steam API key", res.Status)
}

func TestClientBuild_MalformedReplyIsFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Build(context.Background(), testCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, build.ErrMalformedReply)
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	status, _ := classified.Context().Get("http_status")
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestClientBuild_UnreachableIsFault(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.Build(context.Background(), testCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, build.ErrUnreachable)
	assert.True(t, errors.HasCategory(err, errors.CategoryNetwork))
}

func TestClientBuild_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(srv.URL, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Build(context.Background(), testCreds)
	assert.ErrorIs(t, err, build.ErrUnreachable)
}

func TestNew_RejectsInvalidEndpoint(t *testing.T) {
	_, err := New("not a url")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestClientBuild_RejectedTokenIsAuthFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithToken("stale"))
	require.NoError(t, err)

	_, err = c.Build(context.Background(), testCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, build.ErrUnauthorized)
	assert.True(t, errors.HasCategory(err, errors.CategoryAuth))
	assert.Equal(t, http.StatusUnauthorized, errors.NewHTTPErrorAdapter(nil).StatusCodeFor(err))
}

func TestClientBuild_StatusOnUnauthorizedIsAResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"Invalid Steam API key"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	res, err := c.Build(context.Background(), testCreds)
	require.NoError(t, err)
	assert.Equal(t, "Invalid Steam API key", res.Status)
}

func TestSnippet_TruncatesByRune(t *testing.T) {
	assert.Equal(t, "short reply", snippet([]byte("short\nreply")))

	long := strings.Repeat("é", 300)
	got := snippet([]byte(long))
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 256, utf8.RuneCountInString(got))

	assert.True(t, utf8.ValidString(snippet([]byte{'o', 'k', 0xff})))
}
