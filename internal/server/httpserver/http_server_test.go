package httpserver

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/librarybuilder/internal/build"
	"git.home.luguber.info/inful/librarybuilder/internal/config"
	"git.home.luguber.info/inful/librarybuilder/internal/credentials"
	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/librarybuilder/internal/metrics"
	"git.home.luguber.info/inful/librarybuilder/internal/orchestrator"
	"git.home.luguber.info/inful/librarybuilder/internal/session"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Server.AdminAddress = "127.0.0.1:0"
	cfg.Metrics.Enabled = true
	return cfg
}

func newServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	builder := build.BuilderFunc(func(context.Context, credentials.Credentials) (build.Result, error) {
		return build.Result{Status: "success"}, nil
	})
	store := session.NewMemoryStore()
	orch := orchestrator.New(builder, store, orchestrator.Config{
		Destination:                 cfg.Navigation.Destination,
		PersistCredentialsOnSuccess: cfg.Session.PersistCredentials(),
	}, orchestrator.WithRecorder(rec))

	srv, err := New(cfg, Dependencies{
		Submitter:      orch,
		Sessions:       store,
		MetricsHandler: metrics.HTTPHandler(reg),
	})
	require.NoError(t, err)
	return srv
}

func TestAppHandler_Routes(t *testing.T) {
	srv := newServer(t, testConfig(t))
	h := srv.AppHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	form := url.Values{credentials.FieldAccountID: {"1"}, credentials.FieldPrimaryAPIKey: {"a"}, credentials.FieldSecondaryAPIKey: {"b"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/library", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	assert.JSONEq(t, `{"signed_in":true,"steam_id":"1"}`, rec.Body.String())
}

func TestNew_RejectsDestinationOnAPIRoute(t *testing.T) {
	cfg := testConfig(t)
	cfg.Navigation.Destination = "/api/session"

	_, err := New(cfg, Dependencies{Sessions: session.NewMemoryStore()})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestAppHandler_CustomNavigationPaths(t *testing.T) {
	cfg := testConfig(t)
	cfg.Navigation.Destination = "/games"
	cfg.Navigation.LoginPath = "/signin"
	h := newServer(t, cfg).AppHandler()

	for path, want := range map[string]int{
		"/signin": http.StatusOK,
		"/games":  http.StatusOK,
		"/":       http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}
}

func TestAdminHandler_MetricsToggle(t *testing.T) {
	cfg := testConfig(t)
	srv := newServer(t, cfg)

	rec := httptest.NewRecorder()
	srv.AdminHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "librarybuilder_build_in_flight")

	cfg.Metrics.Enabled = false
	rec = httptest.NewRecorder()
	srv.AdminHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StartStop(t *testing.T) {
	srv := newServer(t, testConfig(t))
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })

	resp, err := http.Get("http://" + srv.AdminAddr().String() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)

	resp, err = http.Get("http://" + srv.AppAddr().String() + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop(context.Background()))
}

func TestServer_StartFailsWhenAddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig(t)
	cfg.Server.AdminAddress = ln.Addr().String()
	srv := newServer(t, cfg)

	err = srv.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryRuntime))
	assert.Nil(t, srv.AppAddr())
}
