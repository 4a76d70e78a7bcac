package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/librarybuilder/internal/config"
	derrors "git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/librarybuilder/internal/server/handlers"
	smw "git.home.luguber.info/inful/librarybuilder/internal/server/middleware"
)

// Server manages the application and admin HTTP listeners.
type Server struct {
	appServer   *http.Server
	adminServer *http.Server
	appAddr     net.Addr
	adminAddr   net.Addr
	cfg         *config.Config
	deps        Dependencies

	libraryHandlers    *handlers.LibraryHandlers
	monitoringHandlers *handlers.MonitoringHandlers

	mchain func(http.Handler) http.Handler
}

// New constructs the server wiring. Listeners are not opened until Start.
func New(cfg *config.Config, deps Dependencies) (*Server, error) {
	if err := config.ValidateNavigation(cfg.Navigation); err != nil {
		return nil, err
	}
	pages, err := handlers.NewPages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:  cfg,
		deps: deps,
		libraryHandlers: handlers.NewLibraryHandlers(deps.Submitter, deps.Sessions, deps.History, pages, handlers.LibraryConfig{
			LoginPath:    cfg.Navigation.LoginPath,
			HistoryLimit: cfg.History.Limit,
		}),
		monitoringHandlers: handlers.NewMonitoringHandlers(time.Now()),
		mchain:             smw.Chain(slog.Default(), derrors.NewHTTPErrorAdapter(slog.Default())),
	}
	return s, nil
}

// AppHandler returns the application routes wrapped in middleware.
func (s *Server) AppHandler() http.Handler {
	mux := http.NewServeMux()
	h := s.libraryHandlers
	mux.HandleFunc(config.APIPathPrefix+"library", h.HandleSubmit)
	mux.HandleFunc(config.APIPathPrefix+"signout", h.HandleSignOut)
	mux.HandleFunc(config.APIPathPrefix+"session", h.HandleSession)
	mux.HandleFunc(config.APIPathPrefix+"builds", h.HandleBuilds)
	mux.HandleFunc(s.cfg.Navigation.Destination, h.HandleLibrary)
	mux.HandleFunc(s.cfg.Navigation.LoginPath, s.exact(s.cfg.Navigation.LoginPath, h.HandleLogin))
	return s.mchain(mux)
}

// AdminHandler returns the admin routes wrapped in middleware.
func (s *Server) AdminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.monitoringHandlers.HandleHealthCheck)
	mux.HandleFunc("/healthz", s.monitoringHandlers.HandleHealthCheck)
	if s.cfg.Metrics.Enabled && s.deps.MetricsHandler != nil {
		mux.Handle("/metrics", s.deps.MetricsHandler)
	}
	return s.mchain(mux)
}

// exact restricts a subtree pattern such as "/" to the path itself.
func (s *Server) exact(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		next(w, r)
	}
}

// Start binds both listeners before serving either, so a busy port fails startup
// without leaving the other server half-running.
func (s *Server) Start(ctx context.Context) error {
	type preBind struct {
		name string
		addr string
		ln   net.Listener
	}
	binds := []preBind{
		{name: "app", addr: s.cfg.Server.Address},
		{name: "admin", addr: s.cfg.Server.AdminAddress},
	}
	var bindErrs []error
	lc := net.ListenConfig{}
	for i := range binds {
		ln, err := lc.Listen(ctx, "tcp", binds[i].addr)
		if err != nil {
			bindErrs = append(bindErrs, fmt.Errorf("%s address %s: %w", binds[i].name, binds[i].addr, err))
			continue
		}
		binds[i].ln = ln
	}
	if len(bindErrs) > 0 {
		for _, b := range binds {
			if b.ln != nil {
				_ = b.ln.Close()
			}
		}
		return derrors.RuntimeError("http startup failed").WithCause(errors.Join(bindErrs...)).Build()
	}

	srv := s.cfg.Server
	s.appServer = &http.Server{
		Handler:           s.AppHandler(),
		ReadTimeout:       srv.ReadTimeout.Std(),
		ReadHeaderTimeout: srv.ReadTimeout.Std(),
		WriteTimeout:      srv.WriteTimeout.Std(),
		IdleTimeout:       srv.IdleTimeout.Std(),
	}
	s.adminServer = &http.Server{
		Handler:           s.AdminHandler(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.appAddr = binds[0].ln.Addr()
	s.adminAddr = binds[1].ln.Addr()
	s.serve("app", s.appServer, binds[0].ln)
	s.serve("admin", s.adminServer, binds[1].ln)

	slog.Info("HTTP servers started",
		slog.String("address", s.appAddr.String()),
		slog.String("admin_address", s.adminAddr.String()))
	return nil
}

// AppAddr returns the bound application address, or nil before Start.
func (s *Server) AppAddr() net.Addr { return s.appAddr }

// AdminAddr returns the bound admin address, or nil before Start.
func (s *Server) AdminAddr() net.Addr { return s.adminAddr }

// Stop gracefully shuts down both servers.
func (s *Server) Stop(ctx context.Context) error {
	var errs []error
	if s.adminServer != nil {
		if err := s.adminServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("admin server shutdown: %w", err))
		}
	}
	if s.appServer != nil {
		if err := s.appServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("app server shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	slog.Info("HTTP servers stopped")
	return nil
}

func (s *Server) serve(kind string, srv *http.Server, ln net.Listener) {
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error(fmt.Sprintf("%s server error", kind), "error", err)
		}
	}()
}
