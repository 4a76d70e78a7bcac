package httpserver

import (
	"net/http"

	"git.home.luguber.info/inful/librarybuilder/internal/history"
	"git.home.luguber.info/inful/librarybuilder/internal/server/handlers"
	"git.home.luguber.info/inful/librarybuilder/internal/session"
)

// Dependencies are the domain services the HTTP endpoints call into.
type Dependencies struct {
	Submitter handlers.Submitter
	Sessions  session.Store
	// Optional: build attempt log for /api/builds and the library view.
	History history.Store
	// Optional: served at /metrics on the admin listener when metrics are enabled.
	MetricsHandler http.Handler
}
