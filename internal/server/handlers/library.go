package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"git.home.luguber.info/inful/librarybuilder/internal/credentials"
	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/librarybuilder/internal/history"
	"git.home.luguber.info/inful/librarybuilder/internal/logfields"
	"git.home.luguber.info/inful/librarybuilder/internal/orchestrator"
	"git.home.luguber.info/inful/librarybuilder/internal/server/responses"
	"git.home.luguber.info/inful/librarybuilder/internal/session"
	"git.home.luguber.info/inful/librarybuilder/internal/version"
)

const maxSubmissionBytes = 64 << 10

// Submitter runs a library build submission; *orchestrator.Orchestrator satisfies it.
type Submitter interface {
	Submit(ctx context.Context, sub orchestrator.Submission, view orchestrator.View) orchestrator.Outcome
}

// LibraryConfig carries the paths and limits the library handlers need.
type LibraryConfig struct {
	LoginPath    string
	HistoryLimit int
}

// LibraryHandlers serves sign-in, submission, session and library endpoints.
type LibraryHandlers struct {
	submitter    Submitter
	sessions     session.Store
	history      history.Store
	pages        *Pages
	cfg          LibraryConfig
	errorAdapter *errors.HTTPErrorAdapter
}

// NewLibraryHandlers creates the handlers. hist may be nil.
func NewLibraryHandlers(submitter Submitter, sessions session.Store, hist history.Store, pages *Pages, cfg LibraryConfig) *LibraryHandlers {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/"
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = history.DefaultLimit
	}
	return &LibraryHandlers{
		submitter:    submitter,
		sessions:     sessions,
		history:      hist,
		pages:        pages,
		cfg:          cfg,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// formSubmission adapts a form POST to orchestrator.Submission.
type formSubmission struct {
	r         *http.Request
	prevented bool
}

func (s *formSubmission) FormValue(name string) string { return s.r.PostFormValue(name) }
func (s *formSubmission) PreventDefault()              { s.prevented = true }

// jsonSubmission adapts a decoded JSON body to orchestrator.Submission.
type jsonSubmission struct {
	credentials.Values
}

func (jsonSubmission) PreventDefault() {}

// pageView collects what the orchestrator asked the page to do.
type pageView struct {
	destination string
	notice      string
}

func (v *pageView) Navigate(destination string) { v.destination = destination }
func (v *pageView) Notify(message string)       { v.notice = message }

// HandleLogin serves the sign-in page (GET) and its form submission (POST).
func (h *LibraryHandlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.handleLoginPage(w, r)
	case http.MethodPost:
		h.handleLoginSubmit(w, r)
	default:
		h.methodNotAllowed(w, r, "GET, POST")
	}
}

func (h *LibraryHandlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := LoginPage{LoginPath: h.cfg.LoginPath, Version: version.Version}
	if creds, ok, err := session.Load(r.Context(), h.sessions); err != nil {
		slog.Warn("Failed to load saved session", logfields.Error(err))
	} else if ok {
		data.AccountID = creds.AccountID
	}
	if err := h.pages.RenderLogin(w, http.StatusOK, data); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to render page").Build())
	}
}

func (h *LibraryHandlers) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)
	if err := r.ParseForm(); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryValidation, "invalid form submission").Build())
		return
	}

	sub := &formSubmission{r: r}
	view := &pageView{}
	// The build outlives a client that stops waiting; its outcome is still persisted.
	out := h.submitter.Submit(context.WithoutCancel(r.Context()), sub, view)

	switch {
	case !sub.prevented:
		http.Redirect(w, r, h.cfg.LoginPath, http.StatusSeeOther)
	case out.Succeeded():
		http.Redirect(w, r, view.destination, http.StatusSeeOther)
	default:
		data := LoginPage{
			LoginPath: h.cfg.LoginPath,
			AccountID: out.AccountID,
			Alert:     view.notice,
			Version:   version.Version,
		}
		if err := h.pages.RenderLogin(w, h.statusFor(out), data); err != nil {
			slog.Error("Failed to render sign-in page", logfields.Error(err))
		}
	}
}

// HandleSubmit is the JSON equivalent of the sign-in form.
func (h *LibraryHandlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSubmissionBytes))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryValidation, "failed to read request body").Build())
		return
	}
	var values credentials.Values
	if err := json.Unmarshal(body, &values); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryValidation, "request body must be a JSON object of strings").Build())
		return
	}

	view := &pageView{}
	out := h.submitter.Submit(context.WithoutCancel(r.Context()), jsonSubmission{values}, view)

	switch out.State {
	case orchestrator.StateNavigated:
		_ = writeJSON(w, http.StatusOK, responses.SubmitResponse{
			Status:       "success",
			Destination:  view.destination,
			SubmissionID: out.ID,
		})
	case orchestrator.StateFailed:
		_ = writeJSON(w, http.StatusUnprocessableEntity, responses.SubmitResponse{
			Status:       view.notice,
			SubmissionID: out.ID,
		})
	default:
		h.errorAdapter.WriteErrorResponse(w, r, out.Err)
	}
}

// HandleSignOut clears the saved session. Form posts are redirected to the sign-in page.
func (h *LibraryHandlers) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if err := session.Clear(r.Context(), h.sessions); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	slog.Info("Signed out")
	if isFormPost(r) {
		http.Redirect(w, r, h.cfg.LoginPath, http.StatusSeeOther)
		return
	}
	_ = writeJSON(w, http.StatusOK, responses.SignOutResponse{Status: "signed_out"})
}

// HandleSession reports whether a session is saved.
func (h *LibraryHandlers) HandleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	creds, ok, err := session.Load(r.Context(), h.sessions)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, responses.SessionResponse{SignedIn: ok, AccountID: creds.AccountID})
}

// HandleBuilds lists recent build attempts. The limit query parameter caps the count.
func (h *LibraryHandlers) HandleBuilds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	limit := h.cfg.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("limit must be a positive integer").
				WithContext("limit", raw).
				Build())
			return
		}
		if err := history.ValidateLimit(n); err != nil {
			h.errorAdapter.WriteErrorResponse(w, r, err)
			return
		}
		limit = n
	}
	attempts, err := h.recent(r.Context(), limit)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeJSONPretty(w, r, http.StatusOK, responses.BuildsResponse{Attempts: attempts})
}

// HandleLibrary renders the destination view with the saved account's build history.
func (h *LibraryHandlers) HandleLibrary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	creds, _, err := session.Load(r.Context(), h.sessions)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	data := LibraryPage{AccountID: creds.AccountID}
	attempts, err := h.recent(r.Context(), h.cfg.HistoryLimit)
	if err != nil {
		slog.Warn("Failed to load build history", logfields.Error(err))
	}
	for _, a := range attempts {
		if data.AccountID == "" || a.AccountID == data.AccountID {
			data.Attempts = append(data.Attempts, a)
		}
	}
	if err := h.pages.RenderLibrary(w, data); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to render page").Build())
	}
}

func (h *LibraryHandlers) recent(ctx context.Context, limit int) ([]history.Attempt, error) {
	if h.history == nil {
		return []history.Attempt{}, nil
	}
	attempts, err := h.history.Recent(ctx, limit)
	if errors.HasCategory(err, errors.CategoryValidation) {
		return nil, err
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "failed to read build history").Build()
	}
	if attempts == nil {
		attempts = []history.Attempt{}
	}
	return attempts, nil
}

// statusFor maps a non-navigated outcome to the status code of the re-rendered page.
func (h *LibraryHandlers) statusFor(out orchestrator.Outcome) int {
	if out.State == orchestrator.StateFailed {
		return http.StatusUnprocessableEntity
	}
	return h.errorAdapter.StatusCodeFor(out.Err)
}

func (h *LibraryHandlers) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("invalid HTTP method").
		WithContext("method", r.Method).
		WithContext("allowed_method", allowed).
		Build())
}

func isFormPost(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data")
}
