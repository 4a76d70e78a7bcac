package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/Masterminds/sprig/v3"

	"git.home.luguber.info/inful/librarybuilder/internal/credentials"
	"git.home.luguber.info/inful/librarybuilder/internal/history"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Pages renders the HTML views.
type Pages struct {
	login   *template.Template
	library *template.Template
}

// LoginFields names the form inputs.
type LoginFields struct {
	AccountID       string
	PrimaryAPIKey   string
	SecondaryAPIKey string
}

// LoginPage is the data for the sign-in form.
type LoginPage struct {
	LoginPath string
	AccountID string
	// Alert, when set, is shown verbatim as a blocking notice.
	Alert   string
	Version string
	Fields  LoginFields
}

// LibraryPage is the data for the destination view.
type LibraryPage struct {
	AccountID string
	Attempts  []history.Attempt
}

// NewPages parses the embedded templates.
func NewPages() (*Pages, error) {
	login, err := parse("login.html.tmpl")
	if err != nil {
		return nil, err
	}
	library, err := parse("library.html.tmpl")
	if err != nil {
		return nil, err
	}
	return &Pages{login: login, library: library}, nil
}

func parse(name string) (*template.Template, error) {
	funcs := sprig.HtmlFuncMap()
	funcs["trunc"] = truncRunes
	tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// truncRunes keeps the first n runes of s, or the last -n when n is negative.
// Builder status messages are free text and may be non-ASCII.
func truncRunes(n int, s string) string {
	r := []rune(s)
	switch {
	case n >= 0 && len(r) > n:
		return string(r[:n])
	case n < 0 && len(r) > -n:
		return string(r[len(r)+n:])
	}
	return s
}

// RenderLogin writes the sign-in page with the given status code.
func (p *Pages) RenderLogin(w http.ResponseWriter, status int, data LoginPage) error {
	data.Fields = LoginFields{
		AccountID:       credentials.FieldAccountID,
		PrimaryAPIKey:   credentials.FieldPrimaryAPIKey,
		SecondaryAPIKey: credentials.FieldSecondaryAPIKey,
	}
	return render(w, status, p.login, data)
}

// RenderLibrary writes the destination view.
func (p *Pages) RenderLibrary(w http.ResponseWriter, data LibraryPage) error {
	return render(w, http.StatusOK, p.library, data)
}

func render(w http.ResponseWriter, status int, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}
