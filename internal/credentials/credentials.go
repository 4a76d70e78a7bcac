// Package credentials defines the three values a user submits to build a library
// and the collector that reads them from a submission.
package credentials

import "log/slog"

// Field names as submitted by the login form and transmitted to the library builder.
const (
	FieldAccountID       = "steam_id"
	FieldPrimaryAPIKey   = "steam_api_key"
	FieldSecondaryAPIKey = "steam_grid_api_key"
)

// Credentials identify the account to build a library for and authorize the two
// upstream services. All three are opaque at this layer.
type Credentials struct {
	AccountID       string `json:"steam_id"`
	PrimaryAPIKey   string `json:"steam_api_key"`
	SecondaryAPIKey string `json:"steam_grid_api_key"`
}

// FieldSource exposes named input fields of a submission. *http.Request satisfies it.
type FieldSource interface {
	FormValue(name string) string
}

// Collect reads the three credential fields from src as they are at call time.
// Values are returned verbatim: no trimming, no validation.
func Collect(src FieldSource) Credentials {
	return Credentials{
		AccountID:       src.FormValue(FieldAccountID),
		PrimaryAPIKey:   src.FormValue(FieldPrimaryAPIKey),
		SecondaryAPIKey: src.FormValue(FieldSecondaryAPIKey),
	}
}

// Values is a FieldSource backed by a map, used where there is no HTTP form.
type Values map[string]string

// FormValue returns the value stored under name, or "".
func (v Values) FormValue(name string) string { return v[name] }

// Values returns c keyed by field name.
func (c Credentials) Values() Values {
	return Values{
		FieldAccountID:       c.AccountID,
		FieldPrimaryAPIKey:   c.PrimaryAPIKey,
		FieldSecondaryAPIKey: c.SecondaryAPIKey,
	}
}

// LogValue keeps API keys out of logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String(FieldAccountID, c.AccountID),
		slog.Bool("steam_api_key_set", c.PrimaryAPIKey != ""),
		slog.Bool("steam_grid_api_key_set", c.SecondaryAPIKey != ""),
	)
}
