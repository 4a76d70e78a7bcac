// Package responses defines API response types used by librarybuilder HTTP handlers.
package responses

import (
	"time"

	"git.home.luguber.info/inful/librarybuilder/internal/history"
)

// SubmitResponse is returned for a library build submission. Status is "success"
// or the builder's failure message, verbatim.
type SubmitResponse struct {
	Status       string `json:"status"`
	Destination  string `json:"destination,omitempty"`
	SubmissionID string `json:"submission_id"`
}

// SessionResponse describes the saved session. API keys are never included.
type SessionResponse struct {
	SignedIn  bool   `json:"signed_in"`
	AccountID string `json:"steam_id,omitempty"`
}

// SignOutResponse confirms the saved session was cleared.
type SignOutResponse struct {
	Status string `json:"status"`
}

// BuildsResponse lists recent build attempts, newest first.
type BuildsResponse struct {
	Attempts []history.Attempt `json:"attempts"`
}

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
}
