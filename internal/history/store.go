// Package history records the outcome of every library build attempt.
// API keys are never written; only the account id identifies an attempt.
package history

import (
	"context"
	"time"

	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
)

// DefaultLimit is the number of attempts listed when no limit is configured.
const DefaultLimit = 50

// ValidateLimit rejects non-positive listing limits.
func ValidateLimit(limit int) error {
	if limit <= 0 {
		return errors.ValidationError("limit must be a positive integer").
			WithContext("limit", limit).
			Build()
	}
	return nil
}

// Attempt is one recorded build attempt.
type Attempt struct {
	ID        string        `json:"id"`
	AccountID string        `json:"steam_id"`
	Outcome   string        `json:"outcome"`
	Message   string        `json:"message,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Store persists and lists build attempts.
type Store interface {
	// Record appends an attempt.
	Record(ctx context.Context, a Attempt) error

	// Recent returns up to limit attempts, newest first. limit must be positive.
	Recent(ctx context.Context, limit int) ([]Attempt, error)

	// Close releases resources.
	Close() error
}
