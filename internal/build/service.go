package build

import (
	"context"
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/librarybuilder/internal/credentials"
	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
)

// StatusSuccess is the Result status reported by a successful build.
const StatusSuccess = "success"

// Result is the outcome reported by the library builder.
type Result struct {
	Status string `json:"status"`
}

// Succeeded reports whether the result carries the success sentinel.
func (r Result) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Builder performs one library build for the given credentials.
type Builder interface {
	Build(ctx context.Context, creds credentials.Credentials) (Result, error)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(ctx context.Context, creds credentials.Credentials) (Result, error)

// Build calls f.
func (f BuilderFunc) Build(ctx context.Context, creds credentials.Credentials) (Result, error) {
	return f(ctx, creds)
}

// EncodeRequest serializes credentials into the wire request body.
func EncodeRequest(creds credentials.Credentials) ([]byte, error) {
	data, err := json.Marshal(creds)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, ErrEncodeRequest.Message()).Build()
	}
	return data, nil
}

// wireResult accepts both the "status" field and the older "response" field
// used by earlier builder releases.
type wireResult struct {
	Status   *string `json:"status"`
	Response *string `json:"response"`
}

// DecodeResult parses a builder reply. A reply without a status field is malformed.
func DecodeResult(data []byte) (Result, error) {
	var w wireResult
	if err := json.Unmarshal(data, &w); err != nil {
		return Result{}, errors.WrapError(err, errors.CategoryNetwork, ErrMalformedReply.Message()).
			Retryable().
			Build()
	}
	switch {
	case w.Status != nil:
		return Result{Status: *w.Status}, nil
	case w.Response != nil:
		return Result{Status: *w.Response}, nil
	default:
		return Result{}, errors.WrapError(fmt.Errorf("reply has no status field"), errors.CategoryNetwork, ErrMalformedReply.Message()).
			Retryable().
			Build()
	}
}
