package build

import (
	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
)

// Sentinel faults returned by builder transports. Compare with errors.Is; the
// returned errors carry the underlying cause and transport context.
var (
	// ErrUnreachable indicates the library builder could not be reached.
	ErrUnreachable = errors.NetworkError("library builder unreachable").Build()

	// ErrNoResponders indicates no library builder is listening for requests.
	ErrNoResponders = errors.NetworkError("no library builder is available").Build()

	// ErrMalformedReply indicates the builder answered with something that is not a Result.
	ErrMalformedReply = errors.NetworkError("library builder returned an unreadable reply").Build()

	// ErrUnauthorized indicates the builder refused the configured access token.
	ErrUnauthorized = errors.AuthError("library builder rejected the access token").Build()

	// ErrEncodeRequest indicates the credentials could not be encoded for transport.
	ErrEncodeRequest = errors.InternalError("could not encode library build request").Build()
)
