// Package errors provides the classified error primitives used across librarybuilder.
//
// Every failure that crosses a package boundary is described by a ClassifiedError:
//   - ErrorCategory: broad classification (config, validation, busy, network, build, storage, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - RetryStrategy: whether a caller may try again and how
//
// Presentation is handled by adapters: HTTPErrorAdapter maps categories to status
// codes and JSON payloads, CLIErrorAdapter maps them to exit codes.
//
// Example usage:
//
//	err := errors.NetworkError("library builder unreachable").
//		WithContext("transport", "nats").
//		WithCause(originalErr).
//		Build()
package errors
