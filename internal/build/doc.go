// Package build defines the contract with the remote library builder.
//
// The builder is an opaque collaborator: it receives the submitted credentials,
// aggregates the user's library from the upstream services and answers with a
// Result whose Status is either StatusSuccess or a human-readable failure message.
// Transports live in sub-packages (httpbuilder, natsbuilder).
//
// A Builder returns a non-nil error only when the call itself failed to resolve
// (unreachable, undecodable reply, canceled). A build that ran and failed is a
// Result, never an error.
package build
