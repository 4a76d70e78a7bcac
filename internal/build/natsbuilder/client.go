// Package natsbuilder reaches the library builder with NATS request/reply.
package natsbuilder

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/librarybuilder/internal/build"
	"git.home.luguber.info/inful/librarybuilder/internal/credentials"
	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/librarybuilder/internal/logfields"
)

// DefaultSubject is the subject library builders subscribe to.
const DefaultSubject = "library.build"

// Requester is the subset of *nats.Conn used by Client.
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// Client sends one request per build and waits for the reply.
type Client struct {
	conn    Requester
	subject string
	timeout time.Duration
}

// New returns a Client publishing on subject. A timeout of zero leaves the
// deadline to the caller's context.
func New(conn Requester, subject string, timeout time.Duration) *Client {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Client{conn: conn, subject: subject, timeout: timeout}
}

// Connect dials url and returns a Client together with the connection to drain on shutdown.
func Connect(url, subject string, timeout time.Duration, opts ...nats.Option) (*Client, *nats.Conn, error) {
	opts = append([]nats.Option{nats.Name("librarybuilder")}, opts...)
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryNetwork, build.ErrUnreachable.Message()).
			Retryable().
			WithContext("url", url).
			Build()
	}
	slog.Info("Connected to NATS for library builds", logfields.Endpoint(url), logfields.Subject(subject))
	return New(conn, subject, timeout), conn, nil
}

// Build publishes creds and decodes the builder's reply.
func (c *Client) Build(ctx context.Context, creds credentials.Credentials) (build.Result, error) {
	data, err := build.EncodeRequest(creds)
	if err != nil {
		return build.Result{}, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	msg, err := c.conn.RequestWithContext(ctx, c.subject, data)
	if err != nil {
		base := build.ErrUnreachable
		if stderrors.Is(err, nats.ErrNoResponders) {
			base = build.ErrNoResponders
		}
		return build.Result{}, errors.WrapError(err, errors.CategoryNetwork, base.Message()).
			Retryable().
			WithContext("subject", c.subject).
			Build()
	}

	slog.Debug("Library builder replied",
		logfields.Transport("nats"),
		logfields.Subject(c.subject),
		logfields.Duration(time.Since(started)))

	result, err := build.DecodeResult(msg.Data)
	if err != nil {
		if classified, ok := errors.AsClassified(err); ok {
			return build.Result{}, classified.WithContext("subject", c.subject)
		}
		return build.Result{}, err
	}
	return result, nil
}
