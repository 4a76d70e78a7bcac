package natsbuilder

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/librarybuilder/internal/build"
	"git.home.luguber.info/inful/librarybuilder/internal/credentials"
)

type fakeRequester struct {
	subject  string
	payload  []byte
	deadline bool
	reply    *nats.Msg
	err      error
}

func (f *fakeRequester) RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error) {
	f.subject = subj
	f.payload = data
	_, f.deadline = ctx.Deadline()
	return f.reply, f.err
}

var testCreds = credentials.Credentials{
	AccountID:       "76561198000000000",
	PrimaryAPIKey:   "ABC123",
	SecondaryAPIKey: "XYZ789",
}

func TestClientBuild_Success(t *testing.T) {
	conn := &fakeRequester{reply: &nats.Msg{Data: []byte(`{"status":"success"}`)}}
	c := New(conn, "", 0)

	res, err := c.Build(context.Background(), testCreds)
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	assert.Equal(t, DefaultSubject, conn.subject)
	assert.False(t, conn.deadline)

	var sent credentials.Credentials
	require.NoError(t, json.Unmarshal(conn.payload, &sent))
	assert.Equal(t, testCreds, sent)
}

func TestClientBuild_FailureMessage(t *testing.T) {
	conn := &fakeRequester{reply: &nats.Msg{Data: []byte(`{"status":"Invalid Steam API key"}`)}}
	c := New(conn, "builds.custom", time.Minute)

	res, err := c.Build(context.Background(), testCreds)
	require.NoError(t, err)
	assert.Equal(t, "Invalid Steam API key", res.Status)
	assert.Equal(t, "builds.custom", conn.subject)
	assert.True(t, conn.deadline)
}

func TestClientBuild_NoResponders(t *testing.T) {
	c := New(&fakeRequester{err: nats.ErrNoResponders}, "", 0)

	_, err := c.Build(context.Background(), testCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, build.ErrNoResponders)
	assert.ErrorIs(t, err, nats.ErrNoResponders)
}

func TestClientBuild_Timeout(t *testing.T) {
	c := New(&fakeRequester{err: nats.ErrTimeout}, "", 0)

	_, err := c.Build(context.Background(), testCreds)
	assert.ErrorIs(t, err, build.ErrUnreachable)
}

func TestClientBuild_MalformedReply(t *testing.T) {
	c := New(&fakeRequester{reply: &nats.Msg{Data: []byte("nope")}}, "", 0)

	_, err := c.Build(context.Background(), testCreds)
	assert.ErrorIs(t, err, build.ErrMalformedReply)
}
