package trigger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookswap/internal/client"
	"bookswap/internal/model"
)

func strPtr(s string) *string { return &s }

func TestNotifyPrunesDeadTokens(t *testing.T) {
	ctx := context.Background()
	tr, svc, fcm := newTestTriggers()

	seedConversation(t, svc, "c1", "b1", "u1", "u2")
	require.NoError(t, svc.Write(ctx, model.BookTitle("b1"), "Dune"))
	require.NoError(t, svc.Write(ctx, model.UserUsername("u2"), "bob"))
	for _, tok := range []string{"tokA", "tokB", "tokC", "tokD"} {
		require.NoError(t, svc.Write(ctx, model.Token("u1", tok), true))
	}

	// Tokens go out in key order; answer per position.
	fcm.results = []client.FCMSendResult{
		{},
		{Error: strPtr(client.FCMErrNotRegistered)},
		{Error: strPtr(client.FCMErrInvalidRegistration)},
		{Error: strPtr("Unavailable")},
	}

	require.NoError(t, tr.notify(ctx, "c1", "u2", "u1", "hello"))

	reqs := fcm.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, []string{"tokA", "tokB", "tokC", "tokD"}, reqs[0].RegistrationIDs)

	// Gone registrations are pruned; transient errors keep the token.
	assert.True(t, readValue(t, svc, model.Token("u1", "tokA")).Bool())
	assert.False(t, readValue(t, svc, model.Token("u1", "tokB")).Exists())
	assert.False(t, readValue(t, svc, model.Token("u1", "tokC")).Exists())
	assert.True(t, readValue(t, svc, model.Token("u1", "tokD")).Bool())
}

func TestNotifyWithoutTokensSendsNothing(t *testing.T) {
	ctx := context.Background()
	tr, svc, fcm := newTestTriggers()

	seedConversation(t, svc, "c1", "b1", "u1", "u2")
	require.NoError(t, svc.Write(ctx, model.BookTitle("b1"), "Dune"))
	require.NoError(t, svc.Write(ctx, model.UserUsername("u2"), "bob"))

	require.NoError(t, tr.notify(ctx, "c1", "u2", "u1", "hello"))
	assert.Empty(t, fcm.requests())
}
