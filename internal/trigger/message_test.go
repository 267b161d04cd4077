package trigger

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookswap/internal/model"
)

func TestOnNewMessage(t *testing.T) {
	ctx := context.Background()
	_, svc, fcm := newTestTriggers()

	seedConversation(t, svc, "c1", "b1", "u1", "u2")
	require.NoError(t, svc.Write(ctx, model.BookTitle("b1"), strings.Repeat("x", 80)))
	require.NoError(t, svc.Write(ctx, model.UserUsername("u2"), "bob"))
	require.NoError(t, svc.Write(ctx, model.Token("u1", "tok1"), true))

	require.NoError(t, svc.WriteAs(ctx, "u2", model.ConversationMessage("c1", "m1"), model.Message{
		Recipient: "u1",
		Timestamp: 1700000000000,
		Text:      strings.Repeat("y", 300),
	}))

	// Only the recipient side's counter moves.
	assert.Equal(t, int64(1), readInt(t, svc, model.ConversationSide("c1", "owner").Child("unreadMessages")))
	assert.False(t, readValue(t, svc, model.ConversationSide("c1", "peer").Child("unreadMessages")).Exists())

	// Both users' active lists get the negated message timestamp.
	assert.Equal(t, int64(-1700000000000), readInt(t, svc, model.UserActiveConversation("u1", "c1").Child("timestamp")))
	assert.Equal(t, int64(-1700000000000), readInt(t, svc, model.UserActiveConversation("u2", "c1").Child("timestamp")))

	reqs := fcm.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, []string{"tok1"}, reqs[0].RegistrationIDs)
	assert.Equal(t, "c1", reqs[0].Data.ConversationID)

	title := strings.TrimPrefix(reqs[0].Data.Title, "bob - ")
	assert.Len(t, title, 64)
	assert.True(t, strings.HasSuffix(title, "..."))

	assert.Len(t, reqs[0].Data.Message, 256)
	assert.True(t, strings.HasSuffix(reqs[0].Data.Message, "..."))
}

func TestOnNewMessageShortTextPassesThrough(t *testing.T) {
	ctx := context.Background()
	_, svc, fcm := newTestTriggers()

	seedConversation(t, svc, "c1", "b1", "u1", "u2")
	require.NoError(t, svc.Write(ctx, model.BookTitle("b1"), "Dune"))
	require.NoError(t, svc.Write(ctx, model.UserUsername("u1"), "alice"))
	require.NoError(t, svc.Write(ctx, model.Token("u2", "tok1"), true))

	require.NoError(t, svc.WriteAs(ctx, "u1", model.ConversationMessage("c1", "m1"), model.Message{
		Recipient: "u2",
		Timestamp: 5,
		Text:      "see you tomorrow",
	}))

	assert.Equal(t, int64(1), readInt(t, svc, model.ConversationSide("c1", "peer").Child("unreadMessages")))

	reqs := fcm.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "alice - Dune", reqs[0].Data.Title)
	assert.Equal(t, "see you tomorrow", reqs[0].Data.Message)
}

func TestOnNewMessageNoTokensIsNoop(t *testing.T) {
	ctx := context.Background()
	_, svc, fcm := newTestTriggers()

	seedConversation(t, svc, "c1", "b1", "u1", "u2")
	require.NoError(t, svc.Write(ctx, model.BookTitle("b1"), "Dune"))
	require.NoError(t, svc.Write(ctx, model.UserUsername("u2"), "bob"))

	require.NoError(t, svc.WriteAs(ctx, "u2", model.ConversationMessage("c1", "m1"), model.Message{
		Recipient: "u1",
		Timestamp: 5,
		Text:      "hi",
	}))

	assert.Empty(t, fcm.requests())
	// Everything else still happens.
	assert.Equal(t, int64(1), readInt(t, svc, model.ConversationSide("c1", "owner").Child("unreadMessages")))
}

func TestOnNewMessageCountsPerRecipient(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newTestTriggers()

	seedConversation(t, svc, "c1", "b1", "u1", "u2")
	require.NoError(t, svc.Write(ctx, model.BookTitle("b1"), "Dune"))
	require.NoError(t, svc.Write(ctx, model.UserUsername("u1"), "alice"))
	require.NoError(t, svc.Write(ctx, model.UserUsername("u2"), "bob"))

	for i, m := range []model.Message{
		{Recipient: "u1", Timestamp: 1, Text: "a"},
		{Recipient: "u1", Timestamp: 2, Text: "b"},
		{Recipient: "u2", Timestamp: 3, Text: "c"},
	} {
		mid := string(rune('m'+i)) + "1"
		sender := "u2"
		if m.Recipient == "u2" {
			sender = "u1"
		}
		require.NoError(t, svc.WriteAs(ctx, sender, model.ConversationMessage("c1", mid), m))
	}

	assert.Equal(t, int64(2), readInt(t, svc, model.ConversationSide("c1", "owner").Child("unreadMessages")))
	assert.Equal(t, int64(1), readInt(t, svc, model.ConversationSide("c1", "peer").Child("unreadMessages")))
}
