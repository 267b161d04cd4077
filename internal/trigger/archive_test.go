package trigger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookswap/internal/model"
)

func TestOnConversationArchived(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newTestTriggers()

	seedConversation(t, svc, "c1", "b1", "u1", "u2")
	require.NoError(t, svc.Write(ctx, model.UserActiveConversation("u1", "c1").Child("timestamp"), int64(-42)))
	require.NoError(t, svc.Write(ctx, model.UserActiveConversation("u2", "c1").Child("timestamp"), int64(-42)))

	require.NoError(t, svc.Write(ctx, model.ConversationFlag("c1", "archived"), true))

	for _, uid := range []string{"u1", "u2"} {
		assert.False(t, readValue(t, svc, model.UserActiveConversation(uid, "c1")).Exists())
		assert.Equal(t, int64(-42), readInt(t, svc, model.UserArchivedConversation(uid, "c1").Child("timestamp")))
	}
}

func TestOnConversationArchivedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tr, svc, _ := newTestTriggers()

	seedConversation(t, svc, "c1", "b1", "u1", "u2")
	require.NoError(t, svc.Write(ctx, model.UserActiveConversation("u1", "c1").Child("timestamp"), int64(-42)))

	require.NoError(t, tr.archive(ctx, "u1", "c1"))
	require.NoError(t, tr.archive(ctx, "u1", "c1"))

	assert.False(t, readValue(t, svc, model.UserActiveConversation("u1", "c1")).Exists())
	assert.Equal(t, int64(-42), readInt(t, svc, model.UserArchivedConversation("u1", "c1").Child("timestamp")))
}

func TestOnConversationArchivedEdgeGuard(t *testing.T) {
	tests := []struct {
		name     string
		before   any
		after    any
		archived bool
	}{
		{name: "absent to true", before: nil, after: true, archived: true},
		{name: "false to true", before: false, after: true, archived: true},
		{name: "true to true", before: true, after: true, archived: false},
		{name: "true to false", before: true, after: false, archived: false},
		{name: "false to false", before: false, after: false, archived: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			_, svc, _ := newTestTriggers()

			seedConversation(t, svc, "c1", "b1", "u1", "u2")
			if tt.before != nil {
				// Seed the flag via the backend so no handler fires for it.
				require.NoError(t, svc.Write(ctx, model.UserActiveConversation("u1", "c1").Child("timestamp"), int64(-1)))
				require.NoError(t, svc.Write(ctx, model.ConversationFlag("c1", "archived"), tt.before))
				if b, _ := tt.before.(bool); b {
					// A rising seed already archived; restore the active entry.
					require.NoError(t, svc.Remove(ctx, model.UserArchivedConversation("u1", "c1")))
					require.NoError(t, svc.Write(ctx, model.UserActiveConversation("u1", "c1").Child("timestamp"), int64(-1)))
				}
			} else {
				require.NoError(t, svc.Write(ctx, model.UserActiveConversation("u1", "c1").Child("timestamp"), int64(-1)))
			}

			require.NoError(t, svc.Write(ctx, model.ConversationFlag("c1", "archived"), tt.after))

			assert.Equal(t, tt.archived, readValue(t, svc, model.UserArchivedConversation("u1", "c1")).Exists())
			assert.Equal(t, !tt.archived, readValue(t, svc, model.UserActiveConversation("u1", "c1")).Exists())
		})
	}
}
