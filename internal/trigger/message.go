package trigger

import (
	"context"

	"golang.org/x/sync/errgroup"

	"bookswap/internal/misc"
	"bookswap/internal/model"
	"bookswap/internal/store"
)

// onNewMessage fires on creation of conversations/{cid}/messages/{mid}.
// It bumps the recipient side's unread counter, resorts both users' active
// conversation lists, and dispatches a push notification. The four effect
// groups have no ordering dependency and run concurrently.
func (t Triggers) onNewMessage(ctx context.Context, ev store.Event) error {
	cid := ev.Params["cid"]
	sender := ev.Auth
	recipient := ev.After.Child("recipient").String()
	// Active lists are keyed ascending, so the negated timestamp sorts the
	// newest conversation first.
	negTimestamp := -ev.After.Child("timestamp").Int()
	text := misc.StringLimit(ev.After.Child("text").String(), maxNotificationLen)

	t.Logger.Debugf("onNewMessage: ConversationID: %s, sender: %s, recipient: %s", cid, sender, recipient)

	g, ctx := errgroup.WithContext(ctx)
	for _, side := range []string{model.SideOwner, model.SidePeer} {
		side := side
		g.Go(func() error {
			return t.bumpUnread(ctx, cid, side, recipient)
		})
	}
	for _, uid := range []string{sender, recipient} {
		uid := uid
		g.Go(func() error {
			return t.Store.Write(ctx, model.UserActiveConversation(uid, cid).Child("timestamp"), negTimestamp)
		})
	}
	g.Go(func() error {
		return t.notify(ctx, cid, sender, recipient, text)
	})
	return g.Wait()
}

// bumpUnread increments the side's unread counter only if that side is the
// stated recipient; exactly one side matches per message.
func (t Triggers) bumpUnread(ctx context.Context, cid string, side string, recipient string) error {
	v, err := t.Store.Read(ctx, model.ConversationSide(cid, side))
	if err != nil {
		return err
	}
	if v.Child("uid").String() != recipient {
		return nil
	}
	_, err = t.Store.Increment(ctx, model.ConversationSide(cid, side).Child("unreadMessages"), store.AddInt(1))
	return err
}
