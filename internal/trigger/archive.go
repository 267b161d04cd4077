package trigger

import (
	"context"

	"golang.org/x/sync/errgroup"

	"bookswap/internal/model"
	"bookswap/internal/store"
)

// onConversationArchived fires on writes to the archived flag and acts only
// on a rising edge; every other transition is a successful no-op.
func (t Triggers) onConversationArchived(ctx context.Context, ev store.Event) error {
	if !risingEdge(ev) {
		return nil
	}
	cid := ev.Params["cid"]
	t.Logger.Debugf("onConversationArchived: ConversationID: %s", cid)

	g, ctx := errgroup.WithContext(ctx)
	for _, side := range []string{model.SideOwner, model.SidePeer} {
		side := side
		g.Go(func() error {
			v, err := t.Store.Read(ctx, model.ConversationSideUID(cid, side))
			if err != nil {
				return err
			}
			return t.archive(ctx, v.String(), cid)
		})
	}
	return g.Wait()
}

// archive moves the conversation reference from the user's active list to
// their archived list. Idempotent: an absent active entry means there is
// nothing left to move. The remove and the write are not atomic; a crash
// between them can leave the reference in both lists, which is acceptable
// for a display-only list.
func (t Triggers) archive(ctx context.Context, uid string, cid string) error {
	activePath := model.UserActiveConversation(uid, cid)
	v, err := t.Store.Read(ctx, activePath)
	if err != nil {
		return err
	}
	if !v.Exists() {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return t.Store.Remove(ctx, activePath)
	})
	g.Go(func() error {
		return t.Store.Write(ctx, model.UserArchivedConversation(uid, cid), v.Raw())
	})
	return g.Wait()
}
