package trigger

import (
	"context"

	"golang.org/x/sync/errgroup"

	"bookswap/internal/model"
	"bookswap/internal/store"
)

// onBookDeletedLegacy mirrors the superseded books/{bid}/deleted flag into
// the canonical flags path, so older clients keep working. The canonical
// write re-enters the store and fires onBookDeleted.
func (t Triggers) onBookDeletedLegacy(ctx context.Context, ev store.Event) error {
	if !risingEdge(ev) {
		return nil
	}
	bid := ev.Params["bid"]
	t.Logger.Infof("onBookDeletedLegacy: Mirroring legacy deleted flag for BookID: %s", bid)
	return t.Store.Write(ctx, model.BookFlag(bid, "deleted"), true)
}

// onBookDeleted soft-deletes every conversation about the book: each gets
// flagged bookDeleted and archived. The archived write cascades into
// onConversationArchived per conversation, intentionally.
func (t Triggers) onBookDeleted(ctx context.Context, ev store.Event) error {
	if !risingEdge(ev) {
		return nil
	}
	bid := ev.Params["bid"]

	es, err := t.Store.QueryByField(ctx, model.Conversations(), "bookId", bid)
	if err != nil {
		return err
	}
	t.Logger.Infof("onBookDeleted: Soft-deleting %d conversation(s) for BookID: %s", len(es), bid)

	g, ctx := errgroup.WithContext(ctx)
	for _, e := range es {
		cid := e.Path[len(e.Path)-1]
		g.Go(func() error {
			return t.Store.Write(ctx, model.ConversationFlag(cid, "bookDeleted"), true)
		})
		g.Go(func() error {
			return t.Store.Write(ctx, model.ConversationFlag(cid, "archived"), true)
		})
	}
	return g.Wait()
}
