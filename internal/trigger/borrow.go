package trigger

import (
	"context"

	"golang.org/x/sync/errgroup"

	"bookswap/internal/model"
	"bookswap/internal/store"
)

// conversationRefs is the read phase shared by the borrowing handlers: the
// three identifiers every write in the write phase depends on.
type conversationRefs struct {
	bookID string
	owner  string
	peer   string
}

func (t Triggers) readConversationRefs(ctx context.Context, cid string) (conversationRefs, error) {
	var refs conversationRefs
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := t.Store.Read(ctx, model.ConversationBookID(cid))
		refs.bookID = v.String()
		return err
	})
	g.Go(func() error {
		v, err := t.Store.Read(ctx, model.ConversationSideUID(cid, model.SideOwner))
		refs.owner = v.String()
		return err
	})
	g.Go(func() error {
		v, err := t.Store.Read(ctx, model.ConversationSideUID(cid, model.SidePeer))
		refs.peer = v.String()
		return err
	})
	return refs, g.Wait()
}

// onBorrowingStarted fires on writes to the borrowingState flag and acts
// only when the written value is the confirmed state. It marks the book
// unavailable, records the lending relationship on both users, and bumps
// the three statistics counters. All six writes are independent.
func (t Triggers) onBorrowingStarted(ctx context.Context, ev store.Event) error {
	if ev.After.Int() != model.StateConfirmed {
		return nil
	}
	cid := ev.Params["cid"]

	refs, err := t.readConversationRefs(ctx, cid)
	if err != nil {
		return err
	}
	t.Logger.Infof("onBorrowingStarted: ConversationID: %s, BookID: %s, owner: %s, peer: %s",
		cid, refs.bookID, refs.owner, refs.peer)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return t.Store.Write(ctx, model.BookFlag(refs.bookID, "available"), false)
	})
	g.Go(func() error {
		return t.Store.Write(ctx, model.UserLentBook(refs.owner, refs.bookID), refs.peer)
	})
	g.Go(func() error {
		return t.Store.Write(ctx, model.UserBorrowedBook(refs.peer, refs.bookID), refs.owner)
	})
	g.Go(func() error {
		_, err := t.Store.Increment(ctx, model.UserStatistic(refs.owner, "lentBooks"), store.AddInt(1))
		return err
	})
	g.Go(func() error {
		_, err := t.Store.Increment(ctx, model.UserStatistic(refs.peer, "borrowedBooks"), store.AddInt(1))
		return err
	})
	g.Go(func() error {
		_, err := t.Store.Increment(ctx, model.UserStatistic(refs.peer, "toBeReturnedBooks"), store.AddInt(1))
		return err
	})
	return g.Wait()
}

// onBorrowingEnded is the inverse: the book becomes available again, the
// cross-references are removed, and the peer's toBeReturnedBooks drops by 1.
func (t Triggers) onBorrowingEnded(ctx context.Context, ev store.Event) error {
	if ev.After.Int() != model.StateConfirmed {
		return nil
	}
	cid := ev.Params["cid"]

	refs, err := t.readConversationRefs(ctx, cid)
	if err != nil {
		return err
	}
	t.Logger.Infof("onBorrowingEnded: ConversationID: %s, BookID: %s, owner: %s, peer: %s",
		cid, refs.bookID, refs.owner, refs.peer)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return t.Store.Write(ctx, model.BookFlag(refs.bookID, "available"), true)
	})
	g.Go(func() error {
		return t.Store.Remove(ctx, model.UserLentBook(refs.owner, refs.bookID))
	})
	g.Go(func() error {
		return t.Store.Remove(ctx, model.UserBorrowedBook(refs.peer, refs.bookID))
	})
	g.Go(func() error {
		// TODO: confirm with product whether this should floor at 0; a
		// duplicate delivery currently drives the counter negative.
		_, err := t.Store.Increment(ctx, model.UserStatistic(refs.peer, "toBeReturnedBooks"), store.AddInt(-1))
		return err
	})
	return g.Wait()
}
