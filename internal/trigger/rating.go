package trigger

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"bookswap/internal/model"
	"bookswap/internal/store"
)

func (t Triggers) onOwnerRatingAdded(ctx context.Context, ev store.Event) error {
	return t.ratingWritten(ctx, ev, model.SideOwner)
}

func (t Triggers) onPeerRatingAdded(ctx context.Context, ev store.Event) error {
	return t.ratingWritten(ctx, ev, model.SidePeer)
}

// ratingWritten handles a rating written on one conversation side: it marks
// that side's feedback flag and credits the rating to the opposite user.
// A removed rating is treated as a guard miss.
func (t Triggers) ratingWritten(ctx context.Context, ev store.Event, side string) error {
	if !ev.After.Exists() {
		return nil
	}
	cid := ev.Params["cid"]
	ratedSide := model.SidePeer
	if side == model.SidePeer {
		ratedSide = model.SideOwner
	}

	var bookID, ratedUID string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := t.Store.Read(gctx, model.ConversationBookID(cid))
		bookID = v.String()
		return err
	})
	g.Go(func() error {
		v, err := t.Store.Read(gctx, model.ConversationSideUID(cid, ratedSide))
		ratedUID = v.String()
		return err
	})
	g.Go(func() error {
		return t.Store.Write(gctx, model.ConversationFlag(cid, side+"Feedback"), true)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	t.Logger.Debugf("ratingWritten: ConversationID: %s, side: %s, rated UserID: %s, BookID: %s",
		cid, side, ratedUID, bookID)
	return t.ratingAdded(ctx, ratedUID, bookID, ev.After)
}

// ratingAdded stamps the rating with the book id and the current timestamp,
// appends it to the rated user's history, and maintains the two running
// aggregates. The increments are not idempotent: a duplicate delivery
// double-counts, which is inherent to at-least-once dispatch here.
func (t Triggers) ratingAdded(ctx context.Context, uid string, bookID string, v store.Value) error {
	var r model.Rating
	if err := v.Decode(&r); err != nil {
		return err
	}
	r.BookID = bookID
	r.Timestamp = time.Now().UnixMilli()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return t.Store.Write(ctx, model.UserRatingEntry(uid, -r.Timestamp), r)
	})
	g.Go(func() error {
		_, err := t.Store.Increment(ctx, model.UserStatistic(uid, "ratingTotal"), store.AddFloat(r.Score))
		return err
	})
	g.Go(func() error {
		_, err := t.Store.Increment(ctx, model.UserStatistic(uid, "ratingCount"), store.AddInt(1))
		return err
	})
	return g.Wait()
}
