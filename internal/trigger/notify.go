package trigger

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"bookswap/internal/client"
	"bookswap/internal/misc"
	"bookswap/internal/model"
	"bookswap/internal/store"
)

// notify resolves the recipient's device tokens, composes the payload, sends
// it to every token, and prunes tokens the delivery reports as gone.
// Delivery is best-effort: transient per-token errors are dropped and no
// retry is scheduled.
func (t Triggers) notify(ctx context.Context, cid string, sender string, recipient string, message string) error {
	var (
		tokens     store.Value
		senderName string
		bookTitle  string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tokens, err = t.Store.Read(gctx, model.Tokens(recipient))
		return err
	})
	g.Go(func() error {
		v, err := t.Store.Read(gctx, model.UserUsername(sender))
		senderName = v.String()
		return err
	})
	g.Go(func() error {
		v, err := t.Store.Read(gctx, model.ConversationBookID(cid))
		if err != nil {
			return err
		}
		v, err = t.Store.Read(gctx, model.BookTitle(v.String()))
		bookTitle = v.String()
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if !tokens.HasChildren() {
		t.Logger.Debugf("notify: No tokens registered for UserID: %s, nothing to send", recipient)
		return nil
	}

	tokenList := tokens.Keys()
	fcmReq := client.FCMSendRequest{
		Data: client.FCMData{
			Title:          senderName + " - " + misc.StringLimit(bookTitle, maxBookTitleLen),
			Message:        message,
			ConversationID: cid,
		},
		RegistrationIDs: tokenList,
	}
	t.Logger.Infof("notify: Sending notification to %d token(s) for UserID: %s, ConversationID: %s",
		len(tokenList), recipient, cid)
	fcmResp, err := t.FCM.FCMSendNotification(fcmReq)
	if err != nil {
		return errors.Wrapf(err, "error sending notification for ConversationID: %s", cid)
	}
	t.Logger.Debugf("notify: Send results for ConversationID: %s, success: %d, failure: %d",
		cid, fcmResp.Success, fcmResp.Failure)

	g, gctx = errgroup.WithContext(ctx)
	for i, res := range fcmResp.Results {
		if i >= len(tokenList) || res.Error == nil {
			continue
		}
		token := tokenList[i]
		switch *res.Error {
		case client.FCMErrInvalidRegistration, client.FCMErrNotRegistered:
			t.Logger.Infof("notify: Pruning dead token for UserID: %s, err: %s", recipient, *res.Error)
			g.Go(func() error {
				return t.Store.Remove(gctx, model.Token(recipient, token))
			})
		default:
			t.Logger.Debugf("notify: Dropping delivery error for UserID: %s, err: %s", recipient, *res.Error)
		}
	}
	return g.Wait()
}
