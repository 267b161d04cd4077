// Package trigger contains the reactive core: handlers bound to store path
// patterns that maintain derived state (unread counters, conversation lists,
// lending statistics, rating aggregates) and fan out push notifications.
//
// Handlers are stateless. Within one invocation, independent store
// operations run concurrently and the invocation succeeds only if all of
// them do; there is no rollback, so every handler is written to tolerate
// re-invocation where the data allows it.
package trigger

import (
	"bookswap/internal/client"
	"bookswap/internal/store"
)

const (
	maxNotificationLen = 256
	maxBookTitleLen    = 64
)

type pushSender interface {
	FCMSendNotification(req client.FCMSendRequest) (client.FCMSendResponse, error)
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

type Triggers struct {
	Store  *store.Service
	FCM    pushSender
	Logger logger
}

// Register binds every handler to its path pattern. The patterns and edge
// conditions are load-bearing; changing them changes what the mobile
// clients observe.
func (t Triggers) Register() {
	t.Store.OnCreate("onNewMessage", "conversations/{cid}/messages/{mid}", t.onNewMessage)
	t.Store.OnWrite("onConversationArchived", "conversations/{cid}/flags/archived", t.onConversationArchived)
	t.Store.OnWrite("onBookDeletedLegacy", "books/{bid}/deleted", t.onBookDeletedLegacy)
	t.Store.OnWrite("onBookDeleted", "books/{bid}/flags/deleted", t.onBookDeleted)
	t.Store.OnWrite("onBorrowingStarted", "conversations/{cid}/flags/borrowingState", t.onBorrowingStarted)
	t.Store.OnWrite("onBorrowingEnded", "conversations/{cid}/flags/returnState", t.onBorrowingEnded)
	t.Store.OnWrite("onOwnerRatingAdded", "conversations/{cid}/owner/rating", t.onOwnerRatingAdded)
	t.Store.OnWrite("onPeerRatingAdded", "conversations/{cid}/peer/rating", t.onPeerRatingAdded)
}

// risingEdge is satisfied only by a not-true to true transition, including
// creation of the flag.
func risingEdge(ev store.Event) bool {
	return !ev.Before.Bool() && ev.After.Bool()
}
