package trigger

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"bookswap/internal/client"
	logpkg "bookswap/internal/logger"
	"bookswap/internal/model"
	"bookswap/internal/store"
)

// fakeFCM records send requests and answers with canned per-token results.
type fakeFCM struct {
	mu      sync.Mutex
	reqs    []client.FCMSendRequest
	results []client.FCMSendResult
}

func (f *fakeFCM) FCMSendNotification(req client.FCMSendRequest) (client.FCMSendResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)

	results := f.results
	if results == nil {
		results = make([]client.FCMSendResult, len(req.RegistrationIDs))
	}
	resp := client.FCMSendResponse{Results: results}
	for _, res := range results {
		if res.Error == nil {
			resp.Success++
		} else {
			resp.Failure++
		}
	}
	return resp, nil
}

func (f *fakeFCM) requests() []client.FCMSendRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.FCMSendRequest(nil), f.reqs...)
}

func newTestTriggers() (Triggers, *store.Service, *fakeFCM) {
	log := logpkg.NewLogger(logpkg.LevelOff, io.Discard)
	svc := store.NewService(store.NewMemoryBackend(), log)
	fcm := &fakeFCM{}
	tr := Triggers{Store: svc, FCM: fcm, Logger: log}
	tr.Register()
	return tr, svc, fcm
}

func seedConversation(t *testing.T, svc *store.Service, cid string, bid string, owner string, peer string) {
	t.Helper()
	require.NoError(t, svc.Write(context.Background(), model.Conversation(cid), map[string]any{
		"bookId": bid,
		"owner":  map[string]any{"uid": owner},
		"peer":   map[string]any{"uid": peer},
	}))
}

func readInt(t *testing.T, svc *store.Service, p store.Path) int64 {
	t.Helper()
	v, err := svc.Read(context.Background(), p)
	require.NoError(t, err)
	return v.Int()
}

func readValue(t *testing.T, svc *store.Service, p store.Path) store.Value {
	t.Helper()
	v, err := svc.Read(context.Background(), p)
	require.NoError(t, err)
	return v
}
