package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackendWriteRead(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Write(ctx, Path{"conversations", "c1"}, map[string]any{
		"bookId": "b1",
		"owner":  map[string]any{"uid": "u1"},
	}))

	v, err := b.Read(ctx, Path{"conversations", "c1", "owner", "uid"})
	require.NoError(t, err)
	assert.Equal(t, "u1", v.String())

	v, err = b.Read(ctx, Path{"conversations", "c1"})
	require.NoError(t, err)
	assert.True(t, v.HasChildren())
	assert.Equal(t, []string{"bookId", "owner"}, v.Keys())

	v, err = b.Read(ctx, Path{"conversations", "c2"})
	require.NoError(t, err)
	assert.False(t, v.Exists())
}

func TestMemoryBackendWriteNormalizesStructs(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	type msg struct {
		Recipient string `json:"recipient"`
		Timestamp int64  `json:"timestamp"`
	}
	require.NoError(t, b.Write(ctx, Path{"conversations", "c1", "messages", "m1"}, msg{
		Recipient: "u1",
		Timestamp: 42,
	}))

	v, err := b.Read(ctx, Path{"conversations", "c1", "messages", "m1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", v.Child("recipient").String())
	assert.Equal(t, int64(42), v.Child("timestamp").Int())
}

func TestMemoryBackendRemovePrunesEmptyParents(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Write(ctx, Path{"users", "u1", "conversations", "active", "c1"}, 7))
	require.NoError(t, b.Write(ctx, Path{"users", "u1", "conversations", "active", "c2"}, 8))

	require.NoError(t, b.Remove(ctx, Path{"users", "u1", "conversations", "active", "c1"}))
	v, err := b.Read(ctx, Path{"users", "u1", "conversations", "active"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, v.Keys())

	require.NoError(t, b.Remove(ctx, Path{"users", "u1", "conversations", "active", "c2"}))
	v, err = b.Read(ctx, Path{"users", "u1"})
	require.NoError(t, err)
	assert.False(t, v.Exists())
}

func TestMemoryBackendWriteNilRemoves(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Write(ctx, Path{"books", "b1", "flags", "deleted"}, true))
	require.NoError(t, b.Write(ctx, Path{"books", "b1", "flags", "deleted"}, nil))

	v, err := b.Read(ctx, Path{"books", "b1", "flags", "deleted"})
	require.NoError(t, err)
	assert.False(t, v.Exists())
}

func TestMemoryBackendIncrement(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	p := Path{"users", "u1", "statistics", "lentBooks"}

	v, err := b.Increment(ctx, p, AddInt(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Int())

	// The decrement path has no floor: an absent counter goes to -1.
	v, err = b.Increment(ctx, Path{"users", "u2", "statistics", "toBeReturnedBooks"}, AddInt(-1))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v.Int())
}

func TestMemoryBackendIncrementConcurrent(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	p := Path{"users", "u1", "statistics", "ratingCount"}

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := b.Increment(ctx, p, AddInt(1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, err := b.Read(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(n), v.Int())
}

func TestMemoryBackendQueryByField(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Write(ctx, Path{"conversations", "c1"}, map[string]any{"bookId": "b1"}))
	require.NoError(t, b.Write(ctx, Path{"conversations", "c2"}, map[string]any{"bookId": "b2"}))
	require.NoError(t, b.Write(ctx, Path{"conversations", "c3"}, map[string]any{"bookId": "b1"}))

	es, err := b.QueryByField(ctx, Path{"conversations"}, "bookId", "b1")
	require.NoError(t, err)
	require.Len(t, es, 2)
	assert.Equal(t, Path{"conversations", "c1"}, es[0].Path)
	assert.Equal(t, Path{"conversations", "c3"}, es[1].Path)

	// Nested fields are addressed with slashes.
	require.NoError(t, b.Write(ctx, Path{"users", "u1"}, map[string]any{
		"credentials": map[string]any{"email": "a@example.com"},
	}))
	es, err = b.QueryByField(ctx, Path{"users"}, "credentials/email", "a@example.com")
	require.NoError(t, err)
	require.Len(t, es, 1)
	assert.Equal(t, Path{"users", "u1"}, es[0].Path)

	es, err = b.QueryByField(ctx, Path{"missing"}, "bookId", "b1")
	require.NoError(t, err)
	assert.Empty(t, es)
}

func TestMemoryBackendReadIsolation(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Write(ctx, Path{"books", "b1"}, map[string]any{"bookInfo": map[string]any{"title": "Dune"}}))
	v, err := b.Read(ctx, Path{"books", "b1"})
	require.NoError(t, err)
	v.Raw().(map[string]any)["bookInfo"] = "scribbled"

	v, err = b.Read(ctx, Path{"books", "b1", "bookInfo", "title"})
	require.NoError(t, err)
	assert.Equal(t, "Dune", v.String())
}
