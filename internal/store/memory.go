package store

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// MemoryBackend keeps the whole tree in process memory. It backs the
// "memory" store_backend setting and every test in this repo.
type MemoryBackend struct {
	mu   sync.RWMutex
	root map[string]any
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{root: map[string]any{}}
}

func (b *MemoryBackend) Read(_ context.Context, p Path) (Value, error) {
	if len(p) == 0 {
		return Value{}, errors.New("empty path")
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return NewValue(clone(lookup(b.root, p))), nil
}

func (b *MemoryBackend) Write(_ context.Context, p Path, v any) error {
	if len(p) == 0 {
		return errors.New("empty path")
	}
	norm, err := normalize(v)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if norm == nil {
		remove(b.root, p)
		return nil
	}
	set(b.root, p, norm)
	return nil
}

func (b *MemoryBackend) Remove(_ context.Context, p Path) error {
	if len(p) == 0 {
		return errors.New("empty path")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	remove(b.root, p)
	return nil
}

// Increment holds the write lock across read, transform, and write, which
// satisfies the atomicity the Backend contract asks of it.
func (b *MemoryBackend) Increment(_ context.Context, p Path, t Transform) (Value, error) {
	if len(p) == 0 {
		return Value{}, errors.New("empty path")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	next, err := normalize(t(NewValue(clone(lookup(b.root, p)))))
	if err != nil {
		return Value{}, err
	}
	if next == nil {
		remove(b.root, p)
		return Value{}, nil
	}
	set(b.root, p, next)
	return NewValue(next), nil
}

func (b *MemoryBackend) QueryByField(_ context.Context, collection Path, field string, equals any) ([]Entry, error) {
	eq, err := normalize(equals)
	if err != nil {
		return nil, err
	}
	fieldPath := Path(strings.Split(field, "/"))

	b.mu.RLock()
	defer b.mu.RUnlock()
	coll, ok := lookup(b.root, collection).(map[string]any)
	if !ok {
		return nil, nil
	}
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var es []Entry
	for _, id := range ids {
		child, ok := coll[id].(map[string]any)
		if !ok {
			continue
		}
		if reflect.DeepEqual(lookup(child, fieldPath), eq) {
			es = append(es, Entry{
				Path:  collection.Child(id),
				Value: NewValue(clone(coll[id])),
			})
		}
	}
	return es, nil
}

func lookup(m map[string]any, p Path) any {
	cur := any(m)
	for _, seg := range p {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = node[seg]
	}
	return cur
}

// set creates intermediate nodes as needed, replacing any scalar in the way.
func set(m map[string]any, p Path, v any) {
	for _, seg := range p[:len(p)-1] {
		child, ok := m[seg].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[seg] = child
		}
		m = child
	}
	m[p[len(p)-1]] = v
}

// remove deletes the node at p and prunes parents left empty, so that an
// empty map never reads back as an existing node.
func remove(m map[string]any, p Path) bool {
	if len(p) == 1 {
		delete(m, p[0])
		return len(m) == 0
	}
	child, ok := m[p[0]].(map[string]any)
	if !ok {
		return len(m) == 0
	}
	if remove(child, p[1:]) {
		delete(m, p[0])
	}
	return len(m) == 0
}

func clone(v any) any {
	switch n := v.(type) {
	case map[string]any:
		c := make(map[string]any, len(n))
		for k, cv := range n {
			c[k] = clone(cv)
		}
		return c
	case []any:
		c := make([]any, len(n))
		for i, cv := range n {
			c[i] = clone(cv)
		}
		return c
	}
	return v
}
