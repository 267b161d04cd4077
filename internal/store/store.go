// Package store provides a path-addressed tree-structured key-value store
// with write triggers. Values are addressed by slash-separated Paths; a
// Backend supplies point reads, point writes and removes, atomic increments,
// and field-equality queries, while Service layers pattern-bound trigger
// dispatch on top.
package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Path addresses a single node in the tree.
type Path []string

func (p Path) String() string {
	return strings.Join(p, "/")
}

// Child returns a new Path with the given segments appended.
func (p Path) Child(segments ...string) Path {
	c := make(Path, 0, len(p)+len(segments))
	c = append(c, p...)
	return append(c, segments...)
}

// Transform computes the next value of a node from its current one. It may
// be called multiple times if the node changes concurrently.
type Transform func(cur Value) any

// AddInt is a Transform that adds delta to the current value, treating an
// absent node as 0.
func AddInt(delta int64) Transform {
	return func(cur Value) any {
		return cur.Int() + delta
	}
}

// AddFloat is like AddInt for fractional amounts.
func AddFloat(delta float64) Transform {
	return func(cur Value) any {
		return cur.Float() + delta
	}
}

// Entry is one result of a QueryByField call.
type Entry struct {
	Path  Path
	Value Value
}

// Backend is the storage contract. Increment must be safe under concurrent
// callers on the same path, retrying internally on conflict.
type Backend interface {
	Read(ctx context.Context, p Path) (Value, error)
	Write(ctx context.Context, p Path, v any) error
	Remove(ctx context.Context, p Path) error
	Increment(ctx context.Context, p Path, t Transform) (Value, error)
	QueryByField(ctx context.Context, collection Path, field string, equals any) ([]Entry, error)
}

// normalize reduces v to plain JSON-shaped values (map[string]any, []any,
// float64, string, bool, nil) so that backends and Value navigation agree on
// the representation regardless of what callers write.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "value is not storable: %+v", v)
	}
	var out any
	if err = json.Unmarshal(b, &out); err != nil {
		return nil, errors.Wrapf(err, "error normalizing value: %s", b)
	}
	return out, nil
}
