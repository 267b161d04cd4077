package store

import (
	"context"

	"github.com/google/uuid"
)

// Event is one trigger delivery: the state of the bound path before and
// after the write, the wildcard segments bound from the pattern, and the
// identity the write was made under ("" for system writes).
type Event struct {
	ID     string
	Path   Path
	Before Value
	After  Value
	Params map[string]string
	Auth   string
}

// HandlerFunc reacts to one Event. Returning an error marks the whole
// invocation as failed; it is logged, never propagated to the writer.
type HandlerFunc func(ctx context.Context, ev Event) error

// DeliveryGuard suppresses duplicate trigger deliveries. FirstDelivery
// reports whether key has not been delivered before.
type DeliveryGuard interface {
	FirstDelivery(ctx context.Context, key string) bool
}

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

type subscription struct {
	name     string
	pattern  Pattern
	onCreate bool
	handler  HandlerFunc
}

// Service wraps a Backend and dispatches registered handlers on writes made
// through it. Handlers for one write run sequentially; writes a handler
// makes go back through the Service, so cascading triggers fire. There is
// no cross-path atomicity: a failed handler leaves whatever it already
// wrote in place.
type Service struct {
	backend Backend
	subs    []subscription

	// Guard, when set, drops repeat deliveries of the same (handler, path)
	// pair. Nil preserves plain at-least-once dispatch.
	Guard  DeliveryGuard
	Logger logger
}

func NewService(b Backend, log logger) *Service {
	return &Service{backend: b, Logger: log}
}

// OnCreate registers h for writes to paths matching pattern where the node
// did not exist before.
func (s *Service) OnCreate(name string, pattern string, h HandlerFunc) {
	s.subs = append(s.subs, subscription{name: name, pattern: NewPattern(pattern), onCreate: true, handler: h})
}

// OnWrite registers h for every write (including removes) to paths matching
// pattern.
func (s *Service) OnWrite(name string, pattern string, h HandlerFunc) {
	s.subs = append(s.subs, subscription{name: name, pattern: NewPattern(pattern), handler: h})
}

func (s *Service) Read(ctx context.Context, p Path) (Value, error) {
	return s.backend.Read(ctx, p)
}

// Increment mutates a single path atomically. Counter paths are not trigger
// paths, so no dispatch happens here.
func (s *Service) Increment(ctx context.Context, p Path, t Transform) (Value, error) {
	return s.backend.Increment(ctx, p, t)
}

func (s *Service) QueryByField(ctx context.Context, collection Path, field string, equals any) ([]Entry, error) {
	return s.backend.QueryByField(ctx, collection, field, equals)
}

func (s *Service) Write(ctx context.Context, p Path, v any) error {
	return s.WriteAs(ctx, "", p, v)
}

// WriteAs writes v at p under the given identity and dispatches matching
// handlers with the before/after pair.
func (s *Service) WriteAs(ctx context.Context, auth string, p Path, v any) error {
	before, err := s.backend.Read(ctx, p)
	if err != nil {
		return err
	}
	if err = s.backend.Write(ctx, p, v); err != nil {
		return err
	}
	norm, err := normalize(v)
	if err != nil {
		return err
	}
	s.dispatch(ctx, p, before, NewValue(norm), auth)
	return nil
}

func (s *Service) Remove(ctx context.Context, p Path) error {
	before, err := s.backend.Read(ctx, p)
	if err != nil {
		return err
	}
	if err = s.backend.Remove(ctx, p); err != nil {
		return err
	}
	s.dispatch(ctx, p, before, Value{}, "")
	return nil
}

func (s *Service) dispatch(ctx context.Context, p Path, before Value, after Value, auth string) {
	for _, sub := range s.subs {
		params, ok := sub.pattern.Match(p)
		if !ok {
			continue
		}
		if sub.onCreate && before.Exists() {
			continue
		}
		if s.Guard != nil && !s.Guard.FirstDelivery(ctx, sub.name+"|"+p.String()) {
			s.Logger.Debugf("dispatch: Suppressed duplicate delivery of %s for path: %s", sub.name, p)
			continue
		}
		ev := Event{
			ID:     uuid.NewString(),
			Path:   p,
			Before: before,
			After:  after,
			Params: params,
			Auth:   auth,
		}
		s.Logger.Debugf("dispatch: Invoking %s for path: %s, EventID: %s", sub.name, p, ev.ID)
		if err := sub.handler(ctx, ev); err != nil {
			s.Logger.Errorf("dispatch: Handler %s failed for path: %s, EventID: %s, err: %+v", sub.name, p, ev.ID, err)
		}
	}
}
