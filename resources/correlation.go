package resources

import (
	"context"
	"fmt"
	"sync"
)

type scopeKey struct{}

// Scope collects the keys constructed during one factory call. It is the
// side channel tying a host key construction to the factory call that
// triggered it when the factory does not expose the key itself.
type Scope struct {
	mu   sync.Mutex
	keys []Key
}

// OpenScope returns a context carrying a fresh Scope. Nested factory calls
// open their own scope and do not leak keys into the enclosing one.
func OpenScope(ctx context.Context) (context.Context, *Scope) {
	s := &Scope{}
	return context.WithValue(ctx, scopeKey{}, s), s
}

// ScopeFrom returns the innermost Scope carried by ctx.
func ScopeFrom(ctx context.Context) (*Scope, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok
}

// Record remembers a key constructed inside the scope.
func (s *Scope) Record(k Key) {
	s.mu.Lock()
	s.keys = append(s.keys, k)
	s.mu.Unlock()
}

// Key returns the single key recorded in the scope. Zero keys, or several
// distinct ones, fail with ErrAmbiguousCorrelation.
func (s *Scope) Key() (Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch len(s.keys) {
	case 0:
		return Key{}, fmt.Errorf("no key constructed: %w", ErrAmbiguousCorrelation)
	case 1:
		return s.keys[0], nil
	}
	for _, k := range s.keys[1:] {
		if k != s.keys[0] {
			return Key{}, fmt.Errorf("%d keys constructed: %w", len(s.keys), ErrAmbiguousCorrelation)
		}
	}
	return s.keys[0], nil
}
