package hook

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/go-lynx/xhook/log"
)

// Set is an ordered collection of lifecycle callbacks sharing one parameter
// type, such as the package-load or resource-init listeners of plugins.
// Callbacks run by priority, ties in the order they were added.
type Set[P any] struct {
	name  string
	mu    sync.RWMutex
	items []setItem[P]
	seq   uint64
}

type setItem[P any] struct {
	priority int
	seq      uint64
	fn       func(P) error
}

// NewSet creates an empty set. name is used in diagnostics.
func NewSet[P any](name string) *Set[P] {
	return &Set[P]{name: name}
}

// Add appends fn and returns a function removing it again.
func (s *Set[P]) Add(priority int, fn func(P) error) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	seq := s.seq
	items := make([]setItem[P], len(s.items), len(s.items)+1)
	copy(items, s.items)
	items = append(items, setItem[P]{priority: priority, seq: seq, fn: fn})
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].priority != items[j].priority {
			return items[i].priority < items[j].priority
		}
		return items[i].seq < items[j].seq
	})
	s.items = items

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(seq) })
	}
}

func (s *Set[P]) remove(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]setItem[P], 0, len(s.items))
	for _, it := range s.items {
		if it.seq != seq {
			items = append(items, it)
		}
	}
	s.items = items
}

// Len returns the number of callbacks.
func (s *Set[P]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Call runs every callback with p. A failing or panicking callback is logged
// and does not stop the others; the failures are returned joined.
func (s *Set[P]) Call(p P) error {
	s.mu.RLock()
	items := s.items
	s.mu.RUnlock()

	var errs []error
	for _, it := range items {
		if err := s.safeCall(it.fn, p); err != nil {
			log.Errorf("%s callback failed: %v", s.name, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Set[P]) safeCall(fn func(P) error, p P) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrCallbackPanic, r, debug.Stack())
		}
	}()
	return fn(p)
}
