// Package correlate pairs outbound requests with their eventual replies.
//
// A Table hands out an identifier and a one-shot result channel per request.
// Whoever receives the reply calls Resolve or Reject with the identifier;
// only that entry is completed and removed.
//
// Entries whose reply never arrives would otherwise stay forever. A table
// created with a positive capacity evicts the oldest pending entry (rejecting
// it with ErrEvicted) when a new one would exceed the cap, and callers that
// give up can drop their entry with Forget.
package correlate

import (
	"container/list"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrEvicted = errors.New("pending request evicted")

type Result[T any] struct {
	Value T
	Err   error
}

type entry[T any] struct {
	ch   chan Result[T]
	elem *list.Element
}

type Table[T any] struct {
	mu       sync.Mutex
	pending  map[string]*entry[T]
	order    *list.List
	capacity int
	newID    func() string
}

// NewTable creates a table. capacity <= 0 means unbounded.
func NewTable[T any](capacity int) *Table[T] {
	return &Table[T]{
		pending:  make(map[string]*entry[T]),
		order:    list.New(),
		capacity: capacity,
		newID:    NewID,
	}
}

// NewID returns a timestamp plus random suffix. Collisions are unlikely,
// not impossible.
func NewID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("id_%d%s", time.Now().UnixMilli(), suffix)
}

// Register adds a pending entry and returns its identifier and the channel
// that receives exactly one Result.
func (t *Table[T]) Register() (string, <-chan Result[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.capacity > 0 {
		for len(t.pending) >= t.capacity {
			oldest := t.order.Front()
			id := oldest.Value.(string)
			t.completeLocked(id, Result[T]{Err: ErrEvicted})
		}
	}

	id := t.newID()
	for _, taken := t.pending[id]; taken; _, taken = t.pending[id] {
		id = t.newID()
	}
	e := &entry[T]{ch: make(chan Result[T], 1)}
	e.elem = t.order.PushBack(id)
	t.pending[id] = e
	return id, e.ch
}

// Resolve completes id with v. It reports whether id was pending.
func (t *Table[T]) Resolve(id string, v T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completeLocked(id, Result[T]{Value: v})
}

// Reject completes id with err. It reports whether id was pending.
func (t *Table[T]) Reject(id string, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completeLocked(id, Result[T]{Err: err})
}

// Forget drops id without completing it
func (t *Table[T]) Forget(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.pending[id]
	if !ok {
		return false
	}
	t.order.Remove(e.elem)
	delete(t.pending, id)
	return true
}

func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *Table[T]) completeLocked(id string, r Result[T]) bool {
	e, ok := t.pending[id]
	if !ok {
		return false
	}
	t.order.Remove(e.elem)
	delete(t.pending, id)
	e.ch <- r
	return true
}
