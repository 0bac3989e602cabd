// Package bag implements identified value bags (spec §4.9, component C9):
// an insertion-ordered collection of values, each tagged with a
// monotonically increasing identity distinct from its structural content,
// so that inserting a structurally-equal value twice yields two distinct
// members while deleting a specific member is idempotent and unambiguous.
// Grounded on the teacher's object store identity scheme
// (funvibe-funxy/internal/evaluator/object_collections.go assigns each
// mutable collection its own pointer identity distinct from value
// equality); here that identity is an explicit uint64 so it can be
// serialized into join transactions.
package bag

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/laszlokorte/damasc/internal/value"
)

// IdentifiedValue pairs a value with the identity it was inserted under.
type IdentifiedValue struct {
	ID    uint64
	Value value.Value
}

// Bag is an ordered collection of IdentifiedValue members, safe for
// concurrent use.
type Bag struct {
	mu      sync.RWMutex
	nextID  uint64
	members map[uint64]value.Value
	order   []uint64
}

// New returns an empty bag.
func New() *Bag {
	return &Bag{members: make(map[uint64]value.Value)}
}

// Insert adds v as a new member and returns its freshly assigned
// identity (spec §4.9 "insert always creates a new identity, even for a
// structurally duplicate value").
func (b *Bag) Insert(v value.Value) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := atomic.AddUint64(&b.nextID, 1)
	b.members[id] = v
	b.order = append(b.order, id)
	return id
}

// Delete removes the member with the given identity, if present. Calling
// Delete again with the same id is a no-op (spec §4.9 "delete is
// idempotent").
func (b *Bag) Delete(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.members[id]; !ok {
		return
	}
	delete(b.members, id)
	for i, existing := range b.order {
		if existing == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Get returns the member with the given identity, if present.
func (b *Bag) Get(id uint64) (value.Value, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.members[id]
	return v, ok
}

// Len reports the number of members currently in the bag.
func (b *Bag) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

// Items returns every member in insertion order.
func (b *Bag) Items() []IdentifiedValue {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]IdentifiedValue, len(b.order))
	for i, id := range b.order {
		out[i] = IdentifiedValue{ID: id, Value: b.members[id]}
	}
	return out
}

// Bundle is a named collection of bags, addressed by identifier (spec
// §4.9 "BagBundle"), used by the join engine to resolve named sources.
type Bundle struct {
	mu   sync.RWMutex
	bags map[string]*Bag
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{bags: make(map[string]*Bag)}
}

// Bag returns the named bag, creating it if it does not yet exist.
func (bd *Bundle) Bag(name string) *Bag {
	bd.mu.Lock()
	defer bd.mu.Unlock()
	b, ok := bd.bags[name]
	if !ok {
		b = New()
		bd.bags[name] = b
	}
	return b
}

// Names returns the bundle's bag names in sorted order.
func (bd *Bundle) Names() []string {
	bd.mu.RLock()
	defer bd.mu.RUnlock()
	names := make([]string, 0, len(bd.bags))
	for n := range bd.bags {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
