// Package environment implements the ordered Identifier -> Value map
// used throughout matching, evaluation and the join engine (spec §3 "C3
// Environment"). The mutex-guarded map is grounded on the teacher's
// evaluator.Environment (funvibe-funxy/internal/evaluator/environment.go);
// the parent-chain lookup from that teacher type is dropped because the
// spec's Environment is a flat map with explicit Combine/Extract rather
// than lexical scope chaining — lambda capture snapshots a flat subset
// instead of holding a live outer pointer (spec §4.2 LambdaAbstraction).
package environment

import (
	"sort"
	"sync"

	"github.com/laszlokorte/damasc/internal/value"
)

// Env is an ordered Identifier -> Value map.
type Env struct {
	mu    sync.RWMutex
	store map[string]value.Value
}

// New returns an empty environment.
func New() *Env {
	return &Env{store: make(map[string]value.Value)}
}

// FromMap builds an environment from an existing map (no aliasing: the
// map is copied).
func FromMap(m map[string]value.Value) *Env {
	e := New()
	for k, v := range m {
		e.store[k] = v
	}
	return e
}

// Get looks up name.
func (e *Env) Get(name string) (value.Value, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.store[name]
	return v, ok
}

// Set binds name to v, overwriting any previous binding.
func (e *Env) Set(name string, v value.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store[name] = v
}

// Keys returns the bound identifiers in sorted order, for deterministic
// iteration (e.g. when computing a dependency input set).
func (e *Env) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]string, 0, len(e.store))
	for k := range e.store {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len reports the number of bound identifiers.
func (e *Env) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.store)
}

// Clone returns an independent copy of e.
func (e *Env) Clone() *Env {
	e.mu.RLock()
	defer e.mu.RUnlock()
	next := New()
	for k, v := range e.store {
		next.store[k] = v
	}
	return next
}

// Extract projects the subset of e bound to the given identifiers (spec
// §3 "extract(ids)"). Identifiers absent from e are silently skipped.
func (e *Env) Extract(ids []string) *Env {
	e.mu.RLock()
	defer e.mu.RUnlock()
	next := New()
	for _, id := range ids {
		if v, ok := e.store[id]; ok {
			next.store[id] = v
		}
	}
	return next
}

// Combine merges a and b (spec §3 "combine(a,b)"): identifiers present in
// only one side pass through; identifiers in both must agree (by
// value.Equal) or the merge fails, reporting the first conflicting name.
func Combine(a, b *Env) (*Env, string, bool) {
	if a == nil {
		return b.Clone(), "", true
	}
	if b == nil {
		return a.Clone(), "", true
	}
	a.mu.RLock()
	b.mu.RLock()
	defer a.mu.RUnlock()
	defer b.mu.RUnlock()

	merged := New()
	for k, v := range a.store {
		merged.store[k] = v
	}
	conflictKeys := make([]string, 0, len(b.store))
	for k := range b.store {
		conflictKeys = append(conflictKeys, k)
	}
	sort.Strings(conflictKeys)
	for _, k := range conflictKeys {
		v := b.store[k]
		if existing, ok := merged.store[k]; ok {
			if !existing.Equal(v) {
				return nil, k, false
			}
			continue
		}
		merged.store[k] = v
	}
	return merged, "", true
}

// Overlay returns a new environment holding every binding from a with
// every binding from b layered on top of it; on a shared identifier, b
// always wins. Unlike Combine, Overlay never fails on disagreement — it
// is how a REPL session commits a freshly solved Assign's bindings into
// its persistent environment (spec §6 persisted state), where rebinding
// an identifier that already has a session value is an ordinary
// reassignment, not a conflict. Combine remains the right tool for
// unifying bindings produced within a single matching round, where two
// clauses disagreeing on a shared identifier is genuinely a conflict.
func Overlay(a, b *Env) *Env {
	if a == nil {
		return b.Clone()
	}
	if b == nil {
		return a.Clone()
	}
	a.mu.RLock()
	b.mu.RLock()
	defer a.mu.RUnlock()
	defer b.mu.RUnlock()

	merged := New()
	for k, v := range a.store {
		merged.store[k] = v
	}
	for k, v := range b.store {
		merged.store[k] = v
	}
	return merged
}

// ToMap returns a shallow copy of the environment's bindings.
func (e *Env) ToMap() map[string]value.Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]value.Value, len(e.store))
	for k, v := range e.store {
		out[k] = v
	}
	return out
}
