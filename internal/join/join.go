// Package join implements the multi-way pattern join engine (spec §4.10,
// component C10): several labelled sources are matched against their
// patterns in every possible k-permutation of their elements, the
// environments produced by a successful round are unified, and a
// Transaction batching the round's insertions/deletions is assembled for
// each combination that also satisfies the join's guard. Grounded on the
// teacher's nested-loop Cartesian evaluation of multiple for-comprehension
// sources (funvibe-funxy/internal/evaluator/expressions_control.go) and
// on holomush's request-scoped correlation id convention
// (cmd/holomush/gateway.go uses google/uuid per request) for tagging each
// produced Transaction.
package join

import (
	"github.com/google/uuid"

	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/bag"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/matcher"
	"github.com/laszlokorte/damasc/internal/value"
)

// Evaluator is the subset of the expression evaluator the join engine
// needs.
type Evaluator = matcher.Evaluator

// SourceKind distinguishes a fixed in-line source from one backed by a
// named bag in the bundle.
type SourceKind int

const (
	SourceConstant SourceKind = iota
	SourceNamed
)

// Source is one labelled input to the join: Patterns holds one pattern
// per element drawn from the source in a single round, so a source with
// len(Patterns) == k contributes a k-permutation of its elements per
// round (spec §4.10 "sources may bind more than one element of
// themselves per round, each element distinct").
type Source struct {
	Kind     SourceKind
	Name     string // bag name, used when Kind == SourceNamed
	Constant []value.Value
	Patterns []ast.Pattern
}

// element pairs a drawn value with the bag identity it came from, if
// any (Constant elements carry no identity and cannot be deleted).
type element struct {
	id      uint64
	hasID   bool
	fromBag string
	value   value.Value
}

func (s Source) elements(bundle *bag.Bundle) []element {
	switch s.Kind {
	case SourceNamed:
		items := bundle.Bag(s.Name).Items()
		out := make([]element, len(items))
		for i, it := range items {
			out[i] = element{id: it.ID, hasID: true, fromBag: s.Name, value: it.Value}
		}
		return out
	default:
		out := make([]element, len(s.Constant))
		for i, v := range s.Constant {
			out[i] = element{value: v}
		}
		return out
	}
}

// SinkKind selects the destination of one output clause.
type SinkKind int

const (
	// SinkPrint surfaces every evaluated expression on Transaction.Printed
	// without mutating any bag.
	SinkPrint SinkKind = iota
	// SinkNamed evaluates every expression in Expressions and inserts the
	// results into the named bag.
	SinkNamed
)

// Sink is one `JoinSink -> expression_set` output clause (spec §4.6
// "output: mapping JoinSink -> expression_set where JoinSink is either
// Print or Named(bag_identifier)").
type Sink struct {
	Kind        SinkKind
	Name        string // destination bag, used when Kind == SinkNamed
	Expressions []ast.Expression
}

// Join is a single multi-way pattern join: an ordered set of sources, an
// optional whole-round guard, and the output clauses run for every
// surviving round. Deletions are not configured per sink: every Named
// source element consumed by a surviving round is always deleted (spec
// §4.6 point 4, "Deletions are built from the full set of used value ids
// across all Named sources"), independent of whatever Sinks also run.
type Join struct {
	Sources []Source
	Guard   ast.Expression // optional
	Sinks   []Sink
}

// Deletion identifies one Named-source bag member consumed by a surviving
// round.
type Deletion struct {
	Bag string
	ID  uint64
}

// Insertion is one value added to a named bag by a SinkNamed sink.
type Insertion struct {
	Bag   string
	Value value.Value
}

// Transaction batches everything one successful join round produced.
// Condition is reserved for a future conditional-transaction extension
// and is always empty today (spec §4.10 Open Question: "ExistenceCondition
// reserved, never populated").
type Transaction struct {
	ID         uuid.UUID
	Insertions []Insertion
	Deletions  []Deletion
	Condition  []struct{}
	Printed    []value.Value
}

// Run enumerates every k-permutation combination across j.Sources,
// evaluates j.Guard (if present) in the unified environment, and for
// every combination that matches and passes the guard appends one
// Transaction to the result (spec §4.10 "lazy sequence of Transactions",
// realised eagerly here since the engine has no external consumer to
// stream to).
func (j Join) Run(ev Evaluator, outer *environment.Env, bundle *bag.Bundle) ([]Transaction, error) {
	var out []Transaction
	err := j.enumerate(ev, outer, bundle, 0, environment.New(), nil, &out)
	return out, err
}

func (j Join) enumerate(ev Evaluator, outer *environment.Env, bundle *bag.Bundle, idx int, acc *environment.Env, consumed []element, out *[]Transaction) error {
	if idx == len(j.Sources) {
		return j.emit(ev, outer, acc, consumed, out)
	}
	src := j.Sources[idx]
	elems := src.elements(bundle)
	k := len(src.Patterns)

	return forEachPermutation(elems, k, func(perm []element) error {
		local := environment.New()
		for i, pat := range src.Patterns {
			scope, _, ok := environment.Combine(outer, local)
			if !ok {
				return nil
			}
			m, err := matcher.Match(ev, scope, pat, perm[i].value)
			if err != nil {
				return nil // mismatch: skip this permutation
			}
			merged, _, ok := environment.Combine(local, m)
			if !ok {
				return nil
			}
			local = merged
		}
		combined, _, ok := environment.Combine(acc, local)
		if !ok {
			return nil
		}
		return j.enumerate(ev, outer, bundle, idx+1, combined, append(append([]element{}, consumed...), perm...), out)
	})
}

// emit evaluates j.Guard and, if it passes, assembles one Transaction:
// every Sink's expressions are evaluated in turn (a Named sink's results
// become Insertions, a Print sink's become Printed values), and every
// consumed Named-source element is unconditionally queued as a Deletion
// (spec §4.6 point 4). An evaluation failure anywhere in the sinks drops
// the whole tuple rather than emitting a partial transaction.
func (j Join) emit(ev Evaluator, outer *environment.Env, combined *environment.Env, consumed []element, out *[]Transaction) error {
	scope, _, ok := environment.Combine(outer, combined)
	if !ok {
		scope = combined
	}
	if j.Guard != nil {
		gv, err := ev.Eval(scope, j.Guard)
		if err != nil {
			return err
		}
		gb, isBool := gv.(value.Boolean)
		if !isBool || !gb.Value {
			return nil
		}
	}

	tx := Transaction{ID: uuid.New()}
	for _, sink := range j.Sinks {
		for _, expr := range sink.Expressions {
			v, err := ev.Eval(scope, expr)
			if err != nil {
				return nil // drop this tuple, keep enumerating
			}
			if sink.Kind == SinkNamed {
				tx.Insertions = append(tx.Insertions, Insertion{Bag: sink.Name, Value: v})
			} else {
				tx.Printed = append(tx.Printed, v)
			}
		}
	}
	for _, e := range consumed {
		if e.hasID {
			tx.Deletions = append(tx.Deletions, Deletion{Bag: e.fromBag, ID: e.id})
		}
	}
	*out = append(*out, tx)
	return nil
}

// forEachPermutation calls visit once for every ordered selection of k
// distinct elements from items (spec §4.10 "k-permutations"), stopping
// early if visit returns an error.
func forEachPermutation(items []element, k int, visit func([]element) error) error {
	if k == 0 {
		return visit(nil)
	}
	if k > len(items) {
		return nil
	}
	used := make([]bool, len(items))
	perm := make([]element, k)
	var rec func(depth int) error
	rec = func(depth int) error {
		if depth == k {
			return visit(append([]element{}, perm...))
		}
		for i := range items {
			if used[i] {
				continue
			}
			used[i] = true
			perm[depth] = items[i]
			if err := rec(depth + 1); err != nil {
				used[i] = false
				return err
			}
			used[i] = false
		}
		return nil
	}
	return rec(0)
}
