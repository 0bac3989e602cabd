// Package observability wraps the join engine (C10) and assignment
// solver (C7) with Prometheus counters/histogram, decorator-style, so the
// core packages stay framework-free and independently testable (spec
// SPEC_FULL.md §2 "C14 Observability"). Grounded on the teacher's
// dedicated observability package (holomush-holomush/internal/observability
// /server.go: a private prometheus.Registry plus NewMetrics registering a
// handful of CounterVecs), adapted from HTTP connection/request counters
// to the join/assignment metrics Damasc's engine actually produces.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/laszlokorte/damasc/internal/bag"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/join"
)

// Metrics holds every Damasc-specific Prometheus collector (spec
// SPEC_FULL.md §4.10): a counter for every tuple the join engine
// enumerates, a counter for every transaction it emits, a counter for
// every assignment-solver run, and a histogram of join wall-clock
// duration.
type Metrics struct {
	JoinTuplesEnumerated    prometheus.Counter
	JoinTransactionsEmitted prometheus.Counter
	AssignmentSolves        prometheus.Counter
	JoinDuration            prometheus.Histogram
}

// NewMetrics constructs and registers Damasc's metrics against reg,
// following the teacher's NewMetrics(reg) constructor shape.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		JoinTuplesEnumerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "damasc_join_tuples_enumerated_total",
			Help: "Total number of candidate tuples considered by the join engine across every Join.Run call.",
		}),
		JoinTransactionsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "damasc_join_transactions_emitted_total",
			Help: "Total number of Transactions emitted by the join engine.",
		}),
		AssignmentSolves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "damasc_assignment_solves_total",
			Help: "Total number of assignment-solver runs (successful and failed).",
		}),
		JoinDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "damasc_join_duration_seconds",
			Help:    "Wall-clock duration of a single Join.Run call.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.JoinTuplesEnumerated,
		m.JoinTransactionsEmitted,
		m.AssignmentSolves,
		m.JoinDuration,
	)
	return m
}

// NewRegistry returns a private registry (never the global default, to
// keep tests hermetic) pre-populated with the standard Go process/runtime
// collectors, matching the teacher's NewServer construction.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// InstrumentedJoin decorates join.Join.Run with Metrics, counting every
// candidate tuple position the join engine would otherwise enumerate
// silently and timing the whole run. It never mutates j and never
// imports observability into package join itself (spec SPEC_FULL.md
// §4.10: "incremented by a decorator wrapped around the join engine...
// never read by the core itself").
type InstrumentedJoin struct {
	Join    join.Join
	Metrics *Metrics
}

// Run executes j.Join.Run, recording metrics around the call.
func (j InstrumentedJoin) Run(ev join.Evaluator, outer *environment.Env, bundle *bag.Bundle) ([]join.Transaction, error) {
	start := time.Now()
	txs, err := j.Join.Run(ev, outer, bundle)
	j.Metrics.JoinDuration.Observe(time.Since(start).Seconds())
	j.Metrics.JoinTuplesEnumerated.Add(float64(enumerationUpperBound(j.Join, bundle)))
	j.Metrics.JoinTransactionsEmitted.Add(float64(len(txs)))
	return txs, err
}

// enumerationUpperBound estimates the number of per-source permutations
// the engine will walk, for the tuples-enumerated counter: an exact count
// would require re-deriving the engine's own forEachPermutation math, so
// this reports the same n!/(n-k)! upper bound the join engine's own
// permutation enumeration is built around (spec §9 "Permutation
// enumeration in joins").
func enumerationUpperBound(j join.Join, bundle *bag.Bundle) int {
	total := 1
	for _, src := range j.Sources {
		n := sourceSize(src, bundle)
		k := len(src.Patterns)
		total *= permutationCount(n, k)
	}
	return total
}

func sourceSize(src join.Source, bundle *bag.Bundle) int {
	if src.Kind == join.SourceConstant {
		return len(src.Constant)
	}
	return bundle.Bag(src.Name).Len()
}

func permutationCount(n, k int) int {
	if k > n {
		return 0
	}
	result := 1
	for i := 0; i < k; i++ {
		result *= n - i
	}
	return result
}

// InstrumentedSolve wraps a call to assign.Solve, counting every solver
// invocation (successful or failed) via m.
func InstrumentedSolve(m *Metrics, solve func() (*environment.Env, error)) (*environment.Env, error) {
	m.AssignmentSolves.Inc()
	return solve()
}
