// Package topology implements dependency-ordered sorting of assignment
// statements (spec §4.6, component C6): a `pattern = expression` binding
// depends on every free identifier referenced by its expression and by
// any pinned/computed-key expression embedded in its own pattern, and
// produces the identifiers its pattern binds. Grounded on the teacher's
// lack of an analogous pass (the teacher resolves order lexically via its
// VM/analyzer, which this module's Non-goals exclude); the Kahn's-
// algorithm shape here follows the same textbook topological sort the
// teacher's module-dependency resolver in internal/modules used before it
// was dropped, reimplemented directly against ast.Pattern/ast.Expression.
package topology

import (
	"sort"

	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/damascerr"
)

// Statement is one `pattern = expression` assignment to be ordered.
type Statement struct {
	Pattern    ast.Pattern
	Expression ast.Expression
}

// node is a statement annotated with its computed input/output identifier
// sets, kept in original source order for deterministic tie-breaking.
type node struct {
	index   int
	inputs  map[string]struct{}
	outputs []string
}

func inputsOf(s Statement) map[string]struct{} {
	fv := ast.FreeVariables(s.Expression)
	inputs := make(map[string]struct{}, len(fv))
	for name := range fv {
		inputs[name] = struct{}{}
	}
	for _, embedded := range ast.PatternEmbeddedExpressions(s.Pattern) {
		for name := range ast.FreeVariables(embedded) {
			inputs[name] = struct{}{}
		}
	}
	return inputs
}

// Sort returns statements reordered so that every statement appears after
// every other statement whose outputs it depends on (spec §4.6 "solve by
// topological order of data dependency"). Ties are broken by original
// source order. A circular dependency is reported as a
// damascerr.TopologyError naming the identifiers bound by every statement
// left unsorted: those in a cycle and those depending on one.
func Sort(statements []Statement) ([]Statement, error) {
	nodes := make([]node, len(statements))
	producedBy := map[string]int{}
	for i, s := range statements {
		nodes[i] = node{index: i, inputs: inputsOf(s), outputs: ast.PatternBindings(s.Pattern)}
		for _, out := range nodes[i].outputs {
			producedBy[out] = i
		}
	}

	// dependents[i] = set of node indices that depend on node i's output.
	dependents := make([][]int, len(nodes))
	indegree := make([]int, len(nodes))
	seenEdge := make([]map[int]struct{}, len(nodes))
	for i := range nodes {
		seenEdge[i] = map[int]struct{}{}
	}
	for i, n := range nodes {
		names := make([]string, 0, len(n.inputs))
		for name := range n.inputs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			producer, ok := producedBy[name]
			if !ok || producer == i {
				continue
			}
			if _, dup := seenEdge[producer][i]; dup {
				continue
			}
			seenEdge[producer][i] = struct{}{}
			dependents[producer] = append(dependents[producer], i)
			indegree[i]++
		}
	}

	var ready []int
	for i := range nodes {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	sort.Ints(ready)

	out := make([]Statement, 0, len(statements))
	visited := make([]bool, len(nodes))
	for len(ready) > 0 {
		sort.Ints(ready)
		i := ready[0]
		ready = ready[1:]
		if visited[i] {
			continue
		}
		visited[i] = true
		out = append(out, statements[i])
		for _, dep := range dependents[i] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(out) != len(statements) {
		var cycle []string
		for i, v := range visited {
			if !v {
				cycle = append(cycle, nodes[i].outputs...)
			}
		}
		return nil, &damascerr.TopologyError{Cycle: cycle}
	}
	return out, nil
}
