package evaluator

import (
	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/value"
)

// Lambda is a pattern-parameterised closure: the captured environment
// plus the parameter pattern and body reference (spec §3 "Value", case
// Lambda). It is defined here rather than in package value to avoid an
// import cycle (an Environment stores value.Value, and a Lambda stores an
// Environment) — the same resolution the teacher applies by keeping its
// Function object alongside its Environment in one evaluator package
// (funvibe-funxy/internal/evaluator/object_functions.go).
type Lambda struct {
	Captured *environment.Env
	Param    ast.Pattern
	Body     ast.Expression
}

func (l *Lambda) Tag() value.TypeTag { return value.TypeLambda }

func (l *Lambda) String() string { return "<lambda>" }

// Equal follows the teacher's reference-identity convention for function
// values (funvibe-funxy's Function/Builtin objects have no structural
// equality defined beyond identity) — two lambdas are equal only if they
// are the same closure instance, since comparing captured environments or
// AST subtrees structurally would conflate syntactically-identical but
// semantically-distinct closures evaluated with different outer state.
func (l *Lambda) Equal(other value.Value) bool {
	ol, ok := other.(*Lambda)
	return ok && ol == l
}

// NewLambda builds a Lambda, extracting the free identifiers of body minus
// those bound by param (spec §4.2 "LambdaAbstraction"), plus the
// identifiers used by expressions embedded in param (pinned expressions,
// computed keys), which the matcher evaluates against the captured env.
func NewLambda(env *environment.Env, param ast.Pattern, body ast.Expression) *Lambda {
	bound := ast.PatternBindings(param)
	boundSet := make(map[string]struct{}, len(bound))
	for _, b := range bound {
		boundSet[b] = struct{}{}
	}

	free := ast.FreeVariables(&ast.LambdaAbstraction{Param: param, Body: body})
	ids := make([]string, 0, len(free))
	for name := range free {
		if _, isParam := boundSet[name]; isParam {
			continue
		}
		ids = append(ids, name)
	}
	return &Lambda{Captured: env.Extract(ids), Param: param, Body: body}
}
