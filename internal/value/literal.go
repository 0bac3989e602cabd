package value

import (
	"strconv"

	"github.com/laszlokorte/damasc/internal/ast"
)

// FromLiteral evaluates an AST literal node into its runtime Value. It is
// shared by the matcher (LiteralPattern) and the evaluator (Literal
// expression) so the two agree on numeric-literal parsing (spec §4.2
// "numeric literal parsed to i64, fail InvalidNumber on parse failure").
func FromLiteral(lit *ast.Literal) (Value, error) {
	switch lit.Kind {
	case ast.LiteralNull:
		return Null{}, nil
	case ast.LiteralBool:
		return Boolean{Value: lit.Bool}, nil
	case ast.LiteralString:
		return String{Value: lit.Text}, nil
	case ast.LiteralType:
		tag, ok := ParseTypeTag(lit.Type)
		if !ok {
			return nil, &InvalidNumberError{Text: lit.Type}
		}
		return Type{Tag_: tag}, nil
	case ast.LiteralInteger:
		n, err := strconv.ParseInt(lit.Text, 10, 64)
		if err != nil {
			return nil, &InvalidNumberError{Text: lit.Text}
		}
		return Integer{Value: n}, nil
	}
	return Null{}, nil
}

// InvalidNumberError is a small package-local error used only to signal a
// parse failure up to the caller, which wraps it in the proper
// damascerr.EvalError (damascerr cannot be imported here without creating
// an import cycle, since damascerr already depends on value).
type InvalidNumberError struct{ Text string }

func (e *InvalidNumberError) Error() string { return "invalid number literal: " + e.Text }
