package ast

// PatternBindings returns, in traversal order, every identifier a pattern
// binds: captures, plain identifiers, typed identifiers, object-property
// sub-patterns and rest-collect patterns, recursing into sub-patterns
// (spec §4.4, "a node's outputs are the identifiers its pattern binds").
func PatternBindings(p Pattern) []string {
	var out []string
	collectBindings(p, &out)
	return out
}

func collectBindings(p Pattern, out *[]string) {
	switch pat := p.(type) {
	case *IdentifierPattern:
		*out = append(*out, pat.Name)
	case *CapturePattern:
		*out = append(*out, pat.Name)
		collectBindings(pat.Sub, out)
	case *TypedIdentifierPattern:
		*out = append(*out, pat.Name)
	case *ObjectPattern:
		for _, prop := range pat.Properties {
			collectBindings(prop.Value, out)
		}
		if pat.Rest == RestCollect {
			collectBindings(pat.RestBind, out)
		}
	case *ArrayPattern:
		for _, item := range pat.Items {
			collectBindings(item, out)
		}
		if pat.Rest == RestCollect {
			collectBindings(pat.RestBind, out)
		}
	}
}

// PatternEmbeddedExpressions returns every expression embedded directly
// in a pattern: pinned expressions and object computed-keys (spec §4.4,
// "identifiers appearing in expressions embedded in the pattern").
func PatternEmbeddedExpressions(p Pattern) []Expression {
	var out []Expression
	collectEmbedded(p, &out)
	return out
}

func collectEmbedded(p Pattern, out *[]Expression) {
	switch pat := p.(type) {
	case *PinnedPattern:
		*out = append(*out, pat.Expr)
	case *CapturePattern:
		collectEmbedded(pat.Sub, out)
	case *ObjectPattern:
		for _, prop := range pat.Properties {
			if prop.KeyExpr != nil {
				*out = append(*out, prop.KeyExpr)
			}
			collectEmbedded(prop.Value, out)
		}
		if pat.Rest == RestCollect {
			collectEmbedded(pat.RestBind, out)
		}
	case *ArrayPattern:
		for _, item := range pat.Items {
			collectEmbedded(item, out)
		}
		if pat.Rest == RestCollect {
			collectEmbedded(pat.RestBind, out)
		}
	}
}

type varSet map[string]struct{}

func extend(s varSet, names []string) varSet {
	next := make(varSet, len(s)+len(names))
	for name := range s {
		next[name] = struct{}{}
	}
	for _, n := range names {
		next[n] = struct{}{}
	}
	return next
}

// FreeVariables returns the set of identifiers referenced by e that are
// not bound within e itself (spec §4.2 "LambdaAbstraction": "free
// identifiers of body"). Field names in `.prop` member access and builtin
// call names are not variable references and are excluded.
func FreeVariables(e Expression) map[string]struct{} {
	fv := varSet{}
	collectFree(e, varSet{}, fv)
	return fv
}

func markFree(name string, bound, fv varSet) {
	if _, isBound := bound[name]; !isBound {
		fv[name] = struct{}{}
	}
}

func collectFree(e Expression, bound, fv varSet) {
	if e == nil {
		return
	}
	switch expr := e.(type) {
	case *Literal:
		// no references
	case *Identifier:
		markFree(expr.Name, bound, fv)
	case *ArrayExpr:
		for _, item := range expr.Items {
			collectFree(item.Expr, bound, fv)
		}
	case *ObjectExpr:
		for _, item := range expr.Items {
			if item.Spread != nil {
				collectFree(item.Spread, bound, fv)
				continue
			}
			if item.KeyExpr != nil {
				collectFree(item.KeyExpr, bound, fv)
			}
			collectFree(item.Value, bound, fv)
		}
	case *UnaryExpr:
		collectFree(expr.Arg, bound, fv)
	case *BinaryExpr:
		collectFree(expr.Left, bound, fv)
		collectFree(expr.Right, bound, fv)
	case *LogicalExpr:
		collectFree(expr.Left, bound, fv)
		collectFree(expr.Right, bound, fv)
	case *MemberExpr:
		collectFree(expr.Object, bound, fv)
		if expr.Computed {
			collectFree(expr.Property, bound, fv)
		}
	case *CallExpr:
		collectFree(expr.Arg, bound, fv)
	case *TemplateExpr:
		for _, part := range expr.Parts {
			collectFree(part.Expr, bound, fv)
		}
	case *IfElseExpr:
		collectFree(expr.Cond, bound, fv)
		collectFree(expr.Then, bound, fv)
		collectFree(expr.Else, bound, fv)
	case *MatchExpr:
		collectFree(expr.Subject, bound, fv)
		for _, c := range expr.Cases {
			for _, embedded := range PatternEmbeddedExpressions(c.Pattern) {
				collectFree(embedded, bound, fv)
			}
			caseBound := extend(bound, PatternBindings(c.Pattern))
			collectFree(c.Guard, caseBound, fv)
			collectFree(c.Body, caseBound, fv)
		}
	case *LambdaAbstraction:
		for _, embedded := range PatternEmbeddedExpressions(expr.Param) {
			collectFree(embedded, bound, fv)
		}
		bodyBound := extend(bound, PatternBindings(expr.Param))
		collectFree(expr.Body, bodyBound, fv)
	case *LambdaApplication:
		collectFree(expr.Lambda, bound, fv)
		collectFree(expr.Arg, bound, fv)
	case *ArrayComp:
		cur := bound
		for _, src := range expr.Sources {
			collectFree(src.Collection, cur, fv)
			cur = extend(cur, PatternBindings(src.Pattern))
			for _, embedded := range PatternEmbeddedExpressions(src.Pattern) {
				collectFree(embedded, bound, fv)
			}
			collectFree(src.Predicate, cur, fv)
		}
		for _, item := range expr.Projection {
			collectFree(item.Expr, cur, fv)
		}
	case *ObjectComp:
		cur := bound
		for _, src := range expr.Sources {
			collectFree(src.Collection, cur, fv)
			cur = extend(cur, PatternBindings(src.Pattern))
			for _, embedded := range PatternEmbeddedExpressions(src.Pattern) {
				collectFree(embedded, bound, fv)
			}
			collectFree(src.Predicate, cur, fv)
		}
		for _, item := range expr.Projection {
			if item.Spread != nil {
				collectFree(item.Spread, cur, fv)
				continue
			}
			if item.KeyExpr != nil {
				collectFree(item.KeyExpr, cur, fv)
			}
			collectFree(item.Value, cur, fv)
		}
	}
}
