package grammar

import (
	"strings"

	"github.com/ava12/jetpeg"
)

// Error codes used by Check:
const (
	UndefinedRuleError = jetpeg.CompilationErrors + iota
	ArgumentCountError
	DuplicateParamError
	UnresolvedLocalError
	MisplacedDataRefError
	IndirectRecursionError
	EmptyGrammarError
)

// ExpressionError creates an error attached to the rule owning e.
// Source position is added if e has one.
func ExpressionError(e Expression, code int, msg string, params ...any) *jetpeg.Error {
	ruleName := ""
	if r := RuleOf(e); r != nil {
		ruleName = r.Name
	}

	var res *jetpeg.Error
	if ruleName == "" {
		res = jetpeg.FormatError(code, msg, params...)
	} else {
		res = jetpeg.FormatRuleError(ruleName, code, msg, params...)
	}

	if pos := e.Pos(); pos.Source() != nil {
		located := jetpeg.FormatErrorPos(pos, code, res.Message)
		located.Rule = ruleName
		res = located
	}
	return res
}

// Check verifies that g can be compiled: rule calls refer to defined rules with matching argument counts,
// local references are resolvable, data references are used inside object data only,
// and no rule is left-recursive through other rules.
// Returns the first problem found.
func Check(g *Grammar) error {
	if len(g.Rules) == 0 {
		return jetpeg.FormatError(EmptyGrammarError, "grammar has no rules")
	}

	for _, r := range g.Rules {
		if e := checkParams(r); e != nil {
			return e
		}
	}

	for _, r := range g.Rules {
		var e error
		Walk(r, func(x Expression) bool {
			if e == nil {
				e = checkExpression(g, x)
			}
			return e == nil
		})
		if e != nil {
			return e
		}
	}

	names := Analyze(g).IndirectLeftRecursion()
	if len(names) > 0 {
		return jetpeg.FormatError(IndirectRecursionError,
			"indirect left recursion in rules: %s", strings.Join(names, ", "))
	}

	return nil
}

func checkParams(r *Rule) error {
	seen := make(map[string]bool, len(r.Params))
	for _, p := range r.Params {
		if seen[p] {
			return ExpressionError(r, DuplicateParamError, "duplicate parameter %%%s", p)
		}
		seen[p] = true
	}
	return nil
}

func checkExpression(g *Grammar, x Expression) error {
	switch n := x.(type) {
	case *RuleCall:
		r := g.Rule(n.Name)
		if r == nil {
			return ExpressionError(n, UndefinedRuleError, "undefined rule %q", n.Name)
		}
		if len(r.Params) != len(n.Args) {
			return ExpressionError(n, ArgumentCountError, "rule %q expects %d arguments, got %d",
				n.Name, len(r.Params), len(n.Args))
		}

	case *LocalValueRef:
		if _, found := Resolve(n, n.Name); !found {
			return ExpressionError(n, UnresolvedLocalError, "undefined local value %%%s", n.Name)
		}

	case *Replay:
		b, found := Resolve(n, n.Name)
		if !found || b.Kind != FactoredBinding {
			return ExpressionError(n, UnresolvedLocalError, "no factored primary %%%s", n.Name)
		}

	case *LabelDataRef:
		if !insideObjectData(n) {
			return ExpressionError(n, MisplacedDataRefError, "@%s is allowed in object data only", n.Name)
		}
	}
	return nil
}

func insideObjectData(e Expression) bool {
	child := e
	for p := e.Parent(); p != nil; child, p = p, p.Parent() {
		switch n := p.(type) {
		case *HashLiteral, *ArrayLiteral:
			continue
		case *ObjectCreator:
			return child == n.Data
		default:
			return false
		}
	}
	return false
}
