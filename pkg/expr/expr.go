// Package expr implements the SPARQL filter/extend/having expression
// evaluator used by pkg/operators and pkg/algebra.
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gitrdm/sparqlflow/pkg/rdf"
)

// Binding is the minimal read-only view an Expr needs of a solution
// mapping; pkg/bindings.Bindings satisfies it.
type Binding interface {
	Get(name string) (rdf.Term, bool)
}

// Expr is a SPARQL expression tree node.
type Expr interface {
	// Eval evaluates the expression against b. An unbound variable or a
	// type error yields (rdf.Term{}, err) per SPARQL's error-propagating
	// expression semantics; callers computing effective boolean value
	// treat any error as "not true" unless otherwise specified (e.g.
	// inside COALESCE, not modeled here).
	Eval(b Binding) (rdf.Term, error)
}

// VarRef looks up a variable in the binding.
type VarRef struct{ Name string }

func (v VarRef) Eval(b Binding) (rdf.Term, error) {
	t, ok := b.Get(v.Name)
	if !ok {
		return rdf.Term{}, fmt.Errorf("unbound variable ?%s", v.Name)
	}
	return t, nil
}

// Lit is a constant term.
type Lit struct{ Value rdf.Term }

func (l Lit) Eval(Binding) (rdf.Term, error) { return l.Value, nil }

// UnaryOp applies a unary operator ("!", "-", "+") to Operand.
type UnaryOp struct {
	Op      string
	Operand Expr
}

func (u UnaryOp) Eval(b Binding) (rdf.Term, error) {
	v, err := u.Operand.Eval(b)
	if err != nil {
		return rdf.Term{}, err
	}
	switch u.Op {
	case "!":
		bv, err := EffectiveBooleanValue(v)
		if err != nil {
			return rdf.Term{}, err
		}
		return boolTerm(!bv), nil
	case "-":
		f, err := numeric(v)
		if err != nil {
			return rdf.Term{}, err
		}
		return numericTerm(-f, v.Datatype), nil
	case "+":
		if _, err := numeric(v); err != nil {
			return rdf.Term{}, err
		}
		return v, nil
	default:
		return rdf.Term{}, fmt.Errorf("unknown unary operator %q", u.Op)
	}
}

// BinaryOp applies a binary operator to Left and Right. Supported ops:
// "&&", "||", "=", "!=", "<", "<=", ">", ">=", "+", "-", "*", "/".
type BinaryOp struct {
	Op    string
	Left  Expr
	Right Expr
}

func (o BinaryOp) Eval(b Binding) (rdf.Term, error) {
	switch o.Op {
	case "&&":
		lv, err := o.Left.Eval(b)
		if err != nil {
			return rdf.Term{}, err
		}
		lb, err := EffectiveBooleanValue(lv)
		if err != nil {
			return rdf.Term{}, err
		}
		if !lb {
			return boolTerm(false), nil
		}
		rv, err := o.Right.Eval(b)
		if err != nil {
			return rdf.Term{}, err
		}
		rb, err := EffectiveBooleanValue(rv)
		if err != nil {
			return rdf.Term{}, err
		}
		return boolTerm(rb), nil
	case "||":
		lv, err := o.Left.Eval(b)
		if err == nil {
			if lb, berr := EffectiveBooleanValue(lv); berr == nil && lb {
				return boolTerm(true), nil
			}
		}
		rv, err := o.Right.Eval(b)
		if err != nil {
			return rdf.Term{}, err
		}
		rb, err := EffectiveBooleanValue(rv)
		if err != nil {
			return rdf.Term{}, err
		}
		return boolTerm(rb), nil
	}

	lv, err := o.Left.Eval(b)
	if err != nil {
		return rdf.Term{}, err
	}
	rv, err := o.Right.Eval(b)
	if err != nil {
		return rdf.Term{}, err
	}

	switch o.Op {
	case "=":
		return boolTerm(lv.Equal(rv)), nil
	case "!=":
		return boolTerm(!lv.Equal(rv)), nil
	case "<", "<=", ">", ">=":
		return compareTerms(o.Op, lv, rv)
	case "+", "-", "*", "/":
		lf, err := numeric(lv)
		if err != nil {
			return rdf.Term{}, err
		}
		rf, err := numeric(rv)
		if err != nil {
			return rdf.Term{}, err
		}
		return arith(o.Op, lf, rf, lv.Datatype)
	default:
		return rdf.Term{}, fmt.Errorf("unknown binary operator %q", o.Op)
	}
}

// Call is a builtin function call ("bound", "str", "lang", "datatype",
// "contains", "strstarts", "strends", "ucase", "lcase", "isiri",
// "isblank", "isliteral").
type Call struct {
	Func string
	Args []Expr
}

func (c Call) Eval(b Binding) (rdf.Term, error) {
	switch strings.ToLower(c.Func) {
	case "bound":
		if len(c.Args) != 1 {
			return rdf.Term{}, fmt.Errorf("bound() takes one argument")
		}
		vr, ok := c.Args[0].(VarRef)
		if !ok {
			return rdf.Term{}, fmt.Errorf("bound() requires a variable argument")
		}
		_, bound := b.Get(vr.Name)
		return boolTerm(bound), nil
	case "str":
		v, err := evalOne(c.Args, b)
		if err != nil {
			return rdf.Term{}, err
		}
		return rdf.PlainLiteral(v.Value), nil
	case "lang":
		v, err := evalOne(c.Args, b)
		if err != nil {
			return rdf.Term{}, err
		}
		return rdf.PlainLiteral(v.Lang), nil
	case "datatype":
		v, err := evalOne(c.Args, b)
		if err != nil {
			return rdf.Term{}, err
		}
		return rdf.IRI(v.Datatype), nil
	case "isiri", "isuri":
		v, err := evalOne(c.Args, b)
		if err != nil {
			return rdf.Term{}, err
		}
		return boolTerm(v.Kind == rdf.KindIRI), nil
	case "isblank":
		v, err := evalOne(c.Args, b)
		if err != nil {
			return rdf.Term{}, err
		}
		return boolTerm(v.Kind == rdf.KindBlankNode), nil
	case "isliteral":
		v, err := evalOne(c.Args, b)
		if err != nil {
			return rdf.Term{}, err
		}
		return boolTerm(v.Kind == rdf.KindLiteral), nil
	case "ucase", "lcase":
		v, err := evalOne(c.Args, b)
		if err != nil {
			return rdf.Term{}, err
		}
		s := v.Value
		if strings.ToLower(c.Func) == "ucase" {
			s = strings.ToUpper(s)
		} else {
			s = strings.ToLower(s)
		}
		return rdf.PlainLiteral(s), nil
	case "strstarts":
		return evalStringPred(c.Args, b, strings.HasPrefix)
	case "strends":
		return evalStringPred(c.Args, b, strings.HasSuffix)
	case "contains":
		return evalStringPred(c.Args, b, strings.Contains)
	default:
		return rdf.Term{}, fmt.Errorf("unsupported function %q", c.Func)
	}
}

func evalOne(args []Expr, b Binding) (rdf.Term, error) {
	if len(args) != 1 {
		return rdf.Term{}, fmt.Errorf("expected exactly one argument")
	}
	return args[0].Eval(b)
}

func evalStringPred(args []Expr, b Binding, pred func(s, sub string) bool) (rdf.Term, error) {
	if len(args) != 2 {
		return rdf.Term{}, fmt.Errorf("expected exactly two arguments")
	}
	lv, err := args[0].Eval(b)
	if err != nil {
		return rdf.Term{}, err
	}
	rv, err := args[1].Eval(b)
	if err != nil {
		return rdf.Term{}, err
	}
	return boolTerm(pred(lv.Value, rv.Value)), nil
}

func boolTerm(v bool) rdf.Term {
	if v {
		return rdf.TypedLiteral("true", "http://www.w3.org/2001/XMLSchema#boolean")
	}
	return rdf.TypedLiteral("false", "http://www.w3.org/2001/XMLSchema#boolean")
}

func numericTerm(f float64, datatype string) rdf.Term {
	if datatype == "" {
		datatype = "http://www.w3.org/2001/XMLSchema#double"
	}
	return rdf.TypedLiteral(strconv.FormatFloat(f, 'g', -1, 64), datatype)
}

func numeric(t rdf.Term) (float64, error) {
	if t.Kind != rdf.KindLiteral {
		return 0, fmt.Errorf("%s is not a numeric literal", t)
	}
	f, err := strconv.ParseFloat(t.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s is not numeric: %w", t, err)
	}
	return f, nil
}

func arith(op string, l, r float64, datatype string) (rdf.Term, error) {
	switch op {
	case "+":
		return numericTerm(l+r, datatype), nil
	case "-":
		return numericTerm(l-r, datatype), nil
	case "*":
		return numericTerm(l*r, datatype), nil
	case "/":
		if r == 0 {
			return rdf.Term{}, fmt.Errorf("division by zero")
		}
		return numericTerm(l/r, datatype), nil
	default:
		return rdf.Term{}, fmt.Errorf("unknown arithmetic operator %q", op)
	}
}

func compareTerms(op string, l, r rdf.Term) (rdf.Term, error) {
	var cmp int
	if lf, lerr := numeric(l); lerr == nil {
		if rf, rerr := numeric(r); rerr == nil {
			switch {
			case lf < rf:
				cmp = -1
			case lf > rf:
				cmp = 1
			}
			return boolTerm(applyCmp(op, cmp)), nil
		}
	}
	cmp = strings.Compare(l.Value, r.Value)
	return boolTerm(applyCmp(op, cmp)), nil
}

func applyCmp(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}

// EffectiveBooleanValue implements the SPARQL EBV coercion used by Filter
// and the logical operators.
func EffectiveBooleanValue(t rdf.Term) (bool, error) {
	if t.Kind != rdf.KindLiteral {
		return false, fmt.Errorf("%s has no effective boolean value", t)
	}
	switch t.Datatype {
	case "http://www.w3.org/2001/XMLSchema#boolean":
		return t.Value == "true" || t.Value == "1", nil
	case "http://www.w3.org/2001/XMLSchema#string", "":
		return t.Value != "", nil
	default:
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return false, fmt.Errorf("%s has no effective boolean value", t)
		}
		return f != 0, nil
	}
}

// Compare orders two terms for ORDER BY, ascending. Numeric literals
// compare numerically; everything else compares by lexical Value.
func Compare(l, r rdf.Term) int {
	if lf, lerr := numeric(l); lerr == nil {
		if rf, rerr := numeric(r); rerr == nil {
			switch {
			case lf < rf:
				return -1
			case lf > rf:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(l.Value, r.Value)
}
