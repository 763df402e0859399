package engine

import (
	"encoding/json"
	"fmt"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/expr"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
)

// JSONParser implements Parser by decoding the query text as the
// serialized algebra tree named in spec.md §6 ("a serialized or in-memory
// algebra tree... each node has a type discriminator and the
// children/parameters enumerated in §3"). This is sparqlflow's concrete
// default Parser: it is not a SPARQL text parser (explicitly out of
// scope), only a JSON encoding of the same Node/PathExpr/Expr trees a Go
// caller could build directly.
type JSONParser struct{}

func (JSONParser) Parse(query string) (algebra.Node, error) {
	return decodeNode(json.RawMessage(query))
}

type jsonTerm struct {
	Kind     string `json:"kind"`
	Value    string `json:"value"`
	Lang     string `json:"lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
	Undef    bool   `json:"undef,omitempty"`
}

func decodeTerm(raw json.RawMessage) (rdf.Term, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return rdf.Term{}, nil
	}
	var jt jsonTerm
	if err := json.Unmarshal(raw, &jt); err != nil {
		return rdf.Term{}, err
	}
	if jt.Undef {
		return rdf.Undef, nil
	}
	switch jt.Kind {
	case "iri":
		return rdf.IRI(jt.Value), nil
	case "bnode":
		return rdf.BlankNode(jt.Value), nil
	case "variable":
		return rdf.Variable(jt.Value), nil
	case "literal":
		if jt.Lang != "" {
			return rdf.LangLiteral(jt.Value, jt.Lang), nil
		}
		if jt.Datatype != "" {
			return rdf.TypedLiteral(jt.Value, jt.Datatype), nil
		}
		return rdf.PlainLiteral(jt.Value), nil
	case "default-graph", "":
		if jt.Kind == "default-graph" {
			return rdf.DefaultGraph, nil
		}
		return rdf.Term{}, nil
	default:
		return rdf.Term{}, fmt.Errorf("engine: unknown term kind %q", jt.Kind)
	}
}

type jsonPattern struct {
	Subject   json.RawMessage `json:"subject"`
	Predicate json.RawMessage `json:"predicate"`
	Object    json.RawMessage `json:"object"`
	Graph     json.RawMessage `json:"graph"`
}

func decodePattern(raw json.RawMessage) (rdf.Pattern, error) {
	var jp jsonPattern
	if err := json.Unmarshal(raw, &jp); err != nil {
		return rdf.Pattern{}, err
	}
	s, err := decodeTerm(jp.Subject)
	if err != nil {
		return rdf.Pattern{}, err
	}
	p, err := decodeTerm(jp.Predicate)
	if err != nil {
		return rdf.Pattern{}, err
	}
	o, err := decodeTerm(jp.Object)
	if err != nil {
		return rdf.Pattern{}, err
	}
	g, err := decodeTerm(jp.Graph)
	if err != nil {
		return rdf.Pattern{}, err
	}
	if g.Value == "" && g.Kind == 0 {
		g = rdf.DefaultGraph
	}
	return rdf.Pattern{Subject: s, Predicate: p, Object: o, Graph: g}, nil
}

type jsonExpr struct {
	Type     string            `json:"type"`
	Name     string            `json:"name,omitempty"`
	Value    json.RawMessage   `json:"value,omitempty"`
	Op       string            `json:"op,omitempty"`
	Operand  json.RawMessage   `json:"operand,omitempty"`
	Left     json.RawMessage   `json:"left,omitempty"`
	Right    json.RawMessage   `json:"right,omitempty"`
	Func     string            `json:"func,omitempty"`
	Args     []json.RawMessage `json:"args,omitempty"`
}

func decodeExpr(raw json.RawMessage) (expr.Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var je jsonExpr
	if err := json.Unmarshal(raw, &je); err != nil {
		return nil, err
	}
	switch je.Type {
	case "var":
		return expr.VarRef{Name: je.Name}, nil
	case "lit":
		t, err := decodeTerm(je.Value)
		if err != nil {
			return nil, err
		}
		return expr.Lit{Value: t}, nil
	case "unary":
		operand, err := decodeExpr(je.Operand)
		if err != nil {
			return nil, err
		}
		return expr.UnaryOp{Op: je.Op, Operand: operand}, nil
	case "binary":
		l, err := decodeExpr(je.Left)
		if err != nil {
			return nil, err
		}
		r, err := decodeExpr(je.Right)
		if err != nil {
			return nil, err
		}
		return expr.BinaryOp{Op: je.Op, Left: l, Right: r}, nil
	case "call":
		args := make([]expr.Expr, 0, len(je.Args))
		for _, a := range je.Args {
			d, err := decodeExpr(a)
			if err != nil {
				return nil, err
			}
			args = append(args, d)
		}
		return expr.Call{Func: je.Func, Args: args}, nil
	default:
		return nil, fmt.Errorf("engine: unknown expr type %q", je.Type)
	}
}

type jsonPath struct {
	Type     string            `json:"type"`
	Predicate json.RawMessage  `json:"predicate,omitempty"`
	Expr     json.RawMessage   `json:"expr,omitempty"`
	Left     json.RawMessage   `json:"left,omitempty"`
	Right    json.RawMessage   `json:"right,omitempty"`
	Excluded []json.RawMessage `json:"excluded,omitempty"`
}

func decodePath(raw json.RawMessage) (algebra.PathExpr, error) {
	var jp jsonPath
	if err := json.Unmarshal(raw, &jp); err != nil {
		return nil, err
	}
	switch jp.Type {
	case "link":
		t, err := decodeTerm(jp.Predicate)
		if err != nil {
			return nil, err
		}
		return algebra.Link{Predicate: t}, nil
	case "inv":
		e, err := decodePath(jp.Expr)
		if err != nil {
			return nil, err
		}
		return algebra.Inv{Expr: e}, nil
	case "seq":
		l, err := decodePath(jp.Left)
		if err != nil {
			return nil, err
		}
		r, err := decodePath(jp.Right)
		if err != nil {
			return nil, err
		}
		return algebra.Seq{Left: l, Right: r}, nil
	case "alt":
		l, err := decodePath(jp.Left)
		if err != nil {
			return nil, err
		}
		r, err := decodePath(jp.Right)
		if err != nil {
			return nil, err
		}
		return algebra.Alt{Left: l, Right: r}, nil
	case "zeroOrMore":
		e, err := decodePath(jp.Expr)
		if err != nil {
			return nil, err
		}
		return algebra.ZeroOrMore{Expr: e}, nil
	case "oneOrMore":
		e, err := decodePath(jp.Expr)
		if err != nil {
			return nil, err
		}
		return algebra.OneOrMore{Expr: e}, nil
	case "zeroOrOne":
		e, err := decodePath(jp.Expr)
		if err != nil {
			return nil, err
		}
		return algebra.ZeroOrOne{Expr: e}, nil
	case "nps":
		excluded := make([]rdf.Term, 0, len(jp.Excluded))
		for _, t := range jp.Excluded {
			d, err := decodeTerm(t)
			if err != nil {
				return nil, err
			}
			excluded = append(excluded, d)
		}
		return algebra.NPS{Excluded: excluded}, nil
	default:
		return nil, fmt.Errorf("engine: unknown path type %q", jp.Type)
	}
}

type jsonAggregate struct {
	Var       string          `json:"var"`
	Func      string          `json:"func"`
	Expr      json.RawMessage `json:"expr,omitempty"`
	Distinct  bool            `json:"distinct,omitempty"`
	Separator string          `json:"separator,omitempty"`
}

type jsonSortCondition struct {
	Expr       json.RawMessage `json:"expr"`
	Descending bool            `json:"descending,omitempty"`
}

type jsonNode struct {
	Type      string            `json:"type"`
	Patterns  []json.RawMessage `json:"patterns,omitempty"`
	Pattern   json.RawMessage   `json:"pattern,omitempty"`
	Source    string            `json:"source,omitempty"`
	Subject   json.RawMessage   `json:"subject,omitempty"`
	Expr      json.RawMessage   `json:"expr,omitempty"`
	Object    json.RawMessage   `json:"object,omitempty"`
	Graph     json.RawMessage   `json:"graph,omitempty"`
	Left      json.RawMessage   `json:"left,omitempty"`
	Right     json.RawMessage   `json:"right,omitempty"`
	Filter    json.RawMessage   `json:"filter,omitempty"`
	Input     json.RawMessage   `json:"input,omitempty"`
	Var       string            `json:"var,omitempty"`
	Vars      []string          `json:"vars,omitempty"`
	Offset    int64             `json:"offset,omitempty"`
	Limit     int64             `json:"limit,omitempty"`
	Conditions []jsonSortCondition `json:"conditions,omitempty"`
	GroupVars  []string          `json:"groupVars,omitempty"`
	Aggregates []jsonAggregate   `json:"aggregates,omitempty"`
	Having     json.RawMessage   `json:"having,omitempty"`
	Variables  []string          `json:"variables,omitempty"`
	Rows       [][]json.RawMessage `json:"rows,omitempty"`
	Template   []json.RawMessage `json:"template,omitempty"`
	Terms      []json.RawMessage `json:"terms,omitempty"`
	Endpoint   string            `json:"endpoint,omitempty"`
	Silent     bool              `json:"silent,omitempty"`
	QueryText  string            `json:"queryText,omitempty"`
}

func decodeNodeOpt(raw json.RawMessage) (algebra.Node, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return decodeNode(raw)
}

func decodeNode(raw json.RawMessage) (algebra.Node, error) {
	var jn jsonNode
	if err := json.Unmarshal(raw, &jn); err != nil {
		return nil, err
	}

	switch jn.Type {
	case string(algebra.TypeBgp):
		patterns := make([]rdf.Pattern, 0, len(jn.Patterns))
		for _, p := range jn.Patterns {
			d, err := decodePattern(p)
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, d)
		}
		return algebra.Bgp{Patterns: patterns, Source: jn.Source}, nil

	case string(algebra.TypePattern):
		p, err := decodePattern(jn.Pattern)
		if err != nil {
			return nil, err
		}
		return algebra.Pattern{Pattern: p, Source: jn.Source}, nil

	case string(algebra.TypePath):
		s, err := decodeTerm(jn.Subject)
		if err != nil {
			return nil, err
		}
		pe, err := decodePath(jn.Expr)
		if err != nil {
			return nil, err
		}
		o, err := decodeTerm(jn.Object)
		if err != nil {
			return nil, err
		}
		g, err := decodeTerm(jn.Graph)
		if err != nil {
			return nil, err
		}
		if g.Value == "" && g.Kind == 0 {
			g = rdf.DefaultGraph
		}
		return algebra.Path{Subject: s, Expr: pe, Object: o, Graph: g, Source: jn.Source}, nil

	case string(algebra.TypeJoin):
		l, r, err := decodeLeftRight(jn)
		if err != nil {
			return nil, err
		}
		return algebra.Join{Left: l, Right: r}, nil

	case string(algebra.TypeLeftJoin):
		l, r, err := decodeLeftRight(jn)
		if err != nil {
			return nil, err
		}
		f, err := decodeExpr(jn.Filter)
		if err != nil {
			return nil, err
		}
		return algebra.LeftJoin{Left: l, Right: r, Filter: f}, nil

	case string(algebra.TypeUnion):
		l, r, err := decodeLeftRight(jn)
		if err != nil {
			return nil, err
		}
		return algebra.Union{Left: l, Right: r}, nil

	case string(algebra.TypeFilter):
		in, err := decodeNode(jn.Input)
		if err != nil {
			return nil, err
		}
		e, err := decodeExpr(jn.Expr)
		if err != nil {
			return nil, err
		}
		return algebra.Filter{Input: in, Expr: e}, nil

	case string(algebra.TypeExtend):
		in, err := decodeNode(jn.Input)
		if err != nil {
			return nil, err
		}
		e, err := decodeExpr(jn.Expr)
		if err != nil {
			return nil, err
		}
		return algebra.Extend{Input: in, Var: jn.Var, Expr: e}, nil

	case string(algebra.TypeProject):
		in, err := decodeNode(jn.Input)
		if err != nil {
			return nil, err
		}
		return algebra.Project{Input: in, Vars: jn.Vars}, nil

	case string(algebra.TypeDistinct):
		in, err := decodeNode(jn.Input)
		if err != nil {
			return nil, err
		}
		return algebra.Distinct{Input: in}, nil

	case string(algebra.TypeReduced):
		in, err := decodeNode(jn.Input)
		if err != nil {
			return nil, err
		}
		return algebra.Reduced{Input: in}, nil

	case string(algebra.TypeSlice):
		in, err := decodeNode(jn.Input)
		if err != nil {
			return nil, err
		}
		return algebra.Slice{Input: in, Offset: jn.Offset, Limit: jn.Limit}, nil

	case string(algebra.TypeOrderBy):
		in, err := decodeNode(jn.Input)
		if err != nil {
			return nil, err
		}
		conds := make([]algebra.SortCondition, 0, len(jn.Conditions))
		for _, c := range jn.Conditions {
			e, err := decodeExpr(c.Expr)
			if err != nil {
				return nil, err
			}
			conds = append(conds, algebra.SortCondition{Expr: e, Descending: c.Descending})
		}
		return algebra.OrderBy{Input: in, Conditions: conds}, nil

	case string(algebra.TypeGroup):
		in, err := decodeNode(jn.Input)
		if err != nil {
			return nil, err
		}
		aggs := make([]algebra.Aggregate, 0, len(jn.Aggregates))
		for _, a := range jn.Aggregates {
			e, err := decodeExpr(a.Expr)
			if err != nil {
				return nil, err
			}
			aggs = append(aggs, algebra.Aggregate{Var: a.Var, Func: a.Func, Expr: e, Distinct: a.Distinct, Separator: a.Separator})
		}
		having, err := decodeExpr(jn.Having)
		if err != nil {
			return nil, err
		}
		return algebra.Group{Input: in, GroupVars: jn.GroupVars, Aggregates: aggs, Having: having}, nil

	case string(algebra.TypeMinus):
		l, r, err := decodeLeftRight(jn)
		if err != nil {
			return nil, err
		}
		return algebra.Minus{Left: l, Right: r}, nil

	case string(algebra.TypeValues):
		rows := make([][]rdf.Term, 0, len(jn.Rows))
		for _, row := range jn.Rows {
			decoded := make([]rdf.Term, 0, len(row))
			for _, t := range row {
				d, err := decodeTerm(t)
				if err != nil {
					return nil, err
				}
				decoded = append(decoded, d)
			}
			rows = append(rows, decoded)
		}
		return algebra.Values{Vars: algebra.Rows{Variables: jn.Variables, Rows: rows}}, nil

	case string(algebra.TypeConstruct):
		in, err := decodeNode(jn.Input)
		if err != nil {
			return nil, err
		}
		tmpl := make([]rdf.Pattern, 0, len(jn.Template))
		for _, t := range jn.Template {
			d, err := decodePattern(t)
			if err != nil {
				return nil, err
			}
			tmpl = append(tmpl, d)
		}
		return algebra.Construct{Input: in, Template: tmpl}, nil

	case string(algebra.TypeAsk):
		in, err := decodeNode(jn.Input)
		if err != nil {
			return nil, err
		}
		return algebra.Ask{Input: in}, nil

	case string(algebra.TypeDescribe):
		in, err := decodeNodeOpt(jn.Input)
		if err != nil {
			return nil, err
		}
		terms := make([]rdf.Term, 0, len(jn.Terms))
		for _, t := range jn.Terms {
			d, err := decodeTerm(t)
			if err != nil {
				return nil, err
			}
			terms = append(terms, d)
		}
		return algebra.Describe{Input: in, Terms: terms}, nil

	case string(algebra.TypeService):
		in, err := decodeNodeOpt(jn.Input)
		if err != nil {
			return nil, err
		}
		return algebra.Service{Endpoint: jn.Endpoint, Input: in, Silent: jn.Silent, QueryText: jn.QueryText}, nil

	default:
		return nil, fmt.Errorf("engine: unknown node type %q", jn.Type)
	}
}

func decodeLeftRight(jn jsonNode) (algebra.Node, algebra.Node, error) {
	l, err := decodeNode(jn.Left)
	if err != nil {
		return nil, nil, err
	}
	r, err := decodeNode(jn.Right)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}
