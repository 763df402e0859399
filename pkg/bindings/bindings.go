// Package bindings implements immutable SPARQL solution mappings. Bindings
// generalizes the teacher's int64-keyed Substitution (pkg/minikanren.core.go)
// to a named-variable map over rdf.Term values, keeping the same
// copy-on-write discipline: every mutating method returns a new value and
// never touches the receiver's underlying map in place.
package bindings

import (
	"sort"
	"strings"

	"github.com/gitrdm/sparqlflow/pkg/rdf"
)

// Bindings is an immutable solution mapping from variable name to bound
// term. The zero value is the empty mapping.
type Bindings struct {
	m map[string]rdf.Term
}

// Empty returns the empty Bindings.
func Empty() Bindings {
	return Bindings{}
}

// FromMap constructs a Bindings from a map, copying it so the caller's map
// may be mutated afterward without affecting the result.
func FromMap(m map[string]rdf.Term) Bindings {
	cp := make(map[string]rdf.Term, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Bindings{m: cp}
}

// Get returns the term bound to name and whether it is bound.
func (b Bindings) Get(name string) (rdf.Term, bool) {
	if b.m == nil {
		return rdf.Term{}, false
	}
	t, ok := b.m[name]
	return t, ok
}

// Bind returns a new Bindings with name bound to term, leaving b unchanged.
// If name is already bound to a different term, the prior binding is
// overwritten (callers that must preserve SPARQL join-compatibility
// semantics should call Compatible first).
func (b Bindings) Bind(name string, term rdf.Term) Bindings {
	n := make(map[string]rdf.Term, len(b.m)+1)
	for k, v := range b.m {
		n[k] = v
	}
	n[name] = term
	return Bindings{m: n}
}

// Variables returns the bound variable names in sorted order.
func (b Bindings) Variables() []string {
	out := make([]string, 0, len(b.m))
	for k := range b.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of bound variables.
func (b Bindings) Len() int {
	return len(b.m)
}

// Compatible reports whether b and o agree on every variable they both
// bind, i.e. whether Merge would not silently overwrite a differing value.
func (b Bindings) Compatible(o Bindings) bool {
	for k, v := range b.m {
		if ov, ok := o.m[k]; ok && !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Merge combines b and o. It assumes Compatible(b, o) already holds; when a
// variable is bound in both, o's binding is used (right-biased), matching
// SPARQL's "merge" operation over compatible mappings.
func (b Bindings) Merge(o Bindings) Bindings {
	n := make(map[string]rdf.Term, len(b.m)+len(o.m))
	for k, v := range b.m {
		n[k] = v
	}
	for k, v := range o.m {
		n[k] = v
	}
	return Bindings{m: n}
}

// Project returns a new Bindings containing only the given variables.
func (b Bindings) Project(vars []string) Bindings {
	n := make(map[string]rdf.Term, len(vars))
	for _, v := range vars {
		if t, ok := b.m[v]; ok {
			n[v] = t
		}
	}
	return Bindings{m: n}
}

// Equal reports whether b and o bind exactly the same variables to exactly
// the same terms.
func (b Bindings) Equal(o Bindings) bool {
	if len(b.m) != len(o.m) {
		return false
	}
	for k, v := range b.m {
		ov, ok := o.m[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Signature returns a string that uniquely identifies b's value, stable
// across maps with the same contents regardless of insertion order. Used by
// Distinct and Group to hash bindings.
func (b Bindings) Signature() string {
	vars := b.Variables()
	var sb strings.Builder
	for i, v := range vars {
		if i > 0 {
			sb.WriteByte('\x1f')
		}
		sb.WriteString(v)
		sb.WriteByte('=')
		t := b.m[v]
		sb.WriteByte(byte('0' + t.Kind))
		sb.WriteByte(':')
		sb.WriteString(t.Value)
		if t.Kind == rdf.KindLiteral {
			sb.WriteByte('@')
			sb.WriteString(t.Lang)
			sb.WriteByte('^')
			sb.WriteString(t.Datatype)
		}
	}
	return sb.String()
}
