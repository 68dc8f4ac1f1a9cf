package term

import (
	"slices"
	"strings"
)

// Binding maps variable names to ground terms. A Binding is immutable once
// produced: Extend and Merge return new values and never modify the receiver.
type Binding struct {
	vals map[Variable]Term
}

// EmptyBinding binds nothing. It is the single row of the empty group pattern.
var EmptyBinding = Binding{}

// NewBinding copies vals into a Binding. Nil values and Variable values are
// dropped, since a variable is either bound to a ground term or absent.
func NewBinding(vals map[Variable]Term) Binding {
	b := Binding{vals: make(map[Variable]Term, len(vals))}
	for k, v := range vals {
		if IsGround(v) {
			b.vals[k] = Canonical(v)
		}
	}
	return b
}

// Get returns the term bound to v.
func (b Binding) Get(v Variable) (Term, bool) {
	t, ok := b.vals[v]
	return t, ok
}

// Len returns the number of bound variables.
func (b Binding) Len() int { return len(b.vals) }

// Vars returns the bound variables in sorted order.
func (b Binding) Vars() []Variable {
	vars := make([]Variable, 0, len(b.vals))
	for v := range b.vals {
		vars = append(vars, v)
	}
	slices.Sort(vars)
	return vars
}

// Extend returns a copy of b with v bound to t. Extending with a nil or
// non-ground term returns b unchanged.
func (b Binding) Extend(v Variable, t Term) Binding {
	if !IsGround(t) {
		return b
	}
	out := Binding{vals: make(map[Variable]Term, len(b.vals)+1)}
	for k, val := range b.vals {
		out.vals[k] = val
	}
	out.vals[v] = Canonical(t)
	return out
}

// Compatible reports whether b and o agree on every variable they share.
func (b Binding) Compatible(o Binding) bool {
	small, large := b, o
	if len(small.vals) > len(large.vals) {
		small, large = large, small
	}
	for k, v := range small.vals {
		if ov, ok := large.vals[k]; ok && ov != v {
			return false
		}
	}
	return true
}

// Merge returns the union of two compatible bindings.
func (b Binding) Merge(o Binding) Binding {
	if len(o.vals) == 0 {
		return b
	}
	if len(b.vals) == 0 {
		return o
	}
	out := Binding{vals: make(map[Variable]Term, len(b.vals)+len(o.vals))}
	for k, v := range b.vals {
		out.vals[k] = v
	}
	for k, v := range o.vals {
		out.vals[k] = v
	}
	return out
}

// Project returns a binding restricted to vars.
func (b Binding) Project(vars []Variable) Binding {
	out := Binding{vals: make(map[Variable]Term, len(vars))}
	for _, v := range vars {
		if t, ok := b.vals[v]; ok {
			out.vals[v] = t
		}
	}
	return out
}

// Equal reports whether b and o bind the same variables to the same terms.
func (b Binding) Equal(o Binding) bool {
	if len(b.vals) != len(o.vals) {
		return false
	}
	for k, v := range b.vals {
		if ov, ok := o.vals[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Map returns a copy of the underlying assignments.
func (b Binding) Map() map[Variable]Term {
	out := make(map[Variable]Term, len(b.vals))
	for k, v := range b.vals {
		out[k] = v
	}
	return out
}

// String renders b as {?a=<x> ?b="y"} with variables sorted.
func (b Binding) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, v := range b.Vars() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(v.String())
		sb.WriteByte('=')
		sb.WriteString(b.vals[v].String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Substitute replaces a variable slot with its bound value. ok is false when
// t is a variable that b leaves unbound.
func (b Binding) Substitute(t Term) (Term, bool) {
	v, isVar := t.(Variable)
	if !isVar {
		return t, true
	}
	val, ok := b.vals[v]
	return val, ok
}
