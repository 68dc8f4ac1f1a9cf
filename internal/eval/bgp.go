package eval

import (
	"slices"

	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/term"
)

// bgp evaluates a basic graph pattern as a left-deep nested loop: each
// triple pattern is instantiated with the current row, then matched through
// the store's indexes.
func (r *run) bgp(p *pattern.BGP, active []term.Context) ([]term.Binding, error) {
	r.bgps++
	scope := r.bgps
	rows := []term.Binding{term.EmptyBinding}
	for _, tp := range p.Triples {
		tp = r.hideBlanks(scope, tp)
		var next []term.Binding
		for _, row := range rows {
			if err := r.ctx.Err(); err != nil {
				return nil, err
			}
			s, _ := row.Substitute(tp.S)
			pr, _ := row.Substitute(tp.P)
			o, _ := row.Substitute(tp.O)
			for _, t := range r.scan(active, s, pr, o) {
				if ext, ok := bindTriple(row, term.Triple{S: s, P: pr, O: o}, t); ok {
					next = append(next, ext)
				}
			}
			if err := r.checkLimit(len(next)); err != nil {
				return nil, err
			}
		}
		rows = next
		if len(rows) == 0 {
			return nil, nil
		}
	}
	return rows, nil
}

func (r *run) hideBlanks(scope int, tp term.Triple) term.Triple {
	hide := func(t term.Term) term.Term {
		if b, ok := t.(term.BlankNode); ok {
			r.hidden = true
			return hiddenVar(scope, b)
		}
		return t
	}
	return term.Triple{S: hide(tp.S), P: tp.P, O: hide(tp.O)}
}

// scan matches one instantiated triple pattern against the union of the
// active contexts. A single context comes back in index order; a union is
// collapsed and re-sorted.
func (r *run) scan(active []term.Context, s, p, o term.Term) []term.Triple {
	switch len(active) {
	case 0:
		return nil
	case 1:
		return r.ev.st.Match(active[0], s, p, o)
	}

	var all []term.Triple
	for _, gc := range active {
		all = append(all, r.ev.st.Match(gc, s, p, o)...)
	}
	slices.SortFunc(all, term.CompareTriples)
	return slices.CompactFunc(all, func(a, b term.Triple) bool {
		return term.CompareTriples(a, b) == 0
	})
}

// bindTriple extends row with the variables of tp matched against t. A
// variable repeated inside tp must match the same term in every slot.
func bindTriple(row term.Binding, tp, t term.Triple) (term.Binding, bool) {
	pairs := [3][2]term.Term{{tp.S, t.S}, {tp.P, t.P}, {tp.O, t.O}}
	for _, pair := range pairs {
		v, ok := pair[0].(term.Variable)
		if !ok {
			continue
		}
		if bound, ok := row.Get(v); ok {
			if term.Key(bound) != term.Key(pair[1]) {
				return term.Binding{}, false
			}
			continue
		}
		row = row.Extend(v, pair[1])
	}
	return row, true
}
