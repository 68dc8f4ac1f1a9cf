package eval

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/term"
)

// run carries the state of one Evaluate call.
type run struct {
	ev     *Evaluator
	ctx    context.Context
	active []term.Context
	named  []term.Context
	hidden bool // a BGP introduced blank-node variables
	bgps   int
}

func (r *run) eval(p pattern.Pattern, active []term.Context) ([]term.Binding, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}

	var (
		rows []term.Binding
		err  error
	)
	switch p := p.(type) {
	case *pattern.BGP:
		rows, err = r.bgp(p, active)
	case *pattern.Join:
		rows, err = r.join(p, active)
	case *pattern.LeftJoin:
		rows, err = r.leftJoin(p, active)
	case *pattern.Union:
		rows, err = r.union(p, active)
	case *pattern.Minus:
		rows, err = r.minus(p, active)
	case *pattern.Filter:
		rows, err = r.filter(p, active)
	case *pattern.Extend:
		rows, err = r.extend(p, active)
	case *pattern.Graph:
		rows, err = r.graph(p)
	case *pattern.Values:
		rows = values(p)
	case *pattern.Empty:
		rows = []term.Binding{term.EmptyBinding}
	default:
		return nil, &pattern.EvaluationError{Token: fmt.Sprintf("%T", p), Message: "unknown pattern node"}
	}
	if err != nil {
		return nil, err
	}
	if err := r.checkLimit(len(rows)); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *run) checkLimit(n int) error {
	if max := r.ev.maxSolutions; max > 0 && n > max {
		return &pattern.EvaluationError{
			Message: fmt.Sprintf("solution limit exceeded: %d rows, limit %d", n, max),
		}
	}
	return nil
}

func (r *run) join(p *pattern.Join, active []term.Context) ([]term.Binding, error) {
	left, err := r.eval(p.Left, active)
	if err != nil {
		return nil, err
	}
	if len(left) == 0 {
		return nil, nil
	}
	right, err := r.eval(p.Right, active)
	if err != nil {
		return nil, err
	}

	var out []term.Binding
	for _, l := range left {
		for _, rt := range right {
			if l.Compatible(rt) {
				out = append(out, l.Merge(rt))
			}
		}
		if err := r.checkLimit(len(out)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *run) leftJoin(p *pattern.LeftJoin, active []term.Context) ([]term.Binding, error) {
	left, err := r.eval(p.Left, active)
	if err != nil {
		return nil, err
	}
	if len(left) == 0 {
		return nil, nil
	}
	right, err := r.eval(p.Right, active)
	if err != nil {
		return nil, err
	}

	var out []term.Binding
	for _, l := range left {
		matched := false
		for _, rt := range right {
			if !l.Compatible(rt) {
				continue
			}
			m := l.Merge(rt)
			if p.Expr != nil {
				if ok, err := effectiveBool(p.Expr, m); err != nil || !ok {
					continue
				}
			}
			out = append(out, m)
			matched = true
		}
		if !matched {
			out = append(out, l)
		}
		if err := r.checkLimit(len(out)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *run) union(p *pattern.Union, active []term.Context) ([]term.Binding, error) {
	left, err := r.eval(p.Left, active)
	if err != nil {
		return nil, err
	}
	right, err := r.eval(p.Right, active)
	if err != nil {
		return nil, err
	}
	return append(slices.Clip(left), right...), nil
}

func (r *run) minus(p *pattern.Minus, active []term.Context) ([]term.Binding, error) {
	left, err := r.eval(p.Left, active)
	if err != nil {
		return nil, err
	}
	if len(left) == 0 {
		return nil, nil
	}
	right, err := r.eval(p.Right, active)
	if err != nil {
		return nil, err
	}

	var out []term.Binding
	for _, l := range left {
		excluded := false
		for _, rt := range right {
			if sharesVar(l, rt) && l.Compatible(rt) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, l)
		}
	}
	return out, nil
}

func sharesVar(a, b term.Binding) bool {
	for _, v := range a.Vars() {
		if _, ok := b.Get(v); ok {
			return true
		}
	}
	return false
}

func (r *run) filter(p *pattern.Filter, active []term.Context) ([]term.Binding, error) {
	rows, err := r.eval(p.Inner, active)
	if err != nil {
		return nil, err
	}
	out := rows[:0:0]
	for _, row := range rows {
		if ok, err := effectiveBool(p.Expr, row); err == nil && ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *run) extend(p *pattern.Extend, active []term.Context) ([]term.Binding, error) {
	rows, err := r.eval(p.Inner, active)
	if err != nil {
		return nil, err
	}
	out := make([]term.Binding, len(rows))
	for i, row := range rows {
		val, err := evalExpr(p.Expr, row)
		if err != nil {
			r.ev.logger.Debug("bind expression failed", "var", p.Var.String(), "error", err)
			out[i] = row
			continue
		}
		out[i] = row.Extend(p.Var, val)
	}
	return out, nil
}

func (r *run) graph(p *pattern.Graph) ([]term.Binding, error) {
	switch name := p.Name.(type) {
	case term.IRI:
		gc := term.NamedContext(name)
		if !slices.Contains(r.named, gc) {
			return nil, nil
		}
		return r.eval(p.Inner, []term.Context{gc})
	case term.Variable:
		var out []term.Binding
		for _, gc := range r.named {
			iri, _ := gc.Name()
			rows, err := r.eval(p.Inner, []term.Context{gc})
			if err != nil {
				return nil, err
			}
			for _, row := range rows {
				if bound, ok := row.Get(name); ok {
					if bound != term.Term(iri) {
						continue
					}
					out = append(out, row)
					continue
				}
				out = append(out, row.Extend(name, iri))
			}
			if err := r.checkLimit(len(out)); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return nil, &pattern.EvaluationError{Token: fmt.Sprint(p.Name), Message: "graph name must be an IRI or a variable"}
}

func values(p *pattern.Values) []term.Binding {
	out := make([]term.Binding, 0, len(p.Rows))
	for _, row := range p.Rows {
		vals := make(map[term.Variable]term.Term, len(row))
		for i, cell := range row {
			if cell != nil {
				vals[p.Vars[i]] = cell
			}
		}
		out = append(out, term.NewBinding(vals))
	}
	return out
}
