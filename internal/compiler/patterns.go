package compiler

import (
	"fmt"
	"slices"

	"cuelang.org/go/cue"

	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/term"
)

// fieldNames returns the regular field labels of a struct value in
// declaration order.
func fieldNames(field string, v cue.Value) ([]string, error) {
	if v.Kind() != cue.StructKind {
		return nil, compileErr(field, v.Pos(), "expected a struct, got %v", v.IncompleteKind())
	}
	it, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var names []string
	for it.Next() {
		names = append(names, it.Label())
	}
	return names, nil
}

// singleKey returns the one field of v, for tagged-union shaped values like
// {bgp: [...]}.
func singleKey(field string, v cue.Value, allowed ...string) (string, cue.Value, error) {
	names, err := fieldNames(field, v)
	if err != nil {
		return "", cue.Value{}, err
	}
	if len(names) != 1 {
		return "", cue.Value{}, compileErr(field, v.Pos(), "expected exactly one of %v, got %v", allowed, names)
	}
	if !slices.Contains(allowed, names[0]) {
		return "", cue.Value{}, compileErr(field, v.Pos(), "unknown key %q, expected one of %v", names[0], allowed)
	}
	return names[0], v.LookupPath(cue.MakePath(cue.Str(names[0]))), nil
}

func listValues(field string, v cue.Value) ([]cue.Value, error) {
	if v.Kind() != cue.ListKind {
		return nil, compileErr(field, v.Pos(), "expected a list, got %v", v.IncompleteKind())
	}
	it, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []cue.Value
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, nil
}

func lookup(v cue.Value, name string) (cue.Value, bool) {
	f := v.LookupPath(cue.MakePath(cue.Str(name)))
	return f, f.Exists()
}

var patternKeys = []string{"bgp", "group", "union", "graph", "values", "empty"}

// parsePattern compiles one graph pattern.
func (c *compiler) parsePattern(field string, v cue.Value) (pattern.Pattern, error) {
	key, body, err := singleKey(field, v, patternKeys...)
	if err != nil {
		return nil, err
	}
	field = field + "." + key

	switch key {
	case "bgp":
		triples, err := c.parseTriples(field, body)
		if err != nil {
			return nil, err
		}
		return pattern.NewBGP(triples...), nil
	case "group":
		return c.parseGroup(field, body)
	case "union":
		elems, err := listValues(field, body)
		if err != nil {
			return nil, err
		}
		if len(elems) < 2 {
			return nil, compileErr(field, body.Pos(), "union needs at least two patterns")
		}
		var out pattern.Pattern
		for i, e := range elems {
			p, err := c.parsePattern(fmt.Sprintf("%s[%d]", field, i), e)
			if err != nil {
				return nil, err
			}
			if out == nil {
				out = p
			} else {
				out = &pattern.Union{Left: out, Right: p}
			}
		}
		return out, nil
	case "graph":
		nameVal, ok := lookup(body, "name")
		if !ok {
			return nil, compileErr(field+".name", body.Pos(), "graph name is required")
		}
		name, err := c.terms.parseValue(field+".name", nameVal)
		if err != nil {
			return nil, err
		}
		whereVal, ok := lookup(body, "where")
		if !ok {
			return nil, compileErr(field+".where", body.Pos(), "graph pattern is required")
		}
		inner, err := c.parsePattern(field+".where", whereVal)
		if err != nil {
			return nil, err
		}
		return &pattern.Graph{Name: name, Inner: inner}, nil
	case "values":
		return c.parseValues(field, body)
	case "empty":
		return &pattern.Empty{}, nil
	}
	return nil, compileErr(field, v.Pos(), "unreachable")
}

// parseGroup folds group elements left to right: plain patterns join,
// optional becomes LeftJoin, minus becomes Minus, bind becomes Extend.
// Filters collect and apply to the whole group.
func (c *compiler) parseGroup(field string, v cue.Value) (pattern.Pattern, error) {
	elems, err := listValues(field, v)
	if err != nil {
		return nil, err
	}

	var (
		acc     pattern.Pattern = &pattern.Empty{}
		filters []pattern.Expr
	)
	join := func(p pattern.Pattern) {
		if _, empty := acc.(*pattern.Empty); empty {
			acc = p
			return
		}
		acc = &pattern.Join{Left: acc, Right: p}
	}

	for i, e := range elems {
		ef := fmt.Sprintf("%s[%d]", field, i)
		names, err := fieldNames(ef, e)
		if err != nil {
			return nil, err
		}
		switch {
		case slices.Contains(names, "optional"):
			optVal, _ := lookup(e, "optional")
			right, err := c.parsePattern(ef+".optional", optVal)
			if err != nil {
				return nil, err
			}
			lj := &pattern.LeftJoin{Left: acc, Right: right}
			if fv, ok := lookup(e, "filter"); ok {
				if lj.Expr, err = c.parseExpr(ef+".filter", fv); err != nil {
					return nil, err
				}
			}
			if len(names) > 2 || (len(names) == 2 && !slices.Contains(names, "filter")) {
				return nil, compileErr(ef, e.Pos(), "optional accepts only a filter alongside it, got %v", names)
			}
			acc = lj
		case len(names) == 1 && names[0] == "minus":
			mv, _ := lookup(e, "minus")
			right, err := c.parsePattern(ef+".minus", mv)
			if err != nil {
				return nil, err
			}
			acc = &pattern.Minus{Left: acc, Right: right}
		case len(names) == 1 && names[0] == "bind":
			bv, _ := lookup(e, "bind")
			ext, err := c.parseBind(ef+".bind", bv)
			if err != nil {
				return nil, err
			}
			ext.Inner = acc
			acc = ext
		case len(names) == 1 && names[0] == "filter":
			fv, _ := lookup(e, "filter")
			expr, err := c.parseExpr(ef+".filter", fv)
			if err != nil {
				return nil, err
			}
			filters = append(filters, expr)
		default:
			p, err := c.parsePattern(ef, e)
			if err != nil {
				return nil, err
			}
			join(p)
		}
	}

	for i := len(filters) - 1; i >= 0; i-- {
		acc = &pattern.Filter{Expr: filters[i], Inner: acc}
	}
	return acc, nil
}

func (c *compiler) parseBind(field string, v cue.Value) (*pattern.Extend, error) {
	asVal, ok := lookup(v, "as")
	if !ok {
		return nil, compileErr(field+".as", v.Pos(), "bind target is required")
	}
	target, err := c.terms.parseVar(field+".as", asVal)
	if err != nil {
		return nil, err
	}
	exprVal, ok := lookup(v, "expr")
	if !ok {
		return nil, compileErr(field+".expr", v.Pos(), "bind expression is required")
	}
	expr, err := c.parseExpr(field+".expr", exprVal)
	if err != nil {
		return nil, err
	}
	return &pattern.Extend{Var: target, Expr: expr}, nil
}

func (c *compiler) parseValues(field string, v cue.Value) (pattern.Pattern, error) {
	varsVal, ok := lookup(v, "vars")
	if !ok {
		return nil, compileErr(field+".vars", v.Pos(), "values vars are required")
	}
	varVals, err := listValues(field+".vars", varsVal)
	if err != nil {
		return nil, err
	}
	out := &pattern.Values{}
	for i, vv := range varVals {
		tv, err := c.terms.parseVar(fmt.Sprintf("%s.vars[%d]", field, i), vv)
		if err != nil {
			return nil, err
		}
		out.Vars = append(out.Vars, tv)
	}

	rowsVal, ok := lookup(v, "rows")
	if !ok {
		return out, nil
	}
	rowVals, err := listValues(field+".rows", rowsVal)
	if err != nil {
		return nil, err
	}
	for i, rv := range rowVals {
		rf := fmt.Sprintf("%s.rows[%d]", field, i)
		cells, err := listValues(rf, rv)
		if err != nil {
			return nil, err
		}
		row := make([]term.Term, len(cells))
		for j, cell := range cells {
			if row[j], err = c.terms.parseValue(fmt.Sprintf("%s[%d]", rf, j), cell); err != nil {
				return nil, err
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// parseTriples reads a list of [s, p, o] triples.
func (c *compiler) parseTriples(field string, v cue.Value) ([]term.Triple, error) {
	elems, err := listValues(field, v)
	if err != nil {
		return nil, err
	}
	out := make([]term.Triple, 0, len(elems))
	for i, e := range elems {
		slots, err := c.parseSlots(fmt.Sprintf("%s[%d]", field, i), e, 3, 3)
		if err != nil {
			return nil, err
		}
		out = append(out, term.NewTriple(slots[0], slots[1], slots[2]))
	}
	return out, nil
}

// parseSlots reads a list of between min and max terms. Null is not
// allowed in a slot.
func (c *compiler) parseSlots(field string, v cue.Value, min, max int) ([]term.Term, error) {
	cells, err := listValues(field, v)
	if err != nil {
		return nil, err
	}
	if len(cells) < min || len(cells) > max {
		if min == max {
			return nil, compileErr(field, v.Pos(), "expected %d terms, got %d", min, len(cells))
		}
		return nil, compileErr(field, v.Pos(), "expected %d to %d terms, got %d", min, max, len(cells))
	}
	out := make([]term.Term, len(cells))
	for i, cell := range cells {
		cf := fmt.Sprintf("%s[%d]", field, i)
		t, err := c.terms.parseValue(cf, cell)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, compileErr(cf, cell.Pos(), "null term")
		}
		out[i] = t
	}
	return out, nil
}

// parseExpr compiles an expression: a term string, a CUE scalar, or
// {call: name, args: [...]}.
func (c *compiler) parseExpr(field string, v cue.Value) (pattern.Expr, error) {
	if v.Kind() != cue.StructKind {
		t, err := c.terms.parseValue(field, v)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, compileErr(field, v.Pos(), "null expression")
		}
		if tv, ok := t.(term.Variable); ok {
			return &pattern.VarExpr{Var: tv}, nil
		}
		return pattern.C(t), nil
	}

	callVal, ok := lookup(v, "call")
	if !ok {
		return nil, compileErr(field, v.Pos(), "expression struct needs a call field")
	}
	name, err := callVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	fn, ok := pattern.LookupFunc(name)
	if !ok {
		return nil, compileErr(field+".call", callVal.Pos(), "unknown function %q", name)
	}
	call := pattern.Call(fn)
	if argsVal, ok := lookup(v, "args"); ok {
		argVals, err := listValues(field+".args", argsVal)
		if err != nil {
			return nil, err
		}
		for i, av := range argVals {
			arg, err := c.parseExpr(fmt.Sprintf("%s.args[%d]", field, i), av)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
	}
	return call, nil
}
