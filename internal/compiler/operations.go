package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/term"
	"github.com/roach88/rdfup/internal/update"
)

var operationKeys = []string{
	"load", "modify", "deleteWhere", "insertData", "deleteData",
	"clear", "create", "drop", "add", "copy", "move",
}

func (c *compiler) parseOperation(field string, v cue.Value) (update.Operation, error) {
	key, body, err := singleKey(field, v, operationKeys...)
	if err != nil {
		return nil, err
	}
	field = field + "." + key

	switch key {
	case "load":
		return c.parseLoad(field, body)
	case "modify":
		return c.parseModify(field, body)
	case "deleteWhere":
		return c.parseDeleteWhere(field, body)
	case "insertData":
		quads, err := c.parseData(field, body)
		if err != nil {
			return nil, err
		}
		return update.InsertData{Quads: quads}, nil
	case "deleteData":
		quads, err := c.parseData(field, body)
		if err != nil {
			return nil, err
		}
		return update.DeleteData{Quads: quads}, nil
	case "clear":
		target, silent, err := c.parseTarget(field, body)
		if err != nil {
			return nil, err
		}
		return update.Clear{Target: target, Silent: silent}, nil
	case "drop":
		target, silent, err := c.parseTarget(field, body)
		if err != nil {
			return nil, err
		}
		return update.Drop{Target: target, Silent: silent}, nil
	case "create":
		gv, ok := lookup(body, "graph")
		if !ok {
			return nil, compileErr(field+".graph", body.Pos(), "graph is required")
		}
		g, err := c.terms.parseIRIValue(field+".graph", gv)
		if err != nil {
			return nil, err
		}
		silent, err := optionalBool(field, body, "silent")
		if err != nil {
			return nil, err
		}
		return update.Create{Graph: g, Silent: silent}, nil
	case "add", "copy", "move":
		from, to, silent, err := c.parseTransfer(field, body)
		if err != nil {
			return nil, err
		}
		switch key {
		case "add":
			return update.Add{From: from, To: to, Silent: silent}, nil
		case "copy":
			return update.Copy{From: from, To: to, Silent: silent}, nil
		default:
			return update.Move{From: from, To: to, Silent: silent}, nil
		}
	}
	return nil, compileErr(field, v.Pos(), "unreachable")
}

func (c *compiler) parseLoad(field string, v cue.Value) (update.Operation, error) {
	var op update.Load

	// The short form is just the source string.
	if v.Kind() == cue.StringKind {
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		op.Source = s
		return op, nil
	}

	sv, ok := lookup(v, "source")
	if !ok {
		return nil, compileErr(field+".source", v.Pos(), "source is required")
	}
	src, err := sv.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if src == "" {
		return nil, compileErr(field+".source", sv.Pos(), "source is empty")
	}
	op.Source = src

	if iv, ok := lookup(v, "into"); ok {
		g, err := c.terms.parseIRIValue(field+".into", iv)
		if err != nil {
			return nil, err
		}
		op.Into = &g
	}
	if op.Silent, err = optionalBool(field, v, "silent"); err != nil {
		return nil, err
	}
	return op, nil
}

func (c *compiler) parseModify(field string, v cue.Value) (update.Operation, error) {
	var op update.Modify
	var err error

	if wv, ok := lookup(v, "with"); ok {
		g, err := c.terms.parseIRIValue(field+".with", wv)
		if err != nil {
			return nil, err
		}
		op.With = &g
	}
	if dv, ok := lookup(v, "delete"); ok {
		if op.Delete, err = c.parseTemplates(field+".delete", dv); err != nil {
			return nil, err
		}
	}
	if iv, ok := lookup(v, "insert"); ok {
		if op.Insert, err = c.parseTemplates(field+".insert", iv); err != nil {
			return nil, err
		}
	}
	if len(op.Delete) == 0 && len(op.Insert) == 0 {
		return nil, compileErr(field, v.Pos(), "modify needs a delete or an insert template")
	}
	if op.Using, err = c.parseIRIList(field+".using", v, "using"); err != nil {
		return nil, err
	}
	if op.UsingNamed, err = c.parseIRIList(field+".usingNamed", v, "usingNamed"); err != nil {
		return nil, err
	}

	wv, ok := lookup(v, "where")
	if !ok {
		return nil, compileErr(field+".where", v.Pos(), "where is required")
	}
	if op.Where, err = c.checkedPattern(field+".where", wv); err != nil {
		return nil, err
	}
	return op, nil
}

// parseDeleteWhere compiles the DELETE WHERE shorthand: the quad patterns
// are both the WHERE pattern and the delete template.
func (c *compiler) parseDeleteWhere(field string, v cue.Value) (update.Operation, error) {
	templates, err := c.parseTemplates(field, v)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, compileErr(field, v.Pos(), "deleteWhere needs at least one pattern")
	}

	var (
		defaults []term.Triple
		graphs   []pattern.Pattern
	)
	for _, t := range templates {
		if t.Graph == nil {
			defaults = append(defaults, t.Triple)
			continue
		}
		graphs = append(graphs, &pattern.Graph{Name: t.Graph, Inner: pattern.NewBGP(t.Triple)})
	}
	var parts []pattern.Pattern
	if len(defaults) > 0 {
		parts = append(parts, pattern.NewBGP(defaults...))
	}
	where := pattern.Group(append(parts, graphs...)...)
	if err := pattern.Validate(where); err != nil {
		return nil, compileErr(field, v.Pos(), "%v", err)
	}
	return update.Modify{Delete: templates, Where: where}, nil
}

// parseTemplates reads [s, p, o] or [s, p, o, g] quad templates.
func (c *compiler) parseTemplates(field string, v cue.Value) ([]update.QuadTemplate, error) {
	elems, err := listValues(field, v)
	if err != nil {
		return nil, err
	}
	out := make([]update.QuadTemplate, 0, len(elems))
	for i, e := range elems {
		slots, err := c.parseSlots(fmt.Sprintf("%s[%d]", field, i), e, 3, 4)
		if err != nil {
			return nil, err
		}
		t := update.QuadTemplate{Triple: term.NewTriple(slots[0], slots[1], slots[2])}
		if len(slots) == 4 {
			t.Graph = slots[3]
		}
		out = append(out, t)
	}
	return out, nil
}

// parseData reads ground quads for INSERT DATA and DELETE DATA.
func (c *compiler) parseData(field string, v cue.Value) ([]term.Quad, error) {
	templates, err := c.parseTemplates(field, v)
	if err != nil {
		return nil, err
	}
	out := make([]term.Quad, len(templates))
	for i, t := range templates {
		if !t.Triple.IsGround() {
			return nil, compileErr(fmt.Sprintf("%s[%d]", field, i), v.Pos(), "data must not contain variables")
		}
		ctx := term.DefaultContext
		if t.Graph != nil {
			g, ok := t.Graph.(term.IRI)
			if !ok {
				return nil, compileErr(fmt.Sprintf("%s[%d][3]", field, i), v.Pos(), "graph must be an IRI")
			}
			ctx = term.NamedContext(g)
		}
		out[i] = term.Quad{Triple: t.Triple, Context: ctx}
	}
	return out, nil
}

// parseTarget reads {graph: "default" | "named" | "all" | iri, silent}.
func (c *compiler) parseTarget(field string, v cue.Value) (update.GraphTarget, bool, error) {
	silent, err := optionalBool(field, v, "silent")
	if err != nil {
		return update.GraphTarget{}, false, err
	}
	gv, ok := lookup(v, "graph")
	if !ok {
		return update.GraphTarget{}, false, compileErr(field+".graph", v.Pos(), "graph is required")
	}
	if s, err := gv.String(); err == nil {
		switch s {
		case "default":
			return update.DefaultTarget(), silent, nil
		case "named":
			return update.AllNamedTarget(), silent, nil
		case "all":
			return update.AllTarget(), silent, nil
		}
	}
	g, err := c.terms.parseIRIValue(field+".graph", gv)
	if err != nil {
		return update.GraphTarget{}, false, err
	}
	return update.NamedTarget(g), silent, nil
}

func (c *compiler) parseTransfer(field string, v cue.Value) (from, to update.GraphRef, silent bool, err error) {
	if silent, err = optionalBool(field, v, "silent"); err != nil {
		return
	}
	if from, err = c.parseGraphRef(field+".from", v, "from"); err != nil {
		return
	}
	to, err = c.parseGraphRef(field+".to", v, "to")
	return
}

func (c *compiler) parseGraphRef(field string, v cue.Value, name string) (update.GraphRef, error) {
	gv, ok := lookup(v, name)
	if !ok {
		return update.GraphRef{}, compileErr(field, v.Pos(), "%s is required", name)
	}
	if s, err := gv.String(); err == nil && s == "default" {
		return update.DefaultGraph(), nil
	}
	g, err := c.terms.parseIRIValue(field, gv)
	if err != nil {
		return update.GraphRef{}, err
	}
	return update.NamedGraph(g), nil
}

func (c *compiler) parseIRIList(field string, v cue.Value, name string) ([]term.IRI, error) {
	lv, ok := lookup(v, name)
	if !ok {
		return nil, nil
	}
	elems, err := listValues(field, lv)
	if err != nil {
		return nil, err
	}
	out := make([]term.IRI, 0, len(elems))
	for i, e := range elems {
		g, err := c.terms.parseIRIValue(fmt.Sprintf("%s[%d]", field, i), e)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func optionalBool(field string, v cue.Value, name string) (bool, error) {
	bv, ok := lookup(v, name)
	if !ok {
		return false, nil
	}
	b, err := bv.Bool()
	if err != nil {
		return false, compileErr(field+"."+name, bv.Pos(), "expected a bool")
	}
	return b, nil
}
