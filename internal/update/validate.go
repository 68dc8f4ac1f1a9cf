package update

import (
	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/term"
)

// validateOp rejects malformed operations before they touch the store.
func validateOp(op Operation) error {
	switch op := op.(type) {
	case Load:
		if op.Source == "" {
			return invalid("LOAD", "empty source")
		}
		if op.Into != nil && *op.Into == "" {
			return invalid("INTO", "empty graph name")
		}
	case Modify:
		return validateModify(op)
	case InsertData:
		return validateData(op.Quads, true)
	case DeleteData:
		return validateData(op.Quads, false)
	case Clear:
		return validateTarget(op.Target)
	case Drop:
		return validateTarget(op.Target)
	case Create:
		if op.Graph == "" {
			return invalid("CREATE", "empty graph name")
		}
	case Add, Copy, Move:
	case nil:
		return invalid("<nil>", "nil operation")
	}
	return nil
}

func validateModify(op Modify) error {
	if op.Where == nil {
		return invalid("WHERE", "missing WHERE pattern")
	}
	if len(op.Delete) == 0 && len(op.Insert) == 0 {
		return invalid("WHERE", "neither DELETE nor INSERT template")
	}
	if op.With != nil && *op.With == "" {
		return invalid("WITH", "empty graph name")
	}
	if err := pattern.Validate(op.Where); err != nil {
		return err
	}
	for _, t := range op.Delete {
		if err := validateTemplate(t, false); err != nil {
			return err
		}
	}
	for _, t := range op.Insert {
		if err := validateTemplate(t, true); err != nil {
			return err
		}
	}
	return nil
}

func validateTemplate(t QuadTemplate, blanksAllowed bool) error {
	tok := t.String()
	slots := []term.Term{t.Triple.S, t.Triple.P, t.Triple.O}
	for _, s := range slots {
		if s == nil {
			return invalid(tok, "empty template slot")
		}
		if _, ok := s.(term.BlankNode); ok && !blanksAllowed {
			return invalid(tok, "blank node in DELETE template")
		}
	}
	switch t.Triple.S.(type) {
	case term.Literal:
		return invalid(tok, "literal in subject position")
	}
	switch t.Triple.P.(type) {
	case term.IRI, term.Variable:
	default:
		return invalid(tok, "predicate must be an IRI or a variable")
	}
	switch t.Graph.(type) {
	case nil, term.IRI, term.Variable:
	default:
		return invalid(tok, "graph must be an IRI or a variable")
	}
	return nil
}

func validateData(quads []term.Quad, blanksAllowed bool) error {
	for _, q := range quads {
		tok := q.String()
		if !q.IsGround() {
			return invalid(tok, "variable in data block")
		}
		if !q.IsValid() {
			return invalid(tok, "malformed quad")
		}
		if !blanksAllowed {
			_, sb := q.S.(term.BlankNode)
			_, ob := q.O.(term.BlankNode)
			if sb || ob {
				return invalid(tok, "blank node in DELETE DATA")
			}
		}
	}
	return nil
}

func validateTarget(t GraphTarget) error {
	switch t.Scope {
	case TargetDefault, TargetAllNamed, TargetAll:
		return nil
	case TargetNamed:
		if t.Graph == "" {
			return invalid(t.String(), "empty graph name")
		}
		return nil
	}
	return invalid(t.String(), "unknown graph target")
}
