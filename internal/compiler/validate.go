package compiler

import (
	"fmt"

	"github.com/roach88/rdfup/internal/iri"
	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/term"
	"github.com/roach88/rdfup/internal/update"
)

// Validation codes (E200-E299). These flag requests that compile but will
// not do what they appear to.
const (
	ErrUnboundTemplateVar = "E201" // template variable never bound by WHERE
	ErrRelativeLoad       = "E202" // relative LOAD source without a base
	ErrUnknownSelectVar   = "E203" // SELECT variable not in scope of the query
	ErrUsingNamedOnly     = "E204" // USING NAMED without USING leaves the active graph empty
	ErrDuplicateCreate    = "E205" // second CREATE of the same graph fails
)

// ValidationError is one finding of Validate.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled document for likely mistakes. It returns every
// finding rather than stopping at the first.
func Validate(doc *Document) []ValidationError {
	var errs []ValidationError
	created := map[term.IRI]int{}

	for i, op := range doc.Request.Operations {
		field := fmt.Sprintf("operations[%d]", i)
		switch op := op.(type) {
		case update.Load:
			if doc.Request.Base == "" && !iri.IsAbsolute(op.Source) {
				errs = append(errs, ValidationError{
					Field:   field + ".load.source",
					Message: fmt.Sprintf("relative source %q and the document has no base", op.Source),
					Code:    ErrRelativeLoad,
				})
			}
		case update.Modify:
			errs = append(errs, validateModify(field+".modify", op)...)
		case update.Create:
			if prev, seen := created[op.Graph]; seen && !op.Silent {
				errs = append(errs, ValidationError{
					Field:   field + ".create.graph",
					Message: fmt.Sprintf("graph %s is already created by operations[%d]", op.Graph, prev),
					Code:    ErrDuplicateCreate,
				})
			}
			created[op.Graph] = i
		}
	}

	if q := doc.Query; q != nil {
		inScope := varSet(pattern.Vars(q.Where))
		for i, v := range q.Vars {
			if !inScope[v] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("query.select[%d]", i),
					Message: fmt.Sprintf("%s is not bound by the query pattern", v),
					Code:    ErrUnknownSelectVar,
				})
			}
		}
	}
	return errs
}

func validateModify(field string, op update.Modify) []ValidationError {
	var errs []ValidationError
	inScope := varSet(pattern.Vars(op.Where))

	check := func(kind string, ts []update.QuadTemplate) {
		for i, t := range ts {
			vars := t.Triple.Vars()
			if gv, ok := t.Graph.(term.Variable); ok {
				vars = append(vars, gv)
			}
			for _, v := range vars {
				if !inScope[v] {
					errs = append(errs, ValidationError{
						Field:   fmt.Sprintf("%s.%s[%d]", field, kind, i),
						Message: fmt.Sprintf("%s is never bound by where; every instantiation is skipped", v),
						Code:    ErrUnboundTemplateVar,
					})
				}
			}
		}
	}
	check("delete", op.Delete)
	check("insert", op.Insert)

	if len(op.UsingNamed) > 0 && len(op.Using) == 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".usingNamed",
			Message: "usingNamed without using leaves the active graph empty",
			Code:    ErrUsingNamedOnly,
		})
	}
	return errs
}

func varSet(vars []term.Variable) map[term.Variable]bool {
	out := make(map[term.Variable]bool, len(vars))
	for _, v := range vars {
		out[v] = true
	}
	return out
}
