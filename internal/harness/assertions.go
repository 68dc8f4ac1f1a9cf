package harness

import (
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/rdfup/internal/compiler"
	"github.com/roach88/rdfup/internal/store"
	"github.com/roach88/rdfup/internal/term"
)

// AssertionContext is what assertions evaluate against.
type AssertionContext struct {
	Store    *store.Store
	Base     string
	Prefixes map[string]string
	Result   *Result
}

// AssertionError is returned when an assertion fails. It carries the final
// dataset for debugging.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Dataset  []string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Dataset) > 0 {
		fmt.Fprintf(&buf, "\nFinal dataset:\n")
		for _, line := range e.Dataset {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateAssertion(a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertQuadPresent, AssertQuadAbsent:
		return assertQuad(a, actx)
	case AssertGraphSize:
		return assertGraphSize(a, actx)
	case AssertGraphExists:
		return assertGraphExists(a, actx)
	case AssertQueryRows:
		return assertQueryRows(a, actx)
	}
	return fmt.Errorf("unknown assertion type: %s", a.Type)
}

func assertQuad(a Assertion, actx *AssertionContext) error {
	q, err := actx.quad(a.Quad)
	if err != nil {
		return err
	}
	present := actx.Store.Contains(q)
	want := a.Type == AssertQuadPresent
	if present == want {
		return nil
	}
	expected, actual := "quad "+q.String()+" present", "absent"
	if !want {
		expected, actual = "quad "+q.String()+" absent", "present"
	}
	return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Dataset: actx.Result.Dataset}
}

func assertGraphSize(a Assertion, actx *AssertionContext) error {
	ctx, err := actx.context(a.Graph)
	if err != nil {
		return err
	}
	if n := actx.Store.Len(ctx); n != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d quads in %s", a.Count, ctx),
			Actual:   fmt.Sprintf("%d quads", n),
			Dataset:  actx.Result.Dataset,
		}
	}
	return nil
}

func assertGraphExists(a Assertion, actx *AssertionContext) error {
	ctx, err := actx.context(a.Graph)
	if err != nil {
		return err
	}
	if !actx.Store.HasContext(ctx) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("graph %s exists", ctx),
			Actual:   "no such graph",
		}
	}
	return nil
}

func assertQueryRows(a Assertion, actx *AssertionContext) error {
	if actx.Result.Solutions == nil {
		return fmt.Errorf("request has no query")
	}
	want := slices.Clone(a.Rows)
	slices.Sort(want)
	got := actx.Result.Solutions
	if !slices.Equal(want, got) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("rows %v", want),
			Actual:   fmt.Sprintf("rows %v", got),
		}
	}
	return nil
}

func (actx *AssertionContext) term(v any) (term.Term, error) {
	switch v := v.(type) {
	case string:
		return compiler.ParseTerm(v, actx.Base, actx.Prefixes)
	case int:
		return term.NewInteger(int64(v)), nil
	case bool:
		return term.NewBoolean(v), nil
	case float64:
		r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'f', -1, 64))
		if !ok {
			return nil, fmt.Errorf("cannot represent %v as a decimal", v)
		}
		return term.NewDecimal(r), nil
	}
	return nil, fmt.Errorf("unsupported term value %v (%T)", v, v)
}

func (actx *AssertionContext) quad(slots []any) (term.Quad, error) {
	terms := make([]term.Term, len(slots))
	for i, s := range slots {
		t, err := actx.term(s)
		if err != nil {
			return term.Quad{}, fmt.Errorf("quad[%d]: %w", i, err)
		}
		if !term.IsGround(t) {
			return term.Quad{}, fmt.Errorf("quad[%d]: %s is not ground", i, t)
		}
		terms[i] = t
	}
	ctx := term.DefaultContext
	if len(terms) == 4 {
		g, ok := terms[3].(term.IRI)
		if !ok {
			return term.Quad{}, fmt.Errorf("quad[3]: graph %s is not an IRI", terms[3])
		}
		ctx = term.NamedContext(g)
	}
	return term.NewQuad(terms[0], terms[1], terms[2], ctx), nil
}

func (actx *AssertionContext) context(graph string) (term.Context, error) {
	if graph == "default" {
		return term.DefaultContext, nil
	}
	t, err := actx.term(graph)
	if err != nil {
		return term.Context{}, fmt.Errorf("graph: %w", err)
	}
	g, ok := t.(term.IRI)
	if !ok {
		return term.Context{}, fmt.Errorf("graph %s is not an IRI", t)
	}
	return term.NamedContext(g), nil
}
