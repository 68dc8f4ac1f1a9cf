package eval

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/rdfup/internal/pattern"
	"github.com/roach88/rdfup/internal/store"
	"github.com/roach88/rdfup/internal/term"
)

// Dataset selects the contexts a pattern is evaluated against.
//
// The active graph for patterns outside GRAPH is the union of Default, with
// duplicate triples collapsed. GRAPH ranges over Named, or over every named
// context in the store when AllNamed is set.
type Dataset struct {
	Default  []term.Context
	Named    []term.IRI
	AllNamed bool
}

// DefaultDataset is the store's default context, with every named context
// reachable through GRAPH.
func DefaultDataset() Dataset {
	return Dataset{Default: []term.Context{term.DefaultContext}, AllNamed: true}
}

// Solutions is an ordered multiset of bindings.
type Solutions []term.Binding

// Len returns the number of rows.
func (s Solutions) Len() int { return len(s) }

// Vars returns every variable bound in at least one row, sorted.
func (s Solutions) Vars() []term.Variable {
	seen := map[term.Variable]bool{}
	var out []term.Variable
	for _, b := range s {
		for _, v := range b.Vars() {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Project restricts every row to vars. Row count and order are kept.
func (s Solutions) Project(vars []term.Variable) Solutions {
	out := make(Solutions, len(s))
	for i, b := range s {
		out[i] = b.Project(vars)
	}
	return out
}

// Strings renders each row with Binding.String, for logs and tests.
func (s Solutions) Strings() []string {
	out := make([]string, len(s))
	for i, b := range s {
		out[i] = b.String()
	}
	return out
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxSolutions caps the rows any single pattern node may produce.
// Zero means unlimited.
func WithMaxSolutions(n int) Option {
	return func(e *Evaluator) {
		e.maxSolutions = n
	}
}

// Evaluator runs patterns against a store. It holds no per-call state and
// is safe for concurrent use.
type Evaluator struct {
	st           *store.Store
	logger       *slog.Logger
	maxSolutions int
}

// New returns an Evaluator over st.
func New(st *store.Store, opts ...Option) *Evaluator {
	e := &Evaluator{st: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query evaluates p against the default dataset of st.
func Query(ctx context.Context, p pattern.Pattern, st *store.Store) (Solutions, error) {
	return New(st).Evaluate(ctx, p, DefaultDataset())
}

// Evaluate validates p and computes its solutions over ds.
func (e *Evaluator) Evaluate(ctx context.Context, p pattern.Pattern, ds Dataset) (Solutions, error) {
	if err := pattern.Validate(p); err != nil {
		return nil, err
	}

	run := &run{
		ev:     e,
		ctx:    ctx,
		active: dedupContexts(ds.Default),
		named:  e.namedContexts(ds),
	}
	rows, err := run.eval(p, run.active)
	if err != nil {
		return nil, err
	}
	if run.hidden {
		rows = stripHidden(rows)
	}

	e.logger.Debug("pattern evaluated",
		"pattern", pattern.Format(p),
		"rows", len(rows),
	)
	return Solutions(rows), nil
}

func (e *Evaluator) namedContexts(ds Dataset) []term.Context {
	if ds.AllNamed {
		return e.st.NamedContexts()
	}
	out := make([]term.Context, 0, len(ds.Named))
	for _, iri := range ds.Named {
		out = append(out, term.NamedContext(iri))
	}
	return dedupContexts(out)
}

func dedupContexts(in []term.Context) []term.Context {
	out := slices.Clone(in)
	slices.SortFunc(out, term.CompareContexts)
	return slices.Compact(out)
}

// hiddenPrefix marks the variables standing in for blank nodes in BGPs.
// It cannot collide with a valid variable name.
const hiddenPrefix = "_:"

// hiddenVar names blank node b within one BGP evaluation. A blank label is
// scoped to its BGP, so the same label in two BGPs never joins.
func hiddenVar(scope int, b term.BlankNode) term.Variable {
	return term.Variable(hiddenPrefix + strconv.Itoa(scope) + "_" + string(b))
}

func stripHidden(rows []term.Binding) []term.Binding {
	out := make([]term.Binding, len(rows))
	for i, b := range rows {
		vars := b.Vars()
		keep := vars[:0]
		for _, v := range vars {
			if !strings.HasPrefix(string(v), hiddenPrefix) {
				keep = append(keep, v)
			}
		}
		out[i] = b.Project(keep)
	}
	return out
}
