package update

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/roach88/rdfup/internal/eval"
	"github.com/roach88/rdfup/internal/term"
)

// modify runs DELETE/INSERT ... WHERE with bind-once semantics: the
// solution multiset is computed in full, both quad sets are built from it,
// and only then does anything touch the store.
func (e *Executor) modify(ctx context.Context, logger *slog.Logger, op Modify) (OpResult, error) {
	sols, err := e.evaluator().Evaluate(ctx, op.Where, modifyDataset(op))
	if err != nil {
		return OpResult{}, err
	}

	deletes, inserts, skipped := e.instantiate(logger, op, sols)

	stats := e.st.Commit(deletes, inserts)
	return OpResult{
		Solutions: sols.Len(),
		Deleted:   stats.Removed,
		Inserted:  stats.Added,
		Skipped:   skipped,
		DeltaHash: term.MustDeltaHash(deletes, inserts),
	}, nil
}

// modifyDataset picks the evaluation dataset. Without USING clauses the
// active graph is the WITH graph (or the default graph) and GRAPH reaches
// every named graph. With USING clauses exactly the listed graphs are
// visible.
func modifyDataset(op Modify) eval.Dataset {
	if len(op.Using) == 0 && len(op.UsingNamed) == 0 {
		return eval.Dataset{Default: []term.Context{withContext(op.With)}, AllNamed: true}
	}
	ds := eval.Dataset{Named: op.UsingNamed}
	for _, g := range op.Using {
		ds.Default = append(ds.Default, term.NamedContext(g))
	}
	return ds
}

func withContext(with *term.IRI) term.Context {
	if with == nil {
		return term.DefaultContext
	}
	return term.NamedContext(*with)
}

// instantiate builds the delete and insert sets from sols. Every row is
// instantiated against the same unmodified solutions; nothing here reads
// the store.
func (e *Executor) instantiate(logger *slog.Logger, op Modify, sols eval.Solutions) (deletes, inserts []term.Quad, skipped int) {
	defaultCtx := withContext(op.With)

	var prefix string
	if hasBlankNodes(op.Insert) {
		prefix = e.blankPrefix()
	}

	for row, b := range sols {
		for _, tmpl := range op.Delete {
			q, ok := instantiateTemplate(logger, tmpl, b, defaultCtx, nil)
			if !ok {
				skipped++
				continue
			}
			deletes = append(deletes, q)
		}

		fresh := freshBlanks(prefix, row)
		for _, tmpl := range op.Insert {
			q, ok := instantiateTemplate(logger, tmpl, b, defaultCtx, fresh)
			if !ok {
				skipped++
				continue
			}
			inserts = append(inserts, q)
		}
	}
	return deletes, inserts, skipped
}

// instantiateTemplate substitutes b into tmpl. It reports false when a
// variable is unbound or a slot ends up with a term it cannot hold, such as
// a literal subject.
func instantiateTemplate(logger *slog.Logger, tmpl QuadTemplate, b term.Binding, defaultCtx term.Context, fresh func(term.BlankNode) term.BlankNode) (term.Quad, bool) {
	slots := [3]term.Term{tmpl.Triple.S, tmpl.Triple.P, tmpl.Triple.O}
	for i, slot := range slots {
		if bn, ok := slot.(term.BlankNode); ok && fresh != nil {
			slots[i] = fresh(bn)
			continue
		}
		val, ok := b.Substitute(slot)
		if !ok {
			logger.Debug("template row skipped",
				"kind", KindUnboundVariable,
				"variable", slot.String(),
				"template", tmpl.String(),
			)
			return term.Quad{}, false
		}
		slots[i] = val
	}

	gc := defaultCtx
	if tmpl.Graph != nil {
		val, ok := b.Substitute(tmpl.Graph)
		if !ok {
			logger.Debug("template row skipped",
				"kind", KindUnboundVariable,
				"variable", tmpl.Graph.String(),
				"template", tmpl.String(),
			)
			return term.Quad{}, false
		}
		g, isIRI := val.(term.IRI)
		if !isIRI {
			logger.Debug("template row skipped", "reason", "graph is not an IRI", "template", tmpl.String())
			return term.Quad{}, false
		}
		gc = term.NamedContext(g)
	}

	tr := term.NewTriple(slots[0], slots[1], slots[2])
	if !tr.IsValid() {
		logger.Debug("template row skipped", "reason", "ill-typed triple", "triple", tr.String())
		return term.Quad{}, false
	}
	return term.Quad{Triple: tr, Context: gc}, true
}

// freshBlanks returns the blank node mapping for one solution row. Labels
// repeat within a row and never across rows or operations.
func freshBlanks(prefix string, row int) func(term.BlankNode) term.BlankNode {
	if prefix == "" {
		return nil
	}
	return func(b term.BlankNode) term.BlankNode {
		return term.BlankNode(prefix + "_r" + strconv.Itoa(row) + "_" + string(b))
	}
}

func hasBlankNodes(ts []QuadTemplate) bool {
	for _, t := range ts {
		if _, ok := t.Triple.S.(term.BlankNode); ok {
			return true
		}
		if _, ok := t.Triple.O.(term.BlankNode); ok {
			return true
		}
	}
	return false
}
