package update

import (
	"slices"

	"github.com/roach88/rdfup/internal/store"
	"github.com/roach88/rdfup/internal/term"
)

func (e *Executor) insertData(op InsertData) OpResult {
	quads := op.Quads
	if hasDataBlanks(op.Quads) {
		prefix := e.blankPrefix()
		quads = make([]term.Quad, len(op.Quads))
		for i, q := range op.Quads {
			quads[i] = relabelQuad(q, prefix)
		}
	}
	stats := e.st.Commit(nil, quads)
	return OpResult{Inserted: stats.Added, DeltaHash: term.MustDeltaHash(nil, quads)}
}

func (e *Executor) deleteData(op DeleteData) OpResult {
	stats := e.st.Commit(op.Quads, nil)
	return OpResult{Deleted: stats.Removed, DeltaHash: term.MustDeltaHash(op.Quads, nil)}
}

func hasDataBlanks(quads []term.Quad) bool {
	for _, q := range quads {
		if _, ok := q.S.(term.BlankNode); ok {
			return true
		}
		if _, ok := q.O.(term.BlankNode); ok {
			return true
		}
	}
	return false
}

func relabelQuad(q term.Quad, prefix string) term.Quad {
	relabel := func(t term.Term) term.Term {
		if b, ok := t.(term.BlankNode); ok {
			return term.BlankNode(prefix + "_" + string(b))
		}
		return t
	}
	return term.NewQuad(relabel(q.S), q.P, relabel(q.O), q.Context)
}

// targets expands a CLEAR or DROP target into store contexts. A named graph
// that does not exist yields GraphNotFound, or no contexts when silent.
func (e *Executor) targets(t GraphTarget, silent bool) ([]term.Context, error) {
	switch t.Scope {
	case TargetDefault:
		return []term.Context{term.DefaultContext}, nil
	case TargetNamed:
		c := term.NamedContext(t.Graph)
		if !e.st.HasContext(c) {
			if silent {
				return nil, nil
			}
			return nil, graphNotFound(string(t.Graph))
		}
		return []term.Context{c}, nil
	case TargetAllNamed:
		return e.st.NamedContexts(), nil
	case TargetAll:
		return append([]term.Context{term.DefaultContext}, e.st.NamedContexts()...), nil
	}
	return nil, invalid(t.String(), "unknown graph target")
}

func (e *Executor) clear(op Clear) (OpResult, error) {
	ctxs, err := e.targets(op.Target, op.Silent)
	if err != nil {
		return OpResult{}, err
	}
	var deletes []term.Quad
	for _, c := range ctxs {
		deletes = append(deletes, slices.Collect(e.st.Quads(c))...)
	}
	stats := e.st.Commit(deletes, nil)
	return OpResult{Deleted: stats.Removed, DeltaHash: term.MustDeltaHash(deletes, nil)}, nil
}

func (e *Executor) drop(op Drop) (OpResult, error) {
	ctxs, err := e.targets(op.Target, op.Silent)
	if err != nil {
		return OpResult{}, err
	}
	var deletes []term.Quad
	for _, c := range ctxs {
		deletes = append(deletes, slices.Collect(e.st.Quads(c))...)
	}
	stats := e.st.Apply(store.Change{Drop: ctxs})
	return OpResult{Deleted: stats.Removed, DeltaHash: term.MustDeltaHash(deletes, nil)}, nil
}

func (e *Executor) create(op Create) (OpResult, error) {
	if !e.st.CreateContext(term.NamedContext(op.Graph)) && !op.Silent {
		return OpResult{}, graphExists(string(op.Graph))
	}
	return OpResult{}, nil
}

// transfer implements ADD (replace=false), COPY (replace=true) and MOVE
// (replace and move). Every change, including MOVE dropping the emptied
// source graph, lands in one store.Apply.
func (e *Executor) transfer(from, to GraphRef, silent, replace, move bool) (OpResult, error) {
	src, dst := from.Context(), to.Context()
	if !e.st.HasContext(src) {
		if silent {
			return OpResult{}, nil
		}
		return OpResult{}, graphNotFound(string(from.Graph))
	}
	if src == dst {
		return OpResult{}, nil
	}

	var deletes, inserts []term.Quad
	for q := range e.st.Quads(src) {
		inserts = append(inserts, term.Quad{Triple: q.Triple, Context: dst})
		if move {
			deletes = append(deletes, q)
		}
	}
	if replace {
		deletes = append(deletes, slices.Collect(e.st.Quads(dst))...)
	}

	change := store.Change{Create: []term.Context{dst}, Deletes: deletes, Inserts: inserts}
	if move {
		change.Drop = []term.Context{src}
	}
	stats := e.st.Apply(change)
	return OpResult{
		Deleted:   stats.Removed,
		Inserted:  stats.Added,
		DeltaHash: term.MustDeltaHash(deletes, inserts),
	}, nil
}
