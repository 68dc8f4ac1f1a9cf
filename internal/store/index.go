package store

import "github.com/roach88/rdfup/internal/term"

// level3 maps three key levels down to the stored triple.
type level3 map[string]map[string]map[string]term.Triple

func (ix level3) put(a, b, c string, t term.Triple) {
	mb, ok := ix[a]
	if !ok {
		mb = make(map[string]map[string]term.Triple)
		ix[a] = mb
	}
	mc, ok := mb[b]
	if !ok {
		mc = make(map[string]term.Triple)
		mb[b] = mc
	}
	mc[c] = t
}

func (ix level3) delete(a, b, c string) {
	mb, ok := ix[a]
	if !ok {
		return
	}
	mc, ok := mb[b]
	if !ok {
		return
	}
	delete(mc, c)
	if len(mc) == 0 {
		delete(mb, b)
	}
	if len(mb) == 0 {
		delete(ix, a)
	}
}

// graph is one context's triples, indexed three ways.
type graph struct {
	spo  level3
	pos  level3
	osp  level3
	size int
}

func newGraph() *graph {
	return &graph{spo: level3{}, pos: level3{}, osp: level3{}}
}

func (g *graph) contains(s, p, o string) bool {
	_, ok := g.spo[s][p][o]
	return ok
}

func (g *graph) add(t term.Triple) bool {
	s, p, o := term.Key(t.S), term.Key(t.P), term.Key(t.O)
	if g.contains(s, p, o) {
		return false
	}
	g.spo.put(s, p, o, t)
	g.pos.put(p, o, s, t)
	g.osp.put(o, s, p, t)
	g.size++
	return true
}

func (g *graph) remove(t term.Triple) bool {
	s, p, o := term.Key(t.S), term.Key(t.P), term.Key(t.O)
	if !g.contains(s, p, o) {
		return false
	}
	g.spo.delete(s, p, o)
	g.pos.delete(p, o, s)
	g.osp.delete(o, s, p)
	g.size--
	return true
}

// match appends every triple matching the pattern to out. Empty keys are
// wildcards.
func (g *graph) match(s, p, o string, out []term.Triple) []term.Triple {
	switch {
	case s != "":
		for pk, objs := range g.spo[s] {
			if p != "" && pk != p {
				continue
			}
			if o != "" {
				if t, ok := objs[o]; ok {
					out = append(out, t)
				}
				continue
			}
			for _, t := range objs {
				out = append(out, t)
			}
		}
	case o != "":
		for _, preds := range g.osp[o] {
			if p != "" {
				if t, ok := preds[p]; ok {
					out = append(out, t)
				}
				continue
			}
			for _, t := range preds {
				out = append(out, t)
			}
		}
	case p != "":
		for _, subjs := range g.pos[p] {
			for _, t := range subjs {
				out = append(out, t)
			}
		}
	default:
		for _, preds := range g.spo {
			for _, objs := range preds {
				for _, t := range objs {
					out = append(out, t)
				}
			}
		}
	}
	return out
}

func (g *graph) clone() *graph {
	c := newGraph()
	for _, preds := range g.spo {
		for _, objs := range preds {
			for _, t := range objs {
				c.add(t)
			}
		}
	}
	return c
}
