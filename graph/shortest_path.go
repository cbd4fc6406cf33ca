package graph

import (
	"cmp"
	"errors"
	"maps"
	"slices"

	"gopkg.in/eapache/queue.v1"
)

var ErrNegativeCycle = errors.New("graph: negative cycle reachable from source")

// Step is one hop of a reconstructed path: the node reached and the edge
// taken to reach it.
type Step[N comparable, E any] struct {
	Node N
	Edge Edge[N, E]
}

// ShortestPath computes single-source shortest paths over a Graph using a
// FIFO worklist relaxation. combine extends a distance by an edge value.
type ShortestPath[N comparable, E any, D cmp.Ordered] struct {
	graph   *Graph[N, E]
	combine func(D, E) D

	source N
	solved bool
	dist   map[N]D
	pre    map[N]Edge[N, E]
}

func NewShortestPath[N comparable, E any, D cmp.Ordered](g *Graph[N, E], combine func(D, E) D) *ShortestPath[N, E, D] {
	return &ShortestPath[N, E, D]{
		graph:   g,
		combine: combine,
		dist:    make(map[N]D),
		pre:     make(map[N]Edge[N, E]),
	}
}

// Relax discards previous results and computes distances from src, which
// starts at init. src is seeded even if it has no edges.
func (sp *ShortestPath[N, E, D]) Relax(src N, init D) error {
	clear(sp.dist)
	clear(sp.pre)
	sp.source = src
	sp.solved = true
	sp.dist[src] = init

	limit := sp.graph.Len() + 1
	visits := make(map[N]int)
	pending := map[N]bool{src: true}
	work := queue.New()
	work.Add(src)

	for work.Length() > 0 {
		u := work.Remove().(N)
		pending[u] = false
		du := sp.dist[u]
		for _, e := range sp.graph.Edges(u) {
			alt := sp.combine(du, e.Value)
			if cur, ok := sp.dist[e.To]; ok && alt >= cur {
				continue
			}
			sp.dist[e.To] = alt
			sp.pre[e.To] = e
			if pending[e.To] {
				continue
			}
			visits[e.To]++
			if visits[e.To] > limit {
				return ErrNegativeCycle
			}
			pending[e.To] = true
			work.Add(e.To)
		}
	}
	return nil
}

func (sp *ShortestPath[N, E, D]) Source() N { return sp.source }

// Dist returns the distance to n and whether n was reached.
func (sp *ShortestPath[N, E, D]) Dist(n N) (D, bool) {
	d, ok := sp.dist[n]
	return d, ok
}

// Distances returns a copy of every reached node's distance.
func (sp *ShortestPath[N, E, D]) Distances() map[N]D {
	return maps.Clone(sp.dist)
}

// Predecessor returns the edge that last improved n.
func (sp *ShortestPath[N, E, D]) Predecessor(n N) (Edge[N, E], bool) {
	e, ok := sp.pre[n]
	return e, ok
}

// ReconstructPath returns the steps from the source to target, source
// excluded. It is empty when target is unreached or is the source.
func (sp *ShortestPath[N, E, D]) ReconstructPath(target N) []Step[N, E] {
	if !sp.solved || target == sp.source {
		return nil
	}
	if _, ok := sp.dist[target]; !ok {
		return nil
	}

	var path []Step[N, E]
	cur := target
	for cur != sp.source {
		e, ok := sp.pre[cur]
		if !ok || len(path) > len(sp.pre) {
			return nil
		}
		path = append(path, Step[N, E]{Node: cur, Edge: e})
		cur = e.From
	}
	slices.Reverse(path)
	return path
}
