// Package graph holds a directed weighted graph and a single-source shortest
// path engine over it. Both are generic over node, edge and distance types.
package graph

// Edge is a directed edge carrying a value of type E.
type Edge[N comparable, E any] struct {
	From  N
	To    N
	Value E
}

// Graph is an adjacency-list digraph. Nodes keep insertion order so that
// iteration is deterministic.
type Graph[N comparable, E any] struct {
	nodes []N
	edges map[N][]Edge[N, E]
}

func New[N comparable, E any]() *Graph[N, E] {
	return &Graph[N, E]{edges: make(map[N][]Edge[N, E])}
}

// AddNode is a no-op for nodes already present.
func (g *Graph[N, E]) AddNode(n N) {
	if _, ok := g.edges[n]; ok {
		return
	}
	g.nodes = append(g.nodes, n)
	g.edges[n] = nil
}

// AddEdge adds both endpoints if needed.
func (g *Graph[N, E]) AddEdge(from, to N, value E) {
	g.AddNode(from)
	g.AddNode(to)
	g.edges[from] = append(g.edges[from], Edge[N, E]{From: from, To: to, Value: value})
}

func (g *Graph[N, E]) HasNode(n N) bool {
	_, ok := g.edges[n]
	return ok
}

// Edges returns the outgoing edges of n. The slice must not be modified.
func (g *Graph[N, E]) Edges(n N) []Edge[N, E] {
	return g.edges[n]
}

func (g *Graph[N, E]) Nodes() []N {
	return g.nodes
}

func (g *Graph[N, E]) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the total number of edges.
func (g *Graph[N, E]) EdgeCount() int {
	n := 0
	for _, es := range g.edges {
		n += len(es)
	}
	return n
}

func (g *Graph[N, E]) Clear() {
	g.nodes = nil
	clear(g.edges)
}
