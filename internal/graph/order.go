package graph

// DepEdge is a dependency of From on To.
type DepEdge[K comparable] struct {
	From, To K
}

// Dependencies is a directed graph where an edge From->To means From must be
// processed after To. Node and edge order is insertion order, which makes
// every walk deterministic.
type Dependencies[K comparable] struct {
	nodes []K
	seen  map[K]bool
	deps  map[K][]K
}

func NewDependencies[K comparable]() *Dependencies[K] {
	return &Dependencies[K]{
		seen: make(map[K]bool),
		deps: make(map[K][]K),
	}
}

// AddNode registers k if it is not known yet.
func (g *Dependencies[K]) AddNode(k K) {
	if g.seen[k] {
		return
	}
	g.seen[k] = true
	g.nodes = append(g.nodes, k)
}

// AddEdge records that from depends on to. Both become nodes.
func (g *Dependencies[K]) AddEdge(from, to K) {
	g.AddNode(from)
	g.AddNode(to)
	for _, existing := range g.deps[from] {
		if existing == to {
			return
		}
	}
	g.deps[from] = append(g.deps[from], to)
}

// Nodes returns the nodes in insertion order.
func (g *Dependencies[K]) Nodes() []K {
	return g.nodes
}

// DepsOf returns the direct dependencies of k in insertion order.
func (g *Dependencies[K]) DepsOf(k K) []K {
	return g.deps[k]
}

// CycleEdges returns every edge whose endpoints lie in the same strongly
// connected component, self edges included. Removing them leaves a DAG.
func (g *Dependencies[K]) CycleEdges() map[DepEdge[K]]bool {
	t := tarjan[K]{
		g:       g,
		index:   make(map[K]int),
		low:     make(map[K]int),
		onStack: make(map[K]bool),
		comp:    make(map[K]int),
	}
	for _, n := range g.nodes {
		if _, done := t.index[n]; !done {
			t.strongConnect(n)
		}
	}

	cycles := make(map[DepEdge[K]]bool)
	for _, from := range g.nodes {
		for _, to := range g.deps[from] {
			if t.comp[from] == t.comp[to] {
				cycles[DepEdge[K]{From: from, To: to}] = true
			}
		}
	}
	return cycles
}

type tarjan[K comparable] struct {
	g       *Dependencies[K]
	counter int
	index   map[K]int
	low     map[K]int
	onStack map[K]bool
	stack   []K
	comp    map[K]int
	comps   int
}

func (t *tarjan[K]) strongConnect(v K) {
	t.index[v] = t.counter
	t.low[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.g.deps[v] {
		if _, visited := t.index[w]; !visited {
			t.strongConnect(w)
			t.low[v] = min(t.low[v], t.low[w])
		} else if t.onStack[w] {
			t.low[v] = min(t.low[v], t.index[w])
		}
	}

	if t.low[v] == t.index[v] {
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			t.comp[w] = t.comps
			if w == v {
				break
			}
		}
		t.comps++
	}
}

// Sort returns the nodes with dependencies before dependents. Edges for
// which skip returns true are ignored; the walk is cycle safe either way
// because a node is visited at most once.
func (g *Dependencies[K]) Sort(skip func(DepEdge[K]) bool) []K {
	visited := make(map[K]bool, len(g.nodes))
	sorted := make([]K, 0, len(g.nodes))

	var visit func(K)
	visit = func(k K) {
		if visited[k] {
			return
		}
		visited[k] = true
		for _, dep := range g.deps[k] {
			if skip != nil && skip(DepEdge[K]{From: k, To: dep}) {
				continue
			}
			visit(dep)
		}
		sorted = append(sorted, k)
	}

	for _, n := range g.nodes {
		visit(n)
	}
	return sorted
}
