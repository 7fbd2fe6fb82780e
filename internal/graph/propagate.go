package graph

import (
	"gonum.org/v1/gonum/graph/simple"

	"fusionbot-go/internal/metrics"
	"fusionbot-go/internal/signal"
)

// Snapshot is an immutable weighted undirected co-occurrence graph. Each call
// to NewSnapshot builds a fresh value; rebuilding replaces prior state rather
// than merging into it, which keeps concurrent propagation safe by
// construction. Do not mutate a snapshot after handing it out.
type Snapshot struct {
	g       *simple.WeightedUndirectedGraph
	ids     map[string]int64
	symbols map[int64]string
}

// NewSnapshot builds a graph from the supplied edges. Self-loops are dropped.
func NewSnapshot(edges []Edge) *Snapshot {
	s := &Snapshot{
		g:       simple.NewWeightedUndirectedGraph(0, 0),
		ids:     make(map[string]int64),
		symbols: make(map[int64]string),
	}
	for _, e := range edges {
		if e.A == e.B {
			continue
		}
		u := s.node(e.A)
		v := s.node(e.B)
		s.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(u), T: simple.Node(v), W: e.Weight})
	}
	return s
}

func (s *Snapshot) node(sym string) int64 {
	if id, ok := s.ids[sym]; ok {
		return id
	}
	id := int64(len(s.ids))
	s.ids[sym] = id
	s.symbols[id] = sym
	s.g.AddNode(simple.Node(id))
	return id
}

// Has reports whether the ticker appears in the graph.
func (s *Snapshot) Has(sym string) bool {
	_, ok := s.ids[sym]
	return ok
}

// Order returns the node count.
func (s *Snapshot) Order() int { return len(s.ids) }

const defaultDecay = 0.5

// Propagator spreads an impact value outward from a source ticker with
// multiplicative per-hop decay.
type Propagator struct {
	Decay   float64 // per-hop attenuation, must sit in (0, 1)
	MaxHops int
}

// NewPropagator validates the knobs, falling back to a 0.5 decay and 2 hops.
func NewPropagator(decay float64, maxHops int) Propagator {
	if decay <= 0 || decay >= 1 {
		decay = defaultDecay
	}
	if maxHops <= 0 {
		maxHops = 2
	}
	return Propagator{Decay: decay, MaxHops: maxHops}
}

// Propagate runs a breadth-first traversal from source over the snapshot.
// Impact at hop k is the parent impact × edge weight × decay. Each node is
// visited at most once: when multiple paths reach a node, only the
// first-discovered (shortest-hop) path's impact is recorded, not the sum over
// all paths. A source missing from the graph yields {source: impact} with no
// traversal and no error. The returned map always carries the source at its
// original impact.
func (p Propagator) Propagate(snap *Snapshot, source string, impact float64) map[string]float64 {
	metrics.PropagationsTotal.Inc()

	impacts := map[string]float64{source: impact}
	if snap == nil || !snap.Has(source) {
		return impacts
	}

	type frontier struct {
		id     int64
		impact float64
		hop    int
	}

	srcID := snap.ids[source]
	visited := map[int64]bool{srcID: true}
	queue := []frontier{{id: srcID, impact: impact, hop: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.hop >= p.MaxHops {
			continue
		}
		it := snap.g.From(cur.id)
		for it.Next() {
			next := it.Node().ID()
			if visited[next] {
				continue
			}
			visited[next] = true
			weight, ok := snap.g.Weight(cur.id, next)
			if !ok {
				continue
			}
			nextImpact := cur.impact * weight * p.Decay
			impacts[snap.symbols[next]] = nextImpact
			queue = append(queue, frontier{id: next, impact: nextImpact, hop: cur.hop + 1})
		}
	}
	return impacts
}

// PropagateBatch runs one independent propagation per source and sums the
// resulting maps entry-wise. Contributions across distinct sources add, unlike
// multiple paths within one single-source traversal.
func (p Propagator) PropagateBatch(snap *Snapshot, sources map[string]float64) map[string]float64 {
	combined := make(map[string]float64, len(sources))
	for source, impact := range sources {
		for sym, v := range p.Propagate(snap, source, impact) {
			combined[sym] += v
		}
	}
	return combined
}

// Signals converts an impact map into graph-sourced signals for fusion,
// clamping each impact into signal range and tagging the propagation origin.
func Signals(impacts map[string]float64, origin string, confidence float64) map[string]signal.Signal {
	out := make(map[string]signal.Signal, len(impacts))
	for sym, impact := range impacts {
		s := signal.New(signal.SourceGraph, impact, confidence, signal.Meta{Ticker: sym, Origin: origin})
		metrics.SignalsTotal.WithLabelValues(string(signal.SourceGraph)).Inc()
		out[sym] = s
	}
	return out
}
