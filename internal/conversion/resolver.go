// Package conversion resolves affine transforms between units over a
// snapshot of the conversion graph.
package conversion

import (
	"fmt"
	"sort"

	"github.com/ANIKETSHETTY47/meter-compare/internal/domain"
)

// Transform maps a source value to dest = Slope*source + Intercept.
type Transform struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Identity is the transform of a unit onto itself.
func Identity() Transform { return Transform{Slope: 1} }

func (t Transform) Apply(v float64) float64 { return t.Slope*v + t.Intercept }

// Then returns the transform equivalent to applying t and then next.
func (t Transform) Then(next Transform) Transform {
	return Transform{
		Slope:     next.Slope * t.Slope,
		Intercept: next.Slope*t.Intercept + next.Intercept,
	}
}

// Inverse undoes t. The slope must be non-zero.
func (t Transform) Inverse() Transform {
	return Transform{Slope: 1 / t.Slope, Intercept: -t.Intercept / t.Slope}
}

type edge struct {
	to int64
	t  Transform
}

// Graph is an immutable view of the conversions table. It is safe for
// concurrent use once built.
type Graph struct {
	adj map[int64][]edge
}

// NewGraph builds a graph from conversion rows. Bidirectional rows are
// traversable in reverse with the inverted transform.
func NewGraph(conversions []domain.Conversion) *Graph {
	g := &Graph{adj: make(map[int64][]edge)}
	for _, c := range conversions {
		fwd := Transform{Slope: c.Slope, Intercept: c.Intercept}
		g.adj[c.SourceID] = append(g.adj[c.SourceID], edge{to: c.DestinationID, t: fwd})
		if c.Bidirectional && c.Slope != 0 {
			g.adj[c.DestinationID] = append(g.adj[c.DestinationID], edge{to: c.SourceID, t: fwd.Inverse()})
		}
	}
	for id := range g.adj {
		edges := g.adj[id]
		sort.SliceStable(edges, func(i, j int) bool { return edges[i].to < edges[j].to })
	}
	return g
}

// Resolve finds the composed transform from src to dst using a breadth-first
// search with neighbours visited in ascending unit id order, so the same
// graph always yields the same path.
func (g *Graph) Resolve(src, dst int64) (Transform, error) {
	if src == dst {
		return Identity(), nil
	}
	found := map[int64]Transform{src: Identity()}
	queue := []int64{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		acc := found[cur]
		for _, e := range g.adj[cur] {
			if _, seen := found[e.to]; seen {
				continue
			}
			next := acc.Then(e.t)
			if e.to == dst {
				return next, nil
			}
			found[e.to] = next
			queue = append(queue, e.to)
		}
	}
	return Transform{}, fmt.Errorf("%w: unit %d to unit %d", domain.ErrNoConversionPath, src, dst)
}

// Len reports the number of directed edges, including reversed bidirectional ones.
func (g *Graph) Len() int {
	n := 0
	for _, edges := range g.adj {
		n += len(edges)
	}
	return n
}
