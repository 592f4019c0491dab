package transit

import "fmt"

// Snapshot is a point-in-time copy of a network's stops and edges.
type Snapshot struct {
	names []string
	edges []Edge
}

// Stats reports the stop and edge counts of the snapshot.
func (s Snapshot) Stats() Stats {
	return Stats{Stops: len(s.names), Edges: len(s.edges)}
}

// NamedEdges returns the snapshot's edges keyed by stop name.
func (s Snapshot) NamedEdges() []NamedEdge {
	out := make([]NamedEdge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, NamedEdge{From: s.names[e.From], To: s.names[e.To], Distance: e.Weight})
	}
	return out
}

// Solve computes all-pairs shortest paths for the snapshot.
func (s Snapshot) Solve() *Solution {
	index := make(map[string]int, len(s.names))
	for i, name := range s.names {
		index[name] = i
	}
	return &Solution{
		names:    s.names,
		index:    index,
		matrices: ComputeAllPairs(len(s.names), s.edges),
	}
}

// Solution answers route queries from one all-pairs computation. It is
// read-only and safe for concurrent use.
type Solution struct {
	names    []string
	index    map[string]int
	matrices Matrices
}

// Matrices exposes the underlying distance and successor tables.
func (s *Solution) Matrices() Matrices {
	return s.matrices
}

// Route resolves the shortest route between two stop names.
func (s *Solution) Route(start, end string) (Route, error) {
	from, ok := s.index[start]
	if !ok {
		return Route{}, fmt.Errorf("%w: %q", ErrUnknownStop, start)
	}
	to, ok := s.index[end]
	if !ok {
		return Route{}, fmt.Errorf("%w: %q", ErrUnknownStop, end)
	}

	path, err := Reconstruct(from, to, s.matrices.Next)
	if err != nil {
		return Route{}, err
	}

	stops := make([]string, len(path))
	legs := make([]NamedEdge, 0, len(path)-1)
	for i, idx := range path {
		stops[i] = s.names[idx]
		if i > 0 {
			prev := path[i-1]
			legs = append(legs, NamedEdge{From: s.names[prev], To: s.names[idx], Distance: s.matrices.Dist[prev][idx]})
		}
	}
	return Route{Stops: stops, Legs: legs, Distance: s.matrices.Dist[from][to]}, nil
}
