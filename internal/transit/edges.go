package transit

// Edge is a directed, weighted connection between two registry indices.
type Edge struct {
	From   int
	To     int
	Weight float64
}

// EdgeStore keeps edges in insertion order. Duplicates are retained.
type EdgeStore struct {
	edges []Edge
}

// NewEdgeStore returns an empty store.
func NewEdgeStore() *EdgeStore {
	return &EdgeStore{}
}

// Append stores an edge. Indices and weight are not validated here.
func (s *EdgeStore) Append(from, to int, weight float64) {
	s.edges = append(s.edges, Edge{From: from, To: to, Weight: weight})
}

// All returns a snapshot of the stored edges in insertion order.
func (s *EdgeStore) All() []Edge {
	return append([]Edge(nil), s.edges...)
}

// Len reports the number of stored edges.
func (s *EdgeStore) Len() int {
	return len(s.edges)
}

// Clear drops every stored edge.
func (s *EdgeStore) Clear() {
	s.edges = nil
}
