package transit

import (
	"fmt"
	"math"
	"sync"
)

// EdgeInput is an edge submission expressed with stop names.
// A nil Distance means the distance was not supplied.
type EdgeInput struct {
	From     string
	To       string
	Distance *float64
}

// NamedEdge is a stored edge expressed with stop names.
type NamedEdge struct {
	From     string
	To       string
	Distance float64
}

// Route is the answer to a shortest-path query. Legs holds one entry per hop
// with the distance of that hop.
type Route struct {
	Stops    []string
	Legs     []NamedEdge
	Distance float64
}

// Stats summarises the size of a network.
type Stats struct {
	Stops int
	Edges int
}

// Option customises a Network.
type Option func(*Network)

// WithMaxStops caps the number of distinct stops. Zero or less means no cap.
func WithMaxStops(max int) Option {
	return func(n *Network) {
		if max > 0 {
			n.maxStops = max
		}
	}
}

// Network owns the stop registry and edge store and answers route queries.
// All methods are safe for concurrent use.
type Network struct {
	mu       sync.Mutex
	stops    *Registry
	edges    *EdgeStore
	maxStops int
}

// NewNetwork returns an empty network.
func NewNetwork(opts ...Option) *Network {
	n := &Network{
		stops: NewRegistry(),
		edges: NewEdgeStore(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ValidateEdge checks that an edge submission carries both stop names and a
// finite distance.
func ValidateEdge(in EdgeInput) error {
	switch {
	case in.From == "":
		return fmt.Errorf("%w: from is required", ErrInvalidInput)
	case in.To == "":
		return fmt.Errorf("%w: to is required", ErrInvalidInput)
	case in.Distance == nil:
		return fmt.Errorf("%w: distance is required", ErrInvalidInput)
	case math.IsNaN(*in.Distance) || math.IsInf(*in.Distance, 0):
		return fmt.Errorf("%w: distance must be finite", ErrInvalidInput)
	}
	return nil
}

// Added describes edges accepted by AddEdge or AddEdges. Position is the
// insertion index of the first accepted edge; Stats is the network size
// right after the insertion.
type Added struct {
	Edges    []NamedEdge
	Position int
	Stats    Stats
}

// AddEdge registers both stops if needed and appends the edge.
// Nothing is mutated when the input is rejected.
func (n *Network) AddEdge(in EdgeInput) (Added, error) {
	return n.AddEdges([]EdgeInput{in})
}

// AddEdges appends a batch of edges in order. The batch is all-or-nothing:
// one invalid entry, or a batch that would exceed the stop limit, leaves the
// network untouched.
func (n *Network) AddEdges(ins []EdgeInput) (Added, error) {
	for i, in := range ins {
		if err := ValidateEdge(in); err != nil {
			if len(ins) == 1 {
				return Added{}, err
			}
			return Added{}, fmt.Errorf("edge %d: %w", i, err)
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.maxStops > 0 {
		fresh := make(map[string]struct{})
		for _, in := range ins {
			for _, name := range [2]string{in.From, in.To} {
				if _, err := n.stops.Lookup(name); err != nil {
					fresh[name] = struct{}{}
				}
			}
		}
		if n.stops.Len()+len(fresh) > n.maxStops {
			return Added{}, fmt.Errorf("%w: network is limited to %d stops", ErrInvalidInput, n.maxStops)
		}
	}

	added := Added{Edges: make([]NamedEdge, 0, len(ins)), Position: n.edges.Len()}
	for _, in := range ins {
		from := n.stops.Register(in.From)
		to := n.stops.Register(in.To)
		n.edges.Append(from, to, *in.Distance)
		added.Edges = append(added.Edges, NamedEdge{From: in.From, To: in.To, Distance: *in.Distance})
	}
	added.Stats = Stats{Stops: n.stops.Len(), Edges: n.edges.Len()}
	return added, nil
}

// ShortestPath recomputes all pairs on a snapshot of the network and returns
// the route from start to end.
func (n *Network) ShortestPath(start, end string) (Route, error) {
	n.mu.Lock()
	if _, err := n.stops.Lookup(start); err != nil {
		n.mu.Unlock()
		return Route{}, err
	}
	if _, err := n.stops.Lookup(end); err != nil {
		n.mu.Unlock()
		return Route{}, err
	}
	snap := n.snapshotLocked()
	n.mu.Unlock()

	return snap.Solve().Route(start, end)
}

// Reset removes every stop and edge.
func (n *Network) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stops.Clear()
	n.edges.Clear()
}

// Stops lists stop names in registration order.
func (n *Network) Stops() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stops.Names()
}

// Edges lists stored edges by stop name in insertion order.
func (n *Network) Edges() []NamedEdge {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked().NamedEdges()
}

// Stats reports stop and edge counts.
func (n *Network) Stats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return Stats{Stops: n.stops.Len(), Edges: n.edges.Len()}
}

// Snapshot captures an immutable copy of the current network.
func (n *Network) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

func (n *Network) snapshotLocked() Snapshot {
	return Snapshot{names: n.stops.Names(), edges: n.edges.All()}
}
