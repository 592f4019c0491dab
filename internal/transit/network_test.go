package transit

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func dist(v float64) *float64 { return &v }

func mustAdd(t *testing.T, n *Network, from, to string, d float64) {
	t.Helper()
	if _, err := n.AddEdge(EdgeInput{From: from, To: to, Distance: dist(d)}); err != nil {
		t.Fatalf("add edge %s->%s: %v", from, to, err)
	}
}

func TestNetwork_ShortestPathUsesRelay(t *testing.T) {
	n := NewNetwork()
	mustAdd(t, n, "A", "B", 3)
	mustAdd(t, n, "B", "C", 4)
	mustAdd(t, n, "A", "C", 10)

	route, err := n.ShortestPath("A", "C")
	if err != nil {
		t.Fatalf("expected route, got %v", err)
	}
	want := Route{
		Stops: []string{"A", "B", "C"},
		Legs: []NamedEdge{
			{From: "A", To: "B", Distance: 3},
			{From: "B", To: "C", Distance: 4},
		},
		Distance: 7,
	}
	if diff := cmp.Diff(want, route); diff != "" {
		t.Fatalf("route mismatch (-want +got):\n%s", diff)
	}
}

func TestNetwork_IdentityRoute(t *testing.T) {
	n := NewNetwork()
	mustAdd(t, n, "A", "B", 5)

	for _, stop := range []string{"A", "B"} {
		route, err := n.ShortestPath(stop, stop)
		if err != nil {
			t.Fatalf("expected identity route for %s, got %v", stop, err)
		}
		want := Route{Stops: []string{stop}, Legs: []NamedEdge{}, Distance: 0}
		if diff := cmp.Diff(want, route); diff != "" {
			t.Errorf("identity mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestNetwork_UnknownStop(t *testing.T) {
	n := NewNetwork()
	mustAdd(t, n, "A", "B", 5)

	if _, err := n.ShortestPath("Z", "A"); !errors.Is(err, ErrUnknownStop) {
		t.Fatalf("expected ErrUnknownStop for start, got %v", err)
	}
	if _, err := n.ShortestPath("A", "Z"); !errors.Is(err, ErrUnknownStop) {
		t.Fatalf("expected ErrUnknownStop for end, got %v", err)
	}
}

func TestNetwork_NoPath(t *testing.T) {
	n := NewNetwork()
	mustAdd(t, n, "A", "B", 5)

	if _, err := n.ShortestPath("B", "A"); !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath, got %v", err)
	}
}

func TestNetwork_ResetForgetsStops(t *testing.T) {
	n := NewNetwork()
	mustAdd(t, n, "A", "B", 5)
	n.Reset()

	if _, err := n.ShortestPath("A", "B"); !errors.Is(err, ErrUnknownStop) {
		t.Fatalf("expected ErrUnknownStop after reset, got %v", err)
	}
	if stats := n.Stats(); stats != (Stats{}) {
		t.Fatalf("expected empty stats after reset, got %+v", stats)
	}
}

func TestNetwork_RepeatedNamesDoNotGrowRegistry(t *testing.T) {
	n := NewNetwork()
	mustAdd(t, n, "A", "B", 1)
	mustAdd(t, n, "A", "B", 2)
	mustAdd(t, n, "B", "A", 3)
	mustAdd(t, n, "A", "C", 4)

	if diff := cmp.Diff([]string{"A", "B", "C"}, n.Stops()); diff != "" {
		t.Fatalf("stops mismatch (-want +got):\n%s", diff)
	}
	if stats := n.Stats(); stats.Edges != 4 {
		t.Fatalf("expected 4 stored edges, got %d", stats.Edges)
	}
}

func TestNetwork_AddEdgeRejectsMissingFields(t *testing.T) {
	testCases := []struct {
		desc string
		in   EdgeInput
	}{
		{desc: "missing from", in: EdgeInput{To: "B", Distance: dist(1)}},
		{desc: "missing to", in: EdgeInput{From: "A", Distance: dist(1)}},
		{desc: "missing distance", in: EdgeInput{From: "A", To: "B"}},
		{desc: "nan distance", in: EdgeInput{From: "A", To: "B", Distance: dist(math.NaN())}},
		{desc: "infinite distance", in: EdgeInput{From: "A", To: "B", Distance: dist(math.Inf(1))}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			n := NewNetwork()
			if _, err := n.AddEdge(tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if stats := n.Stats(); stats != (Stats{}) {
				t.Fatalf("expected no mutation, got %+v", stats)
			}
		})
	}
}

func TestNetwork_MaxStops(t *testing.T) {
	n := NewNetwork(WithMaxStops(2))
	mustAdd(t, n, "A", "B", 1)
	mustAdd(t, n, "B", "A", 1)

	if _, err := n.AddEdge(EdgeInput{From: "A", To: "C", Distance: dist(1)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput when exceeding stop limit, got %v", err)
	}
	if stats := n.Stats(); stats != (Stats{Stops: 2, Edges: 2}) {
		t.Fatalf("expected rejected edge to leave network untouched, got %+v", stats)
	}
}

func TestNetwork_NegativeWeightsAreAccepted(t *testing.T) {
	n := NewNetwork()
	mustAdd(t, n, "A", "B", 4)
	mustAdd(t, n, "B", "C", -2)
	mustAdd(t, n, "A", "C", 3)

	route, err := n.ShortestPath("A", "C")
	if err != nil {
		t.Fatalf("expected route, got %v", err)
	}
	if route.Distance != 2 {
		t.Fatalf("expected distance 2, got %v", route.Distance)
	}
}

func TestNetwork_AddEdgeReportsPosition(t *testing.T) {
	n := NewNetwork()
	mustAdd(t, n, "A", "B", 1)

	added, err := n.AddEdge(EdgeInput{From: "B", To: "C", Distance: dist(2)})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := Added{
		Edges:    []NamedEdge{{From: "B", To: "C", Distance: 2}},
		Position: 1,
		Stats:    Stats{Stops: 3, Edges: 2},
	}
	if diff := cmp.Diff(want, added); diff != "" {
		t.Fatalf("added mismatch (-want +got):\n%s", diff)
	}
}

func TestNetwork_AddEdgesIsAllOrNothing(t *testing.T) {
	n := NewNetwork()
	_, err := n.AddEdges([]EdgeInput{
		{From: "A", To: "B", Distance: dist(1)},
		{From: "B", To: "", Distance: dist(1)},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if stats := n.Stats(); stats != (Stats{}) {
		t.Fatalf("expected no mutation, got %+v", stats)
	}

	added, err := n.AddEdges([]EdgeInput{
		{From: "A", To: "B", Distance: dist(1)},
		{From: "B", To: "C", Distance: dist(2)},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if added.Position != 0 || len(added.Edges) != 2 || added.Stats != (Stats{Stops: 3, Edges: 2}) {
		t.Fatalf("unexpected batch result %+v", added)
	}
}

func TestNetwork_EdgesByName(t *testing.T) {
	n := NewNetwork()
	mustAdd(t, n, "A", "B", 1)
	mustAdd(t, n, "B", "C", 2)

	want := []NamedEdge{{From: "A", To: "B", Distance: 1}, {From: "B", To: "C", Distance: 2}}
	if diff := cmp.Diff(want, n.Edges()); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshot_IsolatedFromLaterEdges(t *testing.T) {
	n := NewNetwork()
	mustAdd(t, n, "A", "B", 1)
	snap := n.Snapshot()
	mustAdd(t, n, "B", "C", 1)

	sol := snap.Solve()
	if _, err := sol.Route("A", "C"); !errors.Is(err, ErrUnknownStop) {
		t.Fatalf("expected snapshot to predate C, got %v", err)
	}
	if _, err := n.ShortestPath("A", "C"); err != nil {
		t.Fatalf("expected live network to route A->C, got %v", err)
	}
}

func TestNetwork_ConcurrentAccess(t *testing.T) {
	n := NewNetwork()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				from := fmt.Sprintf("S%d", i)
				to := fmt.Sprintf("S%d", i+1)
				_, _ = n.AddEdge(EdgeInput{From: from, To: to, Distance: dist(1)})
				_, _ = n.ShortestPath("S0", to)
			}
		}(w)
	}
	wg.Wait()

	if got := len(n.Stops()); got != 21 {
		t.Fatalf("expected 21 distinct stops, got %d", got)
	}
	route, err := n.ShortestPath("S0", "S20")
	if err != nil {
		t.Fatalf("expected route S0->S20, got %v", err)
	}
	if route.Distance != 20 {
		t.Fatalf("expected distance 20, got %v", route.Distance)
	}
}
