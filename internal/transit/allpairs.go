package transit

import "math"

// NoHop marks a successor matrix entry with no known route.
const NoHop = -1

// Matrices holds the all-pairs distance and successor tables for one computation.
// Dist[i][j] is +Inf when j is unreachable from i; Next[i][j] is the first hop
// from i toward j, or NoHop.
type Matrices struct {
	Dist [][]float64
	Next [][]int
}

// Size returns the number of stops covered by the matrices.
func (m Matrices) Size() int {
	return len(m.Dist)
}

// Reachable reports whether Dist[i][j] is finite.
func (m Matrices) Reachable(i, j int) bool {
	return !math.IsInf(m.Dist[i][j], 1)
}

// ComputeAllPairs runs Floyd–Warshall over n stops and the given edges.
//
// Edges are applied in order, so the last edge between a pair sets that pair's
// direct distance. Self-loops never change the zero diagonal. Relaxation only
// replaces a distance on strict improvement, which keeps the first minimal
// route found. Edges referencing indices outside [0, n) are ignored. Negative
// cycles are not detected.
func ComputeAllPairs(n int, edges []Edge) Matrices {
	dist := make([][]float64, n)
	next := make([][]int, n)
	inf := math.Inf(1)
	for i := 0; i < n; i++ {
		dist[i] = make([]float64, n)
		next[i] = make([]int, n)
		for j := 0; j < n; j++ {
			dist[i][j] = inf
			next[i][j] = NoHop
		}
		dist[i][i] = 0
	}

	for _, e := range edges {
		if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
			continue
		}
		if e.From == e.To {
			continue
		}
		dist[e.From][e.To] = e.Weight
		next[e.From][e.To] = e.To
	}

	for k := 0; k < n; k++ {
		distK := dist[k]
		for i := 0; i < n; i++ {
			ik := dist[i][k]
			if math.IsInf(ik, 1) {
				continue
			}
			distI, nextI := dist[i], next[i]
			for j := 0; j < n; j++ {
				kj := distK[j]
				if math.IsInf(kj, 1) {
					continue
				}
				if through := ik + kj; through < distI[j] {
					distI[j] = through
					nextI[j] = nextI[k]
				}
			}
		}
	}

	return Matrices{Dist: dist, Next: next}
}
