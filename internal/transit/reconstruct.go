package transit

import (
	"fmt"

	"github.com/rhartert/sparsesets"
)

// Reconstruct walks the successor matrix from start to end and returns the
// visited indices, endpoints included.
//
// A start equal to end always yields [start]. ErrNoPath is returned when the
// matrix has no first hop for the pair. The walk visits each index at most
// once; a repeated index, a missing hop or an out-of-range hop mid-walk
// yields ErrInconsistentSuccessors.
func Reconstruct(start, end int, next [][]int) ([]int, error) {
	if start == end {
		return []int{start}, nil
	}
	n := len(next)
	if start < 0 || start >= n || end < 0 || end >= n {
		return nil, fmt.Errorf("%w: pair (%d, %d) outside %d stops", ErrInconsistentSuccessors, start, end, n)
	}
	if next[start][end] == NoHop {
		return nil, ErrNoPath
	}

	seen := sparsesets.New(n)
	seen.Insert(start)
	path := []int{start}
	current := start
	for steps := 0; current != end; steps++ {
		if steps > n {
			return nil, fmt.Errorf("%w: walk from %d to %d exceeded %d steps", ErrInconsistentSuccessors, start, end, n+1)
		}
		hop := next[current][end]
		if hop < 0 || hop >= n {
			return nil, fmt.Errorf("%w: no hop from %d toward %d", ErrInconsistentSuccessors, current, end)
		}
		if seen.Contains(hop) {
			return nil, fmt.Errorf("%w: stop %d revisited on the way to %d", ErrInconsistentSuccessors, hop, end)
		}
		seen.Insert(hop)
		path = append(path, hop)
		current = hop
	}
	return path, nil
}
