package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/vanshika/transitroute/backend/internal/service"
)

// Dataset contains the generated edges and route queries.
type Dataset struct {
	Edges   []service.EdgeInput `json:"edges"`
	Queries []service.PairQuery `json:"queries"`
}

// Generator produces synthetic bus networks: each line is a chain of stops
// served in both directions, and random transfers join stops across lines.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumLines <= 0 {
		cfg.NumLines = def.NumLines
	}
	if cfg.StopsPerLine < 2 {
		cfg.StopsPerLine = def.StopsPerLine
	}
	if cfg.TransferChance < 0 {
		cfg.TransferChance = 0
	}
	if cfg.MinDistance <= 0 {
		cfg.MinDistance = def.MinDistance
	}
	if cfg.MaxDistance < cfg.MinDistance {
		cfg.MaxDistance = cfg.MinDistance
	}
	if cfg.NumQueries < 0 {
		cfg.NumQueries = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate builds the network and a set of queries over its stops. It
// respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	lines := make([][]string, g.cfg.NumLines)
	var edges []service.EdgeInput

	for l := range lines {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		lines[l] = make([]string, g.cfg.StopsPerLine)
		for s := range lines[l] {
			lines[l][s] = stopName(l, s)
		}
		for s := 1; s < len(lines[l]); s++ {
			d := g.randomDistance()
			// Return trips take a slightly different road.
			back := roundDistance(d * (0.9 + 0.2*g.rand.Float64()))
			edges = append(edges,
				edge(lines[l][s-1], lines[l][s], d),
				edge(lines[l][s], lines[l][s-1], back),
			)
		}
	}

	if g.cfg.NumLines > 1 {
		for l, line := range lines {
			if err := ctx.Err(); err != nil {
				return Dataset{}, err
			}
			for _, from := range line {
				if g.rand.Float64() >= g.cfg.TransferChance {
					continue
				}
				other := g.rand.Intn(g.cfg.NumLines - 1)
				if other >= l {
					other++
				}
				to := lines[other][g.rand.Intn(len(lines[other]))]
				walk := roundDistance(g.cfg.MinDistance * (0.5 + g.rand.Float64()))
				edges = append(edges, edge(from, to, walk), edge(to, from, walk))
			}
		}
	}

	queries := make([]service.PairQuery, g.cfg.NumQueries)
	for i := range queries {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		queries[i] = service.PairQuery{Start: g.randomStop(lines), End: g.randomStop(lines)}
	}

	return Dataset{Edges: edges, Queries: queries}, nil
}

func (g *Generator) randomDistance() float64 {
	span := g.cfg.MaxDistance - g.cfg.MinDistance
	return roundDistance(g.cfg.MinDistance + g.rand.Float64()*span)
}

func (g *Generator) randomStop(lines [][]string) string {
	line := lines[g.rand.Intn(len(lines))]
	return line[g.rand.Intn(len(line))]
}

func stopName(line, stop int) string {
	return fmt.Sprintf("L%02d-S%03d", line+1, stop+1)
}

func edge(from, to string, d float64) service.EdgeInput {
	return service.EdgeInput{From: from, To: to, Distance: &d}
}

// roundDistance keeps generated distances to two decimals so datasets diff cleanly.
func roundDistance(d float64) float64 {
	return math.Round(d*100) / 100
}
