package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanshika/transitroute/backend/internal/domain"
	"github.com/vanshika/transitroute/backend/internal/graph"
)

// Repository mirrors the in-memory stop network into a graph database so it
// can be browsed with graph tooling. It is write-mostly: the service never
// reads the network back from it.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// MirrorLink records one link. seq is the link's position in insertion order.
func (r *Repository) MirrorLink(ctx context.Context, seq int, link domain.Link) error {
	if link.From == "" || link.To == "" {
		return errors.New("link endpoints are required")
	}
	if _, err := r.client.ExecuteWrite(ctx, mirrorLinkCypher, linkParams(seq, link)); err != nil {
		return fmt.Errorf("mirror link %s->%s: %w", link.From, link.To, err)
	}
	return nil
}

// MirrorLinks records links in one transaction, numbering them from firstSeq.
func (r *Repository) MirrorLinks(ctx context.Context, firstSeq int, links []domain.Link) error {
	if len(links) == 0 {
		return nil
	}
	statements := make([]graph.Statement, 0, len(links))
	for i, link := range links {
		if link.From == "" || link.To == "" {
			return fmt.Errorf("link %d: endpoints are required", firstSeq+i)
		}
		statements = append(statements, graph.Statement{
			Query:  mirrorLinkCypher,
			Params: linkParams(firstSeq+i, link),
		})
	}
	if err := r.client.ExecuteWriteBatch(ctx, statements); err != nil {
		return fmt.Errorf("mirror %d links: %w", len(links), err)
	}
	return nil
}

// ClearNetwork removes every mirrored stop and its links.
func (r *Repository) ClearNetwork(ctx context.Context) error {
	if _, err := r.client.ExecuteWrite(ctx, clearNetworkCypher, nil); err != nil {
		return fmt.Errorf("clear network: %w", err)
	}
	return nil
}

// CountStops returns the number of mirrored stops.
func (r *Repository) CountStops(ctx context.Context) (int, error) {
	res, err := r.client.ExecuteRead(ctx, countStopsCypher, nil)
	if err != nil {
		return 0, fmt.Errorf("count stops: %w", err)
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	return toInt(res.Records[0]["stops"]), nil
}

func linkParams(seq int, link domain.Link) map[string]any {
	return map[string]any{
		"from":     link.From,
		"to":       link.To,
		"distance": link.Distance,
		"seq":      seq,
	}
}

func toInt(val any) int {
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

const mirrorLinkCypher = `
MERGE (from:Stop {name: $from})
MERGE (to:Stop {name: $to})
CREATE (from)-[r:ROUTE {seq: $seq}]->(to)
SET r.distance = $distance
`

const clearNetworkCypher = `
MATCH (s:Stop)
DETACH DELETE s
`

const countStopsCypher = `
MATCH (s:Stop)
RETURN count(s) AS stops
`
