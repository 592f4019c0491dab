package service

import (
	"context"
	"errors"

	"github.com/vanshika/transitroute/backend/internal/domain"
	"github.com/vanshika/transitroute/backend/internal/metrics"
	"github.com/vanshika/transitroute/backend/internal/transit"
)

// EdgeInput is an inbound edge submission. A nil Distance means the caller
// did not supply one.
type EdgeInput struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Distance *float64 `json:"distance"`
}

func (in EdgeInput) toTransit() transit.EdgeInput {
	return transit.EdgeInput{From: in.From, To: in.To, Distance: in.Distance}
}

// PairQuery asks for the route between two stops.
type PairQuery struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PairResult answers one PairQuery. Exactly one of Route and Err is set.
type PairResult struct {
	Query PairQuery
	Route *domain.Route
	Err   error
}

// Outcome maps an operation error to its metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, transit.ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, transit.ErrUnknownStop):
		return metrics.OutcomeUnknownStop
	case errors.Is(err, transit.ErrNoPath):
		return metrics.OutcomeNoPath
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeInconsistent
	}
}

func toDomainRoute(start, end string, r transit.Route) domain.Route {
	legs := make([]domain.Leg, len(r.Legs))
	for i, leg := range r.Legs {
		legs[i] = domain.Leg{From: leg.From, To: leg.To, Distance: leg.Distance}
	}
	return domain.Route{
		Start:    start,
		End:      end,
		Stops:    r.Stops,
		Legs:     legs,
		Distance: r.Distance,
	}
}

func toDomainLinks(edges []transit.NamedEdge) []domain.Link {
	links := make([]domain.Link, len(edges))
	for i, e := range edges {
		links[i] = domain.Link{From: e.From, To: e.To, Distance: e.Distance}
	}
	return links
}
