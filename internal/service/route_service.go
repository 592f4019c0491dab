package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vanshika/transitroute/backend/internal/domain"
	"github.com/vanshika/transitroute/backend/internal/metrics"
	"github.com/vanshika/transitroute/backend/internal/transit"
)

// ErrBatchTooLarge is returned when a batch exceeds the configured limit.
var ErrBatchTooLarge = errors.New("batch exceeds limit")

const tracerName = "github.com/vanshika/transitroute/backend/internal/service"

// NetworkMirror receives a copy of every network mutation.
type NetworkMirror interface {
	MirrorLink(ctx context.Context, seq int, link domain.Link) error
	MirrorLinks(ctx context.Context, firstSeq int, links []domain.Link) error
	ClearNetwork(ctx context.Context) error
}

// Options tunes a RouteService. Zero values fall back to defaults.
type Options struct {
	Mirror        NetworkMirror
	MirrorTimeout time.Duration
	Metrics       *metrics.Recorder
	Logger        *slog.Logger
	BatchWorkers  int
	BatchLimit    int
}

// RouteService exposes the stop network to transports. The in-memory network
// is authoritative; mirror failures are logged and counted but never fail an
// operation.
type RouteService struct {
	network       *transit.Network
	mirror        NetworkMirror
	mirrorTimeout time.Duration
	metrics       *metrics.Recorder
	logger        *slog.Logger
	tracer        trace.Tracer
	batchWorkers  int
	batchLimit    int
}

// NewRouteService wraps network with the supplied options.
func NewRouteService(network *transit.Network, opts Options) *RouteService {
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MirrorTimeout <= 0 {
		opts.MirrorTimeout = 5 * time.Second
	}
	if opts.BatchWorkers <= 0 {
		opts.BatchWorkers = 4
	}
	return &RouteService{
		network:       network,
		mirror:        opts.Mirror,
		mirrorTimeout: opts.MirrorTimeout,
		metrics:       opts.Metrics,
		logger:        opts.Logger.With("component", "route_service"),
		tracer:        otel.Tracer(tracerName),
		batchWorkers:  opts.BatchWorkers,
		batchLimit:    opts.BatchLimit,
	}
}

// AddEdge stores one edge and mirrors it.
func (s *RouteService) AddEdge(ctx context.Context, in EdgeInput) (domain.Link, error) {
	added, err := s.network.AddEdge(in.toTransit())
	s.metrics.Operation("add_edge", Outcome(err))
	if err != nil {
		return domain.Link{}, err
	}
	s.metrics.NetworkSize(added.Stats.Stops, added.Stats.Edges)

	link := toDomainLinks(added.Edges)[0]
	s.mirrorWrite(ctx, "add_edge", func(ctx context.Context) error {
		return s.mirror.MirrorLink(ctx, added.Position, link)
	})
	return link, nil
}

// LoadEdges stores a batch of edges in order. Every invalid entry is reported
// in a TaskError and nothing is stored unless all entries are valid.
func (s *RouteService) LoadEdges(ctx context.Context, inputs []EdgeInput) (domain.NetworkStats, error) {
	var taskErr TaskError
	edges := make([]transit.EdgeInput, len(inputs))
	for i, in := range inputs {
		edges[i] = in.toTransit()
		if err := transit.ValidateEdge(edges[i]); err != nil {
			taskErr.append(fmt.Errorf("edge %d: %w", i, err))
		}
	}
	if err := taskErr.asError(); err != nil {
		s.metrics.Operation("load_edges", metrics.OutcomeInvalid)
		return domain.NetworkStats{}, err
	}

	added, err := s.network.AddEdges(edges)
	s.metrics.Operation("load_edges", Outcome(err))
	if err != nil {
		return domain.NetworkStats{}, err
	}
	s.metrics.NetworkSize(added.Stats.Stops, added.Stats.Edges)
	s.logger.Info("edges loaded", "count", len(added.Edges), "stops", added.Stats.Stops)

	links := toDomainLinks(added.Edges)
	s.mirrorWrite(ctx, "load_edges", func(ctx context.Context) error {
		return s.mirror.MirrorLinks(ctx, added.Position, links)
	})
	return domain.NetworkStats{Stops: added.Stats.Stops, Links: added.Stats.Edges}, nil
}

// ShortestPath recomputes all pairs and returns the route from start to end.
func (s *RouteService) ShortestPath(ctx context.Context, start, end string) (domain.Route, error) {
	_, span := s.tracer.Start(ctx, "transit.RouteService.ShortestPath",
		trace.WithAttributes(
			attribute.String("transit.start", start),
			attribute.String("transit.end", end),
		),
	)
	defer span.End()

	began := time.Now()
	route, err := s.network.ShortestPath(start, end)
	elapsed := time.Since(began)
	s.metrics.Operation("shortest_path", Outcome(err))
	if !errors.Is(err, transit.ErrUnknownStop) {
		s.metrics.AllPairs(elapsed)
	}

	if err != nil {
		span.SetAttributes(attribute.String("transit.outcome", Outcome(err)))
		if errors.Is(err, transit.ErrInconsistentSuccessors) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "successor walk failed")
			s.logger.Error("route reconstruction failed", "error", err, "start", start, "end", end)
		}
		return domain.Route{}, err
	}

	span.SetAttributes(
		attribute.Int("transit.hops", len(route.Legs)),
		attribute.Float64("transit.distance", route.Distance),
	)
	span.SetStatus(codes.Ok, "")
	return toDomainRoute(start, end, route), nil
}

// BatchShortestPaths answers many pairs from one all-pairs computation.
// Results follow the order of queries; per-pair failures are reported in
// PairResult.Err rather than failing the batch.
func (s *RouteService) BatchShortestPaths(ctx context.Context, queries []PairQuery) ([]PairResult, error) {
	if s.batchLimit > 0 && len(queries) > s.batchLimit {
		s.metrics.Operation("batch_shortest_paths", metrics.OutcomeInvalid)
		return nil, fmt.Errorf("%w: %d pairs, limit %d", ErrBatchTooLarge, len(queries), s.batchLimit)
	}

	ctx, span := s.tracer.Start(ctx, "transit.RouteService.BatchShortestPaths",
		trace.WithAttributes(attribute.Int("transit.pairs", len(queries))),
	)
	defer span.End()
	s.metrics.BatchSize(len(queries))

	snap := s.network.Snapshot()
	began := time.Now()
	solution := snap.Solve()
	s.metrics.AllPairs(time.Since(began))

	results := make([]PairResult, len(queries))
	err := runPool(ctx, s.batchWorkers, len(queries), func(idx int) error {
		q := queries[idx]
		results[idx].Query = q
		route, err := solution.Route(q.Start, q.End)
		if err != nil {
			results[idx].Err = err
			return nil
		}
		r := toDomainRoute(q.Start, q.End, route)
		results[idx].Route = &r
		return nil
	})
	s.metrics.Operation("batch_shortest_paths", Outcome(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch interrupted")
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return results, nil
}

// Reset forgets every stop and edge, in memory and in the mirror.
func (s *RouteService) Reset(ctx context.Context) {
	s.network.Reset()
	s.metrics.Operation("reset", metrics.OutcomeOK)
	s.metrics.NetworkSize(0, 0)
	s.mirrorWrite(ctx, "reset", s.clearMirror)
}

// Stops lists stop names in registration order.
func (s *RouteService) Stops(context.Context) []string {
	return s.network.Stops()
}

// Links lists stored edges in insertion order.
func (s *RouteService) Links(context.Context) []domain.Link {
	return toDomainLinks(s.network.Edges())
}

// Stats reports the current network size.
func (s *RouteService) Stats(context.Context) domain.NetworkStats {
	st := s.network.Stats()
	return domain.NetworkStats{Stops: st.Stops, Links: st.Edges}
}

func (s *RouteService) clearMirror(ctx context.Context) error {
	return s.mirror.ClearNetwork(ctx)
}

func (s *RouteService) mirrorWrite(ctx context.Context, op string, write func(context.Context) error) {
	if s.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.mirrorTimeout)
	defer cancel()
	if err := write(ctx); err != nil {
		s.metrics.MirrorFailure(op)
		s.logger.Warn("graph mirror write failed", "operation", op, "error", err)
	}
}
