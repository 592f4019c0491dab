package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vanshika/transitroute/backend/internal/config"
	"github.com/vanshika/transitroute/backend/internal/generator"
	"github.com/vanshika/transitroute/backend/internal/graph"
	"github.com/vanshika/transitroute/backend/internal/logging"
	"github.com/vanshika/transitroute/backend/internal/repository"
	"github.com/vanshika/transitroute/backend/internal/service"
	"github.com/vanshika/transitroute/backend/internal/transit"
)

type answer struct {
	Start         string   `json:"start"`
	End           string   `json:"end"`
	ShortestPath  []string `json:"shortest_path,omitempty"`
	TotalDistance *float64 `json:"total_distance,omitempty"`
	Error         string   `json:"error,omitempty"`
}

func main() {
	var (
		datasetDir = flag.String("dataset-dir", "./data", "Directory containing edges.json and queries.json")
		workers    = flag.Int("workers", 0, "Concurrent route workers (0 uses ROUTING_BATCH_WORKERS)")
		mirror     = flag.Bool("mirror", false, "Mirror the loaded network into the graph database at GRAPH_URI")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *workers > 0 {
		cfg.Routing.BatchWorkers = *workers
	}

	// Answers go to stdout; logs go to stderr.
	logger := logging.NewWithWriter(cfg.Logging, os.Stderr).With("component", "solve")

	dataset, err := generator.ReadDataset(*datasetDir)
	if err != nil {
		logger.Error("failed to read dataset", "error", err, "dir", *datasetDir)
		os.Exit(1)
	}
	if len(dataset.Edges) == 0 {
		logger.Error("edges dataset empty", "dir", *datasetDir)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := service.Options{
		Logger:        logger,
		MirrorTimeout: cfg.Graph.MirrorTimeout,
		BatchWorkers:  cfg.Routing.BatchWorkers,
	}

	var repo *repository.Repository
	if *mirror {
		client, err := buildGraphClient(ctx, logger, cfg)
		if err != nil {
			logger.Error("failed to create graph client", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := client.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}()
		repo = repository.New(client)
		if err := repo.ClearNetwork(ctx); err != nil {
			logger.Error("failed to clear mirrored network", "error", err)
			os.Exit(1)
		}
		opts.Mirror = repo
	}

	svc := service.NewRouteService(transit.NewNetwork(transit.WithMaxStops(cfg.Routing.MaxStops)), opts)

	start := time.Now()
	stats, err := svc.LoadEdges(ctx, dataset.Edges)
	if err != nil {
		logger.Error("failed to load edges", "error", err)
		os.Exit(1)
	}
	logger.Info("network loaded", "stops", stats.Stops, "edges", stats.Links, "duration", time.Since(start).String())

	if repo != nil {
		mirrored, err := repo.CountStops(ctx)
		if err != nil {
			logger.Warn("failed to count mirrored stops", "error", err)
		} else if mirrored != stats.Stops {
			logger.Warn("mirror stop count differs", "mirrored", mirrored, "stops", stats.Stops)
		} else {
			logger.Info("network mirrored", "stops", mirrored)
		}
	}

	start = time.Now()
	results, err := svc.BatchShortestPaths(ctx, dataset.Queries)
	if err != nil {
		logger.Error("route queries failed", "error", err)
		os.Exit(1)
	}
	logger.Info("queries answered", "count", len(results), "duration", time.Since(start).String())

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(toAnswers(results)); err != nil {
		logger.Error("failed to write answers", "error", err)
		os.Exit(1)
	}
}

func toAnswers(results []service.PairResult) []answer {
	out := make([]answer, len(results))
	for i, res := range results {
		out[i] = answer{Start: res.Query.Start, End: res.Query.End}
		switch {
		case res.Route != nil:
			d := res.Route.Distance
			out[i].ShortestPath = res.Route.Stops
			out[i].TotalDistance = &d
		case errors.Is(res.Err, transit.ErrUnknownStop):
			out[i].Error = "unknown_stop"
		case errors.Is(res.Err, transit.ErrNoPath):
			out[i].Error = "no_path"
		default:
			out[i].Error = res.Err.Error()
		}
	}
	return out
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if !cfg.Graph.Enabled() {
		return nil, fmt.Errorf("GRAPH_URI is required for -mirror")
	}
	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
