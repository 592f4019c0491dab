package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vanshika/transitroute/backend/internal/config"
	"github.com/vanshika/transitroute/backend/internal/graph"
	"github.com/vanshika/transitroute/backend/internal/logging"
	"github.com/vanshika/transitroute/backend/internal/metrics"
	"github.com/vanshika/transitroute/backend/internal/repository"
	"github.com/vanshika/transitroute/backend/internal/server"
	"github.com/vanshika/transitroute/backend/internal/service"
	"github.com/vanshika/transitroute/backend/internal/transit"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.HTTP.Mode)
	logger := logging.New(cfg.Logging)

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if graphClient != nil {
			if err := graphClient.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}
	}()

	var mirror service.NetworkMirror
	if graphClient != nil {
		mirror = repository.New(graphClient)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	var metricsHandler http.Handler
	if cfg.HTTP.MetricsEnabled {
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	network := transit.NewNetwork(transit.WithMaxStops(cfg.Routing.MaxStops))
	routeService := service.NewRouteService(network, service.Options{
		Mirror:        mirror,
		MirrorTimeout: cfg.Graph.MirrorTimeout,
		Metrics:       metrics.New(reg),
		Logger:        logger,
		BatchWorkers:  cfg.Routing.BatchWorkers,
		BatchLimit:    cfg.Routing.BatchLimit,
	})
	apiHandlers := server.NewAPIHandlers(logger, routeService)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.MirrorHealthService{Client: graphClient},
		API:              apiHandlers,
		Metrics:          metricsHandler,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// buildGraphClient returns a nil client when mirroring is disabled.
func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if !cfg.Graph.Enabled() {
		logger.Info("graph mirror disabled")
		return nil, nil
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
	logger.Info("connected to graph mirror", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(csv, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
