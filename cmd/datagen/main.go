package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/transitroute/backend/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		lines          = flag.Int("lines", cfg.NumLines, "number of bus lines to generate")
		stopsPerLine   = flag.Int("stops-per-line", cfg.StopsPerLine, "stops served by each line")
		transferChance = flag.Float64("transfer-chance", cfg.TransferChance, "probability that a stop gets a transfer to another line")
		minDistance    = flag.Float64("min-distance", cfg.MinDistance, "shortest distance between consecutive stops")
		maxDistance    = flag.Float64("max-distance", cfg.MaxDistance, "longest distance between consecutive stops")
		queries        = flag.Int("queries", cfg.NumQueries, "number of route queries to generate")
		seed           = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir      = flag.String("output-dir", "data", "directory to write edges.json and queries.json")
		writeStdout    = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumLines:       *lines,
		StopsPerLine:   *stopsPerLine,
		TransferChance: clampProbability(*transferChance),
		MinDistance:    *minDistance,
		MaxDistance:    *maxDistance,
		NumQueries:     *queries,
		Seed:           *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d edges and %d queries into %s\n", len(dataset.Edges), len(dataset.Queries), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
