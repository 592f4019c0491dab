package server

import (
	"context"

	"github.com/vanshika/transitroute/backend/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// MirrorHealthService reports the graph mirror as a readiness dependency.
// A nil client means mirroring is disabled and the probe always passes.
type MirrorHealthService struct {
	Client graph.Client
}

// Probe implements the HealthService interface.
func (s MirrorHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}
