package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vanshika/transitroute/backend/internal/graph"
	"github.com/vanshika/transitroute/backend/internal/logging"
	"github.com/vanshika/transitroute/backend/internal/metrics"
	"github.com/vanshika/transitroute/backend/internal/service"
	"github.com/vanshika/transitroute/backend/internal/transit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, opts ...transit.Option) http.Handler {
	t.Helper()
	logger := logging.Discard()
	svc := service.NewRouteService(transit.NewNetwork(opts...), service.Options{
		Logger:     logger,
		BatchLimit: 10,
	})
	return NewRouter(logger, RouterDependencies{API: NewAPIHandlers(logger, svc)})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestAddEdgeAndShortestPath(t *testing.T) {
	h := newTestRouter(t)

	for _, body := range []string{
		`{"from":"A","to":"B","distance":3}`,
		`{"from":"B","to":"C","distance":4}`,
		`{"from":"A","to":"C","distance":10}`,
	} {
		rec := do(t, h, http.MethodPost, "/add_edge", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200 for %s, got %d: %s", body, rec.Code, rec.Body.String())
		}
	}

	rec := do(t, h, http.MethodPost, "/shortest_path", `{"start":"A","end":"C"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	payload := decode[routeResponse](t, rec)
	if diff := cmp.Diff([]string{"A", "B", "C"}, payload.ShortestPath); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
	if payload.TotalDistance == nil || *payload.TotalDistance != 7 {
		t.Fatalf("expected total distance 7, got %v", payload.TotalDistance)
	}
	if len(payload.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(payload.Legs))
	}
}

func TestAddEdgeMessage(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/add_edge", `{"from":"A","to":"B","distance":5}`)
	msg := decode[messageResponse](t, rec)
	if msg.Message != "Edge added from A to B with distance 5." {
		t.Fatalf("unexpected message %q", msg.Message)
	}

	rec = do(t, h, http.MethodPost, "/add_edge", `{"from":"A","to":"B","distance":2.5}`)
	msg = decode[messageResponse](t, rec)
	if msg.Message != "Edge added from A to B with distance 2.5." {
		t.Fatalf("unexpected message %q", msg.Message)
	}
}

func TestAddEdgeInvalidInput(t *testing.T) {
	h := newTestRouter(t)

	for _, body := range []string{
		`{"to":"B","distance":1}`,
		`{"from":"A","distance":1}`,
		`{"from":"A","to":"B"}`,
		`{"from":"A","to":"B","distance":null}`,
		`{"from":"A","to":"B","distance":"far"}`,
		`not json`,
	} {
		rec := do(t, h, http.MethodPost, "/add_edge", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400 for %s, got %d", body, rec.Code)
			continue
		}
		if got := decode[errorResponse](t, rec); got.Error != invalidEdgeMessage {
			t.Errorf("unexpected error %q for %s", got.Error, body)
		}
	}

	rec := do(t, h, http.MethodGet, "/stats", "")
	if got := decode[statsResponse](t, rec); got != (statsResponse{}) {
		t.Fatalf("expected rejected edges to leave network empty, got %+v", got)
	}
}

func TestShortestPathErrors(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/add_edge", `{"from":"A","to":"B","distance":5}`)

	rec := do(t, h, http.MethodPost, "/shortest_path", `{"start":"Z","end":"A"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown stop, got %d", rec.Code)
	}
	if got := decode[errorResponse](t, rec); got.Error != unknownStopMessage {
		t.Fatalf("unexpected error %q", got.Error)
	}

	rec = do(t, h, http.MethodPost, "/shortest_path", `{"start":"B","end":"A"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for no path, got %d", rec.Code)
	}
	if got := decode[messageResponse](t, rec); got.Message != "No path exists from B to A." {
		t.Fatalf("unexpected message %q", got.Message)
	}
}

func TestIdentityRoute(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/add_edge", `{"from":"A","to":"B","distance":5}`)

	rec := do(t, h, http.MethodPost, "/shortest_path", `{"start":"A","end":"A"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	payload := decode[routeResponse](t, rec)
	if diff := cmp.Diff([]string{"A"}, payload.ShortestPath); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
	if payload.TotalDistance == nil || *payload.TotalDistance != 0 {
		t.Fatalf("expected total distance 0, got %v", payload.TotalDistance)
	}
}

func TestResetClearsNetwork(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/add_edge", `{"from":"A","to":"B","distance":5}`)

	rec := do(t, h, http.MethodPost, "/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := decode[messageResponse](t, rec); got.Message != "Data reset successful." {
		t.Fatalf("unexpected message %q", got.Message)
	}

	rec = do(t, h, http.MethodPost, "/shortest_path", `{"start":"A","end":"B"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 after reset, got %d", rec.Code)
	}
}

func TestLoadAndListEdges(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/edges", `{"edges":[
		{"from":"A","to":"B","distance":1},
		{"from":"B","to":"C","distance":2}
	]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	loaded := decode[loadEdgesResponse](t, rec)
	if loaded.Stats != (statsResponse{Stops: 3, Edges: 2}) {
		t.Fatalf("unexpected stats %+v", loaded.Stats)
	}

	rec = do(t, h, http.MethodGet, "/stops", "")
	if diff := cmp.Diff(stopsResponse{Stops: []string{"A", "B", "C"}}, decode[stopsResponse](t, rec)); diff != "" {
		t.Fatalf("stops mismatch (-want +got):\n%s", diff)
	}

	rec = do(t, h, http.MethodGet, "/edges", "")
	want := edgesResponse{Edges: []edgeResponse{
		{From: "A", To: "B", Distance: 1},
		{From: "B", To: "C", Distance: 2},
	}}
	if diff := cmp.Diff(want, decode[edgesResponse](t, rec)); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}

	rec = do(t, h, http.MethodPost, "/edges", `{"edges":[{"from":"A","to":"B"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for invalid batch, got %d", rec.Code)
	}
}

func TestEmptyStopsIsArray(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/stops", "")
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"stops":[]`)) {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestBatchShortestPaths(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/add_edge", `{"from":"A","to":"B","distance":1}`)
	do(t, h, http.MethodPost, "/add_edge", `{"from":"B","to":"C","distance":1}`)

	rec := do(t, h, http.MethodPost, "/shortest_paths", `{"queries":[
		{"start":"A","end":"C"},
		{"start":"C","end":"A"},
		{"start":"Q","end":"A"}
	]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	payload := decode[batchResponse](t, rec)
	if len(payload.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(payload.Results))
	}
	first := payload.Results[0]
	if first.TotalDistance == nil || *first.TotalDistance != 2 || first.Error != "" {
		t.Errorf("unexpected first result %+v", first)
	}
	if payload.Results[1].Error != "no_path" {
		t.Errorf("expected no_path, got %+v", payload.Results[1])
	}
	if payload.Results[2].Error != "unknown_stop" {
		t.Errorf("expected unknown_stop, got %+v", payload.Results[2])
	}

	var tooMany strings.Builder
	tooMany.WriteString(`{"queries":[`)
	for i := 0; i < 11; i++ {
		if i > 0 {
			tooMany.WriteString(",")
		}
		tooMany.WriteString(`{"start":"A","end":"B"}`)
	}
	tooMany.WriteString(`]}`)
	rec = do(t, h, http.MethodPost, "/shortest_paths", tooMany.String())
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rec.Code)
	}
}

func TestStopLimit(t *testing.T) {
	h := newTestRouter(t, transit.WithMaxStops(2))
	do(t, h, http.MethodPost, "/add_edge", `{"from":"A","to":"B","distance":1}`)

	rec := do(t, h, http.MethodPost, "/add_edge", `{"from":"B","to":"C","distance":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 beyond stop limit, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	logger := logging.Discard()

	healthy := NewRouter(logger, RouterDependencies{Health: MirrorHealthService{}})
	rec := do(t, healthy, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	mem := graph.NewMemoryClient().WithConnectivityError(errors.New("bolt unreachable"))
	degraded := NewRouter(logger, RouterDependencies{Health: MirrorHealthService{Client: mem}})
	rec = do(t, degraded, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "degraded") {
		t.Fatalf("expected degraded status, got %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	logger := logging.Discard()
	reg := prometheus.NewRegistry()
	svc := service.NewRouteService(transit.NewNetwork(), service.Options{
		Logger:  logger,
		Metrics: metrics.New(reg),
	})
	h := NewRouter(logger, RouterDependencies{
		API:     NewAPIHandlers(logger, svc),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	do(t, h, http.MethodPost, "/add_edge", `{"from":"A","to":"B","distance":1}`)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `transit_operations_total{operation="add_edge",outcome="ok"} 1`) {
		t.Fatalf("expected add_edge counter in metrics output, got:\n%s", body)
	}
	if !strings.Contains(body, "transit_stops 2") {
		t.Fatalf("expected stop gauge in metrics output, got:\n%s", body)
	}
}

func TestCORS(t *testing.T) {
	logger := logging.Discard()
	h := NewRouter(logger, RouterDependencies{AllowedOrigins: []string{"https://transit.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/healthz", nil)
	req.Header.Set("Origin", "https://transit.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://transit.example" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}

	if _, ok := buildCORS(logger, []string{"transit.example"}, false); ok {
		t.Fatalf("expected origin without scheme to disable cors")
	}
	if _, ok := buildCORS(logger, nil, false); ok {
		t.Fatalf("expected no cors without origins")
	}
}
