package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vanshika/transitroute/backend/internal/domain"
	"github.com/vanshika/transitroute/backend/internal/service"
	"github.com/vanshika/transitroute/backend/internal/transit"
)

// APIHandlers exposes HTTP handlers for the route API.
type APIHandlers struct {
	logger  *slog.Logger
	service *service.RouteService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.RouteService) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
	}
}

// Register mounts the API routes on r.
func (h *APIHandlers) Register(r gin.IRouter) {
	r.POST("/add_edge", h.addEdge)
	r.POST("/shortest_path", h.shortestPath)
	r.POST("/reset", h.reset)

	r.POST("/edges", h.loadEdges)
	r.GET("/edges", h.listEdges)
	r.GET("/stops", h.listStops)
	r.GET("/stats", h.stats)
	r.POST("/shortest_paths", h.batchShortestPaths)
}

func (h *APIHandlers) addEdge(c *gin.Context) {
	var req addEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, invalidEdgeMessage)
		return
	}

	link, err := h.service.AddEdge(c.Request.Context(), req.toServiceInput())
	if err != nil {
		if errors.Is(err, transit.ErrInvalidInput) {
			writeError(c, http.StatusBadRequest, invalidEdgeMessage)
			return
		}
		h.logger.Error("failed to add edge", "error", err)
		writeError(c, http.StatusInternalServerError, "failed to add edge")
		return
	}

	c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Edge added from %s to %s with distance %s.", link.From, link.To, formatDistance(link.Distance)),
	})
}

func (h *APIHandlers) shortestPath(c *gin.Context) {
	var req shortestPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	route, err := h.service.ShortestPath(c.Request.Context(), req.Start, req.End)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, newRouteResponse(route))
	case errors.Is(err, transit.ErrUnknownStop):
		writeError(c, http.StatusBadRequest, unknownStopMessage)
	case errors.Is(err, transit.ErrNoPath):
		c.JSON(http.StatusNotFound, messageResponse{
			Message: fmt.Sprintf("No path exists from %s to %s.", req.Start, req.End),
		})
	default:
		h.logger.Error("shortest path failed", "error", err, "start", req.Start, "end", req.End)
		writeError(c, http.StatusInternalServerError, "failed to compute shortest path")
	}
}

func (h *APIHandlers) reset(c *gin.Context) {
	h.service.Reset(c.Request.Context())
	c.JSON(http.StatusOK, messageResponse{Message: "Data reset successful."})
}

func (h *APIHandlers) loadEdges(c *gin.Context) {
	var req loadEdgesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	inputs := make([]service.EdgeInput, len(req.Edges))
	for i, e := range req.Edges {
		inputs[i] = e.toServiceInput()
	}

	stats, err := h.service.LoadEdges(c.Request.Context(), inputs)
	if err != nil {
		if errors.Is(err, transit.ErrInvalidInput) {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to load edges", "error", err)
		writeError(c, http.StatusInternalServerError, "failed to load edges")
		return
	}

	c.JSON(http.StatusOK, loadEdgesResponse{
		Message: fmt.Sprintf("Loaded %d edges.", len(inputs)),
		Stats:   newStatsResponse(stats),
	})
}

func (h *APIHandlers) listEdges(c *gin.Context) {
	links := h.service.Links(c.Request.Context())
	resp := edgesResponse{Edges: make([]edgeResponse, 0, len(links))}
	for _, l := range links {
		resp.Edges = append(resp.Edges, edgeResponse{From: l.From, To: l.To, Distance: l.Distance})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *APIHandlers) listStops(c *gin.Context) {
	stops := h.service.Stops(c.Request.Context())
	if stops == nil {
		stops = []string{}
	}
	c.JSON(http.StatusOK, stopsResponse{Stops: stops})
}

func (h *APIHandlers) stats(c *gin.Context) {
	c.JSON(http.StatusOK, newStatsResponse(h.service.Stats(c.Request.Context())))
}

func (h *APIHandlers) batchShortestPaths(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	results, err := h.service.BatchShortestPaths(c.Request.Context(), req.Queries)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBatchTooLarge):
			writeError(c, http.StatusRequestEntityTooLarge, err.Error())
		case c.Request.Context().Err() != nil:
			writeError(c, http.StatusServiceUnavailable, "request canceled")
		default:
			h.logger.Error("batch shortest paths failed", "error", err, "pairs", len(req.Queries))
			writeError(c, http.StatusInternalServerError, "failed to compute shortest paths")
		}
		return
	}

	resp := batchResponse{Results: make([]batchResult, 0, len(results))}
	for _, res := range results {
		item := batchResult{Start: res.Query.Start, End: res.Query.End}
		switch {
		case res.Route != nil:
			item.routeResponse = newRouteResponse(*res.Route)
		case errors.Is(res.Err, transit.ErrUnknownStop):
			item.Error = "unknown_stop"
		case errors.Is(res.Err, transit.ErrNoPath):
			item.Error = "no_path"
		default:
			h.logger.Error("batch pair failed", "error", res.Err, "start", res.Query.Start, "end", res.Query.End)
			item.Error = "internal"
		}
		resp.Results = append(resp.Results, item)
	}
	c.JSON(http.StatusOK, resp)
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

func formatDistance(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}

const (
	invalidEdgeMessage = `Invalid input. Please provide "from", "to", and "distance".`
	unknownStopMessage = "Invalid bus stand name(s)."
)

type addEdgeRequest struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Distance *float64 `json:"distance"`
}

func (r addEdgeRequest) toServiceInput() service.EdgeInput {
	return service.EdgeInput{From: r.From, To: r.To, Distance: r.Distance}
}

type shortestPathRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type loadEdgesRequest struct {
	Edges []addEdgeRequest `json:"edges"`
}

type batchRequest struct {
	Queries []service.PairQuery `json:"queries"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type legResponse struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Distance float64 `json:"distance"`
}

type routeResponse struct {
	ShortestPath  []string      `json:"shortest_path,omitempty"`
	TotalDistance *float64      `json:"total_distance,omitempty"`
	Legs          []legResponse `json:"legs,omitempty"`
}

func newRouteResponse(r domain.Route) routeResponse {
	total := r.Distance
	resp := routeResponse{
		ShortestPath:  r.Stops,
		TotalDistance: &total,
		Legs:          make([]legResponse, 0, len(r.Legs)),
	}
	for _, leg := range r.Legs {
		resp.Legs = append(resp.Legs, legResponse{From: leg.From, To: leg.To, Distance: leg.Distance})
	}
	return resp
}

type edgeResponse struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Distance float64 `json:"distance"`
}

type edgesResponse struct {
	Edges []edgeResponse `json:"edges"`
}

type stopsResponse struct {
	Stops []string `json:"stops"`
}

type statsResponse struct {
	Stops int `json:"stops"`
	Edges int `json:"edges"`
}

func newStatsResponse(s domain.NetworkStats) statsResponse {
	return statsResponse{Stops: s.Stops, Edges: s.Links}
}

type loadEdgesResponse struct {
	Message string        `json:"message"`
	Stats   statsResponse `json:"stats"`
}

type batchResult struct {
	Start string `json:"start"`
	End   string `json:"end"`
	routeResponse
	Error string `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchResult `json:"results"`
}
