package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ravinmor/sky-watcher/internal/fetcher"
	"github.com/ravinmor/sky-watcher/internal/metrics"
	"github.com/ravinmor/sky-watcher/internal/model"
	"github.com/ravinmor/sky-watcher/internal/ratelimit"
	"github.com/ravinmor/sky-watcher/pkg/logger"
)

// FlightFetcher is the part of the OpenSky client the server depends on
type FlightFetcher interface {
	FetchFlights(ctx context.Context, box model.BoundingBox) ([]*model.FlightRecord, error)
}

// Server represents the HTTP API server
type Server struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
	client  FlightFetcher
	limiter *ratelimit.Limiter
}

// NewServer creates a new HTTP server instance. limiter may be nil to disable throttling.
func NewServer(log *logger.Logger, m *metrics.Metrics, client FlightFetcher, limiter *ratelimit.Limiter) *Server {
	return &Server{
		logger:  log,
		metrics: m,
		client:  client,
		limiter: limiter,
	}
}

// Routes builds the router with all endpoints
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.metrics.Middleware,
		middleware.Recoverer,
	)

	router.Get("/health", s.handleHealth)
	router.Get("/stats", s.handleStats)
	router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	router.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware(func(req *http.Request) {
				s.logger.Debug("Throttled %s from %s", req.URL.Path, req.RemoteAddr)
			}))
		}
		r.Get("/states", s.handleStates)
	})

	return router
}

// handleHealth returns the health status of the service
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"uptime":    s.metrics.GetUptime().String(),
	})
}

type rateLimitStats struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	BurstSize         int     `json:"burst_size"`
	Allowed           int64   `json:"allowed"`
	Rejected          int64   `json:"rejected"`
}

type statsResponse struct {
	*metrics.Snapshot
	RateLimit *rateLimitStats `json:"rate_limit,omitempty"`
}

// handleStats returns the current metrics snapshot and, when throttling is on, the limiter state
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{Snapshot: s.metrics.GetSnapshot()}
	if s.limiter != nil {
		rps, burst := s.limiter.GetLimit()
		allowed, rejected := s.limiter.GetStats()
		resp.RateLimit = &rateLimitStats{
			RequestsPerSecond: rps,
			BurstSize:         burst,
			Allowed:           allowed,
			Rejected:          rejected,
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleStates queries OpenSky for the bounding box given in the query string
func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	box, err := parseBoundingBox(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.client.FetchFlights(r.Context(), box)
	if err != nil {
		s.logger.Error("Failed to fetch flights for %s: %v", box, err)
		s.writeError(w, statusForError(err), err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"states":    records,
		"count":     len(records),
		"timestamp": time.Now().Unix(),
	})
}

// statusForError maps client errors to HTTP status codes
func statusForError(err error) int {
	var (
		transportErr *fetcher.TransportError
		parseErr     *fetcher.ParseError
		stateErr     *fetcher.StateError
	)

	switch {
	case errors.Is(err, model.ErrInvalidBoundingBox):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &transportErr), errors.As(err, &parseErr), errors.As(err, &stateErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// parseBoundingBox reads lamin, lomin, lamax and lomax from the query string
func parseBoundingBox(r *http.Request) (model.BoundingBox, error) {
	query := r.URL.Query()

	values := make(map[string]float64, 4)
	for _, key := range []string{"lamin", "lomin", "lamax", "lomax"} {
		raw := query.Get(key)
		if raw == "" {
			return model.BoundingBox{}, fmt.Errorf("missing query parameter %q", key)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.BoundingBox{}, fmt.Errorf("query parameter %q is not a number", key)
		}
		values[key] = v
	}

	return model.NewBoundingBox(
		model.Coordinate{Latitude: values["lamin"], Longitude: values["lomin"]},
		model.Coordinate{Latitude: values["lamax"], Longitude: values["lomax"]},
	), nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
