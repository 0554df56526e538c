package plans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/loadplan/core/model"
	"github.com/kilianp07/loadplan/core/planning"
	"github.com/kilianp07/loadplan/core/planning/logging"
	"github.com/kilianp07/loadplan/core/scheduler"
)

// maxBodyBytes caps the size of an optimize request body.
const maxBodyBytes = 8 << 20

// Planner is the subset of planning.Planner used by the handlers.
type Planner interface {
	Optimize(ctx context.Context, req planning.Request) (model.Plan, error)
	History(ctx context.Context, q logging.LogQuery) ([]model.Plan, error)
}

type errorBody struct {
	Error string `json:"error"`
}

// Register mounts the plan endpoints on mux. Requests must include an
// Authorization header with "Bearer <token>" when token is non-empty; the
// health endpoint is always public.
func Register(mux *http.ServeMux, p Planner, token string) {
	mux.Handle("/api/plans/optimize", NewOptimizeHandler(p, token))
	mux.Handle("/api/plans/fleet", NewFleetHandler(scheduler.New(p, nil), token))
	mux.Handle("/api/plans", NewListHandler(p, token))
	mux.Handle("/health", NewHealthHandler())
}

// NewOptimizeHandler returns an HTTP handler computing a plan via
// POST /api/plans/optimize.
func NewOptimizeHandler(p Planner, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req planning.Request
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "decode request: " + err.Error()})
			return
		}
		plan, err := p.Optimize(r.Context(), req)
		if err != nil {
			writeJSON(w, errorStatus(err), errorBody{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, plan)
	})
}

// FleetRequest is the body of POST /api/plans/fleet.
type FleetRequest struct {
	scheduler.FleetConfig
	Orders []model.Order `json:"orders"`
}

// NewFleetHandler returns an HTTP handler spreading orders over a fleet via
// POST /api/plans/fleet.
func NewFleetHandler(s *scheduler.Scheduler, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req FleetRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "decode request: " + err.Error()})
			return
		}
		fp, err := s.PlanFleet(r.Context(), req.FleetConfig, req.Orders)
		if err != nil {
			writeJSON(w, errorStatus(err), errorBody{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, fp)
	})
}

func errorStatus(err error) int {
	switch {
	case planning.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewListHandler returns an HTTP handler exposing computed plans via
// GET /api/plans. Supported filters: start, end (RFC3339), vehicle_id,
// order_id and limit.
func NewListHandler(p Planner, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q, err := parseQuery(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		plans, err := p.History(r.Context(), q)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
			return
		}
		if plans == nil {
			plans = []model.Plan{}
		}
		writeJSON(w, http.StatusOK, plans)
	})
}

// NewHealthHandler reports liveness via GET /health.
func NewHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
}

func parseQuery(r *http.Request) (logging.LogQuery, error) {
	v := r.URL.Query()
	q := logging.LogQuery{VehicleID: v.Get("vehicle_id"), OrderID: v.Get("order_id")}
	if s := v.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, errors.New("start must be RFC3339")
		}
		q.Start = t
	}
	if s := v.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, errors.New("end must be RFC3339")
		}
		q.End = t
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, errors.New("limit must be a non-negative integer")
		}
		q.Limit = n
	}
	return q, nil
}

func authorized(r *http.Request, token string) bool {
	return token == "" || r.Header.Get("Authorization") == "Bearer "+token
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
