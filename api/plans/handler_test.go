package plans

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kilianp07/loadplan/core/model"
	"github.com/kilianp07/loadplan/core/planning"
	"github.com/kilianp07/loadplan/core/planning/logging"
	"github.com/kilianp07/loadplan/core/scheduler"
)

func newServer(t *testing.T, token string) (*http.ServeMux, *planning.Planner) {
	t.Helper()
	p, err := planning.NewPlanner(planning.Config{Scale: 50}, nil, nil)
	if err != nil {
		t.Fatalf("planner: %v", err)
	}
	mux := http.NewServeMux()
	Register(mux, p, token)
	return mux, p
}

func post(t *testing.T, h http.Handler, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/plans/optimize", bytes.NewReader(b))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestOptimizeHandler(t *testing.T) {
	mux, _ := newServer(t, "")
	rr := post(t, mux, planning.Request{
		VehicleID: "truck-1",
		Capacity:  1000,
		Orders: []model.Order{
			{ID: "a", WeightKg: 600},
			{ID: "b", WeightKg: 450},
			{ID: "c", WeightKg: 400},
		},
	}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var plan model.Plan
	if err := json.Unmarshal(rr.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if plan.Stats.TotalWeight != 1000 || len(plan.Selected) != 2 || plan.Stats.Efficiency != 100 {
		t.Fatalf("unexpected plan %#v", plan.Stats)
	}
}

func TestOptimizeHandler_BadRequests(t *testing.T) {
	mux, _ := newServer(t, "")
	tests := []struct {
		name string
		body any
	}{
		{"no orders", planning.Request{Capacity: 10}},
		{"nothing fits", planning.Request{Capacity: 100, Orders: []model.Order{{ID: "x", WeightKg: 500}}}},
		{"malformed", "not an object"},
		{"capacity too large", planning.Request{Capacity: 1e300, Orders: []model.Order{{ID: "x", WeightKg: 500}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(t, mux, tt.body, "")
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			var body errorBody
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Fatalf("expected error body, got %q", rr.Body.String())
			}
		})
	}
}

type brokenPlanner struct{}

func (brokenPlanner) Optimize(context.Context, planning.Request) (model.Plan, error) {
	return model.Plan{}, planning.ErrCapacityExceeded
}
func (brokenPlanner) History(context.Context, logging.LogQuery) ([]model.Plan, error) {
	return nil, context.DeadlineExceeded
}

func TestHandlers_ServerErrors(t *testing.T) {
	rr := post(t, NewOptimizeHandler(brokenPlanner{}, ""), planning.Request{}, "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	NewListHandler(brokenPlanner{}, "").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/plans", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestOptimizeHandler_Auth(t *testing.T) {
	mux, _ := newServer(t, "secret")
	req := planning.Request{Capacity: 100, Orders: []model.Order{{ID: "a", WeightKg: 100}}}
	if rr := post(t, mux, req, ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr := post(t, mux, req, "secret"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("health should stay public, got %d", rr.Code)
	}
}

func TestOptimizeHandler_Method(t *testing.T) {
	mux, _ := newServer(t, "")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/plans/optimize", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestListHandler(t *testing.T) {
	mux, p := newServer(t, "")
	for _, v := range []string{"truck-1", "truck-2"} {
		_, err := p.Optimize(context.Background(), planning.Request{
			VehicleID: v, Capacity: 100, Orders: []model.Order{{ID: "a", WeightKg: 100}},
		})
		if err != nil {
			t.Fatalf("optimize: %v", err)
		}
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/plans?vehicle_id=truck-2", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []model.Plan
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].VehicleID != "truck-2" {
		t.Fatalf("unexpected filter result %#v", out)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/plans?vehicle_id=none", nil))
	if rr.Body.String() != "[]\n" {
		t.Fatalf("expected empty list, got %q", rr.Body.String())
	}

	for _, bad := range []string{"start=yesterday", "end=2024", "limit=-1"} {
		rr = httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/plans?"+bad, nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", bad, rr.Code)
		}
	}
}

func postFleet(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/plans/fleet", bytes.NewReader([]byte(body)))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestFleetHandler(t *testing.T) {
	mux, p := newServer(t, "")
	rr := postFleet(t, mux, `{
		"vehicles": [{"id": "t1", "capacity_kg": 1000}, {"id": "t2", "capacity_kg": 500}],
		"orders": [
			{"id": "a", "weight_kg": 600},
			{"id": "b", "weight_kg": 400},
			{"id": "c", "weight_kg": 450},
			{"id": "d", "weight_kg": 900}
		]
	}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var fp scheduler.FleetPlan
	if err := json.Unmarshal(rr.Body.Bytes(), &fp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(fp.Plans) != 2 || fp.Plans[0].VehicleID != "t1" || fp.Plans[1].VehicleID != "t2" {
		t.Fatalf("unexpected plans: %+v", fp.Plans)
	}
	if fp.Plans[0].Stats.TotalWeight != 1000 || fp.Plans[1].Stats.TotalWeight != 450 {
		t.Fatalf("unexpected loads: %+v", fp.Plans)
	}
	if len(fp.Unassigned) != 1 || fp.Unassigned[0].ID != "d" {
		t.Fatalf("unexpected unassigned: %+v", fp.Unassigned)
	}
	hist, err := p.History(context.Background(), logging.LogQuery{VehicleID: "t2"})
	if err != nil || len(hist) != 1 {
		t.Fatalf("history for t2: %v %v", hist, err)
	}
}

func TestFleetHandler_BadRequests(t *testing.T) {
	mux, _ := newServer(t, "")
	cases := map[string]string{
		"malformed":   `{"vehicles":`,
		"no vehicles": `{"orders":[{"id":"a","weight_kg":100}]}`,
		"no orders":   `{"vehicles":[{"id":"t1","capacity_kg":100}]}`,
	}
	for name, body := range cases {
		if rr := postFleet(t, mux, body); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rr.Code)
		}
	}
	req := httptest.NewRequest(http.MethodGet, "/api/plans/fleet", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
