package httpServer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/service"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct{}

func (staticSource) Carriers(context.Context) ([]models.Carrier, error) {
	return []models.Carrier{
		{Name: "RoadCo", Mode: "road", BaseCostPerKm: 0.4},
		{Name: "RailCo", Mode: "rail", BaseCostPerKm: 0.3},
		{Name: "FastAir", Mode: "air", BaseCostPerKm: 1.5, AvgTransitDays: models.IntPtr(1)},
	}, nil
}

func (staticSource) Distances(context.Context) (map[string]float64, error) {
	return map[string]float64{"NYC-BOS": 400}, nil
}

func (staticSource) EmissionFactors(context.Context) (map[string]float64, error) {
	return map[string]float64{"road": 0.1, "rail": 0.02, "air": 0.5}, nil
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T, opts Options) (*Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore(
		models.Shipment{ID: "S1", Origin: "NYC", Destination: "BOS", WeightKg: 2000, Carrier: models.StringPtr("RoadCo"),
			Extra: map[string]json.RawMessage{"customer_ref": json.RawMessage(`"PO-1"`)}},
	)
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	svc := service.NewOptimizerService(st, staticSource{}, nil, discard).WithClock(func() time.Time { return now })
	return NewServer(svc, discard, opts), st
}

func do(t *testing.T, s *Server, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec, body := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestShipments(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/shipments", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "road", list[0]["mode"])
	assert.Equal(t, "PO-1", list[0]["customer_ref"])

	_, body := do(t, s, http.MethodGet, "/api/shipments/S1/mode", "")
	assert.Equal(t, "RoadCo", body["carrier"])
	assert.Equal(t, "road", body["mode"])

	rec, body = do(t, s, http.MethodGet, "/api/shipments/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Shipment not found", body["error"])
}

func TestCalculateEndpoints(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	rec, body := do(t, s, http.MethodPost, "/api/calculate_emission",
		`{"origin":"A","destination":"B","weight_kg":2000,"distance_km":500,"mode":"air"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 500.0, body["emission_kg_co2e"])
	calc := body["emission_calculation"].(map[string]any)
	for _, key := range []string{"method", "weight_tons", "distance_km", "mode", "emission_factor_kgco2e_per_ton_km", "factor_source"} {
		assert.Contains(t, calc, key)
	}
	assert.Equal(t, "emission_factors", calc["factor_source"])

	rec, body = do(t, s, http.MethodPost, "/api/calculate_cost", `{"distance_km":500,"cost_per_km":0.2,"surcharges_usd":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 110.0, body["cost_usd"])

	rec, _ = do(t, s, http.MethodPost, "/api/calculate_cost", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, s, http.MethodPost, "/api/calculate_emission", `{"origin":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimization_PolicyFromQuery(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	rec, body := do(t, s, http.MethodGet, "/api/optimization/S1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "RailCo", body["recommended"].(map[string]any)["carrier"])
	assert.NotContains(t, body, "policy")

	q := url.Values{}
	q.Set("sla_due_date", "2026-10-16")
	q.Set("budget_cap_usd", "not-a-number")
	rec, body = do(t, s, http.MethodGet, "/api/optimization/S1?"+q.Encode(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	policy := body["policy"].(map[string]any)
	assert.Equal(t, "2026-10-16", policy["sla_due_date"])
	assert.Nil(t, policy["budget_cap_usd"])
	assert.Equal(t, 30.0, policy["emission_reduction_min_pct"])
	assert.Equal(t, false, body["policy_satisfied"])
	assert.NotNil(t, body["recommended"])

	_, body = do(t, s, http.MethodGet, "/api/optimization/S1?sla_priority=high", "")
	assert.NotContains(t, body, "policy", "a priority label alone is not a policy")
	assert.NotContains(t, body, "policy_satisfied")

	rec, _ = do(t, s, http.MethodGet, "/api/optimization/S1?sla_due_date=garbage", "")
	assert.Equal(t, http.StatusOK, rec.Code, "malformed dates are ignored")

	rec, _ = do(t, s, http.MethodGet, "/api/optimization/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSimulate(t *testing.T) {
	s, st := newTestServer(t, Options{})

	rec, body := do(t, s, http.MethodPost, "/api/simulate",
		`{"shipment_id":"S1","overrides":{"mode":"rail"},"policy":{"budget_cap_usd":1000}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cmp := body["comparison"].(map[string]any)
	assert.Equal(t, -64.0, cmp["emission_delta_kg"])
	align := body["policy_alignment"].(map[string]any)
	assert.Equal(t, true, align["within_budget_cap"])

	ss, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ss[0].HasCurrent(), "simulate never writes")

	rec, _ = do(t, s, http.MethodPost, "/api/simulate", `{"overrides":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApproveRejectDashboard(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	rec, body := do(t, s, http.MethodPost, "/api/approve", `{"shipment_id":"S1","chosen_carrier":"RailCo","comments":"greener"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Approval recorded", body["message"])
	assert.Equal(t, "RailCo", body["chosen_carrier"])

	rec, body = do(t, s, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := body["summary"].(map[string]any)
	assert.Equal(t, 1.0, summary["approved"])
	assert.Equal(t, 80.0, summary["total_emission_reduction_pct"])

	rec, body = do(t, s, http.MethodPost, "/api/reject", `{"shipment_id":"S1","comments":"changed my mind"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Rejection recorded", body["message"])
	assert.Equal(t, "REJECTED", body["shipment"].(map[string]any)["status"])

	rec, body = do(t, s, http.MethodPost, "/api/approve", `{"shipment_id":"S1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "chosen_carrier")
	assert.Nil(t, body["chosen_carrier"])

	rec, body = do(t, s, http.MethodPost, "/api/reject", `{"shipment_id":"S1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, body, "chosen_carrier")

	rec, _ = do(t, s, http.MethodPost, "/api/approve", `{"shipment_id":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, Options{RateLimitRPS: 0.001, RateLimitBurst: 2})

	codes := []int{}
	for i := 0; i < 3; i++ {
		rec, _ := do(t, s, http.MethodGet, "/health", "")
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestIPLimitersSweep(t *testing.T) {
	l := newIPLimiters(1, 1)
	now := time.Now()
	l.allow("10.0.0.1", now.Add(-time.Hour))
	l.allow("10.0.0.2", now)
	assert.Equal(t, 1, l.sweep(now, 30*time.Minute))
	assert.Len(t, l.clients, 1)
}
