package httpServer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/service"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListShipments(w http.ResponseWriter, r *http.Request) {
	views, err := s.service.ListShipments(r.Context())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	v, err := s.service.GetShipment(r.Context(), chi.URLParam(r, "shipmentID"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleShipmentMode(w http.ResponseWriter, r *http.Request) {
	mi, err := s.service.ShipmentMode(r.Context(), chi.URLParam(r, "shipmentID"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mi)
}

func (s *Server) handleCalculateEmission(w http.ResponseWriter, r *http.Request) {
	var req service.EmissionRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.service.CalculateEmission(r.Context(), req)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCalculateCost(w http.ResponseWriter, r *http.Request) {
	var req service.CostRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.service.CalculateCost(r.Context(), req)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleOptimization(w http.ResponseWriter, r *http.Request) {
	policy := policyFromQuery(r.URL.Query())
	res, err := s.service.Optimize(r.Context(), chi.URLParam(r, "shipmentID"), policy)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ShipmentID) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "shipment_id is required"})
		return
	}
	var policy *models.Policy
	if req.Policy != nil {
		policy = req.Policy.Policy()
	}
	res, err := s.service.Simulate(r.Context(), req.ShipmentID, req.Overrides, policy)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.service.RecordDecision(r.Context(), service.DecisionInput{
		ShipmentID:    req.ShipmentID,
		Status:        models.StatusApproved,
		ChosenCarrier: req.ChosenCarrier,
		Comments:      req.Comments,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.service.RecordDecision(r.Context(), service.DecisionInput{
		ShipmentID: req.ShipmentID,
		Status:     models.StatusRejected,
		Comments:   req.Comments,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.service.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// policyFromQuery reads the policy fields from query parameters. Values that do not
// parse are ignored, the same way a malformed due date is.
func policyFromQuery(q url.Values) *models.Policy {
	in := models.PolicyInput{
		BudgetCapUSD:            queryFloat(q, "budget_cap_usd"),
		EmissionReductionMinPct: queryFloat(q, "emission_reduction_min_pct"),
		BudgetIncreaseMaxPct:    queryFloat(q, "budget_increase_max_pct"),
	}
	if v := q.Get("sla_due_date"); v != "" {
		in.SLADueDate = &v
	}
	if v := q.Get("sla_priority"); v != "" {
		in.SLAPriority = &v
	}
	return in.Policy()
}

func queryFloat(q url.Values, key string) *float64 {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// decode reads one JSON object. An empty body decodes as {}.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid JSON body: %v", err)})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
