// service/optimizer.service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	pkgkafka "github.com/Tanmoy095/LogiSynapse/pkg/kafka"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/baseline"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/dashboard"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/decision"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/estimate"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/events"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/optimize"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/reference"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/store"
	"github.com/Tanmoy095/LogiSynapse/shared/contracts"
)

// OptimizerService wires the shipment store and reference data to the estimation
// and optimisation engine. Reference tables are loaded fresh for every call.
type OptimizerService struct {
	shipments *store.Locker
	reference reference.Source
	producer  pkgkafka.Publisher
	logger    *slog.Logger
	clock     func() time.Time
}

// NewOptimizerService builds the service. A nil producer disables events and a nil
// logger falls back to slog.Default.
func NewOptimizerService(st store.ShipmentStore, ref reference.Source, producer pkgkafka.Publisher, logger *slog.Logger) *OptimizerService {
	if producer == nil {
		producer = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OptimizerService{
		shipments: store.NewLocker(st),
		reference: ref,
		producer:  producer,
		logger:    logger,
		clock:     time.Now,
	}
}

// WithClock replaces the time source used for SLA checks and event timestamps.
func (s *OptimizerService) WithClock(clock func() time.Time) *OptimizerService {
	s.clock = clock
	return s
}

func (s *OptimizerService) tables(ctx context.Context) (*reference.Tables, error) {
	return reference.Load(ctx, s.reference)
}

// EnsureBaselines fills missing original/current snapshots and persists them when
// anything changed.
func (s *OptimizerService) EnsureBaselines(ctx context.Context) (bool, error) {
	tables, err := s.tables(ctx)
	if err != nil {
		return false, err
	}
	var changed bool
	_, err = s.shipments.Update(ctx, func(ss []models.Shipment) ([]models.Shipment, bool, error) {
		var out []models.Shipment
		out, changed = baseline.EnsureBaselines(ss, tables)
		return out, changed, nil
	})
	if err != nil {
		return false, fmt.Errorf("ensure baselines: %w", err)
	}
	if changed {
		s.logger.InfoContext(ctx, "baselines updated")
	}
	return changed, nil
}

// ListShipments returns every shipment with its carrier's mode.
func (s *OptimizerService) ListShipments(ctx context.Context) ([]ShipmentView, error) {
	tables, err := s.tables(ctx)
	if err != nil {
		return nil, err
	}
	ss, err := s.shipments.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shipments: %w", err)
	}
	views := make([]ShipmentView, 0, len(ss))
	for _, sh := range ss {
		views = append(views, view(sh, tables))
	}
	return views, nil
}

func (s *OptimizerService) GetShipment(ctx context.Context, id string) (ShipmentView, error) {
	tables, err := s.tables(ctx)
	if err != nil {
		return ShipmentView{}, err
	}
	sh, err := s.find(ctx, id)
	if err != nil {
		return ShipmentView{}, err
	}
	return view(sh, tables), nil
}

func (s *OptimizerService) ShipmentMode(ctx context.Context, id string) (ModeInfo, error) {
	v, err := s.GetShipment(ctx, id)
	if err != nil {
		return ModeInfo{}, err
	}
	return ModeInfo{ShipmentID: v.ID, Carrier: v.Carrier, Mode: v.Mode}, nil
}

// CalculateEmission prices a stored or ad-hoc shipment. An explicit mode wins over
// the carrier's mode.
func (s *OptimizerService) CalculateEmission(ctx context.Context, req EmissionRequest) (EmissionResult, error) {
	tables, err := s.tables(ctx)
	if err != nil {
		return EmissionResult{}, err
	}

	res := EmissionResult{ShipmentID: req.ShipmentID}
	var distance *float64
	if req.ShipmentID != "" {
		sh, err := s.find(ctx, req.ShipmentID)
		if err != nil {
			return EmissionResult{}, err
		}
		res.Origin, res.Destination, res.WeightKg, res.Carrier = sh.Origin, sh.Destination, sh.WeightKg, sh.Carrier
		distance = sh.DistanceKm
	} else {
		if strings.TrimSpace(req.Origin) == "" || strings.TrimSpace(req.Destination) == "" || req.WeightKg == nil {
			return EmissionResult{}, fmt.Errorf("%w: shipment_id or origin, destination and weight_kg are required", ErrInvalidInput)
		}
		if *req.WeightKg <= 0 {
			return EmissionResult{}, fmt.Errorf("%w: weight_kg must be positive", ErrInvalidInput)
		}
		res.Origin, res.Destination, res.WeightKg, res.Carrier = req.Origin, req.Destination, *req.WeightKg, req.Carrier
	}

	if req.DistanceKm != nil {
		distance = req.DistanceKm
	}
	res.DistanceKm = tables.Distance(res.Origin, res.Destination)
	if distance != nil {
		res.DistanceKm = *distance
	}

	res.Mode = req.Mode
	if res.Mode == nil && res.Carrier != nil {
		res.Mode = estimate.CarrierMode(tables.Carrier(*res.Carrier))
	}
	res.EmissionKgCO2e, res.EmissionCalculation = estimate.Emission(res.WeightKg, res.DistanceKm, res.Mode, req.EmissionFactor, tables)
	return res, nil
}

// CalculateCost prices a leg from an explicit rate or the named carrier's rate.
func (s *OptimizerService) CalculateCost(ctx context.Context, req CostRequest) (CostResult, error) {
	tables, err := s.tables(ctx)
	if err != nil {
		return CostResult{}, err
	}

	res := CostResult{ShipmentID: req.ShipmentID, Origin: req.Origin, Destination: req.Destination, Carrier: req.Carrier}
	var distance *float64
	if req.ShipmentID != "" {
		sh, err := s.find(ctx, req.ShipmentID)
		if err != nil {
			return CostResult{}, err
		}
		res.Origin, res.Destination = sh.Origin, sh.Destination
		if res.Carrier == nil {
			res.Carrier = sh.Carrier
		}
		distance = sh.DistanceKm
	} else if req.DistanceKm == nil && (strings.TrimSpace(req.Origin) == "" || strings.TrimSpace(req.Destination) == "") {
		return CostResult{}, fmt.Errorf("%w: shipment_id, distance_km or origin and destination are required", ErrInvalidInput)
	}

	if req.DistanceKm != nil {
		distance = req.DistanceKm
	}
	res.DistanceKm = tables.Distance(res.Origin, res.Destination)
	if distance != nil {
		res.DistanceKm = *distance
	}

	switch {
	case req.CostPerKm != nil:
		res.CostPerKm = *req.CostPerKm
	case res.Carrier != nil && tables.Carrier(*res.Carrier) != nil:
		res.CostPerKm = tables.Carrier(*res.Carrier).BaseCostPerKm
	default:
		return CostResult{}, fmt.Errorf("%w: cost_per_km or a known carrier is required", ErrInvalidInput)
	}
	if req.SurchargesUSD != nil {
		res.SurchargesUSD = *req.SurchargesUSD
	}
	res.CostUSD = estimate.Cost(res.DistanceKm, res.CostPerKm, res.SurchargesUSD)
	return res, nil
}

// Optimize compares the shipment's carrier against every alternative.
func (s *OptimizerService) Optimize(ctx context.Context, id string, policy *models.Policy) (optimize.Result, error) {
	tables, err := s.tables(ctx)
	if err != nil {
		return optimize.Result{}, err
	}
	sh, err := s.find(ctx, id)
	if err != nil {
		return optimize.Result{}, err
	}
	res := optimize.Optimize(sh, tables, policy, s.clock())
	if res.PolicySatisfied != nil && !*res.PolicySatisfied {
		s.logger.InfoContext(ctx, "no alternative satisfies policy, recommending best overall", "shipment_id", id)
	}
	return res, nil
}

// Simulate prices a what-if scenario. Nothing is written back.
func (s *OptimizerService) Simulate(ctx context.Context, id string, overrides optimize.Overrides, policy *models.Policy) (optimize.SimulationResult, error) {
	tables, err := s.tables(ctx)
	if err != nil {
		return optimize.SimulationResult{}, err
	}
	sh, err := s.find(ctx, id)
	if err != nil {
		return optimize.SimulationResult{}, err
	}
	return optimize.Simulate(sh, overrides, tables, policy, s.clock()), nil
}

// RecordDecision applies an approval or rejection, persists it and publishes a
// decision event. A publish failure is logged; the decision stays recorded.
func (s *OptimizerService) RecordDecision(ctx context.Context, in DecisionInput) (DecisionResult, error) {
	if strings.TrimSpace(in.ShipmentID) == "" {
		return DecisionResult{}, fmt.Errorf("%w: shipment_id is required", ErrInvalidInput)
	}
	if in.Status != models.StatusApproved && in.Status != models.StatusRejected {
		return DecisionResult{}, fmt.Errorf("%w: status must be %s or %s", ErrInvalidInput, models.StatusApproved, models.StatusRejected)
	}
	tables, err := s.tables(ctx)
	if err != nil {
		return DecisionResult{}, err
	}

	var outcome decision.Outcome
	_, err = s.shipments.Update(ctx, func(ss []models.Shipment) ([]models.Shipment, bool, error) {
		var out []models.Shipment
		out, outcome = decision.Record(ss, decision.Decision{
			ShipmentID:    in.ShipmentID,
			Status:        in.Status,
			ChosenCarrier: in.ChosenCarrier,
			Comments:      in.Comments,
		}, tables)
		return out, outcome.Found, nil
	})
	if err != nil {
		return DecisionResult{}, fmt.Errorf("record decision for %s: %w", in.ShipmentID, err)
	}
	if !outcome.Found {
		return DecisionResult{}, fmt.Errorf("%s: %w", in.ShipmentID, ErrShipmentNotFound)
	}

	sh := outcome.Shipment
	s.logger.InfoContext(ctx, "decision recorded",
		"shipment_id", sh.ID, "status", sh.Status, "carrier", sh.CarrierName())
	s.publish(ctx, outcome)

	res := DecisionResult{
		Message:    "Approval recorded",
		ShipmentID: sh.ID,
		Status:     sh.Status,
		Comments:   in.Comments,
		Shipment:   sh,
	}
	if in.Status == models.StatusApproved {
		res.ChosenCarrier = in.ChosenCarrier
	} else {
		res.Message = "Rejection recorded"
	}
	return res, nil
}

func (s *OptimizerService) publish(ctx context.Context, outcome decision.Outcome) {
	sh := outcome.Shipment
	name := contracts.EventShipmentApproved
	if sh.Status == models.StatusRejected {
		name = contracts.EventShipmentRejected
	}
	ev := contracts.NewDecisionEvent(name, sh.ID, string(sh.Status), s.clock())
	ev.PreviousCarrier = outcome.PreviousCarrier
	ev.Carrier = sh.Carrier
	if sh.ApproverComments != nil {
		ev.Comments = *sh.ApproverComments
	}
	ev.CurrentCostUSD = sh.CurrentCostUSD
	ev.CurrentEmissionKg = sh.CurrentEmissionKgCO2e

	if err := s.producer.Publish(ctx, sh.ID, ev); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish decision event", "shipment_id", sh.ID, "event_id", ev.EventID, "error", err)
	}
}

// Dashboard ensures baselines and aggregates the collection.
func (s *OptimizerService) Dashboard(ctx context.Context) (dashboard.Dashboard, error) {
	tables, err := s.tables(ctx)
	if err != nil {
		return dashboard.Dashboard{}, err
	}
	ss, err := s.shipments.Update(ctx, func(ss []models.Shipment) ([]models.Shipment, bool, error) {
		out, changed := baseline.EnsureBaselines(ss, tables)
		return out, changed, nil
	})
	if err != nil {
		return dashboard.Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	return dashboard.Summarize(ss), nil
}

func (s *OptimizerService) find(ctx context.Context, id string) (models.Shipment, error) {
	ss, err := s.shipments.Load(ctx)
	if err != nil {
		return models.Shipment{}, fmt.Errorf("load shipments: %w", err)
	}
	for _, sh := range ss {
		if sh.ID == id {
			return sh, nil
		}
	}
	return models.Shipment{}, fmt.Errorf("%s: %w", id, ErrShipmentNotFound)
}

func view(sh models.Shipment, tables *reference.Tables) ShipmentView {
	return ShipmentView{Shipment: sh, Mode: estimate.CarrierMode(tables.Carrier(sh.CarrierName()))}
}
