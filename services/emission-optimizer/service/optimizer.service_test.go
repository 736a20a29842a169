package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/optimize"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/store"
	"github.com/Tanmoy095/LogiSynapse/shared/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticSource serves fixed reference tables.
type staticSource struct {
	carriers  []models.Carrier
	distances map[string]float64
	factors   map[string]float64
}

func (s staticSource) Carriers(context.Context) ([]models.Carrier, error)          { return s.carriers, nil }
func (s staticSource) Distances(context.Context) (map[string]float64, error)       { return s.distances, nil }
func (s staticSource) EmissionFactors(context.Context) (map[string]float64, error) { return s.factors, nil }

// MockPublisher records published events.
type MockPublisher struct {
	events []contracts.DecisionEvent
	err    error
}

func (m *MockPublisher) Publish(_ context.Context, _ string, value any) error {
	if ev, ok := value.(contracts.DecisionEvent); ok {
		m.events = append(m.events, ev)
	}
	return m.err
}

func (m *MockPublisher) Close() error { return nil }

// failingStore fails every call.
type failingStore struct{}

func (failingStore) Load(context.Context) ([]models.Shipment, error) { return nil, errors.New("disk gone") }
func (failingStore) Save(context.Context, []models.Shipment) error   { return errors.New("disk gone") }

var fixedNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func refData() staticSource {
	return staticSource{
		carriers: []models.Carrier{
			{Name: "RoadCo", Mode: "road", BaseCostPerKm: 0.4},
			{Name: "RailCo", Mode: "rail", BaseCostPerKm: 0.3},
			{Name: "FastAir", Mode: "air", BaseCostPerKm: 1.5},
		},
		distances: map[string]float64{"NYC-BOS": 400},
		factors:   map[string]float64{"road": 0.1, "rail": 0.02, "air": 0.5},
	}
}

func newService(t *testing.T, pub *MockPublisher, seed ...models.Shipment) (*OptimizerService, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore(seed...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewOptimizerService(st, refData(), pub, logger).WithClock(func() time.Time { return fixedNow })
	return svc, st
}

func seedShipment() models.Shipment {
	return models.Shipment{ID: "S1", Origin: "NYC", Destination: "BOS", WeightKg: 2000, Carrier: models.StringPtr("RoadCo")}
}

func TestEnsureBaselines_PersistsOnce(t *testing.T) {
	svc, st := newService(t, nil, seedShipment())
	ctx := context.Background()

	changed, err := svc.EnsureBaselines(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.EnsureBaselines(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	ss, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RoadCo", *ss[0].OriginalCarrier)
	assert.Equal(t, 80.0, *ss[0].OriginalEmissionKgCO2e)
}

func TestGetShipment(t *testing.T) {
	svc, _ := newService(t, nil, seedShipment(), models.Shipment{ID: "S2", Origin: "A", Destination: "B", WeightKg: 1})
	ctx := context.Background()

	v, err := svc.GetShipment(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "road", *v.Mode)

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"mode":"road"`)

	mi, err := svc.ShipmentMode(ctx, "S2")
	require.NoError(t, err)
	assert.Nil(t, mi.Mode)

	_, err = svc.GetShipment(ctx, "missing")
	assert.ErrorIs(t, err, ErrShipmentNotFound)

	list, err := svc.ListShipments(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCalculateEmission(t *testing.T) {
	svc, _ := newService(t, nil, seedShipment())
	ctx := context.Background()

	res, err := svc.CalculateEmission(ctx, EmissionRequest{ShipmentID: "S1"})
	require.NoError(t, err)
	assert.Equal(t, 80.0, res.EmissionKgCO2e)
	assert.Equal(t, "road", *res.Mode)

	res, err = svc.CalculateEmission(ctx, EmissionRequest{ShipmentID: "S1", Mode: models.StringPtr("rail")})
	require.NoError(t, err)
	assert.Equal(t, 16.0, res.EmissionKgCO2e, "explicit mode beats the carrier")

	res, err = svc.CalculateEmission(ctx, EmissionRequest{
		Origin: "X", Destination: "Y", WeightKg: models.FloatPtr(1000), Mode: models.StringPtr("unknown-mode"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, res.DistanceKm)
	assert.Equal(t, 100.0, res.EmissionKgCO2e)
	assert.Equal(t, models.FactorSourceDefault, res.EmissionCalculation.FactorSource)

	res, err = svc.CalculateEmission(ctx, EmissionRequest{
		Origin: "X", Destination: "Y", WeightKg: models.FloatPtr(2000), DistanceKm: models.FloatPtr(500), EmissionFactor: models.FloatPtr(0.5),
	})
	require.NoError(t, err)
	assert.Equal(t, 500.0, res.EmissionKgCO2e)

	_, err = svc.CalculateEmission(ctx, EmissionRequest{Origin: "X"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CalculateEmission(ctx, EmissionRequest{Origin: "X", Destination: "Y", WeightKg: models.FloatPtr(-1)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CalculateEmission(ctx, EmissionRequest{ShipmentID: "nope"})
	assert.ErrorIs(t, err, ErrShipmentNotFound)
}

func TestCalculateCost(t *testing.T) {
	svc, _ := newService(t, nil, seedShipment())
	ctx := context.Background()

	res, err := svc.CalculateCost(ctx, CostRequest{DistanceKm: models.FloatPtr(500), CostPerKm: models.FloatPtr(0.2)})
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.CostUSD)

	res, err = svc.CalculateCost(ctx, CostRequest{DistanceKm: models.FloatPtr(500), CostPerKm: models.FloatPtr(0.2), SurchargesUSD: models.FloatPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, 110.0, res.CostUSD)

	res, err = svc.CalculateCost(ctx, CostRequest{ShipmentID: "S1"})
	require.NoError(t, err)
	assert.Equal(t, 160.0, res.CostUSD)

	res, err = svc.CalculateCost(ctx, CostRequest{ShipmentID: "S1", Carrier: models.StringPtr("RailCo")})
	require.NoError(t, err)
	assert.Equal(t, 120.0, res.CostUSD)

	_, err = svc.CalculateCost(ctx, CostRequest{Origin: "NYC", Destination: "BOS"})
	assert.ErrorIs(t, err, ErrInvalidInput, "no rate")
	_, err = svc.CalculateCost(ctx, CostRequest{CostPerKm: models.FloatPtr(1)})
	assert.ErrorIs(t, err, ErrInvalidInput, "no distance")
}

func TestOptimize(t *testing.T) {
	svc, _ := newService(t, nil, seedShipment())
	ctx := context.Background()

	res, err := svc.Optimize(ctx, "S1", nil)
	require.NoError(t, err)
	require.NotNil(t, res.Recommended)
	assert.Equal(t, "RailCo", res.Recommended.Carrier)

	due := fixedNow.AddDate(0, 0, 2)
	res, err = svc.Optimize(ctx, "S1", &models.Policy{SLADueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, res.PolicySatisfied)
	assert.False(t, *res.PolicySatisfied, "RailCo takes 4 days and FastAir emits more")
	assert.Equal(t, "RailCo", res.Recommended.Carrier, "fallback ranks every alternative")

	_, err = svc.Optimize(ctx, "nope", nil)
	assert.ErrorIs(t, err, ErrShipmentNotFound)
}

func TestSimulate_DoesNotPersist(t *testing.T) {
	svc, st := newService(t, nil, seedShipment())
	ctx := context.Background()
	_, err := svc.EnsureBaselines(ctx)
	require.NoError(t, err)
	before, err := st.Load(ctx)
	require.NoError(t, err)

	res, err := svc.Simulate(ctx, "S1", optimize.Overrides{Carrier: models.StringPtr("RailCo")}, nil)
	require.NoError(t, err)
	assert.Equal(t, -64.0, res.Comparison.EmissionDeltaKg)

	after, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRecordDecision_ApprovePublishes(t *testing.T) {
	pub := &MockPublisher{}
	svc, st := newService(t, pub, seedShipment())
	ctx := context.Background()

	res, err := svc.RecordDecision(ctx, DecisionInput{
		ShipmentID: "S1", Status: models.StatusApproved, ChosenCarrier: models.StringPtr("RailCo"), Comments: "ok",
	})
	require.NoError(t, err)
	assert.Equal(t, "Approval recorded", res.Message)
	assert.Equal(t, "RailCo", *res.ChosenCarrier)

	ss, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, ss[0].Status)
	assert.Equal(t, "RoadCo", *ss[0].OriginalCarrier)
	assert.Equal(t, 16.0, *ss[0].CurrentEmissionKgCO2e)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, contracts.EventShipmentApproved, ev.Event)
	assert.Equal(t, "RoadCo", *ev.PreviousCarrier)
	assert.Equal(t, "RailCo", *ev.Carrier)
	assert.Equal(t, fixedNow, ev.OccurredAt)
}

func TestRecordDecision_RejectSurvivesPublishFailure(t *testing.T) {
	pub := &MockPublisher{err: errors.New("broker down")}
	svc, st := newService(t, pub, seedShipment())
	ctx := context.Background()

	res, err := svc.RecordDecision(ctx, DecisionInput{ShipmentID: "S1", Status: models.StatusRejected, Comments: "no"})
	require.NoError(t, err)
	assert.Equal(t, "Rejection recorded", res.Message)
	assert.Nil(t, res.ChosenCarrier)

	ss, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, ss[0].Status)
	assert.Equal(t, contracts.EventShipmentRejected, pub.events[0].Event)
}

func TestRecordDecision_Errors(t *testing.T) {
	pub := &MockPublisher{}
	svc, _ := newService(t, pub, seedShipment())
	ctx := context.Background()

	_, err := svc.RecordDecision(ctx, DecisionInput{ShipmentID: "nope", Status: models.StatusApproved})
	assert.ErrorIs(t, err, ErrShipmentNotFound)
	_, err = svc.RecordDecision(ctx, DecisionInput{ShipmentID: "S1", Status: "MAYBE"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.RecordDecision(ctx, DecisionInput{Status: models.StatusApproved})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, pub.events)
}

func TestDashboard(t *testing.T) {
	svc, _ := newService(t, nil, seedShipment())
	ctx := context.Background()

	_, err := svc.RecordDecision(ctx, DecisionInput{ShipmentID: "S1", Status: models.StatusApproved, ChosenCarrier: models.StringPtr("RailCo")})
	require.NoError(t, err)

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Summary.Approved)
	assert.Equal(t, 80.0, d.Summary.TotalEmissionOriginal)
	assert.Equal(t, 16.0, d.Summary.TotalEmissionCurrent)
	assert.Equal(t, 80.0, d.Summary.TotalEmissionReductionPct)
	assert.Equal(t, -40.0, d.Summary.TotalCostDelta)
}

func TestStoreFailureIsReturned(t *testing.T) {
	svc := NewOptimizerService(failingStore{}, refData(), nil, nil)
	_, err := svc.Dashboard(context.Background())
	assert.Error(t, err)
	_, err = svc.Optimize(context.Background(), "S1", nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrShipmentNotFound)
}
