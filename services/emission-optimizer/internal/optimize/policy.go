package optimize

import (
	"time"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/estimate"
	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
)

// Alignment is the per candidate policy check. A nil predicate was not evaluated,
// either because the policy did not ask for it or because an input was missing.
type Alignment struct {
	EmissionReductionPctVsCurrent *float64 `json:"emission_reduction_pct_vs_current"`
	MeetsMinEmissionReduction     bool     `json:"meets_min_emission_reduction"`
	WithinBudgetCap               *bool    `json:"within_budget_cap"`
	WithinBudgetIncreasePct       *bool    `json:"within_budget_increase_pct"`
	SLAMet                        *bool    `json:"sla_met"`
}

// baseline is what a candidate is measured against.
type baseline struct {
	emissionKg float64
	costUSD    float64
}

// constraining drops a policy that carries no constraint, such as one with only
// an sla_priority label.
func constraining(p *models.Policy) *models.Policy {
	if p == nil || p.IsEmpty() {
		return nil
	}
	return p
}

// evaluate checks one candidate against p. now only matters for the SLA check.
func evaluate(cur baseline, emissionKg, costUSD float64, transitDays *int, p models.Policy, now time.Time) Alignment {
	var a Alignment

	if cur.emissionKg != 0 {
		pct := estimate.Round2((cur.emissionKg - emissionKg) / cur.emissionKg * 100)
		a.EmissionReductionPctVsCurrent = &pct
		a.MeetsMinEmissionReduction = pct >= p.MinEmissionReductionPct()
	}

	if p.BudgetCapUSD != nil {
		ok := costUSD <= *p.BudgetCapUSD
		a.WithinBudgetCap = &ok
	}

	if p.BudgetIncreaseMaxPct != nil && cur.costUSD != 0 {
		ok := costUSD <= cur.costUSD*(1+*p.BudgetIncreaseMaxPct/100)
		a.WithinBudgetIncreasePct = &ok
	}

	if p.SLADueDate != nil && transitDays != nil {
		ok := slaMet(now, *transitDays, *p.SLADueDate)
		a.SLAMet = &ok
	}
	return a
}

// compliant reports whether every predicate p asks for holds. An SLA that could not
// be checked (no transit estimate) counts as missed.
func (a Alignment) compliant(p models.Policy) bool {
	if !a.MeetsMinEmissionReduction {
		return false
	}
	if a.WithinBudgetCap != nil && !*a.WithinBudgetCap {
		return false
	}
	if a.WithinBudgetIncreasePct != nil && !*a.WithinBudgetIncreasePct {
		return false
	}
	if p.SLADueDate != nil && (a.SLAMet == nil || !*a.SLAMet) {
		return false
	}
	return true
}

// slaMet compares calendar days: arriving on the due date is on time.
func slaMet(now time.Time, transitDays int, due time.Time) bool {
	y, m, d := now.UTC().Date()
	arrival := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, transitDays)
	dy, dm, dd := due.Date()
	return !arrival.After(time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC))
}
