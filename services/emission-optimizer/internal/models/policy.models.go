package models

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	// DateLayout is the layout of sla_due_date.
	DateLayout = "2006-01-02"

	DefaultEmissionReductionMinPct = 30.0
	DefaultBudgetIncreaseMaxPct    = 10.0
)

// Policy is a request scoped set of constraints for carrier recommendations.
// It is never persisted.
type Policy struct {
	SLADueDate              *time.Time
	SLAPriority             string // informational only
	BudgetCapUSD            *float64
	BudgetIncreaseMaxPct    *float64
	EmissionReductionMinPct *float64
}

// MinEmissionReductionPct returns the supplied minimum or the default of 30.
func (p Policy) MinEmissionReductionPct() float64 {
	if p.EmissionReductionMinPct != nil {
		return *p.EmissionReductionMinPct
	}
	return DefaultEmissionReductionMinPct
}

// MaxBudgetIncreasePct returns the supplied ceiling or the default of 10.
func (p Policy) MaxBudgetIncreasePct() float64 {
	if p.BudgetIncreaseMaxPct != nil {
		return *p.BudgetIncreaseMaxPct
	}
	return DefaultBudgetIncreaseMaxPct
}

// IsEmpty reports whether no constraint was supplied. SLAPriority is a label and
// does not count.
func (p Policy) IsEmpty() bool {
	return p.SLADueDate == nil &&
		p.BudgetCapUSD == nil &&
		p.BudgetIncreaseMaxPct == nil &&
		p.EmissionReductionMinPct == nil
}

// MarshalJSON echoes the policy with its effective thresholds.
func (p Policy) MarshalJSON() ([]byte, error) {
	var due *string
	if p.SLADueDate != nil {
		d := p.SLADueDate.Format(DateLayout)
		due = &d
	}
	return json.Marshal(struct {
		SLADueDate              *string  `json:"sla_due_date"`
		SLAPriority             string   `json:"sla_priority,omitempty"`
		BudgetCapUSD            *float64 `json:"budget_cap_usd"`
		EmissionReductionMinPct float64  `json:"emission_reduction_min_pct"`
		BudgetIncreaseMaxPct    float64  `json:"budget_increase_max_pct"`
	}{
		SLADueDate:              due,
		SLAPriority:             p.SLAPriority,
		BudgetCapUSD:            p.BudgetCapUSD,
		EmissionReductionMinPct: p.MinEmissionReductionPct(),
		BudgetIncreaseMaxPct:    p.MaxBudgetIncreasePct(),
	})
}

// PolicyInput is the raw policy as it arrives in a request body.
type PolicyInput struct {
	SLADueDate              *string  `json:"sla_due_date,omitempty"`
	SLAPriority             *string  `json:"sla_priority,omitempty"`
	BudgetCapUSD            *float64 `json:"budget_cap_usd,omitempty"`
	EmissionReductionMinPct *float64 `json:"emission_reduction_min_pct,omitempty"`
	BudgetIncreaseMaxPct    *float64 `json:"budget_increase_max_pct,omitempty"`
}

// Policy converts the input. A malformed due date is dropped rather than failing
// the request, and an input with nothing usable yields nil (no policy).
func (in PolicyInput) Policy() *Policy {
	p := Policy{
		BudgetCapUSD:            in.BudgetCapUSD,
		BudgetIncreaseMaxPct:    in.BudgetIncreaseMaxPct,
		EmissionReductionMinPct: in.EmissionReductionMinPct,
	}
	if in.SLAPriority != nil {
		p.SLAPriority = strings.TrimSpace(*in.SLAPriority)
	}
	if in.SLADueDate != nil {
		p.SLADueDate = ParseDueDate(*in.SLADueDate)
	}
	if p.IsEmpty() {
		return nil
	}
	return &p
}

// ParseDueDate accepts YYYY-MM-DD or RFC 3339 and returns nil for anything else.
func ParseDueDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &day
	}
	return nil
}
