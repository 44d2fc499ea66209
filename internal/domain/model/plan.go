package model

import "carta-do-futuro/internal/domain"

// PlanType is the entitlement level stored on a profile.
type PlanType string

const (
	PlanTypeNone  PlanType = "none"
	PlanTypeBasic PlanType = "basic"
	PlanTypeFull  PlanType = "full"
)

// Plan identifiers shared between checkout and reconciliation. The string
// values travel through the gateway as line-item ids and must stay stable.
const (
	PlanIDBasic   = "basic_plan_23"
	PlanIDFull    = "full_plan_30"
	PlanIDUpgrade = "upgrade_basic_to_full_7"
)

// Plan is one purchasable offering. PriceCents holds the BRL price in
// centavos to keep catalog and amount-matching exact.
type Plan struct {
	ID         string
	Title      string
	PriceCents int64
	Grants     PlanType
	// YearlyExpiry marks plans whose access window is one calendar year
	// from purchase. Plans without it grant lifetime access.
	YearlyExpiry bool
}

// PriceBRL renders the exact decimal amount the gateway expects.
func (p Plan) PriceBRL() float64 { return float64(p.PriceCents) / 100 }

var catalog = map[string]Plan{
	PlanIDBasic: {
		ID:           PlanIDBasic,
		Title:        "Plano Básico - Carta do Futuro",
		PriceCents:   2300,
		Grants:       PlanTypeBasic,
		YearlyExpiry: true,
	},
	PlanIDFull: {
		ID:         PlanIDFull,
		Title:      "Plano Completo - Carta do Futuro",
		PriceCents: 3000,
		Grants:     PlanTypeFull,
	},
	PlanIDUpgrade: {
		ID:         PlanIDUpgrade,
		Title:      "Upgrade: Básico para Completo",
		PriceCents: 700,
		Grants:     PlanTypeFull,
	},
}

// PlanByID resolves a catalog entry by its identifier.
func PlanByID(id string) (Plan, error) {
	p, ok := catalog[id]
	if !ok {
		return Plan{}, domain.ErrInvalidPlan
	}
	return p, nil
}

// PlanByAmount resolves a catalog entry by exact price in centavos. This is
// the degraded-mode fallback used when a notification echoes no item id;
// callers must log it distinctly from the primary path.
func PlanByAmount(cents int64) (Plan, error) {
	for _, p := range catalog {
		if p.PriceCents == cents {
			return p, nil
		}
	}
	return Plan{}, domain.ErrUnrecognizedPlan
}

// Plans returns the catalog in no particular order.
func Plans() []Plan {
	out := make([]Plan, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, p)
	}
	return out
}
