package model

import (
	"time"

	"carta-do-futuro/internal/domain"
)

// Profile is the per-user entitlement record. The id matches the auth
// provider's subject identifier; rows are created at registration with
// PlanType none and are mutated only by the entitlement reconciler.
type Profile struct {
	ID              string
	Email           string
	PlanType        PlanType
	AccessExpiresAt *time.Time // nil means lifetime access or not yet granted
	PurchasedAt     *time.Time
	PayerID         *string // gateway payer identifier
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewProfile(id, email string) (*Profile, error) {
	if id == "" || email == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Profile{
		ID:        id,
		Email:     email,
		PlanType:  PlanTypeNone,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *Profile) IsZero() bool { return p == nil || p.ID == "" }

// HasActiveAccess reports whether the profile's entitlement gates features
// open at the given instant. Full access never expires; basic access holds
// until AccessExpiresAt.
func (p *Profile) HasActiveAccess(at time.Time) bool {
	switch p.PlanType {
	case PlanTypeFull:
		return true
	case PlanTypeBasic:
		return p.AccessExpiresAt == nil || at.Before(*p.AccessExpiresAt)
	default:
		return false
	}
}

// Entitlement is the derived state a confirmed payment grants.
type Entitlement struct {
	PlanType        PlanType
	AccessExpiresAt *time.Time
	PurchasedAt     time.Time
	PayerID         *string
}

// EntitlementFor computes the entitlement a plan purchase grants at the
// given approval time. Basic access runs one calendar year from approval
// (AddDate normalizes Feb 29 to Mar 1 on non-leap years, matching the
// gateway's own calendar arithmetic); full access carries no expiry.
func EntitlementFor(plan Plan, approvedAt time.Time) Entitlement {
	e := Entitlement{PlanType: plan.Grants, PurchasedAt: approvedAt}
	if plan.YearlyExpiry {
		exp := approvedAt.AddDate(1, 0, 0)
		e.AccessExpiresAt = &exp
	}
	return e
}
