// File: internal/usecase/entitlement_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"carta-do-futuro/internal/domain"
	"carta-do-futuro/internal/domain/model"
	"carta-do-futuro/internal/domain/ports/repository"
	"carta-do-futuro/internal/infra/metrics"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

type EntitlementUseCase interface {
	// Reconcile converts an approved payment notification into a persisted
	// entitlement on the payer's profile and returns what was granted.
	Reconcile(ctx context.Context, n *model.PaymentNotification) (*model.Entitlement, error)
}

// NotificationDedup remembers which payment ids were already reconciled so
// gateway redeliveries can be acknowledged without touching the store.
// Reconciliation is idempotent regardless (entitlements are recomputed from
// the approval date, never incremented); the dedup store only saves work.
type NotificationDedup interface {
	// MarkProcessed records the id and reports whether this was the first
	// delivery.
	MarkProcessed(ctx context.Context, paymentID string) (first bool, err error)
}

type entitlementUC struct {
	profiles repository.ProfileRepository
	dedup    NotificationDedup // may be nil
	now      func() time.Time
	log      *zerolog.Logger
}

func NewEntitlementUseCase(profiles repository.ProfileRepository, dedup NotificationDedup, log *zerolog.Logger) *entitlementUC {
	return &entitlementUC{profiles: profiles, dedup: dedup, now: time.Now, log: log}
}

func (u *entitlementUC) Reconcile(ctx context.Context, n *model.PaymentNotification) (*model.Entitlement, error) {
	userID := n.ExternalReference
	if userID == "" {
		metrics.IncReconciliation("unknown", "missing_reference")
		u.log.Error().Str("payment_id", n.PaymentID).Msg("notification carries no external reference")
		return nil, domain.ErrMissingReference
	}

	plan, err := u.resolvePlan(n)
	if err != nil {
		metrics.IncReconciliation("unknown", "unrecognized_plan")
		u.log.Warn().
			Str("payment_id", n.PaymentID).
			Str("item_id", n.ItemID).
			Int64("amount_cents", n.AmountCents).
			Str("user_id", userID).
			Msg("plan not recognized by item id or amount")
		return nil, err
	}

	approvedAt := u.now()
	if n.ApprovedAt != nil {
		approvedAt = *n.ApprovedAt
	}
	ent := model.EntitlementFor(plan, approvedAt)
	if n.PayerID != "" {
		payer := n.PayerID
		ent.PayerID = &payer
	}

	if u.dedup != nil && n.PaymentID != "" {
		first, derr := u.dedup.MarkProcessed(ctx, n.PaymentID)
		if derr != nil {
			// Dedup is best-effort; reconciliation stays idempotent without it.
			u.log.Warn().Err(derr).Str("payment_id", n.PaymentID).Msg("dedup store unavailable")
		} else if !first {
			metrics.IncReconciliation(plan.ID, "duplicate")
			u.log.Info().Str("payment_id", n.PaymentID).Str("user_id", userID).Msg("duplicate notification acknowledged")
			return &ent, nil
		}
	}

	if err := u.profiles.UpdateEntitlement(ctx, nil, userID, ent); err != nil {
		switch {
		case errors.Is(err, domain.ErrProfileNotFound):
			metrics.IncReconciliation(plan.ID, "profile_not_found")
			u.log.Error().Str("user_id", userID).Str("payment_id", n.PaymentID).Msg("profile missing during reconciliation")
			return nil, err
		default:
			metrics.IncReconciliation(plan.ID, "persistence_error")
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
	}

	metrics.IncReconciliation(plan.ID, "granted")
	u.log.Info().
		Str("user_id", userID).
		Str("payment_id", n.PaymentID).
		Str("plan", plan.ID).
		Str("plan_type", string(ent.PlanType)).
		Msg("entitlement granted")
	return &ent, nil
}

// resolvePlan keys on the echoed item identifier; exact amount matching is
// the degraded-mode fallback, used only when the notification carries no
// item id at all. A present-but-unknown id is a foreign line item and must
// not be granted, even if its price coincides with a catalog plan.
func (u *entitlementUC) resolvePlan(n *model.PaymentNotification) (model.Plan, error) {
	if n.ItemID != "" {
		plan, err := model.PlanByID(n.ItemID)
		if err != nil {
			return model.Plan{}, domain.ErrUnrecognizedPlan
		}
		return plan, nil
	}
	plan, err := model.PlanByAmount(n.AmountCents)
	if err != nil {
		return model.Plan{}, domain.ErrUnrecognizedPlan
	}
	u.log.Warn().
		Str("payment_id", n.PaymentID).
		Int64("amount_cents", n.AmountCents).
		Str("plan", plan.ID).
		Msg("plan resolved by amount fallback")
	return plan, nil
}
