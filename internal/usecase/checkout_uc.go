// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"carta-do-futuro/internal/domain"
	"carta-do-futuro/internal/domain/model"
	"carta-do-futuro/internal/domain/ports/adapter"
	"carta-do-futuro/internal/infra/metrics"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

type CheckoutUseCase interface {
	// CreateCheckout registers a payment preference for the caller and
	// returns the hosted checkout session to redirect to.
	CreateCheckout(ctx context.Context, caller adapter.AuthUser, planID string) (*model.CheckoutSession, error)
}

type checkoutUC struct {
	gateway   adapter.PaymentGateway
	baseURL   string // public application base URL, no trailing slash
	notifyURL string // server-to-server notification endpoint
	log       *zerolog.Logger
}

func NewCheckoutUseCase(gateway adapter.PaymentGateway, baseURL, notifyURL string, log *zerolog.Logger) *checkoutUC {
	return &checkoutUC{gateway: gateway, baseURL: baseURL, notifyURL: notifyURL, log: log}
}

func (u *checkoutUC) CreateCheckout(ctx context.Context, caller adapter.AuthUser, planID string) (*model.CheckoutSession, error) {
	if caller.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	plan, err := model.PlanByID(planID)
	if err != nil {
		metrics.IncCheckout(planID, "invalid_plan")
		return nil, err
	}

	req := model.PreferenceRequest{
		ItemID:            plan.ID,
		Title:             plan.Title,
		Quantity:          1,
		UnitPriceCents:    plan.PriceCents,
		Currency:          "BRL",
		PayerEmail:        caller.Email,
		SuccessURL:        u.backURL("sucesso_mp", plan.ID),
		FailureURL:        u.backURL("falha_mp", ""),
		PendingURL:        u.backURL("pendente_mp", ""),
		NotificationURL:   u.notifyURL,
		ExternalReference: caller.ID,
	}

	pref, err := u.gateway.CreatePreference(ctx, req)
	if err != nil {
		metrics.IncCheckout(plan.ID, "gateway_error")
		u.log.Error().Err(err).Str("plan", plan.ID).Str("user_id", caller.ID).Msg("preference creation failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	if pref.ID == "" || pref.InitPoint == "" {
		metrics.IncCheckout(plan.ID, "gateway_error")
		return nil, fmt.Errorf("%w: gateway returned no init point", domain.ErrGateway)
	}

	metrics.IncCheckout(plan.ID, "ok")
	u.log.Info().Str("plan", plan.ID).Str("user_id", caller.ID).Str("preference_id", pref.ID).Msg("checkout preference created")
	return &model.CheckoutSession{PreferenceID: pref.ID, InitPoint: pref.InitPoint}, nil
}

// backURL builds a plan-page callback URL carrying the payment outcome and,
// for successful returns, the purchased plan identifier.
func (u *checkoutUC) backURL(outcome, planID string) string {
	q := url.Values{}
	q.Set("pagamento", outcome)
	if planID != "" {
		q.Set("compra", planID)
	}
	return u.baseURL + "/dashboard/plano?" + q.Encode()
}
