package adapter

import (
	"context"

	"carta-do-futuro/internal/domain/model"
)

// PaymentGateway is the hex port for the hosted checkout provider.
type PaymentGateway interface {
	Name() string

	// CreatePreference registers a payable line-item set with the provider
	// and returns its id plus the hosted checkout URL.
	CreatePreference(ctx context.Context, req model.PreferenceRequest) (*model.Preference, error)

	// GetPayment fetches a payment resource by provider id. This is the
	// authoritative read used by webhook processing: notifications carry
	// only the payment id, and re-fetching also covers deployments that
	// run without a webhook shared secret.
	GetPayment(ctx context.Context, paymentID string) (*model.PaymentNotification, error)
}
