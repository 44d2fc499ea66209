// File: internal/infra/web/webhook.go
package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"carta-do-futuro/internal/domain"
	"carta-do-futuro/internal/domain/model"
	"carta-do-futuro/internal/infra/logging"
	"carta-do-futuro/internal/infra/metrics"
)

// webhookBody is the notification envelope the gateway POSTs. The payment id
// usually also rides in the `data.id` query parameter.
type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// handleWebhook receives asynchronous payment notifications. The response
// status drives the gateway's redelivery: permanent reconciliation failures
// are acknowledged with 200 so redelivery stops, transient ones return 5xx
// so the gateway retries.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := "error"
	defer func() {
		metrics.ObserveWebhookDuration(result, time.Since(start).Seconds())
	}()

	paymentID := r.URL.Query().Get("data.id")
	if paymentID == "" {
		paymentID = r.URL.Query().Get("id")
	}
	var body webhookBody
	if b, err := io.ReadAll(io.LimitReader(r.Body, 64<<10)); err == nil && len(b) > 0 {
		if json.Unmarshal(b, &body) == nil && paymentID == "" {
			paymentID = body.Data.ID
		}
	}
	if paymentID == "" {
		result = "no_payment_id"
		writeError(w, http.StatusBadRequest, "notification carries no payment id", "")
		return
	}
	log := logging.With(logging.WithPaymentID(r.Context(), paymentID), s.log)

	sigStatus, err := s.signature.Verify(r.Header.Get("x-signature"), r.Header.Get("x-request-id"), paymentID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSignatureMalformed):
			metrics.IncWebhook("malformed")
			result = "signature_malformed"
			writeError(w, http.StatusBadRequest, "missing or malformed x-signature header", "")
		default:
			metrics.IncWebhook("invalid")
			result = "signature_invalid"
			log.Warn().Msg("webhook signature mismatch")
			writeError(w, http.StatusUnauthorized, "invalid signature", "")
		}
		return
	}
	metrics.IncWebhook(string(sigStatus))
	if sigStatus == SignatureSkipped {
		log.Debug().Msg("no webhook secret configured; relying on gateway re-fetch")
	}

	// The notification itself is untrusted and sparse; the payment resource
	// fetched from the gateway is the authoritative input.
	payment, err := s.gateway.GetPayment(r.Context(), paymentID)
	if err != nil {
		result = "gateway_fetch_failed"
		log.Error().Err(err).Msg("payment fetch failed")
		writeError(w, http.StatusBadGateway, "failed to fetch payment from gateway", "")
		return
	}
	if payment.Status != model.PaymentStatusApproved {
		result = "not_approved"
		log.Info().Str("status", string(payment.Status)).Msg("ignoring non-approved payment")
		w.WriteHeader(http.StatusOK)
		return
	}

	if _, err := s.entitlementUC.Reconcile(r.Context(), payment); err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingReference), errors.Is(err, domain.ErrUnrecognizedPlan):
			// Permanent for this notification: redelivery cannot fix it.
			result = "permanent_failure"
			log.Error().Err(err).Msg("notification dropped")
			w.WriteHeader(http.StatusOK)
		default:
			result = "transient_failure"
			writeError(w, http.StatusInternalServerError, "reconciliation failed", "")
		}
		return
	}

	result = "ok"
	w.WriteHeader(http.StatusOK)
}
