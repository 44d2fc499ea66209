//go:build !integration

package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carta-do-futuro/internal/domain/model"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *MercadoPagoGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g, err := NewMercadoPagoGateway("test-token", time.Second)
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	g.SetBaseURL(srv.URL)
	return g
}

func TestMercadoPagoGateway_CreatePreference(t *testing.T) {
	ctx := context.Background()

	req := model.PreferenceRequest{
		ItemID:            model.PlanIDBasic,
		Title:             "Plano Básico - Carta do Futuro",
		Quantity:          1,
		UnitPriceCents:    2300,
		Currency:          "BRL",
		PayerEmail:        "user@example.com",
		SuccessURL:        "https://carta.example/dashboard/plano?pagamento=sucesso_mp",
		FailureURL:        "https://carta.example/dashboard/plano?pagamento=falha_mp",
		PendingURL:        "https://carta.example/dashboard/plano?pagamento=pendente_mp",
		NotificationURL:   "https://carta.example/api/mercado-pago/webhook",
		ExternalReference: "user-1",
	}

	t.Run("sends the documented payload and decodes the response", func(t *testing.T) {
		var captured map[string]interface{}
		g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/checkout/preferences" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("unexpected authorization header %q", got)
			}
			if r.Header.Get("X-Idempotency-Key") == "" {
				t.Error("expected an idempotency key")
			}
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"pref-123","init_point":"https://mp.example/init/pref-123"}`))
		})

		pref, err := g.CreatePreference(ctx, req)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if pref.ID != "pref-123" || !strings.Contains(pref.InitPoint, "pref-123") {
			t.Errorf("unexpected preference: %+v", pref)
		}

		items := captured["items"].([]interface{})
		item := items[0].(map[string]interface{})
		if item["unit_price"].(float64) != 23.00 {
			t.Errorf("expected unit_price 23.00, got %v", item["unit_price"])
		}
		if item["currency_id"] != "BRL" {
			t.Errorf("expected currency BRL, got %v", item["currency_id"])
		}
		if captured["auto_return"] != "approved" {
			t.Errorf("expected auto_return approved, got %v", captured["auto_return"])
		}
		if captured["external_reference"] != "user-1" {
			t.Errorf("expected external_reference user-1, got %v", captured["external_reference"])
		}
		back := captured["back_urls"].(map[string]interface{})
		if !strings.Contains(back["success"].(string), "sucesso_mp") {
			t.Errorf("unexpected success back URL %v", back["success"])
		}
	})

	t.Run("surfaces the API error message", func(t *testing.T) {
		g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"invalid access token"}`))
		})

		_, err := g.CreatePreference(ctx, req)
		if err == nil || !strings.Contains(err.Error(), "invalid access token") {
			t.Fatalf("expected the API message in the error, got %v", err)
		}
	})

	t.Run("rejects a response without an init point", func(t *testing.T) {
		g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"pref-123"}`))
		})

		if _, err := g.CreatePreference(ctx, req); err == nil {
			t.Fatal("expected an error, but got nil")
		}
	})
}

func TestMercadoPagoGateway_GetPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("maps the payment resource onto the notification shape", func(t *testing.T) {
		g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/payments/123456" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			_, _ = w.Write([]byte(`{
				"id": 123456,
				"status": "approved",
				"external_reference": "user-1",
				"transaction_amount": 23.00,
				"date_approved": "2026-03-15T12:00:00.000-03:00",
				"payer": {"id": "payer-9"},
				"additional_info": {"items": [{"id": "basic_plan_23"}]}
			}`))
		})

		n, err := g.GetPayment(ctx, "123456")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if n.PaymentID != "123456" {
			t.Errorf("numeric id not normalized: %q", n.PaymentID)
		}
		if n.Status != model.PaymentStatusApproved {
			t.Errorf("expected approved, got %s", n.Status)
		}
		if n.AmountCents != 2300 {
			t.Errorf("expected 2300 centavos, got %d", n.AmountCents)
		}
		if n.ItemID != model.PlanIDBasic {
			t.Errorf("expected item id %s, got %s", model.PlanIDBasic, n.ItemID)
		}
		if n.PayerID != "payer-9" {
			t.Errorf("expected payer-9, got %s", n.PayerID)
		}
		if n.ApprovedAt == nil {
			t.Error("expected a parsed approval date")
		}
	})

	t.Run("tolerates numeric payer ids and a null approval date", func(t *testing.T) {
		g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"id": "789",
				"status": "pending",
				"transaction_amount": 30,
				"payer": {"id": 42}
			}`))
		})

		n, err := g.GetPayment(ctx, "789")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if n.PayerID != "42" {
			t.Errorf("expected payer id 42, got %q", n.PayerID)
		}
		if n.AmountCents != 3000 {
			t.Errorf("expected 3000 centavos, got %d", n.AmountCents)
		}
		if n.ApprovedAt != nil {
			t.Errorf("expected nil approval date, got %v", n.ApprovedAt)
		}
	})

	t.Run("fails on non-2xx responses", func(t *testing.T) {
		g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Payment not found"}`))
		})

		if _, err := g.GetPayment(ctx, "999"); err == nil {
			t.Fatal("expected an error, but got nil")
		}
	})

	t.Run("rejects an empty payment id without a request", func(t *testing.T) {
		g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		if _, err := g.GetPayment(ctx, ""); err == nil {
			t.Fatal("expected an error, but got nil")
		}
	})
}
