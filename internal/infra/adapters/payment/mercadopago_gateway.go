// File: internal/infra/adapters/payment/mercadopago_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"carta-do-futuro/internal/domain/model"
	"carta-do-futuro/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*MercadoPagoGateway)(nil)

// MercadoPagoGateway implements adapter.PaymentGateway against the Mercado
// Pago REST API (Checkout Pro preferences + payments read).
type MercadoPagoGateway struct {
	accessToken string
	baseURL     string
	client      *http.Client
}

func NewMercadoPagoGateway(accessToken string, timeout time.Duration) (*MercadoPagoGateway, error) {
	if accessToken == "" {
		return nil, errors.New("access token empty")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MercadoPagoGateway{
		accessToken: accessToken,
		baseURL:     "https://api.mercadopago.com",
		client:      &http.Client{Timeout: timeout},
	}, nil
}

// SetBaseURL points the client at a different API host (sandbox, tests).
func (g *MercadoPagoGateway) SetBaseURL(u string) { g.baseURL = u }

func (g *MercadoPagoGateway) Name() string { return "mercadopago" }

type preferenceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type preferencePayer struct {
	Email string `json:"email"`
}

type preferenceBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferencePayload struct {
	Items             []preferenceItem   `json:"items"`
	Payer             *preferencePayer   `json:"payer,omitempty"`
	BackURLs          preferenceBackURLs `json:"back_urls"`
	AutoReturn        string             `json:"auto_return"`
	NotificationURL   string             `json:"notification_url"`
	ExternalReference string             `json:"external_reference"`
}

// CreatePreference registers a preference via POST /checkout/preferences.
func (g *MercadoPagoGateway) CreatePreference(ctx context.Context, req model.PreferenceRequest) (*model.Preference, error) {
	payload := preferencePayload{
		Items: []preferenceItem{{
			ID:         req.ItemID,
			Title:      req.Title,
			Quantity:   req.Quantity,
			UnitPrice:  float64(req.UnitPriceCents) / 100,
			CurrencyID: req.Currency,
		}},
		AutoReturn:        "approved",
		NotificationURL:   req.NotificationURL,
		ExternalReference: req.ExternalReference,
	}
	payload.BackURLs.Success = req.SuccessURL
	payload.BackURLs.Failure = req.FailureURL
	payload.BackURLs.Pending = req.PendingURL
	if req.PayerEmail != "" {
		payload.Payer = &preferencePayer{Email: req.PayerEmail}
	}

	b, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/checkout/preferences", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.accessToken)
	httpReq.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError("create preference", resp)
	}

	var out struct {
		ID        string `json:"id"`
		InitPoint string `json:"init_point"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ID == "" || out.InitPoint == "" {
		return nil, errors.New("mercadopago: preference response missing id or init_point")
	}
	return &model.Preference{ID: out.ID, InitPoint: out.InitPoint}, nil
}

// GetPayment fetches the payment resource via GET /v1/payments/{id} and
// maps it onto the notification shape the reconciler consumes.
func (g *MercadoPagoGateway) GetPayment(ctx context.Context, paymentID string) (*model.PaymentNotification, error) {
	if paymentID == "" {
		return nil, errors.New("payment id empty")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.accessToken)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError("get payment", resp)
	}

	var out struct {
		ID                flexibleID `json:"id"`
		Status            string     `json:"status"`
		ExternalReference string     `json:"external_reference"`
		TransactionAmount float64    `json:"transaction_amount"`
		DateApproved      string     `json:"date_approved"`
		Payer             struct {
			ID flexibleID `json:"id"`
		} `json:"payer"`
		AdditionalInfo struct {
			Items []struct {
				ID string `json:"id"`
			} `json:"items"`
		} `json:"additional_info"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	n := &model.PaymentNotification{
		PaymentID:         string(out.ID),
		ExternalReference: out.ExternalReference,
		PayerID:           string(out.Payer.ID),
		AmountCents:       int64(math.Round(out.TransactionAmount * 100)),
		Status:            model.PaymentStatus(out.Status),
	}
	if len(out.AdditionalInfo.Items) > 0 {
		n.ItemID = out.AdditionalInfo.Items[0].ID
	}
	if out.DateApproved != "" {
		if t, err := time.Parse(time.RFC3339, out.DateApproved); err == nil {
			n.ApprovedAt = &t
		}
	}
	return n, nil
}

// flexibleID tolerates the API returning ids as numbers or strings.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexibleID(s)
	return nil
}

func apiError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var diag struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &diag)
	if diag.Message != "" {
		return fmt.Errorf("mercadopago %s: http %d: %s", op, resp.StatusCode, diag.Message)
	}
	return fmt.Errorf("mercadopago %s: http %d", op, resp.StatusCode)
}
