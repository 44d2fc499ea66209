//go:build !integration

package web

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"carta-do-futuro/internal/domain"
	"carta-do-futuro/internal/domain/model"
	"carta-do-futuro/internal/domain/ports/adapter"
	"carta-do-futuro/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// --- Mock Adapters (Ports) ---

type mockVerifier struct {
	User *adapter.AuthUser
	Err  error
}

func (m *mockVerifier) VerifyToken(ctx context.Context, token string) (*adapter.AuthUser, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.User == nil {
		return nil, domain.ErrUnauthenticated
	}
	return m.User, nil
}

type mockGateway struct {
	Payments map[string]*model.PaymentNotification
	GetErr   error

	CreatePreferenceFunc func(ctx context.Context, req model.PreferenceRequest) (*model.Preference, error)
	GetCalls             int
	CreateCalls          int
}

func (m *mockGateway) Name() string { return "mock" }

func (m *mockGateway) CreatePreference(ctx context.Context, req model.PreferenceRequest) (*model.Preference, error) {
	m.CreateCalls++
	if m.CreatePreferenceFunc != nil {
		return m.CreatePreferenceFunc(ctx, req)
	}
	return &model.Preference{ID: "pref-1", InitPoint: "https://checkout.example/init"}, nil
}

func (m *mockGateway) GetPayment(ctx context.Context, paymentID string) (*model.PaymentNotification, error) {
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.Payments[paymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// --- Mock Use Cases ---

type mockCheckoutUC struct {
	Session *model.CheckoutSession
	Err     error
	Calls   int
	LastID  string
}

func (m *mockCheckoutUC) CreateCheckout(ctx context.Context, caller adapter.AuthUser, planID string) (*model.CheckoutSession, error) {
	m.Calls++
	m.LastID = planID
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Session, nil
}

type mockEntitlementUC struct {
	Ent   *model.Entitlement
	Err   error
	Calls int
	Last  *model.PaymentNotification
}

func (m *mockEntitlementUC) Reconcile(ctx context.Context, n *model.PaymentNotification) (*model.Entitlement, error) {
	m.Calls++
	m.Last = n
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Ent, nil
}

type mockResumeUC struct {
	Token   string
	Session *model.CheckoutSession
	Err     error
}

func (m *mockResumeUC) Issue(ctx context.Context, planID string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Token, nil
}

func (m *mockResumeUC) Consume(ctx context.Context, token string, caller adapter.AuthUser) (*model.CheckoutSession, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Session, nil
}

type mockLetterUC struct {
	Letter  *model.Letter
	Letters []*model.Letter
	URL     string
	Err     error

	LastMedia *usecase.MediaUpload
}

func (m *mockLetterUC) Create(ctx context.Context, userID, title, body string, scheduled time.Time, media *usecase.MediaUpload) (*model.Letter, error) {
	m.LastMedia = media
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Letter, nil
}

func (m *mockLetterUC) Get(ctx context.Context, userID, id string) (*model.Letter, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Letter, nil
}

func (m *mockLetterUC) List(ctx context.Context, userID string, offset, limit int) ([]*model.Letter, int, error) {
	if m.Err != nil {
		return nil, 0, m.Err
	}
	return m.Letters, len(m.Letters), nil
}

func (m *mockLetterUC) Delete(ctx context.Context, userID, id string) error {
	return m.Err
}

func (m *mockLetterUC) MediaURL(ctx context.Context, userID, id string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.URL, nil
}

type mockProfileUC struct {
	Profile *model.Profile
	Err     error
}

func (m *mockProfileUC) Register(ctx context.Context, caller adapter.AuthUser) (*model.Profile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Profile, nil
}

func (m *mockProfileUC) Get(ctx context.Context, userID string) (*model.Profile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Profile, nil
}

// --- Server under test ---

type serverDeps struct {
	checkout    *mockCheckoutUC
	entitlement *mockEntitlementUC
	resume      *mockResumeUC
	letters     *mockLetterUC
	profiles    *mockProfileUC
	gateway     *mockGateway
	verifier    *mockVerifier
}

func newTestServer(webhookSecret string) (*Server, *serverDeps) {
	deps := &serverDeps{
		checkout:    &mockCheckoutUC{Session: &model.CheckoutSession{PreferenceID: "pref-1", InitPoint: "https://checkout.example/init"}},
		entitlement: &mockEntitlementUC{Ent: &model.Entitlement{PlanType: model.PlanTypeFull}},
		resume:      &mockResumeUC{Token: "token-1", Session: &model.CheckoutSession{PreferenceID: "pref-1", InitPoint: "https://checkout.example/init"}},
		letters:     &mockLetterUC{},
		profiles:    &mockProfileUC{},
		gateway:     &mockGateway{Payments: make(map[string]*model.PaymentNotification)},
		verifier:    &mockVerifier{User: &adapter.AuthUser{ID: "user-1", Email: "user-1@example.com"}},
	}
	srv := NewServer(
		deps.checkout,
		deps.entitlement,
		deps.resume,
		deps.letters,
		deps.profiles,
		deps.gateway,
		deps.verifier,
		NewSignatureVerifier(webhookSecret),
		nil,
		newTestLogger(),
	)
	return srv, deps
}
