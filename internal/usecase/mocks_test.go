//go:build !integration

package usecase_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"carta-do-futuro/internal/domain"
	"carta-do-futuro/internal/domain/model"
	"carta-do-futuro/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// -----------------------------
// Repositories
// -----------------------------

// memProfileRepo is a small in-memory implementation used by unit tests.
type memProfileRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Profile

	SaveFunc              func(ctx context.Context, tx repository.Tx, p *model.Profile) error
	UpdateEntitlementFunc func(ctx context.Context, tx repository.Tx, userID string, e model.Entitlement) error

	UpdatedEntitlements []model.Entitlement // captured by UpdateEntitlement
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{store: make(map[string]*model.Profile)}
}

func (m *memProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memProfileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfileRepo) UpdateEntitlement(ctx context.Context, tx repository.Tx, userID string, e model.Entitlement) error {
	if m.UpdateEntitlementFunc != nil {
		return m.UpdateEntitlementFunc(ctx, tx, userID, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.PlanType = e.PlanType
	p.AccessExpiresAt = e.AccessExpiresAt
	purchased := e.PurchasedAt
	p.PurchasedAt = &purchased
	if e.PayerID != nil {
		p.PayerID = e.PayerID
	}
	p.UpdatedAt = time.Now()
	m.UpdatedEntitlements = append(m.UpdatedEntitlements, e)
	return nil
}

func (m *memProfileRepo) CountProfiles(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// memLetterRepo keeps letters in memory, keyed by letter id.
type memLetterRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Letter

	SaveFunc func(ctx context.Context, tx repository.Tx, l *model.Letter) error
}

func newMemLetterRepo() *memLetterRepo {
	return &memLetterRepo{store: make(map[string]*model.Letter)}
}

func (m *memLetterRepo) Save(ctx context.Context, tx repository.Tx, l *model.Letter) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, l)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.store[l.ID] = &cp
	return nil
}

func (m *memLetterRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Letter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLetterRepo) ListByUserID(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Letter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Letter
	for _, l := range m.store {
		if l.UserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memLetterRepo) Delete(ctx context.Context, tx repository.Tx, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.store[id]
	if !ok || l.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *memLetterRepo) CountByUserID(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, l := range m.store {
		if l.UserID == userID {
			n++
		}
	}
	return n, nil
}

// MockTxManager runs the callback without a real transaction.
type MockTxManager struct {
	Err error
}

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, nil)
}

// -----------------------------
// Adapters
// -----------------------------

// MockPaymentGateway captures preference requests and serves canned payments.
type MockPaymentGateway struct {
	mu       sync.Mutex
	Requests []model.PreferenceRequest

	CreatePreferenceFunc func(ctx context.Context, req model.PreferenceRequest) (*model.Preference, error)
	GetPaymentFunc       func(ctx context.Context, paymentID string) (*model.PaymentNotification, error)
}

func (m *MockPaymentGateway) Name() string { return "mock" }

func (m *MockPaymentGateway) CreatePreference(ctx context.Context, req model.PreferenceRequest) (*model.Preference, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.CreatePreferenceFunc != nil {
		return m.CreatePreferenceFunc(ctx, req)
	}
	return &model.Preference{
		ID:        fmt.Sprintf("pref-%d", len(m.Requests)),
		InitPoint: "https://checkout.example/init",
	}, nil
}

func (m *MockPaymentGateway) GetPayment(ctx context.Context, paymentID string) (*model.PaymentNotification, error) {
	if m.GetPaymentFunc != nil {
		return m.GetPaymentFunc(ctx, paymentID)
	}
	return nil, domain.ErrNotFound
}

// MockDedup remembers payment ids like the Redis-backed store does.
type MockDedup struct {
	mu   sync.Mutex
	seen map[string]bool
	Err  error // simulate store outage
}

func newMockDedup() *MockDedup {
	return &MockDedup{seen: make(map[string]bool)}
}

func (m *MockDedup) MarkProcessed(ctx context.Context, paymentID string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[paymentID] {
		return false, nil
	}
	m.seen[paymentID] = true
	return true, nil
}

// MockResumeStore pins resume token ids in memory.
type MockResumeStore struct {
	mu   sync.Mutex
	used map[string]bool
	Err  error
}

func newMockResumeStore() *MockResumeStore {
	return &MockResumeStore{used: make(map[string]bool)}
}

func (m *MockResumeStore) ConsumeOnce(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.used[jti] {
		return false, nil
	}
	m.used[jti] = true
	return true, nil
}

// MockMediaStore keeps uploaded objects in memory.
type MockMediaStore struct {
	mu      sync.Mutex
	Objects map[string][]byte

	PutFunc func(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

func newMockMediaStore() *MockMediaStore {
	return &MockMediaStore{Objects: make(map[string][]byte)}
}

func (m *MockMediaStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, contentType, body)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = buf.Bytes()
	return key, nil
}

func (m *MockMediaStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[key]; !ok {
		return "", domain.ErrNotFound
	}
	return "https://media.example/" + key, nil
}

func (m *MockMediaStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	return nil
}
