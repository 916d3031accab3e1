package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

// In-memory repos mirroring the postgres CAS semantics, guarded by a mutex
// so the concurrency tests exercise real interleavings.

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
	saves  int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]*domain.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	if o.DownPayment != nil {
		dp := *o.DownPayment
		cp.DownPayment = &dp
	}
	if o.RemainingPayment != nil {
		rp := *o.RemainingPayment
		cp.RemainingPayment = &rp
	}
	return &cp, nil
}

func (r *fakeOrderRepo) FindByCode(_ context.Context, code string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Code == code {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeOrderRepo) List(_ context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.CustomerID != nil && (o.CustomerID == nil || *o.CustomerID != *f.CustomerID) {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) Save(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *o
	r.orders[o.ID] = &cp
	r.saves++
	return nil
}

func (r *fakeOrderRepo) AppendStatus(_ context.Context, id uuid.UUID, from domain.OrderStatus, change domain.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != from {
		return domain.ErrAlreadyProcessed
	}
	o.Status = change.Status
	o.StatusHistory = append(o.StatusHistory, change)
	return nil
}

func (r *fakeOrderRepo) CreatedBetween(_ context.Context, from, to time.Time) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[uuid.UUID]*domain.Payment{}}
}

func (r *fakePaymentRepo) Create(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) FindByTransactionID(_ context.Context, txID string) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.TransactionID == txID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakePaymentRepo) FindOpenByOrder(_ context.Context, orderID uuid.UUID, t domain.PaymentType) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.OrderID == orderID && p.Type == t && p.Status == domain.PayPending {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakePaymentRepo) Save(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to domain.PaymentStatus, paidAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Status != from {
		return domain.ErrAlreadyProcessed
	}
	p.Status = to
	if paidAt != nil {
		p.PaidAt = paidAt
	}
	return nil
}

func (r *fakePaymentRepo) TransitionVerification(_ context.Context, id uuid.UUID, to domain.VerificationStatus, by, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Verification != domain.VerificationPending {
		return domain.ErrAlreadyProcessed
	}
	p.Verification = to
	p.VerifiedBy = by
	p.VerificationNote = note
	return nil
}

func (r *fakePaymentRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) ListPendingVerification(_ context.Context) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.payments {
		if p.Verification == domain.VerificationPending {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) PaidBetween(_ context.Context, from, to time.Time) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.payments {
		if p.PaidAt != nil && !p.PaidAt.Before(from) && p.PaidAt.Before(to) {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeGateway struct {
	mu       sync.Mutex
	sessions int
	fail     bool
}

func (g *fakeGateway) CreateSnapSession(_ context.Context, _ *domain.Order, p *domain.Payment, _ domain.GatewayCustomer) (*domain.SnapSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return nil, context.DeadlineExceeded
	}
	g.sessions++
	return &domain.SnapSession{Token: "tok-" + p.ID.String()[:8]}, nil
}

func (g *fakeGateway) TransactionStatus(_ context.Context, orderRef string) (*domain.PaymentNotification, error) {
	return &domain.PaymentNotification{OrderRef: orderRef, Status: "pending"}, nil
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	entries []domain.ActivityEntry
}

func (r *fakeActivityRepo) Append(_ context.Context, e *domain.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeActivityRepo) ListByEntity(_ context.Context, entity, entityID string) ([]domain.ActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ActivityEntry
	for _, e := range r.entries {
		if e.Entity == entity && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}
