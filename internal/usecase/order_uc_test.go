package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

var (
	admin    = domain.Actor{ID: "u-admin", Name: "Admin", Role: domain.RoleAdmin}
	cashier  = domain.Actor{ID: "u-kasir", Name: "Kasir", Role: domain.RoleCashier}
	customer = domain.Actor{ID: "u-cust", Name: "Budi", Role: domain.RoleCustomer}
)

func seedOrder(t *testing.T, orders *fakeOrderRepo, status domain.OrderStatus) *domain.Order {
	t.Helper()
	o := &domain.Order{
		ID:     uuid.New(),
		Code:   "KVX-20250830-TEST01",
		Status: status,
		StatusHistory: []domain.StatusChange{
			{Status: domain.StatusDiterima, Timestamp: time.Now()},
		},
		Total: 500000,
	}
	require.NoError(t, orders.Create(context.Background(), o))
	return o
}

func testOrderUC(orders *fakeOrderRepo) *OrderUC {
	return &OrderUC{Orders: orders, Activity: &fakeActivityRepo{}}
}

func TestAdvanceWalksOneStep(t *testing.T) {
	orders := newFakeOrderRepo()
	uc := testOrderUC(orders)
	o := seedOrder(t, orders, domain.StatusDiterima)

	got, err := uc.Advance(context.Background(), o.ID, admin, "mulai produksi")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDiproses, got.Status)
	require.Len(t, got.StatusHistory, 2)
	assert.Equal(t, "u-admin", got.StatusHistory[1].ChangedBy)
	assert.Equal(t, "mulai produksi", got.StatusHistory[1].Notes)
}

func TestAdvanceToCompletionThenStops(t *testing.T) {
	orders := newFakeOrderRepo()
	uc := testOrderUC(orders)
	o := seedOrder(t, orders, domain.StatusDiterima)

	var got *domain.Order
	var err error
	for i := 0; i < 4; i++ {
		got, err = uc.Advance(context.Background(), o.ID, admin, "")
		require.NoError(t, err)
	}
	assert.Equal(t, domain.StatusSelesai, got.Status)
	assert.Len(t, got.StatusHistory, 5)

	_, err = uc.Advance(context.Background(), o.ID, admin, "")
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestAdvanceForbiddenForCustomer(t *testing.T) {
	orders := newFakeOrderRepo()
	uc := testOrderUC(orders)
	o := seedOrder(t, orders, domain.StatusDiterima)

	_, err := uc.Advance(context.Background(), o.ID, customer, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, _ := orders.FindByID(context.Background(), o.ID)
	assert.Equal(t, domain.StatusDiterima, got.Status)
}

// Two operators pressing "advance" at the same moment must move the order
// exactly one step, not two.
func TestAdvanceConcurrentSingleStep(t *testing.T) {
	orders := newFakeOrderRepo()
	uc := testOrderUC(orders)
	o := seedOrder(t, orders, domain.StatusDiterima)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Advance(context.Background(), o.ID, cashier, "")
		}(i)
	}
	wg.Wait()

	var okCount int
	for _, err := range errs {
		if err == nil {
			okCount++
		}
	}
	// Every winner appends exactly one entry, and the history must remain a
	// legal walk: each entry one step after the previous.
	got, err := orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, okCount+1, len(got.StatusHistory))
	for i := 1; i < len(got.StatusHistory); i++ {
		assert.True(t, domain.CanTransition(got.StatusHistory[i-1].Status, got.StatusHistory[i].Status))
	}
}

func TestRejectRequiresNote(t *testing.T) {
	orders := newFakeOrderRepo()
	uc := testOrderUC(orders)
	o := seedOrder(t, orders, domain.StatusDiproses)

	_, err := uc.Reject(context.Background(), o.ID, admin, "  ")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "note", ve.Field)
}

func TestRejectFromNonTerminal(t *testing.T) {
	orders := newFakeOrderRepo()
	uc := testOrderUC(orders)
	o := seedOrder(t, orders, domain.StatusSiapKirim)

	got, err := uc.Reject(context.Background(), o.ID, admin, "bahan tidak tersedia")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDitolak, got.Status)
	last := got.StatusHistory[len(got.StatusHistory)-1]
	assert.Equal(t, "bahan tidak tersedia", last.Notes)
}

func TestRejectTerminalFails(t *testing.T) {
	orders := newFakeOrderRepo()
	uc := testOrderUC(orders)
	for _, st := range []domain.OrderStatus{domain.StatusSelesai, domain.StatusDitolak} {
		o := seedOrder(t, orders, st)
		_, err := uc.Reject(context.Background(), o.ID, admin, "terlambat")
		var ve *domain.ValidationError
		assert.ErrorAs(t, err, &ve, string(st))
	}
}
