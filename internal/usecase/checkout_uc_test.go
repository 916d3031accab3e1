package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

func testCheckoutUC(orders *fakeOrderRepo) *CheckoutUC {
	return &CheckoutUC{
		Orders: orders,
		PickupAddress: domain.Address{
			Street: "Jl. Industri No. 12", Province: "Jawa Barat", City: "Bandung",
			District: "Cibeunying", PostalCode: "40121",
		},
		Now: func() time.Time { return time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC) },
	}
}

func cartItem(qty int) domain.OrderItem {
	return domain.OrderItem{
		ProductName: "Kaos Polos",
		BasePrice:   100000,
		SizeBreakdown: []domain.SizeQuantity{
			{Size: "M", Quantity: qty},
		},
	}
}

func validInput(items ...domain.OrderItem) CheckoutInput {
	return CheckoutInput{
		Items: items,
		Customer: CheckoutCustomer{
			Name:  "Budi Santoso",
			Email: "Budi@Example.com",
			Phone: "081234567890",
		},
		DeliveryMethod: domain.DeliveryPickup,
	}
}

func TestBuildDraftEmptyCart(t *testing.T) {
	uc := testCheckoutUC(newFakeOrderRepo())
	_, err := uc.BuildDraft(CheckoutInput{})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestBuildDraftDefaults(t *testing.T) {
	uc := testCheckoutUC(newFakeOrderRepo())
	o, err := uc.BuildDraft(validInput(cartItem(5)))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDiterima, o.Status)
	require.Len(t, o.StatusHistory, 1)
	assert.Equal(t, domain.StatusDiterima, o.StatusHistory[0].Status)

	assert.Equal(t, domain.PlanFull, o.PaymentPlan)
	assert.Nil(t, o.DownPayment)
	assert.Equal(t, int64(500000), o.Total)
	assert.Equal(t, "budi@example.com", o.CustomerEmail)
	assert.True(t, strings.HasPrefix(o.Code, "KVX-20250830-"))

	require.NotNil(t, o.ShippingAddress)
	assert.Equal(t, "Bandung", o.ShippingAddress.City)
}

func TestBuildDraftDPSplit(t *testing.T) {
	uc := testCheckoutUC(newFakeOrderRepo())

	in := validInput(cartItem(10)) // 1.000.000
	in.PaymentPlan = domain.PlanDP
	in.DPPercentage = 30
	o, err := uc.BuildDraft(in)
	require.NoError(t, err)

	require.NotNil(t, o.DownPayment)
	require.NotNil(t, o.RemainingPayment)
	assert.Equal(t, int64(300000), o.DownPayment.Amount)
	assert.Equal(t, int64(700000), o.RemainingPayment.Amount)
	assert.Equal(t, o.Total, o.DownPayment.Amount+o.RemainingPayment.Amount)
	assert.Equal(t, domain.PayPending, o.DownPayment.Status)
	assert.False(t, o.IsPaid)
}

func TestBuildDraftDPSplitAlwaysSumsToTotal(t *testing.T) {
	uc := testCheckoutUC(newFakeOrderRepo())
	// 333 pieces at 1.003 makes an odd total to stress the rounding.
	it := domain.OrderItem{
		ProductName:   "Topi",
		BasePrice:     1003,
		SizeBreakdown: []domain.SizeQuantity{{Size: "M", Quantity: 333}},
	}
	for pct := domain.MinDPPercentage; pct <= domain.MaxDPPercentage; pct++ {
		in := validInput(it)
		in.PaymentPlan = domain.PlanDP
		in.DPPercentage = pct
		o, err := uc.BuildDraft(in)
		require.NoError(t, err)
		assert.Equal(t, o.Total, o.DownPayment.Amount+o.RemainingPayment.Amount, "pct %d", pct)
	}
}

func TestBuildDraftDPBounds(t *testing.T) {
	uc := testCheckoutUC(newFakeOrderRepo())
	for _, pct := range []int{0, 10, 25, 29, 91, 95, 100} {
		in := validInput(cartItem(10))
		in.PaymentPlan = domain.PlanDP
		in.DPPercentage = pct
		_, err := uc.BuildDraft(in)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve, "pct %d", pct)
		assert.Equal(t, "dpPercentage", ve.Field)
	}
	for _, pct := range []int{30, 50, 90} {
		in := validInput(cartItem(10))
		in.PaymentPlan = domain.PlanDP
		in.DPPercentage = pct
		_, err := uc.BuildDraft(in)
		assert.NoError(t, err, "pct %d", pct)
	}
}

func TestBuildDraftCustomerValidation(t *testing.T) {
	uc := testCheckoutUC(newFakeOrderRepo())
	cases := []struct {
		name  string
		mut   func(*CheckoutInput)
		field string
	}{
		{"missing name", func(in *CheckoutInput) { in.Customer.Name = "  " }, "customer.name"},
		{"missing email", func(in *CheckoutInput) { in.Customer.Email = "" }, "customer.email"},
		{"missing phone", func(in *CheckoutInput) { in.Customer.Phone = "" }, "customer.phone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput(cartItem(1))
			tc.mut(&in)
			_, err := uc.BuildDraft(in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestBuildDraftShippingAddressRequired(t *testing.T) {
	uc := testCheckoutUC(newFakeOrderRepo())

	in := validInput(cartItem(1))
	in.DeliveryMethod = domain.DeliveryShipping
	_, err := uc.BuildDraft(in)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "shippingAddress", ve.Field)

	in.ShippingAddress = &domain.Address{
		Street: "Jl. Melati 1", Province: "DKI Jakarta", City: "Jakarta Selatan",
		District: "Tebet", PostalCode: "12810",
	}
	o, err := uc.BuildDraft(in)
	require.NoError(t, err)
	assert.Equal(t, "Tebet", o.ShippingAddress.District)

	in.ShippingAddress.PostalCode = " "
	_, err = uc.BuildDraft(in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "shippingAddress.postalCode", ve.Field)
}

func TestBuildDraftUnknownDeliveryAndPlan(t *testing.T) {
	uc := testCheckoutUC(newFakeOrderRepo())

	in := validInput(cartItem(1))
	in.DeliveryMethod = "drone"
	_, err := uc.BuildDraft(in)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "deliveryMethod", ve.Field)

	in = validInput(cartItem(1))
	in.PaymentPlan = "cicilan"
	_, err = uc.BuildDraft(in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "paymentPlan", ve.Field)
}

func TestPlaceOrderPersists(t *testing.T) {
	orders := newFakeOrderRepo()
	uc := testCheckoutUC(orders)

	o, err := uc.PlaceOrder(context.Background(), validInput(cartItem(3)))
	require.NoError(t, err)

	got, err := orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Code, got.Code)
	assert.Equal(t, int64(300000), got.Total)
}
