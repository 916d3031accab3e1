package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
	"github.com/iosramgio/appkonveksimax-sub003/internal/pricing"
)

// CheckoutUC builds and places orders. It re-prices every item server side;
// client-supplied totals and DP percentages are never trusted.
type CheckoutUC struct {
	Orders   domain.OrderRepo
	Products domain.ProductRepo

	// PickupAddress is the store address used when the customer picks up.
	PickupAddress domain.Address
	Now           func() time.Time
}

// ItemSelection is the untrusted cart line as submitted by the client: only
// ids, sizes and quantities. All prices are resolved from the catalog.
type ItemSelection struct {
	ProductID       uuid.UUID
	MaterialID      uuid.UUID
	ColorID         uuid.UUID
	Sizes           []SizeSelection
	CustomDesign    *DesignSelection
	DiscountPercent int
}

type SizeSelection struct {
	Size     string
	Quantity int
}

type DesignSelection struct {
	DesignURL string
	Notes     string
}

// ResolveItems turns client selections into priceable line items using
// catalog prices, never client-supplied ones.
func (uc *CheckoutUC) ResolveItems(ctx context.Context, sels []ItemSelection) ([]domain.OrderItem, error) {
	if len(sels) == 0 {
		return nil, domain.ErrEmptyCart
	}
	items := make([]domain.OrderItem, 0, len(sels))
	for i, sel := range sels {
		p, err := uc.Products.FindByID(ctx, sel.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.Active {
			return nil, domain.Invalid("productId", "produk tidak tersedia: "+p.Name)
		}

		it := domain.OrderItem{
			ProductID:       &p.ID,
			ProductName:     p.Name,
			ProductImage:    p.ImageURL,
			BasePrice:       p.BasePrice,
			DozenPrice:      p.DozenPrice,
			DiscountPercent: sel.DiscountPercent,
		}

		mat, err := pickMaterial(p, sel.MaterialID)
		if err != nil {
			return nil, err
		}
		it.Material = mat
		col, err := pickColor(p, sel.ColorID)
		if err != nil {
			return nil, err
		}
		it.Color = col

		for _, sq := range sel.Sizes {
			surcharge, err := sizeSurcharge(p, sq.Size)
			if err != nil {
				return nil, err
			}
			it.SizeBreakdown = append(it.SizeBreakdown, domain.SizeQuantity{
				Size:            sq.Size,
				Quantity:        sq.Quantity,
				AdditionalPrice: surcharge,
			})
		}
		if len(it.SizeBreakdown) == 0 {
			return nil, domain.Invalid("items", "ukuran kosong pada baris "+strconv.Itoa(i+1))
		}

		if sel.CustomDesign != nil {
			it.CustomDesign = &domain.CustomDesign{
				DesignURL: sel.CustomDesign.DesignURL,
				Notes:     sel.CustomDesign.Notes,
				Fee:       p.CustomizationFee,
			}
		}
		items = append(items, it)
	}
	return items, nil
}

func pickMaterial(p *domain.Product, id uuid.UUID) (domain.MaterialChoice, error) {
	if id == uuid.Nil {
		return domain.MaterialChoice{}, nil
	}
	for _, m := range p.Materials {
		if m.ID == id {
			return domain.MaterialChoice{ID: m.ID.String(), Name: m.Name, AdditionalPrice: m.AdditionalPrice}, nil
		}
	}
	return domain.MaterialChoice{}, domain.Invalid("materialId", "bukan bahan produk "+p.Name)
}

func pickColor(p *domain.Product, id uuid.UUID) (domain.ColorChoice, error) {
	if id == uuid.Nil {
		return domain.ColorChoice{}, nil
	}
	for _, c := range p.Colors {
		if c.ID == id {
			return domain.ColorChoice{ID: c.ID.String(), Name: c.Name, Code: c.Code}, nil
		}
	}
	return domain.ColorChoice{}, domain.Invalid("colorId", "bukan warna produk "+p.Name)
}

func sizeSurcharge(p *domain.Product, size string) (int64, error) {
	if len(p.Sizes) == 0 {
		return 0, nil
	}
	for _, s := range p.Sizes {
		if strings.EqualFold(s.Name, size) {
			return s.AdditionalPrice, nil
		}
	}
	return 0, domain.Invalid("sizeBreakdown.size", "ukuran "+size+" tidak tersedia untuk "+p.Name)
}

type CheckoutCustomer struct {
	ID    *uuid.UUID
	Name  string
	Email string
	Phone string
}

type CheckoutInput struct {
	Items           []domain.OrderItem
	Customer        CheckoutCustomer
	DeliveryMethod  domain.DeliveryMethod
	ShippingAddress *domain.Address
	PaymentPlan     domain.PaymentPlan
	DPPercentage    int
	Notes           string
	// Offline marks cashier-created orders (POS flow).
	Offline bool
	Actor   domain.Actor
}

// BuildDraft assembles a submittable order without persisting it.
func (uc *CheckoutUC) BuildDraft(in CheckoutInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if err := validateCustomer(in.Customer); err != nil {
		return nil, err
	}

	addr, err := uc.resolveAddress(in)
	if err != nil {
		return nil, err
	}

	priced, sum, err := pricing.PriceCart(in.Items)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	id := uuid.New()
	o := &domain.Order{
		ID:            id,
		Code:          orderCode(id, now),
		CustomerID:    in.Customer.ID,
		CustomerName:  strings.TrimSpace(in.Customer.Name),
		CustomerEmail: strings.ToLower(strings.TrimSpace(in.Customer.Email)),
		CustomerPhone: strings.TrimSpace(in.Customer.Phone),
		Status:        domain.StatusDiterima,
		StatusHistory: []domain.StatusChange{{
			Status:    domain.StatusDiterima,
			ChangedBy: in.Actor.ID,
			Timestamp: now,
		}},
		Items:           priced,
		Subtotal:        sum.Subtotal,
		DiscountAmount:  sum.TotalDiscountAmount,
		CustomFee:       sum.TotalDesignFee,
		Total:           sum.CartTotal,
		DeliveryMethod:  in.DeliveryMethod,
		ShippingAddress: addr,
		IsOfflineOrder:  in.Offline,
		Notes:           strings.TrimSpace(in.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i := range o.Items {
		o.Items[i].ID = uuid.New()
		o.Items[i].OrderID = id
		o.Items[i].CreatedAt = now
	}

	if err := applyPaymentPlan(o, in.PaymentPlan, in.DPPercentage, sum.CartTotal); err != nil {
		return nil, err
	}
	return o, nil
}

// PlaceOrder builds the draft and persists it.
func (uc *CheckoutUC) PlaceOrder(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	o, err := uc.BuildDraft(in)
	if err != nil {
		return nil, err
	}
	if err := uc.Orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *CheckoutUC) resolveAddress(in CheckoutInput) (*domain.Address, error) {
	switch in.DeliveryMethod {
	case domain.DeliveryShipping:
		a := in.ShippingAddress
		if a == nil {
			return nil, domain.Invalid("shippingAddress", "wajib untuk pengiriman")
		}
		for field, v := range map[string]string{
			"street":     a.Street,
			"province":   a.Province,
			"city":       a.City,
			"district":   a.District,
			"postalCode": a.PostalCode,
		} {
			if strings.TrimSpace(v) == "" {
				return nil, domain.Invalid("shippingAddress."+field, "wajib diisi")
			}
		}
		cp := *a
		return &cp, nil
	case domain.DeliveryPickup, "":
		// Explicit fallback: pickup uses the store address.
		cp := uc.PickupAddress
		return &cp, nil
	default:
		return nil, domain.Invalid("deliveryMethod", "harus pickup atau delivery")
	}
}

func applyPaymentPlan(o *domain.Order, plan domain.PaymentPlan, pct int, cartTotal int64) error {
	switch plan {
	case domain.PlanFull, "":
		o.PaymentPlan = domain.PlanFull
	case domain.PlanDP:
		if pct < domain.MinDPPercentage || pct > domain.MaxDPPercentage {
			return domain.Invalid("dpPercentage", "harus antara 30 dan 90")
		}
		dp := (cartTotal*int64(pct) + 50) / 100
		o.PaymentPlan = domain.PlanDP
		o.DownPayment = &domain.PaymentPortion{
			Percentage: pct,
			Amount:     dp,
			Status:     domain.PayPending,
		}
		// Remainder is the exact complement so the two always sum to total.
		o.RemainingPayment = &domain.PaymentPortion{
			Amount: cartTotal - dp,
			Status: domain.PayPending,
		}
	default:
		return domain.Invalid("paymentPlan", "harus full atau dp")
	}
	return nil
}

func validateCustomer(c CheckoutCustomer) error {
	if strings.TrimSpace(c.Name) == "" {
		return domain.Invalid("customer.name", "wajib diisi")
	}
	if strings.TrimSpace(c.Email) == "" {
		return domain.Invalid("customer.email", "wajib diisi")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return domain.Invalid("customer.phone", "wajib diisi")
	}
	return nil
}

func (uc *CheckoutUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

// orderCode builds the human-facing order number, e.g. KVX-20250830-1A2B3C.
func orderCode(id uuid.UUID, t time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:6]
	return "KVX-" + t.Format("20060102") + "-" + short
}
