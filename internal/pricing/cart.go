package pricing

import (
	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

// CartSummary is the order-level rollup. CartTotal is the only number the
// gateway charge may derive from; the display sums exist for the UI and can
// never drift from it.
type CartSummary struct {
	CartTotal           int64 `json:"cartTotal"`
	Subtotal            int64 `json:"subtotal"`
	TotalQuantity       int   `json:"totalQuantity"`
	TotalDesignFee      int64 `json:"totalDesignFee"`
	TotalDiscountAmount int64 `json:"totalDiscountAmount"`
}

// PriceCart computes PriceDetails for every item and folds them into a
// summary. Items are returned with their details filled in; the input slice
// is not mutated.
func PriceCart(items []domain.OrderItem) ([]domain.OrderItem, CartSummary, error) {
	if len(items) == 0 {
		return nil, CartSummary{}, domain.ErrEmptyCart
	}
	priced := make([]domain.OrderItem, len(items))
	var sum CartSummary
	for i, it := range items {
		pd, err := CalculateItem(it)
		if err != nil {
			return nil, CartSummary{}, err
		}
		it.PriceDetails = pd
		priced[i] = it

		sum.CartTotal += pd.Total
		sum.Subtotal += pd.Subtotal
		sum.TotalQuantity += pd.TotalQuantity
		sum.TotalDesignFee += pd.CustomDesignFee
		sum.TotalDiscountAmount += pd.DiscountAmount
	}
	return priced, sum, nil
}

// Aggregate folds already-priced items; it assumes PriceDetails are present.
func Aggregate(items []domain.OrderItem) CartSummary {
	var sum CartSummary
	for _, it := range items {
		sum.CartTotal += it.PriceDetails.Total
		sum.Subtotal += it.PriceDetails.Subtotal
		sum.TotalQuantity += it.PriceDetails.TotalQuantity
		sum.TotalDesignFee += it.PriceDetails.CustomDesignFee
		sum.TotalDiscountAmount += it.PriceDetails.DiscountAmount
	}
	return sum
}
