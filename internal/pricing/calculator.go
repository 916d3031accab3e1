// Package pricing computes deterministic monetary breakdowns for configured
// line items. All amounts are integer rupiah; no I/O, no hidden state.
package pricing

import (
	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

// CalculateItem prices one line item from its raw inputs.
//
// Unit price per size bucket = basePrice + material surcharge + size
// surcharge. The dozen tier (dozenPrice replacing basePrice) applies to the
// dozen-aligned portion of the item's cumulative quantity; the remainder is
// billed at the unit tier. The aggregation scope is the single line item:
// quantities of other cart items never push this one over a dozen boundary.
func CalculateItem(it domain.OrderItem) (domain.PriceDetails, error) {
	if err := validateItem(it); err != nil {
		return domain.PriceDetails{}, err
	}

	totalQty := 0
	for _, sq := range it.SizeBreakdown {
		totalQty += sq.Quantity
	}

	dozens := 0
	dozenUnitsLeft := 0
	if it.DozenPrice > 0 {
		dozens = totalQty / 12
		dozenUnitsLeft = dozens * 12
	}

	details := make([]domain.SizeDetail, 0, len(it.SizeBreakdown))
	var subtotal int64
	for _, sq := range it.SizeBreakdown {
		unitPrice := it.BasePrice + it.Material.AdditionalPrice + sq.AdditionalPrice
		dozenPrice := it.DozenPrice + it.Material.AdditionalPrice + sq.AdditionalPrice

		atDozen := sq.Quantity
		if atDozen > dozenUnitsLeft {
			atDozen = dozenUnitsLeft
		}
		dozenUnitsLeft -= atDozen
		atUnit := sq.Quantity - atDozen

		lineSubtotal := int64(atDozen)*dozenPrice + int64(atUnit)*unitPrice
		subtotal += lineSubtotal
		details = append(details, domain.SizeDetail{
			Size:       sq.Size,
			Quantity:   sq.Quantity,
			UnitPrice:  unitPrice,
			DozenPrice: dozenPrice,
			DozenUnits: atDozen,
			Subtotal:   lineSubtotal,
		})
	}

	discount := roundPercent(subtotal, it.DiscountPercent)

	var designFee int64
	if it.CustomDesign != nil {
		designFee = it.CustomDesign.Fee * int64(totalQty)
	}

	total := subtotal - discount + designFee
	if total < 0 {
		total = 0
	}

	return domain.PriceDetails{
		SizeDetails:        details,
		Subtotal:           subtotal,
		DiscountPercentage: it.DiscountPercent,
		DiscountAmount:     discount,
		CustomDesignFee:    designFee,
		Total:              total,
		TotalQuantity:      totalQty,
		TotalDozens:        dozens,
		Components: domain.PriceComponents{
			BasePrice:         it.BasePrice,
			DozenPrice:        it.DozenPrice,
			MaterialSurcharge: it.Material.AdditionalPrice,
		},
	}, nil
}

// roundPercent applies pct to amount, rounded to the nearest rupiah.
func roundPercent(amount int64, pct int) int64 {
	return (amount*int64(pct) + 50) / 100
}

func validateItem(it domain.OrderItem) error {
	if it.BasePrice < 0 {
		return domain.Invalid("basePrice", "harus >= 0")
	}
	if it.DozenPrice < 0 {
		return domain.Invalid("dozenPrice", "harus >= 0")
	}
	if it.Material.AdditionalPrice < 0 {
		return domain.Invalid("material.additionalPrice", "harus >= 0")
	}
	if len(it.SizeBreakdown) == 0 {
		return domain.Invalid("sizeBreakdown", "minimal satu ukuran")
	}
	for _, sq := range it.SizeBreakdown {
		// Zero quantity would produce a phantom free item; reject instead of
		// silently skipping.
		if sq.Quantity <= 0 {
			return domain.Invalid("sizeBreakdown.quantity", "harus > 0 untuk ukuran "+sq.Size)
		}
		if sq.AdditionalPrice < 0 {
			return domain.Invalid("sizeBreakdown.additionalPrice", "harus >= 0")
		}
	}
	if it.DiscountPercent < 0 || it.DiscountPercent > 100 {
		return domain.Invalid("discount", "persentase harus 0-100")
	}
	if it.CustomDesign != nil && it.CustomDesign.Fee < 0 {
		return domain.Invalid("customDesign.customizationFee", "harus >= 0")
	}
	return nil
}
