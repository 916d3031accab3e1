package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

// ReportUC builds the owner/admin sales views from order and payment data.
type ReportUC struct {
	Orders   domain.OrderRepo
	Payments domain.PaymentRepo
}

type ProductSales struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Revenue     int64  `json:"revenue"`
}

type SalesReport struct {
	From          time.Time      `json:"from"`
	To            time.Time      `json:"to"`
	OrderCount    int            `json:"orderCount"`
	PaidOrders    int            `json:"paidOrders"`
	UnpaidOrders  int            `json:"unpaidOrders"`
	Revenue       int64          `json:"revenue"`
	OrderValue    int64          `json:"orderValue"`
	ByStatus      map[string]int `json:"byStatus"`
	TopProducts   []ProductSales `json:"topProducts"`
	OfflineOrders int            `json:"offlineOrders"`
}

func (uc *ReportUC) Sales(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	if !to.After(from) {
		return nil, domain.Invalid("range", "to harus setelah from")
	}
	orders, err := uc.Orders.CreatedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	payments, err := uc.Payments.PaidBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	rep := &SalesReport{From: from, To: to, ByStatus: map[string]int{}}
	perProduct := map[string]*ProductSales{}
	for i := range orders {
		o := &orders[i]
		rep.OrderCount++
		rep.OrderValue += o.Total
		rep.ByStatus[string(o.Status)]++
		if o.IsPaid {
			rep.PaidOrders++
		} else {
			rep.UnpaidOrders++
		}
		if o.IsOfflineOrder {
			rep.OfflineOrders++
		}
		for _, it := range o.Items {
			ps := perProduct[it.ProductName]
			if ps == nil {
				ps = &ProductSales{ProductName: it.ProductName}
				perProduct[it.ProductName] = ps
			}
			ps.Quantity += it.PriceDetails.TotalQuantity
			ps.Revenue += it.PriceDetails.Total
		}
	}
	// Revenue counts money actually received, not order face value.
	for _, p := range payments {
		rep.Revenue += p.Amount
	}

	for _, ps := range perProduct {
		rep.TopProducts = append(rep.TopProducts, *ps)
	}
	sort.Slice(rep.TopProducts, func(i, j int) bool {
		return rep.TopProducts[i].Revenue > rep.TopProducts[j].Revenue
	})
	if len(rep.TopProducts) > 10 {
		rep.TopProducts = rep.TopProducts[:10]
	}
	return rep, nil
}

// ExportXLSX renders the report as a spreadsheet for the owner dashboard
// download.
func (uc *ReportUC) ExportXLSX(rep *SalesReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Laporan Penjualan"
	f.SetSheetName("Sheet1", sheet)

	rows := [][]interface{}{
		{"Periode", rep.From.Format("2006-01-02") + " s/d " + rep.To.Format("2006-01-02")},
		{"Jumlah Pesanan", rep.OrderCount},
		{"Pesanan Lunas", rep.PaidOrders},
		{"Pesanan Belum Lunas", rep.UnpaidOrders},
		{"Pesanan Offline", rep.OfflineOrders},
		{"Nilai Pesanan (Rp)", rep.OrderValue},
		{"Pendapatan Diterima (Rp)", rep.Revenue},
		{},
		{"Produk", "Qty", "Pendapatan (Rp)"},
	}
	for _, ps := range rep.TopProducts {
		rows = append(rows, []interface{}{ps.ProductName, ps.Quantity, ps.Revenue})
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Dashboard returns the per-role summary backing GET /dashboard/{role}.
func (uc *ReportUC) Dashboard(ctx context.Context, role domain.Role) (map[string]any, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	switch role {
	case domain.RoleStaff:
		// Production queue: what needs work, in path order.
		out := map[string]any{}
		for _, st := range []domain.OrderStatus{domain.StatusDiterima, domain.StatusDiproses, domain.StatusSelesaiProduksi, domain.StatusSiapKirim} {
			_, total, err := uc.Orders.List(ctx, domain.OrderFilter{Status: st, PageSize: 1})
			if err != nil {
				return nil, err
			}
			out[string(st)] = total
		}
		return out, nil
	case domain.RoleCashier:
		pending, err := uc.Payments.ListPendingVerification(ctx)
		if err != nil {
			return nil, err
		}
		offline := true
		_, offlineTotal, err := uc.Orders.List(ctx, domain.OrderFilter{Offline: &offline, From: &monthStart, PageSize: 1})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"pendingVerifications": len(pending),
			"offlineOrdersMonth":   offlineTotal,
		}, nil
	case domain.RoleAdmin, domain.RoleOwner:
		rep, err := uc.Sales(ctx, monthStart, now.Add(time.Second))
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"orderCount":   rep.OrderCount,
			"paidOrders":   rep.PaidOrders,
			"unpaidOrders": rep.UnpaidOrders,
			"revenue":      rep.Revenue,
			"byStatus":     rep.ByStatus,
		}, nil
	default:
		return nil, fmt.Errorf("dashboard role %q: %w", role, domain.ErrForbidden)
	}
}
