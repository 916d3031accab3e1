package httpserver

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
	"github.com/iosramgio/appkonveksimax-sub003/internal/usecase"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var p struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}
	token, u, err := s.auth.Login(r.Context(), p.Email, p.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"token": token,
		"user": map[string]any{
			"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role,
		},
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var p struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.auth.Register(r.Context(), p.Name, p.Email, p.Phone, p.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 201, map[string]any{
		"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role,
	})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	active := true
	f := domain.ProductFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
		Active:   &active,
	}
	list, total, err := s.products.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list, "total": total})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.products.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, p)
}

type checkoutItemPayload struct {
	ProductID  uuid.UUID `json:"productId"`
	MaterialID uuid.UUID `json:"materialId"`
	ColorID    uuid.UUID `json:"colorId"`
	Sizes      []struct {
		Size     string `json:"size"`
		Quantity int    `json:"quantity"`
	} `json:"sizes"`
	CustomDesign *struct {
		DesignURL string `json:"designUrl"`
		Notes     string `json:"notes"`
	} `json:"customDesign"`
	DiscountPercent int `json:"discountPercent"`
}

type checkoutPayload struct {
	Items    []checkoutItemPayload `json:"items"`
	Customer struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customer"`
	DeliveryMethod  string          `json:"deliveryMethod"`
	ShippingAddress *domain.Address `json:"shippingAddress"`
	PaymentPlan     string          `json:"paymentPlan"`
	DPPercentage    int             `json:"dpPercentage"`
	Notes           string          `json:"notes"`
	Offline         bool            `json:"offline"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var p checkoutPayload
	if err := readJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}

	// Auth is optional for self-checkout, required for the POS flow.
	actor, authErr := s.actorFrom(r)
	if p.Offline {
		if authErr != nil {
			writeError(w, authErr)
			return
		}
		if !actor.Role.CanManageOrders() {
			writeError(w, domain.ErrForbidden)
			return
		}
	}
	// Discounts are a cashier privilege, never self-assigned.
	for _, it := range p.Items {
		if it.DiscountPercent != 0 && !actor.Role.CanManageOrders() {
			writeError(w, domain.ErrForbidden)
			return
		}
	}

	sels := make([]usecase.ItemSelection, len(p.Items))
	for i, it := range p.Items {
		sel := usecase.ItemSelection{
			ProductID:       it.ProductID,
			MaterialID:      it.MaterialID,
			ColorID:         it.ColorID,
			DiscountPercent: it.DiscountPercent,
		}
		for _, sq := range it.Sizes {
			sel.Sizes = append(sel.Sizes, usecase.SizeSelection{Size: sq.Size, Quantity: sq.Quantity})
		}
		if it.CustomDesign != nil {
			sel.CustomDesign = &usecase.DesignSelection{
				DesignURL: it.CustomDesign.DesignURL,
				Notes:     it.CustomDesign.Notes,
			}
		}
		sels[i] = sel
	}
	items, err := s.checkout.ResolveItems(r.Context(), sels)
	if err != nil {
		writeError(w, err)
		return
	}

	in := usecase.CheckoutInput{
		Items: items,
		Customer: usecase.CheckoutCustomer{
			Name:  p.Customer.Name,
			Email: p.Customer.Email,
			Phone: p.Customer.Phone,
		},
		DeliveryMethod:  domain.DeliveryMethod(p.DeliveryMethod),
		ShippingAddress: p.ShippingAddress,
		PaymentPlan:     domain.PaymentPlan(p.PaymentPlan),
		DPPercentage:    p.DPPercentage,
		Notes:           p.Notes,
		Offline:         p.Offline,
		Actor:           actor,
	}
	if authErr == nil && actor.ID != "" {
		if uid, err := uuid.Parse(actor.ID); err == nil {
			in.Customer.ID = &uid
		}
	}

	o, err := s.checkout.PlaceOrder(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 201, o)
}

func (s *Server) handleSnapSession(w http.ResponseWriter, r *http.Request) {
	var p struct {
		OrderID     uuid.UUID `json:"orderId"`
		PaymentType string    `json:"paymentType"`
	}
	if err := readJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}
	sess, payment, err := s.payments.CreateSnapSession(r.Context(), p.OrderID, domain.PaymentType(p.PaymentType))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{
		"token":       sess.Token,
		"redirectUrl": sess.RedirectURL,
		"paymentId":   payment.ID,
		"amount":      payment.Amount,
	})
}

func (s *Server) handleMidtransConfig(w http.ResponseWriter, r *http.Request) {
	clientKey, snapURL := s.gateway.ClientConfig()
	writeJSON(w, 200, map[string]string{"clientKey": clientKey, "snapUrl": snapURL})
}

// handlePaymentNotification consumes gateway webhooks. Delivery is
// at-least-once; ConfirmPayment deduplicates on transaction id.
func (s *Server) handlePaymentNotification(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		writeError(w, domain.Invalid("body", "tidak terbaca"))
		return
	}
	n, err := s.gateway.ParseNotification(body)
	if err != nil {
		log.Warn().Err(err).Msg("notifikasi midtrans ditolak")
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid signature"})
		return
	}
	if err := s.payments.ConfirmPayment(r.Context(), *n); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) handleManualPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r, func(domain.Role) bool { return true }); !ok {
		return
	}
	var p struct {
		OrderID     uuid.UUID `json:"orderId"`
		PaymentType string    `json:"paymentType"`
		Method      string    `json:"method"`
		ReceiptURL  string    `json:"receiptUrl"`
	}
	if err := readJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}
	payment, err := s.payments.SubmitManual(r.Context(), p.OrderID, domain.PaymentType(p.PaymentType), p.Method, p.ReceiptURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 201, payment)
}

func (s *Server) handlePendingVerifications(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r, domain.Role.CanVerifyPayments); !ok {
		return
	}
	list, err := s.payments.PendingVerifications(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list})
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireRole(w, r, domain.Role.CanVerifyPayments)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, domain.Invalid("id", "bukan uuid"))
		return
	}
	var p struct {
		Note string `json:"note"`
	}
	if err := readJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}
	if err := s.payments.Verify(r.Context(), id, actor, p.Note); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "verified"})
}

func (s *Server) handleRejectPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireRole(w, r, domain.Role.CanVerifyPayments)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, domain.Invalid("id", "bukan uuid"))
		return
	}
	var p struct {
		Note string `json:"note"`
	}
	if err := readJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}
	if err := s.payments.RejectPayment(r.Context(), id, actor, p.Note); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "rejected"})
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	f := domain.OrderFilter{Status: domain.OrderStatus(r.URL.Query().Get("status"))}

	if actor.Role.CanManageOrders() || actor.Role == domain.RoleOwner {
		list, total, err := s.orders.List(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"items": list, "total": total})
		return
	}
	// Customers only see their own orders.
	uid, err := uuid.Parse(actor.ID)
	if err != nil {
		writeError(w, domain.ErrForbidden)
		return
	}
	list, total, err := s.orders.ListForCustomer(r.Context(), uid, f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list, "total": total})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, domain.Invalid("id", "bukan uuid"))
		return
	}
	o, err := s.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !actor.Role.CanManageOrders() && actor.Role != domain.RoleOwner {
		if o.CustomerID == nil || o.CustomerID.String() != actor.ID {
			writeError(w, domain.ErrForbidden)
			return
		}
	}
	payments, err := s.payments.ListByOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"order": o, "payments": payments})
}

func (s *Server) handleAdvanceOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireRole(w, r, domain.Role.CanManageOrders)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, domain.Invalid("id", "bukan uuid"))
		return
	}
	var p struct {
		Note string `json:"note"`
	}
	if err := readJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}
	o, err := s.orders.Advance(r.Context(), id, actor, p.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, o)
}

func (s *Server) handleRejectOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.requireRole(w, r, domain.Role.CanManageOrders)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, domain.Invalid("id", "bukan uuid"))
		return
	}
	var p struct {
		Note string `json:"note"`
	}
	if err := readJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}
	o, err := s.orders.Reject(r.Context(), id, actor, p.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, o)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	role := domain.Role(r.PathValue("role"))
	// Admins may inspect any dashboard; everyone else only their own.
	if actor.Role != domain.RoleAdmin && actor.Role != role {
		writeError(w, domain.ErrForbidden)
		return
	}
	data, err := s.reports.Dashboard(r.Context(), role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, data)
}

func (s *Server) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r, domain.Role.CanViewReports); !ok {
		return
	}
	q := r.URL.Query()
	now := time.Now()
	from := now.AddDate(0, -1, 0)
	to := now
	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, domain.Invalid("from", "format YYYY-MM-DD"))
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, domain.Invalid("to", "format YYYY-MM-DD"))
			return
		}
		// Inclusive end date.
		to = t.AddDate(0, 0, 1)
	}
	rep, err := s.reports.Sales(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	if q.Get("format") == "xlsx" {
		data, err := s.reports.ExportXLSX(rep)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename=laporan-penjualan.xlsx")
		_, _ = w.Write(data)
		return
	}
	writeJSON(w, 200, rep)
}

func (s *Server) handleProvinces(w http.ResponseWriter, r *http.Request) {
	list, err := s.regions.Provinces(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list})
}

func (s *Server) handleRegencies(w http.ResponseWriter, r *http.Request) {
	list, err := s.regions.Regencies(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list})
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	list, err := s.regions.Districts(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": list})
}
