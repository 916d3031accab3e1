package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iosramgio/appkonveksimax-sub003/internal/adapters/geo"
	"github.com/iosramgio/appkonveksimax-sub003/internal/adapters/payments/midtrans"
	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
	"github.com/iosramgio/appkonveksimax-sub003/internal/usecase"
)

type Server struct {
	mux *http.ServeMux

	auth     *usecase.AuthUC
	products *usecase.ProductUC
	checkout *usecase.CheckoutUC
	orders   *usecase.OrderUC
	payments *usecase.PaymentUC
	reports  *usecase.ReportUC
	gateway  *midtrans.Gateway
	regions  *geo.Client

	jwtSecret []byte
}

func New(
	auth *usecase.AuthUC,
	products *usecase.ProductUC,
	checkout *usecase.CheckoutUC,
	orders *usecase.OrderUC,
	payments *usecase.PaymentUC,
	reports *usecase.ReportUC,
	gateway *midtrans.Gateway,
	regions *geo.Client,
	jwtSecret []byte,
) http.Handler {
	s := &Server{
		mux:       http.NewServeMux(),
		auth:      auth,
		products:  products,
		checkout:  checkout,
		orders:    orders,
		payments:  payments,
		reports:   reports,
		gateway:   gateway,
		regions:   regions,
		jwtSecret: jwtSecret,
	}
	s.routes()
	return Chain(s.mux,
		RateLimit(120),
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)

	s.mux.HandleFunc("GET /api/products", s.handleProducts)
	s.mux.HandleFunc("GET /api/products/{slug}", s.handleProduct)

	s.mux.HandleFunc("POST /api/checkout", s.handleCheckout)

	s.mux.HandleFunc("POST /api/payments/snap", s.handleSnapSession)
	s.mux.HandleFunc("GET /api/payments/midtrans-config", s.handleMidtransConfig)
	s.mux.HandleFunc("POST /api/payments/confirm", s.handlePaymentNotification)
	s.mux.HandleFunc("POST /api/payments/manual", s.handleManualPayment)
	s.mux.HandleFunc("GET /api/payments/pending", s.handlePendingVerifications)
	s.mux.HandleFunc("POST /api/payments/verify/{id}", s.handleVerifyPayment)
	s.mux.HandleFunc("POST /api/payments/reject/{id}", s.handleRejectPayment)

	s.mux.HandleFunc("GET /api/orders", s.handleListOrders)
	s.mux.HandleFunc("GET /api/orders/{id}", s.handleGetOrder)
	s.mux.HandleFunc("POST /api/orders/{id}/status", s.handleAdvanceOrder)
	s.mux.HandleFunc("POST /api/orders/{id}/reject", s.handleRejectOrder)

	s.mux.HandleFunc("GET /api/dashboard/{role}", s.handleDashboard)
	s.mux.HandleFunc("GET /api/reports/sales", s.handleSalesReport)

	s.mux.HandleFunc("GET /api/regions/provinces", s.handleProvinces)
	s.mux.HandleFunc("GET /api/regions/provinces/{id}/regencies", s.handleRegencies)
	s.mux.HandleFunc("GET /api/regions/regencies/{id}/districts", s.handleDistricts)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.Invalid("body", "json tidak valid")
	}
	return nil
}

// writeError maps domain errors onto HTTP semantics. AlreadyProcessed is a
// distinct 409 payload so clients refresh state instead of retrying.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var ge *domain.GatewayError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "validation", "field": ve.Field, "message": ve.Msg,
		})
	case errors.Is(err, domain.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "empty_cart", "message": err.Error(),
		})
	case errors.Is(err, domain.ErrAlreadyProcessed):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": "already_processed", "message": err.Error(),
		})
	case errors.Is(err, domain.ErrAuthExpired):
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": "auth_expired", "message": err.Error(),
		})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": "forbidden", "message": err.Error(),
		})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": "not_found", "message": err.Error(),
		})
	case errors.As(err, &ge):
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": "gateway", "message": ge.Error(), "retryable": true,
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "internal", "message": "terjadi kesalahan",
		})
	}
}
