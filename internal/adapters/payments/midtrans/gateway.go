package midtrans

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

const (
	sandboxSnapURL = "https://app.sandbox.midtrans.com/snap/v1"
	prodSnapURL    = "https://app.midtrans.com/snap/v1"
	sandboxAPIURL  = "https://api.sandbox.midtrans.com/v2"
	prodAPIURL     = "https://api.midtrans.com/v2"

	sandboxSnapJS = "https://app.sandbox.midtrans.com/snap/snap.js"
	prodSnapJS    = "https://app.midtrans.com/snap/snap.js"
)

// Gateway talks to Midtrans Snap. The order_id sent to the gateway is our
// payment id, so each payment stage (DP, remainder, full) is its own
// gateway transaction.
type Gateway struct {
	serverKey  string
	clientKey  string
	snapURL    string
	apiURL     string
	snapJS     string
	httpClient *http.Client
}

func NewGateway(serverKey, clientKey string, production bool) *Gateway {
	g := &Gateway{
		serverKey:  serverKey,
		clientKey:  clientKey,
		snapURL:    sandboxSnapURL,
		apiURL:     sandboxAPIURL,
		snapJS:     sandboxSnapJS,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if production {
		g.snapURL = prodSnapURL
		g.apiURL = prodAPIURL
		g.snapJS = prodSnapJS
	}
	return g
}

// ClientConfig is what the storefront needs to load the Snap script.
func (g *Gateway) ClientConfig() (clientKey, snapURL string) {
	return g.clientKey, g.snapJS
}

type snapItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type snapReq struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	ItemDetails     []snapItem `json:"item_details"`
	CustomerDetails struct {
		FirstName string `json:"first_name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	} `json:"customer_details"`
}

type snapResp struct {
	Token       string   `json:"token"`
	RedirectURL string   `json:"redirect_url"`
	Errors      []string `json:"error_messages"`
}

func (g *Gateway) CreateSnapSession(ctx context.Context, o *domain.Order, p *domain.Payment, c domain.GatewayCustomer) (*domain.SnapSession, error) {
	if g.serverKey == "" {
		return nil, errors.New("MIDTRANS_SERVER_KEY kosong")
	}
	if o == nil || p == nil {
		return nil, errors.New("order/payment nil")
	}

	var req snapReq
	req.TransactionDetails.OrderID = p.ID.String()
	req.TransactionDetails.GrossAmount = p.Amount
	req.CustomerDetails.FirstName = c.Name
	req.CustomerDetails.Email = c.Email
	req.CustomerDetails.Phone = c.Phone
	// A single line keeps gross_amount consistent for partial payments.
	req.ItemDetails = []snapItem{{
		ID:       o.Code,
		Name:     stageLabel(p.Type) + " " + o.Code,
		Price:    p.Amount,
		Quantity: 1,
	}}

	buf, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.snapURL+"/transactions", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	g.authorize(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("koneksi midtrans: %w", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(res.Body, 65536))
	if res.StatusCode >= 300 {
		var sr snapResp
		if json.Unmarshal(body, &sr) == nil && len(sr.Errors) > 0 {
			return nil, fmt.Errorf("midtrans snap status %d: %s", res.StatusCode, sr.Errors[0])
		}
		return nil, fmt.Errorf("midtrans snap status %d: %s", res.StatusCode, string(body))
	}
	var sr snapResp
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, err
	}
	if sr.Token == "" {
		return nil, errors.New("respons snap tanpa token")
	}
	return &domain.SnapSession{Token: sr.Token, RedirectURL: sr.RedirectURL}, nil
}

func stageLabel(t domain.PaymentType) string {
	switch t {
	case domain.PaymentDown:
		return "Uang Muka"
	case domain.PaymentRemaining:
		return "Pelunasan"
	default:
		return "Pembayaran"
	}
}

type notification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionTime   string `json:"transaction_time"`
}

// ParseNotification decodes a webhook body and verifies its SHA-512
// signature (order_id + status_code + gross_amount + server key). A bad
// signature is a GatewayError, not a silent drop, so the caller can 403.
func (g *Gateway) ParseNotification(body []byte) (*domain.PaymentNotification, error) {
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, &domain.GatewayError{Op: "parse notification", Err: err}
	}
	if !g.validSignature(n) {
		return nil, &domain.GatewayError{Op: "verify notification", Err: errors.New("signature tidak cocok")}
	}
	return n.toDomain(), nil
}

func (g *Gateway) validSignature(n notification) bool {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + g.serverKey))
	return hex.EncodeToString(sum[:]) == n.SignatureKey
}

// TransactionStatus polls the gateway, used to reconcile a session whose
// notification never arrived.
func (g *Gateway) TransactionStatus(ctx context.Context, orderRef string) (*domain.PaymentNotification, error) {
	if orderRef == "" {
		return nil, errors.New("orderRef kosong")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+"/"+orderRef+"/status", nil)
	if err != nil {
		return nil, err
	}
	g.authorize(req)
	res, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("koneksi midtrans: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("midtrans status %d: %s", res.StatusCode, string(b))
	}
	var n notification
	if err := json.NewDecoder(res.Body).Decode(&n); err != nil {
		return nil, err
	}
	return n.toDomain(), nil
}

func (n notification) toDomain() *domain.PaymentNotification {
	gross, _ := strconv.ParseFloat(n.GrossAmount, 64)
	t, _ := time.ParseInLocation("2006-01-02 15:04:05", n.TransactionTime, time.Local)
	return &domain.PaymentNotification{
		OrderRef:        n.OrderID,
		TransactionID:   n.TransactionID,
		Status:          n.TransactionStatus,
		FraudStatus:     n.FraudStatus,
		PaymentMethod:   n.PaymentType,
		GrossAmount:     int64(gross),
		TransactionTime: t,
	}
}

func (g *Gateway) authorize(req *http.Request) {
	cred := base64.StdEncoding.EncodeToString([]byte(g.serverKey + ":"))
	req.Header.Set("Authorization", "Basic "+cred)
	req.Header.Set("Accept", "application/json")
}
