package midtrans

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

const testServerKey = "SB-Mid-server-test"

func testGateway(snapURL, apiURL string) *Gateway {
	g := NewGateway(testServerKey, "SB-Mid-client-test", false)
	if snapURL != "" {
		g.snapURL = snapURL
	}
	if apiURL != "" {
		g.apiURL = apiURL
	}
	return g
}

func sign(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + testServerKey))
	return hex.EncodeToString(sum[:])
}

func TestCreateSnapSession(t *testing.T) {
	var got snapReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions", r.URL.Path)

		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, testServerKey, user)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"token":        "snap-token-1",
			"redirect_url": "https://app.sandbox.midtrans.com/snap/v4/redirection/snap-token-1",
		})
	}))
	defer srv.Close()

	g := testGateway(srv.URL, "")
	p := &domain.Payment{ID: uuid.New(), Amount: 300000, Type: domain.PaymentDown}
	o := &domain.Order{Code: "KVX-20250830-ABC123"}

	sess, err := g.CreateSnapSession(context.Background(), o, p, domain.GatewayCustomer{
		Name: "Budi", Email: "budi@example.com", Phone: "0812",
	})
	require.NoError(t, err)
	assert.Equal(t, "snap-token-1", sess.Token)

	// The gateway order_id is our payment id, one transaction per stage.
	assert.Equal(t, p.ID.String(), got.TransactionDetails.OrderID)
	assert.Equal(t, int64(300000), got.TransactionDetails.GrossAmount)
	require.Len(t, got.ItemDetails, 1)
	assert.Equal(t, int64(300000), got.ItemDetails[0].Price)
	assert.Contains(t, got.ItemDetails[0].Name, "Uang Muka")
}

func TestCreateSnapSessionGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error_messages": []string{"Access denied due to unauthorized transaction"},
		})
	}))
	defer srv.Close()

	g := testGateway(srv.URL, "")
	_, err := g.CreateSnapSession(context.Background(),
		&domain.Order{Code: "KVX-X"},
		&domain.Payment{ID: uuid.New(), Amount: 1000},
		domain.GatewayCustomer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Access denied")
}

func TestCreateSnapSessionMissingServerKey(t *testing.T) {
	g := NewGateway("", "ck", false)
	_, err := g.CreateSnapSession(context.Background(),
		&domain.Order{}, &domain.Payment{ID: uuid.New()}, domain.GatewayCustomer{})
	assert.Error(t, err)
}

func TestParseNotificationValidSignature(t *testing.T) {
	g := testGateway("", "")
	pid := uuid.New().String()
	body, _ := json.Marshal(map[string]string{
		"order_id":           pid,
		"transaction_id":     "mid-tx-1",
		"transaction_status": "settlement",
		"payment_type":       "qris",
		"status_code":        "200",
		"gross_amount":       "300000.00",
		"signature_key":      sign(pid, "200", "300000.00"),
		"transaction_time":   "2025-08-30 14:03:00",
	})

	n, err := g.ParseNotification(body)
	require.NoError(t, err)
	assert.Equal(t, pid, n.OrderRef)
	assert.Equal(t, "settlement", n.Status)
	assert.Equal(t, "qris", n.PaymentMethod)
	assert.Equal(t, int64(300000), n.GrossAmount)
	assert.Equal(t, time.Date(2025, 8, 30, 14, 3, 0, 0, time.Local), n.TransactionTime)
}

func TestParseNotificationBadSignature(t *testing.T) {
	g := testGateway("", "")
	body, _ := json.Marshal(map[string]string{
		"order_id":           "some-order",
		"transaction_status": "settlement",
		"status_code":        "200",
		"gross_amount":       "300000.00",
		"signature_key":      "forged",
	})

	_, err := g.ParseNotification(body)
	var ge *domain.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "verify notification", ge.Op)
}

func TestParseNotificationGarbage(t *testing.T) {
	g := testGateway("", "")
	_, err := g.ParseNotification([]byte("{not json"))
	var ge *domain.GatewayError
	assert.ErrorAs(t, err, &ge)
}

func TestTransactionStatus(t *testing.T) {
	pid := uuid.New().String()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+pid+"/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"order_id":           pid,
			"transaction_status": "expire",
			"gross_amount":       "500000.00",
		})
	}))
	defer srv.Close()

	g := testGateway("", srv.URL)
	n, err := g.TransactionStatus(context.Background(), pid)
	require.NoError(t, err)
	assert.Equal(t, "expire", n.Status)
	assert.Equal(t, int64(500000), n.GrossAmount)
}

func TestAuthorizeHeader(t *testing.T) {
	g := testGateway("", "")
	req, _ := http.NewRequest(http.MethodGet, "http://example.test", nil)
	g.authorize(req)

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte(testServerKey+":"))
	assert.Equal(t, want, req.Header.Get("Authorization"))
}
