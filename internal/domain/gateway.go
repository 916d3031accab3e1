package domain

import (
	"context"
	"time"
)

// SnapSession is what the storefront needs to open the hosted checkout
// widget: `window.snap.pay(token, callbacks)`.
type SnapSession struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
}

type GatewayCustomer struct {
	Name  string
	Email string
	Phone string
}

// PaymentNotification is the normalized gateway callback/webhook payload.
// OrderRef carries our payment id (sent as the gateway order_id).
type PaymentNotification struct {
	OrderRef        string
	TransactionID   string
	Status          string
	FraudStatus     string
	PaymentMethod   string
	GrossAmount     int64
	TransactionTime time.Time
}

// PaymentGateway is the capability interface over the hosted checkout
// provider. Implementations must be safe to call repeatedly for the same
// payment without creating duplicate charges.
type PaymentGateway interface {
	CreateSnapSession(ctx context.Context, o *Order, p *Payment, c GatewayCustomer) (*SnapSession, error)
	TransactionStatus(ctx context.Context, orderRef string) (*PaymentNotification, error)
}
