package usecase

import "github.com/iosramgio/appkonveksimax-sub003/internal/domain"

// Mailer sends customer-facing notifications. Implementations must be safe
// to call from goroutines; a nil Mailer disables mail.
type Mailer interface {
	OrderStatusChanged(o *domain.Order) error
	PaymentVerified(o *domain.Order, p *domain.Payment) error
	PaymentRejected(o *domain.Order, p *domain.Payment, note string) error
}
