package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PaymentType string

const (
	PaymentDown      PaymentType = "downPayment"
	PaymentRemaining PaymentType = "remainingPayment"
	PaymentFull      PaymentType = "fullPayment"
)

// VerificationStatus is the manual-review sub-state of a payment. Gateway
// confirmed payments keep VerificationNone; offline evidence enters the
// pending → verified|rejected workflow, terminal either way.
type VerificationStatus string

const (
	VerificationNone     VerificationStatus = ""
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type Payment struct {
	ID      uuid.UUID   `gorm:"type:uuid;primaryKey"`
	OrderID uuid.UUID   `gorm:"type:uuid;index"`
	Type    PaymentType `gorm:"type:varchar(20);index"`
	Amount  int64       `gorm:"not null"`
	Method  string      `gorm:"size:40"`

	Status PaymentStatus `gorm:"type:varchar(16);index"`

	Verification     VerificationStatus `gorm:"type:varchar(16);index"`
	VerifiedBy       string             `gorm:"size:140"`
	VerificationNote string             `gorm:"type:text"`

	// TransactionID is the gateway transaction id, the idempotency key for
	// at-least-once notification delivery. Empty for manual payments.
	TransactionID string `gorm:"size:100;index"`
	SnapToken     string `gorm:"size:100"`
	ReceiptURL    string `gorm:"size:255"`

	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PaymentRepo interface {
	Create(ctx context.Context, p *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByTransactionID(ctx context.Context, txID string) (*Payment, error)
	// FindOpenByOrder returns the not-yet-terminal payment of the given type,
	// used to reuse Snap tokens instead of creating duplicate sessions.
	FindOpenByOrder(ctx context.Context, orderID uuid.UUID, t PaymentType) (*Payment, error)
	Save(ctx context.Context, p *Payment) error
	// TransitionStatus is a compare-and-set on payments.status. Returns
	// ErrAlreadyProcessed when the row was not in `from` anymore.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to PaymentStatus, paidAt *time.Time) error
	// TransitionVerification is the CAS for the manual workflow, always from
	// VerificationPending.
	TransitionVerification(ctx context.Context, id uuid.UUID, to VerificationStatus, by, note string) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error)
	ListPendingVerification(ctx context.Context) ([]Payment, error)
	PaidBetween(ctx context.Context, from, to time.Time) ([]Payment, error)
}

// ActivityEntry is the audit log row written on verification decisions and
// status transitions.
type ActivityEntry struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Actor    string    `gorm:"size:140;index"`
	Action   string    `gorm:"size:60;index"`
	Entity   string    `gorm:"size:30"`
	EntityID string    `gorm:"size:60;index"`
	Note     string    `gorm:"type:text"`

	CreatedAt time.Time
}

type ActivityRepo interface {
	Append(ctx context.Context, e *ActivityEntry) error
	ListByEntity(ctx context.Context, entity, entityID string) ([]ActivityEntry, error)
}
