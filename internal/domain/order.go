package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryShipping DeliveryMethod = "delivery"
)

type PaymentPlan string

const (
	PlanFull PaymentPlan = "full"
	PlanDP   PaymentPlan = "dp"
)

// DP percentage bounds. The storefront slider enforces the same range but the
// value crosses a trust boundary and is re-validated server side.
const (
	MinDPPercentage = 30
	MaxDPPercentage = 90
)

type Address struct {
	Street     string `json:"street"`
	Province   string `json:"province"`
	City       string `json:"city"`
	District   string `json:"district"`
	PostalCode string `json:"postalCode"`
}

// SizeQuantity is one size bucket of a line item (e.g. M: 12 pcs).
type SizeQuantity struct {
	Size            string `json:"size"`
	Quantity        int    `json:"quantity"`
	AdditionalPrice int64  `json:"additionalPrice"`
}

type ColorChoice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type MaterialChoice struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	AdditionalPrice int64  `json:"additionalPrice"`
}

// CustomDesign carries per-unit customization. Fee is rupiah per unit.
type CustomDesign struct {
	DesignURL string `json:"designUrl"`
	Notes     string `json:"notes"`
	Fee       int64  `json:"customizationFee"`
}

type PriceComponents struct {
	BasePrice         int64 `json:"basePrice"`
	DozenPrice        int64 `json:"dozenPrice"`
	MaterialSurcharge int64 `json:"materialSurcharge"`
}

// SizeDetail is the priced view of one size bucket. DozenUnits counts the
// units billed at the dozen tier, the rest use the unit tier.
type SizeDetail struct {
	Size       string `json:"size"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unitPrice"`
	DozenPrice int64  `json:"dozenPrice"`
	DozenUnits int    `json:"dozenUnits"`
	Subtotal   int64  `json:"subtotal"`
}

// PriceDetails is the deterministic monetary breakdown of one line item.
// Invariant: Total == Subtotal - DiscountAmount + CustomDesignFee, never < 0.
type PriceDetails struct {
	SizeDetails        []SizeDetail    `json:"sizeDetails"`
	Subtotal           int64           `json:"subtotal"`
	DiscountPercentage int             `json:"discountPercentage"`
	DiscountAmount     int64           `json:"discountAmount"`
	CustomDesignFee    int64           `json:"customDesignFee"`
	Total              int64           `json:"total"`
	TotalQuantity      int             `json:"totalQuantity"`
	TotalDozens        int             `json:"totalDozens"`
	Components         PriceComponents `json:"priceComponents"`
}

// OrderItem is a priced line item, frozen into the order at checkout.
type OrderItem struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID      `gorm:"type:uuid;index"`
	ProductID       *uuid.UUID     `gorm:"type:uuid;index"`
	ProductName     string         `gorm:"size:180"`
	ProductImage    string         `gorm:"size:255"`
	BasePrice       int64          `gorm:"not null"`
	DozenPrice      int64          `gorm:"not null;default:0"`
	Color           ColorChoice    `gorm:"type:jsonb;serializer:json"`
	Material        MaterialChoice `gorm:"type:jsonb;serializer:json"`
	SizeBreakdown   []SizeQuantity `gorm:"type:jsonb;serializer:json"`
	CustomDesign    *CustomDesign  `gorm:"type:jsonb;serializer:json"`
	DiscountPercent int            `gorm:"not null;default:0"`
	PriceDetails    PriceDetails   `gorm:"type:jsonb;serializer:json"`
	CreatedAt       time.Time
}

// StatusChange is one append-only audit entry. History is never rewritten.
type StatusChange struct {
	Status    OrderStatus `json:"status"`
	ChangedBy string      `json:"changedBy"`
	Timestamp time.Time   `json:"timestamp"`
	Notes     string      `json:"notes,omitempty"`
}

type PaymentStatus string

const (
	PayPending  PaymentStatus = "pending"
	PayPaid     PaymentStatus = "paid"
	PayExpired  PaymentStatus = "expired"
	PayFailed   PaymentStatus = "failed"
	PayRefunded PaymentStatus = "refunded"
)

// PaymentPortion is the down-payment or remaining-payment slice of an order.
type PaymentPortion struct {
	Percentage int           `json:"percentage,omitempty"`
	Amount     int64         `json:"amount"`
	Status     PaymentStatus `json:"status"`
	DueDate    *time.Time    `json:"dueDate,omitempty"`
}

type Order struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Code          string         `gorm:"uniqueIndex;size:30"`
	CustomerID    *uuid.UUID     `gorm:"type:uuid;index"`
	CustomerName  string         `gorm:"size:140"`
	CustomerEmail string         `gorm:"size:140;index"`
	CustomerPhone string         `gorm:"size:50"`
	Status        OrderStatus    `gorm:"type:varchar(30);index"`
	StatusHistory []StatusChange `gorm:"type:jsonb;serializer:json"`
	Items         []OrderItem

	Subtotal       int64 `gorm:"not null"`
	DiscountAmount int64 `gorm:"not null;default:0"`
	CustomFee      int64 `gorm:"not null;default:0"`
	Total          int64 `gorm:"not null"`

	PaymentPlan      PaymentPlan     `gorm:"type:varchar(10)"`
	DownPayment      *PaymentPortion `gorm:"type:jsonb;serializer:json"`
	RemainingPayment *PaymentPortion `gorm:"type:jsonb;serializer:json"`
	IsPaid           bool            `gorm:"not null;default:false;index"`

	DeliveryMethod  DeliveryMethod `gorm:"type:varchar(10)"`
	ShippingAddress *Address       `gorm:"type:jsonb;serializer:json"`
	IsOfflineOrder  bool           `gorm:"not null;default:false;index"`
	Notes           string         `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderFilter struct {
	Status     OrderStatus
	CustomerID *uuid.UUID
	Offline    *bool
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

type OrderRepo interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByCode(ctx context.Context, code string) (*Order, error)
	List(ctx context.Context, f OrderFilter) ([]Order, int64, error)
	Save(ctx context.Context, o *Order) error
	// AppendStatus atomically moves the order from `from` to change.Status and
	// appends the history entry. Returns ErrAlreadyProcessed when the order is
	// no longer in `from`.
	AppendStatus(ctx context.Context, id uuid.UUID, from OrderStatus, change StatusChange) error
	CreatedBetween(ctx context.Context, from, to time.Time) ([]Order, error)
}
