package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is a configurable konveksi item. All prices are integer rupiah.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Slug        string    `gorm:"uniqueIndex;size:140"`
	Name        string    `gorm:"size:180"`
	Description string    `gorm:"type:text"`
	ImageURL    string    `gorm:"size:255"`
	BasePrice   int64     `gorm:"not null"`
	// DozenPrice is the discounted per-unit rate (harga lusin) applied to
	// dozen-aligned quantities. Zero disables the tier.
	DozenPrice       int64  `gorm:"not null;default:0"`
	CustomizationFee int64  `gorm:"not null;default:0"`
	Category         string `gorm:"size:100"`
	Active           bool   `gorm:"default:true;index"`
	Materials        []Material
	Colors           []Color
	Sizes            []SizeOption
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Material struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID       uuid.UUID `gorm:"type:uuid;index"`
	Name            string    `gorm:"size:100"`
	AdditionalPrice int64     `gorm:"not null;default:0"`
}

type Color struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;index"`
	Name      string    `gorm:"size:60"`
	Code      string    `gorm:"size:10"`
}

type SizeOption struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID       uuid.UUID `gorm:"type:uuid;index"`
	Name            string    `gorm:"size:10"`
	AdditionalPrice int64     `gorm:"not null;default:0"`
}

type ProductFilter struct {
	Query    string
	Category string
	Active   *bool
	Sort     string
	Page     int
	PageSize int
}

type ProductRepo interface {
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Save(ctx context.Context, p *Product) error
}
