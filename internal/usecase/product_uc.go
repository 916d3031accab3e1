package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

// ProductUC serves the catalog the storefront configures line items from.
type ProductUC struct {
	Products domain.ProductRepo
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Products.List(ctx, f)
}

func (uc *ProductUC) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, domain.Invalid("slug", "wajib diisi")
	}
	return uc.Products.FindBySlug(ctx, slug)
}

func (uc *ProductUC) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if strings.TrimSpace(p.Name) == "" {
		return domain.Invalid("name", "wajib diisi")
	}
	if p.BasePrice < 0 || p.DozenPrice < 0 || p.CustomizationFee < 0 {
		return domain.Invalid("price", "harus >= 0")
	}
	if p.Slug == "" {
		p.Slug = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(p.Name), " ", "-"))
	}
	return uc.Products.Save(ctx, p)
}
