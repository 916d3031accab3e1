package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

type ActivityRepo struct{ db *gorm.DB }

func NewActivityRepo(db *gorm.DB) *ActivityRepo { return &ActivityRepo{db: db} }

func (r *ActivityRepo) Append(ctx context.Context, e *domain.ActivityEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ActivityRepo) ListByEntity(ctx context.Context, entity, entityID string) ([]domain.ActivityEntry, error) {
	var list []domain.ActivityEntry
	err := r.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at asc").
		Find(&list).Error
	return list, err
}
