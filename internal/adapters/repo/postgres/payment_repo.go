package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

type PaymentRepo struct{ db *gorm.DB }

func NewPaymentRepo(db *gorm.DB) *PaymentRepo { return &PaymentRepo{db: db} }

func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) FindByTransactionID(ctx context.Context, txID string) (*domain.Payment, error) {
	var p domain.Payment
	if txID == "" {
		return nil, domain.ErrNotFound
	}
	if err := r.db.WithContext(ctx).First(&p, "transaction_id = ?", txID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) FindOpenByOrder(ctx context.Context, orderID uuid.UUID, t domain.PaymentType) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND type = ? AND status = ?", orderID, t, domain.PayPending).
		Order("created_at desc").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) Save(ctx context.Context, p *domain.Payment) error {
	p.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(p).Error
}

// TransitionStatus is the single point of mutual exclusion for payment
// state: a conditional UPDATE that only fires while the row is still in
// `from`. Losing the race yields ErrAlreadyProcessed, never a double apply.
func (r *PaymentRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.PaymentStatus, paidAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}
	res := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOrProcessed(ctx, id)
	}
	return nil
}

func (r *PaymentRepo) TransitionVerification(ctx context.Context, id uuid.UUID, to domain.VerificationStatus, by, note string) error {
	res := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ? AND verification = ?", id, domain.VerificationPending).
		Updates(map[string]interface{}{
			"verification":      to,
			"verified_by":       by,
			"verification_note": note,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOrProcessed(ctx, id)
	}
	return nil
}

func (r *PaymentRepo) missingOrProcessed(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Payment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrAlreadyProcessed
}

func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Payment, error) {
	var list []domain.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&list).Error
	return list, err
}

func (r *PaymentRepo) ListPendingVerification(ctx context.Context) ([]domain.Payment, error) {
	var list []domain.Payment
	err := r.db.WithContext(ctx).
		Where("verification = ?", domain.VerificationPending).
		Order("created_at asc").
		Find(&list).Error
	return list, err
}

func (r *PaymentRepo) PaidBetween(ctx context.Context, from, to time.Time) ([]domain.Payment, error) {
	var list []domain.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND paid_at >= ? AND paid_at < ?", domain.PayPaid, from, to).
		Find(&list).Error
	return list, err
}
