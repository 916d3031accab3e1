package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

// OrderUC owns every status mutation. Nothing outside this usecase patches
// order status or history.
type OrderUC struct {
	Orders   domain.OrderRepo
	Activity domain.ActivityRepo
	Mailer   Mailer
	Now      func() time.Time
}

func (uc *OrderUC) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.Orders.FindByID(ctx, id)
}

func (uc *OrderUC) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Orders.List(ctx, f)
}

// ListForCustomer scopes the listing to the caller's own orders.
func (uc *OrderUC) ListForCustomer(ctx context.Context, customerID uuid.UUID, f domain.OrderFilter) ([]domain.Order, int64, error) {
	f.CustomerID = &customerID
	return uc.List(ctx, f)
}

// Advance moves the order one step along the forward path. Only admin,
// cashier and staff may advance; the transition appends exactly one history
// entry via an atomic update.
func (uc *OrderUC) Advance(ctx context.Context, orderID uuid.UUID, actor domain.Actor, note string) (*domain.Order, error) {
	if !actor.Role.CanManageOrders() {
		return nil, domain.ErrForbidden
	}
	o, err := uc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	next, ok := domain.NextStatus(o.Status)
	if !ok {
		return nil, domain.Invalid("status", "pesanan sudah pada status akhir")
	}
	change := domain.StatusChange{
		Status:    next,
		ChangedBy: actor.ID,
		Timestamp: uc.now(),
		Notes:     strings.TrimSpace(note),
	}
	if err := uc.Orders.AppendStatus(ctx, orderID, o.Status, change); err != nil {
		return nil, err
	}
	uc.logActivity(ctx, actor, "order.advance", orderID.String(), string(next))
	o, err = uc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	uc.notifyStatus(o)
	return o, nil
}

// Reject moves any non-terminal order to Ditolak. The note is mandatory: it
// is the customer-facing justification.
func (uc *OrderUC) Reject(ctx context.Context, orderID uuid.UUID, actor domain.Actor, note string) (*domain.Order, error) {
	if !actor.Role.CanManageOrders() {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(note) == "" {
		return nil, domain.Invalid("note", "alasan penolakan wajib diisi")
	}
	o, err := uc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(o.Status, domain.StatusDitolak) {
		return nil, domain.Invalid("status", "pesanan sudah pada status akhir")
	}
	change := domain.StatusChange{
		Status:    domain.StatusDitolak,
		ChangedBy: actor.ID,
		Timestamp: uc.now(),
		Notes:     strings.TrimSpace(note),
	}
	if err := uc.Orders.AppendStatus(ctx, orderID, o.Status, change); err != nil {
		return nil, err
	}
	uc.logActivity(ctx, actor, "order.reject", orderID.String(), note)
	o, err = uc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	uc.notifyStatus(o)
	return o, nil
}

func (uc *OrderUC) logActivity(ctx context.Context, actor domain.Actor, action, entityID, note string) {
	if uc.Activity == nil {
		return
	}
	err := uc.Activity.Append(ctx, &domain.ActivityEntry{
		ID:       uuid.New(),
		Actor:    actor.ID,
		Action:   action,
		Entity:   "order",
		EntityID: entityID,
		Note:     note,
	})
	if err != nil {
		log.Warn().Err(err).Str("action", action).Msg("activity log append")
	}
}

func (uc *OrderUC) notifyStatus(o *domain.Order) {
	if uc.Mailer == nil || o.CustomerEmail == "" {
		return
	}
	go func(o domain.Order) {
		if err := uc.Mailer.OrderStatusChanged(&o); err != nil {
			log.Warn().Err(err).Str("order", o.Code).Msg("status mail")
		}
	}(*o)
}

func (uc *OrderUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}
