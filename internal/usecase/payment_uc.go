package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

// PaymentUC orchestrates gateway sessions, at-least-once confirmation
// callbacks and the manual verification workflow.
type PaymentUC struct {
	Orders   domain.OrderRepo
	Payments domain.PaymentRepo
	Gateway  domain.PaymentGateway
	Activity domain.ActivityRepo
	Mailer   Mailer
	Now      func() time.Time
}

// CreateSnapSession returns a hosted-checkout token for the given payment
// stage. Idempotent per (order, type): an open payment's token is reused so
// retries never create duplicate charges.
func (uc *PaymentUC) CreateSnapSession(ctx context.Context, orderID uuid.UUID, t domain.PaymentType) (*domain.SnapSession, *domain.Payment, error) {
	o, err := uc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if o.Status == domain.StatusDitolak {
		return nil, nil, domain.Invalid("order", "pesanan sudah ditolak")
	}
	amount, err := stageAmount(o, t)
	if err != nil {
		return nil, nil, err
	}

	if p, err := uc.Payments.FindOpenByOrder(ctx, orderID, t); err == nil && p.SnapToken != "" {
		return &domain.SnapSession{Token: p.SnapToken}, p, nil
	}

	p := &domain.Payment{
		ID:      uuid.New(),
		OrderID: orderID,
		Type:    t,
		Amount:  amount,
		Status:  domain.PayPending,
	}
	sess, err := uc.Gateway.CreateSnapSession(ctx, o, p, domain.GatewayCustomer{
		Name:  o.CustomerName,
		Email: o.CustomerEmail,
		Phone: o.CustomerPhone,
	})
	if err != nil {
		// Order stays in its pre-payment state; the caller may retry.
		return nil, nil, &domain.GatewayError{Op: "create session", Err: err}
	}
	p.SnapToken = sess.Token
	if err := uc.Payments.Create(ctx, p); err != nil {
		return nil, nil, err
	}
	return sess, p, nil
}

// stageAmount derives the charge from the order totals, never from anything
// client-displayed.
func stageAmount(o *domain.Order, t domain.PaymentType) (int64, error) {
	switch t {
	case domain.PaymentFull:
		if o.PaymentPlan != domain.PlanFull {
			return 0, domain.Invalid("paymentType", "pesanan memakai rencana DP")
		}
		return o.Total, nil
	case domain.PaymentDown:
		if o.DownPayment == nil {
			return 0, domain.Invalid("paymentType", "pesanan tanpa uang muka")
		}
		if o.DownPayment.Status == domain.PayPaid {
			return 0, domain.ErrAlreadyProcessed
		}
		return o.DownPayment.Amount, nil
	case domain.PaymentRemaining:
		if o.RemainingPayment == nil {
			return 0, domain.Invalid("paymentType", "pesanan tanpa sisa pembayaran")
		}
		if o.DownPayment != nil && o.DownPayment.Status != domain.PayPaid {
			return 0, domain.Invalid("paymentType", "uang muka belum dibayar")
		}
		if o.RemainingPayment.Status == domain.PayPaid {
			return 0, domain.ErrAlreadyProcessed
		}
		return o.RemainingPayment.Amount, nil
	default:
		return 0, domain.Invalid("paymentType", "tidak dikenal")
	}
}

// ConfirmPayment applies one gateway notification. Gateways retry delivery,
// so the same transaction id may arrive more than once; duplicates are
// acknowledged without re-applying anything.
func (uc *PaymentUC) ConfirmPayment(ctx context.Context, n domain.PaymentNotification) error {
	pid, err := uuid.Parse(n.OrderRef)
	if err != nil {
		return domain.Invalid("orderRef", "bukan id pembayaran")
	}
	p, err := uc.Payments.FindByID(ctx, pid)
	if err != nil {
		return err
	}
	if n.GrossAmount > 0 && n.GrossAmount != p.Amount {
		return domain.Invalid("grossAmount", "tidak sama dengan tagihan")
	}

	target, terminal := mapGatewayStatus(n.Status, n.FraudStatus)
	if !terminal {
		// onPending / onClose: no mutation, order stays pre-payment.
		log.Info().Str("payment", p.ID.String()).Str("status", n.Status).Msg("notifikasi non-final")
		return nil
	}
	if p.Status == target {
		return nil // duplicate delivery
	}

	var paidAt *time.Time
	if target == domain.PayPaid {
		t := n.TransactionTime
		if t.IsZero() {
			t = uc.now()
		}
		paidAt = &t
	}
	if err := uc.Payments.TransitionStatus(ctx, p.ID, domain.PayPending, target, paidAt); err != nil {
		if errors.Is(err, domain.ErrAlreadyProcessed) && targetMatches(ctx, uc.Payments, p.ID, target) {
			return nil
		}
		return err
	}

	p.Status = target
	p.TransactionID = n.TransactionID
	p.Method = n.PaymentMethod
	p.PaidAt = paidAt
	if err := uc.Payments.Save(ctx, p); err != nil {
		return err
	}

	if target == domain.PayPaid {
		return uc.applyPaid(ctx, p)
	}
	return nil
}

func targetMatches(ctx context.Context, repo domain.PaymentRepo, id uuid.UUID, want domain.PaymentStatus) bool {
	cur, err := repo.FindByID(ctx, id)
	return err == nil && cur.Status == want
}

func mapGatewayStatus(status, fraud string) (domain.PaymentStatus, bool) {
	switch status {
	case "capture":
		if fraud != "" && fraud != "accept" {
			return domain.PayPending, false
		}
		return domain.PayPaid, true
	case "settlement":
		return domain.PayPaid, true
	case "deny", "cancel", "failure":
		return domain.PayFailed, true
	case "expire":
		return domain.PayExpired, true
	case "refund", "partial_refund":
		return domain.PayRefunded, true
	default:
		return domain.PayPending, false
	}
}

// SubmitManual records offline payment evidence (e.g. an uploaded transfer
// receipt) that a cashier must verify before it counts.
func (uc *PaymentUC) SubmitManual(ctx context.Context, orderID uuid.UUID, t domain.PaymentType, method, receiptURL string) (*domain.Payment, error) {
	o, err := uc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	amount, err := stageAmount(o, t)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(receiptURL) == "" {
		return nil, domain.Invalid("receiptUrl", "bukti pembayaran wajib diunggah")
	}
	p := &domain.Payment{
		ID:           uuid.New(),
		OrderID:      orderID,
		Type:         t,
		Amount:       amount,
		Method:       method,
		Status:       domain.PayPending,
		Verification: domain.VerificationPending,
		ReceiptURL:   receiptURL,
	}
	if err := uc.Payments.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Verify approves a manually-evidenced payment. Two cashiers racing on the
// same payment resolve through the repository CAS: exactly one wins, the
// other gets ErrAlreadyProcessed, and the order totals update once.
func (uc *PaymentUC) Verify(ctx context.Context, paymentID uuid.UUID, actor domain.Actor, note string) error {
	if !actor.Role.CanVerifyPayments() {
		return domain.ErrForbidden
	}
	p, err := uc.Payments.FindByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if err := uc.Payments.TransitionVerification(ctx, paymentID, domain.VerificationVerified, actor.ID, note); err != nil {
		return err
	}
	now := uc.now()
	if err := uc.Payments.TransitionStatus(ctx, paymentID, domain.PayPending, domain.PayPaid, &now); err != nil {
		return err
	}
	p.Status = domain.PayPaid
	p.PaidAt = &now

	uc.logActivity(ctx, actor, "payment.verify", paymentID.String(), note)
	return uc.applyPaid(ctx, p)
}

// RejectPayment declines the evidence. The note is mandatory since it is
// shown to the customer; order payment fields stay unpaid.
func (uc *PaymentUC) RejectPayment(ctx context.Context, paymentID uuid.UUID, actor domain.Actor, note string) error {
	if !actor.Role.CanVerifyPayments() {
		return domain.ErrForbidden
	}
	if strings.TrimSpace(note) == "" {
		return domain.Invalid("note", "alasan penolakan wajib diisi")
	}
	if err := uc.Payments.TransitionVerification(ctx, paymentID, domain.VerificationRejected, actor.ID, note); err != nil {
		return err
	}
	if err := uc.Payments.TransitionStatus(ctx, paymentID, domain.PayPending, domain.PayFailed, nil); err != nil {
		return err
	}
	uc.logActivity(ctx, actor, "payment.reject", paymentID.String(), note)

	if uc.Mailer != nil {
		if p, err := uc.Payments.FindByID(ctx, paymentID); err == nil {
			if o, err := uc.Orders.FindByID(ctx, p.OrderID); err == nil {
				go func() {
					if err := uc.Mailer.PaymentRejected(o, p, note); err != nil {
						log.Warn().Err(err).Msg("payment rejected mail")
					}
				}()
			}
		}
	}
	return nil
}

func (uc *PaymentUC) PendingVerifications(ctx context.Context) ([]domain.Payment, error) {
	return uc.Payments.ListPendingVerification(ctx)
}

func (uc *PaymentUC) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Payment, error) {
	return uc.Payments.ListByOrder(ctx, orderID)
}

// applyPaid propagates a paid payment into the order's payment details. It
// runs at most once per payment because every caller first wins the status
// CAS.
func (uc *PaymentUC) applyPaid(ctx context.Context, p *domain.Payment) error {
	o, err := uc.Orders.FindByID(ctx, p.OrderID)
	if err != nil {
		return err
	}
	switch p.Type {
	case domain.PaymentFull:
		o.IsPaid = true
	case domain.PaymentDown:
		if o.DownPayment != nil {
			o.DownPayment.Status = domain.PayPaid
		}
	case domain.PaymentRemaining:
		if o.RemainingPayment != nil {
			o.RemainingPayment.Status = domain.PayPaid
		}
	}
	if o.PaymentPlan == domain.PlanDP &&
		o.DownPayment != nil && o.DownPayment.Status == domain.PayPaid &&
		o.RemainingPayment != nil && o.RemainingPayment.Status == domain.PayPaid {
		o.IsPaid = true
	}
	if err := uc.Orders.Save(ctx, o); err != nil {
		return err
	}

	if uc.Mailer != nil && o.CustomerEmail != "" {
		go func(o domain.Order, p domain.Payment) {
			if err := uc.Mailer.PaymentVerified(&o, &p); err != nil {
				log.Warn().Err(err).Str("order", o.Code).Msg("payment mail")
			}
		}(*o, *p)
	}
	return nil
}

func (uc *PaymentUC) logActivity(ctx context.Context, actor domain.Actor, action, entityID, note string) {
	if uc.Activity == nil {
		return
	}
	err := uc.Activity.Append(ctx, &domain.ActivityEntry{
		ID:       uuid.New(),
		Actor:    actor.ID,
		Action:   action,
		Entity:   "payment",
		EntityID: entityID,
		Note:     note,
	})
	if err != nil {
		log.Warn().Err(err).Str("action", action).Msg("activity log append")
	}
}

func (uc *PaymentUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}
