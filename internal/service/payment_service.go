package service

import (
	"context"
	"strings"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/repository"

	"go.uber.org/zap"
)

type CreatePaymentInput struct {
	OrderID       uint
	PaymentMethod models.PaymentMethod
	Notes         string
}

type ProcessPaymentInput struct {
	Status        models.PaymentStatus
	TransactionID string
	Notes         string
}

type PaymentService struct {
	repo   *repository.Repository
	notify orderNotifier
	now    func() time.Time
	log    *zap.Logger
}

func NewPaymentService(repo *repository.Repository, events EventBus, log *zap.Logger) *PaymentService {
	return &PaymentService{
		repo:   repo,
		notify: newOrderNotifier(events, log),
		now:    time.Now,
		log:    log,
	}
}

// settlesImmediately reports whether the method is captured at checkout.
func settlesImmediately(m models.PaymentMethod) bool {
	return m != models.PaymentBankTransfer
}

// CreatePayment records the payment for an unpaid order. Card, PayPal and cash on delivery
// settle at once and mark the order paid; bank transfers wait for staff processing.
func (s *PaymentService) CreatePayment(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	o, err := scopedOrder(ctx, s.repo, in.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderStatusCreated {
		return nil, ErrOrderNotPayable
	}
	if o.Payment != nil {
		return nil, ErrPaymentExists
	}

	p := &models.Payment{
		OrderID:       o.ID,
		Amount:        o.FinalPrice,
		PaymentMethod: in.PaymentMethod,
		Status:        models.PaymentStatusPending,
		Notes:         strings.TrimSpace(in.Notes),
		PaymentDate:   s.now(),
	}
	settled := settlesImmediately(in.PaymentMethod)
	if settled {
		p.Status = models.PaymentStatusCompleted
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		existing, err := tx.Payments.GetByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrPaymentExists
		}
		if err := tx.Payments.Create(ctx, p); err != nil {
			return err
		}
		p.TransactionID = models.DefaultTransactionID(p.ID)
		if err := tx.Payments.Save(ctx, p); err != nil {
			return err
		}
		if settled {
			return tx.Orders.MarkPaid(ctx, o.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment recorded",
		zap.Uint("payment_id", p.ID),
		zap.Uint("order_id", o.ID),
		zap.String("method", string(p.PaymentMethod)),
		zap.String("status", string(p.Status)),
	)
	if settled {
		s.emitPaid(ctx, o.ID)
	}
	return p, nil
}

// ProcessPayment lets staff settle or fail a pending payment.
func (s *PaymentService) ProcessPayment(ctx context.Context, id uint, in ProcessPaymentInput) (*models.Payment, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.PaymentStatusCompleted
	}
	if !in.Status.Valid() {
		return nil, ErrInvalidPaymentStatus
	}
	p, err := s.repo.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPaymentNotFound
	}
	if p.IsFinal() {
		return nil, ErrPaymentAlreadyProcessed
	}

	p.Status = in.Status
	if tid := strings.TrimSpace(in.TransactionID); tid != "" {
		p.TransactionID = tid
	}
	if n := strings.TrimSpace(in.Notes); n != "" {
		p.Notes = n
	}

	markPaid := false
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Payments.Save(ctx, p); err != nil {
			return err
		}
		if p.Status != models.PaymentStatusCompleted || p.Order == nil {
			return nil
		}
		if checkPayable(p.Order) != nil {
			return nil
		}
		markPaid = true
		return tx.Orders.MarkPaid(ctx, p.OrderID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("payment processed", zap.Uint("payment_id", p.ID), zap.String("status", string(p.Status)))
	if markPaid {
		s.emitPaid(ctx, p.OrderID)
	}
	return p, nil
}

func (s *PaymentService) emitPaid(ctx context.Context, orderID uint) {
	o, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		s.log.Warn("reload paid order failed", zap.Uint("order_id", orderID), zap.Error(err))
		return
	}
	s.notify.paid(ctx, o)
}

func (s *PaymentService) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	uid, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || (role != RoleStaff && (p.Order == nil || !p.Order.IsOwnedBy(uid))) {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

func (s *PaymentService) ListPayments(ctx context.Context) ([]models.Payment, error) {
	uid, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if role == RoleStaff {
		return s.repo.Payments.List(ctx, nil)
	}
	return s.repo.Payments.List(ctx, &uid)
}
