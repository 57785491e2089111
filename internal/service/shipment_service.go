package service

import (
	"context"
	"strings"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/repository"

	"go.uber.org/zap"
)

type CreateShipmentInput struct {
	OrderID           uint
	Status            models.ShipmentStatus
	ShippingCompany   models.ShippingCompany
	TrackingNumber    string
	TrackingURL       string
	EstimatedDelivery *time.Time
	Notes             string
}

type ShipmentPatch struct {
	Status            *models.ShipmentStatus
	ShippingCompany   *models.ShippingCompany
	TrackingNumber    *string
	TrackingURL       *string
	EstimatedDelivery *time.Time
	Notes             *string
}

type MarkShippedInput struct {
	TrackingNumber    string
	ShippingCompany   *models.ShippingCompany
	EstimatedDelivery *time.Time
}

type ShipmentService struct {
	repo   *repository.Repository
	notify orderNotifier
	log    *zap.Logger
}

func NewShipmentService(repo *repository.Repository, events EventBus, log *zap.Logger) *ShipmentService {
	return &ShipmentService{repo: repo, notify: newOrderNotifier(events, log), log: log}
}

func (s *ShipmentService) CreateShipment(ctx context.Context, in CreateShipmentInput) (*models.Shipment, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.ShipmentPreparing
	}
	if !in.Status.Valid() {
		return nil, ErrInvalidShipmentStatus
	}
	if in.ShippingCompany == "" {
		in.ShippingCompany = models.CompanyAras
	}
	if !in.ShippingCompany.Valid() {
		return nil, ErrInvalidShippingCompany
	}
	o, err := s.repo.Orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if o.Status != models.OrderStatusCreated && o.Status != models.OrderStatusPaid {
		return nil, ErrOrderNotShippable
	}
	if o.Shipment != nil {
		return nil, ErrShipmentExists
	}

	sh := &models.Shipment{
		OrderID:           o.ID,
		Status:            in.Status,
		ShippingCompany:   in.ShippingCompany,
		TrackingNumber:    strings.TrimSpace(in.TrackingNumber),
		TrackingURL:       strings.TrimSpace(in.TrackingURL),
		EstimatedDelivery: in.EstimatedDelivery,
		Notes:             in.Notes,
	}
	return s.persist(ctx, sh, o.Status, func(tx *repository.Repository) error {
		existing, err := tx.Shipments.GetByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrShipmentExists
		}
		return tx.Shipments.Create(ctx, sh)
	})
}

func (s *ShipmentService) UpdateShipment(ctx context.Context, id uint, in ShipmentPatch) (*models.Shipment, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	sh, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, ErrInvalidShipmentStatus
		}
		sh.Status = *in.Status
	}
	if in.ShippingCompany != nil {
		if !in.ShippingCompany.Valid() {
			return nil, ErrInvalidShippingCompany
		}
		sh.ShippingCompany = *in.ShippingCompany
	}
	if in.TrackingNumber != nil {
		sh.TrackingNumber = strings.TrimSpace(*in.TrackingNumber)
	}
	if in.TrackingURL != nil {
		sh.TrackingURL = strings.TrimSpace(*in.TrackingURL)
	}
	if in.EstimatedDelivery != nil {
		sh.EstimatedDelivery = in.EstimatedDelivery
	}
	if in.Notes != nil {
		sh.Notes = *in.Notes
	}
	return s.save(ctx, sh)
}

func (s *ShipmentService) MarkShipped(ctx context.Context, id uint, in MarkShippedInput) (*models.Shipment, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	sh, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh.IsInTransit() || sh.Status == models.ShipmentDelivered {
		return nil, ErrAlreadyShipped
	}
	if in.ShippingCompany != nil {
		if !in.ShippingCompany.Valid() {
			return nil, ErrInvalidShippingCompany
		}
		sh.ShippingCompany = *in.ShippingCompany
	}
	if tn := strings.TrimSpace(in.TrackingNumber); tn != "" {
		sh.TrackingNumber = tn
	}
	if in.EstimatedDelivery != nil {
		sh.EstimatedDelivery = in.EstimatedDelivery
	}
	sh.Status = models.ShipmentShipped
	return s.save(ctx, sh)
}

func (s *ShipmentService) MarkDelivered(ctx context.Context, id uint) (*models.Shipment, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	sh, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh.Status == models.ShipmentDelivered {
		return nil, ErrAlreadyDelivered
	}
	sh.Status = models.ShipmentDelivered
	return s.save(ctx, sh)
}

func (s *ShipmentService) load(ctx context.Context, id uint) (*models.Shipment, error) {
	sh, err := s.repo.Shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, ErrShipmentNotFound
	}
	return sh, nil
}

func (s *ShipmentService) save(ctx context.Context, sh *models.Shipment) (*models.Shipment, error) {
	var before models.OrderStatus
	if sh.Order != nil {
		before = sh.Order.Status
	}
	return s.persist(ctx, sh, before, func(tx *repository.Repository) error {
		return tx.Shipments.Save(ctx, sh)
	})
}

// persist writes the shipment and mirrors shipped/delivered onto the order in one transaction.
// The matching notification is sent after commit, once per order transition.
func (s *ShipmentService) persist(ctx context.Context, sh *models.Shipment, before models.OrderStatus, write func(*repository.Repository) error) (*models.Shipment, error) {
	mirrored, mirrors := sh.MirroredOrderStatus()
	changed := mirrors && mirrored != before
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := write(tx); err != nil {
			return err
		}
		if changed {
			return tx.Orders.UpdateStatus(ctx, sh.OrderID, mirrored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("shipment saved",
		zap.Uint("shipment_id", sh.ID),
		zap.Uint("order_id", sh.OrderID),
		zap.String("status", string(sh.Status)),
	)

	out, err := s.repo.Shipments.GetByID(ctx, sh.ID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = sh
	}
	if changed {
		o, err := s.repo.Orders.GetByID(ctx, sh.OrderID)
		if err != nil {
			s.log.Warn("reload shipped order failed", zap.Uint("order_id", sh.OrderID), zap.Error(err))
			return out, nil
		}
		if mirrored == models.OrderStatusShipped {
			s.notify.shipped(ctx, o)
		} else {
			s.notify.delivered(ctx, o)
		}
	}
	return out, nil
}

func (s *ShipmentService) GetShipment(ctx context.Context, id uint) (*models.Shipment, error) {
	uid, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	sh, err := s.repo.Shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh == nil || (role != RoleStaff && (sh.Order == nil || !sh.Order.IsOwnedBy(uid))) {
		return nil, ErrShipmentNotFound
	}
	return sh, nil
}

func (s *ShipmentService) ListShipments(ctx context.Context) ([]models.Shipment, error) {
	uid, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if role == RoleStaff {
		return s.repo.Shipments.List(ctx, nil)
	}
	return s.repo.Shipments.List(ctx, &uid)
}
