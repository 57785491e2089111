package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type ShipmentStatus string

const (
	ShipmentPreparing      ShipmentStatus = "preparing"
	ShipmentShipped        ShipmentStatus = "shipped"
	ShipmentInTransit      ShipmentStatus = "in_transit"
	ShipmentOutForDelivery ShipmentStatus = "out_for_delivery"
	ShipmentDelivered      ShipmentStatus = "delivered"
	ShipmentFailed         ShipmentStatus = "failed"
	ShipmentReturned       ShipmentStatus = "returned"
)

var shipmentStatusDescriptions = map[ShipmentStatus]string{
	ShipmentPreparing:      "Your order is being prepared and will be handed to the carrier soon.",
	ShipmentShipped:        "Your order has been handed to the carrier. Use the tracking number to follow it.",
	ShipmentInTransit:      "Your parcel is on its way to the delivery address.",
	ShipmentOutForDelivery: "Your parcel is out for delivery today.",
	ShipmentDelivered:      "Your order has been delivered.",
	ShipmentFailed:         "Delivery failed. Please check your address or contact customer support.",
	ShipmentReturned:       "Your order has been returned. Contact customer support for details.",
}

func (s ShipmentStatus) Valid() bool {
	_, ok := shipmentStatusDescriptions[s]
	return ok
}

func (s ShipmentStatus) Description() string {
	if d, ok := shipmentStatusDescriptions[s]; ok {
		return d
	}
	return "No information is available for this shipment status."
}

type ShippingCompany string

const (
	CompanyAras    ShippingCompany = "aras"
	CompanyYurtici ShippingCompany = "yurtici"
	CompanyMNG     ShippingCompany = "mng"
	CompanyPTT     ShippingCompany = "ptt"
	CompanyUPS     ShippingCompany = "ups"
	CompanySurat   ShippingCompany = "surat"
	CompanyOther   ShippingCompany = "other"
)

var trackingURLTemplates = map[ShippingCompany]string{
	CompanyAras:    "https://kargotakip.araskargo.com.tr/trace/%s",
	CompanyYurtici: "https://www.yurticikargo.com/tr/online-servisler/gonderi-sorgula?code=%s",
	CompanyMNG:     "https://service.mngkargo.com.tr/track/%s",
	CompanyPTT:     "https://gonderitakip.ptt.gov.tr/Track/Verify?q=%s",
	CompanyUPS:     "https://www.ups.com/track?tracknum=%s",
	CompanySurat:   "https://suratkargo.com.tr/track/%s",
}

func (c ShippingCompany) Valid() bool {
	if c == CompanyOther {
		return true
	}
	_, ok := trackingURLTemplates[c]
	return ok
}

type Shipment struct {
	ID                uint            `gorm:"primaryKey"`
	OrderID           uint            `gorm:"not null;uniqueIndex"`
	Order             *Order          `gorm:"constraint:OnDelete:CASCADE"`
	Status            ShipmentStatus  `gorm:"size:20;not null;default:'preparing';index"`
	ShippingCompany   ShippingCompany `gorm:"size:20;not null;default:'aras'"`
	TrackingNumber    string          `gorm:"size:100"`
	TrackingURL       string          `gorm:"size:255"`
	ShippedAt         *time.Time
	EstimatedDelivery *time.Time `gorm:"type:date"`
	DeliveredAt       *time.Time
	Notes             string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Shipment) TableName() string { return "shipments" }

func (s *Shipment) BeforeSave(tx *gorm.DB) error {
	s.StampTimestamps(tx.NowFunc())
	return nil
}

// StampTimestamps records when the shipment entered shipped or delivered.
func (s *Shipment) StampTimestamps(now time.Time) {
	switch s.Status {
	case ShipmentShipped:
		if s.ShippedAt == nil {
			s.ShippedAt = &now
		}
	case ShipmentDelivered:
		if s.DeliveredAt == nil {
			s.DeliveredAt = &now
		}
	}
}

// ResolvedTrackingURL prefers an explicit URL, then the carrier template.
func (s *Shipment) ResolvedTrackingURL() string {
	if s.TrackingURL != "" {
		return s.TrackingURL
	}
	if s.TrackingNumber == "" {
		return ""
	}
	if tmpl, ok := trackingURLTemplates[s.ShippingCompany]; ok {
		return fmt.Sprintf(tmpl, s.TrackingNumber)
	}
	return ""
}

func (s *Shipment) IsInTransit() bool {
	switch s.Status {
	case ShipmentShipped, ShipmentInTransit, ShipmentOutForDelivery:
		return true
	}
	return false
}

// MirroredOrderStatus reports the order status implied by this shipment, if any.
func (s *Shipment) MirroredOrderStatus() (OrderStatus, bool) {
	switch s.Status {
	case ShipmentShipped:
		return OrderStatusShipped, true
	case ShipmentDelivered:
		return OrderStatusDelivered, true
	}
	return "", false
}
