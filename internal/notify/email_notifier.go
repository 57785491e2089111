package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/model"
	"github.com/emrahsandernet/kasarcim/internal/pricing"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultTimeout = 5 * time.Second

type Publisher interface {
	SendEmail(ctx context.Context, key string, msg model.EmailMessage) error
}

// EmailNotifier implements service.EventBus by queueing emails in the background.
// Publishing is detached from the caller's context so a finished HTTP request does not
// abort it, and queue failures are logged here rather than returned.
type EmailNotifier struct {
	pub     Publisher
	siteURL string
	timeout time.Duration
	wg      sync.WaitGroup
	log     *zap.Logger
}

var _ service.EventBus = (*EmailNotifier)(nil)

func NewEmailNotifier(pub Publisher, siteURL string, log *zap.Logger) *EmailNotifier {
	return &EmailNotifier{pub: pub, siteURL: siteURL, timeout: defaultTimeout, log: log}
}

func (n *EmailNotifier) send(ctx context.Context, key string, msg model.EmailMessage) error {
	if msg.To == "" {
		n.log.Warn("email skipped, no recipient", zap.String("template", msg.Template), zap.String("key", key))
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	msg.Data["site_url"] = n.siteURL

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer cancel()
		if err := n.pub.SendEmail(ctx, key, msg); err != nil {
			n.log.Warn("failed to queue email",
				zap.String("template", msg.Template),
				zap.String("key", key),
				zap.Error(err),
			)
			return
		}
		n.log.Debug("email queued", zap.String("template", msg.Template), zap.String("key", key))
	}()
	return nil
}

// Wait blocks until every email handed to the publisher so far has been queued or failed.
func (n *EmailNotifier) Wait() {
	n.wg.Wait()
}

func (n *EmailNotifier) order(ctx context.Context, tmpl, subject string, e service.OrderEvent) error {
	return n.send(ctx, e.OrderCode, model.EmailMessage{
		To:       e.Email,
		Subject:  fmt.Sprintf("%s (#%s)", subject, e.OrderCode),
		Template: tmpl,
		Data:     orderData(e),
	})
}

func (n *EmailNotifier) PublishOrderCreated(ctx context.Context, e service.OrderEvent) error {
	return n.order(ctx, model.TemplateOrderCreated, "Siparişiniz Oluşturuldu", e)
}

func (n *EmailNotifier) PublishOrderPaid(ctx context.Context, e service.OrderEvent) error {
	return n.order(ctx, model.TemplateOrderPaid, "Ödemeniz Onaylandı", e)
}

func (n *EmailNotifier) PublishOrderShipped(ctx context.Context, e service.OrderEvent) error {
	return n.order(ctx, model.TemplateOrderShipped, "Siparişiniz Kargoya Verildi", e)
}

func (n *EmailNotifier) PublishOrderDelivered(ctx context.Context, e service.OrderEvent) error {
	return n.order(ctx, model.TemplateOrderDelivered, "Siparişiniz Teslim Edildi", e)
}

func (n *EmailNotifier) PublishUserRegistered(ctx context.Context, e service.UserRegisteredEvent) error {
	return n.send(ctx, e.UserID.String(), model.EmailMessage{
		To:       e.Email,
		Subject:  "Kaşarcım'a Hoş Geldiniz!",
		Template: model.TemplateWelcome,
		Data: map[string]any{
			"name":     e.Name,
			"username": e.Username,
		},
	})
}

func (n *EmailNotifier) PublishPasswordResetRequested(ctx context.Context, e service.PasswordResetRequestedEvent) error {
	return n.send(ctx, e.UserID.String(), model.EmailMessage{
		To:       e.Email,
		Subject:  "Şifre Sıfırlama Talebi",
		Template: model.TemplatePasswordReset,
		Data: map[string]any{
			"name":       e.Name,
			"reset_url":  e.ResetURL,
			"expires_at": e.ExpiresAt.Format("02.01.2006 15:04"),
		},
	})
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func paymentLabel(method string) string {
	if method == pricing.PaymentCashOnDelivery {
		return "Kapıda Ödeme"
	}
	return "Online Ödeme"
}

func orderData(e service.OrderEvent) map[string]any {
	items := make([]map[string]any, 0, len(e.Items))
	for _, it := range e.Items {
		items = append(items, map[string]any{
			"product_name": it.ProductName,
			"quantity":     it.Quantity,
			"price":        money(it.Price),
			"line_total":   money(it.LineTotal),
		})
	}
	return map[string]any{
		"order_id":         e.OrderID,
		"order_code":       e.OrderCode,
		"customer_name":    e.CustomerName,
		"is_guest":         e.IsGuest,
		"payment_method":   paymentLabel(e.PaymentMethod),
		"items":            items,
		"subtotal":         money(e.Subtotal),
		"discount":         money(e.Discount),
		"has_discount":     e.Discount.IsPositive(),
		"shipping_cost":    money(e.ShippingCost),
		"cod_fee":          money(e.CODFee),
		"has_cod_fee":      e.CODFee.IsPositive(),
		"final_price":      money(e.FinalPrice),
		"shipping_address": e.ShippingAddress,
		"shipping_company": e.ShippingCompany,
		"tracking_number":  e.TrackingNumber,
		"tracking_url":     e.TrackingURL,
		"date":             e.OccurredAt.Format("02.01.2006 15:04"),
	}
}
