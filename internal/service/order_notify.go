package service

import (
	"context"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"go.uber.org/zap"
)

// orderNotifier emits order lifecycle events after the surrounding transaction committed.
// Publishing errors are logged and never surface to the caller.
type orderNotifier struct {
	events EventBus
	log    *zap.Logger
	now    func() time.Time
}

func newOrderNotifier(events EventBus, log *zap.Logger) orderNotifier {
	if events == nil {
		events = NopEventBus{}
	}
	return orderNotifier{events: events, log: log, now: time.Now}
}

func (n orderNotifier) emit(ctx context.Context, kind string, o *models.Order, publish func(context.Context, OrderEvent) error) {
	if o == nil {
		return
	}
	if err := publish(ctx, NewOrderEvent(o, n.now())); err != nil {
		n.log.Warn("order notification failed",
			zap.String("event", kind),
			zap.Uint("order_id", o.ID),
			zap.Error(err),
		)
	}
}

func (n orderNotifier) created(ctx context.Context, o *models.Order) {
	n.emit(ctx, "order_created", o, n.events.PublishOrderCreated)
}

func (n orderNotifier) paid(ctx context.Context, o *models.Order) {
	n.emit(ctx, "order_paid", o, n.events.PublishOrderPaid)
}

func (n orderNotifier) shipped(ctx context.Context, o *models.Order) {
	n.emit(ctx, "order_shipped", o, n.events.PublishOrderShipped)
}

func (n orderNotifier) delivered(ctx context.Context, o *models.Order) {
	n.emit(ctx, "order_delivered", o, n.events.PublishOrderDelivered)
}
