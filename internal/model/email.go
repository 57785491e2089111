// Package model holds the email envelope shared by the API producer and the notifier.
package model

// Email templates. Each name has a .html and a .txt file in the template directory.
const (
	TemplateOrderCreated   = "order_created"
	TemplateOrderPaid      = "order_paid"
	TemplateOrderShipped   = "order_shipped"
	TemplateOrderDelivered = "order_delivered"
	TemplateWelcome        = "welcome"
	TemplatePasswordReset  = "password_reset"
)

type EmailMessage struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

func (m EmailMessage) Valid() bool { return m.To != "" && m.Template != "" }
