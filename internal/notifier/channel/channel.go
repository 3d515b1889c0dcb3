package channel

import "context"

// Channel names accepted in rule notify_channels.
const (
	NameTelegram = "telegram"
	NameWhatsApp = "whatsapp"
	NameSMS      = "sms"
	NameEmail    = "email"
)

// Target is the delivery destination resolved from the alert's account.
type Target struct {
	Phone string
	Email string
}

// Channel delivers one message to one target. Implementations must be safe
// for concurrent use.
type Channel interface {
	Name() string
	// Send returns the provider message id on success.
	Send(ctx context.Context, target Target, message string) (string, error)
}
