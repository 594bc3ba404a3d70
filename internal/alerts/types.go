package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail   = "user:welcome"
	TaskOrderPlaced    = "order:placed"
	TaskOrderReleased  = "order:released"
	TaskOrderRefunded  = "order:refunded"
	TaskOrderCancelled = "order:cancelled"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Welcome email payload
type WelcomeEmailPayload struct {
	UserID   string        `json:"user_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// OrderEventPayload covers every order lifecycle notification. Amount is in
// minor units, matching the settlement ledger.
type OrderEventPayload struct {
	OrderID  string        `json:"order_id"`
	UserID   string        `json:"user_id"`
	Email    string        `json:"email"`
	Amount   int64         `json:"amount"`
	Status   string        `json:"status"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}
