// File: internal/shared/events.go
package shared

import (
	"context"

	"github.com/google/uuid"
)

// Notification event types. Services emit these after their transaction has
// committed; delivery is fire-and-forget and never affects the API response.
const (
	EventUserRegistered          = "user.registered"
	EventEmailVerificationResent = "user.verification_resent"
	EventPasswordResetRequested  = "user.password_reset_requested"
	EventPasswordChanged         = "user.password_changed"
	EventPaymentSubmitted        = "payment.submitted"
	EventPaymentApproved         = "payment.approved"
	EventPaymentRejected         = "payment.rejected"
	EventAgentVerified           = "agent.verified"
)

// NotificationEvent is the envelope handed to the dispatcher. Data carries
// event-specific fields (tokens, listing titles, rejection reasons) keyed by
// name.
type NotificationEvent struct {
	Type           string            `json:"type"`
	RecipientID    uuid.UUID         `json:"recipient_id"`
	RecipientEmail string            `json:"recipient_email"`
	RecipientName  string            `json:"recipient_name"`
	Data           map[string]string `json:"data,omitempty"`
}

// EventDispatcher decouples event producers from notification delivery.
// Dispatch must be quick and must never fail the caller; implementations
// queue and return.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event NotificationEvent)
}
