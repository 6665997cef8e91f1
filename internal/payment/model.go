// File: internal/payment/model.go
package payment

import (
	"time"

	"unihomes_backend/internal/common"

	"github.com/google/uuid"
)

// Payment proof statuses. The machine is pending → approved | rejected;
// resolved proofs never change again.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Review actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// PaymentProof is the GORM model for submitted unlock payments. ReviewedBy,
// ReviewedAt and RejectionReason are set exactly once, at resolution.
type PaymentProof struct {
	common.BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index"`
	Reference string    `gorm:"type:varchar(100);not null"`
	ImageURL  string    `gorm:"type:varchar(512);not null"`
	Amount    float64   `gorm:"not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending';index"`

	ReviewedBy      *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt      *time.Time
	RejectionReason *string `gorm:"type:varchar(500)"`
}

// TableName specifies the table name for the PaymentProof model.
func (PaymentProof) TableName() string {
	return "payment_proofs"
}

// SubmitRequest defines the payload for submitting a payment proof.
type SubmitRequest struct {
	ListingID string  `json:"listing_id" binding:"required,uuid"`
	Reference string  `json:"reference" binding:"required,min=4,max=100"`
	ImageURL  string  `json:"image_url" binding:"required,url"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

// ReviewRequest defines the payload for resolving a proof. A rejection must
// carry a reason of at least ten characters; the binding enforces this before
// the service ever sees the request.
type ReviewRequest struct {
	Action          string `json:"action" binding:"required,oneof=approve reject"`
	RejectionReason string `json:"rejection_reason" binding:"required_if=Action reject,omitempty,min=10,max=500"`
}

// Response is the API view of a payment proof.
type Response struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	ListingID       uuid.UUID  `json:"listing_id"`
	Reference       string     `json:"reference"`
	ImageURL        string     `json:"image_url"`
	Amount          float64    `json:"amount"`
	Status          string     `json:"status"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToResponse maps a payment proof to its response shape.
func ToResponse(p *PaymentProof) Response {
	return Response{
		ID:              p.ID,
		UserID:          p.UserID,
		ListingID:       p.ListingID,
		Reference:       p.Reference,
		ImageURL:        p.ImageURL,
		Amount:          p.Amount,
		Status:          p.Status,
		ReviewedBy:      p.ReviewedBy,
		ReviewedAt:      p.ReviewedAt,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToResponseList maps a slice of payment proofs.
func ToResponseList(proofs []PaymentProof) []Response {
	out := make([]Response, 0, len(proofs))
	for i := range proofs {
		out = append(out, ToResponse(&proofs[i]))
	}
	return out
}

// MonthlyEarning is one month of an agent's approved payment volume.
type MonthlyEarning struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}
