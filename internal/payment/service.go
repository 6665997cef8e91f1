// File: internal/payment/service.go
package payment

import (
	"context"
	"fmt"
	"time"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/listing"
	"unihomes_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minRejectionReasonLength = 10

// ListingProvider is the slice of the listing service this package needs.
type ListingProvider interface {
	GetByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error)
}

// UnlockGranter adds a listing to a user's unlocked set. Implemented by the
// user service.
type UnlockGranter interface {
	GrantListingUnlock(ctx context.Context, userID, listingID uuid.UUID) error
}

// Service implements the payment proof state machine and the unlock side
// effect of approval.
type Service struct {
	repo       Repository
	listings   ListingProvider
	unlocker   UnlockGranter
	users      shared.Service
	dispatcher shared.EventDispatcher
	logger     *zap.Logger
}

// NewService creates a new payment service.
func NewService(
	repo Repository,
	listings ListingProvider,
	unlocker UnlockGranter,
	users shared.Service,
	dispatcher shared.EventDispatcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:       repo,
		listings:   listings,
		unlocker:   unlocker,
		users:      users,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Submit records a new pending proof for a listing. One pending proof per
// user and listing at a time; a listing already unlocked needs no proof.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*PaymentProof, error) {
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Invalid listing_id format.")
	}

	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	payer, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, unlocked := range payer.UnlockedListingIDs {
		if unlocked == listingID.String() {
			return nil, common.ErrConflict.WithDetails("You have already unlocked this listing.")
		}
	}

	pending, err := s.repo.HasPendingForListing(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, common.ErrConflict.WithDetails("You already have a pending payment proof for this listing.")
	}

	proof := &PaymentProof{
		UserID:    userID,
		ListingID: listingID,
		Reference: req.Reference,
		ImageURL:  req.ImageURL,
		Amount:    req.Amount,
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, proof); err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, shared.NotificationEvent{
		Type:           shared.EventPaymentSubmitted,
		RecipientID:    payer.ID,
		RecipientEmail: payer.Email,
		RecipientName:  payer.Name,
		Data: map[string]string{
			"listing_title": l.Title,
			"reference":     proof.Reference,
			"amount":        fmt.Sprintf("%.2f", proof.Amount),
		},
	})

	s.logger.Info("Payment proof submitted",
		zap.String("proofID", proof.ID.String()),
		zap.String("userID", userID.String()),
		zap.String("listingID", listingID.String()))
	return proof, nil
}

// GetByID retrieves a proof; non-admin callers only see their own.
func (s *Service) GetByID(ctx context.Context, actorID uuid.UUID, actorRole string, id uuid.UUID) (*PaymentProof, error) {
	proof, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if proof.UserID != actorID && actorRole != common.RoleAdmin {
		return nil, common.ErrForbidden.WithDetails("You do not own this payment proof.")
	}
	return proof, nil
}

// ListMine returns a page of the caller's own proofs.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, pq common.PaginationQuery) ([]PaymentProof, int64, error) {
	return s.repo.ListByUser(ctx, userID, pq)
}

// ListForReview returns the admin review queue, optionally filtered by status.
func (s *Service) ListForReview(ctx context.Context, status string, pq common.PaginationQuery) ([]PaymentProof, int64, error) {
	if status != "" && status != StatusPending && status != StatusApproved && status != StatusRejected {
		return nil, 0, common.ErrBadRequest.WithDetails("Status must be 'pending', 'approved' or 'rejected'.")
	}
	return s.repo.List(ctx, status, pq)
}

// Review resolves a pending proof. Approval grants the unlock; rejection
// records the reason. A proof that is already resolved stays resolved.
func (s *Service) Review(ctx context.Context, adminID uuid.UUID, proofID uuid.UUID, req ReviewRequest) (*PaymentProof, error) {
	proof, err := s.repo.FindByID(ctx, proofID)
	if err != nil {
		return nil, err
	}
	if proof.Status != StatusPending {
		return nil, common.ErrConflict.WithDetails("This payment proof has already been resolved.")
	}

	now := time.Now()
	proof.ReviewedBy = &adminID
	proof.ReviewedAt = &now

	switch req.Action {
	case ActionApprove:
		proof.Status = StatusApproved
	case ActionReject:
		// The binding enforces this; kept as a guard for non-HTTP callers.
		if len(req.RejectionReason) < minRejectionReasonLength {
			return nil, common.ErrBadRequest.WithDetails(
				fmt.Sprintf("Rejection reason must be at least %d characters.", minRejectionReasonLength))
		}
		proof.Status = StatusRejected
		proof.RejectionReason = &req.RejectionReason
	default:
		return nil, common.ErrBadRequest.WithDetails("Action must be 'approve' or 'reject'.")
	}

	if err := s.repo.Update(ctx, proof); err != nil {
		return nil, err
	}

	if proof.Status == StatusApproved {
		// The unlock grant is idempotent, so a retry after a partial failure
		// cannot double-grant.
		if err := s.unlocker.GrantListingUnlock(ctx, proof.UserID, proof.ListingID); err != nil {
			s.logger.Error("Approved proof but failed to grant unlock",
				zap.Error(err),
				zap.String("proofID", proof.ID.String()),
				zap.String("userID", proof.UserID.String()))
			return nil, common.ErrInternalServer.WithDetails("Proof approved but unlock could not be granted. Contact support.")
		}
	}

	s.notifyResolution(ctx, proof)

	s.logger.Info("Payment proof reviewed",
		zap.String("proofID", proof.ID.String()),
		zap.String("status", proof.Status),
		zap.String("adminID", adminID.String()))
	return proof, nil
}

// notifyResolution queues the payer's approval/rejection email. Best effort.
func (s *Service) notifyResolution(ctx context.Context, proof *PaymentProof) {
	payer, err := s.users.GetUserByID(ctx, proof.UserID)
	if err != nil {
		s.logger.Warn("Could not resolve payer for resolution notification",
			zap.Error(err), zap.String("proofID", proof.ID.String()))
		return
	}

	data := map[string]string{"reference": proof.Reference}
	if l, err := s.listings.GetByID(ctx, proof.ListingID); err == nil {
		data["listing_title"] = l.Title
	}

	eventType := shared.EventPaymentApproved
	if proof.Status == StatusRejected {
		eventType = shared.EventPaymentRejected
		if proof.RejectionReason != nil {
			data["rejection_reason"] = *proof.RejectionReason
		}
	}

	s.dispatcher.Dispatch(ctx, shared.NotificationEvent{
		Type:           eventType,
		RecipientID:    payer.ID,
		RecipientEmail: payer.Email,
		RecipientName:  payer.Name,
		Data:           data,
	})
}

// Count exposes proof counts for dashboards.
func (s *Service) Count(ctx context.Context, status string) (int64, error) {
	return s.repo.Count(ctx, status)
}

// CountApprovedForAgent exposes the agent's approved proof count.
func (s *Service) CountApprovedForAgent(ctx context.Context, agentID uuid.UUID) (int64, error) {
	return s.repo.CountApprovedForAgent(ctx, agentID)
}

// SumApprovedForAgent exposes the agent's approved payment volume.
func (s *Service) SumApprovedForAgent(ctx context.Context, agentID uuid.UUID) (float64, error) {
	return s.repo.SumApprovedForAgent(ctx, agentID)
}

// MonthlyEarningsForAgent exposes the agent's approved payment volume grouped
// by month over the given window.
func (s *Service) MonthlyEarningsForAgent(ctx context.Context, agentID uuid.UUID, months int) ([]MonthlyEarning, error) {
	if months <= 0 {
		months = 6
	}
	if months > 36 {
		months = 36
	}
	since := time.Now().AddDate(0, -months, 0)
	return s.repo.MonthlyEarningsForAgent(ctx, agentID, since)
}
