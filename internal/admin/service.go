// File: internal/admin/service.go
package admin

import (
	"context"
	"time"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/listing"
	"unihomes_backend/internal/payment"
	"unihomes_backend/internal/shared"
	"unihomes_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// UserDirectory is the slice of the user service the admin surface needs.
type UserDirectory interface {
	shared.Service
	ListUsers(ctx context.Context, filters user.ListFilters, pq common.PaginationQuery) ([]shared.User, int64, error)
	UpdateRoleAndVerification(ctx context.Context, targetID uuid.UUID, role *string, isVerified *bool) (*shared.User, bool, error)
	SoftDeleteUser(ctx context.Context, targetID uuid.UUID) error
	CountUsersByRole(ctx context.Context, role string) (int64, error)
	CountUsersCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// ListingCounter exposes platform-wide listing counts.
type ListingCounter interface {
	Count(ctx context.Context, status string) (int64, error)
}

// PaymentCounter exposes platform-wide payment proof counts.
type PaymentCounter interface {
	Count(ctx context.Context, status string) (int64, error)
}

// Stats is the platform-wide dashboard snapshot.
type Stats struct {
	TotalUsers        int64 `json:"total_users"`
	Students          int64 `json:"students"`
	Agents            int64 `json:"agents"`
	Owners            int64 `json:"owners"`
	NewUsersThisWeek  int64 `json:"new_users_this_week"`
	TotalListings     int64 `json:"total_listings"`
	AvailableListings int64 `json:"available_listings"`
	TakenListings     int64 `json:"taken_listings"`
	PendingPayments   int64 `json:"pending_payments"`
	ApprovedPayments  int64 `json:"approved_payments"`
	RejectedPayments  int64 `json:"rejected_payments"`
}

// Service implements the administrative operations over users and the
// platform dashboard.
type Service struct {
	users      UserDirectory
	listings   ListingCounter
	payments   PaymentCounter
	dispatcher shared.EventDispatcher
	logger     *zap.Logger
}

// NewService creates a new admin service.
func NewService(
	users UserDirectory,
	listings ListingCounter,
	payments PaymentCounter,
	dispatcher shared.EventDispatcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:      users,
		listings:   listings,
		payments:   payments,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ListUsers returns a filtered page of the user directory.
func (s *Service) ListUsers(ctx context.Context, filters user.ListFilters, pq common.PaginationQuery) ([]shared.User, int64, error) {
	return s.users.ListUsers(ctx, filters, pq)
}

// GetStats assembles the platform dashboard concurrently.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	g, gCtx := errgroup.WithContext(ctx)

	count := func(dst *int64, fetch func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fetch(gCtx)
			*dst = n
			return err
		})
	}

	count(&stats.TotalUsers, func(ctx context.Context) (int64, error) {
		return s.users.CountUsersByRole(ctx, "")
	})
	count(&stats.Students, func(ctx context.Context) (int64, error) {
		return s.users.CountUsersByRole(ctx, common.RoleStudent)
	})
	count(&stats.Agents, func(ctx context.Context) (int64, error) {
		return s.users.CountUsersByRole(ctx, common.RoleAgent)
	})
	count(&stats.Owners, func(ctx context.Context) (int64, error) {
		return s.users.CountUsersByRole(ctx, common.RoleOwner)
	})
	count(&stats.NewUsersThisWeek, func(ctx context.Context) (int64, error) {
		return s.users.CountUsersCreatedSince(ctx, time.Now().AddDate(0, 0, -7))
	})
	count(&stats.TotalListings, func(ctx context.Context) (int64, error) {
		return s.listings.Count(ctx, "")
	})
	count(&stats.AvailableListings, func(ctx context.Context) (int64, error) {
		return s.listings.Count(ctx, listing.StatusAvailable)
	})
	count(&stats.TakenListings, func(ctx context.Context) (int64, error) {
		return s.listings.Count(ctx, listing.StatusTaken)
	})
	count(&stats.PendingPayments, func(ctx context.Context) (int64, error) {
		return s.payments.Count(ctx, payment.StatusPending)
	})
	count(&stats.ApprovedPayments, func(ctx context.Context) (int64, error) {
		return s.payments.Count(ctx, payment.StatusApproved)
	})
	count(&stats.RejectedPayments, func(ctx context.Context) (int64, error) {
		return s.payments.Count(ctx, payment.StatusRejected)
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to assemble platform stats", zap.Error(err))
		return nil, err
	}
	return &stats, nil
}

// UpdateUser changes a user's role and/or verification flag. A newly verified
// agent gets a notification.
func (s *Service) UpdateUser(ctx context.Context, targetID uuid.UUID, role *string, isVerified *bool) (*shared.User, error) {
	updated, newlyVerified, err := s.users.UpdateRoleAndVerification(ctx, targetID, role, isVerified)
	if err != nil {
		return nil, err
	}

	if newlyVerified && updated.Role == common.RoleAgent {
		s.dispatcher.Dispatch(ctx, shared.NotificationEvent{
			Type:           shared.EventAgentVerified,
			RecipientID:    updated.ID,
			RecipientEmail: updated.Email,
			RecipientName:  updated.Name,
		})
	}

	s.logger.Info("User updated by admin",
		zap.String("targetID", targetID.String()),
		zap.String("role", updated.Role),
		zap.Bool("isVerified", updated.IsVerified))
	return updated, nil
}

// DeleteUser soft-deletes an account. Admins cannot delete themselves or
// other admins.
func (s *Service) DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return common.ErrForbidden.WithDetails("You cannot delete your own account.")
	}

	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Role == common.RoleAdmin {
		return common.ErrForbidden.WithDetails("Admin accounts cannot be deleted.")
	}

	if err := s.users.SoftDeleteUser(ctx, targetID); err != nil {
		return err
	}
	s.logger.Info("User soft-deleted by admin",
		zap.String("targetID", targetID.String()),
		zap.String("actorID", actorID.String()))
	return nil
}
