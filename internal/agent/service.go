// File: internal/agent/service.go
package agent

import (
	"context"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/listing"
	"unihomes_backend/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ListingStats is the slice of the listing service the dashboard needs.
type ListingStats interface {
	CountByAgent(ctx context.Context, agentID uuid.UUID, status string) (int64, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, status string, pq common.PaginationQuery) ([]listing.Listing, int64, error)
}

// PaymentStats is the slice of the payment service the dashboard needs.
type PaymentStats interface {
	CountApprovedForAgent(ctx context.Context, agentID uuid.UUID) (int64, error)
	SumApprovedForAgent(ctx context.Context, agentID uuid.UUID) (float64, error)
	MonthlyEarningsForAgent(ctx context.Context, agentID uuid.UUID, months int) ([]payment.MonthlyEarning, error)
}

// Stats is the agent dashboard snapshot.
type Stats struct {
	TotalListings     int64   `json:"total_listings"`
	AvailableListings int64   `json:"available_listings"`
	TakenListings     int64   `json:"taken_listings"`
	ApprovedPayments  int64   `json:"approved_payments"`
	TotalEarnings     float64 `json:"total_earnings"`
}

// Service aggregates dashboard numbers for the authenticated agent.
type Service struct {
	listings ListingStats
	payments PaymentStats
	logger   *zap.Logger
}

// NewService creates a new agent dashboard service.
func NewService(listings ListingStats, payments PaymentStats, logger *zap.Logger) *Service {
	return &Service{listings: listings, payments: payments, logger: logger}
}

// GetStats gathers the agent's counters concurrently; any failed query fails
// the snapshot.
func (s *Service) GetStats(ctx context.Context, agentID uuid.UUID) (*Stats, error) {
	var stats Stats
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		stats.TotalListings, err = s.listings.CountByAgent(gCtx, agentID, "")
		return err
	})
	g.Go(func() error {
		var err error
		stats.AvailableListings, err = s.listings.CountByAgent(gCtx, agentID, listing.StatusAvailable)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TakenListings, err = s.listings.CountByAgent(gCtx, agentID, listing.StatusTaken)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ApprovedPayments, err = s.payments.CountApprovedForAgent(gCtx, agentID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalEarnings, err = s.payments.SumApprovedForAgent(gCtx, agentID)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to assemble agent stats",
			zap.Error(err), zap.String("agentID", agentID.String()))
		return nil, err
	}
	return &stats, nil
}

// GetEarnings returns the agent's approved payment volume per month.
func (s *Service) GetEarnings(ctx context.Context, agentID uuid.UUID, months int) ([]payment.MonthlyEarning, error) {
	return s.payments.MonthlyEarningsForAgent(ctx, agentID, months)
}

// ListOwnListings returns a page of the agent's own listings, optionally
// filtered by status.
func (s *Service) ListOwnListings(ctx context.Context, agentID uuid.UUID, status string, pq common.PaginationQuery) ([]listing.Listing, int64, error) {
	return s.listings.ListByAgent(ctx, agentID, status, pq)
}
