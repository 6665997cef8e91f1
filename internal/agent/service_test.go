// File: internal/agent/service_test.go
package agent

import (
	"context"
	"errors"
	"testing"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/listing"
	"unihomes_backend/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeListingStats struct {
	byStatus map[string]int64
	listErr  error
}

func (f *fakeListingStats) CountByAgent(_ context.Context, _ uuid.UUID, status string) (int64, error) {
	if f.listErr != nil {
		return 0, f.listErr
	}
	return f.byStatus[status], nil
}

func (f *fakeListingStats) ListByAgent(_ context.Context, agentID uuid.UUID, _ string, _ common.PaginationQuery) ([]listing.Listing, int64, error) {
	l := listing.Listing{AgentID: agentID, Title: "Room near campus"}
	return []listing.Listing{l}, 1, nil
}

type fakePaymentStats struct {
	approvedCount int64
	approvedSum   float64
	earnings      []payment.MonthlyEarning
	sumErr        error
	gotMonths     int
}

func (f *fakePaymentStats) CountApprovedForAgent(_ context.Context, _ uuid.UUID) (int64, error) {
	return f.approvedCount, nil
}

func (f *fakePaymentStats) SumApprovedForAgent(_ context.Context, _ uuid.UUID) (float64, error) {
	if f.sumErr != nil {
		return 0, f.sumErr
	}
	return f.approvedSum, nil
}

func (f *fakePaymentStats) MonthlyEarningsForAgent(_ context.Context, _ uuid.UUID, months int) ([]payment.MonthlyEarning, error) {
	f.gotMonths = months
	return f.earnings, nil
}

func TestGetStats(t *testing.T) {
	listings := &fakeListingStats{byStatus: map[string]int64{
		"":                      5,
		listing.StatusAvailable: 3,
		listing.StatusTaken:     2,
	}}
	payments := &fakePaymentStats{approvedCount: 4, approvedSum: 8000}
	svc := NewService(listings, payments, zap.NewNop())

	stats, err := svc.GetStats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalListings)
	assert.Equal(t, int64(3), stats.AvailableListings)
	assert.Equal(t, int64(2), stats.TakenListings)
	assert.Equal(t, int64(4), stats.ApprovedPayments)
	assert.Equal(t, 8000.0, stats.TotalEarnings)
}

func TestGetStats_AnyQueryFailureFailsSnapshot(t *testing.T) {
	listings := &fakeListingStats{byStatus: map[string]int64{}}
	payments := &fakePaymentStats{sumErr: errors.New("connection reset")}
	svc := NewService(listings, payments, zap.NewNop())

	_, err := svc.GetStats(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestGetEarnings(t *testing.T) {
	payments := &fakePaymentStats{earnings: []payment.MonthlyEarning{
		{Month: "2026-07", Total: 4000, Count: 2},
		{Month: "2026-08", Total: 2000, Count: 1},
	}}
	svc := NewService(&fakeListingStats{}, payments, zap.NewNop())

	earnings, err := svc.GetEarnings(context.Background(), uuid.New(), 3)
	require.NoError(t, err)
	require.Len(t, earnings, 2)
	assert.Equal(t, "2026-07", earnings[0].Month)
	assert.Equal(t, 3, payments.gotMonths)
}
