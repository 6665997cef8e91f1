// File: internal/payment/repository.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"unihomes_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for payment proof data operations.
type Repository interface {
	Create(ctx context.Context, proof *PaymentProof) error
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentProof, error)
	HasPendingForListing(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	Update(ctx context.Context, proof *PaymentProof) error
	ListByUser(ctx context.Context, userID uuid.UUID, pq common.PaginationQuery) ([]PaymentProof, int64, error)
	List(ctx context.Context, status string, pq common.PaginationQuery) ([]PaymentProof, int64, error)
	Count(ctx context.Context, status string) (int64, error)
	CountApprovedForAgent(ctx context.Context, agentID uuid.UUID) (int64, error)
	SumApprovedForAgent(ctx context.Context, agentID uuid.UUID) (float64, error)
	MonthlyEarningsForAgent(ctx context.Context, agentID uuid.UUID, since time.Time) ([]MonthlyEarning, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM payment proof repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts a new payment proof record.
func (r *gormRepository) Create(ctx context.Context, proof *PaymentProof) error {
	return r.db.WithContext(ctx).Create(proof).Error
}

// FindByID retrieves a live payment proof by ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*PaymentProof, error) {
	var p PaymentProof
	err := r.db.WithContext(ctx).Scopes(common.NotDeleted).
		Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Payment proof not found.")
		}
		return nil, err
	}
	return &p, nil
}

// HasPendingForListing reports whether the user already has an unresolved
// proof for the listing.
func (r *gormRepository) HasPendingForListing(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PaymentProof{}).Scopes(common.NotDeleted).
		Where("user_id = ? AND listing_id = ? AND status = ?", userID, listingID, StatusPending).
		Count(&count).Error
	return count > 0, err
}

// Update saves the full payment proof record.
func (r *gormRepository) Update(ctx context.Context, proof *PaymentProof) error {
	return r.db.WithContext(ctx).Save(proof).Error
}

// ListByUser returns a page of the user's own proofs, newest first.
func (r *gormRepository) ListByUser(ctx context.Context, userID uuid.UUID, pq common.PaginationQuery) ([]PaymentProof, int64, error) {
	query := r.db.WithContext(ctx).Model(&PaymentProof{}).Scopes(common.NotDeleted).
		Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proofs []PaymentProof
	err := query.Order("created_at DESC").
		Offset(pq.Offset()).Limit(pq.Limit()).
		Find(&proofs).Error
	if err != nil {
		return nil, 0, err
	}
	return proofs, total, nil
}

// List returns a page of all proofs for the admin queue, oldest pending
// first so the backlog drains in submission order.
func (r *gormRepository) List(ctx context.Context, status string, pq common.PaginationQuery) ([]PaymentProof, int64, error) {
	query := r.db.WithContext(ctx).Model(&PaymentProof{}).Scopes(common.NotDeleted)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proofs []PaymentProof
	err := query.Order("created_at ASC").
		Offset(pq.Offset()).Limit(pq.Limit()).
		Find(&proofs).Error
	if err != nil {
		return nil, 0, err
	}
	return proofs, total, nil
}

// Count counts live proofs, optionally by status.
func (r *gormRepository) Count(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&PaymentProof{}).Scopes(common.NotDeleted)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountApprovedForAgent counts approved proofs against the agent's listings.
func (r *gormRepository) CountApprovedForAgent(ctx context.Context, agentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PaymentProof{}).
		Joins("JOIN listings ON listings.id = payment_proofs.listing_id").
		Where("payment_proofs.status = ? AND payment_proofs.is_deleted = ? AND listings.agent_id = ?",
			StatusApproved, false, agentID).
		Count(&count).Error
	return count, err
}

// SumApprovedForAgent sums approved proof amounts against the agent's listings.
func (r *gormRepository) SumApprovedForAgent(ctx context.Context, agentID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&PaymentProof{}).
		Joins("JOIN listings ON listings.id = payment_proofs.listing_id").
		Where("payment_proofs.status = ? AND payment_proofs.is_deleted = ? AND listings.agent_id = ?",
			StatusApproved, false, agentID).
		Select("COALESCE(SUM(payment_proofs.amount), 0)").
		Scan(&total).Error
	return total, err
}

// MonthlyEarningsForAgent groups the agent's approved proof amounts by
// calendar month, oldest first, starting at the given time.
func (r *gormRepository) MonthlyEarningsForAgent(ctx context.Context, agentID uuid.UUID, since time.Time) ([]MonthlyEarning, error) {
	rows, err := r.db.WithContext(ctx).Raw(`
		SELECT to_char(date_trunc('month', pp.reviewed_at), 'YYYY-MM') AS month,
		       COALESCE(SUM(pp.amount), 0) AS total,
		       COUNT(*) AS count
		FROM payment_proofs pp
		JOIN listings l ON l.id = pp.listing_id
		WHERE pp.status = ? AND pp.is_deleted = false
		  AND l.agent_id = ? AND pp.reviewed_at >= ?
		GROUP BY date_trunc('month', pp.reviewed_at)
		ORDER BY date_trunc('month', pp.reviewed_at) ASC`,
		StatusApproved, agentID, since).Rows()
	if err != nil {
		return nil, fmt.Errorf("monthly earnings query failed: %w", err)
	}
	defer rows.Close()

	var earnings []MonthlyEarning
	for rows.Next() {
		var e MonthlyEarning
		if err := rows.Scan(&e.Month, &e.Total, &e.Count); err != nil {
			return nil, fmt.Errorf("scanning monthly earnings row: %w", err)
		}
		earnings = append(earnings, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if earnings == nil {
		earnings = []MonthlyEarning{}
	}
	return earnings, nil
}
