// File: internal/roommate/repository.go
package roommate

import (
	"context"
	"errors"
	"strings"
	"time"

	"unihomes_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filters narrows the roommate listing search. Preference filters only
// constrain rows that declare the preference; posts that left a field unset
// match any value of it.
type Filters struct {
	Query       string
	Area        string
	MaxBudget   *float64
	Gender      string
	Cleanliness string
	StudyHours  string
	Smoking     *bool
	Pets        *bool
	OwnerID     *uuid.UUID
}

// Repository defines the interface for roommate listing data operations.
type Repository interface {
	Create(ctx context.Context, listing *RoommateListing) error
	FindByID(ctx context.Context, id uuid.UUID) (*RoommateListing, error)
	FindByIDs(ctx context.Context, ids []string) ([]RoommateListing, error)
	Update(ctx context.Context, listing *RoommateListing) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters Filters, pq common.PaginationQuery) ([]RoommateListing, int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM roommate listing repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts a new roommate listing record.
func (r *gormRepository) Create(ctx context.Context, listing *RoommateListing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

// FindByID retrieves a live roommate listing by ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*RoommateListing, error) {
	var l RoommateListing
	err := r.db.WithContext(ctx).Scopes(common.NotDeleted).
		Where("id = ?", id).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Roommate listing not found.")
		}
		return nil, err
	}
	return &l, nil
}

// FindByIDs retrieves the live roommate listings among the given IDs.
func (r *gormRepository) FindByIDs(ctx context.Context, ids []string) ([]RoommateListing, error) {
	if len(ids) == 0 {
		return []RoommateListing{}, nil
	}
	var listings []RoommateListing
	err := r.db.WithContext(ctx).Scopes(common.NotDeleted).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// Update saves the full roommate listing record.
func (r *gormRepository) Update(ctx context.Context, listing *RoommateListing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

// SoftDelete marks the roommate listing deleted.
func (r *gormRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&RoommateListing{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Roommate listing not found.")
	}
	return nil
}

// List returns a page of live roommate listings matching the filters, newest
// first.
func (r *gormRepository) List(ctx context.Context, filters Filters, pq common.PaginationQuery) ([]RoommateListing, int64, error) {
	query := r.db.WithContext(ctx).Model(&RoommateListing{}).Scopes(common.NotDeleted)

	if filters.Query != "" {
		pattern := "%" + strings.TrimSpace(filters.Query) + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filters.Area != "" {
		query = query.Where("area = ?", filters.Area)
	}
	if filters.MaxBudget != nil {
		query = query.Where("budget <= ?", *filters.MaxBudget)
	}
	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.Gender != "" {
		query = query.Where("pref_gender IS NULL OR pref_gender = ?", filters.Gender)
	}
	if filters.Cleanliness != "" {
		query = query.Where("pref_cleanliness IS NULL OR pref_cleanliness = ?", filters.Cleanliness)
	}
	if filters.StudyHours != "" {
		query = query.Where("pref_study_hours IS NULL OR pref_study_hours = ?", filters.StudyHours)
	}
	if filters.Smoking != nil {
		query = query.Where("pref_smoking IS NULL OR pref_smoking = ?", *filters.Smoking)
	}
	if filters.Pets != nil {
		query = query.Where("pref_pets IS NULL OR pref_pets = ?", *filters.Pets)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []RoommateListing
	err := query.Order("created_at DESC").
		Offset(pq.Offset()).Limit(pq.Limit()).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}
