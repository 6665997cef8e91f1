// File: internal/listing/repository.go
package listing

import (
	"context"
	"errors"
	"strings"
	"time"

	"unihomes_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filters narrows the public listing search.
type Filters struct {
	Query    string
	Area     string
	MinPrice *float64
	MaxPrice *float64
	Bedrooms *int
	Status   string
	AgentID  *uuid.UUID
}

// Repository defines the interface for listing data operations.
type Repository interface {
	Create(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindBySlug(ctx context.Context, slug string) (*Listing, error)
	FindByIDs(ctx context.Context, ids []string) ([]Listing, error)
	Update(ctx context.Context, listing *Listing) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters Filters, pq common.PaginationQuery) ([]Listing, int64, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	CountByAgent(ctx context.Context, agentID uuid.UUID, status string) (int64, error)
	Count(ctx context.Context, status string) (int64, error)
	FindAllForSync(ctx context.Context, offset, limit int) ([]Listing, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM listing repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts a new listing record.
func (r *gormRepository) Create(ctx context.Context, listing *Listing) error {
	err := r.db.WithContext(ctx).Create(listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A listing with this slug already exists.")
		}
		return err
	}
	return nil
}

// FindByID retrieves a live listing by ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var l Listing
	err := r.db.WithContext(ctx).Scopes(common.NotDeleted).
		Where("id = ?", id).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Listing not found.")
		}
		return nil, err
	}
	return &l, nil
}

// FindBySlug retrieves a live listing by slug.
func (r *gormRepository) FindBySlug(ctx context.Context, slug string) (*Listing, error) {
	var l Listing
	err := r.db.WithContext(ctx).Scopes(common.NotDeleted).
		Where("slug = ?", slug).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Listing not found.")
		}
		return nil, err
	}
	return &l, nil
}

// FindByIDs retrieves the live listings among the given IDs, newest first.
// Missing or deleted IDs are silently skipped.
func (r *gormRepository) FindByIDs(ctx context.Context, ids []string) ([]Listing, error) {
	if len(ids) == 0 {
		return []Listing{}, nil
	}
	var listings []Listing
	err := r.db.WithContext(ctx).Scopes(common.NotDeleted).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// Update saves the full listing record.
func (r *gormRepository) Update(ctx context.Context, listing *Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

// SoftDelete marks the listing deleted.
func (r *gormRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&Listing{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Listing not found.")
	}
	return nil
}

func applyFilters(query *gorm.DB, filters Filters) *gorm.DB {
	if filters.Query != "" {
		pattern := "%" + strings.TrimSpace(filters.Query) + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filters.Area != "" {
		query = query.Where("area = ?", filters.Area)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}
	if filters.Bedrooms != nil {
		query = query.Where("bedrooms >= ?", *filters.Bedrooms)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.AgentID != nil {
		query = query.Where("agent_id = ?", *filters.AgentID)
	}
	return query
}

// List returns a page of live listings matching the filters, newest first.
func (r *gormRepository) List(ctx context.Context, filters Filters, pq common.PaginationQuery) ([]Listing, int64, error) {
	query := applyFilters(r.db.WithContext(ctx).Model(&Listing{}).Scopes(common.NotDeleted), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []Listing
	err := query.Order("created_at DESC").
		Offset(pq.Offset()).Limit(pq.Limit()).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// SlugExists reports whether any listing, deleted or not, holds the slug.
// Deleted rows keep their slug, so reuse would violate the unique index.
func (r *gormRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Listing{}).
		Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// CountByAgent counts an agent's live listings, optionally by status.
func (r *gormRepository) CountByAgent(ctx context.Context, agentID uuid.UUID, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&Listing{}).Scopes(common.NotDeleted).
		Where("agent_id = ?", agentID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// Count counts live listings, optionally by status.
func (r *gormRepository) Count(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&Listing{}).Scopes(common.NotDeleted)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// FindAllForSync pages through live listings in insertion order for search
// index rebuilds.
func (r *gormRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]Listing, error) {
	var listings []Listing
	err := r.db.WithContext(ctx).Scopes(common.NotDeleted).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&listings).Error
	return listings, err
}
