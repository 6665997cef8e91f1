// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"unihomes_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilters narrows the admin user listing.
type ListFilters struct {
	Role     string
	Search   string
	Verified *bool
}

// Repository defines the interface for user data operations. Lookups exclude
// soft-deleted rows unless the method name says otherwise.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*User, error)
	FindByVerificationToken(ctx context.Context, token string) (*User, error)
	FindByResetToken(ctx context.Context, token string) (*User, error)
	Update(ctx context.Context, user *User) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters ListFilters, pq common.PaginationQuery) ([]User, int64, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	ClearExpiredCredentialTokens(ctx context.Context, now time.Time) (int64, error)

	// Reference-set operations. Each executes as a single UPDATE so two
	// concurrent mutations of the same set can never lose a write. Add
	// variants report whether a row changed; removes are idempotent.
	AddSavedListing(ctx context.Context, userID uuid.UUID, listingID string) (bool, error)
	RemoveSavedListing(ctx context.Context, userID uuid.UUID, listingID string) error
	AddSavedRoommate(ctx context.Context, userID uuid.UUID, roommateID string) (bool, error)
	RemoveSavedRoommate(ctx context.Context, userID uuid.UUID, roommateID string) error
	AddUnlockedListing(ctx context.Context, userID uuid.UUID, listingID string) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new user record into the database.
func (r *gormRepository) Create(ctx context.Context, user *User) error {
	user.Email = normalizeEmail(user.Email)
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(err.Error(), "unique constraint") ||
			strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return common.ErrConflict.WithDetails("An account with this email already exists.")
		}
		return err
	}
	return nil
}

// FindByEmail retrieves an active user by their email address.
func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Scopes(common.NotDeleted).
		Where("email = ?", normalizeEmail(email)).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, err
	}
	return &userModel, nil
}

// FindByID retrieves an active user by their ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Scopes(common.NotDeleted).
		Where("id = ?", id).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, err
	}
	return &userModel, nil
}

// FindByIDIncludingDeleted retrieves a user regardless of deletion state.
// Used by the admin surface, which needs to see the full picture.
func (r *gormRepository) FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, err
	}
	return &userModel, nil
}

// FindByVerificationToken retrieves an active user holding the given
// unexpired email verification token.
func (r *gormRepository) FindByVerificationToken(ctx context.Context, token string) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Scopes(common.NotDeleted).
		Where("email_verification_token = ? AND email_verification_token_expiry > ?", token, time.Now()).
		First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrBadRequest.WithDetails("Invalid or expired verification token.")
		}
		return nil, err
	}
	return &userModel, nil
}

// FindByResetToken retrieves an active user holding the given unexpired
// password reset token.
func (r *gormRepository) FindByResetToken(ctx context.Context, token string) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Scopes(common.NotDeleted).
		Where("password_reset_token = ? AND password_reset_token_expiry > ?", token, time.Now()).
		First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrBadRequest.WithDetails("Invalid or expired reset token.")
		}
		return nil, err
	}
	return &userModel, nil
}

// Update saves the full user record.
func (r *gormRepository) Update(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// SoftDelete marks the user deleted. The row stays for audit and uniqueness.
func (r *gormRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("User not found.")
	}
	return nil
}

// List returns a page of active users matching the filters, newest first.
func (r *gormRepository) List(ctx context.Context, filters ListFilters, pq common.PaginationQuery) ([]User, int64, error) {
	query := r.db.WithContext(ctx).Model(&User{}).Scopes(common.NotDeleted)

	if filters.Role != "" {
		query = query.Where("role = ?", filters.Role)
	}
	if filters.Verified != nil {
		query = query.Where("is_verified = ?", *filters.Verified)
	}
	if filters.Search != "" {
		pattern := "%" + strings.TrimSpace(filters.Search) + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	err := query.Order("created_at DESC").
		Offset(pq.Offset()).Limit(pq.Limit()).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CountByRole counts active users holding the given role. An empty role
// counts everyone.
func (r *gormRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&User{}).Scopes(common.NotDeleted)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountCreatedSince counts active users created at or after the given time.
func (r *gormRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).Scopes(common.NotDeleted).
		Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// ClearExpiredCredentialTokens nulls out verification and reset tokens whose
// expiry has passed. Returns the number of rows touched.
func (r *gormRepository) ClearExpiredCredentialTokens(ctx context.Context, now time.Time) (int64, error) {
	var total int64

	result := r.db.WithContext(ctx).Model(&User{}).
		Where("email_verification_token IS NOT NULL AND email_verification_token_expiry < ?", now).
		Updates(map[string]interface{}{
			"email_verification_token":        nil,
			"email_verification_token_expiry": nil,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	total += result.RowsAffected

	result = r.db.WithContext(ctx).Model(&User{}).
		Where("password_reset_token IS NOT NULL AND password_reset_token_expiry < ?", now).
		Updates(map[string]interface{}{
			"password_reset_token":        nil,
			"password_reset_token_expiry": nil,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	total += result.RowsAffected

	return total, nil
}

// addToSet appends a value to an array column in one statement, guarded so a
// value is never appended twice. Returns true when a row changed.
func (r *gormRepository) addToSet(ctx context.Context, column string, userID uuid.UUID, value string) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		"UPDATE users SET "+column+" = array_append(COALESCE("+column+", '{}'), ?), updated_at = ? "+
			"WHERE id = ? AND is_deleted = false AND NOT (? = ANY(COALESCE("+column+", '{}')))",
		value, time.Now(), userID, value,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// removeFromSet removes a value from an array column in one statement.
// Removing an absent value is a no-op.
func (r *gormRepository) removeFromSet(ctx context.Context, column string, userID uuid.UUID, value string) error {
	return r.db.WithContext(ctx).Exec(
		"UPDATE users SET "+column+" = array_remove(COALESCE("+column+", '{}'), ?), updated_at = ? "+
			"WHERE id = ? AND is_deleted = false",
		value, time.Now(), userID,
	).Error
}

func (r *gormRepository) AddSavedListing(ctx context.Context, userID uuid.UUID, listingID string) (bool, error) {
	return r.addToSet(ctx, "saved_listing_ids", userID, listingID)
}

func (r *gormRepository) RemoveSavedListing(ctx context.Context, userID uuid.UUID, listingID string) error {
	return r.removeFromSet(ctx, "saved_listing_ids", userID, listingID)
}

func (r *gormRepository) AddSavedRoommate(ctx context.Context, userID uuid.UUID, roommateID string) (bool, error) {
	return r.addToSet(ctx, "saved_roommate_ids", userID, roommateID)
}

func (r *gormRepository) RemoveSavedRoommate(ctx context.Context, userID uuid.UUID, roommateID string) error {
	return r.removeFromSet(ctx, "saved_roommate_ids", userID, roommateID)
}

func (r *gormRepository) AddUnlockedListing(ctx context.Context, userID uuid.UUID, listingID string) (bool, error) {
	return r.addToSet(ctx, "unlocked_listing_ids", userID, listingID)
}
