// File: internal/user/model.go
package user

import (
	"time"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/shared"

	"github.com/lib/pq"
)

// User is the GORM model for accounts. Credential material and one-time
// tokens stay in this package; everything that crosses a module boundary
// goes through ToSharedUser.
type User struct {
	common.BaseModel
	Email           string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash    string  `gorm:"type:varchar(255);not null" json:"-"`
	Name            string  `gorm:"type:varchar(100);not null"`
	Phone           *string `gorm:"type:varchar(20)"`
	AvatarURL       *string `gorm:"type:varchar(512)"`
	MatricNumber    *string `gorm:"type:varchar(30)"`
	Role            string  `gorm:"type:varchar(20);not null;default:'student';index"`
	IsEmailVerified bool    `gorm:"not null;default:false"`
	// IsVerified marks an agent or owner account vetted by an admin.
	IsVerified bool `gorm:"not null;default:false"`

	EmailVerificationToken       *string    `gorm:"type:varchar(128);index" json:"-"`
	EmailVerificationTokenExpiry *time.Time `json:"-"`
	PasswordResetToken           *string    `gorm:"type:varchar(128);index" json:"-"`
	PasswordResetTokenExpiry     *time.Time `json:"-"`

	// Reference sets. Updated with single-statement array operations so two
	// concurrent requests never clobber each other's writes.
	SavedListingIDs    pq.StringArray `gorm:"type:text[]"`
	SavedRoommateIDs   pq.StringArray `gorm:"type:text[]"`
	UnlockedListingIDs pq.StringArray `gorm:"type:text[]"`

	LastLoginAt *time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// ToSharedUser maps the database user to the cross-module view.
func ToSharedUser(dbUser *User) *shared.User {
	if dbUser == nil {
		return nil
	}
	return &shared.User{
		ID:                 dbUser.ID,
		Email:              dbUser.Email,
		Name:               dbUser.Name,
		Phone:              dbUser.Phone,
		AvatarURL:          dbUser.AvatarURL,
		MatricNumber:       dbUser.MatricNumber,
		Role:               dbUser.Role,
		IsEmailVerified:    dbUser.IsEmailVerified,
		IsVerified:         dbUser.IsVerified,
		SavedListingIDs:    dbUser.SavedListingIDs,
		SavedRoommateIDs:   dbUser.SavedRoommateIDs,
		UnlockedListingIDs: dbUser.UnlockedListingIDs,
		CreatedAt:          dbUser.CreatedAt,
		UpdatedAt:          dbUser.UpdatedAt,
		LastLoginAt:        dbUser.LastLoginAt,
	}
}
