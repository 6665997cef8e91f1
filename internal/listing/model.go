// File: internal/listing/model.go
package listing

import (
	"time"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Listing statuses.
const (
	StatusAvailable = "available"
	StatusTaken     = "taken"
)

// Listing is the GORM model for housing listings. AgentID is set at creation
// and never changes. The address/contact fields below the marker are the
// locked tier, revealed only to the owner, admins and paying unlockers.
type Listing struct {
	common.BaseModel
	AgentID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title       string         `gorm:"type:varchar(200);not null"`
	Slug        string         `gorm:"type:varchar(250);uniqueIndex;not null"`
	Description string         `gorm:"type:text"`
	Price       float64        `gorm:"not null"`
	Bedrooms    int            `gorm:"not null;default:1"`
	Bathrooms   int            `gorm:"not null;default:1"`
	Area        string         `gorm:"type:varchar(100);not null;index"`
	AddressArea string         `gorm:"type:varchar(255);not null"`
	Status      string         `gorm:"type:varchar(20);not null;default:'available';index"`
	Photos      pq.StringArray `gorm:"type:text[]"`
	Amenities   pq.StringArray `gorm:"type:text[]"`

	// Locked tier.
	AddressFull  string `gorm:"type:varchar(512)"`
	MapFull      string `gorm:"type:varchar(512)"`
	ContactName  string `gorm:"type:varchar(100)"`
	ContactPhone string `gorm:"type:varchar(20)"`
}

// TableName specifies the table name for the Listing model.
func (Listing) TableName() string {
	return "listings"
}

// IsValidStatus reports whether s names a known listing status.
func IsValidStatus(s string) bool {
	return s == StatusAvailable || s == StatusTaken
}

// CreateRequest defines the payload for creating a listing.
type CreateRequest struct {
	Title        string   `json:"title" binding:"required,min=5,max=200"`
	Description  string   `json:"description" binding:"omitempty,max=5000"`
	Price        float64  `json:"price" binding:"required,gt=0"`
	Bedrooms     int      `json:"bedrooms" binding:"required,gte=1"`
	Bathrooms    int      `json:"bathrooms" binding:"required,gte=1"`
	Area         string   `json:"area" binding:"required,min=2,max=100"`
	AddressArea  string   `json:"address_area" binding:"required,min=2,max=255"`
	AddressFull  string   `json:"address_full" binding:"required,min=5,max=512"`
	MapFull      string   `json:"map_full" binding:"omitempty,url"`
	ContactName  string   `json:"contact_name" binding:"required,min=2,max=100"`
	ContactPhone string   `json:"contact_phone" binding:"required,min=7,max=20"`
	Photos       []string `json:"photos" binding:"omitempty,dive,url"`
	Amenities    []string `json:"amenities" binding:"omitempty,dive,min=1"`
}

// UpdateRequest defines the payload for a partial listing update. AgentID and
// Slug are not updatable.
type UpdateRequest struct {
	Title        *string   `json:"title,omitempty" binding:"omitempty,min=5,max=200"`
	Description  *string   `json:"description,omitempty" binding:"omitempty,max=5000"`
	Price        *float64  `json:"price,omitempty" binding:"omitempty,gt=0"`
	Bedrooms     *int      `json:"bedrooms,omitempty" binding:"omitempty,gte=1"`
	Bathrooms    *int      `json:"bathrooms,omitempty" binding:"omitempty,gte=1"`
	Area         *string   `json:"area,omitempty" binding:"omitempty,min=2,max=100"`
	AddressArea  *string   `json:"address_area,omitempty" binding:"omitempty,min=2,max=255"`
	AddressFull  *string   `json:"address_full,omitempty" binding:"omitempty,min=5,max=512"`
	MapFull      *string   `json:"map_full,omitempty" binding:"omitempty,url"`
	ContactName  *string   `json:"contact_name,omitempty" binding:"omitempty,min=2,max=100"`
	ContactPhone *string   `json:"contact_phone,omitempty" binding:"omitempty,min=7,max=20"`
	Photos       *[]string `json:"photos,omitempty" binding:"omitempty,dive,url"`
	Amenities    *[]string `json:"amenities,omitempty" binding:"omitempty,dive,min=1"`
}

// UpdateStatusRequest defines the payload for flipping a listing's status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available taken"`
}

// LockedDetails is the gated tier of a listing response.
type LockedDetails struct {
	AddressFull  string `json:"address_full"`
	MapFull      string `json:"map_full,omitempty"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
}

// Response is the public view of a listing. Locked is nil unless the viewer
// has access; IsUnlocked tells clients whether to offer the unlock flow.
type Response struct {
	ID          uuid.UUID      `json:"id"`
	AgentID     uuid.UUID      `json:"agent_id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description,omitempty"`
	Price       float64        `json:"price"`
	Bedrooms    int            `json:"bedrooms"`
	Bathrooms   int            `json:"bathrooms"`
	Area        string         `json:"area"`
	AddressArea string         `json:"address_area"`
	Status      string         `json:"status"`
	Photos      []string       `json:"photos"`
	Amenities   []string       `json:"amenities"`
	IsUnlocked  bool           `json:"is_unlocked"`
	Locked      *LockedDetails `json:"locked_details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// viewerCanUnlock reports whether the viewer sees the locked tier: the listing
// owner, any admin, or a user who paid to unlock it.
func viewerCanUnlock(l *Listing, viewer *shared.User) bool {
	if viewer == nil {
		return false
	}
	if viewer.ID == l.AgentID || viewer.Role == common.RoleAdmin {
		return true
	}
	id := l.ID.String()
	for _, unlocked := range viewer.UnlockedListingIDs {
		if unlocked == id {
			return true
		}
	}
	return false
}

// ToResponse maps a listing to its viewer-dependent response shape.
func ToResponse(l *Listing, viewer *shared.User) Response {
	resp := Response{
		ID:          l.ID,
		AgentID:     l.AgentID,
		Title:       l.Title,
		Slug:        l.Slug,
		Description: l.Description,
		Price:       l.Price,
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		Area:        l.Area,
		AddressArea: l.AddressArea,
		Status:      l.Status,
		Photos:      l.Photos,
		Amenities:   l.Amenities,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if resp.Photos == nil {
		resp.Photos = []string{}
	}
	if resp.Amenities == nil {
		resp.Amenities = []string{}
	}
	if viewerCanUnlock(l, viewer) {
		resp.IsUnlocked = true
		resp.Locked = &LockedDetails{
			AddressFull:  l.AddressFull,
			MapFull:      l.MapFull,
			ContactName:  l.ContactName,
			ContactPhone: l.ContactPhone,
		}
	}
	return resp
}

// ToResponseList maps a slice of listings for one viewer.
func ToResponseList(listings []Listing, viewer *shared.User) []Response {
	out := make([]Response, 0, len(listings))
	for i := range listings {
		out = append(out, ToResponse(&listings[i], viewer))
	}
	return out
}
