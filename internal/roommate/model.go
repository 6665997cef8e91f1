// File: internal/roommate/model.go
package roommate

import (
	"time"

	"unihomes_backend/internal/common"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Preferences is the optional roommate-matching sub-record. Every field is
// independently optional and independently filterable.
type Preferences struct {
	Gender      *string `gorm:"column:pref_gender;type:varchar(20)" json:"gender,omitempty" binding:"omitempty,oneof=male female any"`
	Cleanliness *string `gorm:"column:pref_cleanliness;type:varchar(20)" json:"cleanliness,omitempty" binding:"omitempty,oneof=tidy average relaxed"`
	StudyHours  *string `gorm:"column:pref_study_hours;type:varchar(20)" json:"study_hours,omitempty" binding:"omitempty,oneof=morning evening night flexible"`
	Smoking     *bool   `gorm:"column:pref_smoking" json:"smoking,omitempty"`
	Pets        *bool   `gorm:"column:pref_pets" json:"pets,omitempty"`
}

// RoommateListing is the GORM model for roommate-wanted posts. OwnerID is set
// at creation and never changes.
type RoommateListing struct {
	common.BaseModel
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title       string         `gorm:"type:varchar(200);not null"`
	Description string         `gorm:"type:text"`
	Budget      float64        `gorm:"not null"`
	Area        string         `gorm:"type:varchar(100);not null;index"`
	MoveInDate  *time.Time
	Photos      pq.StringArray `gorm:"type:text[]"`
	Preferences Preferences    `gorm:"embedded"`
}

// TableName specifies the table name for the RoommateListing model.
func (RoommateListing) TableName() string {
	return "roommate_listings"
}

// CreateRequest defines the payload for creating a roommate listing.
type CreateRequest struct {
	Title       string      `json:"title" binding:"required,min=5,max=200"`
	Description string      `json:"description" binding:"omitempty,max=5000"`
	Budget      float64     `json:"budget" binding:"required,gt=0"`
	Area        string      `json:"area" binding:"required,min=2,max=100"`
	MoveInDate  *time.Time  `json:"move_in_date,omitempty"`
	Photos      []string    `json:"photos" binding:"omitempty,dive,url"`
	Preferences Preferences `json:"preferences"`
}

// UpdateRequest defines the payload for a partial roommate listing update.
// OwnerID is not updatable.
type UpdateRequest struct {
	Title       *string      `json:"title,omitempty" binding:"omitempty,min=5,max=200"`
	Description *string      `json:"description,omitempty" binding:"omitempty,max=5000"`
	Budget      *float64     `json:"budget,omitempty" binding:"omitempty,gt=0"`
	Area        *string      `json:"area,omitempty" binding:"omitempty,min=2,max=100"`
	MoveInDate  *time.Time   `json:"move_in_date,omitempty"`
	Photos      *[]string    `json:"photos,omitempty" binding:"omitempty,dive,url"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// Response is the public view of a roommate listing.
type Response struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Budget      float64     `json:"budget"`
	Area        string      `json:"area"`
	MoveInDate  *time.Time  `json:"move_in_date,omitempty"`
	Photos      []string    `json:"photos"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ToResponse maps a roommate listing to its response shape.
func ToResponse(r *RoommateListing) Response {
	resp := Response{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		Budget:      r.Budget,
		Area:        r.Area,
		MoveInDate:  r.MoveInDate,
		Photos:      r.Photos,
		Preferences: r.Preferences,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if resp.Photos == nil {
		resp.Photos = []string{}
	}
	return resp
}

// ToResponseList maps a slice of roommate listings.
func ToResponseList(listings []RoommateListing) []Response {
	out := make([]Response, 0, len(listings))
	for i := range listings {
		out = append(out, ToResponse(&listings[i]))
	}
	return out
}
