// File: internal/notification/model.go
package notification

import (
	"time"

	"unihomes_backend/internal/common"

	"github.com/google/uuid"
)

// Notification is the GORM model for in-app notification rows, written by the
// event worker alongside the email send.
type Notification struct {
	common.BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Type    string    `gorm:"type:varchar(50);not null"`
	Title   string    `gorm:"type:varchar(200);not null"`
	Message string    `gorm:"type:text;not null"`
	IsRead  bool      `gorm:"not null;default:false;index"`
}

// TableName specifies the table name for the Notification model.
func (Notification) TableName() string {
	return "notifications"
}

// Response is the API view of a notification.
type Response struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse maps a notification to its response shape.
func ToResponse(n *Notification) Response {
	return Response{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// ToResponseList maps a slice of notifications.
func ToResponseList(notifications []Notification) []Response {
	out := make([]Response, 0, len(notifications))
	for i := range notifications {
		out = append(out, ToResponse(&notifications[i]))
	}
	return out
}
