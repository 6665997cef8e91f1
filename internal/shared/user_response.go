// File: internal/shared/user_response.go
package shared

import (
	"time"

	"github.com/google/uuid"
)

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Phone           *string    `json:"phone,omitempty"`
	AvatarURL       *string    `json:"avatar_url,omitempty"`
	MatricNumber    *string    `json:"matric_number,omitempty"`
	Role            string     `json:"role"`
	IsEmailVerified bool       `json:"is_email_verified"`
	IsVerified      bool       `json:"is_verified"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
}

// MeResponse is the self-view of an account. Unlike UserResponse it includes
// the viewer's reference sets, which are nobody else's business.
type MeResponse struct {
	UserResponse
	SavedListingIDs    []string `json:"saved_listing_ids"`
	SavedRoommateIDs   []string `json:"saved_roommate_ids"`
	UnlockedListingIDs []string `json:"unlocked_listing_ids"`
}

// ToMeResponse converts a shared.User to the self-view DTO. The ID slices are
// never nil in the response body.
func ToMeResponse(svUser *User) MeResponse {
	resp := MeResponse{
		UserResponse:       ToUserResponse(svUser),
		SavedListingIDs:    svUser.SavedListingIDs,
		SavedRoommateIDs:   svUser.SavedRoommateIDs,
		UnlockedListingIDs: svUser.UnlockedListingIDs,
	}
	if resp.SavedListingIDs == nil {
		resp.SavedListingIDs = []string{}
	}
	if resp.SavedRoommateIDs == nil {
		resp.SavedRoommateIDs = []string{}
	}
	if resp.UnlockedListingIDs == nil {
		resp.UnlockedListingIDs = []string{}
	}
	return resp
}

// ToUserResponse converts a shared.User to a UserResponse DTO.
func ToUserResponse(svUser *User) UserResponse {
	return UserResponse{
		ID:              svUser.ID,
		Email:           svUser.Email,
		Name:            svUser.Name,
		Phone:           svUser.Phone,
		AvatarURL:       svUser.AvatarURL,
		MatricNumber:    svUser.MatricNumber,
		Role:            svUser.Role,
		IsEmailVerified: svUser.IsEmailVerified,
		IsVerified:      svUser.IsVerified,
		CreatedAt:       svUser.CreatedAt,
		UpdatedAt:       svUser.UpdatedAt,
		LastLoginAt:     svUser.LastLoginAt,
	}
}
