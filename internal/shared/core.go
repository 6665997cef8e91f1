// File: internal/shared/core.go
package shared

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// User is the cross-module view of an account. It never carries credential
// material; the GORM model in internal/user owns that.
type User struct {
	ID                 uuid.UUID
	Email              string
	Name               string
	Phone              *string
	AvatarURL          *string
	MatricNumber       *string
	Role               string
	IsEmailVerified    bool
	IsVerified         bool
	SavedListingIDs    []string
	SavedRoommateIDs   []string
	UnlockedListingIDs []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	LastLoginAt        *time.Time
}

// TokenPair is the response containing a freshly minted session.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	TokenType        string    `json:"token_type"`
}

// Service is the user lookup surface other modules depend on. Lookups never
// resolve soft-deleted accounts.
type Service interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// UserDataForToken abstracts the user data needed for token generation.
type UserDataForToken interface {
	GetID() uuid.UUID
	GetEmail() string
	GetRole() string
}

// TokenService defines the interface for JWT operations. Validation failures
// are uniform: callers cannot distinguish expired from malformed from
// badly-signed tokens.
type TokenService interface {
	GenerateTokenPair(userData UserDataForToken) (*TokenPair, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// Claims represents the JWT claims structure.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// GetID implements UserDataForToken.
func (u *User) GetID() uuid.UUID { return u.ID }

// GetEmail implements UserDataForToken.
func (u *User) GetEmail() string { return u.Email }

// GetRole implements UserDataForToken.
func (u *User) GetRole() string { return u.Role }
