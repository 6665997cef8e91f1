// File: internal/auth/interfaces.go
package auth

import (
	"context"

	"unihomes_backend/internal/shared"

	"github.com/google/uuid"
)

// UserProvider is the slice of the user service the auth handlers need.
// Implemented by the user module; declared here so auth never imports it.
type UserProvider interface {
	shared.Service
	Register(ctx context.Context, input shared.RegisterInput) (*shared.User, error)
	Login(ctx context.Context, email, password string) (*shared.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input shared.ProfileUpdateInput) (*shared.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerificationEmail(ctx context.Context, email string) error
}
