// File: internal/auth/model.go
package auth

// RegisterRequest defines the structure for registration requests. Admin is
// deliberately absent from the role whitelist; admin accounts are only ever
// promoted through the admin surface.
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Name     string  `json:"name" binding:"required,min=2,max=100"`
	Role     string  `json:"role" binding:"required,oneof=student agent owner"`
	Phone    *string `json:"phone,omitempty" binding:"omitempty,min=7,max=20"`
}

// LoginRequest defines the structure for login requests.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest is the body fallback for clients that do not use the
// refresh cookie.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ForgotPasswordRequest defines the structure for password reset requests.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest defines the structure for completing a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// VerifyEmailRequest defines the structure for completing email verification.
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// ResendVerificationRequest defines the structure for requesting a fresh
// verification email.
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdateProfileRequest defines the structure for partial profile updates.
type UpdateProfileRequest struct {
	Name         *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Phone        *string `json:"phone,omitempty" binding:"omitempty,min=7,max=20"`
	AvatarURL    *string `json:"avatar_url,omitempty" binding:"omitempty,url"`
	MatricNumber *string `json:"matric_number,omitempty" binding:"omitempty,max=30"`
}
