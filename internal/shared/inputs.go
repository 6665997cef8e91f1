// File: internal/shared/inputs.go
package shared

// RegisterInput carries validated registration data from the auth surface into
// the user service. Role is already constrained to a self-assignable role by
// the time it gets here.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
	Phone    *string
}

// ProfileUpdateInput carries a partial profile update. Nil fields are left
// untouched.
type ProfileUpdateInput struct {
	Name         *string
	Phone        *string
	AvatarURL    *string
	MatricNumber *string
}
