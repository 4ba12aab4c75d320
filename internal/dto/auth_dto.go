package dto

import "time"

// LoginRequest starts a session for a student or TPO staff member. The
// platform trusts the institute SSO in front of it, so no password travels
// here; the token only carries identity and role.
type LoginRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=64"`
	Role       string `json:"role" validate:"required,oneof=student tpo"`
	Email      string `json:"email" validate:"omitempty,email"`
	Department string `json:"department" validate:"omitempty,max=120"`
	Year       *int   `json:"year" validate:"omitempty,min=1,max=6"`
}

// LoginResponse carries the signed session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
