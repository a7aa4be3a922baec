package models

// Customer is the account profile returned on login and signup.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	// AvatarURL is only returned by the profile endpoints.
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// UpdateProfileRequest changes the non-empty fields of the profile.
type UpdateProfileRequest struct {
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// Empty reports whether the request would change nothing.
func (r UpdateProfileRequest) Empty() bool {
	return r == UpdateProfileRequest{}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// AuthResult is the payload of a login or signup response. Token may be
// empty for signup.
type AuthResult struct {
	Token    string   `json:"token"`
	Customer Customer `json:"customer"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}
