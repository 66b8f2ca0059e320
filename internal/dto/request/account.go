package request

type RegisterRequest struct {
	Username    string  `json:"username" validate:"required,max=150"`
	Email       string  `json:"email" validate:"required,email,max=254"`
	Password    string  `json:"password" validate:"required,max=72"`
	Role        string  `json:"role,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// UpdateProfileRequest is a partial update; omitted fields stay as they are.
type UpdateProfileRequest struct {
	PhoneNumber  *string `json:"phone_number,omitempty" validate:"omitempty,phone"`
	Address      *string `json:"address,omitempty"`
	Role         *string `json:"role,omitempty" validate:"omitempty,role"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,max=72"`
}
