package response

import (
	"gas-stock/internal/data/entity"
	"gas-stock/pkg/utils"
)

type ProfileResponse struct {
	PhoneNumber  *string     `json:"phone_number"`
	Address      *string     `json:"address"`
	ProfileImage *string     `json:"profile_image"`
	IsVerified   bool        `json:"is_verified"`
	Role         entity.Role `json:"role"`
}

type UserResponse struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Profile  ProfileResponse `json:"profile"`
}

type AccountResponse struct {
	User    UserResponse    `json:"user"`
	Profile ProfileResponse `json:"profile"`
}

type LoginResponse struct {
	User   UserResponse    `json:"user"`
	Tokens utils.TokenPair `json:"tokens"`
}

type UsersResponse struct {
	Users []AccountResponse `json:"users"`
}

// Helper converters
func ProfileToResponse(profile *entity.Profile) ProfileResponse {
	return ProfileResponse{
		PhoneNumber:  profile.PhoneNumber,
		Address:      profile.Address,
		ProfileImage: profile.ProfileImage,
		IsVerified:   profile.IsVerified,
		Role:         profile.Role,
	}
}

func UserToResponse(account *entity.Account) UserResponse {
	return UserResponse{
		ID:       account.User.ID.String(),
		Username: account.User.Username,
		Email:    account.User.Email,
		Profile:  ProfileToResponse(account.Profile),
	}
}

func AccountToResponse(account *entity.Account) AccountResponse {
	return AccountResponse{
		User:    UserToResponse(account),
		Profile: ProfileToResponse(account.Profile),
	}
}

func AccountsToResponse(accounts []*entity.Account) UsersResponse {
	users := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		users[i] = AccountToResponse(account)
	}
	return UsersResponse{Users: users}
}
