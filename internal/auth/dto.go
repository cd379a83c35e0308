package auth

import (
	"github.com/angelmondragon/jewelmart-backend/internal/users"
	"github.com/angelmondragon/jewelmart-backend/pkg/types"
)

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Email      string  `json:"email" validate:"required,email,max=254"`
	Password   string  `json:"password" validate:"required,min=8,max=128"`
	Username   string  `json:"username" validate:"required,max=100"`
	ProfilePic *string `json:"profile_pic,omitempty" validate:"omitempty,max=2048"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest pairs the (possibly expired) access token with its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ProfileUpdateRequest is the body of PUT /auth/user.
type ProfileUpdateRequest struct {
	Username   *string              `json:"username" validate:"omitempty,min=1,max=100"`
	ProfilePic types.NullableString `json:"profile_pic"`
}

// ResetPasswordRequest is the body of PUT /auth/reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

// SignupResponse is returned with 201 after registration.
type SignupResponse struct {
	Message string         `json:"message"`
	User    *users.UserDTO `json:"user"`
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	Message      string         `json:"message"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int            `json:"expires_in"`
	User         *users.UserDTO `json:"user"`
}

// TokenPair is returned by refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}
