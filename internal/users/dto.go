package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
	"github.com/angelmondragon/jewelmart-backend/pkg/enums"
	"github.com/angelmondragon/jewelmart-backend/pkg/types"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Username    string         `json:"username"`
	ProfilePic  *string        `json:"profile_pic,omitempty"`
	Role        enums.UserRole `json:"role"`
	IsAdmin     bool           `json:"is_admin"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Username     string
	ProfilePic   *string
	Role         enums.UserRole
}

// AdminUpdateRequest is the body of PUT /users/{userId}. Absent fields are
// left unchanged.
type AdminUpdateRequest struct {
	Username   *string              `json:"username" validate:"omitempty,min=1,max=100"`
	Email      *string              `json:"email" validate:"omitempty,email"`
	ProfilePic types.NullableString `json:"profile_pic"`
	IsAdmin    *bool                `json:"is_admin"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		ProfilePic:  u.ProfilePic,
		Role:        u.Role,
		IsAdmin:     u.IsAdmin(),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func FromModels(rows []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if !role.IsValid() {
		role = enums.UserRoleCustomer
	}
	return &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Username:     c.Username,
		ProfilePic:   c.ProfilePic,
		Role:         role,
	}
}
