package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/jewelmart-backend/pkg/enums"
)

// User represents an account holder. Email is stored normalized to lower case.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex:ux_users_email;check:chk_users_email_lower,email = lower(email)"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Username     string         `gorm:"column:username;type:text;not null"`
	ProfilePic   *string        `gorm:"column:profile_pic;type:text"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;check:chk_users_role,role IN ('customer', 'admin')"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	if u.Role == "" {
		u.Role = enums.UserRoleCustomer
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == enums.UserRoleAdmin
}
