package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"gorm.io/gorm"
)

// User is a staff member who can sign in and record payments
type User struct {
	ID          uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	Username    string        `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName   string        `gorm:"size:255" json:"first_name"`
	LastName    string        `gorm:"size:255" json:"last_name"`
	Email       *string       `gorm:"size:255" json:"email,omitempty"`
	Password    string        `gorm:"size:255;not null" json:"-"`
	Role        enum.UserRole `gorm:"size:20;not null;default:employee;index" json:"role"`
	IsActive    bool          `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time    `json:"last_login_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsManager reports whether the user holds the manager role
func (u *User) IsManager() bool {
	return u.Role == enum.UserRoleManager
}

// HasPermission checks if the user's role grants a specific permission
func (u *User) HasPermission(permissionName string) bool {
	for _, p := range u.Role.Permissions() {
		if p == permissionName {
			return true
		}
	}
	return false
}

// FullName returns first and last name, falling back to the username
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}
