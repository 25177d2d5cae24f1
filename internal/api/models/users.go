package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the user's access tier. Superuser status is tracked separately
// on the User and counts as admin wherever role is checked.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Level maps a role onto its position in the user < moderator < admin ordering.
// Unknown roles map to 0 and fail every AtLeast check.
func (r Role) Level() int {
	switch r {
	case RoleUser:
		return 1
	case RoleModerator:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

func (r Role) Valid() bool {
	return r.Level() > 0
}

type User struct {
	ID               string    `gorm:"primaryKey;type:uuid" json:"id"`
	Username         string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email            string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Role             Role      `gorm:"size:32;default:'user';not null" json:"role"`
	IsSuperuser      bool      `gorm:"default:false;not null" json:"-"`
	FirstName        string    `gorm:"size:150" json:"first_name"`
	LastName         string    `gorm:"size:150" json:"last_name"`
	Bio              string    `gorm:"type:text" json:"bio"`
	ConfirmationCode *string   `gorm:"size:100" json:"-"` // regenerated on every signup
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

// IsAdmin reports whether the user holds admin privileges. The superuser
// flag is equivalent to the admin role for authorization purposes.
func (user *User) IsAdmin() bool {
	return user.Role == RoleAdmin || user.IsSuperuser
}

func (user *User) IsModerator() bool {
	return user.Role == RoleModerator
}

// AtLeast reports whether the user's tier meets the required one.
func (user *User) AtLeast(required Role) bool {
	if user.IsSuperuser {
		return true
	}
	return user.Role.Level() >= required.Level()
}

// CanModerate reports whether the user may edit or delete content they
// do not own (reviews, comments).
func (user *User) CanModerate() bool {
	return user.IsAdmin() || user.IsModerator()
}

func (User) TableName() string {
	return "users"
}
