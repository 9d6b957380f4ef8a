package models

import "strings"

// User roles.
const (
	RolePartner = "partner"
	RoleAdmin   = "admin"
)

// User represents a partner or administrator of the business.
type User struct {
	Base
	Username         string `gorm:"uniqueIndex;not null" json:"username"`
	Email            string `json:"email"`
	Password         string `gorm:"not null" json:"-"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	IsAdmin          bool   `gorm:"default:false" json:"is_admin"`
	Role             string `gorm:"default:'partner'" json:"role"`
	RefreshTokenHash string `gorm:"size:64" json:"-"`
}

// DisplayName returns the user's full name, falling back to the
// username when no name was set. Denormalized onto contribution
// records so lists render without a join.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
