package users

import (
	"strings"
	"time"
)

// Role enumerates the account roles accepted at registration.
type Role string

const (
	RoleLawyer    Role = "lawyer"
	RoleAssistant Role = "assistant"
	RoleAdmin     Role = "admin"
)

// Valid reports whether the role is one of the known account roles.
func (r Role) Valid() bool {
	switch r {
	case RoleLawyer, RoleAssistant, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is the persisted account record.
type User struct {
	ID             string     `gorm:"column:id;primaryKey;size:64;not null"`
	Name           string     `gorm:"column:name;size:200;not null"`
	Email          string     `gorm:"column:email;size:320;not null;uniqueIndex"`
	PasswordHash   string     `gorm:"column:password_hash;size:100;not null"`
	Role           Role       `gorm:"column:role;size:32;not null;default:lawyer"`
	BarNumber      string     `gorm:"column:bar_number;size:64"`
	Firm           string     `gorm:"column:firm;size:200"`
	ResetTokenHash string     `gorm:"column:reset_token_hash;size:64;index"`
	ResetExpiresAt *time.Time `gorm:"column:reset_expires_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName exposes the table backing user accounts.
func (User) TableName() string {
	return "users"
}

// PublicUser is the projection returned to clients. It never carries credentials.
type PublicUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	BarNumber string `json:"barNumber"`
	Firm      string `json:"firm"`
}

// Public returns the client-facing projection of the account.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		BarNumber: u.BarNumber,
		Firm:      u.Firm,
	}
}

// NormalizeEmail trims and lowercases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalize(value string) string {
	return strings.TrimSpace(value)
}
