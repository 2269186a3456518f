package entity

import (
	"strings"
	"time"
)

// User is one directory entry. ID is the storage key and never leaves the
// service layer; UniqueID is the identifier clients see. Version is bumped
// on every write and guards conditional updates against lost writes.
type User struct {
	ID           string
	UniqueID     string
	FullName     string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	OTPHash      string
	OTPExpiresAt *time.Time
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasOTP reports whether a reset code is stored, regardless of expiry.
func (u *User) HasOTP() bool {
	return u.OTPHash != "" && u.OTPExpiresAt != nil
}

// OTPExpired is evaluated at read time; there is no stored expired state.
func (u *User) OTPExpired(now time.Time) bool {
	return u.OTPExpiresAt == nil || now.After(*u.OTPExpiresAt)
}

// PublicUser is the only user shape that leaves the service layer.
type PublicUser struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.UniqueID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NormalizeEmail trims and lower-cases an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
