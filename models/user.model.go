package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	VerificationNone     = "none"
	VerificationPending  = "pending"
	VerificationVerified = "verified"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Login
	Email    string `gorm:"unique;not null;size:100" json:"email"`
	Password string `gorm:"not null" json:"-"`

	// Profile
	Name      string `gorm:"size:100;not null" json:"name"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `gorm:"type:text" json:"bio"`
	Location  string `gorm:"size:100" json:"location"`
	Phone     string `gorm:"size:20" json:"phone"`
	Website   string `gorm:"size:255" json:"website"`

	// Role & verification
	Role                    string `gorm:"default:'user';size:20" json:"role"`
	IsVerified              bool   `gorm:"default:false" json:"is_verified"`
	VerificationStatus      string `gorm:"default:'none';size:20" json:"verification_status"`
	VerificationDocumentURL string `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PublicUser is the subset of a user shown to other marketplace members.
type PublicUser struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url"`
	Bio        string    `json:"bio"`
	Location   string    `json:"location"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		AvatarURL:  u.AvatarURL,
		Bio:        u.Bio,
		Location:   u.Location,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

func publicOf(u *User) *PublicUser {
	if u == nil {
		return nil
	}
	pub := u.Public()
	return &pub
}

// RevokedToken marks a JWT as logged out until it would have expired anyway.
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"index"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

// PasswordReset stores the sha256 of a one-time reset token.
type PasswordReset struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	TokenHash string    `gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}
