package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's authorization level
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Contact is a single address-book entry saved by a user
type Contact struct {
	Name         string   `json:"name,omitempty"`
	PhoneNumbers []string `json:"phoneNumbers"`
}

// User represents a registered account. Password, reset token and OTP
// fields are only populated by the credential read paths; default reads
// leave them empty.
type User struct {
	ID                   uuid.UUID
	UserName             string
	Email                string
	PhoneNo              string
	Password             string
	Role                 Role
	TokenVersion         int
	ResetPasswordToken   *string
	ResetPasswordExpires *time.Time
	OTP                  *string
	OTPExpires           *time.Time
	Contacts             []Contact
	Photos               []string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Book references its two remote assets (document and cover) by both a
// secure and a public delivery URL, plus exactly one category.
type Book struct {
	ID             uuid.UUID
	Title          string
	Author         string
	BookSecureURL  string
	BookPublicURL  string
	CoverSecureURL string
	CoverPublicURL string
	CategoryID     uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Category groups books under a unique name
type Category struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
