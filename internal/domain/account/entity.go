package account

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
)

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformFacebook, PlatformInstagram, PlatformTwitter, PlatformLinkedIn:
		return true
	}
	return false
}

type Status string

const (
	StatusConnected    Status = "connected"
	StatusTokenExpired Status = "token_expired"
	StatusRevoked      Status = "revoked"
)

// SocialAccount is a connected platform identity owned by a workspace.
// Token lifecycle (OAuth connect/refresh) is handled by an external
// collaborator; this core only observes status changes.
type SocialAccount struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	WorkspaceID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Platform          Platform  `gorm:"type:varchar(20);not null"`
	ExternalAccountID string    `gorm:"type:varchar(255);not null"`
	AccountName       string    `gorm:"type:varchar(255)"`
	AccountUsername   sql.NullString
	Status            Status `gorm:"type:varchar(20);not null;default:'connected'"`
	AccessToken       string `gorm:"type:text"`
	TokenExpiresAt    sql.NullTime
	WebhookSecret     string `gorm:"type:varchar(255)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasUsableToken reports whether the account can make outbound platform
// calls right now.
func (a SocialAccount) HasUsableToken() bool {
	if a.Status != StatusConnected || a.AccessToken == "" {
		return false
	}
	if a.TokenExpiresAt.Valid && a.TokenExpiresAt.Time.Before(time.Now()) {
		return false
	}
	return true
}

func (SocialAccount) TableName() string {
	return "social_accounts"
}
