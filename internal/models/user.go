package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User mirrors an identity provider account inside the application.
// IdentityID is the provider's stable subject and carries the unique index
// that resolves concurrent first syncs.
type User struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	IdentityID         string         `gorm:"size:255;not null;uniqueIndex" json:"identityId"`
	Email              string         `gorm:"size:255;not null;index" json:"email"`
	Name               string         `gorm:"size:255;not null" json:"name"`
	OnboardingComplete bool           `gorm:"not null;default:false" json:"onboardingComplete"`
	SalonID            *uuid.UUID     `gorm:"type:uuid;index" json:"salonId,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}
