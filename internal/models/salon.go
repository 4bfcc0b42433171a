package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Salon struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"ownerId"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Phone        string         `gorm:"size:32" json:"phone"`
	Email        string         `gorm:"size:255" json:"email"`
	Address      string         `gorm:"type:text" json:"address"`
	WorkingHours datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"workingHours"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`

	PricingConfigs []PricingConfig `gorm:"foreignKey:SalonID" json:"pricingConfigs,omitempty"`
}

// PricingConfig is one bookable service on a salon's price list.
type PricingConfig struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SalonID     uuid.UUID `gorm:"type:uuid;not null;index" json:"salonId"`
	ServiceName string    `gorm:"size:255;not null" json:"serviceName"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration    int       `gorm:"not null" json:"duration"` // minutes
	Category    string    `gorm:"size:100;default:'General'" json:"category"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
