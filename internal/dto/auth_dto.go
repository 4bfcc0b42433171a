package dto

import (
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/models"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type IdentityResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type UserResponse struct {
	ID                 uuid.UUID  `json:"id"`
	IdentityID         string     `json:"identityId"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	OnboardingComplete bool       `json:"onboardingComplete"`
	SalonID            *uuid.UUID `json:"salonId,omitempty"`
}

func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:                 u.ID,
		IdentityID:         u.IdentityID,
		Email:              u.Email,
		Name:               u.Name,
		OnboardingComplete: u.OnboardingComplete,
		SalonID:            u.SalonID,
	}
}

// SyncResponse reports the outcome of a user synchronization. State is
// "synced" or "failed".
type SyncResponse struct {
	State    string        `json:"state"`
	Attempts int           `json:"attempts"`
	User     *UserResponse `json:"user,omitempty"`
	Error    string        `json:"error,omitempty"`
}

type SignOutResponse struct {
	Success bool `json:"success"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Redis     string `json:"redis"`
}
