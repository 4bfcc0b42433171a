package dto

import "encoding/json"

type PricingItem struct {
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Duration int     `json:"duration" validate:"gt=0"`
	Category string  `json:"category"`
}

type CompleteOnboardingRequest struct {
	SalonName    string          `json:"salonName" validate:"required"`
	Phone        string          `json:"phone"`
	Email        string          `json:"email" validate:"omitempty,email"`
	Address      string          `json:"address"`
	WorkingHours json.RawMessage `json:"workingHours"`
	Services     []PricingItem   `json:"services" validate:"dive"`
}

type OnboardingStatusResponse struct {
	OnboardingComplete bool `json:"onboardingComplete"`
}

// GateResponse is returned to API clients polling the onboarding gate.
type GateResponse struct {
	State    string `json:"state"`
	Redirect string `json:"redirect,omitempty"`
}
