package payments

import (
	"time"

	"github.com/google/uuid"
)

// BookingFee records the latest known state of a booking fee payment intent,
// as reported by Stripe webhooks.
type BookingFee struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PaymentIntentID string    `gorm:"size:255;not null;uniqueIndex" json:"paymentIntentId"`
	BookingID       string    `gorm:"size:255;index" json:"bookingId"`
	Amount          int64     `gorm:"not null" json:"amount"` // cents
	Currency        string    `gorm:"size:3;not null" json:"currency"`
	Status          string    `gorm:"size:50;not null;index" json:"status"`
	ClientEmail     string    `gorm:"size:255" json:"clientEmail"`
	SalonName       string    `gorm:"size:255" json:"salonName"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// BookingPaymentRequest is the payload for creating a booking fee intent.
type BookingPaymentRequest struct {
	BookingID       string  `json:"bookingId" validate:"required"`
	ClientEmail     string  `json:"clientEmail" validate:"required"`
	ClientName      string  `json:"clientName" validate:"required"`
	ClientPhone     string  `json:"clientPhone"`
	ServiceName     string  `json:"serviceName" validate:"required"`
	ServicePrice    float64 `json:"servicePrice"`
	SalonName       string  `json:"salonName" validate:"required"`
	AppointmentDate string  `json:"appointmentDate"`
	AppointmentTime string  `json:"appointmentTime"`
}

type CreatePaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
}
