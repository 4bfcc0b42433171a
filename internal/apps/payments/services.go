package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/dto"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingFeeCents is the flat platform fee charged per booking ($5.00).
const BookingFeeCents int64 = 500

var (
	ErrMissingFields   = errors.New("missing required fields")
	ErrProviderMissing = errors.New("payment provider is not configured")
	ErrUnhandledEvent  = errors.New("unhandled event type")
	ErrMalformedEvent  = errors.New("malformed event payload")
)

// FormatCents renders an amount in cents as dollars, e.g. 500 -> "$5.00".
func FormatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

type PaymentService struct {
	provider PaymentProvider
}

func NewPaymentService(provider PaymentProvider) *PaymentService {
	return &PaymentService{provider: provider}
}

// CreateBookingFeeIntent validates req and creates the fixed booking fee
// intent. The booking id is the idempotency key, so a client retrying the
// same booking gets the same intent back.
func (s *PaymentService) CreateBookingFeeIntent(ctx context.Context, req *BookingPaymentRequest) (*PaymentIntent, error) {
	req.BookingID = strings.TrimSpace(req.BookingID)
	req.ClientEmail = strings.TrimSpace(req.ClientEmail)
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ServiceName = strings.TrimSpace(req.ServiceName)
	req.SalonName = strings.TrimSpace(req.SalonName)
	if err := dto.Validate(req); err != nil {
		return nil, ErrMissingFields
	}
	if s.provider == nil {
		return nil, ErrProviderMissing
	}

	metadata := map[string]string{
		"bookingId":       req.BookingID,
		"clientEmail":     req.ClientEmail,
		"clientName":      req.ClientName,
		"clientPhone":     req.ClientPhone,
		"serviceName":     req.ServiceName,
		"servicePrice":    strconv.FormatFloat(req.ServicePrice, 'f', -1, 64),
		"salonName":       req.SalonName,
		"appointmentDate": req.AppointmentDate,
		"appointmentTime": req.AppointmentTime,
		"type":            "booking_fee",
	}

	intent, err := s.provider.CreatePaymentIntent(ctx, BookingFeeCents, metadata, req.BookingID)
	if err != nil {
		return nil, err
	}

	slog.Info("booking fee intent created", "booking_id", req.BookingID, "payment_intent_id", intent.ID, "amount", intent.Amount)
	return intent, nil
}

// BookingFeeStore persists webhook outcomes.
type BookingFeeStore interface {
	Upsert(ctx context.Context, fee *BookingFee) error
	List(ctx context.Context, limit int) ([]BookingFee, error)
}

type GormBookingFeeStore struct {
	db *gorm.DB
}

func NewGormBookingFeeStore(db *gorm.DB) *GormBookingFeeStore {
	return &GormBookingFeeStore{db: db}
}

// Upsert keys on the payment intent id; a later event overwrites the status.
func (s *GormBookingFeeStore) Upsert(ctx context.Context, fee *BookingFee) error {
	if fee.ID == uuid.Nil {
		fee.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_intent_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "amount", "currency", "booking_id", "client_email", "salon_name", "updated_at"}),
	}).Create(fee).Error
}

func (s *GormBookingFeeStore) List(ctx context.Context, limit int) ([]BookingFee, error) {
	var fees []BookingFee
	err := s.db.WithContext(ctx).Order("updated_at DESC").Limit(limit).Find(&fees).Error
	return fees, err
}

type WebhookService struct {
	store BookingFeeStore
}

func NewWebhookService(store BookingFeeStore) *WebhookService {
	return &WebhookService{store: store}
}

// HandleEvent records payment intent outcomes. Other event types return
// ErrUnhandledEvent and are acknowledged by the caller.
func (s *WebhookService) HandleEvent(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded,
		stripe.EventTypePaymentIntentPaymentFailed,
		stripe.EventTypePaymentIntentCanceled:
	default:
		return ErrUnhandledEvent
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil || pi.ID == "" {
		return ErrMalformedEvent
	}

	fee := &BookingFee{
		PaymentIntentID: pi.ID,
		BookingID:       pi.Metadata["bookingId"],
		Amount:          pi.Amount,
		Currency:        string(pi.Currency),
		Status:          string(pi.Status),
		ClientEmail:     pi.Metadata["clientEmail"],
		SalonName:       pi.Metadata["salonName"],
	}
	if err := s.store.Upsert(ctx, fee); err != nil {
		return fmt.Errorf("failed to record booking fee: %w", err)
	}

	slog.Info("booking fee updated", "booking_id", fee.BookingID, "payment_intent_id", fee.PaymentIntentID, "status", fee.Status)
	return nil
}
