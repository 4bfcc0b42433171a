package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/models"
	"gorm.io/datatypes"
)

var ErrInvalidOnboarding = errors.New("invalid onboarding request")

const defaultCategory = "General"

type OnboardingStore interface {
	OnboardingStatus(ctx context.Context, identityID string) (bool, error)
	CompleteOnboarding(ctx context.Context, identityID string, salon *models.Salon, pricing []models.PricingConfig) (*models.User, error)
}

type OnboardingService struct {
	store OnboardingStore
}

func NewOnboardingService(store OnboardingStore) *OnboardingService {
	return &OnboardingService{store: store}
}

// Status reports the onboarding flag. A user that has not been synchronized
// yet yields repository.ErrUserNotFound.
func (s *OnboardingService) Status(ctx context.Context, identityID string) (bool, error) {
	return s.store.OnboardingStatus(ctx, identityID)
}

// Complete validates req and creates the salon with its price list for the
// user. Completing twice yields repository.ErrAlreadyOnboarded.
func (s *OnboardingService) Complete(ctx context.Context, identityID string, req *dto.CompleteOnboardingRequest) (*models.User, error) {
	if err := dto.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOnboarding, dto.ValidationMessage(err))
	}

	hours := datatypes.JSON("{}")
	if len(req.WorkingHours) > 0 {
		if !json.Valid(req.WorkingHours) {
			return nil, fmt.Errorf("%w: workingHours must be valid JSON", ErrInvalidOnboarding)
		}
		hours = datatypes.JSON(req.WorkingHours)
	}

	salon := &models.Salon{
		Name:         strings.TrimSpace(req.SalonName),
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		WorkingHours: hours,
	}

	pricing := make([]models.PricingConfig, 0, len(req.Services))
	for _, item := range req.Services {
		category := strings.TrimSpace(item.Category)
		if category == "" {
			category = defaultCategory
		}
		pricing = append(pricing, models.PricingConfig{
			ServiceName: strings.TrimSpace(item.Name),
			Price:       item.Price,
			Duration:    item.Duration,
			Category:    category,
			IsActive:    true,
		})
	}

	user, err := s.store.CompleteOnboarding(ctx, identityID, salon, pricing)
	if err != nil {
		return nil, err
	}

	slog.Info("onboarding completed", "identity_id", identityID, "salon_id", salon.ID.String(), "services", len(pricing))
	return user, nil
}
