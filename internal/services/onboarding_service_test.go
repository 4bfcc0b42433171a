package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/repository"
	"github.com/google/uuid"
)

type fakeOnboardingStore struct {
	users   map[string]*models.User
	salon   *models.Salon
	pricing []models.PricingConfig
}

func (f *fakeOnboardingStore) OnboardingStatus(_ context.Context, identityID string) (bool, error) {
	u, ok := f.users[identityID]
	if !ok {
		return false, repository.ErrUserNotFound
	}
	return u.OnboardingComplete, nil
}

func (f *fakeOnboardingStore) CompleteOnboarding(_ context.Context, identityID string, salon *models.Salon, pricing []models.PricingConfig) (*models.User, error) {
	u, ok := f.users[identityID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if u.OnboardingComplete {
		return nil, repository.ErrAlreadyOnboarded
	}
	salon.ID = uuid.New()
	salon.OwnerID = u.ID
	f.salon, f.pricing = salon, pricing
	u.OnboardingComplete = true
	u.SalonID = &salon.ID
	return u, nil
}

func newFakeOnboardingStore() *fakeOnboardingStore {
	return &fakeOnboardingStore{users: map[string]*models.User{
		"idp_1": {ID: uuid.New(), IdentityID: "idp_1"},
	}}
}

func TestOnboardingComplete(t *testing.T) {
	store := newFakeOnboardingStore()
	svc := NewOnboardingService(store)

	req := &dto.CompleteOnboardingRequest{
		SalonName:    "  Studio 9 ",
		WorkingHours: json.RawMessage(`{"mon":"9-17"}`),
		Services: []dto.PricingItem{
			{Name: "Cut", Price: 45, Duration: 30},
			{Name: "Color", Price: 120, Duration: 90, Category: "Color"},
		},
	}

	user, err := svc.Complete(context.Background(), "idp_1", req)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !user.OnboardingComplete || user.SalonID == nil {
		t.Errorf("user not onboarded: %+v", user)
	}
	if store.salon.Name != "Studio 9" {
		t.Errorf("salon name not trimmed: %q", store.salon.Name)
	}
	if string(store.salon.WorkingHours) != `{"mon":"9-17"}` {
		t.Errorf("unexpected working hours %s", store.salon.WorkingHours)
	}
	if store.pricing[0].Category != "General" || store.pricing[1].Category != "Color" {
		t.Errorf("unexpected categories: %+v", store.pricing)
	}

	if _, err := svc.Complete(context.Background(), "idp_1", req); !errors.Is(err, repository.ErrAlreadyOnboarded) {
		t.Errorf("expected ErrAlreadyOnboarded on second call, got %v", err)
	}
}

func TestOnboardingCompleteValidation(t *testing.T) {
	svc := NewOnboardingService(newFakeOnboardingStore())

	tests := []struct {
		name string
		req  *dto.CompleteOnboardingRequest
	}{
		{"missing salon name", &dto.CompleteOnboardingRequest{}},
		{"negative price", &dto.CompleteOnboardingRequest{SalonName: "S", Services: []dto.PricingItem{{Name: "Cut", Price: -1, Duration: 30}}}},
		{"zero duration", &dto.CompleteOnboardingRequest{SalonName: "S", Services: []dto.PricingItem{{Name: "Cut", Price: 10}}}},
		{"bad working hours", &dto.CompleteOnboardingRequest{SalonName: "S", WorkingHours: json.RawMessage(`{nope`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Complete(context.Background(), "idp_1", tt.req); !errors.Is(err, ErrInvalidOnboarding) {
				t.Errorf("expected ErrInvalidOnboarding, got %v", err)
			}
		})
	}
}

func TestOnboardingStatusUnknownUser(t *testing.T) {
	svc := NewOnboardingService(newFakeOnboardingStore())
	if _, err := svc.Status(context.Background(), "idp_missing"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
