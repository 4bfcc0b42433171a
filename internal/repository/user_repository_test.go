package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/database/databasetest"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) (*UserRepository, *gorm.DB) {
	t.Helper()
	db := databasetest.Open(t, "repository")
	return NewUserRepository(db), db
}

func onboardingInput() (*models.Salon, []models.PricingConfig) {
	return &models.Salon{Name: "Studio 9", Phone: "+15551234567"},
		[]models.PricingConfig{
			{ServiceName: "Haircut", Price: 45, Duration: 30},
			{ServiceName: "Color", Price: 120, Duration: 90, Category: "Color"},
		}
}

func TestCreateRejectsDuplicateIdentity(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, &models.User{IdentityID: "idp_1", Email: "a@salon.test", Name: "Ana"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, &models.User{IdentityID: "idp_1", Email: "b@salon.test", Name: "Ana"})
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}

	user, err := repo.FindByIdentityID(ctx, "idp_1")
	if err != nil {
		t.Fatalf("FindByIdentityID: %v", err)
	}
	if user.Email != "a@salon.test" || user.OnboardingComplete {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.UpdateProfile(ctx, "idp_missing", "x@salon.test", "X"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	created := &models.User{IdentityID: "idp_1", Email: "old@salon.test", Name: "Old"}
	if err := repo.Create(ctx, created); err != nil {
		t.Fatalf("Create: %v", err)
	}
	user, err := repo.UpdateProfile(ctx, "idp_1", "new@salon.test", "New")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.ID != created.ID || user.Email != "new@salon.test" || user.Name != "New" {
		t.Errorf("unexpected user %+v", user)
	}
	if user.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("updated_at went backwards: %v -> %v", created.UpdatedAt, user.UpdatedAt)
	}
}

func TestCompleteOnboarding(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	salon, pricing := onboardingInput()
	if _, err := repo.CompleteOnboarding(ctx, "idp_missing", salon, pricing); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := repo.Create(ctx, &models.User{IdentityID: "idp_1", Email: "a@salon.test", Name: "Ana"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	salon, pricing = onboardingInput()
	user, err := repo.CompleteOnboarding(ctx, "idp_1", salon, pricing)
	if err != nil {
		t.Fatalf("CompleteOnboarding: %v", err)
	}
	if !user.OnboardingComplete || user.SalonID == nil || *user.SalonID != salon.ID {
		t.Errorf("user not linked to salon: %+v", user)
	}

	var stored models.Salon
	if err := db.Preload("PricingConfigs").First(&stored, "id = ?", salon.ID).Error; err != nil {
		t.Fatalf("load salon: %v", err)
	}
	if stored.OwnerID != user.ID || len(stored.PricingConfigs) != 2 {
		t.Errorf("unexpected salon %+v", stored)
	}
	for _, p := range stored.PricingConfigs {
		if !p.IsActive {
			t.Errorf("pricing %s should default to active", p.ServiceName)
		}
		if p.ServiceName == "Haircut" && p.Category != "General" {
			t.Errorf("expected default category, got %q", p.Category)
		}
	}

	complete, err := repo.OnboardingStatus(ctx, "idp_1")
	if err != nil || !complete {
		t.Errorf("expected onboarding complete, got %v, %v", complete, err)
	}

	again, againPricing := onboardingInput()
	if _, err := repo.CompleteOnboarding(ctx, "idp_1", again, againPricing); !errors.Is(err, ErrAlreadyOnboarded) {
		t.Errorf("expected ErrAlreadyOnboarded, got %v", err)
	}
	var salons int64
	db.Model(&models.Salon{}).Count(&salons)
	if salons != 1 {
		t.Errorf("second completion must not create a salon, found %d", salons)
	}
}

func TestCompleteOnboardingRollsBack(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, &models.User{IdentityID: "idp_1", Email: "a@salon.test", Name: "Ana"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	salon, pricing := onboardingInput()
	// Reusing a primary key fails the pricing insert after the salon insert.
	dup := uuid.New()
	pricing[0].ID, pricing[1].ID = dup, dup

	if _, err := repo.CompleteOnboarding(ctx, "idp_1", salon, pricing); err == nil {
		t.Fatal("expected pricing insert to fail")
	}

	var salons int64
	db.Model(&models.Salon{}).Count(&salons)
	if salons != 0 {
		t.Errorf("salon insert was not rolled back, found %d", salons)
	}
	complete, err := repo.OnboardingStatus(ctx, "idp_1")
	if err != nil || complete {
		t.Errorf("expected onboarding still incomplete, got %v, %v", complete, err)
	}
}

func TestRestoreSoftDeletedUser(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Restore(ctx, "idp_1", "a@salon.test", "Ana"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound for unknown identity, got %v", err)
	}

	created := &models.User{IdentityID: "idp_1", Email: "a@salon.test", Name: "Ana"}
	if err := repo.Create(ctx, created); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Restore(ctx, "idp_1", "a@salon.test", "Ana"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound for a live user, got %v", err)
	}
	salon, pricing := onboardingInput()
	if _, err := repo.CompleteOnboarding(ctx, "idp_1", salon, pricing); err != nil {
		t.Fatalf("CompleteOnboarding: %v", err)
	}
	if err := db.Delete(&models.User{}, "identity_id = ?", "idp_1").Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if _, err := repo.FindByIdentityID(ctx, "idp_1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("deleted user must be hidden, got %v", err)
	}
	if _, err := repo.UpdateProfile(ctx, "idp_1", "b@salon.test", "Ana"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("deleted user must not be updated, got %v", err)
	}
	if err := repo.Create(ctx, &models.User{IdentityID: "idp_1", Email: "b@salon.test", Name: "Ana"}); !errors.Is(err, ErrDuplicateIdentity) {
		t.Errorf("deleted user still holds the identity, got %v", err)
	}

	user, err := repo.Restore(ctx, "idp_1", "b@salon.test", "Ana B")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if user.ID != created.ID || user.Email != "b@salon.test" || user.Name != "Ana B" {
		t.Errorf("unexpected restored user %+v", user)
	}
	if !user.OnboardingComplete || user.SalonID == nil {
		t.Errorf("restored user with a salon keeps onboarding, got %+v", user)
	}
}

func TestRestoreWithoutSalonRequiresOnboarding(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, &models.User{IdentityID: "idp_1", Email: "a@salon.test", Name: "Ana", OnboardingComplete: true}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := db.Delete(&models.User{}, "identity_id = ?", "idp_1").Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	user, err := repo.Restore(ctx, "idp_1", "a@salon.test", "Ana")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if user.OnboardingComplete {
		t.Error("restored user without a salon must onboard again")
	}
}
