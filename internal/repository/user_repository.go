package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateIdentity = errors.New("user already exists for identity")
	ErrAlreadyOnboarded  = errors.New("onboarding already completed")
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByIdentityID(ctx context.Context, identityID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("identity_id = ?", identityID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// Create inserts a new user. A unique violation on identity_id is reported as
// ErrDuplicateIdentity.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateIdentity
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateProfile refreshes email and name. updated_at is always bumped.
func (r *UserRepository) UpdateProfile(ctx context.Context, identityID, email, name string) (*models.User, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("identity_id = ?", identityID).
		Updates(map[string]interface{}{
			"email": email,
			"name":  name,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return r.FindByIdentityID(ctx, identityID)
}

// Restore brings back a soft-deleted user with a fresh profile. The identity
// keeps its unique index row while deleted, so a returning owner cannot be
// created again. Onboarding stays complete only if the salon survived cleanup.
func (r *UserRepository) Restore(ctx context.Context, identityID, email, name string) (*models.User, error) {
	result := r.db.WithContext(ctx).Unscoped().Model(&models.User{}).
		Where("identity_id = ? AND deleted_at IS NOT NULL", identityID).
		Updates(map[string]interface{}{
			"email":               email,
			"name":                name,
			"deleted_at":          nil,
			"onboarding_complete": gorm.Expr("salon_id IS NOT NULL"),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to restore user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return r.FindByIdentityID(ctx, identityID)
}

func (r *UserRepository) OnboardingStatus(ctx context.Context, identityID string) (bool, error) {
	user, err := r.FindByIdentityID(ctx, identityID)
	if err != nil {
		return false, err
	}
	return user.OnboardingComplete, nil
}

// CompleteOnboarding creates the user's salon and price list, links the salon
// and flips the completion flag in one transaction.
func (r *UserRepository) CompleteOnboarding(ctx context.Context, identityID string, salon *models.Salon, pricing []models.PricingConfig) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identity_id = ?", identityID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if user.OnboardingComplete {
			return ErrAlreadyOnboarded
		}

		if salon.ID == uuid.Nil {
			salon.ID = uuid.New()
		}
		salon.OwnerID = user.ID
		if err := tx.Create(salon).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyOnboarded
			}
			return err
		}

		for i := range pricing {
			if pricing[i].ID == uuid.Nil {
				pricing[i].ID = uuid.New()
			}
			pricing[i].SalonID = salon.ID
		}
		if len(pricing) > 0 {
			if err := tx.Create(&pricing).Error; err != nil {
				return err
			}
		}

		salonID := salon.ID
		user.SalonID = &salonID
		user.OnboardingComplete = true
		return tx.Model(&user).Updates(map[string]interface{}{
			"salon_id":            salonID,
			"onboarding_complete": true,
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrAlreadyOnboarded) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return &user, nil
}
