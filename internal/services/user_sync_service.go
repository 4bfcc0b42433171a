package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/repository"
	"github.com/cenkalti/backoff/v5"
)

var (
	ErrMissingIdentity = errors.New("identity id is required")
	ErrSyncExhausted   = errors.New("user sync failed after retries")
)

// UserStore is the persistence the synchronizer needs. Create must report a
// unique violation on the identity id as repository.ErrDuplicateIdentity.
// Restore revives a soft-deleted row and reports ErrUserNotFound when there is
// none.
type UserStore interface {
	FindByIdentityID(ctx context.Context, identityID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, identityID, email, name string) (*models.User, error)
	Restore(ctx context.Context, identityID, email, name string) (*models.User, error)
}

type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type SyncResult struct {
	User     *models.User
	Created  bool
	Attempts int
}

type UserSyncService struct {
	store  UserStore
	policy RetryPolicy
}

func NewUserSyncService(store UserStore, policy RetryPolicy) *UserSyncService {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 5
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = 2 * time.Second
	}
	if policy.MaxInterval < policy.InitialInterval {
		policy.MaxInterval = policy.InitialInterval
	}
	return &UserSyncService{store: store, policy: policy}
}

// Upsert makes one attempt at reconciling the identity into the users table.
// The boolean reports whether a new row was created.
func (s *UserSyncService) Upsert(ctx context.Context, id *identity.Identity) (*models.User, bool, error) {
	if id == nil || id.ID == "" {
		return nil, false, ErrMissingIdentity
	}
	name := id.DisplayName()

	_, err := s.store.FindByIdentityID(ctx, id.ID)
	switch {
	case err == nil:
		user, err := s.store.UpdateProfile(ctx, id.ID, id.Email, name)
		return user, false, err
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, false, err
	}

	user := &models.User{
		IdentityID: id.ID,
		Email:      id.Email,
		Name:       name,
	}
	if err := s.store.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicateIdentity) {
			return nil, false, err
		}
		// Lost a first-creation race; the winner's row gets refreshed instead.
		existing, err := s.store.UpdateProfile(ctx, id.ID, id.Email, name)
		if !errors.Is(err, repository.ErrUserNotFound) {
			return existing, false, err
		}
		// The conflicting row is soft-deleted.
		restored, err := s.store.Restore(ctx, id.ID, id.Email, name)
		if err != nil {
			return nil, false, err
		}
		slog.Info("restored deleted user", "identity_id", id.ID)
		return restored, false, nil
	}
	return user, true, nil
}

// Sync runs Upsert under the bounded exponential backoff policy. When every
// attempt fails the returned error wraps ErrSyncExhausted.
func (s *UserSyncService) Sync(ctx context.Context, id *identity.Identity) (*SyncResult, error) {
	result := &SyncResult{}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.policy.InitialInterval
	b.MaxInterval = s.policy.MaxInterval
	b.Multiplier = 2

	user, err := backoff.Retry(ctx, func() (*models.User, error) {
		result.Attempts++
		user, created, err := s.Upsert(ctx, id)
		if errors.Is(err, ErrMissingIdentity) {
			return nil, backoff.Permanent(err)
		}
		if err != nil {
			return nil, err
		}
		result.Created = created
		return user, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(s.policy.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("user sync attempt failed", "identity_id", identityID(id), "retry_in", next.String(), "error", err)
		}),
	)
	if err != nil {
		if errors.Is(err, ErrMissingIdentity) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return result, err
		}
		slog.Error("user sync exhausted retries", "identity_id", identityID(id), "attempts", result.Attempts, "error", err)
		return result, fmt.Errorf("%w: %v", ErrSyncExhausted, err)
	}

	result.User = user
	return result, nil
}

func identityID(id *identity.Identity) string {
	if id == nil {
		return ""
	}
	return id.ID
}
