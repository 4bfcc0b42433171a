package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/identity"
)

var ErrInvalidState = errors.New("invalid or missing oauth state")

// SignInResult is the outcome of a completed provider callback. SyncErr is set
// when the user record could not be synchronized; the session is still valid
// and the client retries the sync through the API.
type SignInResult struct {
	Token    string
	Identity *identity.Identity
	Sync     *SyncResult
	SyncErr  error
}

type AuthService struct {
	provider identity.Authenticator
	sessions *identity.Sessions
	sync     *UserSyncService
}

// NewAuthService accepts a nil provider; sign-in then fails with
// identity.ErrProviderNotConfigured while session checks keep working.
func NewAuthService(provider identity.Authenticator, sessions *identity.Sessions, sync *UserSyncService) *AuthService {
	return &AuthService{provider: provider, sessions: sessions, sync: sync}
}

// BeginSignIn returns a fresh state value and the provider URL to send the
// browser to.
func (s *AuthService) BeginSignIn(signUp bool) (state, authURL string, err error) {
	if s.provider == nil {
		return "", "", identity.ErrProviderNotConfigured
	}
	state, err = generateState()
	if err != nil {
		return "", "", err
	}
	return state, s.provider.AuthCodeURL(state, signUp), nil
}

// CompleteSignIn checks the returned state against the expected one, exchanges
// the code, synchronizes the user and issues a session token.
func (s *AuthService) CompleteSignIn(ctx context.Context, expectedState, state, code string) (*SignInResult, error) {
	if s.provider == nil {
		return nil, identity.ErrProviderNotConfigured
	}
	if expectedState == "" || state != expectedState || code == "" {
		return nil, ErrInvalidState
	}

	id, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.Issue(id)
	if err != nil {
		return nil, err
	}

	// Single attempt. The loading page's sync call owns the retry schedule.
	result := &SignInResult{Token: token, Identity: id}
	user, created, err := s.sync.Upsert(ctx, id)
	if err != nil {
		result.SyncErr = err
		slog.Warn("user sync deferred to loading page", "identity_id", id.ID, "action", "sign_in", "error", err)
	} else {
		result.Sync = &SyncResult{User: user, Created: created, Attempts: 1}
		slog.Info("user signed in", "identity_id", id.ID, "created", result.Sync.Created)
	}
	return result, nil
}

func generateState() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
