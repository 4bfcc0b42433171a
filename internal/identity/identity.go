package identity

import (
	"errors"
	"strings"
)

// DefaultDisplayName is used when the provider supplies neither a full name
// nor a first name.
const DefaultDisplayName = "User"

var (
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrInvalidSession        = errors.New("invalid or expired session")
	ErrProviderNotConfigured = errors.New("identity provider is not configured")
	ErrMissingIDToken        = errors.New("no id_token field in oauth2 token")
)

// Identity is the identity provider's view of the signed-in user.
type Identity struct {
	ID        string
	Email     string
	Name      string
	FirstName string
}

// DisplayName returns the full name, then the first name, then DefaultDisplayName.
func (i *Identity) DisplayName() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	if first := strings.TrimSpace(i.FirstName); first != "" {
		return first
	}
	return DefaultDisplayName
}
