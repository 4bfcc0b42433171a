package onboarding

import (
	"errors"
	"strings"
	"sync"
)

const (
	DashboardPath    = "/dashboard"
	OnboardingPath   = "/onboarding"
	AuthRedirectPath = "/auth-redirect"
)

// Decision is the gate's output for one observation.
type Decision string

const (
	Loading    Decision = "loading"
	Dashboard  Decision = "redirect-to-dashboard"
	Onboarding Decision = "redirect-to-onboarding"
)

// Path returns the redirect target, or "" while loading.
func (d Decision) Path() string {
	switch d {
	case Dashboard:
		return DashboardPath
	case Onboarding:
		return OnboardingPath
	default:
		return ""
	}
}

// Snapshot is what the gate knows about the caller at one point in time.
// IdentityID is empty until the identity provider has resolved the session;
// UserLoaded is false until the synchronized user record has been read.
type Snapshot struct {
	IdentityID         string
	UserLoaded         bool
	OnboardingComplete bool
}

// Resolve never redirects on partial information.
func Resolve(s Snapshot) Decision {
	if s.IdentityID == "" || !s.UserLoaded {
		return Loading
	}
	if s.OnboardingComplete {
		return Dashboard
	}
	return Onboarding
}

// Gate remembers the last redirect it issued so that repeated observations of
// the same resolution do not redirect again.
type Gate struct {
	mu       sync.Mutex
	identity string
	fired    Decision
}

// Observe resolves s and reports whether the caller should act on the
// decision. Loading never fires. A redirect fires once per (identity, decision)
// pair and again only after the resolution changes.
func (g *Gate) Observe(s Snapshot) (Decision, bool) {
	d := Resolve(s)
	if d == Loading {
		return d, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.identity == s.IdentityID && g.fired == d {
		return d, false
	}
	g.identity = s.IdentityID
	g.fired = d
	return d, true
}

// Reset forgets the last redirect, e.g. after sign-out.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.identity = ""
	g.fired = ""
	g.mu.Unlock()
}

// MarshalText encodes the last fired redirect so a gate can follow one session
// across requests.
func (g *Gate) MarshalText() ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fired == "" {
		return nil, nil
	}
	return []byte(string(g.fired) + ":" + g.identity), nil
}

// UnmarshalText restores a gate written by MarshalText. Empty input yields a
// fresh gate.
func (g *Gate) UnmarshalText(text []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.identity, g.fired = "", ""
	if len(text) == 0 {
		return nil
	}

	decision, identity, ok := strings.Cut(string(text), ":")
	d := Decision(decision)
	if !ok || identity == "" || (d != Dashboard && d != Onboarding) {
		return errors.New("onboarding: malformed gate state")
	}
	g.identity, g.fired = identity, d
	return nil
}
