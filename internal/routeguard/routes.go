package routeguard

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// SignInPath is where unauthenticated requests for protected paths are sent.
const SignInPath = "/sign-in"

// ReturnParam carries the originally requested URL through sign-in.
const ReturnParam = "redirect_url"

// DefaultPublicRoutes is used when no routes file is configured. A pattern is
// either an exact path or a prefix ending in "(.*)".
var DefaultPublicRoutes = []string{
	"/",
	"/sign-in(.*)",
	"/sign-up(.*)",
	"/pricing",
	"/features",
	"/contact",
	"/api/webhooks(.*)",
	"/api/health",
	"/api/auth/signout",
}

type routesFile struct {
	PublicRoutes []string `yaml:"public_routes"`
}

// Matcher is the public-route allow-list. It is the single source of truth
// for which paths skip authentication.
type Matcher struct {
	mu       sync.RWMutex
	patterns []string
	compiled []*regexp.Regexp
}

func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	if err := m.Replace(patterns); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadFromFile reads the allow-list from a YAML file with a public_routes key.
func LoadFromFile(path string) (*Matcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routes file: %w", err)
	}

	var file routesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse routes file: %w", err)
	}
	if len(file.PublicRoutes) == 0 {
		return nil, fmt.Errorf("routes file %s declares no public_routes", path)
	}
	return NewMatcher(file.PublicRoutes)
}

// Replace swaps the allow-list atomically.
func (m *Matcher) Replace(patterns []string) error {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("^" + p + "$")
		if err != nil {
			return fmt.Errorf("invalid route pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append([]string(nil), patterns...)
	m.compiled = compiled
	return nil
}

func (m *Matcher) IsPublic(path string) bool {
	if path == "" {
		path = "/"
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, re := range m.compiled {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func (m *Matcher) Patterns() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.patterns...)
}

// SignInRedirect returns the sign-in location carrying originalURL as the
// return target.
func SignInRedirect(originalURL string) string {
	return SignInPath + "?" + ReturnParam + "=" + url.QueryEscape(originalURL)
}

// SafeReturnPath accepts only same-origin relative paths as a post sign-in
// target and returns fallback for anything else.
func SafeReturnPath(target, fallback string) string {
	if target == "" || target[0] != '/' || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return target
}
