package apps

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Plugin is a feature module mounted under /api.
type Plugin interface {
	// ID returns the unique module identifier used in logs.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts the module's routes on the /api group. The route
	// guard is already applied; paths under /api/webhooks are public.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// AdminPlugin extends Plugin with admin-only routes.
type AdminPlugin interface {
	Plugin

	// RegisterAdminRoutes mounts admin-only routes on the given Fiber group.
	RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// ProviderError is a failure reported by an external provider (Stripe,
// Twilio). Handlers relay Status and Message to the caller.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
	Code     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Status, e.Message)
}

// HTTPStatus returns Status when it is a usable error status, else 502.
func (e *ProviderError) HTTPStatus() int {
	if e.Status >= 400 && e.Status <= 599 {
		return e.Status
	}
	return fiber.StatusBadGateway
}
