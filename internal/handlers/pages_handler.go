package handlers

import (
	"html"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/apps/payments"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
)

const pageStyle = `<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}a{color:#8a3ffc}</style>`

// PagesHandler serves the marketing pages and the dashboard and onboarding
// shells that the front-end mounts into.
type PagesHandler struct {
	appName string
}

func NewPagesHandler(appName string) *PagesHandler {
	return &PagesHandler{appName: appName}
}

func (h *PagesHandler) render(c *fiber.Ctx, title, body string) error {
	name := html.EscapeString(h.appName)
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>` + html.EscapeString(title) + ` - ` + name + `</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
` + pageStyle + `
</head><body>
<nav><a href="/">` + name + `</a> | <a href="/features">Features</a> | <a href="/pricing">Pricing</a> | <a href="/contact">Contact</a></nav>
` + body + `
</body></html>`)
}

func (h *PagesHandler) Home(c *fiber.Ctx) error {
	cta := `<p><a href="/sign-up">Create your salon</a> or <a href="/sign-in">sign in</a>.</p>`
	if _, err := identity.FromContext(c); err == nil {
		cta = `<p><a href="/auth-redirect">Go to your dashboard</a></p>`
	}
	return h.render(c, "Home", `<h1>Online booking for your salon</h1>
<p>Let clients book appointments, pay a small booking fee and get SMS reminders.</p>
`+cta)
}

func (h *PagesHandler) Pricing(c *fiber.Ctx) error {
	return h.render(c, "Pricing", `<h1>Pricing</h1>
<p>No monthly fee. Clients pay a `+payments.FormatCents(payments.BookingFeeCents)+` booking fee when they reserve an appointment.</p>
<p><a href="/sign-up">Get started</a></p>`)
}

func (h *PagesHandler) Features(c *fiber.Ctx) error {
	return h.render(c, "Features", `<h1>Features</h1>
<h2>Bookings</h2><p>Publish your services, prices and working hours.</p>
<h2>Payments</h2><p>Secure booking fees with Stripe.</p>
<h2>SMS</h2><p>Appointment confirmations by text message.</p>`)
}

func (h *PagesHandler) Contact(c *fiber.Ctx) error {
	return h.render(c, "Contact", `<h1>Contact</h1>
<p>Questions about `+html.EscapeString(h.appName)+`? Write to support and we will get back within one business day.</p>`)
}

func (h *PagesHandler) Dashboard(c *fiber.Ctx) error {
	return h.render(c, "Dashboard", `<h1>Dashboard</h1><div id="app" data-view="dashboard"></div>
<form method="post" action="/api/auth/signout"><button type="submit">Sign out</button></form>`)
}

func (h *PagesHandler) Onboarding(c *fiber.Ctx) error {
	return h.render(c, "Set up your salon", `<h1>Set up your salon</h1><div id="app" data-view="onboarding"></div>`)
}
