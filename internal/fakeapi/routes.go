package fakeapi

import (
	"github.com/gofiber/fiber/v2"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *HealthHandler
	Handlers       *Handlers
	AuthMiddleware *AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	h := cfg.Handlers
	authed := cfg.AuthMiddleware.Handle
	admin := RequireAdmin()

	api := app.Group("/api")
	api.Post("/auth/register/", h.Register)
	api.Post("/auth/login/", h.Login)
	api.Post("/auth/forgot-password/", h.ForgotPassword)
	api.Post("/auth/logout/", authed, h.Logout)
	api.Post("/auth/edit-profile/", authed, h.EditProfile)
	api.Put("/auth/edit-profile/", authed, h.EditProfile)

	api.Post("/issues/report/", authed, h.ReportIssue)
	api.Get("/issues/user/", authed, h.UserIssues)
	api.Get("/notifications/", authed, h.Notifications)
	api.Post("/feedback/submit/", authed, h.SubmitFeedback)

	api.Get("/admin/issues/", authed, admin, h.AdminIssues)
	api.Put("/admin/issues/:id/status/", authed, admin, h.AdminSetStatus)
	api.Get("/admin/feedback/", authed, admin, h.AdminFeedback)
	api.Get("/admin/notifications/", authed, admin, h.AdminNotifications)
	api.Post("/admin/notifications/send/", authed, admin, h.SendNotification)
}
