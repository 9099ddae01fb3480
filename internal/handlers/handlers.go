// Package handlers wires the HTTP surface: wizard step saves, document
// generation, entity reuse, sharing, and the investment list.
package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/safeforge/safeforge/internal/auth"
	"github.com/safeforge/safeforge/internal/docgen"
	"github.com/safeforge/safeforge/internal/middleware"
	"github.com/safeforge/safeforge/internal/service"
	"github.com/safeforge/safeforge/internal/storage"
)

// Handler bundles the services behind the HTTP routes.
type Handler struct {
	investments *service.InvestmentService
	entities    *service.EntityService
	jwtManager  *auth.JWTManager
}

// New creates a Handler.
func New(investments *service.InvestmentService, entities *service.EntityService, jwtManager *auth.JWTManager) *Handler {
	return &Handler{
		investments: investments,
		entities:    entities,
		jwtManager:  jwtManager,
	}
}

// Register mounts all API routes on the app. Static investment routes are
// registered before the :id routes so "steps" is never captured as an id.
func (h *Handler) Register(app *fiber.App) {
	requireAuth := middleware.RequireAuth(h.jwtManager)
	optionalAuth := middleware.OptionalAuth(h.jwtManager)

	api := app.Group("/api")

	api.Get("/entities", requireAuth, h.listEntities)
	api.Get("/entities/:id", requireAuth, h.resolveEntity)

	inv := api.Group("/investments")
	inv.Get("/", requireAuth, h.listInvestments)
	inv.Post("/steps/investor", optionalAuth, h.saveInvestorStep)
	inv.Post("/steps/founder", optionalAuth, h.saveFounderStep)
	inv.Post("/generate", optionalAuth, h.generate)
	inv.Get("/:id", optionalAuth, h.getInvestment)
	inv.Post("/:id/share", requireAuth, h.share)
}

// writeError maps service and rendering errors onto HTTP statuses. The
// default for anything unrecognized is 500.
func writeError(c *fiber.Ctx, err error) error {
	var validationErr *docgen.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"field": validationErr.Field,
		})
	case errors.Is(err, docgen.ErrUnknownTemplateType):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrEntityNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "investment not found"})
	case errors.Is(err, docgen.ErrTemplateUnavailable), errors.Is(err, docgen.ErrTemplateCorrupt):
		slog.Error("template failure", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "document template unavailable"})
	default:
		slog.Error("internal error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
