package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/safeforge/safeforge/internal/middleware"
)

// entityResponse is one reusable party in the pick-list.
type entityResponse struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (h *Handler) listEntities(c *fiber.Ctx) error {
	entities, err := h.entities.ListEntitiesForAuth(c.Context(), middleware.AuthID(c))
	if err != nil {
		return writeError(c, err)
	}

	out := make([]entityResponse, 0, len(entities))
	for _, e := range entities {
		out = append(out, entityResponse{
			ID:   e.ID,
			Kind: string(e.Kind),
			Name: e.Name,
		})
	}
	return c.JSON(fiber.Map{"entities": out})
}

// resolveEntity hydrates form fields from a selected entity. The list is
// re-fetched server-side so the selection can only land on something the
// caller actually owns.
func (h *Handler) resolveEntity(c *fiber.Ctx) error {
	entities, err := h.entities.ListEntitiesForAuth(c.Context(), middleware.AuthID(c))
	if err != nil {
		return writeError(c, err)
	}

	patch, err := h.entities.ResolveSelection(c.Context(), c.Params("id"), entities)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(patch)
}
