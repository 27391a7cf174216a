package server

import (
	"brc/internal/middleware"
	"brc/internal/models"
	"brc/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetLists handles GET /api/lists
func (s *Server) GetLists(c *fiber.Ctx) error {
	lists, err := s.listService.ListLists(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(lists)
}

// GetList handles GET /api/lists/:id
func (s *Server) GetList(c *fiber.Ctx) error {
	id := c.Params("id")
	list, err := s.listService.GetList(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(list)
}

// UpdateList handles PATCH /api/lists/:id (list-secret auth). A list may
// only update itself.
func (s *Server) UpdateList(c *fiber.Ctx) error {
	id := c.Params("id")
	authed := middleware.AuthedList(c)
	if authed == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("List authentication required"))
	}
	if authed.ID != id {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("Lists may only update themselves"))
	}

	var req struct {
		Name           *string `json:"name"`
		Description    *string `json:"description"`
		Domain         *string `json:"domain"`
		Icon           *string `json:"icon"`
		ClaimBotAPI    *string `json:"claim_bot_api"`
		UnclaimBotAPI  *string `json:"unclaim_bot_api"`
		ApproveBotAPI  *string `json:"approve_bot_api"`
		DenyBotAPI     *string `json:"deny_bot_api"`
		ResetSecretKey bool    `json:"reset_secret_key"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.listService.UpdateList(c.UserContext(), service.UpdateListInput{
		ID:             id,
		Name:           req.Name,
		Description:    req.Description,
		Domain:         req.Domain,
		Icon:           req.Icon,
		ClaimBotAPI:    req.ClaimBotAPI,
		UnclaimBotAPI:  req.UnclaimBotAPI,
		ApproveBotAPI:  req.ApproveBotAPI,
		DenyBotAPI:     req.DenyBotAPI,
		ResetSecretKey: req.ResetSecretKey,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	payload := fiber.Map{"list": result.List}
	if result.NewSecret != "" {
		// The only moment the rotated secret is readable.
		payload["secret_key"] = result.NewSecret
	}
	return c.JSON(payload)
}
