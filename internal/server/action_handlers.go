package server

import (
	"brc/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetActions handles GET /api/actions, the audit feed, newest first.
func (s *Server) GetActions(c *fiber.Ctx) error {
	page := parsePagination(c, 50, maxActionsLimit)

	actions, err := s.actionRepo.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(actions)
}
