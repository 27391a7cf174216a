package server

import (
	"brc/internal/middleware"
	"brc/internal/models"
	"brc/internal/review"
	"brc/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetBots handles GET /api/bots
func (s *Server) GetBots(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, 20, maxPaginationLimit)

	subs, err := s.submissionService.ListSubmissions(ctx, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(subs)
}

// GetBot handles GET /api/bots/:id
func (s *Server) GetBot(c *fiber.Ctx) error {
	ctx := c.UserContext()
	botID, err := s.parseBotID(c)
	if err != nil {
		return nil
	}

	sub, err := s.submissionService.GetSubmission(ctx, botID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(sub)
}

// CreateBot handles POST /api/bots (list-secret auth)
func (s *Server) CreateBot(c *fiber.Ctx) error {
	ctx := c.UserContext()
	list := middleware.AuthedList(c)
	if list == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("List authentication required"))
	}

	var req struct {
		BotID           models.Snowflake   `json:"bot_id"`
		Owner           models.Snowflake   `json:"owner"`
		ExtraOwners     []models.Snowflake `json:"extra_owners"`
		Username        string             `json:"username"`
		Description     string             `json:"description"`
		LongDescription string             `json:"long_description"`
		Website         string             `json:"website"`
		Support         string             `json:"support"`
		Banner          string             `json:"banner"`
		Donate          string             `json:"donate"`
		Library         string             `json:"library"`
		Invite          string             `json:"invite"`
		Prefix          string             `json:"prefix"`
		Tags            []string           `json:"tags"`
		NSFW            bool               `json:"nsfw"`
		CrossAdd        *bool              `json:"cross_add"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	// Cross-adding defaults to on; lists must opt their submitters out.
	crossAdd := true
	if req.CrossAdd != nil {
		crossAdd = *req.CrossAdd
	}

	result, err := s.submissionService.Intake(ctx, service.IntakeInput{
		BotID:           req.BotID,
		Owner:           req.Owner,
		ExtraOwners:     req.ExtraOwners,
		Username:        req.Username,
		Description:     req.Description,
		LongDescription: req.LongDescription,
		Website:         req.Website,
		Support:         req.Support,
		Banner:          req.Banner,
		Donate:          req.Donate,
		Library:         req.Library,
		Invite:          req.Invite,
		Prefix:          req.Prefix,
		Tags:            req.Tags,
		NSFW:            req.NSFW,
		CrossAdd:        crossAdd,
		ListSource:      list.ID,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"bot":     result.Submission,
		"removed": result.Removed,
	})
}

// GetQueue handles GET /api/queue
func (s *Server) GetQueue(c *fiber.Ctx) error {
	ctx := c.UserContext()
	summary, err := s.submissionService.Queue(ctx)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(summary)
}

// reviewBody is the shared request body of the review endpoints.
type reviewBody struct {
	Reason      string   `json:"reason"`
	TargetLists []string `json:"target_lists"`
}

// ClaimBot handles POST /api/bots/:id/claim (reviewer JWT auth)
func (s *Server) ClaimBot(c *fiber.Ctx) error {
	return s.reviewerAction(c, models.ActionClaim)
}

// UnclaimBot handles POST /api/bots/:id/unclaim (reviewer JWT auth)
func (s *Server) UnclaimBot(c *fiber.Ctx) error {
	return s.reviewerAction(c, models.ActionUnclaim)
}

func (s *Server) reviewerAction(c *fiber.Ctx, action models.Action) error {
	botID, err := s.parseBotID(c)
	if err != nil {
		return nil
	}

	var req reviewBody
	// The body is optional for claims; a missing reason gets stubbed.
	_ = c.BodyParser(&req)

	resp := s.dispatcher.Request(c.UserContext(), review.Request{
		BotID:    botID,
		Action:   action,
		Reason:   req.Reason,
		Reviewer: middleware.Reviewer(c),
	})
	return renderDispatch(c, resp)
}

// ResendBot handles POST /api/bots/:id/resend (reviewer JWT auth). It
// re-delivers a past transition, optionally to a subset of lists.
func (s *Server) ResendBot(c *fiber.Ctx) error {
	botID, err := s.parseBotID(c)
	if err != nil {
		return nil
	}

	var req struct {
		reviewBody
		Action string `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	action, err := models.ParseAction(req.Action)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid action"))
	}

	resp := s.dispatcher.Request(c.UserContext(), review.Request{
		BotID:       botID,
		Action:      action,
		Reason:      req.Reason,
		Reviewer:    middleware.Reviewer(c),
		Resend:      true,
		TargetLists: req.TargetLists,
	})
	return renderDispatch(c, resp)
}

// ApproveBot handles POST /api/bots/:id/approve (list-secret auth). Lists
// use it to repair a missed approval webhook; the bot must already be
// approved.
func (s *Server) ApproveBot(c *fiber.Ctx) error {
	return s.listRepairAction(c, models.ActionApprove, models.StateApproved)
}

// DenyBot handles POST /api/bots/:id/deny (list-secret auth). The denial
// counterpart of ApproveBot.
func (s *Server) DenyBot(c *fiber.Ctx) error {
	return s.listRepairAction(c, models.ActionDeny, models.StateDenied)
}

func (s *Server) listRepairAction(c *fiber.Ctx, action models.Action, requiredState models.State) error {
	ctx := c.UserContext()
	botID, err := s.parseBotID(c)
	if err != nil {
		return nil
	}
	list := middleware.AuthedList(c)
	if list == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("List authentication required"))
	}

	sub, err := s.subRepo.GetByID(ctx, botID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	if sub.State != requiredState {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Bot is not "+requiredState.String()+"; nothing to resend"))
	}

	var req reviewBody
	_ = c.BodyParser(&req)

	var reviewer models.Snowflake
	if sub.Reviewer != nil {
		reviewer = *sub.Reviewer
	}

	// Repair deliveries default to the calling list only.
	targets := req.TargetLists
	if len(targets) == 0 {
		targets = []string{list.ID}
	}

	resp := s.dispatcher.Request(ctx, review.Request{
		BotID:       botID,
		Action:      action,
		Reason:      req.Reason,
		Reviewer:    reviewer,
		Resend:      true,
		TargetLists: targets,
	})
	return renderDispatch(c, resp)
}

// renderDispatch maps a dispatcher response onto an HTTP response.
func renderDispatch(c *fiber.Ctx, resp *review.Response) error {
	if resp.Accepted() {
		return c.JSON(resp)
	}

	status := fiber.StatusBadRequest
	switch resp.Message {
	case "Bot not found":
		status = fiber.StatusNotFound
	case "Internal error: could not read submission", "Internal error: state update failed":
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(resp)
}
