package quests

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/questchain/questchain-api/internal/dto"
	"github.com/questchain/questchain-api/internal/identity"
)

type QuestHandler struct {
	service *QuestService
}

func NewQuestHandler(service *QuestService) *QuestHandler {
	return &QuestHandler{service: service}
}

func (h *QuestHandler) GetDay(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	day, err := h.service.GetDay(userID, c.Params("date"))
	if err != nil {
		return h.fail(c, err, "Error fetching quests")
	}
	if day.ID == uuid.Nil {
		return c.JSON(fiber.Map{"quests": day.Quests, "penalty": day.Penalty})
	}
	return c.JSON(day)
}

func (h *QuestHandler) ReplaceDay(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req ReplaceDayRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	day, err := h.service.ReplaceDay(userID, c.Params("date"), req.Quests)
	if err != nil {
		return h.fail(c, err, "Error updating quests")
	}
	return c.JSON(day)
}

func (h *QuestHandler) Create(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req CreateQuestRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	days, err := h.service.CreateQuests(userID, req)
	if err != nil {
		return h.fail(c, err, "Error creating quests")
	}
	return c.JSON(CreateQuestResponse{Message: "Quests created successfully", Quests: days})
}

func (h *QuestHandler) Reorder(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	items, err := h.service.Reorder(userID, c.Params("date"), req)
	if err != nil {
		return h.fail(c, err, "Error reordering quests")
	}
	return c.JSON(ReorderResponse{Success: true, Message: "Quests reordered successfully", Quests: items})
}

func (h *QuestHandler) UpdateItem(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	day, err := h.service.UpdateItem(userID, c.Params("date"), c.Params("questId"), req)
	if err != nil {
		return h.fail(c, err, "Error updating quest details")
	}
	return c.JSON(day)
}

func (h *QuestHandler) DeleteItem(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	day, err := h.service.DeleteItem(userID, c.Params("date"), c.Params("questId"))
	if err != nil {
		return h.fail(c, err, "Error deleting quest")
	}
	return c.JSON(day)
}

func (h *QuestHandler) Regularity(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.service.Regularity(userID)
	if err != nil {
		return h.fail(c, err, "Server error while fetching regularity data")
	}
	return c.JSON(resp)
}

func (h *QuestHandler) Heatmap(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		offset = 0
	}

	heatmap, err := h.service.Heatmap(userID, offset)
	if err != nil {
		return h.fail(c, err, "Error fetching activity heatmap")
	}
	return c.JSON(heatmap)
}

var clientMessages = []struct {
	err error
	msg string
}{
	{ErrInvalidDate, "Invalid date, expected YYYY-MM-DD"},
	{ErrNameRequired, "Quest name is required"},
	{ErrInvalidType, "Quest type must be goal or checklist"},
	{ErrInvalidGoal, "Goal must be greater than 0"},
	{ErrInvalidPenalty, "Penalty points cannot be negative"},
	{ErrInvalidProgress, "Progress cannot be negative"},
	{ErrInvalidDayCount, "Number of days must be between 1 and 366"},
	{ErrDayNotFound, "Quest not found for this date"},
	{ErrItemNotFound, "Quest item not found"},
	{ErrUserNotFound, "User not found"},
	{ErrConcurrentChange, "Quest day was created by another request, please retry"},
}

func clientMessage(err error) string {
	for _, m := range clientMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return err.Error()
}

func (h *QuestHandler) fail(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case IsValidation(err):
		return badRequest(c, clientMessage(err))
	case errors.Is(err, ErrDayNotFound), errors.Is(err, ErrItemNotFound), errors.Is(err, ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: clientMessage(err),
		})
	case errors.Is(err, ErrConcurrentChange):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: clientMessage(err),
		})
	}

	slog.Error(fallback, "action", "quests", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
