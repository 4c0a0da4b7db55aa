package notes

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/questchain/questchain-api/internal/dto"
	"github.com/questchain/questchain-api/internal/identity"
)

type NoteHandler struct {
	service *NoteService
}

func NewNoteHandler(service *NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

func (h *NoteHandler) Get(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	date := c.Query("date")
	note, found, err := h.service.Get(userID, date)
	if err != nil {
		return h.fail(c, err, "Error fetching note")
	}
	if !found {
		empty := EmptyNote{IsGlobal: date == "" || date == "null"}
		if !empty.IsGlobal {
			empty.Date = &date
		}
		return c.JSON(empty)
	}
	return c.JSON(note)
}

func (h *NoteHandler) Save(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req SaveNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	note, err := h.service.Save(userID, req)
	if err != nil {
		return h.fail(c, err, "Error saving note")
	}
	return c.JSON(note)
}

func (h *NoteHandler) fail(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrInvalidDate):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid date, expected YYYY-MM-DD",
		})
	case errors.Is(err, ErrDateRequired):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "A date is required for non-global notes",
		})
	case errors.Is(err, ErrNoteConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "Note was saved by another request, please retry",
		})
	}

	slog.Error(fallback, "action", "notes", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}
