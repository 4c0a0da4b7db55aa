package notifications

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/questchain/questchain-api/internal/dto"
	"github.com/questchain/questchain-api/internal/identity"
	"github.com/questchain/questchain-api/internal/metrics"
)

type NotificationHandler struct {
	service *NotificationService
}

func NewNotificationHandler(service *NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	items, err := h.service.List(userID)
	if err != nil {
		slog.Error("list notifications failed", "user_id", userID.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Server error",
		})
	}
	return c.JSON(items)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid notification ID",
		})
	}

	n, err := h.service.MarkRead(userID, id)
	if err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Notification not found",
			})
		}
		slog.Error("mark notification read failed", "user_id", userID.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Server error",
		})
	}
	return c.JSON(n)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	updated, err := h.service.MarkAllRead(userID)
	if err != nil {
		slog.Error("mark all notifications read failed", "user_id", userID.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Server error",
		})
	}
	return c.JSON(MarkAllReadResponse{Message: "All notifications marked as read", Updated: updated})
}

// Broadcast is mounted on the admin group.
func (h *NotificationHandler) Broadcast(c *fiber.Ctx) error {
	var req BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	sent, err := h.service.Broadcast(req)
	if err != nil {
		if errors.Is(err, ErrTitleRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Title is required",
			})
		}
		if errors.Is(err, ErrMessageRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Message is required",
			})
		}
		slog.Error("broadcast failed", "action", "broadcast", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Server error",
		})
	}

	slog.Info("broadcast sent", "action", "broadcast", "recipients", sent)
	return c.JSON(BroadcastResponse{Message: "Broadcast sent successfully", Recipients: sent})
}

func (h *NotificationHandler) EveningReminders(c *fiber.Ctx) error {
	return runJob(c, "evening_reminders", "Evening reminders sent successfully", "Error sending reminders",
		h.service.SendEveningReminders)
}

func (h *NotificationHandler) DailySummary(c *fiber.Ctx) error {
	return runJob(c, "daily_summary", "Daily summary sent successfully", "Error sending daily summary",
		h.service.SendDailySummary)
}

func runJob(c *fiber.Ctx, job, okMessage, failMessage string, fn func() (int, error)) error {
	sent, err := fn()
	if err != nil {
		metrics.ScheduledJobRuns.WithLabelValues(job, "error").Inc()
		slog.Error("scheduled job failed", "job", job, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: failMessage,
		})
	}

	metrics.ScheduledJobRuns.WithLabelValues(job, "success").Inc()
	slog.Info("scheduled job finished", "job", job, "sent", sent)
	return c.JSON(JobResponse{Success: true, Message: okMessage, Sent: sent})
}
