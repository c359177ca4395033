package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	cfg "github.com/vk-0-7/media-poster/configs"
	"github.com/vk-0-7/media-poster/internal/service"
	"github.com/vk-0-7/media-poster/internal/transfer"
)

type CronHandler struct {
	cfg    cfg.Config
	runner service.AutoPostService
}

func NewCronHandler(cfg cfg.Config, runner service.AutoPostService) *CronHandler {
	return &CronHandler{cfg: cfg, runner: runner}
}

// TriggerAutoPost runs one auto-post pass now. The body may carry a
// partial SelectionCriteria; unset fields use the auto-post defaults.
func (h *CronHandler) TriggerAutoPost(c *fiber.Ctx) error {
	if h.cfg.InstagramAccessToken == "" || h.cfg.InstagramBusinessAccountID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Instagram credentials not configured",
			"message": "Please set INSTAGRAM_ACCESS_TOKEN and INSTAGRAM_BUSINESS_ACCOUNT_ID environment variables",
		})
	}

	var criteria transfer.SelectionCriteria
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&criteria); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to parse json",
			})
		}
	}

	slog.Info("auto-post triggered via API")

	result, err := h.runner.Run(c.Context(), criteria.WithDefaults())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid Instagram credentials",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Auto-post run failed",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// Health is a static probe for the cron endpoint.
func (h *CronHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"message":   "Auto-posting cron job endpoint is operational",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
