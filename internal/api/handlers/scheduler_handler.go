package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vk-0-7/media-poster/internal/jobs"
	"github.com/vk-0-7/media-poster/internal/transfer"
)

type SchedulerHandler struct {
	scheduler *jobs.Scheduler
}

func NewSchedulerHandler(scheduler *jobs.Scheduler) *SchedulerHandler {
	return &SchedulerHandler{scheduler: scheduler}
}

// Manage dispatches the scheduler control actions: start, stop, update,
// status.
func (h *SchedulerHandler) Manage(c *fiber.Ctx) error {
	var req transfer.SchedulerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	switch req.Action {
	case "start":
		return h.start(c, req.Config)

	case "stop":
		h.scheduler.Stop()
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Auto-posting scheduler stopped",
		})

	case "update":
		return h.update(c, req.Config)

	case "status":
		return c.JSON(h.scheduler.Status())

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid action. Use: start, stop, update, or status",
		})
	}
}

func (h *SchedulerHandler) start(c *fiber.Ctx, config *transfer.ScheduleConfig) error {
	if config == nil {
		config = &transfer.ScheduleConfig{}
	}

	if err := h.scheduler.Start(*config); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	status := h.scheduler.Status()
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Auto-posting scheduler started",
		"config":  status.Config,
		"nextRun": status.NextRun,
	})
}

func (h *SchedulerHandler) update(c *fiber.Ctx, config *transfer.ScheduleConfig) error {
	if config == nil {
		config = &transfer.ScheduleConfig{}
	}

	if err := h.scheduler.Update(*config); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	status := h.scheduler.Status()
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Auto-posting scheduler updated",
		"config":  status.Config,
		"nextRun": status.NextRun,
	})
}

// Info returns the current scheduler state plus a sample start request.
func (h *SchedulerHandler) Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"scheduler":        h.scheduler.Status(),
		"availableActions": []string{"start", "stop", "update", "status"},
		"sampleConfig": transfer.SchedulerRequest{
			Action: "start",
			Config: &transfer.ScheduleConfig{
				CronExpression:  "0 9,15,21 * * *",
				Timezone:        "America/New_York",
				PostingCriteria: transfer.DefaultCriteria(),
			},
		},
	})
}
