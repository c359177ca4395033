package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/vk-0-7/media-poster/internal/queue"
	"github.com/vk-0-7/media-poster/internal/repository"
	"github.com/vk-0-7/media-poster/internal/service"
	"github.com/vk-0-7/media-poster/internal/transfer"
)

type PostHandler struct {
	s           service.PostService
	selector    service.SelectorService
	AsynqClient *asynq.Client
}

func NewPostHandler(s service.PostService, selector service.SelectorService, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{s: s, selector: selector, AsynqClient: asynqClient}
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	params := repository.ListParams{
		Limit:  c.QueryInt("limit", 20),
		Skip:   c.QueryInt("skip", 0),
		SortBy: c.Query("sortBy", "videoViewCount"),
		Order:  c.Query("order", "desc"),
	}

	posts, pagination, err := h.s.List(c.Context(), params)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch posts",
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"posts":      posts,
		"pagination": pagination,
	})
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	var req transfer.PostUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if req.PostID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Post ID is required",
		})
	}

	post, err := h.s.Update(c.Context(), req.PostID, req.Updates)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update post",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	postID := c.Query("id")
	if postID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Post ID is required",
		})
	}

	if err := h.s.Remove(c.Context(), postID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

// SchedulePost queues one specific post for publishing at its scheduled
// time (or immediately when none is given).
func (h *PostHandler) SchedulePost(c *fiber.Ctx) error {
	var req transfer.SchedulePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	delay, err := h.s.SchedulePost(c.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	err = queue.EnqueuePost(h.AsynqClient, queue.SchedulePostPayload{PostID: req.PostID}, delay)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error scheduling post",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Post scheduled successfully",
	})
}

func (h *PostHandler) PostingHistory(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)

	posts, err := h.selector.PostingHistory(c.Context(), days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch posting history",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"posts":   posts,
	})
}

func (h *PostHandler) TopPerformers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	posts, err := h.selector.TopPerformers(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch top performers",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"posts":   posts,
	})
}
