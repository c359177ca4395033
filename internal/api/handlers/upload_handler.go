package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/vk-0-7/media-poster/internal/models"
	"github.com/vk-0-7/media-poster/internal/service"
)

type UploadHandler struct {
	s service.PostService
}

func NewUploadHandler(s service.PostService) *UploadHandler {
	return &UploadHandler{s: s}
}

// Upload bulk-ingests an exported array of posts, upserting by platform
// ID and reporting inserted/updated/error counts.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	var posts []*models.Post
	if err := c.BodyParser(&posts); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid data format. Expected an array of Instagram posts.",
		})
	}

	if len(posts) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid data format. Expected an array of Instagram posts.",
		})
	}

	first := posts[0]
	if first.ID == "" || first.OwnerUsername == "" || first.Timestamp.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid Instagram post data structure.",
		})
	}

	result, err := h.s.Ingest(c.Context(), posts)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to ingest posts",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Instagram data uploaded successfully",
		"results": result,
	})
}
