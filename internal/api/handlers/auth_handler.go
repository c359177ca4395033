package handlers

import (
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	cfg "github.com/vk-0-7/media-poster/configs"
	"github.com/vk-0-7/media-poster/internal/transfer"
	"github.com/vk-0-7/media-poster/pkg/utils"
)

const sessionTokenDuration = 12 * time.Hour

type AuthHandler struct {
	cfg cfg.Config
}

func NewAuthHandler(cfg cfg.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// IssueToken exchanges the admin secret for a short-lived dashboard
// session token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req transfer.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	if h.cfg.SecretKey == "" ||
		subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.cfg.SecretKey)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid secret",
		})
	}

	token, err := utils.GenerateToken(h.cfg.SecretKey, "dashboard", sessionTokenDuration)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to issue token",
		})
	}

	return c.JSON(transfer.TokenResponse{Token: token})
}
