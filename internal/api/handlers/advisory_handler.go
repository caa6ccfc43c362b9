package handlers

import (
	"context"
	"strings"

	"care-advisor/internal/dto"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Advisor answers one advisory request.
type Advisor interface {
	Advise(ctx context.Context, req dto.AdvisoryRequest) dto.AdvisoryResponse
}

type AdvisoryHandler struct {
	advisor Advisor
	logger  *zap.Logger
}

func NewAdvisoryHandler(advisor Advisor, logger *zap.Logger) *AdvisoryHandler {
	return &AdvisoryHandler{
		advisor: advisor,
		logger:  logger,
	}
}

// Advise godoc
// @Summary Recommend a product and features for an operational issue
// @Description Matches the issue against the solution catalog and, when needed, a generative fallback. Every outcome, including no_match and error, is returned with status 200.
// @Tags advisory
// @Accept json
// @Produce json
// @Param request body dto.AdvisoryRequest true "Issue description"
// @Success 200 {object} dto.AdvisoryResponse
// @Failure 400 {object} dto.ErrorBody
// @Router /api/v1/advisory [post]
func (h *AdvisoryHandler) Advise(c *fiber.Ctx) error {
	var req dto.AdvisoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.Message = strings.TrimSpace(req.Message)
	req.PageURL = strings.TrimSpace(req.PageURL)
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	resp := h.advisor.Advise(c.UserContext(), req)
	return c.JSON(resp)
}
