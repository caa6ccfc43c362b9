package handlers

import (
	"care-advisor/internal/dto"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	catalogRecords int
	provider       string
	auditEnabled   bool
}

func NewHealthHandler(catalogRecords int, provider string, auditEnabled bool) *HealthHandler {
	return &HealthHandler{
		catalogRecords: catalogRecords,
		provider:       provider,
		auditEnabled:   auditEnabled,
	}
}

// Health godoc
// @Summary Service health
// @Tags system
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:         "ok",
		CatalogRecords: h.catalogRecords,
		Provider:       h.provider,
		AuditEnabled:   h.auditEnabled,
	})
}
