package handlers

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/internal/api/presenters"
	"Pantry-Planner/pkg/waste"

	"github.com/gofiber/fiber/v2"
)

type (
	WasteHandler interface {
		Sweep(c *fiber.Ctx) error
		GetWasteRecords(c *fiber.Ctx) error
		GetWasteAnalytics(c *fiber.Ctx) error
	}

	wasteHandler struct {
		wasteService waste.WasteService
	}
)

func NewWasteHandler(wasteService waste.WasteService) WasteHandler {
	return &wasteHandler{wasteService: wasteService}
}

func (h *wasteHandler) Sweep(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.wasteService.Sweep(c.Context(), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedWasteSweep, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessWasteSweep)
}

func (h *wasteHandler) GetWasteRecords(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.wasteService.GetWasteRecords(c.Context(), userID, c.QueryInt("limit", domain.DefaultWasteRecordLimit))
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGetWasteAnalytic, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetWasteAnalytic)
}

func (h *wasteHandler) GetWasteAnalytics(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.wasteService.GetWasteAnalytics(c.Context(), userID, c.QueryInt("limit", domain.DefaultWasteRecordLimit))
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGetWasteAnalytic, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetWasteAnalytic)
}
