package handlers

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/internal/api/presenters"
	"Pantry-Planner/pkg/pantry"
	"Pantry-Planner/pkg/waste"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	PantryHandler interface {
		AddPantryItem(c *fiber.Ctx) error
		GetPantryItems(c *fiber.Ctx) error
		GetPantryItem(c *fiber.Ctx) error
		UpdatePantryItem(c *fiber.Ctx) error
		RemovePantryItem(c *fiber.Ctx) error
		ConsumePantryItem(c *fiber.Ctx) error
		RecordWaste(c *fiber.Ctx) error
		GetExpiringItems(c *fiber.Ctx) error
		GetPantryValue(c *fiber.Ctx) error
	}

	pantryHandler struct {
		pantryService pantry.PantryService
		wasteService  waste.WasteService
		validator     *validator.Validate
	}
)

func NewPantryHandler(pantryService pantry.PantryService, wasteService waste.WasteService, validator *validator.Validate) PantryHandler {
	return &pantryHandler{
		pantryService: pantryService,
		wasteService:  wasteService,
		validator:     validator,
	}
}

func (h *pantryHandler) AddPantryItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.AddPantryItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddPantryItem, err)
	}

	res, err := h.pantryService.AddPantryItem(c.Context(), *req, userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedAddPantryItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddPantryItem)
}

func (h *pantryHandler) GetPantryItems(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	page, limit := pagination(c)

	items, count, err := h.pantryService.GetPantryItems(c.Context(), userID, c.Query("status", domain.PantryStatusActive), page, limit)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGetPantryItems, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"items":      items,
		"pagination": paginationMeta(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetPantryItems)
}

func (h *pantryHandler) GetPantryItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.pantryService.GetPantryItemByID(c.Context(), c.Params("id"), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGetPantryItems, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetPantryItems)
}

func (h *pantryHandler) UpdatePantryItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UpdatePantryItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdatePantryItem, err)
	}

	res, err := h.pantryService.UpdatePantryItem(c.Context(), c.Params("id"), *req, userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedUpdatePantryItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdatePantryItem)
}

func (h *pantryHandler) RemovePantryItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.pantryService.RemovePantryItem(c.Context(), c.Params("id"), userID); err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedRemovePantryItem, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessRemovePantryItem)
}

func (h *pantryHandler) ConsumePantryItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.ConsumePantryItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedConsumePantryItem, err)
	}

	res, err := h.pantryService.ConsumePantryItem(c.Context(), c.Params("id"), *req, userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedConsumePantryItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessConsumePantryItem)
}

func (h *pantryHandler) RecordWaste(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.RecordWasteRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRecordWaste, err)
	}

	res, err := h.wasteService.RecordWaste(c.Context(), c.Params("id"), *req, userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedRecordWaste, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessRecordWaste)
}

func (h *pantryHandler) GetExpiringItems(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	items, err := h.pantryService.GetExpiringItems(c.Context(), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGetExpiringItems, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"items": items,
		"count": len(items),
	}, fiber.StatusOK, domain.MessageSuccessGetExpiringItems)
}

func (h *pantryHandler) GetPantryValue(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.pantryService.GetPantryValue(c.Context(), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGetPantryValue, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetPantryValue)
}
