package handlers

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/internal/api/presenters"
	"Pantry-Planner/pkg/shopping"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ShoppingHandler interface {
		GenerateShoppingList(c *fiber.Ctx) error
		CreateShoppingList(c *fiber.Ctx) error
		GetShoppingLists(c *fiber.Ctx) error
		GetShoppingList(c *fiber.Ctx) error
		ConfirmPurchase(c *fiber.Ctx) error
	}

	shoppingHandler struct {
		shoppingService shopping.ShoppingService
		validator       *validator.Validate
	}
)

func NewShoppingHandler(shoppingService shopping.ShoppingService, validator *validator.Validate) ShoppingHandler {
	return &shoppingHandler{
		shoppingService: shoppingService,
		validator:       validator,
	}
}

func (h *shoppingHandler) GenerateShoppingList(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.shoppingService.GenerateShoppingList(c.Context(), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGenerateShoppingList, err)
	}
	if res.Outcome == domain.OutcomeProposerUnavailable {
		// Nothing was persisted; the client may retry.
		return presenters.ErrorResponse(c, fiber.StatusServiceUnavailable, domain.MessageNoShoppingListProduced, res.Err)
	}

	return presenters.SuccessResponse(c, res.List, fiber.StatusCreated, domain.MessageSuccessGenerateShoppingList)
}

func (h *shoppingHandler) CreateShoppingList(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.CreateShoppingListRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateShoppingList, err)
	}

	res, err := h.shoppingService.CreateDraftShoppingList(c.Context(), *req, userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedCreateShoppingList, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateShoppingList)
}

func (h *shoppingHandler) GetShoppingLists(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	page, limit := pagination(c)

	lists, count, err := h.shoppingService.GetShoppingLists(c.Context(), userID, c.Query("status"), page, limit)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGetShoppingLists, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"shopping_lists": lists,
		"pagination":     paginationMeta(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetShoppingLists)
}

func (h *shoppingHandler) GetShoppingList(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.shoppingService.GetShoppingListByID(c.Context(), c.Params("id"), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGetShoppingLists, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetShoppingLists)
}

func (h *shoppingHandler) ConfirmPurchase(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.ConfirmPurchaseRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedConfirmPurchase, err)
	}

	res, err := h.shoppingService.ConfirmPurchase(c.Context(), c.Params("id"), *req, userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedConfirmPurchase, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessConfirmPurchase)
}
