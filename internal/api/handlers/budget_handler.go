package handlers

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/internal/api/presenters"
	"Pantry-Planner/pkg/budget"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	BudgetHandler interface {
		CreateBudget(c *fiber.Ctx) error
		GetBudgets(c *fiber.Ctx) error
		GetBudget(c *fiber.Ctx) error
		GetActiveBudget(c *fiber.Ctx) error
		ActivateBudget(c *fiber.Ctx) error
		DeactivateBudget(c *fiber.Ctx) error
		SyncBudget(c *fiber.Ctx) error
		GetSpendingBreakdown(c *fiber.Ctx) error
	}

	budgetHandler struct {
		budgetService budget.BudgetService
		validator     *validator.Validate
	}
)

func NewBudgetHandler(budgetService budget.BudgetService, validator *validator.Validate) BudgetHandler {
	return &budgetHandler{
		budgetService: budgetService,
		validator:     validator,
	}
}

func (h *budgetHandler) CreateBudget(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.CreateBudgetRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateBudget, err)
	}

	res, err := h.budgetService.CreateBudget(c.Context(), *req, userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedCreateBudget, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateBudget)
}

func (h *budgetHandler) GetBudgets(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.budgetService.GetBudgets(c.Context(), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGetBudgets, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetBudgets)
}

func (h *budgetHandler) GetBudget(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.budgetService.GetBudgetByID(c.Context(), c.Params("id"), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGetBudgets, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetBudgets)
}

func (h *budgetHandler) GetActiveBudget(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.budgetService.GetActiveBudget(c.Context(), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGetBudgets, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetBudgets)
}

func (h *budgetHandler) ActivateBudget(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.budgetService.ActivateBudget(c.Context(), c.Params("id"), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedActivateBudget, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessActivateBudget)
}

func (h *budgetHandler) DeactivateBudget(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.budgetService.DeactivateBudget(c.Context(), c.Params("id"), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedDeactivateBudget, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessDeactivateBudget)
}

func (h *budgetHandler) SyncBudget(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.budgetService.SyncAmountSpent(c.Context(), c.Params("id"), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedSyncBudget, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessSyncBudget)
}

func (h *budgetHandler) GetSpendingBreakdown(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.budgetService.GetSpendingBreakdown(c.Context(), c.Params("id"), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGetBudgetBreakdown, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetBudgetBreakdown)
}
