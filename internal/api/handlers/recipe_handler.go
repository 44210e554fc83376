package handlers

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/internal/api/presenters"
	"Pantry-Planner/pkg/recipe"

	"github.com/gofiber/fiber/v2"
)

type (
	RecipeHandler interface {
		GetRecipeSuggestions(c *fiber.Ctx) error
	}

	recipeHandler struct {
		recipeService recipe.RecipeService
	}
)

func NewRecipeHandler(recipeService recipe.RecipeService) RecipeHandler {
	return &recipeHandler{recipeService: recipeService}
}

func (h *recipeHandler) GetRecipeSuggestions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.recipeService.GetRecipeSuggestions(c.Context(), userID, c.QueryInt("count", domain.DefaultRecipeSuggestions))
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedGetRecipeSuggestions, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipeSuggestions)
}
