package domain

import "fmt"

const (
	DefaultRecipeSuggestions = 3
	MaxRecipeSuggestions     = 5
)

var (
	MessageSuccessGetRecipeSuggestions = "recipe suggestions retrieved successfully"
	MessageFailedGetRecipeSuggestions  = "failed to get recipe suggestions"

	ErrNoRecipeIngredients        = fmt.Errorf("%w: no usable pantry ingredients to cook with", ErrValidation)
	ErrInvalidRecipeCount         = fmt.Errorf("%w: recipe count must be between 1 and %d", ErrValidation, MaxRecipeSuggestions)
	ErrRecipeSuggesterUnavailable = fmt.Errorf("%w: recipe suggester unavailable", ErrExternalService)
	ErrMalformedRecipeSuggestions = fmt.Errorf("%w: malformed recipe suggestions", ErrExternalService)
)

type (
	RecipeIngredient struct {
		Name     string  `json:"name" validate:"required,max=200"`
		Quantity float64 `json:"quantity" validate:"gte=0,lte=100000"`
		Unit     string  `json:"unit" validate:"max=20"`
	}

	// RecipeSuggestion is one recipe as the model returns it.
	RecipeSuggestion struct {
		Name            string             `json:"name" validate:"required,max=200"`
		Description     string             `json:"description" validate:"max=1000"`
		Cuisine         string             `json:"cuisine" validate:"max=50"`
		Difficulty      string             `json:"difficulty" validate:"required,oneof=easy medium hard"`
		PrepTimeMinutes int                `json:"prep_time_minutes" validate:"gte=0,lte=1440"`
		CookTimeMinutes int                `json:"cook_time_minutes" validate:"gte=0,lte=1440"`
		Servings        int                `json:"servings" validate:"gte=1,lte=50"`
		Ingredients     []RecipeIngredient `json:"ingredients" validate:"required,min=1,max=50,dive"`
		Instructions    []string           `json:"instructions" validate:"required,min=1,max=50"`
		DietaryTags     []string           `json:"dietary_tags,omitempty" validate:"max=20"`
	}

	RecipeSuggestions struct {
		Recipes []RecipeSuggestion `json:"recipes" validate:"required,max=10,dive"`
	}

	RecipeContext struct {
		Pantry        []ProposalPantryItem
		ExpiringNames []string
		Allergies     []string
		Dietary       string
		Disliked      string
		Goal          string
		Count         int
	}

	RecipeSuggestionResponse struct {
		RecipeSuggestion
		UsesExpiring []string `json:"uses_expiring"`
	}

	RecipeSuggestionsResponse struct {
		Recipes         []RecipeSuggestionResponse `json:"recipes"`
		ExpiringItems   []string                   `json:"expiring_items"`
		DroppedAllergen int                        `json:"dropped_allergen"`
	}
)
