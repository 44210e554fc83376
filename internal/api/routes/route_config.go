package routes

import (
	"Pantry-Planner/internal/api/handlers"
	"Pantry-Planner/internal/metrics"
	"Pantry-Planner/internal/middleware"
	"Pantry-Planner/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type Config struct {
	App             *fiber.App
	UserHandler     handlers.UserHandler
	PantryHandler   handlers.PantryHandler
	BudgetHandler   handlers.BudgetHandler
	ShoppingHandler handlers.ShoppingHandler
	WasteHandler    handlers.WasteHandler
	RecipeHandler   handlers.RecipeHandler
	Middleware      middleware.Middleware
	JWTService      jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.User()
	c.Pantry()
	c.Budget()
	c.ShoppingList()
	c.Waste()
	c.Recipe()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users", c.Middleware.AuthMiddleware(c.JWTService))
	{
		user.Get("/me", c.UserHandler.Me)
		user.Patch("/me/preferences", c.UserHandler.UpdatePreferences)
	}
}

func (c *Config) Pantry() {
	pantry := c.App.Group("/api/v1/pantry", c.Middleware.AuthMiddleware(c.JWTService))
	pantry.Get("/expiring", c.PantryHandler.GetExpiringItems)
	pantry.Get("/value", c.PantryHandler.GetPantryValue)

	pantry.Post("", c.PantryHandler.AddPantryItem)
	pantry.Get("", c.PantryHandler.GetPantryItems)
	pantry.Get("/:id", c.PantryHandler.GetPantryItem)
	pantry.Put("/:id", c.PantryHandler.UpdatePantryItem)
	pantry.Delete("/:id", c.PantryHandler.RemovePantryItem)

	pantry.Post("/:id/consume", c.PantryHandler.ConsumePantryItem)
	pantry.Post("/:id/waste", c.PantryHandler.RecordWaste)
}

func (c *Config) Budget() {
	budgets := c.App.Group("/api/v1/budgets", c.Middleware.AuthMiddleware(c.JWTService))
	budgets.Get("/active", c.BudgetHandler.GetActiveBudget)

	budgets.Post("", c.BudgetHandler.CreateBudget)
	budgets.Get("", c.BudgetHandler.GetBudgets)
	budgets.Get("/:id", c.BudgetHandler.GetBudget)
	budgets.Post("/:id/activate", c.BudgetHandler.ActivateBudget)
	budgets.Post("/:id/deactivate", c.BudgetHandler.DeactivateBudget)
	budgets.Post("/:id/sync", c.BudgetHandler.SyncBudget)
	budgets.Get("/:id/breakdown", c.BudgetHandler.GetSpendingBreakdown)
}

func (c *Config) ShoppingList() {
	lists := c.App.Group("/api/v1/shopping-lists", c.Middleware.AuthMiddleware(c.JWTService))
	lists.Post("/generate", c.ShoppingHandler.GenerateShoppingList)

	lists.Post("", c.ShoppingHandler.CreateShoppingList)
	lists.Get("", c.ShoppingHandler.GetShoppingLists)
	lists.Get("/:id", c.ShoppingHandler.GetShoppingList)
	lists.Post("/:id/confirm", c.ShoppingHandler.ConfirmPurchase)
}

func (c *Config) Waste() {
	waste := c.App.Group("/api/v1/waste", c.Middleware.AuthMiddleware(c.JWTService))
	waste.Post("/sweep", c.WasteHandler.Sweep)
	waste.Get("", c.WasteHandler.GetWasteRecords)
	waste.Get("/analytics", c.WasteHandler.GetWasteAnalytics)
}

func (c *Config) Recipe() {
	recipes := c.App.Group("/api/v1/recipes", c.Middleware.AuthMiddleware(c.JWTService))
	recipes.Get("/suggestions", c.RecipeHandler.GetRecipeSuggestions)
}
