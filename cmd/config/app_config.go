package config

import (
	"Pantry-Planner/internal/api/handlers"
	"Pantry-Planner/internal/api/routes"
	"Pantry-Planner/internal/middleware"
	"Pantry-Planner/internal/utils"
	"Pantry-Planner/internal/utils/mailing"
	"Pantry-Planner/pkg/budget"
	"Pantry-Planner/pkg/database"
	"Pantry-Planner/pkg/gemini"
	"Pantry-Planner/pkg/jwt"
	"Pantry-Planner/pkg/labelreader"
	"Pantry-Planner/pkg/notify"
	"Pantry-Planner/pkg/pantry"
	"Pantry-Planner/pkg/proposer"
	"Pantry-Planner/pkg/recipe"
	"Pantry-Planner/pkg/shopping"
	"Pantry-Planner/pkg/user"
	"Pantry-Planner/pkg/waste"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

const DefaultLabelMinConfidence = 0.7

type Services struct {
	UserRepository user.UserRepository

	JWT      jwt.JWTService
	User     user.UserService
	Pantry   pantry.PantryService
	Budget   budget.BudgetService
	Shopping shopping.ShoppingService
	Waste    waste.WasteService
	Recipe   recipe.RecipeService
}

func NewServices(db *gorm.DB) Services {
	transactor := database.NewTransactor(db)

	// Repository
	userRepository := user.NewUserRepository(db)
	pantryRepository := pantry.NewPantryRepository(db)
	budgetRepository := budget.NewBudgetRepository(db)
	shoppingRepository := shopping.NewShoppingRepository(db)
	wasteRepository := waste.NewWasteRepository(db)

	// External collaborators
	geminiClient := gemini.NewClient(gemini.LoadConfig())
	notifier := notify.NewNoopNotifier()
	if mailConfig := mailing.LoadMailConfig(); mailConfig.Enabled() {
		notifier = notify.NewMailNotifier(mailing.NewSMTPSender(mailConfig))
	} else {
		log.Info("SMTP is not configured, overspend notifications are disabled")
	}

	// Service
	userService := user.NewUserService(userRepository)
	budgetService := budget.NewBudgetService(budgetRepository, userRepository, transactor, notifier)
	return Services{
		UserRepository: userRepository,
		JWT:            jwt.NewJWTService(),
		User:           userService,
		Pantry:         pantry.NewPantryService(pantryRepository, transactor),
		Budget:         budgetService,
		Shopping: shopping.NewShoppingService(
			shoppingRepository,
			pantryRepository,
			budgetService,
			userService,
			proposer.NewGeminiProposer(geminiClient),
			labelreader.NewGeminiLabelReader(geminiClient),
			transactor,
			utils.GetConfigFloat("LABEL_MIN_CONFIDENCE", DefaultLabelMinConfidence),
		),
		Waste:  waste.NewWasteService(wasteRepository, pantryRepository, userRepository, transactor),
		Recipe: recipe.NewRecipeService(pantryRepository, userService, geminiClient),
	}
}

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, err
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	services := NewServices(db)

	// Handler
	userHandler := handlers.NewUserHandler(services.User, validator)
	pantryHandler := handlers.NewPantryHandler(services.Pantry, services.Waste, validator)
	budgetHandler := handlers.NewBudgetHandler(services.Budget, validator)
	shoppingHandler := handlers.NewShoppingHandler(services.Shopping, validator)
	wasteHandler := handlers.NewWasteHandler(services.Waste)
	recipeHandler := handlers.NewRecipeHandler(services.Recipe)

	// routes
	routesConfig := routes.Config{
		App:             app,
		UserHandler:     userHandler,
		PantryHandler:   pantryHandler,
		BudgetHandler:   budgetHandler,
		ShoppingHandler: shoppingHandler,
		WasteHandler:    wasteHandler,
		RecipeHandler:   recipeHandler,
		Middleware:      middlewares,
		JWTService:      services.JWT,
	}
	routesConfig.Setup()
	return app, nil
}
