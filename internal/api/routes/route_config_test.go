package routes

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/internal/api/handlers"
	"Pantry-Planner/internal/middleware"
	"Pantry-Planner/internal/testutil"
	"Pantry-Planner/internal/utils"
	"Pantry-Planner/pkg/budget"
	"Pantry-Planner/pkg/database"
	"Pantry-Planner/pkg/gemini"
	"Pantry-Planner/pkg/jwt"
	"Pantry-Planner/pkg/notify"
	"Pantry-Planner/pkg/pantry"
	"Pantry-Planner/pkg/recipe"
	"Pantry-Planner/pkg/shopping"
	"Pantry-Planner/pkg/user"
	"Pantry-Planner/pkg/waste"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProposer struct {
	proposal domain.Proposal
	err      error
}

func (s *stubProposer) Propose(ctx context.Context, pc domain.ProposalContext) (domain.Proposal, error) {
	return s.proposal, s.err
}

type noLabels struct{}

func (noLabels) Detect(ctx context.Context, image []byte, mimeType string) (domain.LabelDetection, error) {
	return domain.LabelDetection{}, errors.New("not used")
}

type apiFixture struct {
	app      *fiber.App
	token    string
	proposer *stubProposer

	// Gemini fake used by recipe suggestions. An empty answer fails with 500.
	geminiAnswer atomic.Value
	lastPrompt   atomic.Value
}

func (f *apiFixture) fakeGemini(t *testing.T) *gemini.Client {
	t.Helper()
	f.geminiAnswer.Store("")
	f.lastPrompt.Store("")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			f.lastPrompt.Store(req.Contents[0].Parts[0].Text)
		}

		answer := f.geminiAnswer.Load().(string)
		if answer == "" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body, _ := json.Marshal(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{{"text": answer}}}},
			},
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	return gemini.NewClient(gemini.Config{
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Timeout:     time.Second,
		MaxAttempts: 1,
	})
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	u := testutil.CreateUser(t, db, "peanut")
	transactor := database.NewTransactor(db)
	utils.InitValidator()

	userRepository := user.NewUserRepository(db)
	pantryRepository := pantry.NewPantryRepository(db)
	userService := user.NewUserService(userRepository)
	budgetService := budget.NewBudgetService(budget.NewBudgetRepository(db), userRepository, transactor, notify.NewNoopNotifier())
	wasteService := waste.NewWasteService(waste.NewWasteRepository(db), pantryRepository, userRepository, transactor)
	proposer := &stubProposer{}
	shoppingService := shopping.NewShoppingService(
		shopping.NewShoppingRepository(db), pantryRepository, budgetService, userService,
		proposer, noLabels{}, transactor, 0.7,
	)

	f := &apiFixture{proposer: proposer}
	recipeService := recipe.NewRecipeService(pantryRepository, userService, f.fakeGemini(t))

	jwtService := jwt.NewJWTServiceWithSecret("test-secret", time.Hour)
	token, err := jwtService.GenerateTokenUser(u.ID.String())
	require.NoError(t, err)

	app := fiber.New()
	cfg := Config{
		App:             app,
		UserHandler:     handlers.NewUserHandler(userService, utils.Validate),
		PantryHandler:   handlers.NewPantryHandler(pantry.NewPantryService(pantryRepository, transactor), wasteService, utils.Validate),
		BudgetHandler:   handlers.NewBudgetHandler(budgetService, utils.Validate),
		ShoppingHandler: handlers.NewShoppingHandler(shoppingService, utils.Validate),
		WasteHandler:    handlers.NewWasteHandler(wasteService),
		RecipeHandler:   handlers.NewRecipeHandler(recipeService),
		Middleware:      middleware.NewMiddleware(),
		JWTService:      jwtService,
	}
	cfg.Setup()

	f.app = app
	f.token = token
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+f.token)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestGuestRoutes(t *testing.T) {
	f := newAPI(t)

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = f.app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = f.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/pantry", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGenerateAndConfirmOverHTTP(t *testing.T) {
	f := newAPI(t)

	status, _ := f.do(t, fiber.MethodPost, "/api/v1/shopping-lists/generate", nil)
	assert.Equal(t, http.StatusBadRequest, status, "no active budget")

	status, _ = f.do(t, fiber.MethodPost, "/api/v1/budgets", domain.CreateBudgetRequest{
		Amount: 50, Period: domain.BudgetPeriodWeekly, Activate: true,
	})
	require.Equal(t, http.StatusCreated, status)

	f.proposer.err = domain.ErrProposerUnavailable
	status, body := f.do(t, fiber.MethodPost, "/api/v1/shopping-lists/generate", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, domain.MessageNoShoppingListProduced, body["message"])

	f.proposer.err = nil
	f.proposer.proposal = domain.Proposal{Items: []domain.ProposalItem{
		{Name: "rice", Quantity: 2, Unit: "kg", EstimatedPrice: 10, Priority: domain.PriorityHigh},
		{Name: "peanut butter", Quantity: 1, Unit: "jar", EstimatedPrice: 5, Priority: domain.PriorityHigh},
	}}
	status, body = f.do(t, fiber.MethodPost, "/api/v1/shopping-lists/generate", nil)
	require.Equal(t, http.StatusCreated, status)

	list := body["data"].(map[string]interface{})
	items := list["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "rice", item["name"])

	status, body = f.do(t, fiber.MethodPost, "/api/v1/shopping-lists/"+list["id"].(string)+"/confirm", domain.ConfirmPurchaseRequest{
		Items: []domain.PurchasedItemRequest{{ShoppingListItemID: item["id"].(string), ActualPrice: testutil.Float(12)}},
	})
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, 12.0, data["total_spent"])
	assert.Equal(t, 38.0, data["budget_remaining"])

	status, _ = f.do(t, fiber.MethodPost, "/api/v1/shopping-lists/"+list["id"].(string)+"/confirm", domain.ConfirmPurchaseRequest{
		Items: []domain.PurchasedItemRequest{{ShoppingListItemID: item["id"].(string), ActualPrice: testutil.Float(12)}},
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body = f.do(t, fiber.MethodGet, "/api/v1/pantry?status=active", nil)
	require.Equal(t, http.StatusOK, status)
	pantryItems := body["data"].(map[string]interface{})["items"].([]interface{})
	assert.Len(t, pantryItems, 1)
}

func TestPantryRoutes(t *testing.T) {
	f := newAPI(t)

	status, _ := f.do(t, fiber.MethodPost, "/api/v1/pantry", map[string]interface{}{"name": "Eggs"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := f.do(t, fiber.MethodPost, "/api/v1/pantry", domain.AddPantryItemRequest{
		Name: "Eggs", Quantity: 12, Unit: "pcs", Price: testutil.Float(6),
	})
	require.Equal(t, http.StatusCreated, status)
	id := body["data"].(map[string]interface{})["id"].(string)

	status, _ = f.do(t, fiber.MethodPost, "/api/v1/pantry/"+id+"/consume", domain.ConsumePantryItemRequest{QuantityUsed: 4})
	assert.Equal(t, http.StatusOK, status)

	status, body = f.do(t, fiber.MethodPost, "/api/v1/pantry/"+id+"/waste", domain.RecordWasteRequest{
		QuantityWasted: 2, Reason: domain.WasteReasonDidntLike,
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 1.0, body["data"].(map[string]interface{})["cost"])

	status, _ = f.do(t, fiber.MethodGet, "/api/v1/pantry/"+id, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = f.do(t, fiber.MethodGet, "/api/v1/pantry/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRecipeSuggestionRoutes(t *testing.T) {
	f := newAPI(t)

	status, _ := f.do(t, fiber.MethodGet, "/api/v1/recipes/suggestions", nil)
	assert.Equal(t, http.StatusBadRequest, status, "empty pantry")

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(domain.DateLayout)
	for _, item := range []domain.AddPantryItemRequest{
		{Name: "Spinach", Quantity: 1, Unit: "bag", ExpiryDate: tomorrow},
		{Name: "Rice", Quantity: 2, Unit: "kg"},
		{Name: "Peanuts", Quantity: 1, Unit: "bag"},
	} {
		status, _ := f.do(t, fiber.MethodPost, "/api/v1/pantry", item)
		require.Equal(t, http.StatusCreated, status)
	}

	t.Run("ranked and allergen free", func(t *testing.T) {
		f.geminiAnswer.Store(`{"recipes":[` +
			`{"name":"Plain rice","difficulty":"easy","servings":2,"ingredients":[{"name":"rice","quantity":200,"unit":"g"}],"instructions":["boil"]},` +
			`{"name":"Satay","difficulty":"medium","servings":2,"ingredients":[{"name":"peanut sauce","quantity":1,"unit":"cup"}],"instructions":["mix"]},` +
			`{"name":"Spinach rice","difficulty":"easy","servings":2,"ingredients":[{"name":"baby spinach","quantity":1,"unit":"bag"},{"name":"rice","quantity":200,"unit":"g"}],"instructions":["boil","stir"]}]}`)

		status, body := f.do(t, fiber.MethodGet, "/api/v1/recipes/suggestions?count=2", nil)
		require.Equal(t, http.StatusOK, status)

		data := body["data"].(map[string]interface{})
		recipes := data["recipes"].([]interface{})
		require.Len(t, recipes, 2)
		first := recipes[0].(map[string]interface{})
		assert.Equal(t, "Spinach rice", first["name"])
		assert.Equal(t, []interface{}{"Spinach"}, first["uses_expiring"])
		assert.Equal(t, "Plain rice", recipes[1].(map[string]interface{})["name"])
		assert.Equal(t, 1.0, data["dropped_allergen"])
		assert.Equal(t, []interface{}{"Spinach"}, data["expiring_items"])

		prompt := f.lastPrompt.Load().(string)
		assert.Contains(t, prompt, `"name":"Spinach"`)
		assert.NotContains(t, prompt, `"name":"Peanuts"`)
		assert.Contains(t, prompt, "Never use anything containing: peanut")
	})

	t.Run("count out of range", func(t *testing.T) {
		status, _ := f.do(t, fiber.MethodGet, "/api/v1/recipes/suggestions?count=9", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("model down", func(t *testing.T) {
		f.geminiAnswer.Store("")
		status, _ := f.do(t, fiber.MethodGet, "/api/v1/recipes/suggestions", nil)
		assert.Equal(t, http.StatusBadGateway, status)
	})

	t.Run("malformed answer", func(t *testing.T) {
		f.geminiAnswer.Store(`{"recipes":[{"name":"Soup","difficulty":"extreme"}]}`)
		status, _ := f.do(t, fiber.MethodGet, "/api/v1/recipes/suggestions", nil)
		assert.Equal(t, http.StatusBadGateway, status)
	})
}
