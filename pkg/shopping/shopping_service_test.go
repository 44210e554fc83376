package shopping

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"Pantry-Planner/internal/testutil"
	"Pantry-Planner/pkg/budget"
	"Pantry-Planner/pkg/database"
	"Pantry-Planner/pkg/notify"
	"Pantry-Planner/pkg/pantry"
	"Pantry-Planner/pkg/user"
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type proposerFunc func(ctx context.Context, pc domain.ProposalContext) (domain.Proposal, error)

func (f proposerFunc) Propose(ctx context.Context, pc domain.ProposalContext) (domain.Proposal, error) {
	return f(ctx, pc)
}

type fakeLabelReader struct {
	detection domain.LabelDetection
	err       error
	calls     int
}

func (f *fakeLabelReader) Detect(ctx context.Context, image []byte, mimeType string) (domain.LabelDetection, error) {
	f.calls++
	return f.detection, f.err
}

func scenarioProposal() domain.Proposal {
	return domain.Proposal{
		ListName:           "Week 11",
		TotalEstimatedCost: 60,
		Items: []domain.ProposalItem{
			{Name: "rice", Category: "grains", Quantity: 2, Unit: "kg", EstimatedPrice: 10, Priority: domain.PriorityHigh},
			{Name: "milk", Category: "dairy", Quantity: 3, Unit: "l", EstimatedPrice: 20, Priority: domain.PriorityMedium},
			{Name: "meat", Category: "meat", Quantity: 1, Unit: "kg", EstimatedPrice: 30, Priority: domain.PriorityLow},
		},
	}
}

type fixture struct {
	svc    *shoppingService
	db     *gorm.DB
	user   *entities.User
	labels *fakeLabelReader
}

func newFixture(t *testing.T, allergies string, proposer CandidateProposer) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	transactor := database.NewTransactor(db)
	userRepository := user.NewUserRepository(db)
	labels := &fakeLabelReader{}

	svc := NewShoppingService(
		NewShoppingRepository(db),
		pantry.NewPantryRepository(db),
		budget.NewBudgetService(budget.NewBudgetRepository(db), userRepository, transactor, notify.NewNoopNotifier()),
		user.NewUserService(userRepository),
		proposer,
		labels,
		transactor,
		0.7,
	).(*shoppingService)
	svc.now = func() time.Time { return fixedNow }

	return &fixture{
		svc:    svc,
		db:     db,
		user:   testutil.CreateUser(t, db, allergies),
		labels: labels,
	}
}

func (f *fixture) activeBudget(t *testing.T, amount float64) *entities.Budget {
	t.Helper()
	return testutil.CreateBudget(t, f.db, &entities.Budget{
		UserID:    f.user.ID,
		Amount:    amount,
		StartDate: testutil.Day(fixedNow),
		Active:    true,
	})
}

func (f *fixture) generate(t *testing.T) domain.ShoppingListResponse {
	t.Helper()
	res, err := f.svc.GenerateShoppingList(context.Background(), f.user.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeGenerated, res.Outcome)
	require.NotNil(t, res.List)
	return *res.List
}

func staticProposer(p domain.Proposal) CandidateProposer {
	return proposerFunc(func(ctx context.Context, pc domain.ProposalContext) (domain.Proposal, error) {
		return p, nil
	})
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestGenerateShoppingList_Scenario(t *testing.T) {
	f := newFixture(t, "", staticProposer(scenarioProposal()))
	f.activeBudget(t, 50)

	list := f.generate(t)

	assert.Equal(t, domain.ShoppingListStatusGenerated, list.Status)
	assert.Equal(t, "Week 11", list.Name)
	assert.Equal(t, 50.0, list.BudgetLimit)
	assert.Equal(t, 30.0, list.TotalEstimatedCost)
	require.Len(t, list.Items, 2)

	stored, err := f.svc.GetShoppingListByID(context.Background(), list.ID, f.user.ID.String())
	require.NoError(t, err)
	var got []string
	var sum float64
	for _, item := range stored.Items {
		got = append(got, item.Name)
		sum += item.EstimatedPrice
		assert.False(t, item.Purchased)
	}
	assert.ElementsMatch(t, []string{"rice", "milk"}, got)
	assert.Equal(t, stored.TotalEstimatedCost, sum)
	assert.Equal(t, 11, stored.WeekNumber)
	assert.Equal(t, 3, stored.Month)
	assert.Equal(t, 2025, stored.Year)
}

func TestGenerateShoppingList_ExcludesAllergensAndSeesPantry(t *testing.T) {
	var seen domain.ProposalContext
	proposer := proposerFunc(func(ctx context.Context, pc domain.ProposalContext) (domain.Proposal, error) {
		seen = pc
		return domain.Proposal{Items: []domain.ProposalItem{
			{Name: "Peanut Butter", Quantity: 1, Unit: "jar", EstimatedPrice: 4, Priority: domain.PriorityHigh},
			{Name: "Bananas", Quantity: 6, Unit: "pcs", EstimatedPrice: 3, Priority: domain.PriorityMedium},
		}}, nil
	})
	f := newFixture(t, "Peanut, shellfish", proposer)
	f.activeBudget(t, 40)
	soon := testutil.Day(fixedNow).AddDate(0, 0, 1)
	testutil.CreatePantryItem(t, f.db, &entities.PantryItem{UserID: f.user.ID, Name: "Bananas", Quantity: 2, Unit: "pcs", ExpiryDate: &soon})

	list := f.generate(t)

	require.Len(t, list.Items, 1)
	assert.Equal(t, "Bananas", list.Items[0].Name)
	assert.Equal(t, 4.0, list.Items[0].Quantity)
	assert.Equal(t, 2.0, list.Items[0].EstimatedPrice)
	assert.Equal(t, 100.0, list.PantryUtilization)
	assert.Equal(t, 100.0, list.WasteReductionScore)
	assert.Zero(t, list.GoalAlignment)

	assert.Equal(t, 40.0, seen.BudgetAmount)
	assert.Equal(t, []string{"peanut", "shellfish"}, seen.Allergies)
	require.Len(t, seen.Pantry, 1)
	assert.True(t, seen.Pantry[0].IsExpiringSoon)
	assert.Equal(t, []string{"Bananas"}, seen.ExpiringNames)

	var pantryItem entities.PantryItem
	require.NoError(t, f.db.First(&pantryItem, "user_id = ?", f.user.ID).Error)
	assert.Equal(t, 2.0, pantryItem.Quantity)
}

func TestGenerateShoppingList_GoalAlignment(t *testing.T) {
	var seen domain.ProposalContext
	f := newFixture(t, "", proposerFunc(func(ctx context.Context, pc domain.ProposalContext) (domain.Proposal, error) {
		seen = pc
		return scenarioProposal(), nil
	}))
	f.activeBudget(t, 50)
	require.NoError(t, f.db.Model(f.user).Update("goal", "save_money").Error)

	list := f.generate(t)

	assert.Equal(t, 100.0, list.GoalAlignment)
	assert.Equal(t, "save_money", seen.Goal)

	var stored entities.ShoppingList
	require.NoError(t, f.db.First(&stored, "id = ?", list.ID).Error)
	assert.Equal(t, 100.0, stored.GoalAlignment)
}

func TestGenerateShoppingList_NoActiveBudget(t *testing.T) {
	called := false
	f := newFixture(t, "", proposerFunc(func(ctx context.Context, pc domain.ProposalContext) (domain.Proposal, error) {
		called = true
		return scenarioProposal(), nil
	}))

	_, err := f.svc.GenerateShoppingList(context.Background(), f.user.ID.String())
	assert.ErrorIs(t, err, domain.ErrNoActiveBudget)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, called)
	assert.Zero(t, countRows(t, f.db, &entities.ShoppingList{}))
}

func TestGenerateShoppingList_ProposerFailures(t *testing.T) {
	malformed := scenarioProposal()
	malformed.Items[1].Priority = "urgent"

	negative := scenarioProposal()
	negative.Items[0].EstimatedPrice = -3

	tests := []struct {
		name     string
		proposer CandidateProposer
		wantErr  error
	}{
		{
			name: "timeout",
			proposer: proposerFunc(func(ctx context.Context, pc domain.ProposalContext) (domain.Proposal, error) {
				return domain.Proposal{}, context.DeadlineExceeded
			}),
			wantErr: domain.ErrProposerUnavailable,
		},
		{
			name: "unavailable",
			proposer: proposerFunc(func(ctx context.Context, pc domain.ProposalContext) (domain.Proposal, error) {
				return domain.Proposal{}, domain.ErrProposerUnavailable
			}),
			wantErr: domain.ErrProposerUnavailable,
		},
		{name: "unknown priority", proposer: staticProposer(malformed), wantErr: domain.ErrMalformedProposal},
		{name: "negative price", proposer: staticProposer(negative), wantErr: domain.ErrMalformedProposal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "", tt.proposer)
			f.activeBudget(t, 50)

			res, err := f.svc.GenerateShoppingList(context.Background(), f.user.ID.String())
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeProposerUnavailable, res.Outcome)
			assert.Nil(t, res.List)
			assert.ErrorIs(t, res.Err, tt.wantErr)
			assert.ErrorIs(t, res.Err, domain.ErrExternalService)
			assert.Zero(t, countRows(t, f.db, &entities.ShoppingList{}))
		})
	}
}

func TestCreateDraftShoppingList(t *testing.T) {
	f := newFixture(t, "", staticProposer(scenarioProposal()))

	list, err := f.svc.CreateDraftShoppingList(context.Background(), domain.CreateShoppingListRequest{
		Items: []domain.CreateShoppingListItemRequest{
			{Name: "Coffee", Quantity: 1, Unit: "bag", EstimatedPrice: 8.5},
			{Name: "Sugar", Category: "Baking", Quantity: 1, Unit: "kg", EstimatedPrice: 1.25, Priority: domain.PriorityLow},
		},
	}, f.user.ID.String())
	require.NoError(t, err)

	assert.Equal(t, domain.ShoppingListStatusDraft, list.Status)
	assert.Equal(t, domain.DefaultShoppingListName, list.Name)
	assert.Equal(t, 9.75, list.TotalEstimatedCost)
	assert.Zero(t, list.BudgetLimit)
	require.Len(t, list.Items, 2)
	assert.Equal(t, domain.PriorityMedium, list.Items[0].Priority)
	assert.Equal(t, "baking", list.Items[1].Category)

	_, err = f.svc.CreateDraftShoppingList(context.Background(), domain.CreateShoppingListRequest{}, f.user.ID.String())
	assert.ErrorIs(t, err, domain.ErrEmptyShoppingList)
}

func TestGetShoppingLists(t *testing.T) {
	f := newFixture(t, "", staticProposer(scenarioProposal()))
	f.activeBudget(t, 50)
	f.generate(t)
	f.generate(t)

	lists, count, err := f.svc.GetShoppingLists(context.Background(), f.user.ID.String(), domain.ShoppingListStatusGenerated, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, lists, 2)

	_, _, err = f.svc.GetShoppingLists(context.Background(), f.user.ID.String(), "shipped", 1, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidShoppingStatus)

	other := testutil.CreateUser(t, f.db, "")
	_, err = f.svc.GetShoppingListByID(context.Background(), lists[0].ID, other.ID.String())
	assert.ErrorIs(t, err, domain.ErrShoppingListNotFound)
}

func TestConfirmPurchase(t *testing.T) {
	f := newFixture(t, "", staticProposer(scenarioProposal()))
	b := f.activeBudget(t, 50)
	list := f.generate(t)

	byName := map[string]domain.ShoppingListItemResponse{}
	for _, item := range list.Items {
		byName[item.Name] = item
	}
	rice, milk := byName["rice"], byName["milk"]

	res, err := f.svc.ConfirmPurchase(context.Background(), list.ID, domain.ConfirmPurchaseRequest{
		Items: []domain.PurchasedItemRequest{
			{ShoppingListItemID: rice.ID, ActualPrice: testutil.Float(12.5), ExpiryDate: "2025-09-01"},
			{ShoppingListItemID: milk.ID, PurchasedQuantity: testutil.Float(2)},
			{ShoppingListItemID: uuid.NewString()},
		},
	}, f.user.ID.String())
	require.NoError(t, err)

	assert.Equal(t, 32.5, res.TotalSpent)
	assert.Len(t, res.PantryItemIDs, 2)
	assert.Len(t, res.SkippedItemIDs, 1)
	assert.Equal(t, domain.ShoppingListStatusConfirmed, res.ShoppingList.Status)
	require.NotNil(t, res.ShoppingList.TotalActualCost)
	assert.Equal(t, 32.5, *res.ShoppingList.TotalActualCost)
	require.NotNil(t, res.BudgetRemaining)
	assert.Equal(t, 17.5, *res.BudgetRemaining)

	var pantryItems []entities.PantryItem
	require.NoError(t, f.db.Where("user_id = ?", f.user.ID).Order("name").Find(&pantryItems).Error)
	require.Len(t, pantryItems, 2)

	assert.Equal(t, "milk", pantryItems[0].Name)
	assert.Equal(t, 2.0, pantryItems[0].Quantity)
	assert.Nil(t, pantryItems[0].ExpiryDate)
	require.NotNil(t, pantryItems[0].Price)
	assert.Equal(t, 20.0, *pantryItems[0].Price)

	assert.Equal(t, "rice", pantryItems[1].Name)
	assert.Equal(t, 2.0, pantryItems[1].Quantity)
	require.NotNil(t, pantryItems[1].ExpiryDate)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), *pantryItems[1].ExpiryDate)
	for _, item := range pantryItems {
		assert.Equal(t, domain.PantryStatusActive, item.Status)
		assert.Equal(t, domain.PantrySourceShoppingList, item.Source)
		assert.Equal(t, testutil.Day(fixedNow), item.PurchaseDate)
	}

	stored, err := f.svc.GetShoppingListByID(context.Background(), list.ID, f.user.ID.String())
	require.NoError(t, err)
	for _, item := range stored.Items {
		assert.True(t, item.Purchased)
		require.NotNil(t, item.ActualPrice)
	}
	require.NotNil(t, stored.CompletedAt)

	var storedBudget entities.Budget
	require.NoError(t, f.db.First(&storedBudget, "id = ?", b.ID).Error)
	assert.Equal(t, 32.5, storedBudget.AmountSpent)
}

func TestConfirmPurchase_TotalOverride(t *testing.T) {
	f := newFixture(t, "", staticProposer(scenarioProposal()))
	f.activeBudget(t, 50)
	list := f.generate(t)

	res, err := f.svc.ConfirmPurchase(context.Background(), list.ID, domain.ConfirmPurchaseRequest{
		Items:         []domain.PurchasedItemRequest{{ShoppingListItemID: list.Items[0].ID}},
		TotalOverride: testutil.Float(55),
	}, f.user.ID.String())
	require.NoError(t, err)

	assert.Equal(t, 55.0, res.TotalSpent)
	require.NotNil(t, res.BudgetRemaining)
	assert.Equal(t, -5.0, *res.BudgetRemaining)
}

func TestConfirmPurchase_EmptyIsRejectedWithoutChanges(t *testing.T) {
	f := newFixture(t, "", staticProposer(scenarioProposal()))
	b := f.activeBudget(t, 50)
	list := f.generate(t)

	_, err := f.svc.ConfirmPurchase(context.Background(), list.ID, domain.ConfirmPurchaseRequest{}, f.user.ID.String())
	assert.ErrorIs(t, err, domain.ErrEmptyPurchase)
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, err := f.svc.GetShoppingListByID(context.Background(), list.ID, f.user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.ShoppingListStatusGenerated, stored.Status)
	assert.Nil(t, stored.TotalActualCost)
	assert.Zero(t, countRows(t, f.db, &entities.PantryItem{}))

	var storedBudget entities.Budget
	require.NoError(t, f.db.First(&storedBudget, "id = ?", b.ID).Error)
	assert.Zero(t, storedBudget.AmountSpent)
}

func TestConfirmPurchase_InvalidPayload(t *testing.T) {
	f := newFixture(t, "", staticProposer(scenarioProposal()))
	f.activeBudget(t, 50)
	list := f.generate(t)
	itemID := list.Items[0].ID

	tests := []struct {
		name string
		item domain.PurchasedItemRequest
		want error
	}{
		{"zero price", domain.PurchasedItemRequest{ShoppingListItemID: itemID, ActualPrice: testutil.Float(0)}, domain.ErrInvalidPrice},
		{"negative quantity", domain.PurchasedItemRequest{ShoppingListItemID: itemID, PurchasedQuantity: testutil.Float(-1)}, domain.ErrInvalidQuantity},
		{"bad date", domain.PurchasedItemRequest{ShoppingListItemID: itemID, ExpiryDate: "tomorrow"}, domain.ErrInvalidDate},
		{"bad id", domain.PurchasedItemRequest{ShoppingListItemID: "rice"}, domain.ErrParseUUID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ConfirmPurchase(context.Background(), list.ID, domain.ConfirmPurchaseRequest{
				Items: []domain.PurchasedItemRequest{tt.item},
			}, f.user.ID.String())
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, countRows(t, f.db, &entities.PantryItem{}))
}

func TestConfirmPurchase_Conflict(t *testing.T) {
	f := newFixture(t, "", staticProposer(scenarioProposal()))
	f.activeBudget(t, 50)
	list := f.generate(t)
	req := domain.ConfirmPurchaseRequest{Items: []domain.PurchasedItemRequest{{ShoppingListItemID: list.Items[0].ID}}}

	_, err := f.svc.ConfirmPurchase(context.Background(), list.ID, req, f.user.ID.String())
	require.NoError(t, err)

	_, err = f.svc.ConfirmPurchase(context.Background(), list.ID, req, f.user.ID.String())
	assert.ErrorIs(t, err, domain.ErrShoppingListNotConfirmable)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(1), countRows(t, f.db, &entities.PantryItem{}))

	require.NoError(t, f.db.Model(&entities.ShoppingList{}).Where("id = ?", list.ID).Update("status", domain.ShoppingListStatusCancelled).Error)
	_, err = f.svc.ConfirmPurchase(context.Background(), list.ID, req, f.user.ID.String())
	assert.ErrorIs(t, err, domain.ErrShoppingListNotConfirmable)
}

func TestConfirmPurchase_NotFound(t *testing.T) {
	f := newFixture(t, "", staticProposer(scenarioProposal()))
	f.activeBudget(t, 50)
	list := f.generate(t)
	other := testutil.CreateUser(t, f.db, "")

	req := domain.ConfirmPurchaseRequest{Items: []domain.PurchasedItemRequest{{ShoppingListItemID: list.Items[0].ID}}}
	_, err := f.svc.ConfirmPurchase(context.Background(), list.ID, req, other.ID.String())
	assert.ErrorIs(t, err, domain.ErrShoppingListNotFound)

	_, err = f.svc.ConfirmPurchase(context.Background(), uuid.NewString(), req, f.user.ID.String())
	assert.ErrorIs(t, err, domain.ErrShoppingListNotFound)
}

func TestConfirmPurchase_NoMatchingItemsRollsBack(t *testing.T) {
	f := newFixture(t, "", staticProposer(scenarioProposal()))
	f.activeBudget(t, 50)
	list := f.generate(t)

	_, err := f.svc.ConfirmPurchase(context.Background(), list.ID, domain.ConfirmPurchaseRequest{
		Items: []domain.PurchasedItemRequest{{ShoppingListItemID: uuid.NewString()}},
	}, f.user.ID.String())
	assert.ErrorIs(t, err, domain.ErrNoMatchingPurchaseItems)

	stored, err := f.svc.GetShoppingListByID(context.Background(), list.ID, f.user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.ShoppingListStatusGenerated, stored.Status)
	assert.Zero(t, countRows(t, f.db, &entities.PantryItem{}))
}

func TestConfirmPurchase_DraftWithoutBudget(t *testing.T) {
	f := newFixture(t, "", staticProposer(scenarioProposal()))
	draft, err := f.svc.CreateDraftShoppingList(context.Background(), domain.CreateShoppingListRequest{
		Items: []domain.CreateShoppingListItemRequest{{Name: "Tea", Quantity: 1, Unit: "box", EstimatedPrice: 3}},
	}, f.user.ID.String())
	require.NoError(t, err)

	res, err := f.svc.ConfirmPurchase(context.Background(), draft.ID, domain.ConfirmPurchaseRequest{
		Items: []domain.PurchasedItemRequest{{ShoppingListItemID: draft.Items[0].ID}},
	}, f.user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.TotalSpent)
	assert.Nil(t, res.BudgetRemaining)
}

func TestConfirmPurchase_LabelReader(t *testing.T) {
	image := base64.StdEncoding.EncodeToString([]byte("fake-jpeg"))
	expiry := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		detection domain.LabelDetection
		err       error
		want      *time.Time
	}{
		{"confident", domain.LabelDetection{ExpiryDate: &expiry, Confidence: 0.9}, nil, &expiry},
		{"not confident", domain.LabelDetection{ExpiryDate: &expiry, Confidence: 0.4}, nil, nil},
		{"no date", domain.LabelDetection{Confidence: 0.95}, nil, nil},
		{"reader down", domain.LabelDetection{}, errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "", staticProposer(scenarioProposal()))
			f.activeBudget(t, 50)
			f.labels.detection, f.labels.err = tt.detection, tt.err
			list := f.generate(t)

			_, err := f.svc.ConfirmPurchase(context.Background(), list.ID, domain.ConfirmPurchaseRequest{
				Items: []domain.PurchasedItemRequest{{ShoppingListItemID: list.Items[0].ID, LabelImage: image, LabelMimeType: "image/jpeg"}},
			}, f.user.ID.String())
			require.NoError(t, err)
			assert.Equal(t, 1, f.labels.calls)

			var item entities.PantryItem
			require.NoError(t, f.db.First(&item, "user_id = ?", f.user.ID).Error)
			if tt.want == nil {
				assert.Nil(t, item.ExpiryDate)
				return
			}
			require.NotNil(t, item.ExpiryDate)
			assert.Equal(t, *tt.want, *item.ExpiryDate)
		})
	}
}
