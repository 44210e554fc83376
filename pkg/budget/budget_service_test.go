package budget

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"Pantry-Planner/internal/testutil"
	"Pantry-Planner/pkg/database"
	"Pantry-Planner/pkg/user"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	calls []domain.BudgetResponse
	email string
}

func (f *fakeNotifier) NotifyOverspend(ctx context.Context, email string, name string, budget domain.BudgetResponse) error {
	f.email = email
	f.calls = append(f.calls, budget)
	return nil
}

func newTestService(t *testing.T) (*budgetService, *gorm.DB, *fakeNotifier) {
	t.Helper()
	db := testutil.NewTestDB(t)
	notifier := &fakeNotifier{}
	return &budgetService{
		budgetRepository: NewBudgetRepository(db),
		userRepository:   user.NewUserRepository(db),
		transactor:       database.NewTransactor(db),
		notifier:         notifier,
		now:              func() time.Time { return fixedNow },
	}, db, notifier
}

func confirmedList(t *testing.T, db *gorm.DB, userID uuid.UUID, completedAt time.Time, total float64) *entities.ShoppingList {
	t.Helper()
	list := &entities.ShoppingList{
		UserID:          userID,
		Name:            "weekly",
		Status:          domain.ShoppingListStatusConfirmed,
		BudgetLimit:     100,
		TotalActualCost: &total,
		CompletedAt:     &completedAt,
		Items: []*entities.ShoppingListItem{
			{Name: "Rice", Category: "grains", Quantity: 1, Unit: "kg", EstimatedPrice: total, ActualPrice: &total, Purchased: true, Priority: domain.PriorityHigh},
		},
	}
	require.NoError(t, db.Create(list).Error)
	return list
}

func TestCreateBudget(t *testing.T) {
	svc, db, _ := newTestService(t)
	u := testutil.CreateUser(t, db, "")

	res, err := svc.CreateBudget(context.Background(), domain.CreateBudgetRequest{
		Amount: 80, Period: domain.BudgetPeriodMonthly, Currency: "eur",
	}, u.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "EUR", res.Currency)
	assert.Equal(t, testutil.Day(fixedNow), res.StartDate)
	require.NotNil(t, res.EndDate)
	assert.Equal(t, testutil.Day(fixedNow).AddDate(0, 0, 30), *res.EndDate)
	assert.False(t, res.Active)

	_, err = svc.CreateBudget(context.Background(), domain.CreateBudgetRequest{Amount: 0, Period: domain.BudgetPeriodWeekly}, u.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidBudgetAmount)

	_, err = svc.CreateBudget(context.Background(), domain.CreateBudgetRequest{Amount: 10, Period: "yearly"}, u.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidBudgetPeriod)
}

func TestActivateBudget_DeactivatesSiblings(t *testing.T) {
	svc, db, _ := newTestService(t)
	u := testutil.CreateUser(t, db, "")
	other := testutil.CreateUser(t, db, "")

	first, err := svc.CreateBudget(context.Background(), domain.CreateBudgetRequest{Amount: 50, Period: domain.BudgetPeriodWeekly, Activate: true}, u.ID.String())
	require.NoError(t, err)
	assert.True(t, first.Active)

	second, err := svc.CreateBudget(context.Background(), domain.CreateBudgetRequest{Amount: 70, Period: domain.BudgetPeriodWeekly}, u.ID.String())
	require.NoError(t, err)
	othersBudget := testutil.CreateBudget(t, db, &entities.Budget{UserID: other.ID, Amount: 10, Active: true})

	res, err := svc.ActivateBudget(context.Background(), second.ID, u.ID.String())
	require.NoError(t, err)
	assert.True(t, res.Active)

	var active []entities.Budget
	require.NoError(t, db.Where("user_id = ? AND active = ?", u.ID, true).Find(&active).Error)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID.String())

	var untouched entities.Budget
	require.NoError(t, db.First(&untouched, "id = ?", othersBudget.ID).Error)
	assert.True(t, untouched.Active)

	_, err = svc.ActivateBudget(context.Background(), othersBudget.ID.String(), u.ID.String())
	assert.ErrorIs(t, err, domain.ErrBudgetNotFound)
}

type lockedUsers struct {
	user.UserRepository
}

func (lockedUsers) LockUser(ctx context.Context, id string) error {
	return &pgconn.PgError{Code: "55P03"}
}

func TestActivation_SerializedPerUser(t *testing.T) {
	t.Run("user row held elsewhere", func(t *testing.T) {
		svc, db, _ := newTestService(t)
		u := testutil.CreateUser(t, db, "")
		idle := testutil.CreateBudget(t, db, &entities.Budget{UserID: u.ID, Amount: 30})
		svc.userRepository = lockedUsers{UserRepository: svc.userRepository}

		_, err := svc.CreateBudget(context.Background(), domain.CreateBudgetRequest{Amount: 50, Period: domain.BudgetPeriodWeekly, Activate: true}, u.ID.String())
		assert.ErrorIs(t, err, domain.ErrBudgetActivationBusy)
		assert.ErrorIs(t, err, domain.ErrConflict)

		_, err = svc.ActivateBudget(context.Background(), idle.ID.String(), u.ID.String())
		assert.ErrorIs(t, err, domain.ErrBudgetActivationBusy)

		_, err = svc.CreateBudget(context.Background(), domain.CreateBudgetRequest{Amount: 50, Period: domain.BudgetPeriodWeekly}, u.ID.String())
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&entities.Budget{}).Where("user_id = ? AND active = ?", u.ID, true).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("second active budget rejected by index", func(t *testing.T) {
		svc, db, _ := newTestService(t)
		u := testutil.CreateUser(t, db, "")
		testutil.CreateBudget(t, db, &entities.Budget{UserID: u.ID, Amount: 30, Active: true})

		err := svc.transactor.WithinTransaction(context.Background(), func(ctx context.Context) error {
			return svc.budgetRepository.CreateBudget(ctx, &entities.Budget{UserID: u.ID, Amount: 40, Active: true})
		})
		require.Error(t, err)
		assert.ErrorIs(t, activationError(err), domain.ErrBudgetActivationBusy)

		require.NoError(t, db.Create(&entities.Budget{UserID: u.ID, Amount: 40}).Error)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.CreateBudget(context.Background(), domain.CreateBudgetRequest{Amount: 50, Period: domain.BudgetPeriodWeekly, Activate: true}, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestGetActiveBudget_None(t *testing.T) {
	svc, db, _ := newTestService(t)
	u := testutil.CreateUser(t, db, "")

	_, err := svc.GetActiveBudget(context.Background(), u.ID.String())
	assert.ErrorIs(t, err, domain.ErrNoActiveBudget)
	assert.ErrorIs(t, err, domain.ErrValidation)

	synced, err := svc.SyncActiveBudget(context.Background(), u.ID.String())
	require.NoError(t, err)
	assert.Nil(t, synced)
}

func TestSyncAmountSpent_Idempotent(t *testing.T) {
	svc, db, _ := newTestService(t)
	u := testutil.CreateUser(t, db, "")
	start := testutil.Day(fixedNow).AddDate(0, 0, -2)
	b := testutil.CreateBudget(t, db, &entities.Budget{UserID: u.ID, Amount: 50, StartDate: start, Active: true})

	confirmedList(t, db, u.ID, fixedNow.Add(-time.Hour), 20)
	confirmedList(t, db, u.ID, start.Add(time.Hour), 7.5)
	confirmedList(t, db, u.ID, start.AddDate(0, 0, -1), 99)

	first, err := svc.SyncAmountSpent(context.Background(), b.ID.String(), u.ID.String())
	require.NoError(t, err)
	second, err := svc.SyncAmountSpent(context.Background(), b.ID.String(), u.ID.String())
	require.NoError(t, err)

	assert.Equal(t, 27.5, first.AmountSpent)
	assert.Equal(t, first.AmountSpent, second.AmountSpent)
	assert.Equal(t, 22.5, second.Remaining)

	var stored entities.Budget
	require.NoError(t, db.First(&stored, "id = ?", b.ID).Error)
	assert.Equal(t, 27.5, stored.AmountSpent)
}

func TestOverspendIsReportedAndNotified(t *testing.T) {
	svc, db, notifier := newTestService(t)
	u := testutil.CreateUser(t, db, "")
	testutil.CreateBudget(t, db, &entities.Budget{UserID: u.ID, Amount: 20, StartDate: testutil.Day(fixedNow), Active: true})
	confirmedList(t, db, u.ID, fixedNow, 32.25)

	synced, err := svc.SyncActiveBudget(context.Background(), u.ID.String())
	require.NoError(t, err)
	require.NotNil(t, synced)
	assert.Equal(t, -12.25, synced.Remaining)

	remaining, err := svc.GetRemainingBudget(context.Background(), u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, -12.25, remaining)

	svc.NotifyIfOverspent(context.Background(), *synced, u.ID.String())
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, u.Email, notifier.email)

	svc.NotifyIfOverspent(context.Background(), domain.BudgetResponse{Remaining: 1}, u.ID.String())
	assert.Len(t, notifier.calls, 1)
}

func TestGetSpendingBreakdown(t *testing.T) {
	svc, db, _ := newTestService(t)
	u := testutil.CreateUser(t, db, "")
	b := testutil.CreateBudget(t, db, &entities.Budget{UserID: u.ID, Amount: 50, StartDate: testutil.Day(fixedNow)})
	confirmedList(t, db, u.ID, fixedNow, 12)

	res, err := svc.GetSpendingBreakdown(context.Background(), b.ID.String(), u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 12.0, res.Total)
	require.Len(t, res.Categories, 1)
	assert.Equal(t, "grains", res.Categories[0].Category)
	assert.Equal(t, 1, res.Categories[0].ItemCount)
}

func TestDeactivateBudget(t *testing.T) {
	svc, db, _ := newTestService(t)
	u := testutil.CreateUser(t, db, "")
	b := testutil.CreateBudget(t, db, &entities.Budget{UserID: u.ID, Amount: 50, Active: true})

	res, err := svc.DeactivateBudget(context.Background(), b.ID.String(), u.ID.String())
	require.NoError(t, err)
	assert.False(t, res.Active)

	_, err = svc.GetActiveBudget(context.Background(), u.ID.String())
	assert.ErrorIs(t, err, domain.ErrNoActiveBudget)
}
