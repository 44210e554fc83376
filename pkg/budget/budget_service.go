package budget

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"Pantry-Planner/internal/metrics"
	"Pantry-Planner/pkg/database"
	"Pantry-Planner/pkg/notify"
	"Pantry-Planner/pkg/user"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	BudgetService interface {
		CreateBudget(ctx context.Context, req domain.CreateBudgetRequest, userID string) (domain.BudgetResponse, error)
		ActivateBudget(ctx context.Context, id string, userID string) (domain.BudgetResponse, error)
		DeactivateBudget(ctx context.Context, id string, userID string) (domain.BudgetResponse, error)
		GetBudgets(ctx context.Context, userID string) ([]domain.BudgetResponse, error)
		GetBudgetByID(ctx context.Context, id string, userID string) (domain.BudgetResponse, error)
		GetActiveBudget(ctx context.Context, userID string) (domain.BudgetResponse, error)

		SyncAmountSpent(ctx context.Context, id string, userID string) (domain.BudgetResponse, error)
		// SyncActiveBudget joins the caller's transaction when there is one.
		// It returns nil when the user has no active budget.
		SyncActiveBudget(ctx context.Context, userID string) (*domain.BudgetResponse, error)
		GetRemainingBudget(ctx context.Context, userID string) (float64, error)
		GetSpendingBreakdown(ctx context.Context, id string, userID string) (domain.SpendingBreakdownResponse, error)
		NotifyIfOverspent(ctx context.Context, budget domain.BudgetResponse, userID string)
	}

	budgetService struct {
		budgetRepository BudgetRepository
		userRepository   user.UserRepository
		transactor       database.Transactor
		notifier         notify.Notifier
		now              func() time.Time
	}
)

func NewBudgetService(
	budgetRepository BudgetRepository,
	userRepository user.UserRepository,
	transactor database.Transactor,
	notifier notify.Notifier,
) BudgetService {
	return &budgetService{
		budgetRepository: budgetRepository,
		userRepository:   userRepository,
		transactor:       transactor,
		notifier:         notifier,
		now:              time.Now,
	}
}

func (s *budgetService) CreateBudget(ctx context.Context, req domain.CreateBudgetRequest, userID string) (domain.BudgetResponse, error) {
	if req.Amount <= 0 {
		return domain.BudgetResponse{}, domain.ErrInvalidBudgetAmount
	}
	days, err := domain.PeriodDays(req.Period)
	if err != nil {
		return domain.BudgetResponse{}, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.BudgetResponse{}, domain.ErrParseUUID
	}

	startDate := domain.DateOf(s.now())
	if req.StartDate != "" {
		if startDate, err = domain.ParseDate(req.StartDate); err != nil {
			return domain.BudgetResponse{}, err
		}
	}
	endDate := startDate.AddDate(0, 0, days)

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	budget := &entities.Budget{
		UserID:    userUUID,
		Amount:    req.Amount,
		Period:    req.Period,
		Currency:  currency,
		StartDate: startDate,
		EndDate:   &endDate,
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if req.Activate {
			if err := s.lockOwner(ctx, userID); err != nil {
				return err
			}
		}
		if err := s.budgetRepository.CreateBudget(ctx, budget); err != nil {
			return err
		}
		if !req.Activate {
			return nil
		}
		if err := s.activate(ctx, budget.ID.String(), userID); err != nil {
			return err
		}
		budget.Active = true
		return nil
	})
	if err != nil {
		return domain.BudgetResponse{}, activationError(err)
	}

	return ToBudgetResponse(budget), nil
}

func (s *budgetService) ActivateBudget(ctx context.Context, id string, userID string) (domain.BudgetResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.BudgetResponse{}, domain.ErrParseUUID
	}

	var activated *entities.Budget
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.lockOwner(ctx, userID); err != nil {
			return err
		}
		if err := s.activate(ctx, id, userID); err != nil {
			return err
		}
		budget, err := s.budgetRepository.GetBudgetByID(ctx, id, userID)
		if err != nil {
			return err
		}
		activated = budget
		return nil
	})
	if err != nil {
		return domain.BudgetResponse{}, activationError(err)
	}

	log.Infow("budget activated", "budget_id", id, "user_id", userID)
	return ToBudgetResponse(activated), nil
}

// lockOwner takes the user row as the per-user activation mutex. Budget row
// locks alone miss the case where the user has no budgets yet.
func (s *budgetService) lockOwner(ctx context.Context, userID string) error {
	err := s.userRepository.LockUser(ctx, userID)
	switch {
	case err == nil:
		return nil
	case database.IsLockConflict(err):
		return domain.ErrBudgetActivationBusy
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrUserNotFound
	default:
		return err
	}
}

// activationError maps a violation of idx_budgets_one_active, raised when a
// concurrent activation committed first.
func activationError(err error) error {
	if database.IsUniqueViolation(err) {
		return domain.ErrBudgetActivationBusy
	}
	return err
}

// activate must run inside a transaction. Every budget of the user is locked
// before the flags change so exactly one active budget is ever committed.
func (s *budgetService) activate(ctx context.Context, id string, userID string) error {
	budgets, err := s.budgetRepository.LockUserBudgets(ctx, userID)
	if err != nil {
		if database.IsLockConflict(err) {
			return domain.ErrBudgetActivationBusy
		}
		return err
	}

	found := false
	for _, b := range budgets {
		if b.ID.String() == id {
			found = true
			break
		}
	}
	if !found {
		return domain.ErrBudgetNotFound
	}

	return s.budgetRepository.SetActiveBudget(ctx, userID, id)
}

func (s *budgetService) DeactivateBudget(ctx context.Context, id string, userID string) (domain.BudgetResponse, error) {
	var budget *entities.Budget
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := s.lockBudget(ctx, id, userID)
		if err != nil {
			return err
		}
		if err := s.budgetRepository.SetInactive(ctx, id); err != nil {
			return err
		}
		b.Active = false
		budget = b
		return nil
	})
	if err != nil {
		return domain.BudgetResponse{}, err
	}
	return ToBudgetResponse(budget), nil
}

func (s *budgetService) GetBudgets(ctx context.Context, userID string) ([]domain.BudgetResponse, error) {
	budgets, err := s.budgetRepository.GetBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]domain.BudgetResponse, 0, len(budgets))
	for _, b := range budgets {
		res = append(res, ToBudgetResponse(b))
	}
	return res, nil
}

func (s *budgetService) GetBudgetByID(ctx context.Context, id string, userID string) (domain.BudgetResponse, error) {
	budget, err := s.getBudget(ctx, id, userID)
	if err != nil {
		return domain.BudgetResponse{}, err
	}
	return ToBudgetResponse(budget), nil
}

func (s *budgetService) GetActiveBudget(ctx context.Context, userID string) (domain.BudgetResponse, error) {
	budget, err := s.budgetRepository.GetActiveBudget(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BudgetResponse{}, domain.ErrNoActiveBudget
		}
		return domain.BudgetResponse{}, err
	}
	return ToBudgetResponse(budget), nil
}

func (s *budgetService) SyncAmountSpent(ctx context.Context, id string, userID string) (domain.BudgetResponse, error) {
	var synced *entities.Budget
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		budget, err := s.lockBudget(ctx, id, userID)
		if err != nil {
			return err
		}
		if err := s.sync(ctx, budget, userID); err != nil {
			return err
		}
		synced = budget
		return nil
	})
	if err != nil {
		return domain.BudgetResponse{}, err
	}
	return ToBudgetResponse(synced), nil
}

func (s *budgetService) SyncActiveBudget(ctx context.Context, userID string) (*domain.BudgetResponse, error) {
	var synced *entities.Budget
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		active, err := s.budgetRepository.GetActiveBudget(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		budget, err := s.lockBudget(ctx, active.ID.String(), userID)
		if err != nil {
			return err
		}
		if err := s.sync(ctx, budget, userID); err != nil {
			return err
		}
		synced = budget
		return nil
	})
	if err != nil || synced == nil {
		return nil, err
	}

	res := ToBudgetResponse(synced)
	return &res, nil
}

// sync recomputes amount_spent from confirmed lists. The caller holds the
// budget row lock.
func (s *budgetService) sync(ctx context.Context, budget *entities.Budget, userID string) error {
	lists, err := s.budgetRepository.GetConfirmedShoppingLists(ctx, userID)
	if err != nil {
		return err
	}

	from, to := Window(budget, s.now())
	spent := SpentInWindow(lists, from, to)
	if spent == budget.AmountSpent {
		return nil
	}

	if err := s.budgetRepository.UpdateAmountSpent(ctx, budget.ID.String(), spent); err != nil {
		return err
	}
	budget.AmountSpent = spent
	return nil
}

func (s *budgetService) GetRemainingBudget(ctx context.Context, userID string) (float64, error) {
	budget, err := s.GetActiveBudget(ctx, userID)
	if err != nil {
		return 0, err
	}
	return budget.Remaining, nil
}

func (s *budgetService) GetSpendingBreakdown(ctx context.Context, id string, userID string) (domain.SpendingBreakdownResponse, error) {
	budget, err := s.getBudget(ctx, id, userID)
	if err != nil {
		return domain.SpendingBreakdownResponse{}, err
	}

	lists, err := s.budgetRepository.GetConfirmedShoppingLists(ctx, userID)
	if err != nil {
		return domain.SpendingBreakdownResponse{}, err
	}

	from, to := Window(budget, s.now())
	categories := Breakdown(lists, from, to)

	var total float64
	for _, c := range categories {
		total += c.Amount
	}

	return domain.SpendingBreakdownResponse{
		BudgetID:   budget.ID.String(),
		Total:      domain.RoundMoney(total),
		Categories: categories,
	}, nil
}

// NotifyIfOverspent is best effort: failures are logged, never returned.
func (s *budgetService) NotifyIfOverspent(ctx context.Context, budget domain.BudgetResponse, userID string) {
	if budget.Remaining >= 0 {
		return
	}
	metrics.BudgetsOverspent.Inc()

	u, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		log.Warnw("overspend notification skipped", "user_id", userID, "error", err)
		return
	}
	if err := s.notifier.NotifyOverspend(ctx, u.Email, u.Name, budget); err != nil {
		log.Warnw("overspend notification failed", "user_id", userID, "budget_id", budget.ID, "error", err)
	}
}

func (s *budgetService) getBudget(ctx context.Context, id string, userID string) (*entities.Budget, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrParseUUID
	}
	budget, err := s.budgetRepository.GetBudgetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

func (s *budgetService) lockBudget(ctx context.Context, id string, userID string) (*entities.Budget, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrParseUUID
	}
	budget, err := s.budgetRepository.GetBudgetForUpdate(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}
