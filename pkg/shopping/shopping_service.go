package shopping

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"Pantry-Planner/internal/metrics"
	"Pantry-Planner/internal/utils"
	"Pantry-Planner/pkg/budget"
	"Pantry-Planner/pkg/database"
	"Pantry-Planner/pkg/pantry"
	"Pantry-Planner/pkg/user"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// CandidateProposer suggests purchase items for a user. Its output is
	// untrusted and validated before use.
	CandidateProposer interface {
		Propose(ctx context.Context, pc domain.ProposalContext) (domain.Proposal, error)
	}

	// LabelReader reads a printed expiry date from a product label image.
	LabelReader interface {
		Detect(ctx context.Context, image []byte, mimeType string) (domain.LabelDetection, error)
	}

	ShoppingService interface {
		GenerateShoppingList(ctx context.Context, userID string) (domain.GenerationResult, error)
		CreateDraftShoppingList(ctx context.Context, req domain.CreateShoppingListRequest, userID string) (domain.ShoppingListResponse, error)
		GetShoppingLists(ctx context.Context, userID string, status string, page, limit int) ([]domain.ShoppingListResponse, int64, error)
		GetShoppingListByID(ctx context.Context, id string, userID string) (domain.ShoppingListResponse, error)
		ConfirmPurchase(ctx context.Context, id string, req domain.ConfirmPurchaseRequest, userID string) (domain.ConfirmPurchaseResponse, error)
	}

	shoppingService struct {
		shoppingRepository ShoppingRepository
		pantryRepository   pantry.PantryRepository
		budgetService      budget.BudgetService
		userService        user.UserService
		proposer           CandidateProposer
		labelReader        LabelReader
		transactor         database.Transactor
		labelMinConfidence float64
		now                func() time.Time
	}
)

// NewShoppingService wires the allocator and the reconciler. labelReader may
// be nil, in which case label images are ignored.
func NewShoppingService(
	shoppingRepository ShoppingRepository,
	pantryRepository pantry.PantryRepository,
	budgetService budget.BudgetService,
	userService user.UserService,
	proposer CandidateProposer,
	labelReader LabelReader,
	transactor database.Transactor,
	labelMinConfidence float64,
) ShoppingService {
	return &shoppingService{
		shoppingRepository: shoppingRepository,
		pantryRepository:   pantryRepository,
		budgetService:      budgetService,
		userService:        userService,
		proposer:           proposer,
		labelReader:        labelReader,
		transactor:         transactor,
		labelMinConfidence: labelMinConfidence,
		now:                time.Now,
	}
}

// GenerateShoppingList returns an error only for failures the caller has to
// fix (no active budget, storage errors). A proposer that is down or returns
// garbage yields OutcomeProposerUnavailable with a nil error.
func (s *shoppingService) GenerateShoppingList(ctx context.Context, userID string) (domain.GenerationResult, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.GenerationResult{}, domain.ErrParseUUID
	}

	activeBudget, err := s.budgetService.GetActiveBudget(ctx, userID)
	if err != nil {
		return domain.GenerationResult{}, err
	}

	profile, err := s.userService.GetProfile(ctx, userID)
	if err != nil {
		return domain.GenerationResult{}, err
	}

	snapshot, err := s.pantryRepository.GetActivePantryItems(ctx, userID)
	if err != nil {
		return domain.GenerationResult{}, err
	}

	today := domain.DateOf(s.now())
	proposal, err := s.propose(ctx, buildProposalContext(activeBudget, profile, snapshot, today))
	if err != nil {
		metrics.ShoppingListsGenerated.WithLabelValues(string(domain.OutcomeProposerUnavailable)).Inc()
		log.Warnw("candidate proposer failed, no list produced", "user_id", userID, "error", err)
		return domain.GenerationResult{Outcome: domain.OutcomeProposerUnavailable, Err: err}, nil
	}

	alloc := Allocate(AllocationInput{
		Candidates:   ToCandidates(proposal),
		BudgetAmount: activeBudget.Amount,
		Pantry:       snapshot,
		Allergies:    profile.Allergies,
		Today:        today,
	})
	metrics.CandidatesDropped.WithLabelValues("allergen").Add(float64(alloc.DroppedAllergen))
	metrics.CandidatesDropped.WithLabelValues("pantry_covered").Add(float64(alloc.DroppedCovered))
	metrics.CandidatesDropped.WithLabelValues("budget").Add(float64(alloc.DroppedBudget))

	name := strings.TrimSpace(proposal.ListName)
	if name == "" {
		name = domain.DefaultShoppingListName
	}

	list := newShoppingList(userUUID, name, domain.ShoppingListStatusGenerated, activeBudget.Amount, s.now())
	list.TotalEstimatedCost = alloc.TotalEstimatedCost
	list.PantryUtilization = alloc.PantryUtilization
	list.WasteReductionScore = alloc.WasteReductionScore
	list.GoalAlignment = goalAlignment(profile.Goal)
	for _, c := range alloc.Items {
		list.Items = append(list.Items, &entities.ShoppingListItem{
			Name:           c.Name,
			Category:       c.Category,
			Quantity:       c.Quantity,
			Unit:           c.Unit,
			EstimatedPrice: c.EstimatedPrice,
			Priority:       c.Priority,
			Reason:         c.Reason,
		})
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.shoppingRepository.CreateShoppingList(ctx, list)
	})
	if err != nil {
		return domain.GenerationResult{}, err
	}

	metrics.ShoppingListsGenerated.WithLabelValues(string(domain.OutcomeGenerated)).Inc()
	log.Infow("shopping list generated",
		"user_id", userID,
		"list_id", list.ID.String(),
		"items", len(list.Items),
		"dropped_allergen", alloc.DroppedAllergen,
		"dropped_covered", alloc.DroppedCovered,
		"dropped_budget", alloc.DroppedBudget,
	)

	res := ToShoppingListResponse(list)
	return domain.GenerationResult{Outcome: domain.OutcomeGenerated, List: &res}, nil
}

func (s *shoppingService) propose(ctx context.Context, pc domain.ProposalContext) (domain.Proposal, error) {
	start := time.Now()
	defer func() {
		metrics.ProposerDuration.Observe(time.Since(start).Seconds())
	}()

	proposal, err := s.proposer.Propose(ctx, pc)
	if err != nil {
		if errors.Is(err, domain.ErrExternalService) {
			return domain.Proposal{}, err
		}
		return domain.Proposal{}, fmt.Errorf("%w: %v", domain.ErrProposerUnavailable, err)
	}
	if err := ValidateProposal(proposal); err != nil {
		return domain.Proposal{}, err
	}
	return proposal, nil
}

// ValidateProposal rejects any proposal that does not match the strict
// schema. Nothing from a rejected proposal is used.
func ValidateProposal(p domain.Proposal) error {
	if err := utils.ValidateStruct(p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedProposal, err)
	}
	return nil
}

func ToCandidates(p domain.Proposal) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(p.Items))
	for _, item := range p.Items {
		category := strings.ToLower(strings.TrimSpace(item.Category))
		if category == "" {
			category = "other"
		}
		candidates = append(candidates, domain.Candidate{
			Name:           strings.TrimSpace(item.Name),
			Category:       category,
			Quantity:       item.Quantity,
			Unit:           strings.TrimSpace(item.Unit),
			EstimatedPrice: item.EstimatedPrice,
			Priority:       item.Priority,
			Reason:         item.Reason,
		})
	}
	return candidates
}

// goalAlignment is all or nothing: 100 when the user has a goal set.
func goalAlignment(goal string) float64 {
	if strings.TrimSpace(goal) != "" {
		return 100
	}
	return 0
}

func buildProposalContext(b domain.BudgetResponse, profile domain.ProfileResponse, snapshot []*entities.PantryItem, today time.Time) domain.ProposalContext {
	pc := domain.ProposalContext{
		BudgetAmount: b.Amount,
		Currency:     b.Currency,
		Period:       b.Period,
		Pantry:       make([]domain.ProposalPantryItem, 0, len(snapshot)),
		Allergies:    profile.Allergies,
		Dietary:      profile.DietaryRestrictions,
		Disliked:     profile.DislikedIngredients,
		Goal:         profile.Goal,
	}
	for _, item := range snapshot {
		p := domain.ProposalPantryItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Unit:     item.Unit,
		}
		if item.ExpiryDate != nil {
			p.ExpiryDate = item.ExpiryDate.Format(domain.DateLayout)
		}
		if domain.IsExpiringSoon(item.ExpiryDate, today) {
			p.IsExpiringSoon = true
			pc.ExpiringNames = append(pc.ExpiringNames, item.Name)
		}
		pc.Pantry = append(pc.Pantry, p)
	}
	return pc
}

func (s *shoppingService) CreateDraftShoppingList(ctx context.Context, req domain.CreateShoppingListRequest, userID string) (domain.ShoppingListResponse, error) {
	if len(req.Items) == 0 {
		return domain.ShoppingListResponse{}, domain.ErrEmptyShoppingList
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.ShoppingListResponse{}, domain.ErrInvalidQuantity
		}
		if item.EstimatedPrice <= 0 {
			return domain.ShoppingListResponse{}, domain.ErrInvalidPrice
		}
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ShoppingListResponse{}, domain.ErrParseUUID
	}

	var budgetLimit float64
	activeBudget, err := s.budgetService.GetActiveBudget(ctx, userID)
	switch {
	case err == nil:
		budgetLimit = activeBudget.Amount
	case !errors.Is(err, domain.ErrNoActiveBudget):
		return domain.ShoppingListResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = domain.DefaultShoppingListName
	}

	list := newShoppingList(userUUID, name, domain.ShoppingListStatusDraft, budgetLimit, s.now())
	var total float64
	for _, item := range req.Items {
		priority := item.Priority
		if priority == "" {
			priority = domain.PriorityMedium
		}
		category := strings.ToLower(strings.TrimSpace(item.Category))
		if category == "" {
			category = "other"
		}
		list.Items = append(list.Items, &entities.ShoppingListItem{
			Name:           strings.TrimSpace(item.Name),
			Category:       category,
			Quantity:       item.Quantity,
			Unit:           strings.TrimSpace(item.Unit),
			EstimatedPrice: item.EstimatedPrice,
			Priority:       priority,
			Notes:          item.Notes,
		})
		total += item.EstimatedPrice
	}
	list.TotalEstimatedCost = domain.RoundMoney(total)

	if err := s.shoppingRepository.CreateShoppingList(ctx, list); err != nil {
		return domain.ShoppingListResponse{}, err
	}
	return ToShoppingListResponse(list), nil
}

func (s *shoppingService) GetShoppingLists(ctx context.Context, userID string, status string, page, limit int) ([]domain.ShoppingListResponse, int64, error) {
	if status != "" && status != "all" && !domain.IsShoppingListStatus(status) {
		return nil, 0, domain.ErrInvalidShoppingStatus
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	lists, count, err := s.shoppingRepository.GetShoppingLists(ctx, userID, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.ShoppingListResponse, 0, len(lists))
	for _, list := range lists {
		res = append(res, ToShoppingListResponse(list))
	}
	return res, count, nil
}

func (s *shoppingService) GetShoppingListByID(ctx context.Context, id string, userID string) (domain.ShoppingListResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ShoppingListResponse{}, domain.ErrParseUUID
	}
	list, err := s.shoppingRepository.GetShoppingListByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShoppingListResponse{}, domain.ErrShoppingListNotFound
		}
		return domain.ShoppingListResponse{}, err
	}
	return ToShoppingListResponse(list), nil
}

func newShoppingList(userID uuid.UUID, name string, status string, budgetLimit float64, now time.Time) *entities.ShoppingList {
	_, week := now.ISOWeek()
	return &entities.ShoppingList{
		UserID:      userID,
		Name:        name,
		Status:      status,
		BudgetLimit: budgetLimit,
		WeekNumber:  week,
		Month:       int(now.Month()),
		Year:        now.Year(),
	}
}

func ToShoppingListResponse(list *entities.ShoppingList) domain.ShoppingListResponse {
	items := make([]domain.ShoppingListItemResponse, 0, len(list.Items))
	for _, item := range list.Items {
		items = append(items, domain.ShoppingListItemResponse{
			ID:             item.ID.String(),
			Name:           item.Name,
			Category:       item.Category,
			Quantity:       item.Quantity,
			Unit:           item.Unit,
			EstimatedPrice: item.EstimatedPrice,
			ActualPrice:    item.ActualPrice,
			Priority:       item.Priority,
			Purchased:      item.Purchased,
			Reason:         item.Reason,
		})
	}

	return domain.ShoppingListResponse{
		ID:                  list.ID.String(),
		Name:                list.Name,
		Status:              list.Status,
		BudgetLimit:         list.BudgetLimit,
		TotalEstimatedCost:  list.TotalEstimatedCost,
		TotalActualCost:     list.TotalActualCost,
		PantryUtilization:   list.PantryUtilization,
		WasteReductionScore: list.WasteReductionScore,
		GoalAlignment:       list.GoalAlignment,
		WeekNumber:          list.WeekNumber,
		Month:               list.Month,
		Year:                list.Year,
		CreatedAt:           list.CreatedAt,
		CompletedAt:         list.CompletedAt,
		Items:               items,
	}
}
