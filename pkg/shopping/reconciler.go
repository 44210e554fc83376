package shopping

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"Pantry-Planner/internal/metrics"
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConfirmPurchase applies what the user actually bought. The item updates,
// the new pantry items, the list status and the budget sync commit together
// or not at all.
func (s *shoppingService) ConfirmPurchase(ctx context.Context, id string, req domain.ConfirmPurchaseRequest, userID string) (domain.ConfirmPurchaseResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ConfirmPurchaseResponse{}, domain.ErrParseUUID
	}
	if err := validatePurchase(req); err != nil {
		return domain.ConfirmPurchaseResponse{}, err
	}

	// Label images are read before any lock is taken.
	expiries, err := s.resolveExpiryDates(ctx, req.Items)
	if err != nil {
		return domain.ConfirmPurchaseResponse{}, err
	}

	now := s.now().UTC()
	today := domain.DateOf(now)

	var (
		list           *entities.ShoppingList
		pantryItems    []*entities.PantryItem
		skipped        []string
		totalSpent     float64
		budgetSnapshot *domain.BudgetResponse
	)

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.shoppingRepository.GetShoppingListForUpdate(ctx, id, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrShoppingListNotFound
			}
			return err
		}
		if !CanConfirm(locked.Status) {
			return domain.ErrShoppingListNotConfirmable
		}

		byID := make(map[string]*entities.ShoppingListItem, len(locked.Items))
		for _, item := range locked.Items {
			byID[item.ID.String()] = item
		}

		seen := make(map[string]bool, len(req.Items))
		var total float64
		for _, p := range req.Items {
			if seen[p.ShoppingListItemID] {
				continue
			}
			seen[p.ShoppingListItemID] = true

			item, ok := byID[p.ShoppingListItemID]
			if !ok {
				skipped = append(skipped, p.ShoppingListItemID)
				continue
			}

			price := item.EstimatedPrice
			if p.ActualPrice != nil {
				price = *p.ActualPrice
			}
			quantity := item.Quantity
			if p.PurchasedQuantity != nil {
				quantity = *p.PurchasedQuantity
			}

			item.Purchased = true
			item.ActualPrice = &price
			item.Quantity = quantity
			if err := s.shoppingRepository.UpdateShoppingListItem(ctx, item); err != nil {
				return err
			}
			total += price

			itemID := item.ID
			pantryPrice := price
			pantryItems = append(pantryItems, &entities.PantryItem{
				UserID:             locked.UserID,
				Name:               item.Name,
				Category:           item.Category,
				Quantity:           quantity,
				Unit:               item.Unit,
				PurchaseDate:       today,
				ExpiryDate:         expiries[p.ShoppingListItemID],
				Price:              &pantryPrice,
				Status:             domain.PantryStatusActive,
				Source:             domain.PantrySourceShoppingList,
				ShoppingListItemID: &itemID,
			})
		}

		if len(pantryItems) == 0 {
			return domain.ErrNoMatchingPurchaseItems
		}

		totalSpent = domain.RoundMoney(total)
		if req.TotalOverride != nil {
			totalSpent = *req.TotalOverride
		}

		if err := s.pantryRepository.AddPantryItems(ctx, pantryItems); err != nil {
			return err
		}

		confirmed, err := s.shoppingRepository.MarkConfirmed(ctx, id, ConfirmableStatuses(), totalSpent, now)
		if err != nil {
			return err
		}
		if !confirmed {
			return domain.ErrShoppingListNotConfirmable
		}
		locked.Status = domain.ShoppingListStatusConfirmed
		locked.TotalActualCost = &totalSpent
		locked.CompletedAt = &now

		budgetSnapshot, err = s.budgetService.SyncActiveBudget(ctx, userID)
		if err != nil {
			return err
		}

		list = locked
		return nil
	})
	if err != nil {
		return domain.ConfirmPurchaseResponse{}, err
	}

	metrics.PurchasesConfirmed.Inc()
	metrics.PantryItemsAdded.WithLabelValues(domain.PantrySourceShoppingList).Add(float64(len(pantryItems)))
	log.Infow("purchase confirmed",
		"user_id", userID,
		"list_id", id,
		"items", len(pantryItems),
		"skipped", len(skipped),
		"total_spent", totalSpent,
	)

	res := domain.ConfirmPurchaseResponse{
		ShoppingList:   ToShoppingListResponse(list),
		PantryItemIDs:  make([]string, 0, len(pantryItems)),
		TotalSpent:     totalSpent,
		SkippedItemIDs: skipped,
	}
	for _, item := range pantryItems {
		res.PantryItemIDs = append(res.PantryItemIDs, item.ID.String())
	}
	if budgetSnapshot != nil {
		remaining := budgetSnapshot.Remaining
		res.BudgetRemaining = &remaining
		s.budgetService.NotifyIfOverspent(ctx, *budgetSnapshot, userID)
	}
	return res, nil
}

func validatePurchase(req domain.ConfirmPurchaseRequest) error {
	if len(req.Items) == 0 {
		return domain.ErrEmptyPurchase
	}
	for _, p := range req.Items {
		if _, err := uuid.Parse(p.ShoppingListItemID); err != nil {
			return domain.ErrParseUUID
		}
		if p.ActualPrice != nil && *p.ActualPrice <= 0 {
			return domain.ErrInvalidPrice
		}
		if p.PurchasedQuantity != nil && *p.PurchasedQuantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		if p.ExpiryDate != "" {
			if _, err := domain.ParseDate(p.ExpiryDate); err != nil {
				return err
			}
		}
	}
	if req.TotalOverride != nil && *req.TotalOverride < 0 {
		return domain.ErrInvalidPrice
	}
	return nil
}

// resolveExpiryDates prefers a date typed by the user. Otherwise the label
// reader's date is used when it is confident enough; a failing reader only
// leaves the expiry empty.
func (s *shoppingService) resolveExpiryDates(ctx context.Context, items []domain.PurchasedItemRequest) (map[string]*time.Time, error) {
	expiries := make(map[string]*time.Time, len(items))
	for _, p := range items {
		if p.ExpiryDate != "" {
			expiry, err := domain.ParseDate(p.ExpiryDate)
			if err != nil {
				return nil, err
			}
			expiries[p.ShoppingListItemID] = &expiry
			continue
		}
		if p.LabelImage == "" || s.labelReader == nil {
			continue
		}

		image, err := base64.StdEncoding.DecodeString(p.LabelImage)
		if err != nil {
			return nil, domain.ErrInvalidLabelImage
		}
		detection, err := s.labelReader.Detect(ctx, image, p.LabelMimeType)
		if err != nil {
			log.Warnw("label reader failed, expiry left empty", "item_id", p.ShoppingListItemID, "error", err)
			continue
		}
		if detection.ExpiryDate == nil || detection.Confidence < s.labelMinConfidence {
			continue
		}
		expiry := domain.DateOf(*detection.ExpiryDate)
		expiries[p.ShoppingListItemID] = &expiry
	}
	return expiries, nil
}
