package pantry

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"Pantry-Planner/internal/metrics"
	"Pantry-Planner/pkg/database"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	PantryService interface {
		AddPantryItem(ctx context.Context, req domain.AddPantryItemRequest, userID string) (domain.PantryItemResponse, error)
		UpdatePantryItem(ctx context.Context, id string, req domain.UpdatePantryItemRequest, userID string) (domain.PantryItemResponse, error)
		RemovePantryItem(ctx context.Context, id string, userID string) error
		GetPantryItems(ctx context.Context, userID string, status string, page, limit int) ([]domain.PantryItemResponse, int64, error)
		GetPantryItemByID(ctx context.Context, id string, userID string) (domain.PantryItemResponse, error)
		ConsumePantryItem(ctx context.Context, id string, req domain.ConsumePantryItemRequest, userID string) (domain.PantryItemResponse, error)
		GetExpiringItems(ctx context.Context, userID string) ([]domain.ExpiringItemResponse, error)
		GetPantryValue(ctx context.Context, userID string) (domain.PantryValueResponse, error)
	}

	pantryService struct {
		pantryRepository PantryRepository
		transactor       database.Transactor
		now              func() time.Time
	}
)

func NewPantryService(pantryRepository PantryRepository, transactor database.Transactor) PantryService {
	return &pantryService{
		pantryRepository: pantryRepository,
		transactor:       transactor,
		now:              time.Now,
	}
}

func (s *pantryService) AddPantryItem(ctx context.Context, req domain.AddPantryItemRequest, userID string) (domain.PantryItemResponse, error) {
	if req.Quantity <= 0 {
		return domain.PantryItemResponse{}, domain.ErrInvalidQuantity
	}
	if req.Price != nil && *req.Price <= 0 {
		return domain.PantryItemResponse{}, domain.ErrInvalidPrice
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.PantryItemResponse{}, domain.ErrParseUUID
	}

	purchaseDate := domain.DateOf(s.now())
	if req.PurchaseDate != "" {
		if purchaseDate, err = domain.ParseDate(req.PurchaseDate); err != nil {
			return domain.PantryItemResponse{}, err
		}
	}

	var expiryDate *time.Time
	if req.ExpiryDate != "" {
		parsed, err := domain.ParseDate(req.ExpiryDate)
		if err != nil {
			return domain.PantryItemResponse{}, err
		}
		expiryDate = &parsed
	}

	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = "other"
	}

	item := &entities.PantryItem{
		UserID:       userUUID,
		Name:         strings.TrimSpace(req.Name),
		Category:     category,
		Quantity:     req.Quantity,
		Unit:         strings.TrimSpace(req.Unit),
		PurchaseDate: purchaseDate,
		ExpiryDate:   expiryDate,
		Price:        req.Price,
		Status:       domain.PantryStatusActive,
		Source:       domain.PantrySourceManual,
		Notes:        req.Notes,
	}

	if err := s.pantryRepository.AddPantryItem(ctx, item); err != nil {
		return domain.PantryItemResponse{}, err
	}
	metrics.PantryItemsAdded.WithLabelValues(domain.PantrySourceManual).Inc()

	return ToPantryItemResponse(item), nil
}

func (s *pantryService) UpdatePantryItem(ctx context.Context, id string, req domain.UpdatePantryItemRequest, userID string) (domain.PantryItemResponse, error) {
	var updated *entities.PantryItem
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		item, err := s.lockOwnedItem(ctx, id, userID)
		if err != nil {
			return err
		}

		if req.Name != "" {
			item.Name = strings.TrimSpace(req.Name)
		}
		if req.Category != "" {
			item.Category = strings.ToLower(strings.TrimSpace(req.Category))
		}
		if req.Unit != "" {
			item.Unit = strings.TrimSpace(req.Unit)
		}
		if req.Notes != "" {
			item.Notes = req.Notes
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				return domain.ErrInvalidPrice
			}
			item.Price = req.Price
		}
		if req.ExpiryDate != "" {
			expiry, err := domain.ParseDate(req.ExpiryDate)
			if err != nil {
				return err
			}
			item.ExpiryDate = &expiry
		}
		if req.Quantity != nil {
			if *req.Quantity < 0 {
				return domain.ErrInvalidQuantity
			}
			item.Quantity = *req.Quantity
			if item.Quantity == 0 && item.Status == domain.PantryStatusActive {
				item.Status = domain.PantryStatusConsumed
			}
		}

		if err := s.pantryRepository.UpdatePantryItem(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return domain.PantryItemResponse{}, err
	}

	return ToPantryItemResponse(updated), nil
}

// RemovePantryItem never deletes the row: the item is consumed in full so
// its history stays available to the waste and budget reports.
func (s *pantryService) RemovePantryItem(ctx context.Context, id string, userID string) error {
	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		item, err := s.lockOwnedItem(ctx, id, userID)
		if err != nil {
			return err
		}
		if item.Status != domain.PantryStatusActive {
			return domain.ErrPantryItemNotActive
		}

		record := &entities.ConsumptionRecord{
			UserID:       item.UserID,
			PantryItemID: item.ID,
			QuantityUsed: item.Quantity,
			DateConsumed: domain.DateOf(s.now()),
			Notes:        "removed from pantry",
		}
		if err := s.pantryRepository.AddConsumptionRecord(ctx, record); err != nil {
			return err
		}

		item.Quantity = 0
		item.Status = domain.PantryStatusConsumed
		return s.pantryRepository.UpdatePantryItem(ctx, item)
	})
}

func (s *pantryService) GetPantryItems(ctx context.Context, userID string, status string, page, limit int) ([]domain.PantryItemResponse, int64, error) {
	if status != "" && status != "all" && !domain.IsPantryStatus(status) {
		return nil, 0, domain.ErrInvalidPantryStatus
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	items, count, err := s.pantryRepository.GetPantryItems(ctx, userID, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.PantryItemResponse, 0, len(items))
	for _, item := range items {
		res = append(res, ToPantryItemResponse(item))
	}
	return res, count, nil
}

func (s *pantryService) GetPantryItemByID(ctx context.Context, id string, userID string) (domain.PantryItemResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.PantryItemResponse{}, domain.ErrParseUUID
	}
	item, err := s.pantryRepository.GetPantryItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PantryItemResponse{}, domain.ErrPantryItemNotFound
		}
		return domain.PantryItemResponse{}, err
	}
	if item.UserID.String() != userID {
		return domain.PantryItemResponse{}, domain.ErrPantryItemNotFound
	}
	return ToPantryItemResponse(item), nil
}

func (s *pantryService) ConsumePantryItem(ctx context.Context, id string, req domain.ConsumePantryItemRequest, userID string) (domain.PantryItemResponse, error) {
	if req.QuantityUsed <= 0 {
		return domain.PantryItemResponse{}, domain.ErrInvalidQuantity
	}

	var updated *entities.PantryItem
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		item, err := s.lockOwnedItem(ctx, id, userID)
		if err != nil {
			return err
		}
		if item.Status != domain.PantryStatusActive {
			return domain.ErrPantryItemNotActive
		}

		used := req.QuantityUsed
		if used > item.Quantity {
			used = item.Quantity
		}

		record := &entities.ConsumptionRecord{
			UserID:       item.UserID,
			PantryItemID: item.ID,
			QuantityUsed: used,
			DateConsumed: domain.DateOf(s.now()),
			Notes:        req.Notes,
		}
		if err := s.pantryRepository.AddConsumptionRecord(ctx, record); err != nil {
			return err
		}

		item.Price = ScalePrice(item.Price, item.Quantity, item.Quantity-used)
		item.Quantity -= used
		if item.Quantity <= 0 {
			item.Quantity = 0
			item.Status = domain.PantryStatusConsumed
		}
		if err := s.pantryRepository.UpdatePantryItem(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return domain.PantryItemResponse{}, err
	}

	return ToPantryItemResponse(updated), nil
}

func (s *pantryService) GetExpiringItems(ctx context.Context, userID string) ([]domain.ExpiringItemResponse, error) {
	today := domain.DateOf(s.now())
	items, err := s.pantryRepository.GetExpiringPantryItems(ctx, userID, today.AddDate(0, 0, domain.ExpiringSoonDays))
	if err != nil {
		return nil, err
	}

	res := make([]domain.ExpiringItemResponse, 0, len(items))
	for _, item := range items {
		res = append(res, domain.ExpiringItemResponse{
			ID:              item.ID.String(),
			Name:            item.Name,
			ExpiryDate:      *item.ExpiryDate,
			Quantity:        item.Quantity,
			Unit:            item.Unit,
			DaysUntilExpiry: domain.DaysBetween(today, *item.ExpiryDate),
		})
	}
	return res, nil
}

func (s *pantryService) GetPantryValue(ctx context.Context, userID string) (domain.PantryValueResponse, error) {
	items, err := s.pantryRepository.GetActivePantryItems(ctx, userID)
	if err != nil {
		return domain.PantryValueResponse{}, err
	}

	var value float64
	for _, item := range items {
		if item.Price != nil {
			value += *item.Price
		}
	}
	return domain.PantryValueResponse{
		ActiveItems:  len(items),
		CurrentValue: domain.RoundMoney(value),
	}, nil
}

func (s *pantryService) lockOwnedItem(ctx context.Context, id string, userID string) (*entities.PantryItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrParseUUID
	}
	item, err := s.pantryRepository.GetPantryItemForUpdate(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPantryItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func ToPantryItemResponse(item *entities.PantryItem) domain.PantryItemResponse {
	return domain.PantryItemResponse{
		ID:           item.ID.String(),
		Name:         item.Name,
		Category:     item.Category,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		PurchaseDate: item.PurchaseDate,
		ExpiryDate:   item.ExpiryDate,
		Price:        item.Price,
		Status:       item.Status,
		Source:       item.Source,
		CreatedAt:    item.CreatedAt,
	}
}

// ScalePrice keeps an item's price proportional to what is left of it.
func ScalePrice(price *float64, from, to float64) *float64 {
	if price == nil || from <= 0 {
		return price
	}
	scaled := domain.RoundMoney(*price * to / from)
	return &scaled
}
