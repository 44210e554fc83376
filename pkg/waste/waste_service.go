package waste

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"Pantry-Planner/internal/metrics"
	"Pantry-Planner/pkg/database"
	"Pantry-Planner/pkg/pantry"
	"Pantry-Planner/pkg/user"
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	WasteService interface {
		Sweep(ctx context.Context, userID string) (domain.WasteSweepResponse, error)
		SweepAll(ctx context.Context) (domain.WasteSweepResponse, error)
		RecordWaste(ctx context.Context, pantryItemID string, req domain.RecordWasteRequest, userID string) (domain.WasteRecordResponse, error)
		GetWasteRecords(ctx context.Context, userID string, limit int) ([]domain.WasteRecordResponse, error)
		GetWasteAnalytics(ctx context.Context, userID string, limit int) (domain.WasteAnalyticsResponse, error)
	}

	wasteService struct {
		wasteRepository  WasteRepository
		pantryRepository pantry.PantryRepository
		userRepository   user.UserRepository
		transactor       database.Transactor
		now              func() time.Time
	}
)

func NewWasteService(
	wasteRepository WasteRepository,
	pantryRepository pantry.PantryRepository,
	userRepository user.UserRepository,
	transactor database.Transactor,
) WasteService {
	return &wasteService{
		wasteRepository:  wasteRepository,
		pantryRepository: pantryRepository,
		userRepository:   userRepository,
		transactor:       transactor,
		now:              time.Now,
	}
}

// Sweep evaluates every active item of the user once against a snapshot
// taken at the start. Each item is applied in its own savepoint; an item
// that fails is logged and skipped so the rest of the sweep still commits.
// The stale rule fires at most once per item per day, so running the sweep
// again on the same day changes nothing. Expired items leave the active set
// and need no such gate.
func (s *wasteService) Sweep(ctx context.Context, userID string) (domain.WasteSweepResponse, error) {
	res := domain.WasteSweepResponse{Records: []domain.WasteRecordResponse{}}
	today := domain.DateOf(s.now())

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		snapshot, err := s.pantryRepository.GetActivePantryItems(ctx, userID)
		if err != nil {
			return err
		}
		res.Scanned = len(snapshot)

		halved, err := s.wasteRepository.GetDetectedItemIDsOn(ctx, userID, today, domain.WasteReasonOverPurchased)
		if err != nil {
			return err
		}
		staleDone := make(map[string]bool, len(halved))
		for _, id := range halved {
			staleDone[id] = true
		}

		for _, item := range snapshot {
			decision := Evaluate(*item, today)
			if decision == nil {
				continue
			}
			if decision.Reason == domain.WasteReasonOverPurchased && staleDone[item.ID.String()] {
				continue
			}

			record, err := s.applyDecision(ctx, *item, *decision, today)
			if err != nil {
				res.Failed++
				metrics.WasteSweepFailures.Inc()
				log.Warnw("waste sweep skipped item", "user_id", userID, "pantry_item_id", item.ID.String(), "error", err)
				continue
			}

			switch decision.Reason {
			case domain.WasteReasonExpired:
				res.Expired++
			case domain.WasteReasonOverPurchased:
				res.Stale++
			}
			res.Records = append(res.Records, ToWasteRecordResponse(record))
		}
		return nil
	})
	if err != nil {
		return domain.WasteSweepResponse{}, err
	}

	log.Infow("waste sweep finished",
		"user_id", userID,
		"scanned", res.Scanned,
		"expired", res.Expired,
		"stale", res.Stale,
		"failed", res.Failed,
	)
	return res, nil
}

func (s *wasteService) applyDecision(ctx context.Context, item entities.PantryItem, d Decision, today time.Time) (*entities.FoodWasteRecord, error) {
	record := &entities.FoodWasteRecord{
		UserID:           item.UserID,
		PantryItemID:     item.ID,
		Name:             item.Name,
		OriginalQuantity: item.Quantity,
		QuantityWasted:   d.QuantityWasted,
		Unit:             item.Unit,
		Cost:             d.Cost,
		Reason:           d.Reason,
		PurchaseDate:     item.PurchaseDate,
		ExpiryDate:       item.ExpiryDate,
		WasteDate:        today,
		Detected:         true,
	}

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		applied, err := s.pantryRepository.ApplyAdjustment(ctx, item.ID.String(), pantry.Adjustment{
			ExpectedQuantity: item.Quantity,
			Quantity:         d.Quantity,
			Price:            d.Price,
			Status:           d.Status,
		})
		if err != nil {
			return err
		}
		if !applied {
			return domain.ErrPantryItemModified
		}
		return s.wasteRepository.CreateWasteRecord(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	metrics.WasteRecorded.WithLabelValues(d.Reason).Inc()
	return record, nil
}

// SweepAll runs Sweep for every user with active pantry items. A user whose
// sweep fails is counted as failed and the others still run.
func (s *wasteService) SweepAll(ctx context.Context) (domain.WasteSweepResponse, error) {
	total := domain.WasteSweepResponse{Records: []domain.WasteRecordResponse{}}

	userIDs, err := s.userRepository.GetUserIDsWithActivePantry(ctx)
	if err != nil {
		return total, err
	}

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		res, err := s.Sweep(ctx, userID)
		if err != nil {
			total.Failed++
			log.Errorw("waste sweep failed for user", "user_id", userID, "error", err)
			continue
		}
		total.Scanned += res.Scanned
		total.Expired += res.Expired
		total.Stale += res.Stale
		total.Failed += res.Failed
		total.Records = append(total.Records, res.Records...)
	}
	return total, nil
}

func (s *wasteService) RecordWaste(ctx context.Context, pantryItemID string, req domain.RecordWasteRequest, userID string) (domain.WasteRecordResponse, error) {
	if req.QuantityWasted <= 0 {
		return domain.WasteRecordResponse{}, domain.ErrInvalidQuantity
	}
	if !domain.IsWasteReason(req.Reason) {
		return domain.WasteRecordResponse{}, domain.ErrInvalidWasteReason
	}
	if _, err := uuid.Parse(pantryItemID); err != nil {
		return domain.WasteRecordResponse{}, domain.ErrParseUUID
	}

	today := domain.DateOf(s.now())
	var record *entities.FoodWasteRecord
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		item, err := s.pantryRepository.GetPantryItemForUpdate(ctx, pantryItemID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPantryItemNotFound
			}
			return err
		}
		if item.Status != domain.PantryStatusActive || item.Quantity <= 0 {
			return domain.ErrPantryItemNotActive
		}

		wasted := req.QuantityWasted
		if wasted > item.Quantity {
			wasted = item.Quantity
		}
		var cost float64
		if item.Price != nil {
			cost = domain.RoundMoney(*item.Price * wasted / item.Quantity)
		}

		record = &entities.FoodWasteRecord{
			UserID:           item.UserID,
			PantryItemID:     item.ID,
			Name:             item.Name,
			OriginalQuantity: item.Quantity,
			QuantityWasted:   wasted,
			Unit:             item.Unit,
			Cost:             cost,
			Reason:           req.Reason,
			ReasonDetails:    req.ReasonDetails,
			PurchaseDate:     item.PurchaseDate,
			ExpiryDate:       item.ExpiryDate,
			WasteDate:        today,
		}
		if err := s.wasteRepository.CreateWasteRecord(ctx, record); err != nil {
			return err
		}

		item.Price = pantry.ScalePrice(item.Price, item.Quantity, item.Quantity-wasted)
		item.Quantity -= wasted
		if item.Quantity <= 0 {
			item.Quantity = 0
			item.Status = domain.PantryStatusWasted
		}
		return s.pantryRepository.UpdatePantryItem(ctx, item)
	})
	if err != nil {
		return domain.WasteRecordResponse{}, err
	}

	metrics.WasteRecorded.WithLabelValues(req.Reason).Inc()
	return ToWasteRecordResponse(record), nil
}

func (s *wasteService) GetWasteRecords(ctx context.Context, userID string, limit int) ([]domain.WasteRecordResponse, error) {
	if limit < 1 {
		limit = domain.DefaultWasteRecordLimit
	}
	records, err := s.wasteRepository.GetWasteRecords(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	res := make([]domain.WasteRecordResponse, 0, len(records))
	for _, r := range records {
		res = append(res, ToWasteRecordResponse(r))
	}
	return res, nil
}

// GetWasteAnalytics summarizes the latest limit records.
func (s *wasteService) GetWasteAnalytics(ctx context.Context, userID string, limit int) (domain.WasteAnalyticsResponse, error) {
	records, err := s.GetWasteRecords(ctx, userID, limit)
	if err != nil {
		return domain.WasteAnalyticsResponse{}, err
	}

	res := domain.WasteAnalyticsResponse{
		CostByReason:  make(map[string]float64),
		RecentRecords: records,
	}
	for _, r := range records {
		res.TotalCost += r.Cost
		res.CostByReason[r.Reason] = domain.RoundMoney(res.CostByReason[r.Reason] + r.Cost)
	}
	res.TotalCost = domain.RoundMoney(res.TotalCost)
	return res, nil
}

func ToWasteRecordResponse(r *entities.FoodWasteRecord) domain.WasteRecordResponse {
	return domain.WasteRecordResponse{
		ID:               r.ID.String(),
		PantryItemID:     r.PantryItemID.String(),
		Name:             r.Name,
		OriginalQuantity: r.OriginalQuantity,
		QuantityWasted:   r.QuantityWasted,
		Unit:             r.Unit,
		Cost:             r.Cost,
		Reason:           r.Reason,
		ReasonDetails:    r.ReasonDetails,
		PurchaseDate:     r.PurchaseDate,
		ExpiryDate:       r.ExpiryDate,
		WasteDate:        r.WasteDate,
	}
}
