package shopping

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"sort"
	"strings"
	"time"
)

type (
	AllocationInput struct {
		Candidates   []domain.Candidate
		BudgetAmount float64
		// Pantry is the user's active pantry at generation time.
		Pantry    []*entities.PantryItem
		Allergies []string
		Today     time.Time
	}

	Allocation struct {
		Items               []domain.Candidate
		TotalEstimatedCost  float64
		PantryUtilization   float64
		WasteReductionScore float64

		DroppedAllergen int
		DroppedCovered  int
		DroppedBudget   int
	}
)

// Allocate turns proposed candidates into the items of a shopping list:
// allergens go first, then whatever the pantry already covers, then the
// lowest priorities until the total fits the budget.
func Allocate(in AllocationInput) Allocation {
	var out Allocation

	safe := make([]domain.Candidate, 0, len(in.Candidates))
	for _, c := range in.Candidates {
		if domain.ContainsAllergen(c.Name, in.Allergies) {
			out.DroppedAllergen++
			continue
		}
		safe = append(safe, c)
	}

	coverage := pantryCoverage(in.Pantry)
	needed := make([]domain.Candidate, 0, len(safe))
	for _, c := range safe {
		key := coverageKey(c.Name, c.Unit)
		have := coverage[key]
		if have >= c.Quantity {
			coverage[key] = have - c.Quantity
			out.DroppedCovered++
			continue
		}
		if have > 0 {
			remaining := c.Quantity - have
			c.EstimatedPrice = domain.RoundMoney(c.EstimatedPrice * remaining / c.Quantity)
			c.Quantity = remaining
			coverage[key] = 0
		}
		needed = append(needed, c)
	}

	var total float64
	for _, c := range needed {
		total += c.EstimatedPrice
	}

	retained := needed
	if total > in.BudgetAmount {
		retained, total = trimToBudget(needed, in.BudgetAmount)
		out.DroppedBudget = len(needed) - len(retained)
	}

	out.Items = retained
	out.TotalEstimatedCost = domain.RoundMoney(total)
	out.PantryUtilization, out.WasteReductionScore = scores(retained, in.Pantry, in.Today)
	return out
}

// trimToBudget keeps the highest priorities first and stops at the first
// candidate that would push the total over the budget.
func trimToBudget(candidates []domain.Candidate, budget float64) ([]domain.Candidate, float64) {
	ordered := make([]domain.Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return domain.PriorityWeight(ordered[i].Priority) > domain.PriorityWeight(ordered[j].Priority)
	})

	var total float64
	kept := make([]domain.Candidate, 0, len(ordered))
	for _, c := range ordered {
		if total+c.EstimatedPrice > budget {
			break
		}
		total += c.EstimatedPrice
		kept = append(kept, c)
	}
	return kept, total
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// coverageKey matches pantry stock to candidates by name and unit. Units are
// never converted: 500 g of rice in the pantry does not cover 1 kg of rice.
func coverageKey(name, unit string) string {
	return normalizeName(name) + "|" + normalizeName(unit)
}

func pantryCoverage(pantry []*entities.PantryItem) map[string]float64 {
	coverage := make(map[string]float64)
	for _, item := range pantry {
		if item.Status != domain.PantryStatusActive || item.Quantity <= 0 {
			continue
		}
		coverage[coverageKey(item.Name, item.Unit)] += item.Quantity
	}
	return coverage
}

// scores computes pantry utilization and waste reduction as percentages of
// the retained items. Pantry utilization counts retained items whose name is
// already in the pantry.
func scores(retained []domain.Candidate, pantry []*entities.PantryItem, today time.Time) (float64, float64) {
	if len(retained) == 0 {
		return 0, 0
	}

	inPantry := make(map[string]bool)
	expiring := make(map[string]bool)
	for _, item := range pantry {
		name := normalizeName(item.Name)
		inPantry[name] = true
		if domain.IsExpiringSoon(item.ExpiryDate, today) {
			expiring[name] = true
		}
	}

	var utilized, rescued int
	for _, c := range retained {
		name := normalizeName(c.Name)
		if inPantry[name] {
			utilized++
		}
		if expiring[name] {
			rescued++
		}
	}

	n := float64(len(retained))
	return domain.RoundMoney(float64(utilized) / n * 100), domain.RoundMoney(float64(rescued) / n * 100)
}
