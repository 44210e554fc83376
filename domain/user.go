package domain

import "strings"

var (
	MessageSuccessGetProfile    = "profile retrieved successfully"
	MessageSuccessUpdateProfile = "profile updated successfully"

	MessageFailedGetProfile    = "failed to retrieve profile"
	MessageFailedUpdateProfile = "failed to update profile"
)

type (
	UpdatePreferencesRequest struct {
		Allergies           *string `json:"allergies" validate:"omitempty,max=1000"`
		DietaryRestrictions *string `json:"dietary_restrictions" validate:"omitempty,max=1000"`
		DislikedIngredients *string `json:"disliked_ingredients" validate:"omitempty,max=1000"`
		Goal                *string `json:"goal" validate:"omitempty,max=100"`
	}

	ProfileResponse struct {
		ID                  string   `json:"id"`
		Name                string   `json:"name"`
		Email               string   `json:"email"`
		Allergies           []string `json:"allergies"`
		DietaryRestrictions string   `json:"dietary_restrictions,omitempty"`
		DislikedIngredients string   `json:"disliked_ingredients,omitempty"`
		Goal                string   `json:"goal,omitempty"`
	}
)

// SplitTerms splits a comma separated preference field into lower-cased,
// trimmed, non-empty terms.
func SplitTerms(s string) []string {
	terms := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		term := strings.ToLower(strings.TrimSpace(part))
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// ContainsAllergen matches allergy terms as case-insensitive substrings of
// name, so "peanut" also catches "Peanut Butter".
func ContainsAllergen(name string, allergies []string) bool {
	lower := strings.ToLower(name)
	for _, term := range allergies {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
