package user

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type (
	UserService interface {
		GetProfile(ctx context.Context, userID string) (domain.ProfileResponse, error)
		UpdatePreferences(ctx context.Context, req domain.UpdatePreferencesRequest, userID string) (domain.ProfileResponse, error)
		GetAllergies(ctx context.Context, userID string) ([]string, error)
	}

	userService struct {
		userRepository UserRepository
	}
)

func NewUserService(userRepository UserRepository) UserService {
	return &userService{userRepository: userRepository}
}

func (s *userService) getUser(ctx context.Context, userID string) (*entities.User, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (domain.ProfileResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.ProfileResponse{}, err
	}
	return toProfileResponse(user), nil
}

func (s *userService) UpdatePreferences(ctx context.Context, req domain.UpdatePreferencesRequest, userID string) (domain.ProfileResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.ProfileResponse{}, err
	}

	if req.Allergies != nil {
		user.Allergies = strings.Join(domain.SplitTerms(*req.Allergies), ", ")
	}
	if req.DietaryRestrictions != nil {
		user.DietaryRestrictions = strings.TrimSpace(*req.DietaryRestrictions)
	}
	if req.DislikedIngredients != nil {
		user.DislikedIngredients = strings.TrimSpace(*req.DislikedIngredients)
	}
	if req.Goal != nil {
		user.Goal = strings.TrimSpace(*req.Goal)
	}

	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return domain.ProfileResponse{}, err
	}
	return toProfileResponse(user), nil
}

func (s *userService) GetAllergies(ctx context.Context, userID string) ([]string, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.SplitTerms(user.Allergies), nil
}

func toProfileResponse(user *entities.User) domain.ProfileResponse {
	return domain.ProfileResponse{
		ID:                  user.ID.String(),
		Name:                user.Name,
		Email:               user.Email,
		Allergies:           domain.SplitTerms(user.Allergies),
		DietaryRestrictions: user.DietaryRestrictions,
		DislikedIngredients: user.DislikedIngredients,
		Goal:                user.Goal,
	}
}
