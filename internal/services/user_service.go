package services

import (
	"context"
	"fmt"

	"gatherly/internal/models"

	"github.com/google/uuid"
)

// UserService is the thin seam to the identity provider: the auth middleware
// uses it to resolve a display name for the authenticated user.
type UserService struct {
	profilesRepo models.ProfilesRepo
}

func NewUserService(profilesRepo models.ProfilesRepo) *UserService {
	return &UserService{
		profilesRepo: profilesRepo,
	}
}

func (us *UserService) GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*models.Profile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}
	profile, err := us.profilesRepo.GetProfile(ctx, id, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %v", err)
	}
	return profile, nil
}
