package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Profile is the slice of the identity provider's user record this service
// needs: a display name for responses and notification messages.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullname"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.Username != "" {
		return p.Username
	}
	return p.Email
}

type ProfilesRepo interface {
	GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*Profile, error)
}

func (su *SupabaseRepo) GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*Profile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID")
	}

	client := su.supabaseClient
	if accessToken != "" {
		authClient, err := su.GetAuthenticatedClient(accessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create authenticated client: %v", err)
		}
		client = authClient
	}

	raw, status, err := client.From(ProfileTable).
		Select("id,email,username,fullname,avatar_url,created_at", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%v", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to get profile by ID: %v", err)
	}

	// Supabase returns an array even for single results
	var profiles []Profile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile rows: %v", err)
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("profile not found")
	}

	return &profiles[0], nil
}
