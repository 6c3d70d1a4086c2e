package helpers

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type CustomClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller, materialized once by the auth
// middleware and passed explicitly into every service operation. Nothing
// below the middleware reads auth state from ambient context.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

func (id Identity) IsOwner(userID uuid.UUID) bool {
	return id.ID == userID
}

// MetadataName digs a display name out of the token's user_metadata, used
// when the profile lookup is unavailable.
func (c *CustomClaims) MetadataName() string {
	for _, key := range []string{"full_name", "name", "username"} {
		if v, ok := c.UserMetadata[key].(string); ok && v != "" {
			return v
		}
	}
	return c.Email
}
