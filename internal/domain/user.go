package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Loaded on demand; nil means not loaded, not "no favorites".
	FavoriteLocations []FavoriteLocation `json:"favorite_locations,omitempty"`

	ResetTokenHash    string     `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
}

// FavoriteLocation is a user-named point. The alert scheduler consumes these
// read-only.
type FavoriteLocation struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Point     GeoPoint  `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthUser is the identity the auth middleware places into the request
// context after token verification.
type AuthUser struct {
	ID      uuid.UUID
	Name    string
	Email   string
	IsAdmin bool
}
