package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserID identifies a user across the store, tokens and URLs.
type UserID string

func (id UserID) String() string { return string(id) }

// Valid reports whether the id is a well-formed UUID.
func (id UserID) Valid() bool {
	_, err := uuid.Parse(string(id))
	return err == nil
}

type User struct {
	ID              UserID    `json:"id"`
	DisplayName     string    `json:"display_name"`
	Handle          string    `json:"handle"`
	ProfilePicture  string    `json:"profile_picture,omitempty"`
	Location        string    `json:"location,omitempty"`
	Region          string    `json:"region,omitempty"`
	FavoriteSpecies []string  `json:"favorite_species"`
	IsPublic        bool      `json:"is_public"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PublicProfile is the subset of a user that other users may see.
type PublicProfile struct {
	ID             UserID `json:"id"`
	DisplayName    string `json:"display_name"`
	Handle         string `json:"handle"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Region         string `json:"region,omitempty"`
}

func (u *User) Summary() PublicProfile {
	return PublicProfile{
		ID:             u.ID,
		DisplayName:    u.DisplayName,
		Handle:         u.Handle,
		ProfilePicture: u.ProfilePicture,
		Region:         u.Region,
	}
}

// UserFilter selects users for batched lookups. An empty IDs slice matches
// nothing; Limit <= 0 means no limit.
type UserFilter struct {
	IDs        []UserID
	PublicOnly bool
	Limit      int
}

type UpdateProfileInput struct {
	DisplayName     string   `json:"display_name" validate:"required,min=1,max=80,no_emoji"`
	Handle          string   `json:"handle" validate:"required,handle"`
	ProfilePicture  string   `json:"profile_picture" validate:"omitempty,url"`
	Location        string   `json:"location" validate:"max=200"`
	Region          string   `json:"region" validate:"max=120"`
	FavoriteSpecies []string `json:"favorite_species" validate:"max=50,dive,max=120,species_name"`
	IsPublic        bool     `json:"is_public"`
}

type UserRepository interface {
	// FindByID returns (nil, nil) when no user has the id.
	FindByID(ctx context.Context, id UserID) (*User, error)
	FindByFilter(ctx context.Context, filter UserFilter) ([]*User, error)
	Update(ctx context.Context, user *User) error
}

type UserUsecase interface {
	GetProfile(ctx context.Context, viewer, target UserID) (*User, error)
	UpdateProfile(ctx context.Context, viewer UserID, input UpdateProfileInput) (*User, error)
}
