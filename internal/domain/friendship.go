package domain

import (
	"context"
	"time"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

func (s FriendshipStatus) Valid() bool {
	switch s {
	case FriendshipPending, FriendshipAccepted, FriendshipDeclined, FriendshipBlocked:
		return true
	}
	return false
}

// Friendship is stored directionally but means the same thing from both
// sides. Requester/Addressee are populated when the store joined the
// profile rows and nil otherwise.
type Friendship struct {
	ID          string           `json:"id"`
	RequesterID UserID           `json:"requester_id"`
	AddresseeID UserID           `json:"addressee_id"`
	Requester   *User            `json:"-"`
	Addressee   *User            `json:"-"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

func (f *Friendship) Involves(id UserID) bool {
	return f.RequesterID == id || f.AddresseeID == id
}

// Counterpart returns the participant that is not id.
func (f *Friendship) Counterpart(id UserID) (UserID, bool) {
	switch id {
	case f.RequesterID:
		return f.AddresseeID, true
	case f.AddresseeID:
		return f.RequesterID, true
	}
	return "", false
}

// Profile returns the populated profile for participant id, if any.
func (f *Friendship) Profile(id UserID) *User {
	switch id {
	case f.RequesterID:
		return f.Requester
	case f.AddresseeID:
		return f.Addressee
	}
	return nil
}

type FriendRequestInput struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

type FriendshipRepository interface {
	AcceptedForUser(ctx context.Context, id UserID) ([]*Friendship, error)
	// AllForUser returns relationships of any status.
	AllForUser(ctx context.Context, id UserID) ([]*Friendship, error)
	// AcceptedForUsers returns accepted friendships touching any of ids in
	// a single query; an empty ids slice issues no query.
	AcceptedForUsers(ctx context.Context, ids []UserID) ([]*Friendship, error)
	PendingForAddressee(ctx context.Context, id UserID) ([]*Friendship, error)
	GetByID(ctx context.Context, id string) (*Friendship, error)
	// GetPair returns the friendship between a and b in either direction.
	GetPair(ctx context.Context, a, b UserID) (*Friendship, error)
	Create(ctx context.Context, f *Friendship) error
	Update(ctx context.Context, f *Friendship) error
	Delete(ctx context.Context, id string) error
}

type FriendshipUsecase interface {
	SendRequest(ctx context.Context, requester, addressee UserID) (*Friendship, error)
	Respond(ctx context.Context, actor UserID, friendshipID string, accept bool) (*Friendship, error)
	Block(ctx context.Context, actor, target UserID) (*Friendship, error)
	Remove(ctx context.Context, actor UserID, friendshipID string) error
	ListFriends(ctx context.Context, id UserID) ([]PublicProfile, error)
	ListPending(ctx context.Context, id UserID) ([]PendingRequest, error)
}

type PendingRequest struct {
	FriendshipID string        `json:"friendship_id"`
	From         PublicProfile `json:"from"`
	CreatedAt    time.Time     `json:"created_at"`
}
