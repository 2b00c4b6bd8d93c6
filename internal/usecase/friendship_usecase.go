package usecase

import (
	"context"
	"sort"
	"time"

	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/apperror"
	"go-species-social-backend/pkg/security"

	"github.com/google/uuid"
)

type friendshipUsecase struct {
	friendships domain.FriendshipRepository
	users       domain.UserRepository
	now         func() time.Time
}

func NewFriendshipUsecase(friendships domain.FriendshipRepository, users domain.UserRepository) domain.FriendshipUsecase {
	return &friendshipUsecase{
		friendships: friendships,
		users:       users,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SendRequest creates a pending request. If the other side already asked
// us, the request is accepted instead.
func (u *friendshipUsecase) SendRequest(ctx context.Context, requester, addressee domain.UserID) (*domain.Friendship, error) {
	if requester == addressee {
		return nil, apperror.BadRequest("You cannot send a friend request to yourself")
	}
	if err := u.ensureUserExists(ctx, addressee); err != nil {
		return nil, err
	}

	existing, err := u.friendships.GetPair(ctx, requester, addressee)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	now := u.now()

	if existing == nil {
		f := &domain.Friendship{
			ID:          uuid.NewString(),
			RequesterID: requester,
			AddresseeID: addressee,
			Status:      domain.FriendshipPending,
			CreatedAt:   now,
		}
		if err := u.friendships.Create(ctx, f); err != nil {
			return nil, err
		}
		return f, nil
	}

	switch existing.Status {
	case domain.FriendshipPending:
		if existing.RequesterID != addressee {
			return nil, apperror.Conflict("Friend request already sent")
		}
		// Mutual request: they asked first
		existing.Status = domain.FriendshipAccepted
		existing.RespondedAt = &now
	case domain.FriendshipAccepted:
		return nil, apperror.Conflict("You are already friends")
	case domain.FriendshipBlocked:
		return nil, apperror.Forbidden("You cannot send a friend request to this user")
	case domain.FriendshipDeclined:
		existing.RequesterID = requester
		existing.AddresseeID = addressee
		existing.Status = domain.FriendshipPending
		existing.CreatedAt = now
		existing.RespondedAt = nil
	}

	if err := u.friendships.Update(ctx, existing); err != nil {
		return nil, apperror.Internal(err)
	}
	return existing, nil
}

func (u *friendshipUsecase) Respond(ctx context.Context, actor domain.UserID, friendshipID string, accept bool) (*domain.Friendship, error) {
	if _, err := uuid.Parse(friendshipID); err != nil {
		return nil, apperror.NotFound("Friend request not found")
	}
	f, err := u.friendships.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if f == nil || !f.Involves(actor) {
		return nil, apperror.NotFound("Friend request not found")
	}
	if f.AddresseeID != actor {
		return nil, apperror.Forbidden("Only the recipient can respond to a friend request")
	}
	if f.Status != domain.FriendshipPending {
		return nil, apperror.Conflict("Friend request is no longer pending")
	}

	now := u.now()
	f.RespondedAt = &now
	f.Status = domain.FriendshipDeclined
	if accept {
		f.Status = domain.FriendshipAccepted
	}
	if err := u.friendships.Update(ctx, f); err != nil {
		return nil, apperror.Internal(err)
	}
	return f, nil
}

// Block overwrites any existing relationship; the blocker becomes the requester.
func (u *friendshipUsecase) Block(ctx context.Context, actor, target domain.UserID) (*domain.Friendship, error) {
	if actor == target {
		return nil, apperror.BadRequest("You cannot block yourself")
	}
	if err := u.ensureUserExists(ctx, target); err != nil {
		return nil, err
	}

	existing, err := u.friendships.GetPair(ctx, actor, target)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	now := u.now()

	if existing == nil {
		existing = &domain.Friendship{
			ID:          uuid.NewString(),
			RequesterID: actor,
			AddresseeID: target,
			Status:      domain.FriendshipBlocked,
			CreatedAt:   now,
			RespondedAt: &now,
		}
		if err := u.friendships.Create(ctx, existing); err != nil {
			return nil, err
		}
	} else {
		existing.RequesterID = actor
		existing.AddresseeID = target
		existing.Status = domain.FriendshipBlocked
		existing.RespondedAt = &now
		if err := u.friendships.Update(ctx, existing); err != nil {
			return nil, apperror.Internal(err)
		}
	}

	security.DefaultLogger().LogUserBlocked(ctx, actor.String(), target.String(), requestIDFrom(ctx))
	return existing, nil
}

// Remove deletes a relationship. A block can only be lifted by the blocker;
// the blocked side sees it as missing.
func (u *friendshipUsecase) Remove(ctx context.Context, actor domain.UserID, friendshipID string) error {
	if _, err := uuid.Parse(friendshipID); err != nil {
		return apperror.NotFound("Friendship not found")
	}
	f, err := u.friendships.GetByID(ctx, friendshipID)
	if err != nil {
		return apperror.Internal(err)
	}
	if f == nil || !f.Involves(actor) {
		return apperror.NotFound("Friendship not found")
	}
	if f.Status == domain.FriendshipBlocked && f.RequesterID != actor {
		return apperror.NotFound("Friendship not found")
	}
	if err := u.friendships.Delete(ctx, f.ID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (u *friendshipUsecase) ListFriends(ctx context.Context, id domain.UserID) ([]domain.PublicProfile, error) {
	accepted, err := u.friendships.AcceptedForUser(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	docs := make(map[domain.UserID]*domain.User, len(accepted))
	for _, f := range accepted {
		if other, ok := f.Counterpart(id); ok && other != id {
			if docs[other] == nil {
				docs[other] = f.Profile(other)
			}
		}
	}
	if err := u.fillProfiles(ctx, docs); err != nil {
		return nil, err
	}

	out := make([]domain.PublicProfile, 0, len(docs))
	for _, doc := range docs {
		if doc != nil {
			out = append(out, doc.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Handle != out[j].Handle {
			return out[i].Handle < out[j].Handle
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (u *friendshipUsecase) ListPending(ctx context.Context, id domain.UserID) ([]domain.PendingRequest, error) {
	pending, err := u.friendships.PendingForAddressee(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	docs := make(map[domain.UserID]*domain.User, len(pending))
	for _, f := range pending {
		if docs[f.RequesterID] == nil {
			docs[f.RequesterID] = f.Requester
		}
	}
	if err := u.fillProfiles(ctx, docs); err != nil {
		return nil, err
	}

	out := make([]domain.PendingRequest, 0, len(pending))
	for _, f := range pending {
		doc := docs[f.RequesterID]
		if doc == nil {
			continue
		}
		out = append(out, domain.PendingRequest{
			FriendshipID: f.ID,
			From:         doc.Summary(),
			CreatedAt:    f.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// fillProfiles resolves nil entries of docs with one batched lookup.
func (u *friendshipUsecase) fillProfiles(ctx context.Context, docs map[domain.UserID]*domain.User) error {
	var missing []domain.UserID
	for id, doc := range docs {
		if doc == nil {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	found, err := u.users.FindByFilter(ctx, domain.UserFilter{IDs: missing})
	if err != nil {
		return apperror.Internal(err)
	}
	for _, doc := range found {
		if doc != nil {
			docs[doc.ID] = doc
		}
	}
	return nil
}

func (u *friendshipUsecase) ensureUserExists(ctx context.Context, id domain.UserID) error {
	if !id.Valid() {
		return apperror.BadRequest("Invalid user id")
	}
	target, err := u.users.FindByID(ctx, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if target == nil {
		return apperror.NotFound("User not found")
	}
	return nil
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(domain.KeyRequestID).(string)
	return id
}
