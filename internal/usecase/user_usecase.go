package usecase

import (
	"context"
	"strings"
	"time"

	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/apperror"
	"go-species-social-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type userUsecase struct {
	users       domain.UserRepository
	friendships domain.FriendshipRepository
	validate    *validator.Validate
}

func NewUserUsecase(users domain.UserRepository, friendships domain.FriendshipRepository, validate *validator.Validate) domain.UserUsecase {
	return &userUsecase{
		users:       users,
		friendships: friendships,
		validate:    validate,
	}
}

// GetProfile returns target as seen by viewer. Private profiles are visible
// to accepted friends only; a block hides the profile in both directions.
func (u *userUsecase) GetProfile(ctx context.Context, viewer, target domain.UserID) (*domain.User, error) {
	if !target.Valid() {
		return nil, apperror.NotFound("User not found")
	}
	user, err := u.users.FindByID(ctx, target)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	if viewer == target {
		return user, nil
	}

	pair, err := u.friendships.GetPair(ctx, viewer, target)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if pair != nil && pair.Status == domain.FriendshipBlocked {
		return nil, apperror.NotFound("User not found")
	}
	if user.IsPublic || (pair != nil && pair.Status == domain.FriendshipAccepted) {
		return user, nil
	}
	return nil, apperror.NotFound("User not found")
}

func (u *userUsecase) UpdateProfile(ctx context.Context, viewer domain.UserID, input domain.UpdateProfileInput) (*domain.User, error) {
	input.Handle = strings.ToLower(strings.TrimSpace(input.Handle))
	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; "))
	}

	user, err := u.users.FindByID(ctx, viewer)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}

	user.DisplayName = strings.TrimSpace(input.DisplayName)
	user.Handle = input.Handle
	user.ProfilePicture = strings.TrimSpace(input.ProfilePicture)
	user.Location = strings.TrimSpace(input.Location)
	user.Region = strings.TrimSpace(input.Region)
	user.FavoriteSpecies = cleanSpecies(input.FavoriteSpecies)
	user.IsPublic = input.IsPublic
	user.UpdatedAt = time.Now().UTC()

	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// cleanSpecies trims entries and drops blanks and case-insensitive repeats.
func cleanSpecies(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
