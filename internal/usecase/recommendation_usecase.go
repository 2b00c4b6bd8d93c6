package usecase

import (
	"context"
	"sort"
	"time"

	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/apperror"
	"go-species-social-backend/pkg/logger"
	"go-species-social-backend/pkg/metrics"
)

type recommendationUsecase struct {
	users       domain.UserRepository
	friendships domain.FriendshipRepository
	geocoder    domain.Geocoder
}

func NewRecommendationUsecase(users domain.UserRepository, friendships domain.FriendshipRepository, geocoder domain.Geocoder) domain.RecommendationUsecase {
	return &recommendationUsecase{
		users:       users,
		friendships: friendships,
		geocoder:    geocoder,
	}
}

// candidateAggregate is the per-request working state for one candidate.
type candidateAggregate struct {
	id              domain.UserID
	mutualFriendIDs map[domain.UserID]struct{}
	sharedSpecies   []string
	locationMatch   bool
	distanceKm      *float64
	doc             *domain.User
	score           float64
}

func (u *recommendationUsecase) ComputeRecommendations(ctx context.Context, currentUserID domain.UserID, limit int) ([]domain.RecommendationEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	}()

	if limit < 1 {
		limit = DefaultRecommendationLimit
	}

	// 1. Current user: the only NotFound exit
	me, err := u.users.FindByID(ctx, currentUserID)
	if err != nil {
		return nil, err
	}
	if me == nil {
		return nil, apperror.NotFound("User not found")
	}

	// 2. Friend set, keeping any profile the store populated
	accepted, err := u.friendships.AcceptedForUser(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	friends := make(map[domain.UserID]*domain.User, len(accepted))
	friendIDs := make([]domain.UserID, 0, len(accepted))
	for _, f := range accepted {
		other, ok := f.Counterpart(me.ID)
		if !ok || other == me.ID {
			continue
		}
		doc, seen := friends[other]
		if !seen {
			friendIDs = append(friendIDs, other)
		}
		if doc == nil {
			friends[other] = f.Profile(other)
		}
	}
	if len(friendIDs) == 0 {
		metrics.RecommendationCandidates.Observe(0)
		return []domain.RecommendationEntry{}, nil
	}

	// 3. Exclusion set: anyone related to me in any status
	relationships, err := u.friendships.AllForUser(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	excluded := make(map[domain.UserID]struct{}, len(relationships)+len(friendIDs))
	for _, id := range friendIDs {
		excluded[id] = struct{}{}
	}
	for _, f := range relationships {
		if other, ok := f.Counterpart(me.ID); ok {
			excluded[other] = struct{}{}
		}
	}

	// 4. Friend-of-friend edges in one batch
	edges, err := u.friendships.AcceptedForUsers(ctx, friendIDs)
	if err != nil {
		return nil, err
	}

	// 5/6. Aggregate candidates reached through each friend
	candidates := make(map[domain.UserID]*candidateAggregate)
	var order []domain.UserID
	for _, edge := range edges {
		for _, via := range [2]domain.UserID{edge.RequesterID, edge.AddresseeID} {
			if _, isFriend := friends[via]; !isFriend {
				continue
			}
			other, _ := edge.Counterpart(via)
			if other == me.ID || other == via {
				continue
			}
			if _, skip := excluded[other]; skip {
				continue
			}
			agg, ok := candidates[other]
			if !ok {
				agg = &candidateAggregate{id: other, mutualFriendIDs: make(map[domain.UserID]struct{})}
				candidates[other] = agg
				order = append(order, other)
			}
			agg.mutualFriendIDs[via] = struct{}{}
			if agg.doc == nil {
				agg.doc = edge.Profile(other)
			}
			if friends[via] == nil {
				friends[via] = edge.Profile(via)
			}
		}
	}
	metrics.RecommendationCandidates.Observe(float64(len(candidates)))
	if len(candidates) == 0 {
		return []domain.RecommendationEntry{}, nil
	}

	// 7. One batched lookup for every profile still missing
	if err := u.resolveMissingProfiles(ctx, order, candidates, friends); err != nil {
		return nil, err
	}

	// 8. Signals
	cache := newGeocodeCache(u.geocoder)
	myAddress := userAddress(me)
	if myAddress != "" {
		var addresses []string
		for _, id := range order {
			if agg := candidates[id]; agg.doc != nil {
				if addr := userAddress(agg.doc); addr != "" {
					addresses = append(addresses, addr)
				}
			}
		}
		if len(addresses) > 0 {
			cache.Prefetch(ctx, append(addresses, myAddress))
		} else {
			myAddress = ""
		}
	}

	scored := make([]*candidateAggregate, 0, len(candidates))
	for _, id := range order {
		agg := candidates[id]
		if agg.doc == nil {
			logger.L().Debug("Dropping candidate without a resolvable profile", "candidate_id", id)
			continue
		}
		agg.sharedSpecies = sharedSpecies(me.FavoriteSpecies, agg.doc.FavoriteSpecies)
		agg.locationMatch = regionsMatch(me.Region, agg.doc.Region)
		if myAddress != "" {
			agg.distanceKm = cache.DistanceKm(ctx, myAddress, userAddress(agg.doc))
		}

		// 9/10. Score; nothing discoverable means no recommendation
		agg.score = recommendationScore(len(agg.mutualFriendIDs), len(agg.sharedSpecies), agg.locationMatch, agg.distanceKm)
		if agg.score == 0 {
			continue
		}
		scored = append(scored, agg)
	}

	// 11. Deterministic ordering
	sort.Slice(scored, func(i, j int) bool {
		return rankBefore(scored[i], scored[j])
	})

	// 12. Truncate and shape
	if len(scored) > limit {
		scored = scored[:limit]
	}
	entries := make([]domain.RecommendationEntry, 0, len(scored))
	for _, agg := range scored {
		entries = append(entries, domain.RecommendationEntry{
			Candidate:     agg.doc.Summary(),
			MutualFriends: mutualFriendSummaries(agg.mutualFriendIDs, friends),
			SharedSpecies: nonNilStrings(agg.sharedSpecies),
			LocationMatch: agg.locationMatch,
			DistanceKm:    agg.distanceKm,
			Score:         agg.score,
		})
	}

	logger.L().Debug("Computed recommendations",
		"user_id", me.ID,
		"friends", len(friendIDs),
		"candidates", len(candidates),
		"returned", len(entries),
	)
	return entries, nil
}

// resolveMissingProfiles loads candidate and mutual-friend profiles the
// friendship queries did not populate, with a single store call.
func (u *recommendationUsecase) resolveMissingProfiles(ctx context.Context, order []domain.UserID, candidates map[domain.UserID]*candidateAggregate, friends map[domain.UserID]*domain.User) error {
	var missing []domain.UserID
	queued := make(map[domain.UserID]struct{})
	queue := func(id domain.UserID) {
		if _, ok := queued[id]; !ok {
			queued[id] = struct{}{}
			missing = append(missing, id)
		}
	}
	for _, id := range order {
		agg := candidates[id]
		if agg.doc == nil {
			queue(id)
		}
		for friendID := range agg.mutualFriendIDs {
			if friends[friendID] == nil {
				queue(friendID)
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}

	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	docs, err := u.users.FindByFilter(ctx, domain.UserFilter{IDs: missing})
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if agg, ok := candidates[doc.ID]; ok && agg.doc == nil {
			agg.doc = doc
		}
		if existing, ok := friends[doc.ID]; ok && existing == nil {
			friends[doc.ID] = doc
		}
	}
	return nil
}

// rankBefore orders by score, mutual friends, shared species (all desc),
// then handle and id ascending.
func rankBefore(a, b *candidateAggregate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if len(a.mutualFriendIDs) != len(b.mutualFriendIDs) {
		return len(a.mutualFriendIDs) > len(b.mutualFriendIDs)
	}
	if len(a.sharedSpecies) != len(b.sharedSpecies) {
		return len(a.sharedSpecies) > len(b.sharedSpecies)
	}
	if a.doc.Handle != b.doc.Handle {
		return a.doc.Handle < b.doc.Handle
	}
	return a.id < b.id
}

func mutualFriendSummaries(ids map[domain.UserID]struct{}, friends map[domain.UserID]*domain.User) []domain.PublicProfile {
	out := make([]domain.PublicProfile, 0, len(ids))
	for id := range ids {
		if doc := friends[id]; doc != nil {
			out = append(out, doc.Summary())
		} else {
			out = append(out, domain.PublicProfile{ID: id})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Handle != out[j].Handle {
			return out[i].Handle < out[j].Handle
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
