package usecase_test

import (
	"context"

	"go-species-social-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) FindByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) FindByFilter(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

type MockFriendshipRepo struct {
	mock.Mock
}

func (m *MockFriendshipRepo) list(args mock.Arguments) ([]*domain.Friendship, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Friendship), args.Error(1)
}

func (m *MockFriendshipRepo) one(args mock.Arguments) (*domain.Friendship, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Friendship), args.Error(1)
}

func (m *MockFriendshipRepo) AcceptedForUser(ctx context.Context, id domain.UserID) ([]*domain.Friendship, error) {
	return m.list(m.Called(ctx, id))
}

func (m *MockFriendshipRepo) AllForUser(ctx context.Context, id domain.UserID) ([]*domain.Friendship, error) {
	return m.list(m.Called(ctx, id))
}

func (m *MockFriendshipRepo) AcceptedForUsers(ctx context.Context, ids []domain.UserID) ([]*domain.Friendship, error) {
	return m.list(m.Called(ctx, ids))
}

func (m *MockFriendshipRepo) PendingForAddressee(ctx context.Context, id domain.UserID) ([]*domain.Friendship, error) {
	return m.list(m.Called(ctx, id))
}

func (m *MockFriendshipRepo) GetByID(ctx context.Context, id string) (*domain.Friendship, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockFriendshipRepo) GetPair(ctx context.Context, a, b domain.UserID) (*domain.Friendship, error) {
	return m.one(m.Called(ctx, a, b))
}

func (m *MockFriendshipRepo) Create(ctx context.Context, f *domain.Friendship) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFriendshipRepo) Update(ctx context.Context, f *domain.Friendship) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFriendshipRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) ForwardGeocode(ctx context.Context, address string) (*domain.Coordinates, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coordinates), args.Error(1)
}

// Fixtures

func newUser(id, handle string, opts ...func(*domain.User)) *domain.User {
	u := &domain.User{
		ID:              domain.UserID(id),
		DisplayName:     handle,
		Handle:          handle,
		FavoriteSpecies: []string{},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func withRegion(region string) func(*domain.User) {
	return func(u *domain.User) { u.Region = region }
}

func withLocation(location, region string) func(*domain.User) {
	return func(u *domain.User) {
		u.Location = location
		u.Region = region
	}
}

func withSpecies(species ...string) func(*domain.User) {
	return func(u *domain.User) { u.FavoriteSpecies = species }
}

func withPublic() func(*domain.User) {
	return func(u *domain.User) { u.IsPublic = true }
}

// edge builds a friendship with both profiles populated.
func edge(id string, requester, addressee *domain.User, status domain.FriendshipStatus) *domain.Friendship {
	return &domain.Friendship{
		ID:          id,
		RequesterID: requester.ID,
		AddresseeID: addressee.ID,
		Requester:   requester,
		Addressee:   addressee,
		Status:      status,
	}
}

// bareEdge builds a friendship without populated profiles.
func bareEdge(id string, requester, addressee domain.UserID, status domain.FriendshipStatus) *domain.Friendship {
	return &domain.Friendship{
		ID:          id,
		RequesterID: requester,
		AddresseeID: addressee,
		Status:      status,
	}
}
