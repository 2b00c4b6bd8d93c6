package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-species-social-backend/internal/delivery/http/middleware"
	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/apperror"
	"go-species-social-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	meID    = domain.UserID("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	otherID = domain.UserID("f47ac10b-58cc-4372-a567-0e02b2c3d479")
)

type MockRecommendationUC struct{ mock.Mock }

func (m *MockRecommendationUC) ComputeRecommendations(ctx context.Context, id domain.UserID, limit int) ([]domain.RecommendationEntry, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecommendationEntry), args.Error(1)
}

type MockUserUC struct{ mock.Mock }

func (m *MockUserUC) GetProfile(ctx context.Context, viewer, target domain.UserID) (*domain.User, error) {
	args := m.Called(ctx, viewer, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUC) UpdateProfile(ctx context.Context, viewer domain.UserID, input domain.UpdateProfileInput) (*domain.User, error) {
	args := m.Called(ctx, viewer, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockFriendshipUC struct{ mock.Mock }

func (m *MockFriendshipUC) friendship(args mock.Arguments) (*domain.Friendship, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Friendship), args.Error(1)
}

func (m *MockFriendshipUC) SendRequest(ctx context.Context, requester, addressee domain.UserID) (*domain.Friendship, error) {
	return m.friendship(m.Called(ctx, requester, addressee))
}

func (m *MockFriendshipUC) Respond(ctx context.Context, actor domain.UserID, id string, accept bool) (*domain.Friendship, error) {
	return m.friendship(m.Called(ctx, actor, id, accept))
}

func (m *MockFriendshipUC) Block(ctx context.Context, actor, target domain.UserID) (*domain.Friendship, error) {
	return m.friendship(m.Called(ctx, actor, target))
}

func (m *MockFriendshipUC) Remove(ctx context.Context, actor domain.UserID, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockFriendshipUC) ListFriends(ctx context.Context, id domain.UserID) ([]domain.PublicProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PublicProfile), args.Error(1)
}

func (m *MockFriendshipUC) ListPending(ctx context.Context, id domain.UserID) ([]domain.PendingRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PendingRequest), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestGroup returns an engine whose /v1 group is authenticated as meID.
func newTestGroup() (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	g := r.Group("/v1")
	g.Use(func(c *gin.Context) {
		c.Set(string(domain.KeyUserID), string(meID))
		c.Next()
	})
	return r, g
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRecommendationHandler_LimitParsing(t *testing.T) {
	cases := map[string]int{
		"/v1/recommendations":           10,
		"/v1/recommendations?limit=abc": 10,
		"/v1/recommendations?limit=0":   10,
		"/v1/recommendations?limit=-2":  10,
		"/v1/recommendations?limit=3":   3,
		"/v1/recommendations?limit=250": 250,
	}
	for path, want := range cases {
		t.Run(path, func(t *testing.T) {
			uc := new(MockRecommendationUC)
			uc.On("ComputeRecommendations", mock.Anything, meID, want).Return([]domain.RecommendationEntry{}, nil).Once()
			r, g := newTestGroup()
			NewRecommendationHandler(g, uc, 10, nil)

			w := do(r, http.MethodGet, path, "")
			assert.Equal(t, http.StatusOK, w.Code)
			env := decode(t, w)
			assert.True(t, env.Success)
			assert.JSONEq(t, `[]`, string(env.Data))
			assert.NotEmpty(t, env.RequestID)
			uc.AssertExpectations(t)
		})
	}
}

func TestRecommendationHandler_Errors(t *testing.T) {
	uc := new(MockRecommendationUC)
	uc.On("ComputeRecommendations", mock.Anything, meID, 10).Return(nil, apperror.NotFound("User not found"))
	r, g := newTestGroup()
	NewRecommendationHandler(g, uc, 10, nil)

	w := do(r, http.MethodGet, "/v1/recommendations", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestRecommendationHandler_EntryShape(t *testing.T) {
	d := 12.5
	uc := new(MockRecommendationUC)
	uc.On("ComputeRecommendations", mock.Anything, meID, 10).Return([]domain.RecommendationEntry{
		{
			Candidate:     domain.PublicProfile{ID: otherID, Handle: "carol"},
			MutualFriends: []domain.PublicProfile{{ID: "u-a", Handle: "alice"}},
			SharedSpecies: []string{"Owl"},
			LocationMatch: true,
			DistanceKm:    &d,
			Score:         31.7,
		},
		{
			Candidate:     domain.PublicProfile{ID: "u-d", Handle: "dave"},
			MutualFriends: []domain.PublicProfile{{ID: "u-a", Handle: "alice"}},
			SharedSpecies: []string{},
			Score:         10,
		},
	}, nil)
	r, g := newTestGroup()
	NewRecommendationHandler(g, uc, 10, nil)

	w := do(r, http.MethodGet, "/v1/recommendations", "")
	require.Equal(t, http.StatusOK, w.Code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, 12.5, entries[0]["distance_km"])
	_, hasDistance := entries[1]["distance_km"]
	assert.False(t, hasDistance)
	assert.Equal(t, []any{}, entries[1]["shared_species"])
}

func TestUserHandler(t *testing.T) {
	other := &domain.User{ID: otherID, Handle: "bob", DisplayName: "Bob", Location: "Tofino", Region: "BC", FavoriteSpecies: []string{"Owl"}}

	t.Run("other profiles expose the public subset", func(t *testing.T) {
		uc := new(MockUserUC)
		uc.On("GetProfile", mock.Anything, meID, otherID).Return(other, nil)
		r, g := newTestGroup()
		NewUserHandler(g, uc)

		w := do(r, http.MethodGet, "/v1/users/"+string(otherID), "")
		require.Equal(t, http.StatusOK, w.Code)
		body := string(decode(t, w).Data)
		assert.Contains(t, body, `"handle":"bob"`)
		assert.NotContains(t, body, "Tofino")
		assert.NotContains(t, body, "favorite_species")
	})

	t.Run("me returns the full profile", func(t *testing.T) {
		me := &domain.User{ID: meID, Handle: "alice", Location: "Tofino"}
		uc := new(MockUserUC)
		uc.On("GetProfile", mock.Anything, meID, meID).Return(me, nil)
		r, g := newTestGroup()
		NewUserHandler(g, uc)

		w := do(r, http.MethodGet, "/v1/users/me", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(decode(t, w).Data), "Tofino")
	})

	t.Run("update rejects malformed json", func(t *testing.T) {
		uc := new(MockUserUC)
		r, g := newTestGroup()
		NewUserHandler(g, uc)

		w := do(r, http.MethodPut, "/v1/users/me", `{"handle":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		uc.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("update passes the body through", func(t *testing.T) {
		uc := new(MockUserUC)
		input := domain.UpdateProfileInput{DisplayName: "Alice", Handle: "alice", FavoriteSpecies: []string{"Owl"}, IsPublic: true}
		uc.On("UpdateProfile", mock.Anything, meID, input).Return(&domain.User{ID: meID, Handle: "alice"}, nil).Once()
		r, g := newTestGroup()
		NewUserHandler(g, uc)

		w := do(r, http.MethodPut, "/v1/users/me", `{"display_name":"Alice","handle":"alice","favorite_species":["Owl"],"is_public":true}`)
		assert.Equal(t, http.StatusOK, w.Code)
		uc.AssertExpectations(t)
	})
}

func TestFriendshipHandler(t *testing.T) {
	newRouter := func(uc *MockFriendshipUC) *gin.Engine {
		r, g := newTestGroup()
		NewFriendshipHandler(g, uc, validation.New())
		return r
	}

	t.Run("send validates the user id", func(t *testing.T) {
		uc := new(MockFriendshipUC)
		w := do(newRouter(uc), http.MethodPost, "/v1/friends/requests", `{"user_id":"bob"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		uc.AssertNotCalled(t, "SendRequest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("send creates a pending request", func(t *testing.T) {
		uc := new(MockFriendshipUC)
		uc.On("SendRequest", mock.Anything, meID, otherID).Return(&domain.Friendship{ID: "f1", Status: domain.FriendshipPending}, nil)
		w := do(newRouter(uc), http.MethodPost, "/v1/friends/requests", `{"user_id":"`+string(otherID)+`"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("send reports an auto-accept", func(t *testing.T) {
		uc := new(MockFriendshipUC)
		uc.On("SendRequest", mock.Anything, meID, otherID).Return(&domain.Friendship{ID: "f1", Status: domain.FriendshipAccepted}, nil)
		w := do(newRouter(uc), http.MethodPost, "/v1/friends/requests", `{"user_id":"`+string(otherID)+`"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Friend request accepted", decode(t, w).Message)
	})

	t.Run("accept and decline", func(t *testing.T) {
		uc := new(MockFriendshipUC)
		uc.On("Respond", mock.Anything, meID, "f1", true).Return(&domain.Friendship{ID: "f1", Status: domain.FriendshipAccepted}, nil).Once()
		uc.On("Respond", mock.Anything, meID, "f2", false).Return(&domain.Friendship{ID: "f2", Status: domain.FriendshipDeclined}, nil).Once()
		r := newRouter(uc)

		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/v1/friends/requests/f1/accept", "").Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/v1/friends/requests/f2/decline", "").Code)
		uc.AssertExpectations(t)
	})

	t.Run("conflicts map to 409", func(t *testing.T) {
		uc := new(MockFriendshipUC)
		uc.On("Respond", mock.Anything, meID, "f1", true).Return(nil, apperror.Conflict("Friend request is no longer pending"))
		w := do(newRouter(uc), http.MethodPost, "/v1/friends/requests/f1/accept", "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("remove, block and lists", func(t *testing.T) {
		uc := new(MockFriendshipUC)
		uc.On("Remove", mock.Anything, meID, "f1").Return(nil).Once()
		uc.On("Block", mock.Anything, meID, otherID).Return(&domain.Friendship{ID: "f3", Status: domain.FriendshipBlocked}, nil).Once()
		uc.On("ListFriends", mock.Anything, meID).Return([]domain.PublicProfile{{ID: otherID, Handle: "bob"}}, nil).Once()
		uc.On("ListPending", mock.Anything, meID).Return([]domain.PendingRequest{}, nil).Once()
		r := newRouter(uc)

		assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/v1/friends/f1", "").Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/v1/users/"+string(otherID)+"/block", "").Code)

		w := do(r, http.MethodGet, "/v1/friends", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(decode(t, w).Data), "bob")
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/v1/friends/requests", "").Code)
		uc.AssertExpectations(t)
	})
}
