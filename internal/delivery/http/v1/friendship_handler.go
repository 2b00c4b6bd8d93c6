package v1

import (
	"net/http"

	"go-species-social-backend/internal/delivery/http/middleware"
	"go-species-social-backend/internal/delivery/http/response"
	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/apperror"
	"go-species-social-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FriendshipHandler struct {
	friendshipUC domain.FriendshipUsecase
	validate     *validator.Validate
}

func NewFriendshipHandler(r *gin.RouterGroup, friendshipUC domain.FriendshipUsecase, validate *validator.Validate) {
	handler := &FriendshipHandler{friendshipUC: friendshipUC, validate: validate}

	friends := r.Group("/friends")
	{
		friends.GET("", handler.ListFriends)
		friends.DELETE("/:id", handler.Remove)
		friends.GET("/requests", handler.ListPending)
		friends.POST("/requests", handler.SendRequest)
		friends.POST("/requests/:id/accept", handler.Accept)
		friends.POST("/requests/:id/decline", handler.Decline)
	}
	r.POST("/users/:id/block", handler.Block)
}

// ListFriends godoc
// @Summary      List friends
// @Tags         friends
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.PublicProfile}
// @Failure      401  {object}  response.Response
// @Router       /friends [get]
// @Security     BearerAuth
func (h *FriendshipHandler) ListFriends(c *gin.Context) {
	friends, err := h.friendshipUC.ListFriends(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Friends", friends)
}

// ListPending godoc
// @Summary      Incoming friend requests
// @Tags         friends
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.PendingRequest}
// @Failure      401  {object}  response.Response
// @Router       /friends/requests [get]
// @Security     BearerAuth
func (h *FriendshipHandler) ListPending(c *gin.Context) {
	pending, err := h.friendshipUC.ListPending(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Pending requests", pending)
}

// SendRequest godoc
// @Summary      Send a friend request
// @Description  Accepts automatically when the other user already asked
// @Tags         friends
// @Accept       json
// @Produce      json
// @Param        request  body      domain.FriendRequestInput  true  "Addressee"
// @Success      201      {object}  response.Response{data=domain.Friendship}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /friends/requests [post]
// @Security     BearerAuth
func (h *FriendshipHandler) SendRequest(c *gin.Context) {
	var input domain.FriendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(input); err != nil {
		c.Error(apperror.BadRequest(validation.FormatValidationErrors(err)[0]))
		return
	}

	f, err := h.friendshipUC.SendRequest(c.Request.Context(), middleware.CurrentUserID(c), domain.UserID(input.UserID))
	if err != nil {
		c.Error(err)
		return
	}
	if f.Status == domain.FriendshipAccepted {
		response.Success(c, http.StatusOK, "Friend request accepted", f)
		return
	}
	response.Success(c, http.StatusCreated, "Friend request sent", f)
}

// Accept godoc
// @Summary      Accept a friend request
// @Tags         friends
// @Produce      json
// @Param        id   path      string  true  "Friendship ID"
// @Success      200  {object}  response.Response{data=domain.Friendship}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /friends/requests/{id}/accept [post]
// @Security     BearerAuth
func (h *FriendshipHandler) Accept(c *gin.Context) {
	h.respond(c, true, "Friend request accepted")
}

// Decline godoc
// @Summary      Decline a friend request
// @Tags         friends
// @Produce      json
// @Param        id   path      string  true  "Friendship ID"
// @Success      200  {object}  response.Response{data=domain.Friendship}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /friends/requests/{id}/decline [post]
// @Security     BearerAuth
func (h *FriendshipHandler) Decline(c *gin.Context) {
	h.respond(c, false, "Friend request declined")
}

func (h *FriendshipHandler) respond(c *gin.Context, accept bool, message string) {
	f, err := h.friendshipUC.Respond(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), accept)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, message, f)
}

// Remove godoc
// @Summary      Remove a friendship
// @Description  Unfriend, cancel a request, or lift a block you placed
// @Tags         friends
// @Param        id   path      string  true  "Friendship ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /friends/{id} [delete]
// @Security     BearerAuth
func (h *FriendshipHandler) Remove(c *gin.Context) {
	if err := h.friendshipUC.Remove(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Friendship removed", nil)
}

// Block godoc
// @Summary      Block a user
// @Tags         friends
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=domain.Friendship}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/block [post]
// @Security     BearerAuth
func (h *FriendshipHandler) Block(c *gin.Context) {
	f, err := h.friendshipUC.Block(c.Request.Context(), middleware.CurrentUserID(c), domain.UserID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User blocked", f)
}
