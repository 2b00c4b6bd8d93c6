package v1

import (
	"net/http"

	"go-species-social-backend/internal/delivery/http/middleware"
	"go-species-social-backend/internal/delivery/http/response"
	"go-species-social-backend/internal/domain"
	"go-species-social-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userUC domain.UserUsecase
}

func NewUserHandler(r *gin.RouterGroup, userUC domain.UserUsecase) {
	handler := &UserHandler{userUC: userUC}

	users := r.Group("/users")
	{
		users.GET("/me", handler.GetMe)
		users.PUT("/me", handler.UpdateMe)
		users.GET("/:id", handler.GetByID)
	}
}

// GetMe godoc
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/me [get]
// @Security     BearerAuth
func (h *UserHandler) GetMe(c *gin.Context) {
	me := middleware.CurrentUserID(c)
	user, err := h.userUC.GetProfile(c.Request.Context(), me, me)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile", user)
}

// UpdateMe godoc
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      domain.UpdateProfileInput  true  "Profile fields"
// @Success      200      {object}  response.Response{data=domain.User}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /users/me [put]
// @Security     BearerAuth
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var input domain.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	user, err := h.userUC.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", user)
}

// GetByID godoc
// @Summary      Get a user's profile
// @Description  Private profiles are visible to accepted friends only
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=domain.PublicProfile}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [get]
// @Security     BearerAuth
func (h *UserHandler) GetByID(c *gin.Context) {
	viewer := middleware.CurrentUserID(c)
	target := domain.UserID(c.Param("id"))

	user, err := h.userUC.GetProfile(c.Request.Context(), viewer, target)
	if err != nil {
		c.Error(err)
		return
	}
	if viewer == target {
		response.Success(c, http.StatusOK, "Profile", user)
		return
	}
	response.Success(c, http.StatusOK, "Profile", user.Summary())
}
