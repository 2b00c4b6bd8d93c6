package v1

import (
	"net/http"
	"strconv"

	"go-species-social-backend/internal/delivery/http/middleware"
	"go-species-social-backend/internal/delivery/http/response"
	"go-species-social-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type RecommendationHandler struct {
	recommendationUC domain.RecommendationUsecase
	defaultLimit     int
}

func NewRecommendationHandler(r *gin.RouterGroup, recommendationUC domain.RecommendationUsecase, defaultLimit int, limiter gin.HandlerFunc) {
	handler := &RecommendationHandler{recommendationUC: recommendationUC, defaultLimit: defaultLimit}

	if limiter != nil {
		r.GET("/recommendations", limiter, handler.List)
	} else {
		r.GET("/recommendations", handler.List)
	}
}

// List godoc
// @Summary      Friend recommendations
// @Description  Ranked friend-of-friend suggestions for the current user
// @Tags         recommendations
// @Produce      json
// @Param        limit  query     int  false  "Maximum entries (default 10)"
// @Success      200    {object}  response.Response{data=[]domain.RecommendationEntry}
// @Failure      401    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /recommendations [get]
// @Security     BearerAuth
func (h *RecommendationHandler) List(c *gin.Context) {
	entries, err := h.recommendationUC.ComputeRecommendations(c.Request.Context(), middleware.CurrentUserID(c), h.parseLimit(c.Query("limit")))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Recommendations", entries)
}

// parseLimit falls back to the configured default for absent, non-numeric
// or non-positive values.
func (h *RecommendationHandler) parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return h.defaultLimit
	}
	return limit
}
