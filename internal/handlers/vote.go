package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/upfeed/upfeed/internal/dto"
	"github.com/upfeed/upfeed/internal/middleware"
	"github.com/upfeed/upfeed/internal/monitoring"
	"github.com/upfeed/upfeed/internal/services"

	apierrors "github.com/upfeed/upfeed/internal/errors"
)

// VoteHandler coordinates the vote mutation resolver.
type VoteHandler struct {
	postService *services.PostService
}

// NewVoteHandler creates a new VoteHandler.
func NewVoteHandler(postService *services.PostService) *VoteHandler {
	return &VoteHandler{
		postService: postService,
	}
}

// Vote applies an upvote or downvote to a post for the session user and
// returns the post with its adjusted points.
func (h *VoteHandler) Vote(c *gin.Context) {
	type VoteRequest struct {
		Value int `json:"value"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	changed, err := h.postService.Vote(userID, id, req.Value)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			apierrors.NotFound(c, "post not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	if changed {
		direction := "up"
		if req.Value < 0 {
			direction = "down"
		}
		monitoring.VotesCast.WithLabelValues(direction).Inc()
	}

	post, err := h.postService.GetPost(id, &userID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	postDTO := dto.ToPostDTO(*post)
	c.JSON(http.StatusOK, dto.PostResponse{Post: &postDTO})
}
