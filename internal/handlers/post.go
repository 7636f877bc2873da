package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/upfeed/upfeed/internal/dto"
	"github.com/upfeed/upfeed/internal/middleware"
	"github.com/upfeed/upfeed/internal/monitoring"
	"github.com/upfeed/upfeed/internal/services"

	apierrors "github.com/upfeed/upfeed/internal/errors"
)

// PostHandler coordinates the post query and mutation resolvers.
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// List returns one keyset page of the feed. The cursor is the created_at of
// the last post of the previous page, RFC3339-encoded.
func (h *PostHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	var cursor *time.Time
	if raw := c.Query("cursor"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid cursor")
			return
		}
		cursor = &parsed
	}

	posts, hasMore, err := h.postService.Feed(limit, cursor, middleware.OptionalUserID(c))
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToPaginatedPostsResponse(posts, hasMore))
}

// Trending returns the highest-scored posts from the short-TTL cache.
func (h *PostHandler) Trending(c *gin.Context) {
	posts, err := h.postService.Trending(middleware.OptionalUserID(c))
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	items := make([]dto.PostListItemDTO, len(posts))
	for i, post := range posts {
		items[i] = dto.ToPostListItemDTO(post)
	}
	c.JSON(http.StatusOK, gin.H{"posts": items})
}

// Get returns a single post, or null when it does not exist.
func (h *PostHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	post, err := h.postService.GetPost(id, middleware.OptionalUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			c.JSON(http.StatusOK, dto.PostResponse{Post: nil})
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	postDTO := dto.ToPostDTO(*post)
	c.JSON(http.StatusOK, dto.PostResponse{Post: &postDTO})
}

// Create inserts a post owned by the session user.
func (h *PostHandler) Create(c *gin.Context) {
	type CreatePostRequest struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	post, fieldErrs, err := h.postService.CreatePost(userID, services.PostInput{
		Title: req.Title,
		Text:  req.Text,
	})
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	if fieldErrs != nil {
		c.JSON(http.StatusOK, dto.PostResponse{Errors: fieldErrs})
		return
	}

	monitoring.PostsCreated.Inc()
	postDTO := dto.ToPostDTO(*post)
	c.JSON(http.StatusCreated, dto.PostResponse{Post: &postDTO})
}

// Update changes the title/text of a post owned by the session user.
func (h *PostHandler) Update(c *gin.Context) {
	type UpdatePostRequest struct {
		Title string `json:"title"`
		Text  string `json:"text"`
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

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	post, fieldErrs, err := h.postService.UpdatePost(id, userID, services.PostInput{
		Title: req.Title,
		Text:  req.Text,
	})
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			apierrors.NotFound(c, "post not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}
	if fieldErrs != nil {
		c.JSON(http.StatusOK, dto.PostResponse{Errors: fieldErrs})
		return
	}

	postDTO := dto.ToPostDTO(*post)
	c.JSON(http.StatusOK, dto.PostResponse{Post: &postDTO})
}

// Delete removes a post owned by the session user.
func (h *PostHandler) Delete(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.postService.DeletePost(id, userID); err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			apierrors.NotFound(c, "post not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid post id")
		return 0, false
	}
	return id, true
}
