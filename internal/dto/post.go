package dto

import (
	"time"

	apierrors "github.com/upfeed/upfeed/internal/errors"
	"github.com/upfeed/upfeed/internal/models"
	"github.com/upfeed/upfeed/internal/utils"
)

// PostDTO represents a post in detail responses
type PostDTO struct {
	ID         uint64    `json:"id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	TextHTML   string    `json:"text_html,omitempty"`
	Points     int       `json:"points"`
	CreatorID  uint64    `json:"creator_id"`
	Creator    *UserDTO  `json:"creator,omitempty"`
	VoteStatus *int      `json:"vote_status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PostListItemDTO represents a post in feed responses (snippet instead of the
// full text; created_at doubles as the next keyset cursor).
type PostListItemDTO struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	TextSnippet string    `json:"text_snippet"`
	Points      int       `json:"points"`
	CreatorID   uint64    `json:"creator_id"`
	Creator     *UserDTO  `json:"creator,omitempty"`
	VoteStatus  *int      `json:"vote_status"`
	CreatedAt   time.Time `json:"created_at"`
}

// PostResponse is the envelope for post mutations.
type PostResponse struct {
	Errors []apierrors.FieldError `json:"errors,omitempty"`
	Post   *PostDTO               `json:"post"`
}

// PaginatedPostsResponse is the keyset-paginated feed page.
type PaginatedPostsResponse struct {
	Posts   []PostListItemDTO `json:"posts"`
	HasMore bool              `json:"has_more"`
}

// ToPostDTO converts a Post model to PostDTO
func ToPostDTO(post models.Post) PostDTO {
	dto := PostDTO{
		ID:         post.ID,
		Title:      post.Title,
		Text:       post.Text,
		TextHTML:   utils.RenderMarkdown(post.Text),
		Points:     post.Points,
		CreatorID:  post.CreatorID,
		VoteStatus: post.VoteStatus,
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
	}

	// Include creator if preloaded
	if post.Creator.ID != 0 {
		creator := ToPublicUserDTO(post.Creator)
		dto.Creator = &creator
	}

	return dto
}

// ToPostListItemDTO converts a Post model to PostListItemDTO
func ToPostListItemDTO(post models.Post) PostListItemDTO {
	dto := PostListItemDTO{
		ID:          post.ID,
		Title:       post.Title,
		TextSnippet: utils.Snippet(post.Text),
		Points:      post.Points,
		CreatorID:   post.CreatorID,
		VoteStatus:  post.VoteStatus,
		CreatedAt:   post.CreatedAt,
	}

	if post.Creator.ID != 0 {
		creator := ToPublicUserDTO(post.Creator)
		dto.Creator = &creator
	}

	return dto
}

// ToPaginatedPostsResponse converts a feed page to its response shape.
func ToPaginatedPostsResponse(posts []models.Post, hasMore bool) PaginatedPostsResponse {
	items := make([]PostListItemDTO, len(posts))
	for i, post := range posts {
		items[i] = ToPostListItemDTO(post)
	}

	return PaginatedPostsResponse{
		Posts:   items,
		HasMore: hasMore,
	}
}
