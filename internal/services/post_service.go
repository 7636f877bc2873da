package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/upfeed/upfeed/internal/cache"
	"github.com/upfeed/upfeed/internal/constants"
	"github.com/upfeed/upfeed/internal/repository"
	"github.com/upfeed/upfeed/internal/validation"

	apierrors "github.com/upfeed/upfeed/internal/errors"
	"github.com/upfeed/upfeed/internal/models"
)

var (
	ErrPostNotFound = errors.New("post not found")
)

// PostService handles the post feed, post CRUD and the vote ledger.
type PostService struct {
	postRepo repository.PostRepository
	voteRepo repository.VoteRepository
	cache    *cache.TTLCache
}

// NewPostService creates a new PostService.
func NewPostService(postRepo repository.PostRepository, voteRepo repository.VoteRepository, ttlCache *cache.TTLCache) *PostService {
	return &PostService{
		postRepo: postRepo,
		voteRepo: voteRepo,
		cache:    ttlCache,
	}
}

// PostInput represents the fields of a post mutation.
type PostInput struct {
	Title string `validate:"required,max=200"`
	Text  string
}

// CreatePost validates input and inserts a post owned by creatorID.
func (s *PostService) CreatePost(creatorID uint64, input PostInput) (*models.Post, []apierrors.FieldError, error) {
	if fieldErrs := validation.Check(input); fieldErrs != nil {
		return nil, fieldErrs, nil
	}

	post := &models.Post{
		Title:     input.Title,
		Text:      input.Text,
		CreatorID: creatorID,
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, nil, fmt.Errorf("failed to create post: %w", err)
	}

	// Reload with the creator preloaded for the response.
	created, err := s.postRepo.FindByID(post.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload post: %w", err)
	}
	return created, nil, nil
}

// GetPost returns a post with its creator and, for an authenticated caller,
// that caller's vote status.
func (s *PostService) GetPost(id uint64, callerID *uint64) (*models.Post, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	if callerID != nil {
		if vote, err := s.voteRepo.FindByUserAndPost(*callerID, id); err == nil {
			value := vote.Value
			post.VoteStatus = &value
		}
	}

	return post, nil
}

// Feed returns one keyset page of the post feed, newest first. limit is
// clamped to the configured maximum; a nil cursor means the first page.
func (s *PostService) Feed(limit int, cursor *time.Time, callerID *uint64) ([]models.Post, bool, error) {
	if limit <= 0 {
		limit = constants.DefaultFeedLimit
	}
	if limit > constants.MaxFeedLimit {
		limit = constants.MaxFeedLimit
	}

	posts, hasMore, err := s.postRepo.List(repository.FeedFilter{
		Limit:  limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to list posts: %w", err)
	}

	if err := s.attachVoteStatuses(posts, callerID); err != nil {
		return nil, false, err
	}

	return posts, hasMore, nil
}

// Trending returns the highest-scored posts, served from a short-TTL cache;
// scores may lag live votes by up to the cache TTL.
func (s *PostService) Trending(callerID *uint64) ([]models.Post, error) {
	var posts []models.Post

	if cached := s.cache.Get(constants.TrendingCacheKey); cached != nil {
		posts = cached.([]models.Post)
	} else {
		var err error
		posts, err = s.postRepo.ListTrending(constants.TrendingLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to list trending posts: %w", err)
		}
		s.cache.Set(constants.TrendingCacheKey, posts, constants.TrendingCacheTTL)
	}

	// Vote status is per-caller, attach it outside the shared cache entry.
	page := make([]models.Post, len(posts))
	copy(page, posts)
	if err := s.attachVoteStatuses(page, callerID); err != nil {
		return nil, err
	}

	return page, nil
}

func (s *PostService) attachVoteStatuses(posts []models.Post, callerID *uint64) error {
	if callerID == nil || len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint64, len(posts))
	for i, post := range posts {
		postIDs[i] = post.ID
	}

	statuses, err := s.voteRepo.MapByUserAndPosts(*callerID, postIDs)
	if err != nil {
		return fmt.Errorf("failed to load vote statuses: %w", err)
	}

	for i := range posts {
		if value, ok := statuses[posts[i].ID]; ok {
			v := value
			posts[i].VoteStatus = &v
		}
	}
	return nil
}

// UpdatePost updates the title/text of a post owned by creatorID.
func (s *PostService) UpdatePost(id, creatorID uint64, input PostInput) (*models.Post, []apierrors.FieldError, error) {
	if fieldErrs := validation.Check(input); fieldErrs != nil {
		return nil, fieldErrs, nil
	}

	post, err := s.postRepo.UpdateOwned(id, creatorID, input.Title, input.Text)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, nil, ErrPostNotFound
		}
		return nil, nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil, nil
}

// DeletePost deletes a post owned by creatorID.
func (s *PostService) DeletePost(id, creatorID uint64) error {
	if err := s.postRepo.DeleteOwned(id, creatorID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// Vote normalizes the requested value to +1/-1 and applies it to the ledger.
// Returns false when the caller repeated their existing vote.
func (s *PostService) Vote(userID, postID uint64, value int) (bool, error) {
	normalized := 1
	if value < 0 {
		normalized = -1
	}

	changed, err := s.voteRepo.CastVote(userID, postID, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return false, ErrPostNotFound
		}
		return false, fmt.Errorf("failed to cast vote: %w", err)
	}
	return changed, nil
}
