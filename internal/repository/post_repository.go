package repository

import (
	"errors"

	"github.com/upfeed/upfeed/internal/database"
	"github.com/upfeed/upfeed/internal/models"
	"gorm.io/gorm"
)

// GormPostRepository is a GORM implementation of PostRepository
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &GormPostRepository{db: db}
}

// Create creates a new post
func (r *GormPostRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

// FindByID finds a post by ID with its creator preloaded
func (r *GormPostRepository) FindByID(id uint64) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Creator").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// List retrieves a feed page using keyset pagination: one row beyond the page
// size is fetched to detect whether older posts remain, then dropped.
func (r *GormPostRepository) List(filter FeedFilter) ([]models.Post, bool, error) {
	var posts []models.Post

	err := r.db.
		Scopes(database.CreatedBefore(filter.Cursor)).
		Order("created_at DESC").
		Limit(filter.Limit + 1).
		Preload("Creator").
		Find(&posts).Error
	if err != nil {
		return nil, false, err
	}

	hasMore := len(posts) == filter.Limit+1
	if hasMore {
		posts = posts[:filter.Limit]
	}

	return posts, hasMore, nil
}

// ListTrending retrieves the highest-scored posts.
func (r *GormPostRepository) ListTrending(limit int) ([]models.Post, error) {
	var posts []models.Post

	err := r.db.
		Order("points DESC, created_at DESC").
		Limit(limit).
		Preload("Creator").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return posts, nil
}

// UpdateOwned updates a post owned by creatorID. The creator_id predicate
// keeps the write owner-scoped without a separate authorization read.
func (r *GormPostRepository) UpdateOwned(id, creatorID uint64, title, text string) (*models.Post, error) {
	result := r.db.Model(&models.Post{}).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Updates(map[string]interface{}{
			"title": title,
			"text":  text,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrPostNotFound
	}

	return r.FindByID(id)
}

// DeleteOwned deletes a post owned by creatorID along with its votes.
func (r *GormPostRepository) DeleteOwned(id, creatorID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND creator_id = ?", id, creatorID).Delete(&models.Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}

		return tx.Where("post_id = ?", id).Delete(&models.Vote{}).Error
	})
}
