package repository

import (
	"errors"

	"github.com/upfeed/upfeed/internal/models"
	"gorm.io/gorm"
)

// GormVoteRepository is a GORM implementation of VoteRepository
type GormVoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new VoteRepository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &GormVoteRepository{db: db}
}

// CastVote applies a vote inside a single transaction. The points column is
// always adjusted relatively (points = points + delta) so concurrent voters on
// the same post never lose updates.
func (r *GormVoteRepository) CastVote(userID, postID uint64, value int) (bool, error) {
	changed := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var postCount int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&postCount).Error; err != nil {
			return err
		}
		if postCount == 0 {
			return ErrPostNotFound
		}

		var existing models.Vote
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error

		var delta int
		switch {
		case err == nil:
			if existing.Value == value {
				// Repeat vote in the same direction is a no-op.
				return nil
			}
			// Flip: remove the old contribution and add the new one in one step.
			if err := tx.Model(&models.Vote{}).
				Where("user_id = ? AND post_id = ?", userID, postID).
				Update("value", value).Error; err != nil {
				return err
			}
			delta = 2 * value

		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.Vote{
				UserID: userID,
				PostID: postID,
				Value:  value,
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			delta = value

		default:
			return err
		}

		changed = true
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("points", gorm.Expr("points + ?", delta)).Error
	})

	return changed, err
}

// FindByUserAndPost returns the caller's vote row, if any
func (r *GormVoteRepository) FindByUserAndPost(userID, postID uint64) (*models.Vote, error) {
	var vote models.Vote
	if err := r.db.Where("user_id = ? AND post_id = ?", userID, postID).First(&vote).Error; err != nil {
		return nil, err
	}
	return &vote, nil
}

// MapByUserAndPosts batch-loads the caller's vote values for a page of posts
// in a single query.
func (r *GormVoteRepository) MapByUserAndPosts(userID uint64, postIDs []uint64) (map[uint64]int, error) {
	statuses := make(map[uint64]int, len(postIDs))
	if len(postIDs) == 0 {
		return statuses, nil
	}

	var votes []models.Vote
	err := r.db.
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}

	for _, vote := range votes {
		statuses[vote.PostID] = vote.Value
	}
	return statuses, nil
}
