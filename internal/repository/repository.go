package repository

import (
	"errors"
	"time"

	"github.com/upfeed/upfeed/internal/models"
)

// ErrPostNotFound is returned when an operation references a post that does
// not exist (or, for owner-scoped writes, is not owned by the caller).
var ErrPostNotFound = errors.New("post repository: post not found")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// UpdatePassword replaces a user's password hash
	UpdatePassword(id uint64, passwordHash string) error
}

// FeedFilter holds the keyset-pagination window for the post feed.
type FeedFilter struct {
	// Limit is the page size after clamping; the repository fetches one extra
	// row to detect whether more pages remain.
	Limit int

	// Cursor, when set, restricts to posts strictly older than it.
	Cursor *time.Time
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	// Create creates a new post
	Create(post *models.Post) error

	// FindByID finds a post by ID with its creator preloaded
	FindByID(id uint64) (*models.Post, error)

	// List retrieves a feed page ordered by creation time descending and
	// reports whether older posts remain beyond it.
	List(filter FeedFilter) ([]models.Post, bool, error)

	// ListTrending retrieves the highest-scored posts.
	ListTrending(limit int) ([]models.Post, error)

	// UpdateOwned updates title/text of a post owned by creatorID and returns
	// the updated post; ErrPostNotFound if no such row.
	UpdateOwned(id, creatorID uint64, title, text string) (*models.Post, error)

	// DeleteOwned deletes a post owned by creatorID; ErrPostNotFound if no
	// such row.
	DeleteOwned(id, creatorID uint64) error
}

// VoteRepository defines the interface for the vote ledger
type VoteRepository interface {
	// CastVote records or flips a (user, post) vote and adjusts the post's
	// points by the matching delta in one transaction. Returns false when the
	// vote repeated the existing direction and nothing was written.
	CastVote(userID, postID uint64, value int) (bool, error)

	// FindByUserAndPost returns the caller's vote row, if any
	FindByUserAndPost(userID, postID uint64) (*models.Vote, error)

	// MapByUserAndPosts returns postID -> value for the caller's votes on the
	// given posts in a single round trip.
	MapByUserAndPosts(userID uint64, postIDs []uint64) (map[uint64]int, error)
}

// ResetTokenRepository defines the interface for the ephemeral password-reset
// token store.
type ResetTokenRepository interface {
	// Store maps token -> userID with the configured TTL
	Store(token string, userID uint64) error

	// Lookup resolves a token; ok is false when missing or expired
	Lookup(token string) (userID uint64, ok bool, err error)

	// Delete consumes a token
	Delete(token string) error
}
